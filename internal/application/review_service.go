package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Deck construction defaults
const (
	defaultAdFrequency = 4
	eventBufferSize    = 16
)

// DeckConfig struct - Tunables for deck construction and look-ahead
type DeckConfig struct {
	AdFrequency    int
	PrefetchWindow int
}

// sessionRuntime bundles one session with its prefetcher and subscribers.
// rt.mu serializes every mutation of the session, whether it comes from a
// caller (swipe, undo, commit) or from a background completion (ad fill).
type sessionRuntime struct {
	mu          sync.Mutex
	session     *domain.ReviewSession
	prefetcher  *Prefetcher
	subscribers map[int]chan domain.ChangeEvent
	nextSubID   int
}

// ReviewService struct - Application service implementing the review
// session use cases: deck building, the swipe/undo state machine, deletion
// commits and look-ahead prefetching, with all collaborators injected as
// output ports.
type ReviewService struct {
	assets       output.AssetSource
	resolver     output.PayloadResolver
	sink         output.DeletionSink
	entitlements output.EntitlementProvider
	ads          output.AdProvider
	telemetry    output.Telemetry
	seen         *SeenSet
	config       DeckConfig

	mu       sync.RWMutex
	sessions map[string]*sessionRuntime
}

// NewReviewService func - Creates the review service. Zero config values
// fall back to the defaults (ad frequency 4, prefetch window 4).
func NewReviewService(
	assets output.AssetSource,
	resolver output.PayloadResolver,
	sink output.DeletionSink,
	entitlements output.EntitlementProvider,
	ads output.AdProvider,
	telemetry output.Telemetry,
	seen *SeenSet,
	config DeckConfig,
) *ReviewService {
	if config.AdFrequency <= 0 {
		config.AdFrequency = defaultAdFrequency
	}
	if config.PrefetchWindow <= 0 {
		config.PrefetchWindow = defaultPrefetchWindow
	}
	return &ReviewService{
		assets:       assets,
		resolver:     resolver,
		sink:         sink,
		entitlements: entitlements,
		ads:          ads,
		telemetry:    telemetry,
		seen:         seen,
		config:       config,
		sessions:     make(map[string]*sessionRuntime),
	}
}

// StartSession func - Use case: open a review session over a freshly built
// deck. Already-seen ids are excluded at fetch time; the entitlement flag is
// read once, here, and baked into the deck.
func (s *ReviewService) StartSession(ctx context.Context, request domain.StartSessionRequest) (*domain.SessionSnapshot, error) {
	items, err := s.assets.FetchAssets(ctx, request.Feed, s.seen.AllSeen())
	if err != nil {
		logrus.Errorln("Asset fetch failed:", err)
		if !errors.Is(err, domain.ErrSourceUnavailable) {
			err = fmt.Errorf("%w: %v", domain.ErrSourceUnavailable, err)
		}
		return nil, err
	}

	entitled := s.entitlements.IsEntitled()
	deck, err := domain.BuildDeck(items, entitled, s.config.AdFrequency)
	if err != nil {
		return nil, err
	}

	session := domain.NewReviewSession(uuid.NewString(), request.Feed, deck, entitled)
	rt := &sessionRuntime{
		session:     session,
		subscribers: make(map[int]chan domain.ChangeEvent),
	}
	rt.prefetcher = NewPrefetcher(s.resolver, s.ads, s.config.PrefetchWindow,
		func(itemID string) { s.handlePayloadReady(rt, itemID) },
		func(slotID string, content domain.SponsoredContent) { s.handleSlotFilled(rt, slotID, content) },
	)

	s.mu.Lock()
	s.sessions[session.ID] = rt
	s.mu.Unlock()

	rt.mu.Lock()
	rt.prefetcher.Schedule(session.Deck, session.Cursor())
	snapshot := s.snapshotLocked(rt)
	s.emitLocked(rt, domain.ChangeEvent{
		Type:      domain.ChangeSessionStarted,
		SessionID: session.ID,
		Cursor:    session.Cursor(),
		State:     session.State(),
	})
	rt.mu.Unlock()

	s.telemetry.Record("feed_opened", map[string]interface{}{
		"feed":       string(request.Feed.Kind),
		"deck_size":  len(deck),
		"item_count": deck.ContentCount(),
		"entitled":   entitled,
	})
	logrus.Infof("Session %s started: %d entries (%d content, %d slots)",
		session.ID, len(deck), deck.ContentCount(), deck.SlotCount())
	return snapshot, nil
}

// Swipe func - Use case: decide the entry under the cursor and advance
func (s *ReviewService) Swipe(sessionID string, direction domain.SwipeDirection) (*domain.SessionSnapshot, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	item, err := rt.session.Swipe(direction, s.seen)
	if err != nil {
		rt.mu.Unlock()
		return nil, err
	}
	rt.prefetcher.Schedule(rt.session.Deck, rt.session.Cursor())
	snapshot := s.snapshotLocked(rt)
	s.emitLocked(rt, domain.ChangeEvent{
		Type:      domain.ChangeSwiped,
		SessionID: sessionID,
		Cursor:    rt.session.Cursor(),
		State:     rt.session.State(),
		ItemID:    item.ItemID(),
		Direction: direction,
	})
	rt.mu.Unlock()

	if item.IsContent() {
		s.telemetry.Record("swipe", map[string]interface{}{
			"keep": direction == domain.SwipeKeep,
			"feed": string(rt.session.Feed.Kind),
		})
	}
	if snapshot.State == domain.SessionStateFinished {
		s.telemetry.Record("deck_finished", map[string]interface{}{
			"feed": string(rt.session.Feed.Kind),
		})
	}
	return snapshot, nil
}

// Undo func - Use case: reverse the most recent content decision. A session
// with nothing reversible returns its unchanged snapshot.
func (s *ReviewService) Undo(sessionID string) (*domain.SessionSnapshot, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	result, err := rt.session.Undo(s.seen)
	if err != nil {
		// Invariant violation inside the state machine; surfaced to logs
		// and left as a no-op for the caller.
		logrus.Errorln("Undo invariant violation:", err)
		snapshot := s.snapshotLocked(rt)
		rt.mu.Unlock()
		return snapshot, nil
	}
	if result == nil {
		snapshot := s.snapshotLocked(rt)
		rt.mu.Unlock()
		return snapshot, nil
	}
	rt.prefetcher.Schedule(rt.session.Deck, rt.session.Cursor())
	snapshot := s.snapshotLocked(rt)
	s.emitLocked(rt, domain.ChangeEvent{
		Type:      domain.ChangeUndone,
		SessionID: sessionID,
		Cursor:    rt.session.Cursor(),
		State:     rt.session.State(),
		ItemID:    result.Restored.ItemID(),
		Direction: result.Direction,
	})
	rt.mu.Unlock()

	s.telemetry.Record("undo", map[string]interface{}{
		"feed": string(rt.session.Feed.Kind),
	})
	return snapshot, nil
}

// CommitDeletions func - Use case: delegate the pending-deletion set to the
// deletion sink. Suspends the caller until the sink responds; the session
// stays mutable meanwhile under the committing policy (no second commit, no
// pending-set mutation through undo for the in-flight ids). On sink failure
// the pending set is preserved and the sink's error returned untouched.
func (s *ReviewService) CommitDeletions(ctx context.Context, sessionID string) (*domain.CommitResult, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}

	rt.mu.Lock()
	items, err := rt.session.BeginCommit()
	rt.mu.Unlock()
	if err != nil {
		return nil, err
	}

	sinkErr := s.sink.CommitDeletions(ctx, items)

	rt.mu.Lock()
	rt.session.FinishCommit(sinkErr == nil)
	remaining := len(rt.session.PendingDeletions())
	if sinkErr == nil {
		s.emitLocked(rt, domain.ChangeEvent{
			Type:      domain.ChangeDeletionsCommitted,
			SessionID: sessionID,
			Cursor:    rt.session.Cursor(),
			State:     rt.session.State(),
		})
	}
	rt.mu.Unlock()

	if sinkErr != nil {
		logrus.Errorln("Deletion commit failed:", sinkErr)
		return nil, sinkErr
	}

	deleted := make([]string, 0, len(items))
	for _, item := range items {
		deleted = append(deleted, item.ID)
	}
	s.telemetry.Record("deletes_committed", map[string]interface{}{
		"count": len(deleted),
		"feed":  string(rt.session.Feed.Kind),
	})
	return &domain.CommitResult{Deleted: deleted, Remaining: remaining}, nil
}

// Snapshot func - Use case: observe a session without mutating it
func (s *ReviewService) Snapshot(sessionID string) (*domain.SessionSnapshot, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	rt.mu.Lock()
	defer rt.mu.Unlock()
	return s.snapshotLocked(rt), nil
}

// Payload func - Use case: read the prefetched payload for an item, nil
// when nothing is cached yet
func (s *ReviewService) Payload(sessionID, itemID string) (*domain.RenderablePayload, error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, err
	}
	return rt.prefetcher.Payload(itemID), nil
}

// AbandonSession func - Use case: tear a session down without committing.
// Cancels outstanding prefetch and ad work; idempotent.
func (s *ReviewService) AbandonSession(sessionID string) error {
	s.mu.Lock()
	rt, ok := s.sessions[sessionID]
	delete(s.sessions, sessionID)
	s.mu.Unlock()
	if !ok {
		return nil
	}

	rt.prefetcher.Close()

	rt.mu.Lock()
	s.emitLocked(rt, domain.ChangeEvent{
		Type:      domain.ChangeSessionAbandoned,
		SessionID: sessionID,
		Cursor:    rt.session.Cursor(),
		State:     rt.session.State(),
	})
	for id, ch := range rt.subscribers {
		close(ch)
		delete(rt.subscribers, id)
	}
	rt.mu.Unlock()

	s.telemetry.Record("session_abandoned", map[string]interface{}{
		"feed": string(rt.session.Feed.Kind),
	})
	logrus.Infof("Session %s abandoned", sessionID)
	return nil
}

// Subscribe func - Use case: observe a session's change events. The cancel
// func releases the subscription; the channel is closed on abandon.
func (s *ReviewService) Subscribe(sessionID string) (<-chan domain.ChangeEvent, func(), error) {
	rt, err := s.runtime(sessionID)
	if err != nil {
		return nil, nil, err
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	id := rt.nextSubID
	rt.nextSubID++
	ch := make(chan domain.ChangeEvent, eventBufferSize)
	rt.subscribers[id] = ch

	cancel := func() {
		rt.mu.Lock()
		defer rt.mu.Unlock()
		if existing, ok := rt.subscribers[id]; ok {
			close(existing)
			delete(rt.subscribers, id)
		}
	}
	return ch, cancel, nil
}

func (s *ReviewService) runtime(sessionID string) (*sessionRuntime, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rt, ok := s.sessions[sessionID]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	return rt, nil
}

// handleSlotFilled runs on the prefetcher's consumer goroutine when the ad
// provider delivers sponsored content for a slot in the look-ahead window.
func (s *ReviewService) handleSlotFilled(rt *sessionRuntime, slotID string, content domain.SponsoredContent) {
	rt.mu.Lock()
	filled := rt.session.FillSlot(slotID, content)
	if filled {
		s.emitLocked(rt, domain.ChangeEvent{
			Type:      domain.ChangeSlotFilled,
			SessionID: rt.session.ID,
			Cursor:    rt.session.Cursor(),
			State:     rt.session.State(),
			ItemID:    slotID,
		})
	}
	rt.mu.Unlock()

	if filled {
		s.telemetry.Record("ad_filled", map[string]interface{}{
			"slot":     slotID,
			"campaign": content.CampaignID,
		})
	}
}

// handlePayloadReady runs on the prefetcher's consumer goroutine when a
// resolve completes.
func (s *ReviewService) handlePayloadReady(rt *sessionRuntime, itemID string) {
	rt.mu.Lock()
	defer rt.mu.Unlock()
	s.emitLocked(rt, domain.ChangeEvent{
		Type:      domain.ChangePayloadReady,
		SessionID: rt.session.ID,
		Cursor:    rt.session.Cursor(),
		State:     rt.session.State(),
		ItemID:    itemID,
	})
}

// emitLocked - caller holds rt.mu. Sends are non-blocking: a subscriber
// that cannot keep up loses events rather than stalling the engine.
func (s *ReviewService) emitLocked(rt *sessionRuntime, event domain.ChangeEvent) {
	for _, ch := range rt.subscribers {
		select {
		case ch <- event:
		default:
		}
	}
}

// snapshotLocked - caller holds rt.mu
func (s *ReviewService) snapshotLocked(rt *sessionRuntime) *domain.SessionSnapshot {
	session := rt.session

	pending := make([]string, 0)
	for id := range session.PendingDeletions() {
		pending = append(pending, id)
	}

	var current *domain.DeckEntryView
	if item := session.Current(); item != nil {
		view := domain.DeckEntryView{
			Type:      item.Type,
			Content:   item.Content,
			SlotID:    item.SlotID,
			Sponsored: item.Filled,
		}
		if item.IsContent() {
			view.PayloadReady = rt.prefetcher.Payload(item.Content.ID) != nil
		} else {
			view.PayloadReady = item.Filled != nil
		}
		current = &view
	}

	return &domain.SessionSnapshot{
		SessionID:         session.ID,
		State:             session.State(),
		Cursor:            session.Cursor(),
		DeckSize:          len(session.Deck),
		ContentCount:      session.Deck.ContentCount(),
		HistoryLen:        session.HistoryLen(),
		PendingDeletions:  pending,
		Committing:        session.Committing(),
		Current:           current,
		LastUndoDirection: session.LastUndoDirection(),
	}
}
