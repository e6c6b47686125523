package domain

// SwipeDirection type
type SwipeDirection string

const (
	// SwipeKeep const - keep the item (right swipe)
	SwipeKeep SwipeDirection = "KEEP"
	// SwipeDelete const - flag the item for deletion (left swipe)
	SwipeDelete SwipeDirection = "DELETE"
)

// SessionState type
type SessionState string

const (
	// SessionStateActive const - cursor has not reached the end of the deck
	SessionStateActive SessionState = "ACTIVE"
	// SessionStateFinished const - every entry has been decided; terminal
	SessionStateFinished SessionState = "FINISHED"
)

// SwipeRecord struct - one reversible content decision.
// Slot dismissals are deliberately not recorded here; undo skips back over
// them without popping anything.
type SwipeRecord struct {
	Direction SwipeDirection
	ItemIndex int
}

// SeenMarker interface - the slice of the seen set a session mutates while
// swiping. The full seen-set service lives in the application layer; the
// session only needs these two calls.
type SeenMarker interface {
	MarkSeen(id string)
	MarkUnseen(id string)
}

// UndoResult struct - outcome of a successful undo
type UndoResult struct {
	Restored  DeckItem
	Direction SwipeDirection
}

// ReviewSession struct - Core aggregate owning the cursor, the
// pending-deletion set and the reversible swipe history for one deck.
//
// Methods are not safe for concurrent use. The application layer serializes
// every mutation behind a per-session lock; background completions reach the
// session through the same lock (see application.ReviewService).
type ReviewSession struct {
	ID       string
	Feed     FeedSpec
	Deck     Deck
	Entitled bool

	cursor           int
	pendingDeletions map[string]struct{}
	history          []SwipeRecord
	committing       map[string]struct{}
	lastUndo         *SwipeDirection
}

// NewReviewSession creates a session over a built deck. An empty deck starts
// directly in the finished state.
func NewReviewSession(id string, feed FeedSpec, deck Deck, entitled bool) *ReviewSession {
	return &ReviewSession{
		ID:               id,
		Feed:             feed,
		Deck:             deck,
		Entitled:         entitled,
		pendingDeletions: make(map[string]struct{}),
		history:          make([]SwipeRecord, 0, len(deck)),
	}
}

// State func - Active while the cursor has entries left, Finished otherwise
func (s *ReviewSession) State() SessionState {
	if s.cursor >= len(s.Deck) {
		return SessionStateFinished
	}
	return SessionStateActive
}

// Cursor func - index of the next entry to be decided
func (s *ReviewSession) Cursor() int {
	return s.cursor
}

// Current func - the entry under the cursor, or nil when finished
func (s *ReviewSession) Current() *DeckItem {
	if s.cursor >= len(s.Deck) {
		return nil
	}
	return &s.Deck[s.cursor]
}

// HistoryLen func - number of reversible content decisions taken so far
func (s *ReviewSession) HistoryLen() int {
	return len(s.history)
}

// PendingDeletions func - copy of the content ids currently flagged for
// deletion
func (s *ReviewSession) PendingDeletions() map[string]struct{} {
	pending := make(map[string]struct{}, len(s.pendingDeletions))
	for id := range s.pendingDeletions {
		pending[id] = struct{}{}
	}
	return pending
}

// IsPendingDeletion func
func (s *ReviewSession) IsPendingDeletion(id string) bool {
	_, ok := s.pendingDeletions[id]
	return ok
}

// Committing func - true while a deletion commit is in flight
func (s *ReviewSession) Committing() bool {
	return s.committing != nil
}

// Swipe func - Decide the entry under the cursor and advance.
// Content entries are marked seen and recorded in the history (delete swipes
// additionally flag the id for deletion). Slot entries are a plain dismiss:
// no seen mark, no history entry, no deletion effect. Callers must check
// State after every call - swiping the last entry finishes the session.
func (s *ReviewSession) Swipe(direction SwipeDirection, seen SeenMarker) (DeckItem, error) {
	if s.State() == SessionStateFinished {
		return DeckItem{}, ErrSessionFinished
	}

	item := s.Deck[s.cursor]
	if item.IsContent() {
		if direction == SwipeDelete {
			s.pendingDeletions[item.Content.ID] = struct{}{}
		}
		seen.MarkSeen(item.Content.ID)
		s.history = append(s.history, SwipeRecord{
			Direction: direction,
			ItemIndex: s.cursor,
		})
	}

	s.cursor++
	s.lastUndo = nil
	return item, nil
}

// Undo func - Reverse the most recent content decision.
// Slot entries immediately behind the cursor are skipped silently (they left
// no history entry to pop). Returns (nil, nil) when there is nothing
// reversible. Undo is unbounded within a session; there is no redo stack -
// a re-swipe after undo simply rebuilds forward state.
//
// While a deletion commit is in flight, undo leaves the pending-deletion
// membership of the ids in that commit untouched; the restored item is still
// un-seen so it can reappear in a later session.
func (s *ReviewSession) Undo(seen SeenMarker) (*UndoResult, error) {
	if s.cursor == 0 {
		return nil, nil
	}

	for s.cursor > 0 && s.Deck[s.cursor-1].IsSlot() {
		s.cursor--
	}
	if s.cursor == 0 {
		return nil, nil
	}

	if len(s.history) == 0 {
		return nil, ErrHistoryMismatch
	}
	record := s.history[len(s.history)-1]
	if record.ItemIndex != s.cursor-1 {
		return nil, ErrHistoryMismatch
	}
	s.history = s.history[:len(s.history)-1]

	s.cursor--
	restored := s.Deck[s.cursor]

	if _, inFlight := s.committing[restored.Content.ID]; !inFlight {
		delete(s.pendingDeletions, restored.Content.ID)
	}
	seen.MarkUnseen(restored.Content.ID)

	direction := record.Direction
	s.lastUndo = &direction
	return &UndoResult{Restored: restored, Direction: direction}, nil
}

// LastUndoDirection func - direction of the most recent undo, nil when the
// last mutation was not an undo (used by the rendering layer for the card
// re-entry animation)
func (s *ReviewSession) LastUndoDirection() *SwipeDirection {
	return s.lastUndo
}

// FillSlot func - Deliver sponsored content into the earliest unfilled slot
// at or beyond the cursor. A non-empty slotID restricts the fill to that
// slot; an empty slotID takes the first eligible one. Filling a passed or
// already-filled slot is a silent no-op (returns false) - fills are
// idempotent per slot per session.
func (s *ReviewSession) FillSlot(slotID string, content SponsoredContent) bool {
	for i := s.cursor; i < len(s.Deck); i++ {
		item := &s.Deck[i]
		if !item.IsSlot() || item.Filled != nil {
			continue
		}
		if slotID != "" && item.SlotID != slotID {
			continue
		}
		filled := content
		item.Filled = &filled
		return true
	}
	return false
}

// UnfilledSlots func - ids of unfilled slots within [from, to), used by the
// prefetcher to request ad fills for the look-ahead window
func (s *ReviewSession) UnfilledSlots(from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(s.Deck) {
		to = len(s.Deck)
	}
	var ids []string
	for i := from; i < to; i++ {
		if s.Deck[i].IsSlot() && s.Deck[i].Filled == nil {
			ids = append(ids, s.Deck[i].SlotID)
		}
	}
	return ids
}

// BeginCommit func - Snapshot the pending-deletion set for delegation to the
// deletion sink and enter the committing sub-state. Further commits are
// rejected until FinishCommit, and undo will not touch the membership of the
// returned ids. Returns the full content references for the flagged ids.
func (s *ReviewSession) BeginCommit() ([]ContentItem, error) {
	if s.committing != nil {
		return nil, ErrCommitInFlight
	}
	if len(s.pendingDeletions) == 0 {
		return nil, ErrNothingPending
	}

	s.committing = make(map[string]struct{}, len(s.pendingDeletions))
	for id := range s.pendingDeletions {
		s.committing[id] = struct{}{}
	}

	items := make([]ContentItem, 0, len(s.committing))
	for _, entry := range s.Deck {
		if !entry.IsContent() {
			continue
		}
		if _, ok := s.committing[entry.Content.ID]; ok {
			items = append(items, *entry.Content)
		}
	}
	return items, nil
}

// FinishCommit func - Leave the committing sub-state. On success the
// committed ids are removed from the pending-deletion set; on failure the
// set is left exactly as it was so the caller can retry or discard.
func (s *ReviewSession) FinishCommit(success bool) {
	if s.committing == nil {
		return
	}
	if success {
		for id := range s.committing {
			delete(s.pendingDeletions, id)
		}
	}
	s.committing = nil
}
