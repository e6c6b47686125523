package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/ZHANGV25/Prune/internal/domain"

	"github.com/sirupsen/logrus"
)

// MockPayloadResolver implements output.PayloadResolver for testing
type MockPayloadResolver struct {
	ResolvePayloadFunc func(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error)

	mu sync.Mutex
	// Captured values for assertions
	ResolvedIDs []string
}

func (m *MockPayloadResolver) ResolvePayload(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
	m.mu.Lock()
	m.ResolvedIDs = append(m.ResolvedIDs, item.ID)
	m.mu.Unlock()
	if m.ResolvePayloadFunc != nil {
		return m.ResolvePayloadFunc(ctx, item)
	}
	return &domain.RenderablePayload{ItemID: item.ID, MIMEType: "image/jpeg", Data: []byte{0x1}, ResolvedAt: time.Now()}, nil
}

func (m *MockPayloadResolver) resolveCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, resolved := range m.ResolvedIDs {
		if resolved == id {
			count++
		}
	}
	return count
}

func (m *MockPayloadResolver) resolvedSet() map[string]struct{} {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := make(map[string]struct{}, len(m.ResolvedIDs))
	for _, id := range m.ResolvedIDs {
		ids[id] = struct{}{}
	}
	return ids
}

// MockAdProvider implements output.AdProvider for testing
type MockAdProvider struct {
	RequestFillFunc func(ctx context.Context) (*domain.SponsoredContent, error)

	mu sync.Mutex
	// Captured values for assertions
	FillRequests int
}

func (m *MockAdProvider) RequestFill(ctx context.Context) (*domain.SponsoredContent, error) {
	m.mu.Lock()
	m.FillRequests++
	m.mu.Unlock()
	if m.RequestFillFunc != nil {
		return m.RequestFillFunc(ctx)
	}
	return &domain.SponsoredContent{CampaignID: "campaign-1"}, nil
}

func (m *MockAdProvider) fillCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.FillRequests
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("Timed out waiting for %s", what)
}

func buildTestDeck(t *testing.T, itemCount, adFrequency int, entitled bool) domain.Deck {
	t.Helper()
	items := make([]domain.ContentItem, 0, itemCount)
	for i := 0; i < itemCount; i++ {
		items = append(items, domain.ContentItem{
			ID:   fmt.Sprintf("item-%d", i+1),
			Kind: domain.MediaKindPhoto,
		})
	}
	deck, err := domain.BuildDeck(items, entitled, adFrequency)
	if err != nil {
		t.Fatalf("BuildDeck returned error: %v", err)
	}
	return deck
}

func TestSchedule_ResolvesOnlyEntriesInsideTheWindow(t *testing.T) {
	resolver := &MockPayloadResolver{}
	deck := buildTestDeck(t, 10, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 3, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)

	waitFor(t, "window resolves", func() bool {
		return p.Payload("item-1") != nil && p.Payload("item-2") != nil && p.Payload("item-3") != nil
	})

	resolved := resolver.resolvedSet()
	if len(resolved) != 3 {
		t.Errorf("Expected exactly the 3 window items resolved, got %v", resolved)
	}
	if p.Payload("item-4") != nil {
		t.Error("Expected item-4 outside the window to stay unresolved")
	}
}

func TestSchedule_WindowFollowsTheCursor(t *testing.T) {
	resolver := &MockPayloadResolver{}
	deck := buildTestDeck(t, 10, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 2, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)
	waitFor(t, "initial window", func() bool {
		return p.Payload("item-1") != nil && p.Payload("item-2") != nil
	})

	p.Schedule(deck, 4)
	waitFor(t, "moved window", func() bool {
		return p.Payload("item-5") != nil && p.Payload("item-6") != nil
	})
}

func TestSchedule_SuppressesDuplicateWorkPerKey(t *testing.T) {
	release := make(chan struct{})
	resolver := &MockPayloadResolver{
		ResolvePayloadFunc: func(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
			<-release
			return &domain.RenderablePayload{ItemID: item.ID}, nil
		},
	}
	deck := buildTestDeck(t, 4, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 4, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)
	p.Schedule(deck, 0)
	p.Schedule(deck, 0)
	close(release)

	waitFor(t, "resolves to land", func() bool {
		return p.Payload("item-1") != nil
	})

	if count := resolver.resolveCount("item-1"); count != 1 {
		t.Errorf("Expected item-1 resolved once despite repeated scheduling, got %d", count)
	}
}

func TestSchedule_CachedEntriesAreNotReResolved(t *testing.T) {
	resolver := &MockPayloadResolver{}
	deck := buildTestDeck(t, 4, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 4, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)
	waitFor(t, "first resolves", func() bool { return p.Payload("item-4") != nil })

	before := resolver.resolveCount("item-1")
	p.Schedule(deck, 0)
	time.Sleep(50 * time.Millisecond)

	if after := resolver.resolveCount("item-1"); after != before {
		t.Errorf("Expected cached item-1 untouched, resolve count went %d -> %d", before, after)
	}
}

func TestSchedule_FailedResolveIsRetriedOnReSchedule(t *testing.T) {
	logrus.SetLevel(logrus.FatalLevel)
	defer logrus.SetLevel(logrus.InfoLevel)

	var mu sync.Mutex
	fail := true
	resolver := &MockPayloadResolver{
		ResolvePayloadFunc: func(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
			mu.Lock()
			defer mu.Unlock()
			if fail {
				return nil, errors.New("resolve down")
			}
			return &domain.RenderablePayload{ItemID: item.ID}, nil
		},
	}
	deck := buildTestDeck(t, 1, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 1, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)
	waitFor(t, "failed attempt", func() bool { return resolver.resolveCount("item-1") == 1 })
	if p.Payload("item-1") != nil {
		t.Error("Expected a failed resolve to leave the cache empty")
	}

	mu.Lock()
	fail = false
	mu.Unlock()

	// The id is still in the window, so re-scheduling retries it.
	waitFor(t, "retry to land", func() bool {
		p.Schedule(deck, 0)
		return p.Payload("item-1") != nil
	})
}

func TestSchedule_RequestsAdFillForUnfilledSlotInWindow(t *testing.T) {
	ads := &MockAdProvider{}
	deck := buildTestDeck(t, 4, 4, false) // slot-1 at index 4

	var mu sync.Mutex
	var filledSlot string
	var filledContent domain.SponsoredContent
	onSlotFilled := func(slotID string, content domain.SponsoredContent) {
		mu.Lock()
		filledSlot = slotID
		filledContent = content
		mu.Unlock()
	}

	p := NewPrefetcher(&MockPayloadResolver{}, ads, 5, nil, onSlotFilled)
	defer p.Close()

	p.Schedule(deck, 0)

	waitFor(t, "slot fill callback", func() bool {
		mu.Lock()
		defer mu.Unlock()
		return filledSlot == "slot-1"
	})

	mu.Lock()
	defer mu.Unlock()
	if filledContent.CampaignID != "campaign-1" {
		t.Errorf("Expected campaign-1 delivered, got %s", filledContent.CampaignID)
	}
}

func TestSchedule_NoAdAvailableLeavesSlotUnfilled(t *testing.T) {
	ads := &MockAdProvider{
		RequestFillFunc: func(ctx context.Context) (*domain.SponsoredContent, error) {
			return nil, nil
		},
	}
	deck := buildTestDeck(t, 4, 4, false)

	var mu sync.Mutex
	called := false
	p := NewPrefetcher(&MockPayloadResolver{}, ads, 5, nil, func(string, domain.SponsoredContent) {
		mu.Lock()
		called = true
		mu.Unlock()
	})
	defer p.Close()

	p.Schedule(deck, 0)
	waitFor(t, "fill request", func() bool { return ads.fillCount() == 1 })
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called {
		t.Error("Expected no slot-filled callback when the provider has no ad")
	}
}

func TestApply_LateResultIsStillCached(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	resolver := &MockPayloadResolver{
		ResolvePayloadFunc: func(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
			close(started)
			<-release
			return &domain.RenderablePayload{ItemID: item.ID}, nil
		},
	}
	deck := buildTestDeck(t, 10, 4, true)

	p := NewPrefetcher(resolver, &MockAdProvider{}, 1, nil, nil)
	defer p.Close()

	p.Schedule(deck, 0)
	<-started
	// The cursor moves on before the resolve for item-1 completes.
	close(release)

	waitFor(t, "late result cached", func() bool {
		return p.Payload("item-1") != nil
	})
}

func TestPayload_ReadyCallbackFiresOnCompletion(t *testing.T) {
	var mu sync.Mutex
	ready := make(map[string]struct{})
	onReady := func(itemID string) {
		mu.Lock()
		ready[itemID] = struct{}{}
		mu.Unlock()
	}

	p := NewPrefetcher(&MockPayloadResolver{}, &MockAdProvider{}, 2, onReady, nil)
	defer p.Close()

	p.Schedule(buildTestDeck(t, 4, 4, true), 0)

	waitFor(t, "ready callbacks", func() bool {
		mu.Lock()
		defer mu.Unlock()
		_, one := ready["item-1"]
		_, two := ready["item-2"]
		return one && two
	})
}

func TestClose_CancelsOutstandingWork(t *testing.T) {
	resolver := &MockPayloadResolver{
		ResolvePayloadFunc: func(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error) {
			<-ctx.Done()
			return nil, ctx.Err()
		},
	}
	deck := buildTestDeck(t, 2, 4, true)

	callbacks := make(chan string, 4)
	p := NewPrefetcher(resolver, &MockAdProvider{}, 2, func(itemID string) { callbacks <- itemID }, nil)

	p.Schedule(deck, 0)
	p.Close()

	select {
	case id := <-callbacks:
		t.Errorf("Expected no callbacks after close, got one for %s", id)
	case <-time.After(100 * time.Millisecond):
	}
}
