package application

import (
	"context"
	"sync"

	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Default look-ahead configuration
const (
	defaultPrefetchWindow = 4
	resultsBufferSize     = 32
)

// prefetchResult is what a background task sends back to the single
// consumer: either a resolved payload for a content id or a delivered ad
// for a slot id.
type prefetchResult struct {
	itemID  string
	payload *domain.RenderablePayload
	slotID  string
	ad      *domain.SponsoredContent
	err     error
}

// Prefetcher struct - Bounded look-ahead manager for one session.
//
// Schedule is invoked after every cursor mutation with the session lock
// held; it fans resolve and ad-fill tasks out to goroutines, at most one in
// flight per key. Completions funnel through a single results channel into
// one consumer goroutine, so every cache and slot mutation coming from the
// background is serialized. Close cancels all outstanding work.
type Prefetcher struct {
	resolver output.PayloadResolver
	ads      output.AdProvider
	window   int

	mu         sync.RWMutex
	cache      map[string]*domain.RenderablePayload
	inflight   map[string]struct{}
	adInflight map[string]struct{}

	results chan prefetchResult
	ctx     context.Context
	cancel  context.CancelFunc

	// onPayloadReady and onSlotFilled run on the consumer goroutine without
	// any prefetcher lock held; the review service uses them to re-enter
	// the session under its own lock.
	onPayloadReady func(itemID string)
	onSlotFilled   func(slotID string, content domain.SponsoredContent)
}

// NewPrefetcher func - Creates and starts the look-ahead manager. The
// returned prefetcher owns a consumer goroutine until Close is called.
func NewPrefetcher(resolver output.PayloadResolver, ads output.AdProvider, window int,
	onPayloadReady func(itemID string),
	onSlotFilled func(slotID string, content domain.SponsoredContent)) *Prefetcher {

	if window <= 0 {
		window = defaultPrefetchWindow
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Prefetcher{
		resolver:       resolver,
		ads:            ads,
		window:         window,
		cache:          make(map[string]*domain.RenderablePayload),
		inflight:       make(map[string]struct{}),
		adInflight:     make(map[string]struct{}),
		results:        make(chan prefetchResult, resultsBufferSize),
		ctx:            ctx,
		cancel:         cancel,
		onPayloadReady: onPayloadReady,
		onSlotFilled:   onSlotFilled,
	}
	go p.consume()
	return p
}

// Window func - configured look-ahead width
func (p *Prefetcher) Window() int {
	return p.window
}

// Payload func - the cached renderable payload for an item id, or nil.
// Absence means the rendering layer shows a loading state; it never blocks.
func (p *Prefetcher) Payload(itemID string) *domain.RenderablePayload {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cache[itemID]
}

// Schedule func - Recompute the look-ahead window [cursor, cursor+W-1] over
// the deck and launch whatever work is missing: payload resolves for
// uncached content entries, ad fills for unfilled slots. Duplicate work per
// key is suppressed. Never blocks on the work itself.
func (p *Prefetcher) Schedule(deck domain.Deck, cursor int) {
	end := cursor + p.window
	if end > len(deck) {
		end = len(deck)
	}
	if cursor < 0 {
		cursor = 0
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	for i := cursor; i < end; i++ {
		item := deck[i]
		switch {
		case item.IsContent():
			id := item.Content.ID
			if _, cached := p.cache[id]; cached {
				continue
			}
			if _, running := p.inflight[id]; running {
				continue
			}
			p.inflight[id] = struct{}{}
			go p.resolve(*item.Content)

		case item.IsSlot() && item.Filled == nil:
			if _, running := p.adInflight[item.SlotID]; running {
				continue
			}
			p.adInflight[item.SlotID] = struct{}{}
			go p.requestFill(item.SlotID)
		}
	}
}

// Close func - Cancel outstanding resolves and fills and stop the consumer.
// No results are surfaced after Close returns.
func (p *Prefetcher) Close() {
	p.cancel()
}

func (p *Prefetcher) resolve(item domain.ContentItem) {
	payload, err := p.resolver.ResolvePayload(p.ctx, item)
	p.deliver(prefetchResult{itemID: item.ID, payload: payload, err: err})
}

func (p *Prefetcher) requestFill(slotID string) {
	ad, err := p.ads.RequestFill(p.ctx)
	p.deliver(prefetchResult{slotID: slotID, ad: ad, err: err})
}

func (p *Prefetcher) deliver(result prefetchResult) {
	select {
	case p.results <- result:
	case <-p.ctx.Done():
	}
}

// consume is the single consumer serializing background completions.
// It must not hold p.mu while invoking the callbacks - they re-enter the
// session under the review service's lock.
func (p *Prefetcher) consume() {
	for {
		select {
		case <-p.ctx.Done():
			return
		case result := <-p.results:
			p.apply(result)
		}
	}
}

func (p *Prefetcher) apply(result prefetchResult) {
	if result.itemID != "" {
		p.mu.Lock()
		delete(p.inflight, result.itemID)
		if result.err == nil && result.payload != nil {
			// Stored even when the window has already moved on - cache
			// population is not wasted, only scheduling is windowed.
			p.cache[result.itemID] = result.payload
		}
		p.mu.Unlock()

		if result.err != nil {
			// Left absent; retried when the id re-enters the window.
			logrus.Warnf("Prefetch resolve failed for %s: %v", result.itemID, result.err)
			return
		}
		if result.payload != nil && p.onPayloadReady != nil {
			p.onPayloadReady(result.itemID)
		}
		return
	}

	if result.slotID != "" {
		p.mu.Lock()
		delete(p.adInflight, result.slotID)
		p.mu.Unlock()

		if result.err != nil {
			logrus.Warnf("Ad fill request failed for %s: %v", result.slotID, result.err)
			return
		}
		if result.ad == nil {
			// No ad available; the slot stays unfilled.
			return
		}
		if p.onSlotFilled != nil {
			p.onSlotFilled(result.slotID, *result.ad)
		}
	}
}
