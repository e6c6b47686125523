package output

import (
	"context"

	"github.com/ZHANGV25/Prune/internal/domain"
)

// AssetSource interface - Output port
// Defines what the engine needs from the media library that owns the raw
// assets. Enumeration happens once per session, at deck build time.
type AssetSource interface {
	// FetchAssets enumerates the content items matching the feed spec, in
	// the library's order, excluding the given already-seen ids. Returns an
	// error wrapping domain.ErrSourceUnavailable when the library cannot be
	// reached; the session then never becomes active.
	FetchAssets(ctx context.Context, feed domain.FeedSpec, excluding map[string]struct{}) ([]domain.ContentItem, error)
}

// PayloadResolver interface - Output port
// Defines what the prefetch cache needs to materialize renderable content
// for one deck entry. Resolution is best-effort: a failure leaves the cache
// entry absent and the resolve is retried the next time the id re-enters
// the look-ahead window.
type PayloadResolver interface {
	// ResolvePayload fetches and decodes the renderable payload for item.
	// Implementations must honor ctx cancellation - outstanding resolves
	// are cancelled when a session is abandoned.
	ResolvePayload(ctx context.Context, item domain.ContentItem) (*domain.RenderablePayload, error)
}
