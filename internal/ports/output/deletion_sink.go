package output

import (
	"context"

	"github.com/ZHANGV25/Prune/internal/domain"
)

// DeletionSink interface - Output port
// Defines what the engine needs to physically delete flagged assets.
// The sink is assumed all-or-nothing: either every item is deleted or the
// call returns an error and nothing was deleted. On error the engine keeps
// the pending-deletion set untouched so the caller can retry or discard.
type DeletionSink interface {
	// CommitDeletions deletes the given content items. The call suspends
	// the caller until the sink responds; it must not be assumed fast.
	CommitDeletions(ctx context.Context, items []domain.ContentItem) error
}
