package input

import (
	"context"

	"github.com/ZHANGV25/Prune/internal/domain"
)

// ReviewService interface - Input port (use case)
// Defines what the application can do with review sessions. All mutating
// operations on one session are serialized against each other by the
// implementation; callers may invoke them from any goroutine.
type ReviewService interface {
	// StartSession builds a deck for the feed (excluding already-seen ids),
	// opens a session over it and starts look-ahead prefetching. Returns an
	// error wrapping domain.ErrSourceUnavailable when the asset source is
	// down.
	StartSession(ctx context.Context, request domain.StartSessionRequest) (*domain.SessionSnapshot, error)

	// Swipe decides the entry under the cursor. Returns the post-swipe
	// snapshot; callers check Snapshot.State to detect the finished
	// transition. Returns domain.ErrSessionFinished on a finished session.
	Swipe(sessionID string, direction domain.SwipeDirection) (*domain.SessionSnapshot, error)

	// Undo reverses the most recent content decision, skipping back over ad
	// slots. A session with nothing reversible returns the unchanged
	// snapshot.
	Undo(sessionID string) (*domain.SessionSnapshot, error)

	// CommitDeletions delegates the pending-deletion set to the deletion
	// sink. The call suspends until the sink responds but does not block
	// other operations on the session. On sink failure the pending set is
	// preserved and the sink's error returned.
	CommitDeletions(ctx context.Context, sessionID string) (*domain.CommitResult, error)

	// Snapshot returns the current observable state of a session.
	Snapshot(sessionID string) (*domain.SessionSnapshot, error)

	// Payload returns the prefetched renderable payload for an item in the
	// session's deck, or nil when the cache holds nothing for it yet.
	Payload(sessionID, itemID string) (*domain.RenderablePayload, error)

	// AbandonSession tears the session down without committing anything:
	// outstanding prefetch and ad work is cancelled and no further results
	// are surfaced. Idempotent.
	AbandonSession(sessionID string) error

	// Subscribe registers a listener for the session's change events. The
	// returned cancel func must be called to release the subscription.
	Subscribe(sessionID string) (<-chan domain.ChangeEvent, func(), error)
}
