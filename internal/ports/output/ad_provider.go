package output

import (
	"context"

	"github.com/ZHANGV25/Prune/internal/domain"
)

// AdProvider interface - Output port
// Defines what the engine needs from the sponsored-content network.
type AdProvider interface {
	// RequestFill asks the network for one piece of sponsored content.
	// A (nil, nil) return means "no ad available" and is not an error;
	// the slot simply stays unfilled. Implementations may also fail
	// silently by mapping transport errors to (nil, nil) and logging.
	RequestFill(ctx context.Context) (*domain.SponsoredContent, error)
}
