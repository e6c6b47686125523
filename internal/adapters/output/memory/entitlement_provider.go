package memory

import (
	"sync"

	"github.com/ZHANGV25/Prune/internal/ports/output"
)

// Compile-time check to ensure EntitlementProvider implements the port
var _ output.EntitlementProvider = (*EntitlementProvider)(nil)

// EntitlementProvider struct - Output adapter holding the ad-free
// entitlement flag in memory, seeded from configuration. A real billing
// integration would update it through SetEntitled when receipts change;
// decks already built keep the flag they were built with either way.
type EntitlementProvider struct {
	mu       sync.RWMutex
	entitled bool
}

// NewEntitlementProvider func
func NewEntitlementProvider(entitled bool) *EntitlementProvider {
	return &EntitlementProvider{entitled: entitled}
}

// IsEntitled func - Read synchronously at deck build time
func (e *EntitlementProvider) IsEntitled() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.entitled
}

// SetEntitled func - Updates the flag for decks built from now on
func (e *EntitlementProvider) SetEntitled(entitled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.entitled = entitled
}
