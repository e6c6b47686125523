package memory

import (
	"sync"

	"github.com/ZHANGV25/Prune/internal/ports/output"
)

// Compile-time check to ensure SeenStore implements the SeenStore port
var _ output.SeenStore = (*SeenStore)(nil)

// SeenStore struct - Output adapter persisting the seen set in process
// memory only. Used when no database is configured (development, tests);
// the set survives for the process lifetime and is lost on restart.
type SeenStore struct {
	mu  sync.Mutex
	ids map[string]struct{}
}

// NewSeenStore func - Creates an empty in-memory seen store
func NewSeenStore() *SeenStore {
	return &SeenStore{ids: make(map[string]struct{})}
}

// Load func - Returns a copy of the stored ids
func (m *SeenStore) Load() (map[string]struct{}, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	ids := make(map[string]struct{}, len(m.ids))
	for id := range m.ids {
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Save func - Replaces the stored ids with a copy of the given set
func (m *SeenStore) Save(ids map[string]struct{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored := make(map[string]struct{}, len(ids))
	for id := range ids {
		stored[id] = struct{}{}
	}
	m.ids = stored
	return nil
}
