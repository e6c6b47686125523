package application

import (
	"sync"

	"github.com/ZHANGV25/Prune/internal/domain"
	"github.com/ZHANGV25/Prune/internal/ports/output"

	"github.com/sirupsen/logrus"
)

// Compile-time checks: the seen set is both an input use case and the marker
// the session state machine mutates while swiping
var _ domain.SeenMarker = (*SeenSet)(nil)

// SeenSet struct - Application service owning the cross-session record of
// already-reviewed asset ids. The authoritative copy lives in memory for
// fast lookup; every mutation persists the full set through the SeenStore
// port. All operations are safe for concurrent use and idempotent.
type SeenSet struct {
	mu    sync.RWMutex
	ids   map[string]struct{}
	store output.SeenStore
}

// NewSeenSet func - Creates the seen set, loading the persisted ids
func NewSeenSet(store output.SeenStore) (*SeenSet, error) {
	ids, err := store.Load()
	if err != nil {
		return nil, err
	}
	if ids == nil {
		ids = make(map[string]struct{})
	}
	logrus.Infof("Seen set loaded with %d ids", len(ids))
	return &SeenSet{
		ids:   ids,
		store: store,
	}, nil
}

// IsSeen func
func (s *SeenSet) IsSeen(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.ids[id]
	return ok
}

// AllSeen func - Copy of every seen id
func (s *SeenSet) AllSeen() map[string]struct{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		ids[id] = struct{}{}
	}
	return ids
}

// MarkSeen func - Record one reviewed id. No-op when already seen, so the
// store is not touched for repeated marks.
func (s *SeenSet) MarkSeen(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; ok {
		return
	}
	s.ids[id] = struct{}{}
	s.persist()
}

// MarkSeenAll func - Record several reviewed ids with a single persist
func (s *SeenSet) MarkSeenAll(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	added := false
	for _, id := range ids {
		if _, ok := s.ids[id]; !ok {
			s.ids[id] = struct{}{}
			added = true
		}
	}
	if added {
		s.persist()
	}
}

// MarkUnseen func - Remove an id so it reappears in future sessions (undo
// support). No-op when the id was never seen.
func (s *SeenSet) MarkUnseen(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.ids[id]; !ok {
		return
	}
	delete(s.ids, id)
	s.persist()
}

// Clear func - Reset the whole record
func (s *SeenSet) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.ids = make(map[string]struct{})
	return s.store.Save(s.ids)
}

// persist - caller holds the write lock. Persistence failures degrade to a
// log line: the in-memory set stays authoritative for this process and the
// next successful mutation rewrites the full set anyway.
func (s *SeenSet) persist() {
	snapshot := make(map[string]struct{}, len(s.ids))
	for id := range s.ids {
		snapshot[id] = struct{}{}
	}
	if err := s.store.Save(snapshot); err != nil {
		logrus.Errorln("Failed to persist seen set:", err)
	}
}
