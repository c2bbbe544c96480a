package render

import (
	"sync"

	"github.com/go-theft-craft/voxel/pkg/world/chunk"
)

// Store holds the latest uploaded mesh per chunk. The render loop writes it;
// stats readers may run on other goroutines.
type Store struct {
	mu      sync.RWMutex
	meshes  map[chunk.Pos]*chunk.Mesh
	uploads int
	pruned  int
}

// NewStore returns an empty Store.
func NewStore() *Store {
	return &Store{meshes: make(map[chunk.Pos]*chunk.Mesh)}
}

// Upload replaces the geometry stored for m.Pos. An empty mesh removes it.
func (s *Store) Upload(m *chunk.Mesh) {
	if m == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads++
	if m.Empty() {
		delete(s.meshes, m.Pos)
		return
	}
	s.meshes[m.Pos] = m
}

// Get returns the stored mesh for p.
func (s *Store) Get(p chunk.Pos) (*chunk.Mesh, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.meshes[p]
	return m, ok
}

// Prune drops every mesh whose chunk keep rejects and returns how many were
// dropped.
func (s *Store) Prune(keep func(chunk.Pos) bool) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for p := range s.meshes {
		if !keep(p) {
			delete(s.meshes, p)
			n++
		}
	}
	s.pruned += n
	return n
}

// Meshes returns a snapshot of the stored meshes in no particular order.
func (s *Store) Meshes() []*chunk.Mesh {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*chunk.Mesh, 0, len(s.meshes))
	for _, m := range s.meshes {
		out = append(out, m)
	}
	return out
}

// Len returns the number of stored meshes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.meshes)
}
