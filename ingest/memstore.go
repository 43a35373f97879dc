package ingest

import (
	"fmt"
	"sync"

	"github.com/McNamara84/ernie-sub002/graph"
)

// MemStore is a mutex-guarded in-memory Store. It backs the CLI and the
// tests; persistence beyond a single run is the caller's concern.
type MemStore struct {
	mu      sync.Mutex
	ordered []*graph.Resource
	byIdent map[string]*graph.Resource
}

// NewMemStore creates an empty in-memory store.
func NewMemStore() *MemStore {
	return &MemStore{byIdent: make(map[string]*graph.Resource)}
}

// HasIdentifier reports whether a resource with this identifier is stored.
func (s *MemStore) HasIdentifier(identifier string) bool {
	if identifier == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.byIdent[identifier]
	return ok
}

// Put stores a resource, enforcing identifier uniqueness. Resources
// without a public identifier are stored without a uniqueness check.
func (s *MemStore) Put(res *graph.Resource) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Identifier != "" {
		if _, ok := s.byIdent[res.Identifier]; ok {
			return fmt.Errorf("%w: %s", ErrDuplicateIdentifier, res.Identifier)
		}
		s.byIdent[res.Identifier] = res
	}
	s.ordered = append(s.ordered, res)
	return nil
}

// Get returns the stored resource with the given identifier.
func (s *MemStore) Get(identifier string) (*graph.Resource, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, ok := s.byIdent[identifier]
	return res, ok
}

// Len returns the number of stored resources.
func (s *MemStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.ordered)
}

// All returns the stored resources in insertion order.
func (s *MemStore) All() []*graph.Resource {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*graph.Resource, len(s.ordered))
	copy(out, s.ordered)
	return out
}

var _ Store = (*MemStore)(nil)
