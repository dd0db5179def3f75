package inmemorytable

import (
	"context"
	"sort"
	"sync"

	"github.com/specialistvlad/evalgraph/internal/node"
	"github.com/specialistvlad/evalgraph/internal/tablestore"
)

// Store is an in-memory implementation of tablestore.Store.
//
// Unlike a sync.Map store, it guards a single map with an RWMutex: snapshots
// must observe every name at one version, and a snapshot is reused until the
// next write invalidates it.
type Store struct {
	mu       sync.RWMutex
	nodes    map[string]node.Node
	written  map[string]uint64 // Key: name, Value: version of its last write or delete
	version  uint64
	snapshot *node.Table
}

var _ tablestore.Store = (*Store)(nil)

// New creates a new, empty in-memory table store.
func New() *Store {
	return &Store{
		nodes:   make(map[string]node.Node),
		written: make(map[string]uint64),
	}
}

// Set publishes n under name.
func (s *Store) Set(ctx context.Context, name string, n node.Node) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.version++
	s.nodes[name] = n
	s.written[name] = s.version
	s.snapshot = nil
	return nil
}

// Get returns the node published under name.
func (s *Store) Get(ctx context.Context, name string) (node.Node, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n, ok := s.nodes[name]
	return n, ok, nil
}

// Delete removes the node published under name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.nodes[name]; !ok {
		return nil
	}
	s.version++
	delete(s.nodes, name)
	s.written[name] = s.version
	s.snapshot = nil
	return nil
}

// Snapshot returns the current table, building it only after a write.
func (s *Store) Snapshot(ctx context.Context) (*node.Table, error) {
	s.mu.RLock()
	snap := s.snapshot
	s.mu.RUnlock()
	if snap != nil {
		return snap, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snapshot == nil {
		s.snapshot = node.NewTable(s.nodes)
	}
	return s.snapshot, nil
}

// Version returns the number of writes applied so far.
func (s *Store) Version(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version, nil
}

// ChangedSince returns every name written or deleted after version.
func (s *Store) ChangedSince(ctx context.Context, version uint64) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var names []string
	for name, v := range s.written {
		if v > version {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
