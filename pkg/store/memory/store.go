// Package memory implements store.Store in memory.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/ha1tch/fa-toolkit/pkg/store"
)

// Store implements store.Store in memory.
// Safe for concurrent use.
type Store struct {
	data map[int]*store.Record
	mu   sync.RWMutex
}

// New creates a new in-memory store.
func New() *Store {
	return &Store{
		data: make(map[int]*store.Record),
	}
}

// Create stores a copy of the record under the next free ID.
func (s *Store) Create(ctx context.Context, r *store.Record) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID()
	c := store.WithID(r, id)
	if err := store.Validate(c); err != nil {
		return 0, err
	}
	c, err := c.Clone()
	if err != nil {
		return 0, err
	}
	s.data[id] = c
	return id, nil
}

// Save stores a copy of the record.
func (s *Store) Save(ctx context.Context, r *store.Record) error {
	if err := store.Validate(r); err != nil {
		return err
	}
	// Copy so later edits by the caller do not leak into the store.
	c, err := r.Clone()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[r.ID] = c
	return nil
}

// Load returns a copy of the record.
func (s *Store) Load(ctx context.Context, id int) (*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.Clone()
}

// Delete removes the record.
func (s *Store) Delete(ctx context.Context, id int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.data[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.data, id)
	return nil
}

// List returns copies of all records ordered by ID.
func (s *Store) List(ctx context.Context) ([]*store.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*store.Record, 0, len(s.data))
	for _, r := range s.data {
		c, err := r.Clone()
		if err != nil {
			return nil, err
		}
		records = append(records, c)
	}
	sort.Slice(records, func(i, j int) bool { return records[i].ID < records[j].ID })
	return records, nil
}

// NextID returns the next free ID.
func (s *Store) NextID(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.nextID(), nil
}

// nextID requires s.mu to be held.
func (s *Store) nextID() int {
	next := 1
	for id := range s.data {
		if id >= next {
			next = id + 1
		}
	}
	return next
}
