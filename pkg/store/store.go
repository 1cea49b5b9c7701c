// Package store defines persistence for saved automaton records.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ha1tch/fa-toolkit/pkg/fafile"
)

// ErrNotFound is returned when no record has the requested ID.
var ErrNotFound = errors.New("record not found")

// TestResult records one acceptance test run against a record.
type TestResult struct {
	Input     string    `json:"input"`
	Accepted  bool      `json:"accepted"`
	Timestamp time.Time `json:"timestamp"`
}

// Record is a saved automaton together with its provenance and history.
type Record struct {
	ID        int              `json:"id"`
	Automaton *fafile.Document `json:"automaton"`
	// Input is the form the automaton was entered with, if any.
	Input *fafile.Form `json:"input,omitempty"`
	// Original holds the NFA a converted record started from.
	Original  *fafile.Document `json:"original,omitempty"`
	FromNFA   bool             `json:"fromNfa"`
	Minimized *fafile.Document `json:"minimized,omitempty"`
	Tests     []TestResult     `json:"tests"`
	CreatedAt time.Time        `json:"createdAt"`
	UpdatedAt time.Time        `json:"updatedAt"`
}

// Clone returns a deep copy of the record.
func (r *Record) Clone() (*Record, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record: %w", err)
	}
	var c Record
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to unmarshal record: %w", err)
	}
	return &c, nil
}

// Store persists records keyed by integer ID. Implementations are safe for
// concurrent use, including by several processes sharing one backend.
type Store interface {
	// Create stores r under a newly reserved ID and returns that ID. r.ID
	// is ignored and r itself is not modified. Concurrent creates never
	// receive the same ID.
	Create(ctx context.Context, r *Record) (int, error)

	// Save creates or replaces the record with r.ID.
	Save(ctx context.Context, r *Record) error

	// Load returns the record with the given ID, or ErrNotFound.
	Load(ctx context.Context, id int) (*Record, error)

	// Delete removes the record with the given ID, or returns ErrNotFound.
	Delete(ctx context.Context, id int) error

	// List returns every record in ascending ID order.
	List(ctx context.Context) ([]*Record, error)

	// NextID returns one more than the largest stored ID, starting at 1.
	// The ID is not reserved; use Create to add a record.
	NextID(ctx context.Context) (int, error)
}

// MaxCreateAttempts bounds how often an adapter retries Create after
// losing an ID to a concurrent writer.
const MaxCreateAttempts = 100

// WithID returns a shallow copy of r carrying id.
func WithID(r *Record, id int) *Record {
	if r == nil {
		return nil
	}
	c := *r
	c.ID = id
	return &c
}

// Validate checks the fields every adapter relies on.
func Validate(r *Record) error {
	if r == nil {
		return errors.New("nil record")
	}
	if r.ID <= 0 {
		return fmt.Errorf("invalid record id %d", r.ID)
	}
	if r.Automaton == nil {
		return fmt.Errorf("record %d has no automaton", r.ID)
	}
	return nil
}
