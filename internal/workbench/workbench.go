// Package workbench manages saved automata: entering them, converting
// NFAs, minimizing DFAs and recording acceptance tests.
package workbench

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/ha1tch/fa-toolkit/internal/logging"
	"github.com/ha1tch/fa-toolkit/internal/metrics"
	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
)

var (
	// ErrAlreadyDFA is returned when converting a record that is already
	// deterministic.
	ErrAlreadyDFA = errors.New("automaton is already a DFA")

	// ErrNotDFA is returned when minimizing a record that is not
	// deterministic.
	ErrNotDFA = errors.New("automaton is not a DFA")

	// ErrInvalidAutomaton wraps the reason a submitted form does not
	// describe a valid automaton.
	ErrInvalidAutomaton = errors.New("invalid automaton")
)

// Workbench wraps a store.Store with the automaton operations.
// Safe for concurrent use.
type Workbench struct {
	store   store.Store
	log     *slog.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	// mu serializes this process's read-modify-write cycles on the store.
	mu sync.Mutex
}

type Option func(*Workbench)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *slog.Logger) Option {
	return func(w *Workbench) {
		w.log = l
	}
}

// WithMetrics records every operation on m.
func WithMetrics(m *metrics.Metrics) Option {
	return func(w *Workbench) {
		w.metrics = m
	}
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(w *Workbench) {
		w.now = now
	}
}

// New creates a workbench over s.
func New(s store.Store, opts ...Option) *Workbench {
	w := &Workbench{
		store: s,
		log:   logging.NewNop(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Store returns the underlying store.
func (w *Workbench) Store() store.Store {
	return w.store
}

// AddForm builds an automaton from the text form and saves it together
// with the form.
func (w *Workbench) AddForm(ctx context.Context, f fafile.Form) (*store.Record, fa.Classification, error) {
	start := w.now()
	a, err := fafile.ParseForm(f)
	if err != nil {
		err = fmt.Errorf("%w: %w", ErrInvalidAutomaton, err)
		w.metrics.Observe("add", start, -1, err)
		return nil, fa.Classification{}, err
	}
	return w.add(ctx, start, a, &f)
}

// Add saves a new record for a. The record is marked as coming from an
// NFA when a fails classification.
func (w *Workbench) Add(ctx context.Context, a *fa.Automaton) (*store.Record, fa.Classification, error) {
	return w.add(ctx, w.now(), a, nil)
}

func (w *Workbench) add(ctx context.Context, start time.Time, a *fa.Automaton, input *fafile.Form) (rec *store.Record, cl fa.Classification, err error) {
	defer func() { w.metrics.Observe("add", start, a.NumStates(), err) }()

	cl = fa.Classify(a)

	now := w.now()
	rec = &store.Record{
		Automaton: fafile.NewDocument(a),
		Input:     input,
		FromNFA:   !cl.IsDFA,
		Tests:     []store.TestResult{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	id, err := w.store.Create(ctx, rec)
	if err != nil {
		return nil, cl, fmt.Errorf("failed to create record: %w", err)
	}
	rec.ID = id
	w.log.Info("automaton added", "id", id, "dfa", cl.IsDFA, "states", a.NumStates())
	return rec, cl, nil
}

// Get returns the record with the given ID.
func (w *Workbench) Get(ctx context.Context, id int) (*store.Record, error) {
	return w.store.Load(ctx, id)
}

// List returns all records in ID order.
func (w *Workbench) List(ctx context.Context) ([]*store.Record, error) {
	return w.store.List(ctx)
}

// Delete removes the record with the given ID.
func (w *Workbench) Delete(ctx context.Context, id int) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if err := w.store.Delete(ctx, id); err != nil {
		return err
	}
	w.log.Info("automaton deleted", "id", id)
	return nil
}

// Automaton loads the record and builds its current automaton.
func (w *Workbench) Automaton(ctx context.Context, id int) (*fa.Automaton, error) {
	rec, err := w.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	return build(rec)
}

func build(rec *store.Record) (*fa.Automaton, error) {
	a, err := rec.Automaton.Automaton()
	if err != nil {
		return nil, fmt.Errorf("record %d: %w", rec.ID, err)
	}
	return a, nil
}

// update loads a record, lets fn modify it and saves it back.
func (w *Workbench) update(ctx context.Context, id int, fn func(*store.Record, *fa.Automaton) error) (*store.Record, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec, err := w.store.Load(ctx, id)
	if err != nil {
		return nil, err
	}
	a, err := build(rec)
	if err != nil {
		return nil, err
	}
	if err := fn(rec, a); err != nil {
		return nil, err
	}
	rec.UpdatedAt = w.now()
	if err := w.store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Convert replaces an NFA record's automaton with the equivalent DFA. The
// NFA is kept as the record's Original. Deterministic records fail with
// ErrAlreadyDFA.
func (w *Workbench) Convert(ctx context.Context, id int) (*store.Record, error) {
	start := w.now()
	states := -1
	rec, err := w.update(ctx, id, func(rec *store.Record, a *fa.Automaton) error {
		if fa.IsDeterministic(a) {
			return fmt.Errorf("record %d: %w", id, ErrAlreadyDFA)
		}
		dfa := fa.ToDFA(a)
		states = dfa.NumStates()
		rec.Original = rec.Automaton
		rec.Automaton = fafile.NewDocument(dfa)
		rec.FromNFA = true
		rec.Minimized = nil
		return nil
	})
	w.metrics.Observe("convert", start, states, err)
	if err != nil {
		return nil, err
	}
	w.log.Info("automaton converted", "id", id, "states", states)
	return rec, nil
}

// Minimize stores the minimal DFA of a deterministic record alongside its
// automaton. Other records fail with ErrNotDFA.
func (w *Workbench) Minimize(ctx context.Context, id int) (*store.Record, error) {
	start := w.now()
	states := -1
	rec, err := w.update(ctx, id, func(rec *store.Record, a *fa.Automaton) error {
		minimal, err := fa.Minimize(a)
		if err != nil {
			return fmt.Errorf("record %d: %w: %w", id, ErrNotDFA, err)
		}
		states = minimal.NumStates()
		rec.Minimized = fafile.NewDocument(minimal)
		return nil
	})
	w.metrics.Observe("minimize", start, states, err)
	if err != nil {
		return nil, err
	}
	w.log.Info("automaton minimized", "id", id, "states", states)
	return rec, nil
}

// Test runs input against the record and appends the outcome to its
// history. Symbols are separated by sep, or are single characters when
// sep is empty.
func (w *Workbench) Test(ctx context.Context, id int, input, sep string) (store.TestResult, error) {
	start := w.now()
	var result store.TestResult
	_, err := w.update(ctx, id, func(rec *store.Record, a *fa.Automaton) error {
		result = store.TestResult{
			Input:     input,
			Accepted:  fa.Accepts(a, fa.SplitInput(input, sep)),
			Timestamp: w.now(),
		}
		rec.Tests = append(rec.Tests, result)
		return nil
	})
	w.metrics.Observe("test", start, -1, err)
	if err != nil {
		return store.TestResult{}, err
	}
	w.log.Debug("input tested", "id", id, "input", input, "accepted", result.Accepted)
	return result, nil
}

// Export writes every record as an indented JSON array.
func (w *Workbench) Export(ctx context.Context, out io.Writer) error {
	records, err := w.store.List(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}
