package workbench

import (
	"bytes"
	"context"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fa-toolkit/internal/metrics"
	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
	"github.com/ha1tch/fa-toolkit/pkg/store/file"
	"github.com/ha1tch/fa-toolkit/pkg/store/memory"
)

var clock = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func newWorkbench(t *testing.T) *Workbench {
	t.Helper()
	return New(memory.New(), WithMetrics(metrics.New()), WithClock(func() time.Time { return clock }))
}

// endsWithAB accepts words over {a,b} ending in "ab".
var endsWithAB = fafile.Form{
	States:      "q0,q1,q2",
	Alphabet:    "a,b",
	Start:       "q0",
	Final:       "q2",
	Transitions: "q0,a,{q0,q1}; q0,b,q0; q1,b,q2",
}

// evenZeros is a DFA over {0,1} with a redundant copy of its start state.
var evenZeros = fafile.Form{
	States:      "e,o,e2",
	Alphabet:    "0,1",
	Start:       "e",
	Final:       "e,e2",
	Transitions: "e,0,o; e,1,e2; o,0,e2; o,1,o; e2,0,o; e2,1,e",
}

func TestAddForm(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()

	nfa, cl, err := w.AddForm(ctx, endsWithAB)
	require.NoError(t, err)
	assert.False(t, cl.IsDFA)
	assert.NotEmpty(t, cl.Violations)
	assert.Equal(t, 1, nfa.ID)
	assert.True(t, nfa.FromNFA)
	assert.Equal(t, &endsWithAB, nfa.Input)
	assert.Equal(t, clock, nfa.CreatedAt)

	dfa, cl, err := w.AddForm(ctx, evenZeros)
	require.NoError(t, err)
	assert.True(t, cl.IsDFA)
	assert.Equal(t, 2, dfa.ID)
	assert.False(t, dfa.FromNFA)
	assert.Equal(t, string(fa.KindDFA), dfa.Automaton.Kind)

	_, _, err = w.AddForm(ctx, fafile.Form{States: "a"})
	assert.ErrorIs(t, err, fafile.ErrIncompleteForm)
	assert.ErrorIs(t, err, ErrInvalidAutomaton)

	records, err := w.List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

// Two workbenches over one file store stand in for two processes sharing a
// record directory.
func TestAddSharedStoreAssignsDistinctIDs(t *testing.T) {
	dir := t.TempDir()
	benches := []*Workbench{New(file.New(dir)), New(file.New(dir))}
	ctx := context.Background()

	const perBench = 5
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		ids  []int
		errs []error
	)
	for _, w := range benches {
		for i := 0; i < perBench; i++ {
			wg.Add(1)
			go func(w *Workbench) {
				defer wg.Done()
				rec, _, err := w.AddForm(ctx, evenZeros)
				mu.Lock()
				defer mu.Unlock()
				errs = append(errs, err)
				if rec != nil {
					ids = append(ids, rec.ID)
				}
			}(w)
		}
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, ids)

	records, err := benches[0].List(ctx)
	require.NoError(t, err)
	assert.Len(t, records, 2*perBench)
}

func TestAddAutomaton(t *testing.T) {
	w := newWorkbench(t)
	a, err := fafile.ParseForm(evenZeros)
	require.NoError(t, err)

	rec, _, err := w.Add(context.Background(), a)
	require.NoError(t, err)
	assert.Nil(t, rec.Input)

	got, err := w.Automaton(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.Equal(t, a.States(), got.States())
}

func TestConvert(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()
	nfa, _, err := w.AddForm(ctx, endsWithAB)
	require.NoError(t, err)

	rec, err := w.Convert(ctx, nfa.ID)
	require.NoError(t, err)
	assert.True(t, rec.FromNFA)
	assert.Equal(t, nfa.Automaton, rec.Original)
	assert.Equal(t, string(fa.KindDFA), rec.Automaton.Kind)

	a, err := w.Automaton(ctx, nfa.ID)
	require.NoError(t, err)
	assert.True(t, fa.IsDeterministic(a))
	assert.True(t, fa.Accepts(a, []string{"b", "a", "b"}))
	assert.False(t, fa.Accepts(a, []string{"a", "b", "a"}))

	_, err = w.Convert(ctx, nfa.ID)
	assert.ErrorIs(t, err, ErrAlreadyDFA)

	_, err = w.Convert(ctx, 42)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestMinimize(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()
	dfa, _, err := w.AddForm(ctx, evenZeros)
	require.NoError(t, err)

	rec, err := w.Minimize(ctx, dfa.ID)
	require.NoError(t, err)
	require.NotNil(t, rec.Minimized)
	assert.Equal(t, []string{"{e,e2}", "o"}, rec.Minimized.States)
	assert.Equal(t, dfa.Automaton, rec.Automaton, "the automaton itself is unchanged")

	nfa, _, err := w.AddForm(ctx, endsWithAB)
	require.NoError(t, err)
	_, err = w.Minimize(ctx, nfa.ID)
	assert.ErrorIs(t, err, ErrNotDFA)
	var nd *fa.NotDeterministicError
	assert.ErrorAs(t, err, &nd)

	// Converting first makes the record minimizable.
	_, err = w.Convert(ctx, nfa.ID)
	require.NoError(t, err)
	rec, err = w.Minimize(ctx, nfa.ID)
	require.NoError(t, err)
	assert.Len(t, rec.Minimized.States, 3)
}

func TestTest(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()
	nfa, _, err := w.AddForm(ctx, endsWithAB)
	require.NoError(t, err)

	res, err := w.Test(ctx, nfa.ID, "aab", "")
	require.NoError(t, err)
	assert.True(t, res.Accepted)
	assert.Equal(t, clock, res.Timestamp)

	res, err = w.Test(ctx, nfa.ID, "a b a", " ")
	require.NoError(t, err)
	assert.False(t, res.Accepted)

	res, err = w.Test(ctx, nfa.ID, "abc", "")
	require.NoError(t, err)
	assert.False(t, res.Accepted, "unknown symbols reject")

	rec, err := w.Get(ctx, nfa.ID)
	require.NoError(t, err)
	require.Len(t, rec.Tests, 3)
	assert.Equal(t, "aab", rec.Tests[0].Input)
	assert.Equal(t, "a b a", rec.Tests[1].Input)

	_, err = w.Test(ctx, 9, "a", "")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestDelete(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()
	rec, _, err := w.AddForm(ctx, evenZeros)
	require.NoError(t, err)

	require.NoError(t, w.Delete(ctx, rec.ID))
	_, err = w.Get(ctx, rec.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
	assert.ErrorIs(t, w.Delete(ctx, rec.ID), store.ErrNotFound)
}

func TestExport(t *testing.T) {
	w := newWorkbench(t)
	ctx := context.Background()
	_, _, err := w.AddForm(ctx, endsWithAB)
	require.NoError(t, err)
	_, _, err = w.AddForm(ctx, evenZeros)
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, w.Export(ctx, &buf))

	var records []store.Record
	require.NoError(t, json.Unmarshal(buf.Bytes(), &records))
	require.Len(t, records, 2)
	assert.Equal(t, 1, records[0].ID)
	assert.True(t, records[0].FromNFA)
	assert.Equal(t, "q0,a,{q0,q1}; q0,b,q0; q1,b,q2", records[0].Input.Transitions)
}
