// Package storetest holds the behaviour every store.Store must share.
package storetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Fixture returns a record holding a two-state DFA over {0,1} that
// accepts words ending in 1.
func Fixture(t testing.TB, id int) *store.Record {
	t.Helper()
	d := fa.New(fa.KindDFA)
	d.Name = "ends-in-one"
	d.States = []string{"s0", "s1"}
	d.Alphabet = []string{"0", "1"}
	d.SetStart("s0")
	d.SetFinal("s1")
	d.AddTransition("s0", "0", "s0")
	d.AddTransition("s0", "1", "s1")
	d.AddTransition("s1", "0", "s0")
	d.AddTransition("s1", "1", "s1")
	a, err := d.Build()
	require.NoError(t, err)

	created := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	return &store.Record{
		ID:        id,
		Automaton: fafile.NewDocument(a),
		Tests: []store.TestResult{
			{Input: "01", Accepted: true, Timestamp: created},
		},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

// RunContract verifies that s adheres to the store.Store contract.
// s must be empty when RunContract starts.
func RunContract(t *testing.T, s store.Store) {
	ctx := context.Background()

	t.Run("Empty", func(t *testing.T) {
		records, err := s.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, records)

		next, err := s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, next)
	})

	t.Run("Save and Load", func(t *testing.T) {
		rec := Fixture(t, 1)
		require.NoError(t, s.Save(ctx, rec), "Save should not return error")

		loaded, err := s.Load(ctx, 1)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, rec, loaded)

		a, err := loaded.Automaton.Automaton()
		require.NoError(t, err)
		assert.True(t, fa.Accepts(a, []string{"0", "1"}))

		require.NoError(t, s.Delete(ctx, 1))
	})

	t.Run("Save Replaces", func(t *testing.T) {
		rec := Fixture(t, 1)
		require.NoError(t, s.Save(ctx, rec))
		rec.FromNFA = true
		rec.Tests = append(rec.Tests, store.TestResult{Input: "0", Timestamp: rec.CreatedAt})
		require.NoError(t, s.Save(ctx, rec))

		loaded, err := s.Load(ctx, 1)
		require.NoError(t, err)
		assert.True(t, loaded.FromNFA)
		assert.Len(t, loaded.Tests, 2)

		require.NoError(t, s.Delete(ctx, 1))
	})

	t.Run("Save Rejects Invalid", func(t *testing.T) {
		assert.Error(t, s.Save(ctx, &store.Record{ID: 0}))
		assert.Error(t, s.Save(ctx, &store.Record{ID: 3}))
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := s.Load(ctx, 999)
		assert.ErrorIs(t, err, store.ErrNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, s.Save(ctx, Fixture(t, 1)))
		require.NoError(t, s.Delete(ctx, 1), "Delete should not return error")

		_, err := s.Load(ctx, 1)
		assert.ErrorIs(t, err, store.ErrNotFound, "Load after Delete should return ErrNotFound")
		assert.ErrorIs(t, s.Delete(ctx, 1), store.ErrNotFound)
	})

	t.Run("Create", func(t *testing.T) {
		rec := Fixture(t, 42)
		id, err := s.Create(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, 1, id)
		assert.Equal(t, 42, rec.ID, "Create should not modify its argument")

		id, err = s.Create(ctx, rec)
		require.NoError(t, err)
		assert.Equal(t, 2, id)

		loaded, err := s.Load(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 2, loaded.ID)
		assert.Equal(t, rec.Automaton, loaded.Automaton)

		_, err = s.Create(ctx, &store.Record{})
		assert.Error(t, err)

		require.NoError(t, s.Delete(ctx, 1))
		require.NoError(t, s.Delete(ctx, 2))
	})

	t.Run("Concurrent Create", func(t *testing.T) {
		const n = 8
		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			ids  []int
			errs []error
		)
		rec := Fixture(t, 1)
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				id, err := s.Create(ctx, rec)
				mu.Lock()
				defer mu.Unlock()
				ids = append(ids, id)
				errs = append(errs, err)
			}()
		}
		wg.Wait()
		defer func() {
			for _, id := range ids {
				_ = s.Delete(ctx, id)
			}
		}()

		for _, err := range errs {
			require.NoError(t, err)
		}
		assert.ElementsMatch(t, []int{1, 2, 3, 4, 5, 6, 7, 8}, ids)

		records, err := s.List(ctx)
		require.NoError(t, err)
		assert.Len(t, records, n)
	})

	t.Run("List and NextID", func(t *testing.T) {
		for _, id := range []int{3, 1, 2} {
			require.NoError(t, s.Save(ctx, Fixture(t, id)))
		}
		defer func() {
			for _, id := range []int{1, 2, 3} {
				_ = s.Delete(ctx, id)
			}
		}()

		records, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, records, 3)
		for i, r := range records {
			assert.Equal(t, i+1, r.ID)
		}

		next, err := s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 4, next)

		require.NoError(t, s.Delete(ctx, 3))
		next, err = s.NextID(ctx)
		require.NoError(t, err)
		assert.Equal(t, 3, next)
	})
}
