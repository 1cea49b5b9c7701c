package fa_test

import (
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// randomNFA builds a small NFA over {a, b} with epsilon moves.
func randomNFA(r *rand.Rand) *fa.Definition {
	n := 1 + r.IntN(5)
	d := fa.New(fa.KindNFA)
	d.Alphabet = []string{"a", "b"}
	for i := 0; i < n; i++ {
		d.AddState(fmt.Sprintf("s%d", i))
		if r.IntN(3) == 0 {
			d.Final = append(d.Final, fmt.Sprintf("s%d", i))
		}
	}
	d.Start = d.States[r.IntN(n)]
	symbols := []string{"a", "b", fa.Epsilon}
	for i := r.IntN(3 * n); i > 0; i-- {
		var to []string
		for j := r.IntN(3); j >= 0; j-- {
			to = append(to, d.States[r.IntN(n)])
		}
		d.AddTransition(d.States[r.IntN(n)], symbols[r.IntN(len(symbols))], to...)
	}
	return d
}

// words returns every word over alphabet up to length max.
func words(alphabet []string, max int) [][]string {
	out := [][]string{{}}
	frontier := [][]string{{}}
	for l := 0; l < max; l++ {
		var next [][]string
		for _, w := range frontier {
			for _, s := range alphabet {
				nw := append(append([]string{}, w...), s)
				next = append(next, nw)
			}
		}
		out = append(out, next...)
		frontier = next
	}
	return out
}

func TestRandomAutomataProperties(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	all := words([]string{"a", "b"}, 6)

	for i := 0; i < 200; i++ {
		nfa := mustBuild(t, randomNFA(r))
		dfa := fa.ToDFA(nfa)

		require.True(t, fa.Classify(dfa).IsDFA)
		require.Empty(t, fa.IncompleteStates(dfa), "subset construction must be total")

		min, err := fa.Minimize(dfa)
		require.NoError(t, err)
		assert.LessOrEqual(t, min.NumStates(), dfa.NumStates())
		assert.Empty(t, fa.UnreachableStates(min))

		again, err := fa.Minimize(min)
		require.NoError(t, err)
		assert.Equal(t, min.NumStates(), again.NumStates())

		for _, w := range all {
			want := fa.AcceptsNFA(nfa, w)
			require.Equal(t, want, fa.Accepts(dfa, w), "dfa on %v\n%s", w, nfa)
			require.Equal(t, want, fa.Accepts(min, w), "min on %v\n%s", w, nfa)
			require.Equal(t, want, fa.Accepts(again, w), "min twice on %v\n%s", w, nfa)
		}
	}
}

func TestClassifierSoundness(t *testing.T) {
	r := rand.New(rand.NewPCG(3, 5))
	for i := 0; i < 200; i++ {
		a := mustBuild(t, randomNFA(r))
		cl := fa.Classify(a)

		want := true
		seen := map[[2]string]bool{}
		for _, tr := range a.Transitions() {
			if tr.IsEpsilon() || len(tr.To) != 1 {
				want = false
				continue
			}
			key := [2]string{tr.From, tr.Symbol}
			if seen[key] {
				want = false
			}
			seen[key] = true
		}
		assert.Equal(t, want, cl.IsDFA, "%v", a.Transitions())
		assert.Equal(t, cl.IsDFA, len(cl.Violations) == 0)
	}
}

func FuzzAcceptance(f *testing.F) {
	f.Add(uint64(1), "abba")
	f.Add(uint64(42), "")
	f.Add(uint64(9000), "bbbbbbab")

	f.Fuzz(func(t *testing.T, seed uint64, input string) {
		r := rand.New(rand.NewPCG(seed, seed>>1))
		nfa, err := randomNFA(r).Build()
		if err != nil {
			t.Fatal(err)
		}
		w := fa.SplitInput(input, "")
		want := fa.AcceptsNFA(nfa, w)

		dfa := fa.ToDFA(nfa)
		if got := fa.Accepts(dfa, w); got != want {
			t.Fatalf("dfa accepts %q = %v, nfa = %v", input, got, want)
		}
		min, err := fa.Minimize(dfa)
		if err != nil {
			t.Fatal(err)
		}
		if got := fa.Accepts(min, w); got != want {
			t.Fatalf("min accepts %q = %v, nfa = %v", input, got, want)
		}
	})
}
