package fa

import (
	"encoding/binary"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// DeadState is the name of the subset-construction state that stands for
// the empty set of NFA states.
const DeadState = "dead"

// ToDFA converts a into an equivalent complete DFA by subset construction.
// It always runs the construction, so a partial DFA comes back complete.
//
// Each DFA state stands for a set of states of a and is named by its sorted
// member names, e.g. "{q0,q1}". The empty set becomes DeadState, created on
// first need with a self-loop on every symbol. States are numbered in
// breadth-first discovery order with symbols taken in alphabet order.
func ToDFA(a *Automaton) *Automaton {
	var (
		ids   = make(map[string]int)
		sets  []*bitset.BitSet
		arcs  []arc
		final []int
	)
	discover := func(set *bitset.BitSet) int {
		key := setKey(set)
		if id, ok := ids[key]; ok {
			return id
		}
		id := len(sets)
		ids[key] = id
		sets = append(sets, set)
		if set.IntersectionCardinality(a.final) > 0 {
			final = append(final, id)
		}
		return id
	}

	start := bitset.New(uint(len(a.states)))
	start.Set(uint(a.start))
	discover(a.closure(start))

	for q := 0; q < len(sets); q++ {
		for sym := range a.alphabet {
			to := discover(a.closure(a.move(sets[q], sym)))
			arcs = append(arcs, arc{from: q, symbol: sym, to: []int{to}})
		}
	}

	used := make(map[string]bool, len(sets))
	states := make([]string, len(sets))
	for i, set := range sets {
		name := DeadState
		if set.Any() {
			name = FormatSet(sortedNames(a, set))
		}
		states[i] = uniqueName(name, used)
	}

	return assemble(KindDFA, a.name, states, slices.Clone(a.alphabet), arcs, 0, final)
}

// setKey encodes the members of set as a map key.
func setKey(set *bitset.BitSet) string {
	buf := make([]byte, 0, 2*set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		buf = binary.AppendUvarint(buf, uint64(i))
	}
	return string(buf)
}

// sortedNames returns the names of the members of set in lexicographic
// order.
func sortedNames(a *Automaton, set *bitset.BitSet) []string {
	names := a.names(set)
	slices.Sort(names)
	return names
}

// uniqueName returns name, primed until it is not in used, and records it.
func uniqueName(name string, used map[string]bool) string {
	for used[name] {
		name += "'"
	}
	used[name] = true
	return name
}
