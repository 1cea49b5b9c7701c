package fa

import "github.com/bits-and-blooms/bitset"

// EpsilonClosure returns the states reachable from seed through zero or
// more epsilon moves, in declaration order.
func EpsilonClosure(a *Automaton, seed []string) ([]string, error) {
	set := bitset.New(uint(len(a.states)))
	for _, name := range seed {
		i, ok := a.stateIndex[name]
		if !ok {
			return nil, &UndefinedStateReferenceError{Role: "seed", Name: name}
		}
		set.Set(uint(i))
	}
	return a.names(a.closure(set)), nil
}

// closure extends set in place with its epsilon closure and returns it.
func (a *Automaton) closure(set *bitset.BitSet) *bitset.BitSet {
	frontier := make([]int, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		frontier = append(frontier, int(i))
	}
	for len(frontier) > 0 {
		s := frontier[len(frontier)-1]
		frontier = frontier[:len(frontier)-1]
		for _, to := range a.eps[s] {
			if !set.Test(uint(to)) {
				set.Set(uint(to))
				frontier = append(frontier, to)
			}
		}
	}
	return set
}

// move returns the union of successors of every state in set on sym.
func (a *Automaton) move(set *bitset.BitSet, sym int) *bitset.BitSet {
	next := bitset.New(uint(len(a.states)))
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		for _, m := range a.moves[i][sym] {
			for _, to := range a.arcs[m].to {
				next.Set(uint(to))
			}
		}
	}
	return next
}
