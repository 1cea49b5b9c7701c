package fa

import "github.com/bits-and-blooms/bitset"

// UnreachableStates returns states that cannot be reached from the start
// state by any sequence of moves, epsilon moves included.
func UnreachableStates(a *Automaton) []string {
	seen := a.reachable()
	return a.names(seen.Complement().Intersection(a.all()))
}

// DeadStates returns non-final states from which no final state can be
// reached.
func DeadStates(a *Automaton) []string {
	// Walk the reversed graph backwards from the final states.
	rev := make([][]int, len(a.states))
	for _, t := range a.arcs {
		for _, to := range t.to {
			rev[to] = append(rev[to], t.from)
		}
	}
	live := a.final.Clone()
	var queue []int
	for i, ok := live.NextSet(0); ok; i, ok = live.NextSet(i + 1) {
		queue = append(queue, int(i))
	}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, p := range rev[s] {
			if !live.Test(uint(p)) {
				live.Set(uint(p))
				queue = append(queue, p)
			}
		}
	}
	return a.names(live.Complement().Intersection(a.all()))
}

// NonDeterministicStates returns states with more than one possible move on
// some symbol, or with an epsilon move.
func NonDeterministicStates(a *Automaton) []string {
	set := bitset.New(uint(len(a.states)))
	for s, row := range a.moves {
		if len(a.eps[s]) > 0 {
			set.Set(uint(s))
			continue
		}
		for _, m := range row {
			if len(m) > 1 || len(m) == 1 && len(a.arcs[m[0]].to) > 1 {
				set.Set(uint(s))
				break
			}
		}
	}
	return a.names(set)
}

// IncompleteStates returns states lacking a move on at least one symbol.
func IncompleteStates(a *Automaton) []string {
	set := bitset.New(uint(len(a.states)))
	for s, row := range a.moves {
		for _, m := range row {
			if len(m) == 0 {
				set.Set(uint(s))
				break
			}
		}
	}
	return a.names(set)
}

// UnusedSymbols returns alphabet symbols that label no transition.
func UnusedSymbols(a *Automaton) []string {
	used := make([]bool, len(a.alphabet))
	for _, t := range a.arcs {
		if t.symbol != epsilonSymbol {
			used[t.symbol] = true
		}
	}
	var out []string
	for i, u := range used {
		if !u {
			out = append(out, a.alphabet[i])
		}
	}
	return out
}

func (a *Automaton) reachable() *bitset.BitSet {
	seen := bitset.New(uint(len(a.states)))
	seen.Set(uint(a.start))
	queue := []int{a.start}
	for len(queue) > 0 {
		s := queue[0]
		queue = queue[1:]
		for _, t := range a.arcs {
			if t.from != s {
				continue
			}
			for _, to := range t.to {
				if !seen.Test(uint(to)) {
					seen.Set(uint(to))
					queue = append(queue, to)
				}
			}
		}
	}
	return seen
}

// all returns the set of every state.
func (a *Automaton) all() *bitset.BitSet {
	set := bitset.New(uint(len(a.states)))
	for i := range a.states {
		set.Set(uint(i))
	}
	return set
}
