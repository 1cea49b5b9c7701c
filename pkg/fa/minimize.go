package fa

import (
	"encoding/binary"
	"slices"

	"github.com/bits-and-blooms/bitset"
)

// TrapState is the name given to the completion state when it survives
// minimization, i.e. when the input DFA was partial.
const TrapState = "trap"

// Minimize returns the minimal DFA equivalent to a. The input must pass
// Classify; otherwise the result is a *NotDeterministicError carrying all
// violations. The input need not be complete.
//
// The DFA is first completed with a trap state. States are then split by
// Moore partition refinement, starting from the final/non-final partition,
// until a round produces no split. Each block becomes one state, named by
// its member when it has one and by its sorted members otherwise. Only
// blocks reachable from the start block are kept, in breadth-first order.
func Minimize(a *Automaton) (*Automaton, error) {
	if cl := Classify(a); !cl.IsDFA {
		return nil, &NotDeterministicError{Violations: cl.Violations}
	}

	n, k := len(a.states), len(a.alphabet)
	trap := n
	delta := make([][]int, n+1)
	for s := 0; s <= n; s++ {
		delta[s] = make([]int, k)
		for sym := 0; sym < k; sym++ {
			to, ok := trap, false
			if s != trap {
				to, ok = a.delta(s, sym)
			}
			if !ok {
				to = trap
			}
			delta[s][sym] = to
		}
	}

	block, count := initialPartition(a, n+1)
	for {
		next, m := refine(block, delta)
		block = next
		if m == count {
			break
		}
		count = m
	}

	return rebuild(a, block, count, delta, trap), nil
}

// initialPartition numbers the final and non-final blocks in order of first
// appearance so that an empty block takes no number.
func initialPartition(a *Automaton, size int) ([]int, int) {
	block := make([]int, size)
	ids := map[bool]int{}
	for s := range block {
		f := s < len(a.states) && a.final.Test(uint(s))
		id, ok := ids[f]
		if !ok {
			id = len(ids)
			ids[f] = id
		}
		block[s] = id
	}
	return block, len(ids)
}

// refine runs one round of Moore refinement. A state's signature is its
// current block followed by the block of each successor in alphabet order;
// states with equal signatures share a block in the next partition.
func refine(block []int, delta [][]int) ([]int, int) {
	next := make([]int, len(block))
	ids := make(map[string]int)
	var buf []byte
	for s := range block {
		buf = binary.AppendUvarint(buf[:0], uint64(block[s]))
		for _, to := range delta[s] {
			buf = binary.AppendUvarint(buf, uint64(block[to]))
		}
		id, ok := ids[string(buf)]
		if !ok {
			id = len(ids)
			ids[string(buf)] = id
		}
		next[s] = id
	}
	return next, len(ids)
}

func rebuild(a *Automaton, block []int, count int, delta [][]int, trap int) *Automaton {
	members := make([]*bitset.BitSet, count)
	repr := make([]int, count)
	for b := range members {
		members[b] = bitset.New(uint(len(a.states)))
		repr[b] = -1
	}
	for s, b := range block {
		if repr[b] < 0 {
			repr[b] = s
		}
		if s != trap {
			members[b].Set(uint(s))
		}
	}

	// Breadth-first from the start block; unreached blocks are dropped.
	order := []int{block[a.start]}
	newID := map[int]int{block[a.start]: 0}
	var arcs []arc
	for i := 0; i < len(order); i++ {
		b := order[i]
		for sym, to := range delta[repr[b]] {
			tb := block[to]
			id, ok := newID[tb]
			if !ok {
				id = len(order)
				newID[tb] = id
				order = append(order, tb)
			}
			arcs = append(arcs, arc{from: i, symbol: sym, to: []int{id}})
		}
	}

	used := make(map[string]bool, len(order))
	states := make([]string, len(order))
	var final []int
	trapOnly := -1
	for i, b := range order {
		switch names := sortedNames(a, members[b]); len(names) {
		case 0:
			trapOnly = i
			continue
		case 1:
			states[i] = uniqueName(names[0], used)
		default:
			states[i] = uniqueName(FormatSet(names), used)
		}
		if members[b].IntersectionCardinality(a.final) > 0 {
			final = append(final, i)
		}
	}
	if trapOnly >= 0 {
		states[trapOnly] = uniqueName(TrapState, used)
	}

	return assemble(KindDFA, a.name, states, slices.Clone(a.alphabet), arcs, 0, final)
}
