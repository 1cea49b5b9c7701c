package fa

import "github.com/bits-and-blooms/bitset"

// Accepts reports whether a accepts input. DFAs are simulated with a
// single current state, NFAs with a set of active states.
func Accepts(a *Automaton, input []string) bool {
	if a.kind == KindDFA {
		return a.runDFA(input)
	}
	return AcceptsNFA(a, input)
}

// AcceptsDFA simulates a as a DFA. It fails with *NotDeterministicError
// when a is not deterministic. A symbol outside the alphabet or a missing
// move rejects the input.
func AcceptsDFA(a *Automaton, input []string) (bool, error) {
	if cl := Classify(a); !cl.IsDFA {
		return false, &NotDeterministicError{Violations: cl.Violations}
	}
	return a.runDFA(input), nil
}

func (a *Automaton) runDFA(input []string) bool {
	s := a.start
	for _, symbol := range input {
		sym, ok := a.symbolIndex[symbol]
		if !ok {
			return false
		}
		if s, ok = a.delta(s, sym); !ok {
			return false
		}
	}
	return a.final.Test(uint(s))
}

// AcceptsNFA simulates a by tracking every active state at once, closing
// the active set under epsilon moves after each symbol. Input is rejected
// as soon as the active set becomes empty.
func AcceptsNFA(a *Automaton, input []string) bool {
	active := bitset.New(uint(len(a.states)))
	active.Set(uint(a.start))
	a.closure(active)
	for _, symbol := range input {
		sym, ok := a.symbolIndex[symbol]
		if !ok {
			return false
		}
		active = a.closure(a.move(active, sym))
		if active.None() {
			return false
		}
	}
	return active.IntersectionCardinality(a.final) > 0
}
