package fa

import "fmt"

// Classification is the result of Classify.
type Classification struct {
	IsDFA      bool
	Violations []string
}

// Classify reports whether a satisfies the DFA constraints. All violations
// are collected: epsilon moves first, then multiply-defined and
// multi-target moves in state and alphabet order. Missing moves are not
// violations; a partial DFA is still a DFA.
func Classify(a *Automaton) Classification {
	var violations []string

	for _, t := range a.arcs {
		if t.symbol == epsilonSymbol {
			violations = append(violations, "contains epsilon transitions")
			break
		}
	}

	for s, row := range a.moves {
		for sym, m := range row {
			switch {
			case len(m) > 1:
				violations = append(violations,
					fmt.Sprintf("multiple transitions from %s on %s", a.states[s], a.alphabet[sym]))
			case len(m) == 1 && len(a.arcs[m[0]].to) > 1:
				violations = append(violations,
					fmt.Sprintf("transition from %s on %s leads to multiple states", a.states[s], a.alphabet[sym]))
			}
		}
	}

	return Classification{
		IsDFA:      len(violations) == 0,
		Violations: violations,
	}
}

// IsDeterministic reports whether a has no determinism violations.
func IsDeterministic(a *Automaton) bool {
	return Classify(a).IsDFA
}
