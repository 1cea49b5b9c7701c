// Package fa provides finite automaton types and the classical algorithms
// over them: determinism classification, epsilon closure, subset
// construction, minimization and acceptance.
package fa

import "strings"

// Kind represents the kind of automaton.
type Kind string

const (
	KindDFA Kind = "dfa"
	KindNFA Kind = "nfa"
)

// Epsilon is the symbol of a transition that consumes no input.
const Epsilon = "epsilon"

// epsilonAlt is the alternate spelling accepted from human-authored input.
const epsilonAlt = "ε"

// IsEpsilon reports whether symbol denotes an epsilon move.
func IsEpsilon(symbol string) bool {
	return symbol == Epsilon || symbol == epsilonAlt
}

// ParseKind converts a textual kind. The empty string yields "" which
// Build treats as "decide from the transitions".
func ParseKind(s string) (Kind, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "dfa":
		return KindDFA, true
	case "nfa":
		return KindNFA, true
	case "":
		return "", true
	}
	return "", false
}

// Transition represents a move from one state on a symbol to a set of
// states. A single target for a DFA, any number for an NFA.
type Transition struct {
	From   string
	Symbol string
	To     []string
}

// IsEpsilon reports whether the transition consumes no input.
func (t Transition) IsEpsilon() bool {
	return IsEpsilon(t.Symbol)
}

// String formats the transition as from -symbol-> {to}.
func (t Transition) String() string {
	return t.From + " -" + t.Symbol + "-> " + FormatSet(t.To)
}

// FormatSet formats state names as a brace-wrapped, comma-joined list.
func FormatSet(names []string) string {
	return "{" + strings.Join(names, ",") + "}"
}

// SplitInput splits a textual input word into symbols. An empty separator
// splits per character.
func SplitInput(s, sep string) []string {
	if s == "" {
		return []string{}
	}
	if sep == "" {
		out := make([]string, 0, len(s))
		for _, c := range s {
			out = append(out, string(c))
		}
		return out
	}
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
