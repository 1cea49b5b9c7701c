package fa

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// epsilonSymbol is the symbol index of an epsilon arc.
const epsilonSymbol = -1

type arc struct {
	from   int
	symbol int
	to     []int
}

// Automaton is an immutable finite automaton. States and symbols are kept
// as dense indices; names are only used at the boundary. An Automaton is
// obtained from Definition.Build, ToDFA or Minimize and is safe for
// concurrent use.
type Automaton struct {
	kind        Kind
	name        string
	description string

	states      []string
	stateIndex  map[string]int
	alphabet    []string
	symbolIndex map[string]int

	arcs  []arc
	start int
	final *bitset.BitSet

	moves [][][]int // moves[state][symbol] lists arc indices
	eps   [][]int   // eps[state] lists epsilon targets
}

// assemble builds an automaton from already validated parts.
func assemble(kind Kind, name string, states, alphabet []string, arcs []arc, start int, finals []int) *Automaton {
	a := &Automaton{
		kind:        kind,
		name:        name,
		states:      states,
		stateIndex:  make(map[string]int, len(states)),
		alphabet:    alphabet,
		symbolIndex: make(map[string]int, len(alphabet)),
		start:       start,
	}
	for i, s := range states {
		a.stateIndex[s] = i
	}
	for i, s := range alphabet {
		a.symbolIndex[s] = i
	}
	a.index(arcs, finals)
	return a
}

func (a *Automaton) index(arcs []arc, finals []int) {
	n := len(a.states)
	a.arcs = arcs
	a.final = bitset.New(uint(n))
	for _, f := range finals {
		a.final.Set(uint(f))
	}
	a.moves = make([][][]int, n)
	for s := range a.moves {
		a.moves[s] = make([][]int, len(a.alphabet))
	}
	a.eps = make([][]int, n)
	for i, t := range arcs {
		if t.symbol == epsilonSymbol {
			for _, to := range t.to {
				if !slices.Contains(a.eps[t.from], to) {
					a.eps[t.from] = append(a.eps[t.from], to)
				}
			}
			continue
		}
		a.moves[t.from][t.symbol] = append(a.moves[t.from][t.symbol], i)
	}
}

// Kind returns the automaton kind.
func (a *Automaton) Kind() Kind { return a.kind }

// Name returns the automaton name.
func (a *Automaton) Name() string { return a.name }

// Description returns the automaton description.
func (a *Automaton) Description() string { return a.description }

// States returns the state names in declaration order.
func (a *Automaton) States() []string { return slices.Clone(a.states) }

// Alphabet returns the input symbols in declaration order.
func (a *Automaton) Alphabet() []string { return slices.Clone(a.alphabet) }

// NumStates returns the number of states.
func (a *Automaton) NumStates() int { return len(a.states) }

// Start returns the start state.
func (a *Automaton) Start() string { return a.states[a.start] }

// HasState reports whether name is a state.
func (a *Automaton) HasState(name string) bool {
	_, ok := a.stateIndex[name]
	return ok
}

// HasSymbol reports whether symbol belongs to the alphabet.
func (a *Automaton) HasSymbol(symbol string) bool {
	_, ok := a.symbolIndex[symbol]
	return ok
}

// Final returns the final states in declaration order.
func (a *Automaton) Final() []string {
	return a.names(a.final)
}

// IsFinal reports whether the named state is final.
func (a *Automaton) IsFinal(state string) bool {
	i, ok := a.stateIndex[state]
	return ok && a.final.Test(uint(i))
}

// Transitions returns the transitions in their original order.
func (a *Automaton) Transitions() []Transition {
	out := make([]Transition, len(a.arcs))
	for i, t := range a.arcs {
		out[i] = a.transition(t)
	}
	return out
}

// Outgoing returns the transitions leaving state on symbol. Pass Epsilon
// for epsilon moves.
func (a *Automaton) Outgoing(state, symbol string) []Transition {
	from, ok := a.stateIndex[state]
	if !ok {
		return nil
	}
	var out []Transition
	for _, t := range a.arcs {
		if t.from != from {
			continue
		}
		if IsEpsilon(symbol) && t.symbol == epsilonSymbol ||
			t.symbol != epsilonSymbol && a.alphabet[t.symbol] == symbol {
			out = append(out, a.transition(t))
		}
	}
	return out
}

// Next returns the states reachable from state by consuming symbol,
// without epsilon closure. It returns nil when no move exists.
func (a *Automaton) Next(state, symbol string) []string {
	s, ok := a.stateIndex[state]
	if !ok {
		return nil
	}
	sym, ok := a.symbolIndex[symbol]
	if !ok {
		return nil
	}
	set := a.successors(s, sym)
	if set.None() {
		return nil
	}
	return a.names(set)
}

func (a *Automaton) transition(t arc) Transition {
	sym := Epsilon
	if t.symbol != epsilonSymbol {
		sym = a.alphabet[t.symbol]
	}
	to := make([]string, len(t.to))
	for i, s := range t.to {
		to[i] = a.states[s]
	}
	return Transition{From: a.states[t.from], Symbol: sym, To: to}
}

// successors returns the union of targets of s on symbol index sym.
func (a *Automaton) successors(s, sym int) *bitset.BitSet {
	set := bitset.New(uint(len(a.states)))
	for _, i := range a.moves[s][sym] {
		for _, to := range a.arcs[i].to {
			set.Set(uint(to))
		}
	}
	return set
}

// delta returns the single target of s on sym in a deterministic automaton.
func (a *Automaton) delta(s, sym int) (int, bool) {
	m := a.moves[s][sym]
	if len(m) == 0 {
		return 0, false
	}
	return a.arcs[m[0]].to[0], true
}

// names maps a state set to names in index order.
func (a *Automaton) names(set *bitset.BitSet) []string {
	out := make([]string, 0, set.Count())
	for i, ok := set.NextSet(0); ok; i, ok = set.NextSet(i + 1) {
		out = append(out, a.states[i])
	}
	return out
}

// Definition returns an editable copy of the automaton.
func (a *Automaton) Definition() *Definition {
	d := New(a.kind)
	d.Name = a.name
	d.Description = a.description
	d.States = slices.Clone(a.states)
	d.Alphabet = slices.Clone(a.alphabet)
	d.Transitions = a.Transitions()
	d.Start = a.Start()
	d.Final = a.Final()
	return d
}

// String returns a short summary of the automaton.
func (a *Automaton) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "FA[%s]: %s\n", a.kind, a.name)
	fmt.Fprintf(&sb, "  States: %v\n", a.states)
	fmt.Fprintf(&sb, "  Alphabet: %v\n", a.alphabet)
	fmt.Fprintf(&sb, "  Start: %s\n", a.Start())
	fmt.Fprintf(&sb, "  Final: %v\n", a.Final())
	fmt.Fprintf(&sb, "  Transitions: %d\n", len(a.arcs))
	return sb.String()
}
