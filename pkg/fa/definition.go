package fa

import (
	"fmt"
	"slices"
	"strings"
)

// Definition is an editable description of an automaton. Editing a
// Definition never affects an Automaton already built from it; call Build
// to obtain a fresh, validated snapshot.
type Definition struct {
	Kind        Kind
	Name        string
	Description string
	States      []string
	Alphabet    []string
	Transitions []Transition
	Start       string
	Final       []string
}

// New creates an empty definition of the given kind.
func New(k Kind) *Definition {
	return &Definition{
		Kind:        k,
		States:      make([]string, 0),
		Alphabet:    make([]string, 0),
		Transitions: make([]Transition, 0),
		Final:       make([]string, 0),
	}
}

// AddState adds a state. Adding an existing state is a no-op.
func (d *Definition) AddState(name string) {
	if !slices.Contains(d.States, name) {
		d.States = append(d.States, name)
	}
}

// AddSymbol adds an input symbol to the alphabet.
func (d *Definition) AddSymbol(symbol string) {
	if !slices.Contains(d.Alphabet, symbol) {
		d.Alphabet = append(d.Alphabet, symbol)
	}
}

// AddTransition appends a transition.
func (d *Definition) AddTransition(from, symbol string, to ...string) {
	d.Transitions = append(d.Transitions, Transition{
		From:   from,
		Symbol: symbol,
		To:     slices.Clone(to),
	})
}

// SetStart sets the start state.
func (d *Definition) SetStart(state string) {
	d.Start = state
}

// SetFinal replaces the final states.
func (d *Definition) SetFinal(states ...string) {
	d.Final = slices.Clone(states)
}

// RenameState renames a state and every reference to it.
func (d *Definition) RenameState(oldName, newName string) error {
	if newName == "" {
		return ErrEmptyName
	}
	i := slices.Index(d.States, oldName)
	if i < 0 {
		return &UndefinedStateReferenceError{Role: "renamed", Name: oldName}
	}
	if oldName == newName {
		return nil
	}
	if slices.Contains(d.States, newName) {
		return fmt.Errorf("rename %q: %w: %q", oldName, ErrDuplicateState, newName)
	}

	rename := func(s string) string {
		if s == oldName {
			return newName
		}
		return s
	}
	d.States[i] = newName
	d.Start = rename(d.Start)
	for j := range d.Final {
		d.Final[j] = rename(d.Final[j])
	}
	for j := range d.Transitions {
		t := &d.Transitions[j]
		t.From = rename(t.From)
		for k := range t.To {
			t.To[k] = rename(t.To[k])
		}
	}
	return nil
}

// RemoveState removes a state together with the transitions leaving it.
// It is dropped from the targets of other transitions; a transition left
// without targets is removed.
func (d *Definition) RemoveState(name string) error {
	i := slices.Index(d.States, name)
	if i < 0 {
		return &UndefinedStateReferenceError{Role: "removed", Name: name}
	}
	d.States = slices.Delete(d.States, i, i+1)
	d.Final = slices.DeleteFunc(d.Final, func(s string) bool { return s == name })
	if d.Start == name {
		d.Start = ""
	}

	kept := d.Transitions[:0]
	for _, t := range d.Transitions {
		if t.From == name {
			continue
		}
		t.To = slices.DeleteFunc(t.To, func(s string) bool { return s == name })
		if len(t.To) == 0 {
			continue
		}
		kept = append(kept, t)
	}
	d.Transitions = kept
	return nil
}

// RemoveTransition removes the transition at index i.
func (d *Definition) RemoveTransition(i int) error {
	if i < 0 || i >= len(d.Transitions) {
		return fmt.Errorf("transition %d out of range", i)
	}
	d.Transitions = slices.Delete(d.Transitions, i, i+1)
	return nil
}

// Copy returns a deep copy of the definition.
func (d *Definition) Copy() *Definition {
	c := *d
	c.States = slices.Clone(d.States)
	c.Alphabet = slices.Clone(d.Alphabet)
	c.Final = slices.Clone(d.Final)
	c.Transitions = make([]Transition, len(d.Transitions))
	for i, t := range d.Transitions {
		t.To = slices.Clone(t.To)
		c.Transitions[i] = t
	}
	return &c
}

// Build validates the definition and returns an immutable Automaton.
//
// Duplicate states, symbols and targets are collapsed, transitions with no
// targets are dropped, and "ε" is normalized to Epsilon. An empty Kind is
// resolved by classification. A definition of kind DFA that violates
// determinism fails with *NotDeterministicError.
func (d *Definition) Build() (*Automaton, error) {
	kind, ok := ParseKind(string(d.Kind))
	if !ok {
		return nil, fmt.Errorf("unknown automaton kind %q", d.Kind)
	}
	a := &Automaton{
		kind:        kind,
		name:        d.Name,
		description: d.Description,
		stateIndex:  make(map[string]int, len(d.States)),
		symbolIndex: make(map[string]int, len(d.Alphabet)),
	}
	for _, s := range d.States {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, fmt.Errorf("state: %w", ErrEmptyName)
		}
		if _, dup := a.stateIndex[s]; !dup {
			a.stateIndex[s] = len(a.states)
			a.states = append(a.states, s)
		}
	}
	if len(a.states) == 0 {
		return nil, fmt.Errorf("automaton has no states")
	}

	for _, sym := range d.Alphabet {
		sym = strings.TrimSpace(sym)
		if sym == "" {
			return nil, fmt.Errorf("symbol: %w", ErrEmptyName)
		}
		if IsEpsilon(sym) {
			return nil, &InvalidAlphabetError{Symbol: sym}
		}
		if _, dup := a.symbolIndex[sym]; !dup {
			a.symbolIndex[sym] = len(a.alphabet)
			a.alphabet = append(a.alphabet, sym)
		}
	}

	start, ok := a.stateIndex[strings.TrimSpace(d.Start)]
	if !ok {
		return nil, &UndefinedStateReferenceError{Role: "start", Name: d.Start}
	}
	a.start = start

	finals := make([]int, 0, len(d.Final))
	for _, f := range d.Final {
		i, ok := a.stateIndex[strings.TrimSpace(f)]
		if !ok {
			return nil, &UndefinedStateReferenceError{Role: "final", Name: f}
		}
		finals = append(finals, i)
	}

	arcs := make([]arc, 0, len(d.Transitions))
	for n, t := range d.Transitions {
		from, ok := a.stateIndex[strings.TrimSpace(t.From)]
		if !ok {
			return nil, &UndefinedStateReferenceError{Role: fmt.Sprintf("transition %d source", n), Name: t.From}
		}
		sym := epsilonSymbol
		if s := strings.TrimSpace(t.Symbol); !IsEpsilon(s) {
			if sym, ok = a.symbolIndex[s]; !ok {
				return nil, fmt.Errorf("transition %d: %w", n, &UnknownSymbolError{Symbol: t.Symbol})
			}
		}
		var to []int
		for _, name := range t.To {
			i, ok := a.stateIndex[strings.TrimSpace(name)]
			if !ok {
				return nil, &UndefinedStateReferenceError{Role: fmt.Sprintf("transition %d target", n), Name: name}
			}
			if !slices.Contains(to, i) {
				to = append(to, i)
			}
		}
		if len(to) == 0 {
			continue
		}
		arcs = append(arcs, arc{from: from, symbol: sym, to: to})
	}

	a.index(arcs, finals)

	cl := Classify(a)
	switch a.kind {
	case "":
		a.kind = KindNFA
		if cl.IsDFA {
			a.kind = KindDFA
		}
	case KindDFA:
		if !cl.IsDFA {
			return nil, &NotDeterministicError{Violations: cl.Violations}
		}
	}
	return a, nil
}
