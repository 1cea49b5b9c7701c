package fa

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrEmptyName is returned for a state or symbol with an empty name.
	ErrEmptyName = errors.New("empty name")
	// ErrNoTransition is returned by Runner.Step when no active state has a
	// move on the symbol.
	ErrNoTransition = errors.New("no transition")
	// ErrDuplicateState is returned when renaming onto an existing state.
	ErrDuplicateState = errors.New("duplicate state")
)

// InvalidAlphabetError reports epsilon declared as an ordinary symbol.
type InvalidAlphabetError struct {
	Symbol string
}

func (e *InvalidAlphabetError) Error() string {
	return fmt.Sprintf("alphabet must not contain the epsilon symbol %q", e.Symbol)
}

// UndefinedStateReferenceError reports a reference to a state name that is
// not declared. Role names the referencing position, e.g. "start",
// "final" or "transition 3 target".
type UndefinedStateReferenceError struct {
	Role string
	Name string
}

func (e *UndefinedStateReferenceError) Error() string {
	return fmt.Sprintf("%s state %q not in states", e.Role, e.Name)
}

// NotDeterministicError carries every reason an automaton is not a DFA.
type NotDeterministicError struct {
	Violations []string
}

func (e *NotDeterministicError) Error() string {
	return "not a DFA: " + strings.Join(e.Violations, "; ")
}

// UnknownSymbolError reports a symbol outside the declared alphabet.
type UnknownSymbolError struct {
	Symbol string
}

func (e *UnknownSymbolError) Error() string {
	return fmt.Sprintf("symbol %q not in alphabet", e.Symbol)
}
