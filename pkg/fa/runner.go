package fa

import (
	"fmt"
	"slices"
	"strings"

	"github.com/bits-and-blooms/bitset"
)

// Runner steps an automaton one symbol at a time. For NFAs it tracks all
// active states simultaneously. A Runner is not safe for concurrent use.
type Runner struct {
	fa      *Automaton
	active  *bitset.BitSet
	history []Step
}

// Step records one step of execution.
type Step struct {
	From   []string
	Symbol string
	To     []string
}

// NewRunner creates a runner positioned at the epsilon closure of the
// start state.
func NewRunner(a *Automaton) *Runner {
	r := &Runner{fa: a}
	r.Reset()
	return r
}

// Automaton returns the automaton being run.
func (r *Runner) Automaton() *Automaton {
	return r.fa
}

// CurrentStates returns the active states in declaration order.
func (r *Runner) CurrentStates() []string {
	return r.fa.names(r.active)
}

// CurrentState formats the active states; a single state is shown bare.
func (r *Runner) CurrentState() string {
	return formatStates(r.CurrentStates())
}

// IsAccepting reports whether any active state is final.
func (r *Runner) IsAccepting() bool {
	return r.active.IntersectionCardinality(r.fa.final) > 0
}

// AvailableSymbols returns the symbols with a move from some active state,
// in alphabet order.
func (r *Runner) AvailableSymbols() []string {
	var out []string
	for sym, name := range r.fa.alphabet {
		for i, ok := r.active.NextSet(0); ok; i, ok = r.active.NextSet(i + 1) {
			if len(r.fa.moves[i][sym]) > 0 {
				out = append(out, name)
				break
			}
		}
	}
	return out
}

// Step consumes one symbol. It returns *UnknownSymbolError for a symbol
// outside the alphabet and ErrNoTransition when no active state can move;
// in both cases the runner is left unchanged.
func (r *Runner) Step(symbol string) error {
	sym, ok := r.fa.symbolIndex[symbol]
	if !ok {
		return &UnknownSymbolError{Symbol: symbol}
	}
	next := r.fa.closure(r.fa.move(r.active, sym))
	if next.None() {
		return fmt.Errorf("%w from %s on %q", ErrNoTransition, r.CurrentState(), symbol)
	}
	r.history = append(r.history, Step{
		From:   r.CurrentStates(),
		Symbol: symbol,
		To:     r.fa.names(next),
	})
	r.active = next
	return nil
}

// Run consumes symbols until the input ends or a step fails.
func (r *Runner) Run(input []string) error {
	for _, s := range input {
		if err := r.Step(s); err != nil {
			return err
		}
	}
	return nil
}

// Reset returns the runner to the start and clears the history.
func (r *Runner) Reset() {
	r.active = bitset.New(uint(len(r.fa.states)))
	r.active.Set(uint(r.fa.start))
	r.fa.closure(r.active)
	r.history = nil
}

// History returns a copy of the steps taken since the last reset.
func (r *Runner) History() []Step {
	out := slices.Clone(r.history)
	for i := range out {
		out[i].From = slices.Clone(out[i].From)
		out[i].To = slices.Clone(out[i].To)
	}
	return out
}

// Status returns a one-line description of the runner state.
func (r *Runner) Status() string {
	status := "State: " + r.CurrentState()
	if r.IsAccepting() {
		status += " [accepting]"
	}
	return status
}

func formatStates(states []string) string {
	if len(states) == 1 {
		return states[0]
	}
	return "{" + strings.Join(states, ", ") + "}"
}
