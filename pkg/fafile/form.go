package fafile

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// Form is the text description of an automaton as typed by a user: comma
// separated lists of states, symbols and final states, a start state, and
// transitions written "from,symbol,to" or "from,symbol,{to1,to2}" and
// separated by semicolons.
type Form struct {
	States      string `json:"states" yaml:"states"`
	Alphabet    string `json:"alphabet" yaml:"alphabet"`
	Start       string `json:"start" yaml:"start"`
	Final       string `json:"final" yaml:"final"`
	Transitions string `json:"transitions" yaml:"transitions"`
}

// ErrIncompleteForm is returned when a required form field is blank.
var ErrIncompleteForm = errors.New("states, alphabet, start and transitions are required")

// ParseForm builds an automaton from a form. The kind is decided by
// classification: a form describing a DFA yields a DFA.
func ParseForm(f Form) (*fa.Automaton, error) {
	def, err := f.Definition()
	if err != nil {
		return nil, err
	}
	return def.Build()
}

// Definition parses the form into an editable definition without
// validating state references.
func (f Form) Definition() (*fa.Definition, error) {
	if strings.TrimSpace(f.States) == "" || strings.TrimSpace(f.Alphabet) == "" ||
		strings.TrimSpace(f.Start) == "" || strings.TrimSpace(f.Transitions) == "" {
		return nil, ErrIncompleteForm
	}

	def := fa.New("")
	for _, s := range splitList(f.States, ",") {
		def.AddState(s)
	}
	for _, s := range splitList(f.Alphabet, ",") {
		def.AddSymbol(s)
	}
	def.SetStart(strings.TrimSpace(f.Start))
	def.SetFinal(splitList(f.Final, ",")...)

	for _, entry := range splitList(f.Transitions, ";") {
		parts := strings.SplitN(entry, ",", 3)
		if len(parts) != 3 {
			return nil, fmt.Errorf("malformed transition %q", entry)
		}
		from, sym, to := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), strings.TrimSpace(parts[2])
		var targets []string
		if strings.HasPrefix(to, "{") && strings.HasSuffix(to, "}") {
			targets = splitList(to[1:len(to)-1], ",")
		} else if !strings.Contains(to, ",") {
			targets = splitList(to, ",")
		} else {
			return nil, fmt.Errorf("malformed transition %q: wrap multiple targets in braces", entry)
		}
		if len(targets) == 0 {
			return nil, fmt.Errorf("no target states for transition %q", entry)
		}
		def.AddTransition(from, sym, targets...)
	}
	return def, nil
}

// FormFor writes an automaton back into form syntax. Names containing
// commas, semicolons or braces do not survive a round trip.
func FormFor(a *fa.Automaton) Form {
	var ts []string
	for _, t := range a.Transitions() {
		to := fa.FormatSet(t.To)
		if len(t.To) == 1 {
			to = t.To[0]
		}
		ts = append(ts, t.From+","+t.Symbol+","+to)
	}
	return Form{
		States:      strings.Join(a.States(), ","),
		Alphabet:    strings.Join(a.Alphabet(), ","),
		Start:       a.Start(),
		Final:       strings.Join(a.Final(), ","),
		Transitions: strings.Join(ts, ";"),
	}
}

func splitList(s, sep string) []string {
	var out []string
	for _, p := range strings.Split(s, sep) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
