// Package fafile reads and writes automaton files and renders automata as
// Graphviz DOT or PNG.
package fafile

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// Document is the serialized form of an automaton, shared by the JSON and
// YAML encodings.
type Document struct {
	Kind        string          `json:"kind" yaml:"kind"`
	Name        string          `json:"name,omitempty" yaml:"name,omitempty"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	States      []string        `json:"states" yaml:"states"`
	Alphabet    []string        `json:"alphabet" yaml:"alphabet"`
	Start       string          `json:"start" yaml:"start"`
	Final       []string        `json:"final" yaml:"final"`
	Transitions []DocTransition `json:"transitions" yaml:"transitions"`
}

// DocTransition is one serialized transition. A nil Symbol is an epsilon
// move, as is the literal "epsilon" or "ε".
type DocTransition struct {
	From   string  `json:"from" yaml:"from"`
	Symbol *string `json:"symbol" yaml:"symbol"`
	To     Targets `json:"to" yaml:"to"`
}

// Targets is a transition's target list. It is written as a bare string
// when it has exactly one element and accepts either form when read.
type Targets []string

func (t Targets) MarshalJSON() ([]byte, error) {
	if len(t) == 1 {
		return json.Marshal(t[0])
	}
	return json.Marshal([]string(t))
}

func (t *Targets) UnmarshalJSON(data []byte) error {
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*t = Targets{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return fmt.Errorf("transition target must be a string or a list of strings: %w", err)
	}
	*t = many
	return nil
}

func (t Targets) MarshalYAML() (interface{}, error) {
	if len(t) == 1 {
		return t[0], nil
	}
	return []string(t), nil
}

func (t *Targets) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		*t = Targets{value.Value}
		return nil
	case yaml.SequenceNode:
		var many []string
		if err := value.Decode(&many); err != nil {
			return err
		}
		*t = many
		return nil
	}
	return errors.New("transition target must be a string or a list of strings")
}

// NewDocument serializes an automaton. Epsilon moves are written with a
// null symbol.
func NewDocument(a *fa.Automaton) *Document {
	doc := &Document{
		Kind:        string(a.Kind()),
		Name:        a.Name(),
		Description: a.Description(),
		States:      a.States(),
		Alphabet:    a.Alphabet(),
		Start:       a.Start(),
		Final:       a.Final(),
		Transitions: make([]DocTransition, 0),
	}
	for _, t := range a.Transitions() {
		dt := DocTransition{From: t.From, To: Targets(t.To)}
		if !t.IsEpsilon() {
			sym := t.Symbol
			dt.Symbol = &sym
		}
		doc.Transitions = append(doc.Transitions, dt)
	}
	return doc
}

// Definition converts the document into an editable definition.
func (d *Document) Definition() *fa.Definition {
	def := fa.New(fa.Kind(d.Kind))
	def.Name = d.Name
	def.Description = d.Description
	def.States = append(def.States, d.States...)
	def.Alphabet = append(def.Alphabet, d.Alphabet...)
	def.Start = d.Start
	def.Final = append(def.Final, d.Final...)
	for _, t := range d.Transitions {
		sym := fa.Epsilon
		if t.Symbol != nil {
			sym = *t.Symbol
		}
		def.AddTransition(t.From, sym, t.To...)
	}
	return def
}

// Automaton validates the document and builds the automaton.
func (d *Document) Automaton() (*fa.Automaton, error) {
	return d.Definition().Build()
}
