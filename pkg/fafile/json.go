package fafile

import (
	"encoding/json"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// ParseJSON parses an automaton from JSON.
func ParseJSON(data []byte) (*fa.Automaton, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Automaton()
}

// ToJSON converts an automaton to JSON.
func ToJSON(a *fa.Automaton, pretty bool) ([]byte, error) {
	doc := NewDocument(a)
	if pretty {
		return json.MarshalIndent(doc, "", "  ")
	}
	return json.Marshal(doc)
}
