package fafile

import (
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// ParseYAML parses an automaton from YAML.
func ParseYAML(data []byte) (*fa.Automaton, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	return doc.Automaton()
}

// ToYAML converts an automaton to YAML.
func ToYAML(a *fa.Automaton) ([]byte, error) {
	return yaml.Marshal(NewDocument(a))
}
