package fafile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// Format identifies a file encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from a file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	}
	return "", fmt.Errorf("unsupported file extension %q (want .json, .yaml or .yml)", filepath.Ext(path))
}

// Parse decodes data in the given format.
func Parse(data []byte, format Format) (*fa.Automaton, error) {
	switch format {
	case FormatJSON:
		return ParseJSON(data)
	case FormatYAML:
		return ParseYAML(data)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Encode encodes a in the given format.
func Encode(a *fa.Automaton, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return ToJSON(a, true)
	case FormatYAML:
		return ToYAML(a)
	}
	return nil, fmt.Errorf("unsupported format %q", format)
}

// Load reads an automaton file, choosing the format by extension.
func Load(path string) (*fa.Automaton, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	a, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return a, nil
}

// Save writes an automaton file, choosing the format by extension.
func Save(path string, a *fa.Automaton) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}
	data, err := Encode(a, format)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
