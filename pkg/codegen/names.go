package codegen

import (
	"strconv"
	"strings"
	"unicode"
)

// identifiers converts names to distinct exported identifier suffixes.
// A name that yields no identifier, or one already taken, falls back to
// its position.
func identifiers(names []string) []string {
	out := make([]string, len(names))
	used := make(map[string]bool, len(names))
	for i, n := range names {
		id := toPascalCase(n)
		if id == "" || used[id] || !unicode.IsLetter([]rune(id)[0]) {
			id = strconv.Itoa(i)
			for used[id] {
				id += "_"
			}
		}
		used[id] = true
		out[i] = id
	}
	return out
}

func toPascalCase(s string) string {
	var sb strings.Builder
	for _, w := range splitWords(s) {
		r := []rune(w)
		sb.WriteString(strings.ToUpper(string(r[0])))
		sb.WriteString(string(r[1:]))
	}
	return sb.String()
}

// splitWords breaks s at every rune that cannot appear in an identifier.
func splitWords(s string) []string {
	var words []string
	var current strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			current.WriteRune(r)
			continue
		}
		if current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		if !unicode.IsLetter(r) && r != '_' && (i == 0 || !unicode.IsDigit(r)) {
			return false
		}
	}
	return true
}
