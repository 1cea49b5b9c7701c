// Package codegen generates source code for deterministic acceptors.
package codegen

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// GenerateGo generates a Go acceptor for the automaton. The automaton is
// converted with fa.ToDFA when it is not deterministic and is always
// minimized first, so the generated machine has no dead ends: a symbol
// with no move leads to a non-accepting sink state.
// The generated code is compatible with both standard Go and TinyGo.
func GenerateGo(a *fa.Automaton, packageName string) (string, error) {
	dfa := a
	if !fa.IsDeterministic(a) {
		dfa = fa.ToDFA(a)
	}
	m, err := fa.Minimize(dfa)
	if err != nil {
		return "", err
	}

	typeName := toPascalCase(a.Name())
	if !isIdent(typeName) {
		typeName = "Acceptor"
	}
	if packageName == "" {
		packageName = "fa"
	}
	first := []rune(typeName)
	lower := string(unicode.ToLower(first[0])) + string(first[1:])

	states := m.States()
	alphabet := m.Alphabet()
	stateIDs := identifiers(states)
	symbolIDs := identifiers(alphabet)
	stateConst := func(i int) string { return typeName + "State" + stateIDs[i] }
	symbolConst := func(i int) string { return typeName + "Symbol" + symbolIDs[i] }
	stateIdx := make(map[string]int, len(states))
	for i, s := range states {
		stateIdx[s] = i
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "// Code generated by fa codegen. DO NOT EDIT.\n")
	fmt.Fprintf(&sb, "// Automaton: %s (%d states)\n\n", a.Name(), len(states))
	fmt.Fprintf(&sb, "package %s\n\n", packageName)

	// States
	fmt.Fprintf(&sb, "// %sState is a state of the %s acceptor.\n", typeName, typeName)
	fmt.Fprintf(&sb, "type %sState uint16\n\n", typeName)
	sb.WriteString("const (\n")
	for i := range states {
		if i == 0 {
			fmt.Fprintf(&sb, "\t%s %sState = iota\n", stateConst(i), typeName)
		} else {
			fmt.Fprintf(&sb, "\t%s\n", stateConst(i))
		}
	}
	sb.WriteString(")\n\n")
	writeNames(&sb, lower+"StateNames", typeName+"State", states)

	// Symbols
	fmt.Fprintf(&sb, "// %sSymbol is an input symbol of the %s acceptor.\n", typeName, typeName)
	fmt.Fprintf(&sb, "type %sSymbol uint16\n\n", typeName)
	if len(alphabet) > 0 {
		sb.WriteString("const (\n")
		for i := range alphabet {
			if i == 0 {
				fmt.Fprintf(&sb, "\t%s %sSymbol = iota\n", symbolConst(i), typeName)
			} else {
				fmt.Fprintf(&sb, "\t%s\n", symbolConst(i))
			}
		}
		sb.WriteString(")\n\n")
	}
	writeNames(&sb, lower+"SymbolNames", typeName+"Symbol", alphabet)

	fmt.Fprintf(&sb, "// Parse%sSymbol looks up a symbol by name.\n", typeName)
	fmt.Fprintf(&sb, "func Parse%sSymbol(name string) (%sSymbol, bool) {\n", typeName, typeName)
	if len(alphabet) > 0 {
		sb.WriteString("\tswitch name {\n")
		for i, sym := range alphabet {
			fmt.Fprintf(&sb, "\tcase %q:\n\t\treturn %s, true\n", sym, symbolConst(i))
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("\treturn 0, false\n}\n\n")

	// Machine
	fmt.Fprintf(&sb, "// %s is a deterministic acceptor.\n", typeName)
	fmt.Fprintf(&sb, "type %s struct {\n\tstate %sState\n}\n\n", typeName, typeName)
	fmt.Fprintf(&sb, "// New%s creates an acceptor in its start state.\n", typeName)
	fmt.Fprintf(&sb, "func New%s() *%s {\n\treturn &%s{state: %s}\n}\n\n", typeName, typeName, typeName, stateConst(0))
	fmt.Fprintf(&sb, "// State returns the current state.\n")
	fmt.Fprintf(&sb, "func (f *%s) State() %sState {\n\treturn f.state\n}\n\n", typeName, typeName)

	sb.WriteString("// Step consumes one symbol and reports whether a move existed.\n")
	fmt.Fprintf(&sb, "func (f *%s) Step(sym %sSymbol) bool {\n", typeName, typeName)
	if len(alphabet) > 0 {
		sb.WriteString("\tswitch f.state {\n")
		for i, s := range states {
			fmt.Fprintf(&sb, "\tcase %s:\n\t\tswitch sym {\n", stateConst(i))
			for j, sym := range alphabet {
				to := m.Next(s, sym)
				if len(to) != 1 {
					continue
				}
				fmt.Fprintf(&sb, "\t\tcase %s:\n\t\t\tf.state = %s\n\t\t\treturn true\n", symbolConst(j), stateConst(stateIdx[to[0]]))
			}
			sb.WriteString("\t\t}\n")
		}
		sb.WriteString("\t}\n")
	}
	sb.WriteString("\treturn false\n}\n\n")

	sb.WriteString("// IsAccepting reports whether the current state is final.\n")
	fmt.Fprintf(&sb, "func (f *%s) IsAccepting() bool {\n", typeName)
	if finals := m.Final(); len(finals) > 0 {
		consts := make([]string, len(finals))
		for i, s := range finals {
			consts[i] = stateConst(stateIdx[s])
		}
		fmt.Fprintf(&sb, "\tswitch f.state {\n\tcase %s:\n\t\treturn true\n\t}\n", strings.Join(consts, ", "))
	}
	sb.WriteString("\treturn false\n}\n\n")

	sb.WriteString("// Reset returns the acceptor to its start state.\n")
	fmt.Fprintf(&sb, "func (f *%s) Reset() {\n\tf.state = %s\n}\n\n", typeName, stateConst(0))

	sb.WriteString("// Accepts runs a whole word from the start state. Unknown symbols reject.\n")
	fmt.Fprintf(&sb, "func (f *%s) Accepts(word []string) bool {\n", typeName)
	sb.WriteString("\tf.Reset()\n\tfor _, name := range word {\n")
	fmt.Fprintf(&sb, "\t\tsym, ok := Parse%sSymbol(name)\n", typeName)
	sb.WriteString("\t\tif !ok || !f.Step(sym) {\n\t\t\treturn false\n\t\t}\n\t}\n")
	sb.WriteString("\treturn f.IsAccepting()\n}\n")

	return sb.String(), nil
}

func writeNames(sb *strings.Builder, varName, typeName string, names []string) {
	fmt.Fprintf(sb, "var %s = [...]string{\n", varName)
	for _, n := range names {
		fmt.Fprintf(sb, "\t%q,\n", n)
	}
	sb.WriteString("}\n\n")
	fmt.Fprintf(sb, "func (v %s) String() string {\n", typeName)
	fmt.Fprintf(sb, "\tif int(v) < len(%s) {\n\t\treturn %s[v]\n\t}\n", varName, varName)
	sb.WriteString("\treturn \"unknown\"\n}\n\n")
}
