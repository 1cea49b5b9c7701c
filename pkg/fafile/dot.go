package fafile

import (
	"fmt"
	"strings"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// GenerateDOT converts an automaton to Graphviz DOT format. Parallel
// transitions between the same pair of states share one edge whose label
// lists their symbols; edges appear in transition order.
func GenerateDOT(a *fa.Automaton, title string) string {
	var sb strings.Builder

	sb.WriteString("digraph FA {\n")
	sb.WriteString("    rankdir=LR;\n")
	sb.WriteString("    node [fontname=\"Helvetica\", fontsize=11];\n")
	sb.WriteString("    edge [fontname=\"Helvetica\", fontsize=10];\n")
	sb.WriteString("\n")

	if title != "" {
		sb.WriteString("    labelloc=\"t\";\n")
		fmt.Fprintf(&sb, "    label=\"%s\";\n", escapeDOT(title))
		sb.WriteString("\n")
	}

	sb.WriteString("    __start [shape=none, label=\"\", width=0, height=0];\n")
	fmt.Fprintf(&sb, "    __start -> \"%s\";\n", escapeDOT(a.Start()))
	sb.WriteString("\n")

	for _, state := range a.States() {
		shape := "circle"
		if a.IsFinal(state) {
			shape = "doublecircle"
		}
		fmt.Fprintf(&sb, "    \"%s\" [shape=%s];\n", escapeDOT(state), shape)
	}
	sb.WriteString("\n")

	for _, e := range edges(a) {
		fmt.Fprintf(&sb, "    \"%s\" -> \"%s\" [label=\"%s\"];\n",
			escapeDOT(e.from), escapeDOT(e.to), escapeDOT(strings.Join(e.labels, ", ")))
	}

	sb.WriteString("}\n")
	return sb.String()
}

type edge struct {
	from, to string
	labels   []string
}

// edges groups transitions by (from, to) in first-seen order.
func edges(a *fa.Automaton) []*edge {
	var out []*edge
	byKey := make(map[[2]string]*edge)
	for _, t := range a.Transitions() {
		label := t.Symbol
		if t.IsEpsilon() {
			label = "ε"
		}
		for _, to := range t.To {
			key := [2]string{t.From, to}
			e, ok := byKey[key]
			if !ok {
				e = &edge{from: t.From, to: to}
				byKey[key] = e
				out = append(out, e)
			}
			e.labels = append(e.labels, label)
		}
	}
	return out
}

func escapeDOT(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "\"", "\\\"")
	s = strings.ReplaceAll(s, "<", "\\<")
	s = strings.ReplaceAll(s, ">", "\\>")
	return s
}
