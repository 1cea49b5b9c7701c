package main

import (
	"io"

	"github.com/muesli/termenv"
)

// printer colours verdicts when the output is a terminal.
type printer struct {
	out *termenv.Output
}

func newPrinter(w io.Writer) *printer {
	return &printer{out: termenv.NewOutput(w)}
}

func (p *printer) good(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("#22c55e")).Bold()
}

func (p *printer) bad(s string) termenv.Style {
	return p.out.String(s).Foreground(p.out.Color("#ef4444")).Bold()
}

func (p *printer) dim(s string) termenv.Style {
	return p.out.String(s).Faint()
}

// verdict formats an accept/reject outcome.
func (p *printer) verdict(accepted bool) termenv.Style {
	if accepted {
		return p.good("accepted")
	}
	return p.bad("rejected")
}
