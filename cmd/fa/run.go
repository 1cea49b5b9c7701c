package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
)

// lineReader yields one line of input at a time.
type lineReader interface {
	ReadLine() (string, error)
}

type scannerReader struct {
	out    io.Writer
	prompt string
	sc     *bufio.Scanner
}

func (r *scannerReader) ReadLine() (string, error) {
	fmt.Fprint(r.out, r.prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return r.sc.Text(), nil
}

func newRunCmd(a *app) *cobra.Command {
	var convert bool
	cmd := &cobra.Command{
		Use:   "run <file>",
		Short: "Step through an automaton interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			if convert {
				m = fa.ToDFA(m)
			}

			fd := int(os.Stdin.Fd())
			if cmd.InOrStdin() == os.Stdin && term.IsTerminal(fd) {
				old, err := term.MakeRaw(fd)
				if err != nil {
					return err
				}
				defer term.Restore(fd, old)
				t := term.NewTerminal(struct {
					io.Reader
					io.Writer
				}{os.Stdin, os.Stdout}, "> ")
				return repl(t, t, fa.NewRunner(m))
			}

			out := cmd.OutOrStdout()
			in := &scannerReader{out: out, prompt: "> ", sc: bufio.NewScanner(cmd.InOrStdin())}
			return repl(in, out, fa.NewRunner(m))
		},
	}
	cmd.Flags().BoolVar(&convert, "convert", false, "run the subset DFA instead")
	return cmd
}

// repl reads commands until quit or end of input. A line that is not a
// command is a list of symbols separated by spaces.
func repl(in lineReader, out io.Writer, r *fa.Runner) error {
	m := r.Automaton()
	p := newPrinter(out)
	fmt.Fprintf(out, "FA: %s (%s)\n", m.Name(), m.Kind())
	fmt.Fprintln(out, "Commands: <symbols>, reset, status, history, symbols, quit")
	fmt.Fprintln(out)
	printStatus(out, p, r)

	for {
		line, err := in.ReadLine()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch line {
		case "quit", "exit", "q":
			return nil
		case "reset":
			r.Reset()
			fmt.Fprintln(out, "Reset to start state")
			printStatus(out, p, r)
		case "status":
			printStatus(out, p, r)
		case "history":
			printHistory(out, r)
		case "symbols":
			syms := r.AvailableSymbols()
			if len(syms) == 0 {
				fmt.Fprintln(out, "No moves from the current states")
			} else {
				fmt.Fprintf(out, "Available symbols: %v\n", syms)
			}
		case "help", "?":
			fmt.Fprintln(out, "Commands:")
			fmt.Fprintln(out, "  <symbols> - Consume space separated symbols")
			fmt.Fprintln(out, "  reset     - Return to the start state")
			fmt.Fprintln(out, "  status    - Show the current states")
			fmt.Fprintln(out, "  history   - Show the steps taken")
			fmt.Fprintln(out, "  symbols   - Show symbols with a move")
			fmt.Fprintln(out, "  quit      - Exit")
		default:
			if err := r.Run(strings.Fields(line)); err != nil {
				fmt.Fprintf(out, "%s %v\n", p.bad("Error:"), err)
			}
			printStatus(out, p, r)
		}
	}
}

func printStatus(out io.Writer, p *printer, r *fa.Runner) {
	if r.IsAccepting() {
		fmt.Fprintln(out, p.good(r.Status()))
		return
	}
	fmt.Fprintln(out, r.Status())
}

func printHistory(out io.Writer, r *fa.Runner) {
	history := r.History()
	if len(history) == 0 {
		fmt.Fprintln(out, "No history yet")
		return
	}
	fmt.Fprintln(out, "History:")
	for i, step := range history {
		fmt.Fprintf(out, "  %d: %s --%s--> %s\n",
			i+1, fa.FormatSet(step.From), step.Symbol, fa.FormatSet(step.To))
	}
}
