package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
)

func newClassifyCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "classify <file>",
		Short: "Report whether an automaton is a DFA and why not",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			cl := fa.Classify(m)
			if cl.IsDFA {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], p.good("DFA"))
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: %s\n", args[0], p.bad("NFA"))
			for _, v := range cl.Violations {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
			}
			return nil
		},
	}
}

// writeAutomaton writes m to path, picking the format by extension, or to
// stdout in the given format when path is empty.
func writeAutomaton(cmd *cobra.Command, m *fa.Automaton, path, format string) error {
	if path != "" {
		if err := fafile.Save(path, m); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s (%d states)\n", path, m.NumStates())
		return nil
	}
	data, err := fafile.Encode(m, fafile.Format(format))
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}

func addOutputFlags(cmd *cobra.Command, output, format *string) {
	cmd.Flags().StringVarP(output, "output", "o", "", "output file (.json, .yaml or .yml)")
	cmd.Flags().StringVarP(format, "format", "f", string(fafile.FormatJSON), "stdout format: json or yaml")
}

func newConvertCmd(a *app) *cobra.Command {
	var output, format string
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Convert an automaton to an equivalent DFA by subset construction",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			dfa := fa.ToDFA(m)
			a.log.Info("converted", "path", args[0], "states", m.NumStates(), "dfa_states", dfa.NumStates())
			return writeAutomaton(cmd, dfa, output, format)
		},
	}
	addOutputFlags(cmd, &output, &format)
	return cmd
}

func newMinimizeCmd(a *app) *cobra.Command {
	var output, format string
	var convert bool
	cmd := &cobra.Command{
		Use:   "minimize <file>",
		Short: "Minimize a DFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			if convert && !fa.IsDeterministic(m) {
				m = fa.ToDFA(m)
			}
			minimal, err := fa.Minimize(m)
			if err != nil {
				var nd *fa.NotDeterministicError
				if errors.As(err, &nd) {
					return fmt.Errorf("%w (use --convert to convert it first)", err)
				}
				return err
			}
			a.log.Info("minimized", "path", args[0], "states", m.NumStates(), "minimal_states", minimal.NumStates())
			return writeAutomaton(cmd, minimal, output, format)
		},
	}
	addOutputFlags(cmd, &output, &format)
	cmd.Flags().BoolVar(&convert, "convert", false, "convert an NFA to a DFA before minimizing")
	return cmd
}

func newAcceptCmd(a *app) *cobra.Command {
	var sep string
	var strict bool
	cmd := &cobra.Command{
		Use:   "accept <file> <word>...",
		Short: "Test words against an automaton",
		Long: `Test each word against the automaton. Symbols are single characters
unless --sep is given. An empty argument is the empty word.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			p := newPrinter(cmd.OutOrStdout())
			for _, word := range args[1:] {
				input := fa.SplitInput(word, sep)
				ok := fa.Accepts(m, input)
				if strict {
					if ok, err = fa.AcceptsDFA(m, input); err != nil {
						return err
					}
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%q: %s\n", word, p.verdict(ok))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&sep, "sep", "", "symbol separator (default: one symbol per character)")
	cmd.Flags().BoolVar(&strict, "dfa", false, "require a deterministic automaton")
	return cmd
}

func newInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info <file>",
		Short: "Describe an automaton and report structural issues",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Kind:        %s\n", m.Kind())
			if m.Name() != "" {
				fmt.Fprintf(w, "Name:        %s\n", m.Name())
			}
			if m.Description() != "" {
				fmt.Fprintf(w, "Description: %s\n", m.Description())
			}
			fmt.Fprintf(w, "States:      %d\n", m.NumStates())
			fmt.Fprintf(w, "Symbols:     %d\n", len(m.Alphabet()))
			fmt.Fprintf(w, "Transitions: %d\n", len(m.Transitions()))
			fmt.Fprintf(w, "Start:       %s\n", m.Start())
			fmt.Fprintf(w, "Final:       %v\n", m.Final())
			fmt.Fprintln(w)
			fmt.Fprintf(w, "States:      %v\n", m.States())
			fmt.Fprintf(w, "Alphabet:    %v\n", m.Alphabet())

			report := []struct {
				label string
				items []string
			}{
				{"Unreachable", fa.UnreachableStates(m)},
				{"Dead", fa.DeadStates(m)},
				{"Nondeterministic", fa.NonDeterministicStates(m)},
				{"Incomplete", fa.IncompleteStates(m)},
				{"Unused symbols", fa.UnusedSymbols(m)},
			}
			p := newPrinter(w)
			fmt.Fprintln(w)
			for _, r := range report {
				if len(r.items) == 0 {
					continue
				}
				fmt.Fprintf(w, "%s: %s\n", p.bad(r.label), strings.Join(r.items, ", "))
			}
			return nil
		},
	}
}

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate <file>...",
		Short: "Check that automaton files parse and are well formed",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := newPrinter(cmd.OutOrStdout())
			failed := 0
			for _, path := range args {
				m, err := fafile.Load(path)
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%s: %s: %v\n", path, p.bad("invalid"), err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %s %s with %d states, %d transitions\n",
					path, p.good("valid"), m.Kind(), m.NumStates(), len(m.Transitions()))
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files invalid", failed, len(args))
			}
			return nil
		},
	}
}
