package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ha1tch/fa-toolkit/internal/config"
	"github.com/ha1tch/fa-toolkit/internal/workbench"
	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
	"github.com/ha1tch/fa-toolkit/pkg/store"
	"github.com/ha1tch/fa-toolkit/pkg/store/file"
	"github.com/ha1tch/fa-toolkit/pkg/store/memory"
	"github.com/ha1tch/fa-toolkit/pkg/store/redis"
)

// openStore opens the configured backend. The returned func releases it.
func (a *app) openStore() (store.Store, func(), error) {
	sc := a.cfg.Store
	switch sc.Backend {
	case config.BackendMemory:
		a.log.Warn("memory store: records are lost on exit")
		return memory.New(), func() {}, nil
	case config.BackendFile:
		return file.New(sc.Dir), func() {}, nil
	case config.BackendRedis:
		s := redis.New(sc.RedisAddr, sc.RedisPassword, sc.RedisDB, redis.WithPrefix(sc.RedisPrefix))
		return s, func() {
			if err := s.Close(); err != nil {
				a.log.Warn("closing redis", "error", err)
			}
		}, nil
	}
	return nil, nil, fmt.Errorf("unknown store backend %q", sc.Backend)
}

// withBench opens the store and runs fn with a workbench over it.
func (a *app) withBench(fn func(*workbench.Workbench) error) error {
	s, closeStore, err := a.openStore()
	if err != nil {
		return err
	}
	defer closeStore()
	return fn(workbench.New(s, workbench.WithLogger(a.log)))
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid record id %q", s)
	}
	return id, nil
}

func printRecord(w io.Writer, rec *store.Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(rec)
}

func newStoreCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "store",
		Short: "Manage saved automata",
	}
	cmd.AddCommand(
		newStoreAddCmd(a),
		newStoreListCmd(a),
		newStoreShowCmd(a),
		newStoreDeleteCmd(a),
		newStoreConvertCmd(a),
		newStoreMinimizeCmd(a),
		newStoreTestCmd(a),
		newStoreExportCmd(a),
	)
	return cmd
}

func newStoreAddCmd(a *app) *cobra.Command {
	var formPath string
	cmd := &cobra.Command{
		Use:   "add [file]",
		Short: "Save an automaton file, or a text form with --form",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if (formPath == "") == (len(args) == 0) {
				return fmt.Errorf("give either an automaton file or --form")
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				var (
					rec *store.Record
					cl  fa.Classification
					err error
				)
				if formPath != "" {
					var f fafile.Form
					data, rerr := os.ReadFile(formPath)
					if rerr != nil {
						return rerr
					}
					if err := yaml.Unmarshal(data, &f); err != nil {
						return fmt.Errorf("error parsing form %s: %w", formPath, err)
					}
					rec, cl, err = wb.AddForm(cmd.Context(), f)
				} else {
					m, lerr := a.load(args[0])
					if lerr != nil {
						return lerr
					}
					rec, cl, err = wb.Add(cmd.Context(), m)
				}
				if err != nil {
					return err
				}

				p := newPrinter(cmd.OutOrStdout())
				if cl.IsDFA {
					fmt.Fprintf(cmd.OutOrStdout(), "Saved %s with id %d\n", p.good("DFA"), rec.ID)
					return nil
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Saved %s with id %d\n", p.bad("NFA"), rec.ID)
				for _, v := range cl.Violations {
					fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", v)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&formPath, "form", "", "YAML or JSON file holding a text form")
	return cmd
}

func newStoreListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List saved automata",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBench(func(wb *workbench.Workbench) error {
				records, err := wb.List(cmd.Context())
				if err != nil {
					return err
				}
				if len(records) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No saved automata")
					return nil
				}
				p := newPrinter(cmd.OutOrStdout())
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tKIND\tSTATES\tFROM NFA\tMINIMAL\tTESTS")
				for _, r := range records {
					minimal := p.dim("-").String()
					if r.Minimized != nil {
						minimal = strconv.Itoa(len(r.Minimized.States))
					}
					name := r.Automaton.Name
					if name == "" {
						name = p.dim("-").String()
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%t\t%s\t%d\n",
						r.ID, name, r.Automaton.Kind, len(r.Automaton.States), r.FromNFA, minimal, len(r.Tests))
				}
				return tw.Flush()
			})
		},
	}
}

func newStoreShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Print a saved automaton record as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				rec, err := wb.Get(cmd.Context(), id)
				if err != nil {
					return err
				}
				return printRecord(cmd.OutOrStdout(), rec)
			})
		},
	}
}

func newStoreDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a saved automaton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				if err := wb.Delete(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted %d\n", id)
				return nil
			})
		},
	}
}

func newStoreConvertCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "convert <id>",
		Short: "Replace a saved NFA with its DFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				rec, err := wb.Convert(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Converted %d: %d states %v\n",
					id, len(rec.Automaton.States), rec.Automaton.States)
				return nil
			})
		},
	}
}

func newStoreMinimizeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "minimize <id>",
		Short: "Minimize a saved DFA",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				rec, err := wb.Minimize(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Minimized %d: %d states %v\n",
					id, len(rec.Minimized.States), rec.Minimized.States)
				return nil
			})
		},
	}
}

func newStoreTestCmd(a *app) *cobra.Command {
	var sep string
	cmd := &cobra.Command{
		Use:   "test <id> <word>...",
		Short: "Test words against a saved automaton and record the results",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			return a.withBench(func(wb *workbench.Workbench) error {
				p := newPrinter(cmd.OutOrStdout())
				for _, word := range args[1:] {
					res, err := wb.Test(cmd.Context(), id, word, sep)
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "%q: %s\n", word, p.verdict(res.Accepted))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&sep, "sep", "", "symbol separator (default: one symbol per character)")
	return cmd
}

func newStoreExportCmd(a *app) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every saved automaton as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withBench(func(wb *workbench.Workbench) error {
				if output == "" {
					return wb.Export(cmd.Context(), cmd.OutOrStdout())
				}
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				if err := wb.Export(cmd.Context(), f); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return err
				}
				fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
