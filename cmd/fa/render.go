package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fa-toolkit/pkg/codegen"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
)

// writeText writes s to path, or to stdout when path is empty.
func writeText(cmd *cobra.Command, path, s string) error {
	if path == "" {
		_, err := fmt.Fprint(cmd.OutOrStdout(), s)
		return err
	}
	if err := os.WriteFile(path, []byte(s), 0644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", path)
	return nil
}

func newDotCmd(a *app) *cobra.Command {
	var output, title string
	cmd := &cobra.Command{
		Use:   "dot <file>",
		Short: "Generate Graphviz DOT for an automaton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			if title == "" {
				title = m.Name()
			}
			return writeText(cmd, output, fafile.GenerateDOT(m, title))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&title, "title", "t", "", "graph title (default the automaton name)")
	return cmd
}

func newPNGCmd(a *app) *cobra.Command {
	var output, title string
	var width, height int
	cmd := &cobra.Command{
		Use:   "png <file>",
		Short: "Render an automaton as a PNG image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			opts := fafile.DefaultPNGOptions()
			opts.Width, opts.Height = a.cfg.Render.Width, a.cfg.Render.Height
			if width > 0 {
				opts.Width = width
			}
			if height > 0 {
				opts.Height = height
			}
			opts.Title = title
			if opts.Title == "" {
				opts.Title = m.Name()
			}

			f, err := os.Create(output)
			if err != nil {
				return err
			}
			if err := fafile.RenderPNG(m, f, opts); err != nil {
				f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			a.log.Info("rendered", "path", output, "width", opts.Width, "height", opts.Height)
			fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %s\n", output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output PNG file")
	cmd.Flags().StringVarP(&title, "title", "t", "", "image title (default the automaton name)")
	cmd.Flags().IntVar(&width, "width", 0, "image width (default from config)")
	cmd.Flags().IntVar(&height, "height", 0, "image height (default from config)")
	_ = cmd.MarkFlagRequired("output")
	return cmd
}

func newCodegenCmd(a *app) *cobra.Command {
	var output, pkg string
	cmd := &cobra.Command{
		Use:   "codegen <file>",
		Short: "Generate a Go acceptor for the minimal DFA of an automaton",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			src, err := codegen.GenerateGo(m, pkg)
			if err != nil {
				return err
			}
			return writeText(cmd, output, src)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&pkg, "package", "p", "fa", "Go package name")
	return cmd
}
