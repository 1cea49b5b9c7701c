package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/spf13/cobra"

	"github.com/ha1tch/fa-toolkit/internal/tui"
)

func newTUICmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "tui <file>",
		Short: "Step through an automaton in a full-screen terminal view",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := a.load(args[0])
			if err != nil {
				return err
			}
			screen, err := tcell.NewScreen()
			if err != nil {
				return fmt.Errorf("error creating screen: %w", err)
			}
			if err := screen.Init(); err != nil {
				return fmt.Errorf("error initializing screen: %w", err)
			}
			defer screen.Fini()

			tui.New(screen, m).Run()
			return nil
		},
	}
}
