package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ha1tch/fa-toolkit/internal/config"
	"github.com/ha1tch/fa-toolkit/internal/logging"
	"github.com/ha1tch/fa-toolkit/pkg/fa"
	"github.com/ha1tch/fa-toolkit/pkg/fafile"
)

// app carries what every command needs once flags are parsed.
type app struct {
	configPath string
	sets       []string
	logLevel   string

	cfg *config.Config
	log *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "fa",
		Short: "Finite automaton toolkit",
		Long: `fa works with deterministic and nondeterministic finite automata:
it classifies them, converts NFAs to DFAs, minimizes DFAs, tests input
words and renders diagrams. Saved automata live in a store managed by
the "fa store" commands and the HTTP server.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (default fa.yaml, or $FA_CONFIG)")
	flags.StringArrayVar(&a.sets, "set", nil, "override a config value, e.g. --set store.backend=memory")
	flags.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(
		newClassifyCmd(a),
		newConvertCmd(a),
		newMinimizeCmd(a),
		newAcceptCmd(a),
		newInfoCmd(a),
		newValidateCmd(a),
		newDotCmd(a),
		newPNGCmd(a),
		newCodegenCmd(a),
		newRunCmd(a),
		newTUICmd(a),
		newStoreCmd(a),
		newServeCmd(a),
		newVersionCmd(),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load(a.configPath, a.sets)
	if err != nil {
		return err
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.log = logging.New(level)
	return nil
}

// load reads an automaton file and logs its shape.
func (a *app) load(path string) (*fa.Automaton, error) {
	m, err := fafile.Load(path)
	if err != nil {
		return nil, fmt.Errorf("error loading %s: %w", path, err)
	}
	a.log.Debug("automaton loaded", "path", path, "kind", m.Kind(), "states", m.NumStates())
	return m, nil
}
