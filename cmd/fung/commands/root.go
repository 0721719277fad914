package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/njchilds90/gofung/internal/config"
	"github.com/njchilds90/gofung/internal/logging"
	"github.com/njchilds90/gofung/internal/service"
)

// env carries what every subcommand needs once flags are parsed.
type env struct {
	configPath string
	jsonOutput bool
	verbose    bool

	cfg config.Config
	log zerolog.Logger
	svc *service.Service
}

// Execute runs the root command.
func Execute(ctx context.Context, version, commit, buildDate string) error {
	return NewRootCommand(version, commit, buildDate).ExecuteContext(ctx)
}

// NewRootCommand assembles the command tree.
func NewRootCommand(version, commit, buildDate string) *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "fung",
		Short: "fung - exact directional derivatives up to third order",
		Long: `fung evaluates expressions and material models together with their
directional derivatives of first, second and third order.

Expressions are JSON or YAML documents; run "fung schema --types" for the
available node types.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			if e.verbose {
				cfg.Log.Level = "debug"
			}
			e.cfg = cfg
			e.log = logging.NewWriter(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.JSON)
			e.svc = service.New(e.log)
			return nil
		},
	}

	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "config file path (.yaml or .toml)")
	root.PersistentFlags().BoolVarP(&e.verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentFlags().BoolVar(&e.jsonOutput, "json", false, "output in JSON format")

	root.AddCommand(newEvalCommand(e))
	root.AddCommand(newModelCommand(e))
	root.AddCommand(newModelsCommand(e))
	root.AddCommand(newBatchCommand(e))
	root.AddCommand(newSchemaCommand())
	root.AddCommand(newVersionCommand(version, commit, buildDate))
	return root
}

func newVersionCommand(version, commit, buildDate string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "fung %s (commit: %s, built: %s)\n", version, commit, buildDate)
		},
	}
}

// printResult writes r as JSON or as readable lines.
func (e *env) printResult(w io.Writer, r *service.Result) error {
	if e.jsonOutput {
		return printJSON(w, r)
	}
	fmt.Fprintf(w, "expression: %s\n", r.Expression)
	fmt.Fprintf(w, "value:      %s\n", r.Value)
	if r.Order > 0 {
		state := "defined"
		if !r.Present {
			state = "vanishes"
		}
		fmt.Fprintf(w, "d%d (%s): %s\n", r.Order, state, r.Derivative)
	}
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
