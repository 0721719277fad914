package commands

import (
	"github.com/spf13/cobra"

	"github.com/njchilds90/gofung/expr"
	"github.com/njchilds90/gofung/internal/service"
)

func newEvalCommand(e *env) *cobra.Command {
	var (
		file     string
		at       []string
		arg      string
		dirs     []string
		noChecks bool
	)

	cmd := &cobra.Command{
		Use:   "eval",
		Short: "Evaluate an expression and one directional derivative",
		Long: `Evaluate an expression document at a point.

Each --dir adds one direction, so the number of directions is the order of
the derivative (at most 3). Values are numbers or matrices in nested-row
notation.`,
		Example: `  # Third derivative of x0^3 at 2
  fung eval -f cube.yaml --at 0=2 --dir 0=1 --dir 0=1 --dir 0=1

  # Trace of a matrix argument along a perturbation
  fung eval -f trace.json --arg '[[1,2],[3,4]]' --dir '0=[[1,0],[0,1]]'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := expr.LoadFile(file)
			if err != nil {
				return err
			}
			p := service.EvaluateParams{Expr: doc, NoDomainChecks: noChecks}
			if p.At, err = parsePoints(at); err != nil {
				return err
			}
			if p.Directions, err = parseDirections(dirs); err != nil {
				return err
			}
			if arg != "" {
				if p.Arg, err = parseValue(arg); err != nil {
					return err
				}
			}

			e.log.Debug().Str("file", file).Int("order", len(dirs)).Msg("evaluating")
			res, err := service.Evaluate(p)
			if err != nil {
				return err
			}
			return e.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVarP(&file, "file", "f", "", "expression document (.json, .yaml)")
	cmd.Flags().StringArrayVar(&at, "at", nil, "variable point id=value (repeatable)")
	cmd.Flags().StringVar(&arg, "arg", "", "un-indexed argument")
	cmd.Flags().StringArrayVar(&dirs, "dir", nil, "direction id=delta (repeatable, up to 3)")
	cmd.Flags().BoolVar(&noChecks, "no-domain-checks", false, "skip argument validation of elementary functions")
	_ = cmd.MarkFlagRequired("file")

	return cmd
}
