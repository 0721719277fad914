package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gofung/internal/service"
	"github.com/njchilds90/gofung/models"
)

func newModelCommand(e *env) *cobra.Command {
	var (
		f, m    string
		penalty string
		params  []string
		dirs    []string
	)

	cmd := &cobra.Command{
		Use:   "model NAME",
		Short: "Evaluate a material model at a deformation gradient",
		Example: `  # Neo-Hooke law at the identity, first derivative along 2I
  fung model neo-hooke --F '[[1,0,0],[0,1,0],[0,0,1]]' --dir '[[2,0,0],[0,2,0],[0,0,2]]'`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p := service.ModelParams{Name: args[0], Penalty: penalty}
			var err error
			if p.Params, err = parseParams(params); err != nil {
				return err
			}
			if p.F, err = parseValue(f); err != nil {
				return fmt.Errorf("--F: %w", err)
			}
			if m != "" {
				if p.M, err = parseValue(m); err != nil {
					return fmt.Errorf("--M: %w", err)
				}
			}
			for _, d := range dirs {
				v, err := parseValue(d)
				if err != nil {
					return fmt.Errorf("--dir: %w", err)
				}
				p.Directions = append(p.Directions, v)
			}
			if len(p.Directions) > 3 {
				return fmt.Errorf("at most 3 directions, got %d", len(p.Directions))
			}

			res, err := service.RunModel(p)
			if err != nil {
				return err
			}
			return e.printResult(cmd.OutOrStdout(), res)
		},
	}

	cmd.Flags().StringVar(&f, "F", "", "deformation gradient")
	cmd.Flags().StringVar(&m, "M", "", "fiber structure tensor")
	cmd.Flags().StringVar(&penalty, "penalty", "", "volumetric penalty: quad-and-log or hartmann-neff")
	cmd.Flags().StringArrayVar(&params, "param", nil, "model parameter name=value (repeatable)")
	cmd.Flags().StringArrayVar(&dirs, "dir", nil, "perturbation of F (repeatable, up to 3)")
	_ = cmd.MarkFlagRequired("F")

	return cmd
}

func newModelsCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the registered material models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if e.jsonOutput {
				return printJSON(cmd.OutOrStdout(), models.All())
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "NAME\tFIBER\tDESCRIPTION")
			for _, m := range models.All() {
				fmt.Fprintf(tw, "%s\t%v\t%s\n", m.Name, m.NeedsFiber, m.Description)
			}
			return tw.Flush()
		},
	}
}
