package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/njchilds90/gofung/expr"
	"github.com/njchilds90/gofung/internal/service"
)

func newSchemaCommand() *cobra.Command {
	var types bool
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the tool schema, or the expression schema with --types",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			if types {
				fmt.Fprintln(cmd.OutOrStdout(), expr.Schema())
				return
			}
			fmt.Fprintln(cmd.OutOrStdout(), service.Schema())
		},
	}
	cmd.Flags().BoolVar(&types, "types", false, "print the expression document schema")
	return cmd
}
