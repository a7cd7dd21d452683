package command

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewSchemasCommand lists the registered resource types.
func NewSchemasCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schemas",
		Short: "List the resource types known to the parser",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := cli.Registry()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cli.Out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TYPE\tSCOPE\tFIELDS")
			for _, name := range reg.Names() {
				rt, _ := reg.Lookup(name)
				fmt.Fprintf(tw, "%s\t%s\t%d\n", rt.Name, rt.Scope, len(rt.Schema.Fields()))
			}
			return tw.Flush()
		},
	}
	cmd.Flags().StringSlice("schema", nil, "Extra schema files")
	return cmd
}
