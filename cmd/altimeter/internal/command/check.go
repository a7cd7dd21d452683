package command

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/graphcheck"
	"github.com/guptam/altimeter/pkg/output"
)

// ErrCheckFailed is returned when a graph has dangling resource links.
var ErrCheckFailed = errors.New("graph check failed")

// NewCheckCommand reports dangling links and reference cycles.
func NewCheckCommand(cli *CLI) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report dangling resource links and reference cycles in a scan artifact",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := artifact.Read(cli.Config.ArtifactPath)
			if err != nil {
				return err
			}

			var opts []graphcheck.Option
			if !strict {
				opts = append(opts, graphcheck.IgnoreScopeTargets())
			}
			report := graphcheck.Check(encode.EncodeLPG(a.Resources), opts...)
			output.PrintCheckReport(cli.Out, report)

			if !report.OK() {
				return fmt.Errorf("%w: %d dangling resource link(s)", ErrCheckFailed, len(report.Errors()))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&strict, "strict", false, "Also require account and region resources to be present")
	return cmd
}
