package command

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/artifact"
	"github.com/guptam/altimeter/pkg/encode"
	"github.com/guptam/altimeter/pkg/logging"
	"github.com/guptam/altimeter/pkg/output"
	"github.com/guptam/altimeter/pkg/scan"
)

// NewScanCommand parses scan dumps and writes an artifact.
func NewScanCommand(cli *CLI) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scan <input.json>...",
		Short: "Parse raw scan dumps into a scan artifact",
		Args:  MinArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildArtifact(cmd.Context(), cli, args)
			if err != nil {
				return err
			}
			if err := artifact.Write(cli.Config.ArtifactPath, a); err != nil {
				return err
			}
			output.PrintScanSummary(cli.Out, a, encode.Summarize(a.Resources))
			return nil
		},
	}

	flags := cmd.Flags()
	flags.StringSlice("schema", nil, "Extra schema files, overriding builtin types of the same name")
	flags.Bool("skip-errors", false, "Record unparseable resources as scan errors instead of failing")
	flags.Int("workers", 8, "Maximum resources parsed concurrently")
	flags.String("graph-name", "alti", "Graph name recorded in the artifact")
	flags.String("graph-version", "1", "Graph version recorded in the artifact")
	return cmd
}

// buildArtifact parses every input with the configured registry.
func buildArtifact(ctx context.Context, cli *CLI, inputs []string) (*artifact.Artifact, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	start := time.Now()

	reg, err := cli.Registry()
	if err != nil {
		return nil, err
	}

	parsed := make([]*scan.Input, 0, len(inputs))
	for _, path := range inputs {
		in, err := scan.ReadInput(path)
		if err != nil {
			return nil, err
		}
		parsed = append(parsed, in)
	}

	res, err := scan.ParseAll(ctx, reg, parsed, scan.Options{
		MaxWorkers: cli.Config.Concurrency.MaxParseWorkers,
		SkipErrors: cli.Config.SkipErrors,
	})
	if err != nil {
		return nil, err
	}

	account := parsed[0].AccountID
	for _, in := range parsed[1:] {
		if in.AccountID != account {
			logging.Warn("inputs span several accounts, recording the first", "account", account, "other", in.AccountID)
			break
		}
	}

	a := artifact.New(cli.Config.GraphName, cli.Config.GraphVersion, account, start, time.Now(), res)
	if err := a.Validate(); err != nil {
		return nil, err
	}
	return a, nil
}
