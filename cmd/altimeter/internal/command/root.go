package command

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/config"
	"github.com/guptam/altimeter/pkg/logging"
)

// Version is set at build time.
var Version = "dev"

// NewRootCommand creates the root command. Subcommands are added by
// AddCommands.
func NewRootCommand(cli *CLI) *cobra.Command {
	var (
		configPath string
		logJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "altimeter",
		Short: "Turn raw cloud scan dumps into RDF and property graphs",
		Long: Highlight("Usage: altimeter [global options] <subcommand> [args]\n") + `
altimeter parses raw API descriptions with declarative resource schemas,
stores the parsed resources as a scan artifact and encodes artifacts as an
RDF triple store or a labeled property graph.
`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), configPath)
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			level, err := logging.ParseVerbosity(cfg.Verbosity)
			if err != nil {
				return err
			}
			logging.Configure(cli.Err, level, logJSON)
			cli.Config = cfg
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			_ = cmd.Help()
		},
	}

	cmd.CompletionOptions.DisableDefaultCmd = true
	flags := cmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Config file (default "+config.DefaultFile+" if present)")
	flags.String("verbosity", "info", "Log verbosity: quiet, info, debug or trace")
	flags.BoolVar(&logJSON, "log-json", false, "Log as JSON")
	flags.String("namespace", "alti:", "RDF namespace for predicates and types")
	flags.StringP("artifact", "a", "artifact.json", "Scan artifact path")
	return cmd
}

// AddCommands registers all subcommands to the root command.
func AddCommands(root *cobra.Command, cli *CLI) {
	root.AddCommand(
		NewScanCommand(cli),
		NewGraphCommand(cli),
		NewCheckCommand(cli),
		NewServeCommand(cli),
		NewSchemasCommand(cli),
	)
}

// Execute runs the CLI and exits.
func Execute() {
	// Disable color output if NO_COLOR is set in the environment
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		color.NoColor = true
	}

	cli := NewCLI(os.Stdout, os.Stderr)
	root := NewRootCommand(cli)
	AddCommands(root, cli)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(cli.Err, color.RedString("Error:"), err)
		os.Exit(1)
	}
}
