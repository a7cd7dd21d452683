package command

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/guptam/altimeter/pkg/config"
	"github.com/guptam/altimeter/pkg/schema"
)

// CLI is a global context passed to all commands.
// Unlike a Command which is specific to a single operation,
// CLI holds shared state and is propagated from root to subcommands.
type CLI struct {
	Out io.Writer
	Err io.Writer

	// Config is loaded once flags are parsed.
	Config *config.Config
}

// NewCLI creates a CLI writing results to out and logs to errOut.
func NewCLI(out, errOut io.Writer) *CLI {
	return &CLI{Out: out, Err: errOut}
}

// Highlight applies a blue color to the given format and arguments.
func Highlight(format string, a ...any) string {
	return color.RGB(50, 108, 229).Sprintf(format, a...)
}

// MinArgs returns an error if fewer than number args are given.
func MinArgs(number int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) >= number {
			return nil
		}
		return fmt.Errorf("expected at least %d argument(s), got %d", number, len(args))
	}
}

// Registry returns the builtin resource types overlaid with the configured
// schema files.
func (c *CLI) Registry() (*schema.Registry, error) {
	reg, err := schema.Builtin()
	if err != nil {
		return nil, err
	}
	for _, path := range c.Config.Schemas {
		if err := reg.LoadFile(path); err != nil {
			return nil, err
		}
	}
	return reg, nil
}

// output opens the configured output; "-" is the command's stdout.
func (c *CLI) output() (io.Writer, func() error, error) {
	if c.Config.Output == "" || c.Config.Output == "-" {
		return c.Out, func() error { return nil }, nil
	}
	f, err := os.Create(c.Config.Output)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create output: %w", err)
	}
	return f, f.Close, nil
}
