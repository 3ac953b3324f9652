package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "text" | "json" | "ics" | "xcal"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "ics", "xcal"}

// NewRootCommand creates the root command for availctl.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "availctl",
		Short: "Resolve layered availability schedules",
		Long: `Resolve a YAML schedule of prioritized availability rules into
non-overlapping frames, and look up what is in effect at a given time.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !slices.Contains(ValidFormats, opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log rule and resolution details to stderr")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (text|json|ics|xcal)")

	cmd.AddCommand(NewResolveCommand(opts))
	cmd.AddCommand(NewAtCommand(opts))

	return cmd
}

// newLogger writes to w, at debug level when verbose and warnings otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
