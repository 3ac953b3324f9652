package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/cyp0633/libavail/availability"
	"github.com/cyp0633/libavail/internal/dtparse"
	"github.com/cyp0633/libavail/timeframe"
)

// rangeOptions are the flags selecting the resolved range.
type rangeOptions struct {
	From string
	To   string
}

func (o *rangeOptions) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.From, "from", "", "start of the resolved range")
	cmd.Flags().StringVar(&o.To, "to", "", "end of the resolved range (exclusive)")
}

// window parses the flags. Missing bounds default to the day around anchor.
func (o *rangeOptions) window(anchor time.Time) (timeframe.Window, error) {
	start := timeframe.DayStart(anchor)
	end := start.AddDate(0, 0, 1)

	var err error
	if o.From != "" {
		if start, err = dtparse.Parse(o.From); err != nil {
			return timeframe.Window{}, fmt.Errorf("--from: %w", err)
		}
	}
	if o.To != "" {
		if end, err = dtparse.Parse(o.To); err != nil {
			return timeframe.Window{}, fmt.Errorf("--to: %w", err)
		}
	}
	return timeframe.NewWindow(start, end)
}

// NewResolveCommand creates the resolve command.
func NewResolveCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rangeOptions{}

	cmd := &cobra.Command{
		Use:   "resolve <schedule.yaml>",
		Short: "Print the frames of a schedule over a range",
		Long: `Resolve every rule in the schedule over [--from, --to) and print the
resulting frames. Both bounds are required.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.From == "" || opts.To == "" {
				return NewExitError(ExitCommandError, "resolve needs both --from and --to")
			}
			return runResolve(cmd, rootOpts, opts, args[0])
		},
	}
	opts.register(cmd)

	return cmd
}

func runResolve(cmd *cobra.Command, rootOpts *RootOptions, opts *rangeOptions, path string) error {
	query, err := opts.window(time.Time{})
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid range", err)
	}
	engine, err := loadEngine(cmd, rootOpts, path)
	if err != nil {
		return err
	}

	frames, err := engine.Resolve(query)
	if err != nil {
		return WrapExitError(ExitFailure, "failed to resolve schedule", err)
	}
	return writeFrames(cmd.OutOrStdout(), rootOpts.Format, frames)
}

// NewAtCommand creates the at command.
func NewAtCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &rangeOptions{}

	cmd := &cobra.Command{
		Use:   "at <schedule.yaml> <time>",
		Short: "Print the frame in effect at a point in time",
		Long: `Resolve the schedule over [--from, --to) and print the single frame
containing <time>. The range defaults to the calendar day of <time>.`,
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAt(cmd, rootOpts, opts, args[0], args[1])
		},
	}
	opts.register(cmd)

	return cmd
}

func runAt(cmd *cobra.Command, rootOpts *RootOptions, opts *rangeOptions, path, instant string) error {
	t, err := dtparse.Parse(instant)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid time", err)
	}
	query, err := opts.window(t)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid range", err)
	}
	engine, err := loadEngine(cmd, rootOpts, path)
	if err != nil {
		return err
	}

	if _, err := engine.Resolve(query); err != nil {
		return WrapExitError(ExitFailure, "failed to resolve schedule", err)
	}
	frame, err := engine.FrameAt(t)
	if err != nil {
		return WrapExitError(ExitFailure, "no frame found", err)
	}
	return writeFrames(cmd.OutOrStdout(), rootOpts.Format, []timeframe.Frame[Payload]{frame})
}

func loadEngine(cmd *cobra.Command, rootOpts *RootOptions, path string) (*availability.Engine[Payload], error) {
	logger := newLogger(cmd.ErrOrStderr(), rootOpts.Verbose)

	schedule, err := LoadSchedule(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to load schedule", err)
	}
	engine, err := schedule.Engine(logger)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "invalid schedule", err)
	}
	logger.Debug("schedule loaded", "path", path, "rules", engine.Len())
	return engine, nil
}
