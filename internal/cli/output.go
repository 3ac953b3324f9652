package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"github.com/cyp0633/libavail/export"
	"github.com/cyp0633/libavail/timeframe"
)

// Exit codes for CLI commands.
const (
	ExitSuccess      = 0 // Successful execution
	ExitFailure      = 1 // Lookup or resolution failure
	ExitCommandError = 2 // Command error (bad flags, unreadable schedule, etc.)
)

// ExitError represents an error with a specific exit code.
type ExitError struct {
	Code    int    // Exit code (use ExitFailure or ExitCommandError)
	Message string // Error message
	Err     error  // Underlying error (optional)
}

func (e *ExitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// NewExitError creates a new ExitError with the given code and message.
func NewExitError(code int, message string) *ExitError {
	return &ExitError{Code: code, Message: message}
}

// WrapExitError wraps an existing error with an exit code.
func WrapExitError(code int, message string, err error) *ExitError {
	return &ExitError{Code: code, Message: message, Err: err}
}

// GetExitCode extracts the exit code from an error.
// Returns ExitFailure (1) if the error is not an ExitError.
func GetExitCode(err error) int {
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return ExitFailure
}

// frameJSON is the JSON shape of one frame.
type frameJSON struct {
	Start   string  `json:"start"`
	End     string  `json:"end"`
	Off     bool    `json:"off"`
	Payload Payload `json:"payload,omitempty"`
}

func toJSON(frames []timeframe.Frame[Payload]) []frameJSON {
	out := make([]frameJSON, 0, len(frames))
	for _, f := range frames {
		out = append(out, frameJSON{
			Start:   f.Start.Format(timeframe.Layout),
			End:     f.End.Format(timeframe.Layout),
			Off:     f.Off,
			Payload: f.Payload.OrEmpty(),
		})
	}
	return out
}

// formatPayload renders a payload as comma-separated key=value pairs in key order.
func formatPayload(p Payload) string {
	keys := slices.Sorted(maps.Keys(p))
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = fmt.Sprintf("%s=%v", k, p[k])
	}
	return strings.Join(parts, ",")
}

// writeFrames renders frames in the requested format.
func writeFrames(w io.Writer, format string, frames []timeframe.Frame[Payload]) error {
	formatter := export.WithPayloadFormatter(formatPayload)

	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toJSON(frames))
	case "ics":
		return export.WriteICalendar(w, frames, formatter)
	case "xcal":
		return export.WriteXCal(w, frames, formatter)
	default:
		return export.WriteText(w, frames, formatter)
	}
}
