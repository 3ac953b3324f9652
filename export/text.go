package export

import (
	"fmt"
	"io"

	"github.com/cyp0633/libavail/timeframe"
)

// WriteText writes one line per frame: the window, on or off, and the
// payload when there is one.
//
//	[2024-01-01 09:00:00, 2024-01-01 20:00:00)  on   staff=5
func WriteText[P any](w io.Writer, frames []timeframe.Frame[P], opts ...Option) error {
	o := newOptions(opts)
	for _, f := range frames {
		var err error
		if payload, ok := formatPayload(o, f.Payload); ok {
			_, err = fmt.Fprintf(w, "%s  %-3s  %s\n", f.Window, state(f), payload)
		} else {
			_, err = fmt.Fprintf(w, "%s  %s\n", f.Window, state(f))
		}
		if err != nil {
			return fmt.Errorf("failed to write frame %s: %w", f.Window, err)
		}
	}
	return nil
}

func state[P any](f timeframe.Frame[P]) string {
	if f.Off {
		return "off"
	}
	return "on"
}
