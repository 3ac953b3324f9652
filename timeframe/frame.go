package timeframe

import (
	"fmt"

	"github.com/samber/mo"
)

// Frame is one segment of a resolved schedule: a window, the availability of
// the rule that won it and that rule's payload.
type Frame[P any] struct {
	Window
	Off     bool
	Payload mo.Option[P]
}

func (f Frame[P]) IsOn() bool  { return !f.Off }
func (f Frame[P]) IsOff() bool { return f.Off }

func (f Frame[P]) String() string {
	state := "on"
	if f.Off {
		state = "off"
	}
	return fmt.Sprintf("%s %s", f.Window, state)
}
