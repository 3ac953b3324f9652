package export

import (
	"fmt"
	"io"

	"github.com/emersion/go-ical"

	"github.com/cyp0633/libavail/timeframe"
)

const (
	propTransparency = "TRANSP"

	summaryOn  = "Available"
	summaryOff = "Unavailable"
)

// ToICalendar converts frames into a VCALENDAR with one VEVENT per frame.
// Off frames are opaque, on frames transparent. The payload, if any, becomes
// the event description.
func ToICalendar[P any](frames []timeframe.Frame[P], opts ...Option) *ical.Calendar {
	o := newOptions(opts)

	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropProductID, o.productID)
	cal.Props.SetText(ical.PropVersion, "2.0")

	stamp := o.stamp()
	for _, f := range frames {
		event := ical.NewEvent()
		event.Props.SetText(ical.PropUID, o.uid())
		event.Props.SetDateTime(ical.PropDateTimeStamp, stamp)
		event.Props.SetDateTime(ical.PropDateTimeStart, f.Start)
		event.Props.SetDateTime(ical.PropDateTimeEnd, f.End)
		if f.Off {
			event.Props.SetText(ical.PropSummary, summaryOff)
			event.Props.SetText(propTransparency, "OPAQUE")
		} else {
			event.Props.SetText(ical.PropSummary, summaryOn)
			event.Props.SetText(propTransparency, "TRANSPARENT")
		}
		if payload, ok := formatPayload(o, f.Payload); ok {
			event.Props.SetText(ical.PropDescription, payload)
		}
		cal.Children = append(cal.Children, event.Component)
	}
	return cal
}

// WriteICalendar encodes ToICalendar's result to w.
func WriteICalendar[P any](w io.Writer, frames []timeframe.Frame[P], opts ...Option) error {
	if err := ical.NewEncoder(w).Encode(ToICalendar(frames, opts...)); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return nil
}
