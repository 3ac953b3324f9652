package export

import (
	"fmt"
	"io"
	"time"

	"github.com/beevik/etree"

	"github.com/cyp0633/libavail/timeframe"
)

// XCalNamespace is the RFC 6321 namespace
const XCalNamespace = "urn:ietf:params:xml:ns:icalendar-2.0"

const xcalDateTime = "2006-01-02T15:04:05Z"

// ToXCal renders frames as an RFC 6321 xCal document carrying the same
// events as ToICalendar.
func ToXCal[P any](frames []timeframe.Frame[P], opts ...Option) *etree.Document {
	o := newOptions(opts)

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement("icalendar")
	root.CreateAttr("xmlns", XCalNamespace)

	vcal := root.CreateElement("vcalendar")
	props := vcal.CreateElement("properties")
	textProp(props, "prodid", o.productID)
	textProp(props, "version", "2.0")

	components := vcal.CreateElement("components")
	stamp := o.stamp()
	for _, f := range frames {
		event := components.CreateElement("vevent").CreateElement("properties")
		textProp(event, "uid", o.uid())
		dateTimeProp(event, "dtstamp", stamp)
		dateTimeProp(event, "dtstart", f.Start)
		dateTimeProp(event, "dtend", f.End)
		if f.Off {
			textProp(event, "summary", summaryOff)
			textProp(event, "transp", "OPAQUE")
		} else {
			textProp(event, "summary", summaryOn)
			textProp(event, "transp", "TRANSPARENT")
		}
		if payload, ok := formatPayload(o, f.Payload); ok {
			textProp(event, "description", payload)
		}
	}

	doc.Indent(2)
	return doc
}

// WriteXCal writes ToXCal's result to w.
func WriteXCal[P any](w io.Writer, frames []timeframe.Frame[P], opts ...Option) error {
	if _, err := ToXCal(frames, opts...).WriteTo(w); err != nil {
		return fmt.Errorf("failed to write xCal document: %w", err)
	}
	return nil
}

func textProp(parent *etree.Element, name, value string) {
	parent.CreateElement(name).CreateElement("text").SetText(value)
}

func dateTimeProp(parent *etree.Element, name string, t time.Time) {
	parent.CreateElement(name).CreateElement("date-time").SetText(t.UTC().Format(xcalDateTime))
}
