package export

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/samber/mo"
)

// DefaultProductID identifies calendars written by this package
const DefaultProductID = "-//libavail//Availability Export//EN"

type options struct {
	productID string
	uid       func() string
	stamp     func() time.Time
	formatter any // func(P) string
}

func newOptions(opts []Option) options {
	o := options{
		productID: DefaultProductID,
		uid:       uuid.NewString,
		stamp:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Option configures the writers in this package
type Option func(*options)

// WithProductID overrides the PRODID of exported calendars
func WithProductID(id string) Option {
	return func(o *options) {
		if id != "" {
			o.productID = id
		}
	}
}

// WithUIDGenerator overrides the random UUIDs used as event UIDs
func WithUIDGenerator(gen func() string) Option {
	return func(o *options) {
		if gen != nil {
			o.uid = gen
		}
	}
}

// WithTimestamp fixes DTSTAMP instead of using the current time
func WithTimestamp(t time.Time) Option {
	return func(o *options) {
		o.stamp = func() time.Time { return t.UTC() }
	}
}

// WithPayloadFormatter sets how payloads are rendered. P must match the
// payload type of the frames being written; otherwise fmt.Sprint is used.
func WithPayloadFormatter[P any](format func(P) string) Option {
	return func(o *options) {
		o.formatter = format
	}
}

func formatPayload[P any](o options, payload mo.Option[P]) (string, bool) {
	v, ok := payload.Get()
	if !ok {
		return "", false
	}
	if format, ok := o.formatter.(func(P) string); ok {
		return format(v), true
	}
	return fmt.Sprint(v), true
}
