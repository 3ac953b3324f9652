package timeframe

import (
	"strings"
	"time"
)

// Weekdays is a set of weekdays stored as a bitmask.
type Weekdays uint8

const (
	Monday Weekdays = 1 << iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

const (
	// AllWeekdays selects every day of the week.
	AllWeekdays = Monday | Tuesday | Wednesday | Thursday | Friday | Saturday | Sunday
	// WorkWeek selects Monday through Friday.
	WorkWeek = Monday | Tuesday | Wednesday | Thursday | Friday
)

// ordered Monday first
var weekdayOrder = []struct {
	day  time.Weekday
	flag Weekdays
	name string
}{
	{time.Monday, Monday, "monday"},
	{time.Tuesday, Tuesday, "tuesday"},
	{time.Wednesday, Wednesday, "wednesday"},
	{time.Thursday, Thursday, "thursday"},
	{time.Friday, Friday, "friday"},
	{time.Saturday, Saturday, "saturday"},
	{time.Sunday, Sunday, "sunday"},
}

// WeekdayOf converts a time.Weekday into its single-day set.
func WeekdayOf(d time.Weekday) Weekdays {
	for _, w := range weekdayOrder {
		if w.day == d {
			return w.flag
		}
	}
	return 0
}

// Has reports whether d is in the set.
func (w Weekdays) Has(d time.Weekday) bool {
	return w&WeekdayOf(d) != 0
}

// Intersects reports whether the two sets share a day.
func (w Weekdays) Intersects(o Weekdays) bool {
	return w&o&AllWeekdays != 0
}

func (w Weekdays) IsEmpty() bool {
	return w&AllWeekdays == 0
}

// Valid reports whether no bits outside the seven weekdays are set.
func (w Weekdays) Valid() bool {
	return w&^AllWeekdays == 0
}

// Len returns the number of days in the set.
func (w Weekdays) Len() int {
	n := 0
	for _, d := range weekdayOrder {
		if w&d.flag != 0 {
			n++
		}
	}
	return n
}

// Days lists the selected days, Monday first. Unknown bits are ignored.
func (w Weekdays) Days() []time.Weekday {
	var days []time.Weekday
	for _, d := range weekdayOrder {
		if w&d.flag != 0 {
			days = append(days, d.day)
		}
	}
	return days
}

// Names lists the lowercase names of the selected days, Monday first.
func (w Weekdays) Names() []string {
	names := []string{}
	for _, d := range weekdayOrder {
		if w&d.flag != 0 {
			names = append(names, d.name)
		}
	}
	return names
}

func (w Weekdays) String() string {
	if w.IsEmpty() {
		return "none"
	}
	return strings.Join(w.Names(), ",")
}

// WeekdayByName looks up a lowercase full ("monday") or three-letter ("mon")
// weekday name. Callers are expected to fold case beforehand.
func WeekdayByName(name string) (Weekdays, bool) {
	for _, d := range weekdayOrder {
		if name == d.name || name == d.name[:3] {
			return d.flag, true
		}
	}
	return 0, false
}
