// Package ics renders generated events as iCalendar documents.
//
// Times are written as floating local times (YYYYMMDDTHHMMSS, no zone
// suffix), matching the naive dates used throughout itincal.
package ics

import (
	"io"
	"slices"
	"sort"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"itincal/internal/models"
)

const (
	ProductID     = "-//Itinerary Calendar Builder//EN"
	CalendarScale = "GREGORIAN"

	floatingLayout = "20060102T150405"
)

// Clock supplies the DTSTAMP time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// FixedClock always returns t.
func FixedClock(t time.Time) Clock {
	return ClockFunc(func() time.Time { return t })
}

// Render returns the calendar document for evs named calName.
func Render(evs []models.CalendarEvent, calName string, clock Clock) string {
	var b strings.Builder
	// strings.Builder never fails to write.
	_ = Write(&b, evs, calName, clock)
	return b.String()
}

// Write encodes the calendar document for evs to w.
func Write(w io.Writer, evs []models.CalendarEvent, calName string, clock Clock) error {
	return newCalendar(evs, calName, clock).SerializeTo(w, ical.WithNewLineUnix)
}

func newCalendar(evs []models.CalendarEvent, calName string, clock Clock) *ical.Calendar {
	if clock == nil {
		clock = SystemClock
	}
	cal := envelope(calName)

	stamp := FormatTime(clock.Now())
	for _, e := range evs {
		ve := cal.AddEvent(cleanText(e.UID))
		ve.SetProperty(ical.ComponentPropertyDtstamp, stamp)
		ve.SetSummary(cleanText(e.Summary))
		ve.SetProperty(ical.ComponentPropertyDtStart, FormatTime(e.Start))
		ve.SetProperty(ical.ComponentPropertyDtEnd, FormatTime(e.End))
		ve.SetLocation(cleanText(e.Location))
		ve.SetDescription(cleanText(e.Description))
	}
	return cal
}

func envelope(calName string) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.SetProductId(ProductID)
	cal.SetCalscale(CalendarScale)
	cal.SetXWRCalName(cleanText(calName))
	return cal
}

// Prop is one property of an event read back from a file. Value is the raw
// content-line value, still escaped.
type Prop struct {
	Name   string
	Params map[string][]string
	Value  string
}

// StoredEvent is an event read back from a file.
type StoredEvent struct {
	UID   string
	Props []Prop
}

// propOrder is the property layout of events written by Write.
var propOrder = []string{"DTSTAMP", "SUMMARY", "DTSTART", "DTEND", "LOCATION", "DESCRIPTION"}

// WriteStored writes stored events under a calendar named calName with the
// same envelope, line endings and folding as Write. Properties keep their
// values and parameters; known ones follow the Write layout and the rest
// come after in name order.
func WriteStored(w io.Writer, evs []StoredEvent, calName string) error {
	cal := envelope(calName)
	for _, e := range evs {
		ve := cal.AddEvent(e.UID)
		props := slices.Clone(e.Props)
		sort.SliceStable(props, func(i, j int) bool {
			ri, rj := propRank(props[i].Name), propRank(props[j].Name)
			if ri != rj {
				return ri < rj
			}
			return props[i].Name < props[j].Name
		})
		for _, p := range props {
			if strings.EqualFold(p.Name, "UID") {
				continue
			}
			value := p.Value
			base := ical.BaseProperty{IANAToken: p.Name, ICalParameters: p.Params}
			if base.GetValueType() == ical.ValueDataTypeText {
				// The serializer escapes TEXT values itself.
				value = ical.FromText(value)
			}
			var params []ical.PropertyParameter
			for k, v := range p.Params {
				params = append(params, &ical.KeyValues{Key: k, Value: v})
			}
			ve.AddProperty(ical.ComponentProperty(p.Name), value, params...)
		}
	}
	return cal.SerializeTo(w, ical.WithNewLineUnix)
}

func propRank(name string) int {
	for i, n := range propOrder {
		if strings.EqualFold(n, name) {
			return i
		}
	}
	return len(propOrder)
}

// cleanText turns CRLF and bare CR into LF so TEXT escaping covers every
// line break.
func cleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// FormatTime renders t as a floating date-time.
func FormatTime(t time.Time) string {
	return t.Format(floatingLayout)
}

// Escape applies iCalendar TEXT escaping: backslash first, then newline,
// semicolon and comma. Carriage returns count as newlines.
func Escape(s string) string {
	return ical.ToText(cleanText(s))
}

// Unfold joins folded content lines back into single lines.
func Unfold(doc string) string {
	doc = strings.ReplaceAll(doc, "\r\n", "\n")
	return strings.ReplaceAll(doc, "\n ", "")
}
