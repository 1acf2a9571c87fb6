// Package events turns bookings into per-day calendar events.
package events

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"itincal/internal/models"
)

const (
	uidDomain = "itinerary-calendar.local"

	isoDateTime = "2006-01-02T15:04:05"
	isoDate     = "2006-01-02"

	maxWorkHours = 8
)

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceDNS, []byte(uidDomain))

// Hours is a start/end hour window, 0-23.
type Hours struct {
	Start int
	End   int
}

// MakeUID derives a stable UID from a composed content key.
func MakeUID(key string) string {
	return uuid.NewSHA1(uidNamespace, []byte(key)).String() + "@" + uidDomain
}

// RunTag is the marker appended to descriptions for runTag.
func RunTag(runTag string) string {
	return "RunID: " + runTag
}

// AddRunTag appends the RunID tag to desc unless it is already present.
func AddRunTag(desc, runTag string) string {
	tag := RunTag(runTag)
	if strings.Contains(desc, tag) {
		return desc
	}
	if strings.TrimSpace(desc) == "" {
		return tag
	}
	return desc + "\n\n" + tag
}

// FormatDateTime renders t the way it appears inside UID keys.
func FormatDateTime(t time.Time) string {
	return t.Format(isoDateTime)
}

// FormatDate renders the calendar date of t for UID keys.
func FormatDate(t time.Time) string {
	return t.Format(isoDate)
}

// Build emits the WORK and HOLD events of bookings.
func Build(bookings []models.Booking, work, hold Hours, runTag string) (workEvents, holdEvents []models.CalendarEvent) {
	return BuildWork(bookings, work, runTag), BuildHold(bookings, hold, runTag)
}

// BuildWork emits one WORK event per day of every WORK booking. Per-booking
// hour overrides win over defaults; an empty or inverted window ends at
// min(23, start+8).
func BuildWork(bookings []models.Booking, defaults Hours, runTag string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, b := range bookings {
		if b.Kind() != models.KindWork {
			continue
		}
		h := defaults
		if b.WorkStartHour != nil {
			h.Start = *b.WorkStartHour
		}
		if b.WorkEndHour != nil {
			h.End = *b.WorkEndHour
		}
		if h.End <= h.Start {
			h.End = min(23, h.Start+maxWorkHours)
		}
		out = append(out, daily(b, models.EventWork, h, runTag)...)
	}
	return out
}

// BuildHold emits one HOLD event per day of every HOLD booking, always using
// the hold window.
func BuildHold(bookings []models.Booking, hold Hours, runTag string) []models.CalendarEvent {
	var out []models.CalendarEvent
	for _, b := range bookings {
		if b.Kind() != models.KindHold {
			continue
		}
		out = append(out, daily(b, models.EventHold, hold, runTag)...)
	}
	return out
}

func daily(b models.Booking, kind models.EventKind, h Hours, runTag string) []models.CalendarEvent {
	desc := b.Notes
	if desc == "" {
		desc = "Status: " + b.Status
	}
	desc = AddRunTag(desc, runTag)
	summary := string(kind) + ": " + b.Title

	var out []models.CalendarEvent
	for d := models.Date(b.StartDate); !d.After(models.Date(b.EndDate)); d = d.AddDate(0, 0, 1) {
		start := models.At(d, h.Start)
		end := models.At(d, h.End)
		key := strings.Join([]string{string(kind), runTag, b.Title, FormatDateTime(start), FormatDateTime(end)}, "|")
		out = append(out, models.CalendarEvent{
			Kind:        kind,
			UID:         MakeUID(key),
			Summary:     summary,
			Description: desc,
			Location:    b.Location,
			Start:       start,
			End:         end,
		})
	}
	return out
}
