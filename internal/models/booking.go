package models

import (
	"strings"
	"time"
)

// Kind is the derived category of a booking.
type Kind string

const (
	KindWork Kind = "WORK"
	KindHold Kind = "HOLD"
)

// StatusDefault is the pseudo-status used when a block names no status.
const StatusDefault = "WORK"

// Statuses is the status vocabulary in matching order. The first entry that
// matches a line wins, so "Pending Signature" must precede "Pending".
var Statuses = []string{
	"Confirmed",
	"Hold",
	"First Option",
	"Pending Signature",
	"Pending",
	"Option",
}

// Booking is a single engagement parsed from agency text.
// StartDate and EndDate are calendar dates at midnight UTC.
type Booking struct {
	Title         string
	Location      string
	StartDate     time.Time
	EndDate       time.Time
	Status        string
	Notes         string
	IncludeTravel bool
	WorkStartHour *int // nil means "use the default work window"
	WorkEndHour   *int
}

// Kind derives the booking kind from its status.
func (b Booking) Kind() Kind {
	return ClassifyKind(b.Status)
}

// ClassifyKind maps any status containing "hold" (case-insensitive) to HOLD
// and everything else to WORK.
func ClassifyKind(status string) Kind {
	if strings.Contains(strings.ToLower(status), "hold") {
		return KindHold
	}
	return KindWork
}

// Date truncates t to its calendar date at midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// At returns the naive instant for hour h on the calendar date of day.
func At(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, time.UTC)
}
