package models

import "time"

// EventKind tags which output calendar an event belongs to.
type EventKind string

const (
	EventWork   EventKind = "WORK"
	EventHold   EventKind = "HOLD"
	EventTravel EventKind = "TRAVEL"
)

// CalendarEvent represents one generated calendar entry.
// Start and End are naive local times: only the wall-clock fields are used.
type CalendarEvent struct {
	Kind        EventKind // Output calendar the event is written to
	UID         string    // Stable iCalendar UID derived from the event content
	Summary     string    // Title shown in the calendar
	Description string    // Notes plus the RunID tag
	Location    string    // Display location (or "A → B" for travel)
	Start       time.Time // Start instant (date + hour)
	End         time.Time // End instant (date + hour)
}
