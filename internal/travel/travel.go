// Package travel infers travel-in/travel-out days around runs of bookings
// away from the home base.
//
// Travel is only created at trip boundaries: one travel-in day before the
// first booking of a run and one travel-out day after its last booking.
// Consecutive bookings in the same city never get travel between them.
package travel

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"itincal/internal/events"
	"itincal/internal/location"
	"itincal/internal/models"
	"itincal/internal/runs"
)

// Mode selects how travel is generated.
type Mode string

const (
	ModeAuto   Mode = "AUTO"   // every eligible run gets travel
	ModeManual Mode = "MANUAL" // only runs with a member opted in
	ModeOff    Mode = "OFF"    // never
)

const (
	fallbackHours = 2
	arrow         = " → "

	descIn  = "Auto travel-in day (trip boundary)."
	descOut = "Auto travel-out day (trip boundary)."
)

var ErrUnknownMode = errors.New("unknown travel mode")

// ParseMode accepts AUTO, MANUAL or OFF in any case.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToUpper(strings.TrimSpace(s))); m {
	case ModeAuto, ModeManual, ModeOff:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
}

// Options configures one inference pass.
type Options struct {
	HomeBase  string
	Mode      Mode
	StartHour int
	EndHour   int
	RunTag    string
}

// Infer returns the boundary travel events for bookings. Warnings are
// reserved for validation findings and are currently always empty.
func Infer(bookings []models.Booking, opts Options) ([]models.CalendarEvent, []string) {
	if opts.Mode == ModeOff {
		return nil, nil
	}
	homeKey := location.Normalize(opts.HomeBase)

	var out []models.CalendarEvent
	for _, r := range runs.Merge(bookings) {
		if !Eligible(r, homeKey) {
			continue
		}
		if opts.Mode == ModeManual && !r.IncludeTravelAny {
			continue
		}

		inDay := r.StartDate.AddDate(0, 0, -1)
		outDay := r.EndDate.AddDate(0, 0, 1)

		inStart, inEnd := window(inDay, opts.StartHour, opts.EndHour)
		outStart, outEnd := window(outDay, opts.StartHour, opts.EndHour)

		inRoute := opts.HomeBase + arrow + r.CityLabel
		outRoute := r.CityLabel + arrow + opts.HomeBase

		out = append(out,
			models.CalendarEvent{
				Kind:        models.EventTravel,
				UID:         events.MakeUID(fmt.Sprintf("TRAVELIN|%s|%s->%s|%s", opts.RunTag, homeKey, r.CityKey, events.FormatDate(inDay))),
				Summary:     "TRAVEL IN: " + inRoute,
				Description: events.AddRunTag(descIn, opts.RunTag),
				Location:    inRoute,
				Start:       inStart,
				End:         inEnd,
			},
			models.CalendarEvent{
				Kind:        models.EventTravel,
				UID:         events.MakeUID(fmt.Sprintf("TRAVELOUT|%s|%s->%s|%s", opts.RunTag, r.CityKey, homeKey, events.FormatDate(outDay))),
				Summary:     "TRAVEL OUT: " + outRoute,
				Description: events.AddRunTag(descOut, opts.RunTag),
				Location:    outRoute,
				Start:       outStart,
				End:         outEnd,
			},
		)
	}
	return out, nil
}

// Eligible reports whether r is away from the home base and has a known city.
func Eligible(r runs.CityRun, homeKey string) bool {
	if r.CityKey == homeKey {
		return false
	}
	return !location.IsUnknownKey(r.CityKey) && !location.IsUnknown(r.CityLabel)
}

func window(day time.Time, startHour, endHour int) (time.Time, time.Time) {
	start := models.At(day, startHour)
	end := models.At(day, endHour)
	if !end.After(start) {
		end = start.Add(fallbackHours * time.Hour)
	}
	return start, end
}

// Summary counts runs for display before generating.
type Summary struct {
	Runs     []runs.CityRun
	Eligible []runs.CityRun // non-home runs with a known city
}

// Summarize merges bookings into runs and picks those eligible for travel,
// regardless of mode.
func Summarize(bookings []models.Booking, homeBase string) Summary {
	homeKey := location.Normalize(homeBase)
	s := Summary{Runs: runs.Merge(bookings)}
	for _, r := range s.Runs {
		if Eligible(r, homeKey) {
			s.Eligible = append(s.Eligible, r)
		}
	}
	return s
}
