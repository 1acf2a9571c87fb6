// Package parser extracts bookings from pasted agency itinerary text.
//
// Input is split into blocks on blank lines. The first line of a block is the
// title; the following lines are recognised as a "Location:" line, a "Dates:"
// line, a bare status word, or free-text notes. Blocks without resolvable
// dates are dropped silently.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"

	"itincal/internal/models"
)

const (
	prefixLocation = "location:"
	prefixDates    = "dates:"

	// DefaultLocation is used for blocks without a "Location:" line.
	DefaultLocation = "TBD"
)

var (
	blockSep = regexp.MustCompile(`\n\s*\n`)
	// Only the standalone word splits a range, so "October" stays intact.
	rangeSep = regexp.MustCompile(`(?i)\bto\b`)

	weekdayPrefix = regexp.MustCompile(`(?i)^(monday|tuesday|wednesday|thursday|friday|saturday|sunday|mon|tues|tue|wed|thurs|thur|thu|fri|sat|sun)\.?,?\s+`)
	ordinalSuffix = regexp.MustCompile(`(?i)\b(\d{1,2})(st|nd|rd|th)\b`)
	monthDayYear  = regexp.MustCompile(`^([A-Za-z]+)\.?\s+(\d{1,2}),?(?:\s+(\d{4}))?$`)
	dayMonthYear  = regexp.MustCompile(`^(\d{1,2})\s+([A-Za-z]+)\.?,?(?:\s+(\d{4}))?$`)
)

// Report describes the outcome of one parse.
type Report struct {
	Bookings []models.Booking
	Blocks   int // non-empty blocks seen
	Dropped  int // blocks that produced no booking
}

// ParseJobs parses text and returns the bookings in input order. Without a
// reference date, dates written without a year cannot be resolved and their
// blocks are dropped; use ParseReport to supply one.
func ParseJobs(text string) []models.Booking {
	return ParseReport(text, time.Time{}).Bookings
}

// ParseReport parses text and also counts dropped blocks. Dates written
// without a year take the year of ref; a zero ref rejects them.
func ParseReport(text string, ref time.Time) Report {
	var r Report
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" {
		return r
	}
	for _, block := range blockSep.Split(text, -1) {
		if NormalizeWS(block) == "" {
			continue
		}
		r.Blocks++
		b, ok := ParseBlock(block, ref)
		if !ok {
			r.Dropped++
			continue
		}
		r.Bookings = append(r.Bookings, b)
	}
	return r
}

// ParseBlock extracts one booking from a single block.
// ok is false when the block has no title or no valid date range.
func ParseBlock(block string, ref time.Time) (models.Booking, bool) {
	var lines []string
	for _, ln := range strings.Split(block, "\n") {
		if l := NormalizeWS(ln); l != "" {
			lines = append(lines, l)
		}
	}
	if len(lines) == 0 {
		return models.Booking{}, false
	}

	b := models.Booking{
		Title:         lines[0],
		IncludeTravel: true,
	}
	var (
		start, end time.Time
		haveDates  bool
		notes      []string
	)

	for _, l := range lines[1:] {
		low := strings.ToLower(l)
		switch {
		case strings.HasPrefix(low, prefixLocation):
			b.Location = NormalizeWS(l[len(prefixLocation):])
		case strings.HasPrefix(low, prefixDates):
			start, end, haveDates = parseRange(l[len(prefixDates):], ref)
		default:
			if s, ok := matchStatus(l); ok {
				b.Status = s
				continue
			}
			notes = append(notes, l)
		}
	}

	if !haveDates || end.Before(start) {
		return models.Booking{}, false
	}
	b.StartDate, b.EndDate = start, end
	if b.Status == "" {
		b.Status = models.StatusDefault
	}
	if b.Location == "" {
		b.Location = DefaultLocation
	}
	b.Notes = NormalizeWS(strings.Join(notes, " "))
	return b, true
}

// parseRange reads "A" or "A to B". Any unparseable part fails the range.
// When both ends lacked a year and the end falls before the start, the
// range crosses New Year and the end moves to the following year.
func parseRange(rhs string, ref time.Time) (time.Time, time.Time, bool) {
	parts := rangeSep.Split(NormalizeWS(rhs), -1)
	switch len(parts) {
	case 1:
		d, _, ok := parseDate(parts[0], ref)
		return d, d, ok
	case 2:
		s, sFilled, ok1 := parseDate(parts[0], ref)
		e, eFilled, ok2 := parseDate(parts[1], ref)
		if !ok1 || !ok2 {
			return time.Time{}, time.Time{}, false
		}
		if sFilled && eFilled && e.Before(s) {
			e = e.AddDate(1, 0, 0)
		}
		return s, e, true
	}
	return time.Time{}, time.Time{}, false
}

// ParseDate parses a human-written date, resolving ambiguous numeric forms
// month-first. A leading weekday and ordinal suffixes are ignored. Dates
// without a year take the year of ref; with a zero ref they fail. Empty or
// unparseable input yields ok=false.
func ParseDate(s string, ref time.Time) (time.Time, bool) {
	d, _, ok := parseDate(s, ref)
	return d, ok
}

// parseDate also reports whether the year was taken from ref.
func parseDate(s string, ref time.Time) (d time.Time, filled, ok bool) {
	s = cleanDate(s)
	if s == "" {
		return time.Time{}, false, false
	}

	year, month, day, matched, valid := monthNameDate(s)
	if matched && !valid {
		return time.Time{}, false, false
	}
	if !matched {
		t, err := dateparse.ParseIn(s, time.UTC, dateparse.PreferMonthFirst(true))
		if err != nil {
			return time.Time{}, false, false
		}
		year, month, day = t.Date()
	}
	if year == 0 {
		if ref.IsZero() {
			return time.Time{}, false, false
		}
		year, filled = ref.Year(), true
	}

	d = time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day {
		// February 29 in a non-leap year, or a day past the month's end.
		return time.Time{}, false, false
	}
	return d, filled, true
}

// cleanDate drops a leading weekday and ordinal suffixes: "Friday, March
// 1st" becomes "March 1".
func cleanDate(s string) string {
	s = NormalizeWS(s)
	s = weekdayPrefix.ReplaceAllString(s, "")
	return ordinalSuffix.ReplaceAllString(s, "$1")
}

// monthNameDate reads "March 1[, 2024]" and "1 March [2024]" with full or
// abbreviated month names. matched reports the shape was recognised; valid
// is false when the word is not a month or the day is out of range. year is
// 0 when absent.
func monthNameDate(s string) (year int, month time.Month, day int, matched, valid bool) {
	var monthWord, dayStr, yearStr string
	if m := monthDayYear.FindStringSubmatch(s); m != nil {
		monthWord, dayStr, yearStr = m[1], m[2], m[3]
	} else if m := dayMonthYear.FindStringSubmatch(s); m != nil {
		dayStr, monthWord, yearStr = m[1], m[2], m[3]
	} else {
		return 0, 0, 0, false, false
	}

	month, ok := lookupMonth(monthWord)
	if !ok {
		return 0, 0, 0, true, false
	}
	day, _ = strconv.Atoi(dayStr)
	if day < 1 || day > 31 {
		return 0, 0, 0, true, false
	}
	if yearStr != "" {
		year, _ = strconv.Atoi(yearStr)
	}
	return year, month, day, true, true
}

// lookupMonth accepts a month name or any prefix of at least three letters
// ("Mar", "Sept").
func lookupMonth(word string) (time.Month, bool) {
	word = strings.ToLower(word)
	if len(word) < 3 {
		return 0, false
	}
	for m := time.January; m <= time.December; m++ {
		if strings.HasPrefix(strings.ToLower(m.String()), word) {
			return m, true
		}
	}
	return 0, false
}

func matchStatus(line string) (string, bool) {
	for _, s := range models.Statuses {
		if strings.EqualFold(line, s) {
			return s, true
		}
	}
	return "", false
}

// NormalizeWS collapses whitespace runs to single spaces and trims.
func NormalizeWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
