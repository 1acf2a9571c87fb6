// Package runs groups time-ordered bookings into contiguous same-city runs.
package runs

import (
	"sort"
	"strings"
	"time"

	"itincal/internal/location"
	"itincal/internal/models"
)

// CityRun is a maximal group of sort-adjacent bookings in one city.
type CityRun struct {
	CityKey          string // normalized location shared by all members
	CityLabel        string // display location of the first member
	StartDate        time.Time
	EndDate          time.Time
	Bookings         []models.Booking
	IncludeTravelAny bool
}

// Sort returns a copy of bookings ordered by start date, end date and
// lowercased title. The input slice is left untouched.
func Sort(bookings []models.Booking) []models.Booking {
	out := make([]models.Booking, len(bookings))
	copy(out, bookings)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		if !a.EndDate.Equal(b.EndDate) {
			return a.EndDate.Before(b.EndDate)
		}
		return strings.ToLower(a.Title) < strings.ToLower(b.Title)
	})
	return out
}

// Merge sorts bookings and splits them into runs. A new run starts whenever
// the normalized location differs from the current run; date gaps do not
// break a run, and runs in the same city separated by another city stay
// separate.
func Merge(bookings []models.Booking) []CityRun {
	var (
		out []CityRun
		cur *CityRun
	)
	for _, b := range Sort(bookings) {
		key := location.Normalize(b.Location)
		if cur != nil && cur.CityKey == key {
			if b.StartDate.Before(cur.StartDate) {
				cur.StartDate = b.StartDate
			}
			if b.EndDate.After(cur.EndDate) {
				cur.EndDate = b.EndDate
			}
			cur.Bookings = append(cur.Bookings, b)
			cur.IncludeTravelAny = cur.IncludeTravelAny || b.IncludeTravel
			continue
		}
		if cur != nil {
			out = append(out, *cur)
		}
		cur = &CityRun{
			CityKey:          key,
			CityLabel:        b.Location,
			StartDate:        b.StartDate,
			EndDate:          b.EndDate,
			Bookings:         []models.Booking{b},
			IncludeTravelAny: b.IncludeTravel,
		}
	}
	if cur != nil {
		out = append(out, *cur)
	}
	return out
}
