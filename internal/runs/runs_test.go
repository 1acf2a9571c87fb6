package runs

import (
	"testing"
	"time"

	"itincal/internal/models"
)

func day(t *testing.T, month time.Month, d int) time.Time {
	t.Helper()
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

func booking(t *testing.T, title, loc string, start, end time.Time) models.Booking {
	t.Helper()
	return models.Booking{
		Title:         title,
		Location:      loc,
		StartDate:     start,
		EndDate:       end,
		Status:        "Confirmed",
		IncludeTravel: true,
	}
}

func TestMerge_AliasesJoinOneRun(t *testing.T) {
	in := []models.Booking{
		booking(t, "Second", "New York City", day(t, 5, 3), day(t, 5, 4)),
		booking(t, "First", "NYC", day(t, 5, 1), day(t, 5, 2)),
	}

	got := Merge(in)
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got))
	}
	r := got[0]
	if r.CityKey != "new york" || r.CityLabel != "NYC" {
		t.Fatalf("unexpected key/label %q/%q", r.CityKey, r.CityLabel)
	}
	if !r.StartDate.Equal(day(t, 5, 1)) || !r.EndDate.Equal(day(t, 5, 4)) {
		t.Fatalf("unexpected span %v..%v", r.StartDate, r.EndDate)
	}
	if in[0].Title != "Second" {
		t.Fatalf("input slice was reordered")
	}
}

func TestMerge_GapDoesNotSplit(t *testing.T) {
	got := Merge([]models.Booking{
		booking(t, "A", "London", day(t, 1, 1), day(t, 1, 1)),
		booking(t, "B", "london.", day(t, 1, 20), day(t, 1, 21)),
	})
	if len(got) != 1 {
		t.Fatalf("expected date gap to stay in one run, got %d runs", len(got))
	}
}

func TestMerge_InterruptedCityStaysSplit(t *testing.T) {
	got := Merge([]models.Booking{
		booking(t, "A", "Paris", day(t, 2, 1), day(t, 2, 1)),
		booking(t, "B", "Berlin", day(t, 2, 2), day(t, 2, 2)),
		booking(t, "C", "Paris", day(t, 2, 3), day(t, 2, 3)),
	})
	if len(got) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(got))
	}
	if got[0].CityKey != "paris" || got[1].CityKey != "berlin" || got[2].CityKey != "paris" {
		t.Fatalf("unexpected run order: %q %q %q", got[0].CityKey, got[1].CityKey, got[2].CityKey)
	}
}

func TestMerge_IncludeTravelAny(t *testing.T) {
	a := booking(t, "A", "Rome", day(t, 3, 1), day(t, 3, 1))
	b := booking(t, "B", "Rome", day(t, 3, 2), day(t, 3, 2))
	a.IncludeTravel = false
	b.IncludeTravel = false

	if got := Merge([]models.Booking{a, b}); got[0].IncludeTravelAny {
		t.Fatalf("expected IncludeTravelAny=false")
	}
	b.IncludeTravel = true
	if got := Merge([]models.Booking{a, b}); !got[0].IncludeTravelAny {
		t.Fatalf("expected IncludeTravelAny=true")
	}
}

func TestMerge_PartitionsSortedInput(t *testing.T) {
	in := []models.Booking{
		booking(t, "zeta", "Paris", day(t, 4, 2), day(t, 4, 3)),
		booking(t, "Alpha", "Paris", day(t, 4, 2), day(t, 4, 3)),
		booking(t, "Oslo gig", "Oslo", day(t, 4, 5), day(t, 4, 5)),
		booking(t, "early", "TBD", day(t, 4, 1), day(t, 4, 1)),
		booking(t, "beta", "Paris", day(t, 4, 2), day(t, 4, 2)),
	}

	sorted := Sort(in)
	var flat []models.Booking
	for _, r := range Merge(in) {
		flat = append(flat, r.Bookings...)
	}
	if len(flat) != len(sorted) {
		t.Fatalf("expected %d members, got %d", len(sorted), len(flat))
	}
	for i := range sorted {
		if flat[i].Title != sorted[i].Title {
			t.Fatalf("position %d: expected %q, got %q", i, sorted[i].Title, flat[i].Title)
		}
	}

	wantOrder := []string{"early", "beta", "Alpha", "zeta", "Oslo gig"}
	for i, title := range wantOrder {
		if sorted[i].Title != title {
			t.Fatalf("sorted[%d] = %q, want %q", i, sorted[i].Title, title)
		}
	}
}

func TestMerge_Empty(t *testing.T) {
	if got := Merge(nil); len(got) != 0 {
		t.Fatalf("expected no runs, got %d", len(got))
	}
}
