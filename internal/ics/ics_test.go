package ics

import (
	"strings"
	"testing"
	"time"

	"itincal/internal/models"
)

var fixed = FixedClock(time.Date(2024, 2, 29, 13, 45, 7, 0, time.Local))

func sampleEvent() models.CalendarEvent {
	return models.CalendarEvent{
		Kind:        models.EventWork,
		UID:         "abc@itinerary-calendar.local",
		Summary:     "WORK: Show; Night, One",
		Description: `Bring C:\shoes` + "\n\nRunID: r1",
		Location:    "Milan, Italy",
		Start:       time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC),
		End:         time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
	}
}

func TestEscape(t *testing.T) {
	got := Escape("a\\b\nc;d,e")
	want := `a\\b\nc\;d\,e`
	if got != want {
		t.Fatalf("Escape = %q, want %q", got, want)
	}
	if got := Escape(`\n`); got != `\\n` {
		t.Fatalf("expected backslash to be escaped before newline handling, got %q", got)
	}
}

func TestRender_Envelope(t *testing.T) {
	doc := Render(nil, "WORK (Itinerary)", fixed)

	want := "BEGIN:VCALENDAR\nVERSION:2.0\nPRODID:-//Itinerary Calendar Builder//EN\nCALSCALE:GREGORIAN\nX-WR-CALNAME:WORK (Itinerary)\nEND:VCALENDAR\n"
	if doc != want {
		t.Fatalf("unexpected empty calendar:\n%s", doc)
	}
}

func TestRender_EventFields(t *testing.T) {
	doc := Unfold(Render([]models.CalendarEvent{sampleEvent()}, "Cal; One", fixed))

	for _, line := range []string{
		"X-WR-CALNAME:Cal\\; One",
		"BEGIN:VEVENT",
		"UID:abc@itinerary-calendar.local",
		"DTSTAMP:20240229T134507",
		"SUMMARY:WORK: Show\\; Night\\, One",
		"DTSTART:20240301T090000",
		"DTEND:20240301T190000",
		"LOCATION:Milan\\, Italy",
		`DESCRIPTION:Bring C:\\shoes\n\nRunID: r1`,
		"END:VEVENT",
	} {
		if !strings.Contains(doc, line+"\n") {
			t.Fatalf("expected line %q in:\n%s", line, doc)
		}
	}

	order := []string{"UID:", "DTSTAMP:", "SUMMARY:", "DTSTART:", "DTEND:", "LOCATION:", "DESCRIPTION:"}
	last := -1
	for _, prefix := range order {
		i := strings.Index(doc, "\n"+prefix)
		if i <= last {
			t.Fatalf("field %s out of order", prefix)
		}
		last = i
	}
}

func TestRender_DeterministicApartFromStamp(t *testing.T) {
	evs := []models.CalendarEvent{sampleEvent(), sampleEvent()}
	a := Render(evs, "X", fixed)
	b := Render(evs, "X", fixed)
	if a != b {
		t.Fatalf("expected identical output for identical inputs")
	}
	c := Render(evs, "X", FixedClock(time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local)))
	if a == c {
		t.Fatalf("expected DTSTAMP to follow the clock")
	}
	if strings.Count(a, "BEGIN:VEVENT") != 2 {
		t.Fatalf("expected 2 events")
	}
}

func TestRender_LongLinesFoldAndUnfold(t *testing.T) {
	e := sampleEvent()
	e.Description = strings.Repeat("very long itinerary note ", 10)
	doc := Render([]models.CalendarEvent{e}, "X", fixed)

	for _, line := range strings.Split(doc, "\n") {
		if len(line) > 75 {
			t.Fatalf("line longer than 75 octets: %q", line)
		}
	}
	if !strings.Contains(Unfold(doc), "DESCRIPTION:"+e.Description+"\n") {
		t.Fatalf("expected description to survive unfolding")
	}
}

func TestRender_CarriageReturnsBecomeEscapedNewlines(t *testing.T) {
	e := sampleEvent()
	e.Summary = "a\r\nb"
	e.Description = "line one\rline two"
	e.Location = "Paris\r"
	doc := Render([]models.CalendarEvent{e}, "Cal", fixed)

	if strings.Contains(doc, "\r") {
		t.Fatalf("expected no raw carriage return:\n%q", doc)
	}
	unfolded := Unfold(doc)
	for _, line := range []string{`SUMMARY:a\nb`, `DESCRIPTION:line one\nline two`, `LOCATION:Paris\n`} {
		if !strings.Contains(unfolded, line+"\n") {
			t.Fatalf("expected %q in:\n%s", line, unfolded)
		}
	}
	if got := Escape("x\r\ny"); got != `x\ny` {
		t.Fatalf("Escape = %q", got)
	}
}

func TestWriteStored_MatchesRender(t *testing.T) {
	e := sampleEvent()
	want := Render([]models.CalendarEvent{e}, "WORK (Itinerary)", fixed)

	stored := StoredEvent{
		UID: e.UID,
		Props: []Prop{
			{Name: "DESCRIPTION", Value: Escape(e.Description)},
			{Name: "LOCATION", Value: Escape(e.Location)},
			{Name: "DTEND", Value: FormatTime(e.End)},
			{Name: "UID", Value: e.UID},
			{Name: "DTSTART", Value: FormatTime(e.Start)},
			{Name: "SUMMARY", Value: Escape(e.Summary)},
			{Name: "DTSTAMP", Value: FormatTime(fixed.Now())},
		},
	}
	var b strings.Builder
	if err := WriteStored(&b, []StoredEvent{stored}, "WORK (Itinerary)"); err != nil {
		t.Fatalf("write: %v", err)
	}
	if b.String() != want {
		t.Fatalf("stored rewrite differs:\n%s\nwant:\n%s", b.String(), want)
	}
}

func TestWriteStored_KeepsUnknownProperties(t *testing.T) {
	stored := StoredEvent{
		UID: "x@y",
		Props: []Prop{
			{Name: "X-NOTE", Value: `a\, b`},
			{Name: "DTSTAMP", Value: "20240101T000000"},
		},
	}
	var b strings.Builder
	if err := WriteStored(&b, []StoredEvent{stored}, "Cal"); err != nil {
		t.Fatalf("write: %v", err)
	}
	doc := b.String()
	if !strings.Contains(doc, "DTSTAMP:20240101T000000\nX-NOTE:a\\, b\n") {
		t.Fatalf("expected known properties first and X-NOTE kept:\n%s", doc)
	}
}
