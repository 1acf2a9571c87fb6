package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const itinerary = `Paris Show
Location: Paris
Dates: 2024-03-01 to 2024-03-02
Confirmed

Milan Fitting
Location: Milan, Italy
Dates: 2024-04-10
Hold

Broken
Dates: someday to never
`

func runApp(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &out
	argv := append([]string{"itincal", "--config", filepath.Join(t.TempDir(), "none.yaml"), "--log-level", "error"}, args...)
	if err := app.Run(argv); err != nil {
		t.Fatalf("itincal %s: %v", strings.Join(args, " "), err)
	}
	return out.String()
}

func writeItinerary(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "agency.txt")
	if err := os.WriteFile(path, []byte(itinerary), 0o600); err != nil {
		t.Fatalf("write itinerary: %v", err)
	}
	return path
}

func TestParseThenGenerateThenPurge(t *testing.T) {
	input := writeItinerary(t)
	dir := t.TempDir()
	bookings := filepath.Join(dir, "bookings.yaml")
	outDir := filepath.Join(dir, "out")

	runApp(t, "parse", "--input", input, "--out", bookings)
	data, err := os.ReadFile(bookings)
	if err != nil {
		t.Fatalf("read bookings: %v", err)
	}
	if strings.Count(string(data), "title:") != 2 {
		t.Fatalf("expected 2 bookings:\n%s", data)
	}

	out := runApp(t, "generate", "--bookings", bookings, "--out-dir", outDir, "--run-id", "2024-02-01-001", "--home-base", "Paris")
	for _, name := range []string{"work.ics", "hold.ics", "travel.ics"} {
		if !strings.Contains(out, filepath.Join(outDir, name)) {
			t.Fatalf("expected %s in output:\n%s", name, out)
		}
	}

	travelICS := filepath.Join(outDir, "travel.ics")
	listed := runApp(t, "inspect", travelICS)
	if strings.Count(listed, "2024-02-01-001") != 2 {
		t.Fatalf("expected 2 tagged travel events:\n%s", listed)
	}

	purged := runApp(t, "purge", "--run-id", "2024-02-01-001", travelICS, filepath.Join(outDir, "work.ics"))
	if !strings.HasPrefix(purged, "4 event(s)") {
		t.Fatalf("expected 4 purged events, got %q", purged)
	}
	if listed := runApp(t, "inspect", travelICS); listed != "" {
		t.Fatalf("expected empty travel calendar after purge:\n%s", listed)
	}
}

func TestRunsCommand(t *testing.T) {
	out := runApp(t, "runs", "--input", writeItinerary(t), "--home-base", "Paris")
	if !strings.Contains(out, "Paris\t2024-03-01..2024-03-02\t1 booking(s)\thome") {
		t.Fatalf("expected home run:\n%s", out)
	}
	if !strings.Contains(out, "Milan, Italy\t2024-04-10..2024-04-10\t1 booking(s)\ttravel") {
		t.Fatalf("expected Milan run:\n%s", out)
	}
	if !strings.Contains(out, "Detected runs: 2, eligible for travel: 1") {
		t.Fatalf("expected summary line:\n%s", out)
	}
}

func TestLoadBookingsNeedsOneSource(t *testing.T) {
	app := newApp()
	app.Writer = &bytes.Buffer{}
	app.ErrWriter = &bytes.Buffer{}
	err := app.Run([]string{"itincal", "--config", "", "runs"})
	if err == nil || !strings.Contains(err.Error(), "--input or --bookings") {
		t.Fatalf("expected missing source error, got %v", err)
	}
}

func TestDefaultRunID(t *testing.T) {
	if got := defaultRunID(time.Date(2024, 1, 15, 23, 59, 0, 0, time.UTC)); got != "2024-01-15-001" {
		t.Fatalf("unexpected run ID %q", got)
	}
}

func TestParseFillsMissingYearFromToday(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agency.txt")
	if err := os.WriteFile(path, []byte("Rome Show\nLocation: Rome\nDates: March 1 to March 2\nConfirmed\n"), 0o600); err != nil {
		t.Fatalf("write itinerary: %v", err)
	}
	out := runApp(t, "parse", "--input", path)
	year := time.Now().Format("2006")
	if !strings.Contains(out, year+"-03-01") || !strings.Contains(out, year+"-03-02") {
		t.Fatalf("expected dates in %s:\n%s", year, out)
	}
}
