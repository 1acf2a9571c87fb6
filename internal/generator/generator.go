package generator

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"itincal/internal/events"
	"itincal/internal/ics"
	"itincal/internal/models"
	"itincal/internal/travel"
)

const (
	WorkFile   = "work.ics"
	HoldFile   = "hold.ics"
	TravelFile = "travel.ics"
)

// CalendarNames are the display names of the three output calendars.
type CalendarNames struct {
	Work   string
	Hold   string
	Travel string
}

// Settings are the per-pass inputs besides the bookings themselves.
type Settings struct {
	RunTag      string
	HomeBase    string
	TravelMode  travel.Mode
	WorkHours   events.Hours
	HoldHours   events.Hours
	TravelHours events.Hours
	Names       CalendarNames
}

// Result holds the events and rendered documents of one pass.
type Result struct {
	Work     []models.CalendarEvent
	Hold     []models.CalendarEvent
	Travel   []models.CalendarEvent
	Warnings []string
	Summary  travel.Summary

	WorkICS   string
	HoldICS   string
	TravelICS string
}

// Generator orchestrates one generation pass from bookings to documents.
type Generator struct {
	logger *slog.Logger
	clock  ics.Clock
}

// NewGenerator creates a new Generator. A nil clock uses the wall clock.
func NewGenerator(logger *slog.Logger, clock ics.Clock) *Generator {
	if clock == nil {
		clock = ics.SystemClock
	}
	return &Generator{logger: logger, clock: clock}
}

// Generate runs a full pass. The bookings slice is only read.
func (g *Generator) Generate(bookings []models.Booking, s Settings) Result {
	g.logger.Info("Starting generation pass.", "runID", s.RunTag, "bookings", len(bookings), "travelMode", s.TravelMode)

	var r Result
	r.Work, r.Hold = events.Build(bookings, s.WorkHours, s.HoldHours, s.RunTag)
	r.Travel, r.Warnings = travel.Infer(bookings, travel.Options{
		HomeBase:  s.HomeBase,
		Mode:      s.TravelMode,
		StartHour: s.TravelHours.Start,
		EndHour:   s.TravelHours.End,
		RunTag:    s.RunTag,
	})
	r.Summary = travel.Summarize(bookings, s.HomeBase)

	for _, w := range r.Warnings {
		g.logger.Warn("Travel warning", "warning", w)
	}

	r.WorkICS = ics.Render(r.Work, s.Names.Work, g.clock)
	r.HoldICS = ics.Render(r.Hold, s.Names.Hold, g.clock)
	r.TravelICS = ics.Render(r.Travel, s.Names.Travel, g.clock)

	g.logger.Info("Generation pass finished.",
		"work", len(r.Work),
		"hold", len(r.Hold),
		"travel", len(r.Travel),
		"runs", len(r.Summary.Runs),
		"eligibleRuns", len(r.Summary.Eligible),
	)
	return r
}

// WriteFiles writes the three documents of r into dir and returns their paths.
func (g *Generator) WriteFiles(dir string, r Result) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	docs := []struct {
		name string
		body string
	}{
		{WorkFile, r.WorkICS},
		{HoldFile, r.HoldICS},
		{TravelFile, r.TravelICS},
	}

	var paths []string
	for _, d := range docs {
		p := filepath.Join(dir, d.name)
		if err := os.WriteFile(p, []byte(d.body), 0o644); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", d.name, err)
		}
		g.logger.Debug("Wrote calendar file.", "path", p, "bytes", len(d.body))
		paths = append(paths, p)
	}
	return paths, nil
}
