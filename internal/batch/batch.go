// Package batch works on already generated .ics files: listing their events
// with the RunID that produced them, and removing a whole RunID batch.
package batch

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/emersion/go-ical"

	"itincal/internal/events"
	"itincal/internal/ics"
)

const propCalName = "X-WR-CALNAME"

var runIDPrefix = events.RunTag("")

// Entry is one event found in a calendar file.
type Entry struct {
	File    string
	UID     string
	Summary string
	Start   string // raw DTSTART value
	RunID   string // empty when the event carries no tag
}

// Tool inspects and rewrites calendar files.
type Tool struct {
	logger *slog.Logger
	dryRun bool
}

// NewTool creates a new Tool. In dry-run mode Purge only reports.
func NewTool(logger *slog.Logger, dryRun bool) *Tool {
	return &Tool{logger: logger, dryRun: dryRun}
}

// Inspect lists the events of the calendar file at path.
func (t *Tool) Inspect(path string) ([]Entry, error) {
	cal, err := decodeFile(path)
	if err != nil {
		return nil, err
	}

	var out []Entry
	for _, ev := range cal.Events() {
		e := Entry{File: path}
		e.UID, _ = ev.Props.Text(ical.PropUID)
		e.Summary, _ = ev.Props.Text(ical.PropSummary)
		if p := ev.Props.Get(ical.PropDateTimeStart); p != nil {
			e.Start = p.Value
		}
		desc, _ := ev.Props.Text(ical.PropDescription)
		e.RunID = RunIDOf(desc)
		out = append(out, e)
	}
	t.logger.Debug("Inspected calendar file.", "file", path, "events", len(out))
	return out, nil
}

// Purge removes every event tagged with runID from the file at path and
// returns how many were removed. The file is only rewritten when something
// matched and the tool is not in dry-run mode; the rewrite uses the same
// LF line endings and folding as generated files.
func (t *Tool) Purge(path, runID string) (int, error) {
	if strings.TrimSpace(runID) == "" {
		return 0, fmt.Errorf("run ID is empty")
	}
	cal, err := decodeFile(path)
	if err != nil {
		return 0, err
	}

	kept := cal.Children[:0]
	removed := 0
	for _, child := range cal.Children {
		if child.Name == ical.CompEvent && hasRunID(child, runID) {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	cal.Children = kept

	if removed == 0 {
		t.logger.Info("No events matched, file left unchanged.", "file", path, "runID", runID)
		return 0, nil
	}
	if t.dryRun {
		t.logger.Info("[DRY RUN] Would remove events", "file", path, "runID", runID, "count", removed)
		return removed, nil
	}
	if err := writeFile(path, cal); err != nil {
		return 0, err
	}
	t.logger.Info("Removed RunID batch.", "file", path, "runID", runID, "count", removed)
	return removed, nil
}

// RunIDOf extracts the RunID tag from an event description.
func RunIDOf(desc string) string {
	ids := runIDs(desc)
	if len(ids) == 0 {
		return ""
	}
	return ids[len(ids)-1]
}

func runIDs(desc string) []string {
	var ids []string
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, runIDPrefix) {
			ids = append(ids, strings.TrimSpace(line[len(runIDPrefix):]))
		}
	}
	return ids
}

func hasRunID(comp *ical.Component, runID string) bool {
	desc, err := comp.Props.Text(ical.PropDescription)
	if err != nil {
		return false
	}
	for _, id := range runIDs(desc) {
		if id == runID {
			return true
		}
	}
	return false
}

func decodeFile(path string) (*ical.Calendar, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cal, err := ical.NewDecoder(f).Decode()
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return cal, nil
}

func writeFile(path string, cal *ical.Calendar) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".itincal-*.ics.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := encode(tmp, cal); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

// encode rewrites the events of cal in the layout generate uses, so a
// purged file keeps its line endings and folding. Only events are carried
// over; an emptied calendar keeps its envelope and name.
func encode(w io.Writer, cal *ical.Calendar) error {
	var evs []ics.StoredEvent
	for _, ev := range cal.Events() {
		uid, err := ev.Props.Text(ical.PropUID)
		if err != nil {
			return err
		}
		stored := ics.StoredEvent{UID: uid}
		for _, values := range ev.Props {
			for _, p := range values {
				stored.Props = append(stored.Props, ics.Prop{Name: p.Name, Params: p.Params, Value: p.Value})
			}
		}
		evs = append(evs, stored)
	}
	name, _ := cal.Props.Text(propCalName)
	return ics.WriteStored(w, evs, name)
}
