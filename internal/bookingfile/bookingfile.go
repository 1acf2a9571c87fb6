// Package bookingfile reads and writes the reviewable YAML list of bookings
// that sits between parsing and generation. Users edit this file to fix
// titles, dates, statuses, travel opt-ins and hour overrides.
package bookingfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"itincal/internal/models"
)

const dateLayout = "2006-01-02"

var ErrInvalidBooking = errors.New("invalid booking")

// File is the on-disk document.
type File struct {
	Bookings []Entry `yaml:"bookings"`
}

// Entry is one booking as the user sees it.
// Kind is written for reference only; it is always re-derived from Status.
type Entry struct {
	Title         string `yaml:"title"`
	Location      string `yaml:"location"`
	StartDate     Date   `yaml:"start_date"`
	EndDate       Date   `yaml:"end_date"`
	Status        string `yaml:"status"`
	Kind          string `yaml:"kind,omitempty"`
	IncludeTravel *bool  `yaml:"include_travel"`
	WorkStartHour *int   `yaml:"work_start_hour"`
	WorkEndHour   *int   `yaml:"work_end_hour"`
	Notes         string `yaml:"notes"`
}

// Date is a calendar date serialized as YYYY-MM-DD.
type Date struct {
	time.Time
}

func (d Date) MarshalYAML() (interface{}, error) {
	if d.IsZero() {
		return "", nil
	}
	return d.Format(dateLayout), nil
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Value == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, value.Value)
	if err != nil {
		return fmt.Errorf("line %d: date %q must be YYYY-MM-DD", value.Line, value.Value)
	}
	d.Time = t
	return nil
}

// Encode renders bookings as a YAML document.
func Encode(bookings []models.Booking) ([]byte, error) {
	f := File{Bookings: make([]Entry, 0, len(bookings))}
	for _, b := range bookings {
		include := b.IncludeTravel
		f.Bookings = append(f.Bookings, Entry{
			Title:         b.Title,
			Location:      b.Location,
			StartDate:     Date{b.StartDate},
			EndDate:       Date{b.EndDate},
			Status:        b.Status,
			Kind:          string(b.Kind()),
			IncludeTravel: &include,
			WorkStartHour: b.WorkStartHour,
			WorkEndHour:   b.WorkEndHour,
			Notes:         b.Notes,
		})
	}
	return yaml.Marshal(f)
}

// Decode parses and validates a YAML document.
func Decode(data []byte) ([]models.Booking, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse bookings: %w", err)
	}

	out := make([]models.Booking, 0, len(f.Bookings))
	for i, e := range f.Bookings {
		b, err := e.toBooking()
		if err != nil {
			return nil, fmt.Errorf("booking %d (%q): %w", i+1, e.Title, err)
		}
		out = append(out, b)
	}
	return out, nil
}

func (e Entry) toBooking() (models.Booking, error) {
	if e.StartDate.IsZero() || e.EndDate.IsZero() {
		return models.Booking{}, fmt.Errorf("%w: start_date and end_date are required", ErrInvalidBooking)
	}
	if e.EndDate.Before(e.StartDate.Time) {
		return models.Booking{}, fmt.Errorf("%w: end_date before start_date", ErrInvalidBooking)
	}
	for _, h := range []*int{e.WorkStartHour, e.WorkEndHour} {
		if h != nil && (*h < 0 || *h > 23) {
			return models.Booking{}, fmt.Errorf("%w: hour %d out of range 0-23", ErrInvalidBooking, *h)
		}
	}

	b := models.Booking{
		Title:         e.Title,
		Location:      e.Location,
		StartDate:     models.Date(e.StartDate.Time),
		EndDate:       models.Date(e.EndDate.Time),
		Status:        e.Status,
		Notes:         e.Notes,
		IncludeTravel: true,
		WorkStartHour: e.WorkStartHour,
		WorkEndHour:   e.WorkEndHour,
	}
	if e.IncludeTravel != nil {
		b.IncludeTravel = *e.IncludeTravel
	}
	if b.Status == "" {
		b.Status = models.StatusDefault
	}
	return b, nil
}

// Load reads and validates the bookings file at path.
func Load(path string) ([]models.Booking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Decode(data)
}

// Save writes bookings to path atomically via a temp file and rename.
// The final file is 0600.
func Save(path string, bookings []models.Booking) error {
	if path == "" {
		return errors.New("bookings path is empty")
	}
	data, err := Encode(bookings)
	if err != nil {
		return fmt.Errorf("failed to marshal bookings: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".itincal-bookings-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o600); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
