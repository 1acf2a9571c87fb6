package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"itincal/internal/events"
	"itincal/internal/generator"
	"itincal/internal/travel"
)

// HourWindow is a start/end hour pair in the profile file.
type HourWindow struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// CalendarNames are the X-WR-CALNAME values of the output files.
type CalendarNames struct {
	Work   string `yaml:"work"`
	Hold   string `yaml:"hold"`
	Travel string `yaml:"travel"`
}

// Config is the user profile: home base, default hours and output options.
type Config struct {
	// HomeBase is the city travel is computed from.
	HomeBase string `yaml:"home_base"`

	// TravelMode is AUTO, MANUAL or OFF.
	TravelMode string `yaml:"travel_mode"`

	WorkHours   HourWindow `yaml:"work_hours"`
	HoldHours   HourWindow `yaml:"hold_hours"`
	TravelHours HourWindow `yaml:"travel_hours"`

	Calendars CalendarNames `yaml:"calendars"`

	// OutDir is where generate writes work.ics, hold.ics and travel.ics.
	OutDir string `yaml:"out_dir"`

	LogLevel string `yaml:"log_level"`
}

// DefaultConfig returns the built-in profile.
func DefaultConfig() *Config {
	return &Config{
		HomeBase:    "Paris",
		TravelMode:  string(travel.ModeAuto),
		WorkHours:   HourWindow{Start: 9, End: 19},
		HoldHours:   HourWindow{Start: 10, End: 18},
		TravelHours: HourWindow{Start: 8, End: 12},
		Calendars: CalendarNames{
			Work:   "WORK (Itinerary)",
			Hold:   "HOLD (Itinerary)",
			Travel: "TRAVEL (Itinerary)",
		},
		OutDir:   ".",
		LogLevel: "info",
	}
}

// Normalize fills empty string fields with defaults. Hours are left alone
// because 0 is a valid hour.
func (c *Config) Normalize() {
	d := DefaultConfig()
	if c.HomeBase == "" {
		c.HomeBase = d.HomeBase
	}
	if c.TravelMode == "" {
		c.TravelMode = d.TravelMode
	}
	if c.Calendars.Work == "" {
		c.Calendars.Work = d.Calendars.Work
	}
	if c.Calendars.Hold == "" {
		c.Calendars.Hold = d.Calendars.Hold
	}
	if c.Calendars.Travel == "" {
		c.Calendars.Travel = d.Calendars.Travel
	}
	if c.OutDir == "" {
		c.OutDir = d.OutDir
	}
	if c.LogLevel == "" {
		c.LogLevel = d.LogLevel
	}
}

// Validate checks hour ranges and the travel mode.
func (c *Config) Validate() error {
	windows := map[string]HourWindow{
		"work_hours":   c.WorkHours,
		"hold_hours":   c.HoldHours,
		"travel_hours": c.TravelHours,
	}
	for name, w := range windows {
		if !validHour(w.Start) || !validHour(w.End) {
			return fmt.Errorf("%s: hours must be within 0-23, got %d-%d", name, w.Start, w.End)
		}
	}
	if _, err := travel.ParseMode(c.TravelMode); err != nil {
		return err
	}
	return nil
}

func validHour(h int) bool {
	return h >= 0 && h <= 23
}

// Load builds the effective configuration: defaults, then the YAML profile
// at path (skipped if path is empty or missing), then .env and environment
// overrides.
func Load(path string) (*Config, error) {
	// Load .env file first, but don't error if it doesn't exist.
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HomeBase = getEnv("ITINCAL_HOME_BASE", c.HomeBase)
	c.TravelMode = getEnv("ITINCAL_TRAVEL_MODE", c.TravelMode)
	c.OutDir = getEnv("ITINCAL_OUT_DIR", c.OutDir)
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)

	hours := []struct {
		key string
		dst *int
	}{
		{"ITINCAL_WORK_START", &c.WorkHours.Start},
		{"ITINCAL_WORK_END", &c.WorkHours.End},
		{"ITINCAL_HOLD_START", &c.HoldHours.Start},
		{"ITINCAL_HOLD_END", &c.HoldHours.End},
		{"ITINCAL_TRAVEL_START", &c.TravelHours.Start},
		{"ITINCAL_TRAVEL_END", &c.TravelHours.End},
	}
	for _, h := range hours {
		v := os.Getenv(h.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%s must be an integer hour: %w", h.key, err)
		}
		*h.dst = n
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultVal
}

// Settings converts the profile into generator settings for runTag.
// The travel mode must already be valid.
func (c *Config) Settings(runTag string) (generator.Settings, error) {
	mode, err := travel.ParseMode(c.TravelMode)
	if err != nil {
		return generator.Settings{}, err
	}
	return generator.Settings{
		RunTag:      runTag,
		HomeBase:    c.HomeBase,
		TravelMode:  mode,
		WorkHours:   events.Hours(c.WorkHours),
		HoldHours:   events.Hours(c.HoldHours),
		TravelHours: events.Hours(c.TravelHours),
		Names: generator.CalendarNames{
			Work:   c.Calendars.Work,
			Hold:   c.Calendars.Hold,
			Travel: c.Calendars.Travel,
		},
	}, nil
}
