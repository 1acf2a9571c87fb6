package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"itincal/internal/batch"
	"itincal/internal/bookingfile"
	"itincal/internal/config"
	"itincal/internal/generator"
	"itincal/internal/location"
	"itincal/internal/models"
	"itincal/internal/parser"
	"itincal/internal/runs"
	"itincal/internal/travel"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "itincal",
		Usage: "Turn agency itinerary text into WORK, HOLD and TRAVEL calendars.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Value: "itincal.yaml", Usage: "YAML profile with home base, hours and calendar names."},
			&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error. Overrides LOG_LEVEL."},
		},
		Commands: []*cli.Command{
			parseCommand(),
			runsCommand(),
			generateCommand(),
			inspectCommand(),
			purgeCommand(),
		},
	}
}

// sourceFlags select where bookings come from.
func sourceFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Itinerary text file to parse."},
		&cli.StringFlag{Name: "bookings", Aliases: []string{"b"}, Usage: "Reviewed bookings YAML file."},
	}
}

func parseCommand() *cli.Command {
	return &cli.Command{
		Name:  "parse",
		Usage: "Parse itinerary text into a reviewable bookings file.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "Itinerary text file to parse."},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Write bookings here instead of stdout."},
		},
		Action: func(c *cli.Context) error {
			_, logger, err := setup(c)
			if err != nil {
				return err
			}
			bookings, err := parseInput(logger, c.String("input"))
			if err != nil {
				return err
			}

			out := c.String("out")
			if out == "" {
				data, err := bookingfile.Encode(bookings)
				if err != nil {
					return fmt.Errorf("failed to encode bookings: %w", err)
				}
				_, err = c.App.Writer.Write(data)
				return err
			}
			if err := bookingfile.Save(out, bookings); err != nil {
				return fmt.Errorf("failed to save bookings: %w", err)
			}
			logger.Info("Wrote bookings file.", "file", out, "bookings", len(bookings))
			return nil
		},
	}
}

func runsCommand() *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "Show city runs and which of them get travel days.",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "home-base", Usage: "Override the configured home base."},
		}, sourceFlags()...),
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			if c.IsSet("home-base") {
				cfg.HomeBase = c.String("home-base")
			}
			bookings, err := loadBookings(c, logger)
			if err != nil {
				return err
			}

			homeKey := location.Normalize(cfg.HomeBase)
			w := c.App.Writer
			for _, r := range runs.Merge(bookings) {
				fmt.Fprintf(w, "%s\t%s..%s\t%d booking(s)\t%s\n",
					r.CityLabel,
					r.StartDate.Format("2006-01-02"),
					r.EndDate.Format("2006-01-02"),
					len(r.Bookings),
					runStatus(r, homeKey),
				)
			}
			s := travel.Summarize(bookings, cfg.HomeBase)
			fmt.Fprintf(w, "Detected runs: %d, eligible for travel: %d\n", len(s.Runs), len(s.Eligible))
			return nil
		},
	}
}

func runStatus(r runs.CityRun, homeKey string) string {
	switch {
	case r.CityKey == homeKey:
		return "home"
	case location.IsUnknownKey(r.CityKey):
		return "unknown location"
	case !r.IncludeTravelAny:
		return "travel (auto only)"
	}
	return "travel"
}

func generateCommand() *cli.Command {
	return &cli.Command{
		Name:  "generate",
		Usage: "Generate work.ics, hold.ics and travel.ics.",
		Flags: append([]cli.Flag{
			&cli.StringFlag{Name: "out-dir", Aliases: []string{"d"}, Usage: "Output directory. Overrides the configured one."},
			&cli.StringFlag{Name: "run-id", Usage: "Run tag stamped on every event. Defaults to today's date plus -001."},
			&cli.StringFlag{Name: "home-base", Usage: "Override the configured home base."},
			&cli.StringFlag{Name: "travel-mode", Usage: "AUTO, MANUAL or OFF."},
		}, sourceFlags()...),
		Action: func(c *cli.Context) error {
			cfg, logger, err := setup(c)
			if err != nil {
				return err
			}
			if c.IsSet("home-base") {
				cfg.HomeBase = c.String("home-base")
			}
			if c.IsSet("travel-mode") {
				cfg.TravelMode = c.String("travel-mode")
			}
			if c.IsSet("out-dir") {
				cfg.OutDir = c.String("out-dir")
			}
			runID := c.String("run-id")
			if runID == "" {
				runID = defaultRunID(time.Now())
			}

			settings, err := cfg.Settings(runID)
			if err != nil {
				return err
			}
			bookings, err := loadBookings(c, logger)
			if err != nil {
				return err
			}

			g := generator.NewGenerator(logger, nil)
			result := g.Generate(bookings, settings)
			paths, err := g.WriteFiles(cfg.OutDir, result)
			if err != nil {
				return err
			}
			for _, p := range paths {
				fmt.Fprintln(c.App.Writer, p)
			}
			logger.Info("Import each file into its own calendar. To undo this run, use purge.", "runID", runID)
			return nil
		},
	}
}

func inspectCommand() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "List the events of .ics files with their RunID.",
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			_, logger, err := setup(c)
			if err != nil {
				return err
			}
			if c.NArg() == 0 {
				return fmt.Errorf("no .ics files given")
			}
			tool := batch.NewTool(logger, false)
			for _, path := range c.Args().Slice() {
				entries, err := tool.Inspect(path)
				if err != nil {
					return err
				}
				for _, e := range entries {
					fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\t%s\n", e.File, e.Start, e.RunID, e.Summary)
				}
			}
			return nil
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:      "purge",
		Usage:     "Remove every event of one run from .ics files.",
		ArgsUsage: "FILE...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "run-id", Required: true, Usage: "Run tag to remove."},
			&cli.BoolFlag{Name: "dry-run", Usage: "Log what would be removed without changing files."},
		},
		Action: func(c *cli.Context) error {
			_, logger, err := setup(c)
			if err != nil {
				return err
			}
			if c.NArg() == 0 {
				return fmt.Errorf("no .ics files given")
			}
			if c.Bool("dry-run") {
				logger.Info("Performing a dry run. No changes will be made.")
			}

			tool := batch.NewTool(logger, c.Bool("dry-run"))
			total := 0
			for _, path := range c.Args().Slice() {
				n, err := tool.Purge(path, c.String("run-id"))
				if err != nil {
					return err
				}
				total += n
			}
			fmt.Fprintf(c.App.Writer, "%d event(s) tagged %s\n", total, c.String("run-id"))
			return nil
		},
	}
}

// setup loads the profile and builds the logger for a command.
func setup(c *cli.Context) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, nil, err
	}
	level := cfg.LogLevel
	if c.IsSet("log-level") {
		level = c.String("log-level")
	}
	return cfg, setupLogger(level), nil
}

func loadBookings(c *cli.Context, logger *slog.Logger) ([]models.Booking, error) {
	input, file := c.String("input"), c.String("bookings")
	switch {
	case input != "" && file != "":
		return nil, fmt.Errorf("use either --input or --bookings, not both")
	case file != "":
		bookings, err := bookingfile.Load(file)
		if err != nil {
			return nil, fmt.Errorf("failed to load bookings: %w", err)
		}
		logger.Info("Loaded bookings file.", "file", file, "bookings", len(bookings))
		return bookings, nil
	case input != "":
		return parseInput(logger, input)
	}
	return nil, fmt.Errorf("one of --input or --bookings is required")
}

func parseInput(logger *slog.Logger, path string) ([]models.Booking, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read itinerary: %w", err)
	}
	report := parser.ParseReport(string(data), time.Now())
	logger.Info("Parsed itinerary.", "file", path, "blocks", report.Blocks, "bookings", len(report.Bookings))
	if report.Dropped > 0 {
		logger.Warn("Some blocks had no usable dates and were skipped.", "dropped", report.Dropped)
	}
	return report.Bookings, nil
}

func defaultRunID(now time.Time) string {
	return now.Format("2006-01-02") + "-001"
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
