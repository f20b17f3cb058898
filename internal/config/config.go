// Package config handles the trip generation profile.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// TimeLayout is the wall-clock layout accepted for window bounds
// in addition to RFC 3339.
const TimeLayout = "2006-01-02 15:04:05"

// Defaults for the departure window and route shaping.
const (
	DefaultWindowStart  = "2019-06-04 07:00:00"
	DefaultWindowEnd    = "2019-06-04 23:00:00"
	DefaultStepSeconds  = 180
	DefaultMinPoints    = 3
	DefaultPadCount     = 2
	DefaultRandomMean   = 0.5
	DefaultRandomStdDev = 0.1
)

// Config represents the generation profile file structure.
type Config struct {
	// Departure window, wall clock in Timezone unless given as RFC 3339.
	WindowStart string `yaml:"window_start"`
	WindowEnd   string `yaml:"window_end"`
	Timezone    string `yaml:"timezone,omitempty"` // IANA name, empty or "Local" for the host zone

	StepSeconds int `yaml:"step_seconds"`

	// Routes with at most MinPoints points get PadCount copies of their last point.
	MinPoints int `yaml:"min_points"`
	PadCount  int `yaml:"pad_count"`

	// Departure = start + r*(end-start), r ~ Normal(RandomMean, RandomStdDev), unclamped.
	RandomMean   float64 `yaml:"random_mean"`
	RandomStdDev float64 `yaml:"random_stddev"`

	Altitude float64 `yaml:"altitude,omitempty"`

	Start    time.Time      `yaml:"-"`
	End      time.Time      `yaml:"-"`
	Location *time.Location `yaml:"-"`
}

// Default returns the built-in profile, already resolved.
func Default() *Config {
	cfg := &Config{
		WindowStart:  DefaultWindowStart,
		WindowEnd:    DefaultWindowEnd,
		StepSeconds:  DefaultStepSeconds,
		MinPoints:    DefaultMinPoints,
		PadCount:     DefaultPadCount,
		RandomMean:   DefaultRandomMean,
		RandomStdDev: DefaultRandomStdDev,
	}
	if err := cfg.Resolve(); err != nil {
		panic(err)
	}
	return cfg
}

// Load reads and parses the YAML profile from the specified path.
// Keys missing from the file keep their defaults; an empty path yields Default().
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return cfg, nil
}

// Resolve validates the profile and fills Start, End and Location.
func (c *Config) Resolve() error {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return err
	}

	start, err := parseInstant(c.WindowStart, loc)
	if err != nil {
		return fmt.Errorf("window_start: %w", err)
	}
	end, err := parseInstant(c.WindowEnd, loc)
	if err != nil {
		return fmt.Errorf("window_end: %w", err)
	}
	if end.Before(start) {
		return fmt.Errorf("window_end %s is before window_start %s", c.WindowEnd, c.WindowStart)
	}

	switch {
	case c.StepSeconds <= 0:
		return fmt.Errorf("step_seconds must be > 0, got %d", c.StepSeconds)
	case c.MinPoints < 0:
		return fmt.Errorf("min_points must be >= 0, got %d", c.MinPoints)
	case c.PadCount < 0:
		return fmt.Errorf("pad_count must be >= 0, got %d", c.PadCount)
	case c.RandomStdDev < 0:
		return fmt.Errorf("random_stddev must be >= 0, got %g", c.RandomStdDev)
	}

	c.Start, c.End, c.Location = start, end, loc
	return nil
}

// Step returns the time between consecutive points of a route.
func (c *Config) Step() time.Duration {
	return time.Duration(c.StepSeconds) * time.Second
}

// Span returns the length of the departure window.
func (c *Config) Span() time.Duration {
	return c.End.Sub(c.Start)
}

func loadLocation(name string) (*time.Location, error) {
	if name == "" || name == "Local" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone: %w", err)
	}
	return loc, nil
}

func parseInstant(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty value")
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.ParseInLocation(TimeLayout, value, loc)
}
