package main

import (
	"net/http"
	"os"
	"time"

	"github.com/woozymasta/tripgen/internal/config"
	"github.com/woozymasta/tripgen/internal/geo"
	"github.com/woozymasta/tripgen/internal/logger"
	"github.com/woozymasta/tripgen/internal/metrics"
	"github.com/woozymasta/tripgen/internal/trips"

	"github.com/google/uuid"
	"github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

type Options struct {
	Logger logger.Logger `group:"Logger options"`

	Input       string        `short:"i" long:"in"           env:"TRIPGEN_INPUT"  description:"Input GeoJSON: path, http(s) URL or - for stdin" default:"route_lines.json"`
	Output      string        `short:"o" long:"out"          env:"TRIPGEN_OUTPUT" description:"Output GeoJSON: path or - for stdout" default:"route_lines_processed.json"`
	ConfigFile  string        `short:"c" long:"config"       env:"CONFIG_FILE"    description:"Path to generation profile (YAML), built-in defaults if empty"`
	Seed        uint64        `short:"s" long:"seed"         env:"TRIPGEN_SEED"   description:"Random seed, 0 picks one from the clock"`
	Indent      bool          `long:"indent"                                      description:"Pretty-print output JSON"`
	Timeout     time.Duration `long:"timeout"                env:"HTTP_TIMEOUT"   description:"Timeout for URL input" default:"30s"`
	MetricsFile string        `long:"metrics-file"           env:"METRICS_FILE"   description:"Write run metrics in Prometheus text format to this file"`
}

func main() {
	// .env is optional
	_ = godotenv.Load()

	var opts Options
	parser := flags.NewParser(&opts, flags.Default)
	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok && flagsErr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(1)
	}

	opts.Logger.Setup()
	log.Logger = log.With().Str("run_id", uuid.NewString()).Logger()

	if err := run(opts); err != nil {
		log.Fatal().Err(err).Msg("Trip generation failed")
	}
}

func run(opts Options) error {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}

	collector := metrics.NewCollector()
	gen := trips.NewGenerator(cfg, trips.NewRand(seed), collector)
	client := &http.Client{Timeout: opts.Timeout}

	log.Info().
		Str("input", opts.Input).
		Str("output", opts.Output).
		Time("window_start", cfg.Start).
		Time("window_end", cfg.End).
		Int("step_seconds", cfg.StepSeconds).
		Uint64("seed", seed).
		Msg("Starting trip generation")

	start := time.Now()

	fc, err := geo.Load(client, opts.Input)
	if err != nil {
		return err
	}

	out, stats, err := gen.Augment(fc)
	if err != nil {
		return err
	}

	if err := geo.Save(opts.Output, out, opts.Indent); err != nil {
		return err
	}

	collector.Finish(time.Since(start))
	if opts.MetricsFile != "" {
		if err := collector.WriteTextfile(opts.MetricsFile); err != nil {
			log.Error().Err(err).Str("path", opts.MetricsFile).Msg("Failed to write metrics file")
		}
	}

	ev := log.Info().
		Int("routes", stats.Routes).
		Int("padded_routes", stats.PaddedRoutes).
		Int("points_in", stats.InputPoints).
		Int("points_out", stats.OutputPoints).
		Dur("duration", time.Since(start))
	if stats.Routes > 0 {
		ev = ev.Time("first_departure", stats.FirstDeparture).Time("last_departure", stats.LastDeparture)
	}
	ev.Msg("Trip generation finished successfully")

	return nil
}
