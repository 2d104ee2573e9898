package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/August26/proxytrial/internal/analytics"
	"github.com/August26/proxytrial/internal/checker"
	"github.com/August26/proxytrial/internal/config"
	"github.com/August26/proxytrial/internal/geo"
	"github.com/August26/proxytrial/internal/logging"
	"github.com/August26/proxytrial/internal/model"
	"github.com/August26/proxytrial/internal/output"
	"github.com/August26/proxytrial/internal/parser"
)

// aliases maps short flag names to their long form.
var aliases = map[string]string{}

func boolFlag(p *bool, short, long string, value bool, usage string) {
	flag.BoolVar(p, short, value, usage)
	flag.BoolVar(p, long, value, usage)
	aliases[short] = long
}

func intFlag(p *int, short, long string, value int, usage string) {
	flag.IntVar(p, short, value, usage)
	flag.IntVar(p, long, value, usage)
	aliases[short] = long
}

func stringFlag(p *string, short, long string, value string, usage string) {
	flag.StringVar(p, short, value, usage)
	flag.StringVar(p, long, value, usage)
	aliases[short] = long
}

func main() {
	var cfg model.Config

	boolFlag(&cfg.Verbose, "v", "verbose", false, "print every proxy with its success ratio, log trial failures")
	boolFlag(&cfg.Quiet, "q", "quiet", false, "print only working proxy URIs")
	boolFlag(&cfg.Location, "l", "location", false, "append country/city of working proxies")
	intFlag(&cfg.TimeoutSeconds, "t", "timeout", model.DefaultTimeoutSeconds, "timeout in seconds for each request")
	stringFlag(&cfg.Target, "T", "target", model.DefaultTarget, "URL fetched through each proxy")
	stringFlag(&cfg.MatchString, "s", "string", "", "response body must contain this string")
	stringFlag(&cfg.InputFile, "f", "file", "", "path to file with proxy list (default: read stdin until a blank line)")
	intFlag(&cfg.Repeat, "r", "repeat", model.DefaultRepeat, "number of trials per proxy")
	intFlag(&cfg.Concurrency, "j", "concurrency", 0, "max candidates checked at once (0 = no limit)")
	stringFlag(&cfg.ConfigFile, "c", "config", "", "optional .hcl or .json config file")
	stringFlag(&cfg.OutputFile, "o", "output", "", "optional path to write results (json/csv)")
	flag.StringVar(&cfg.OutputFormat, "format", "json", "output format: json | csv")
	flag.StringVar(&cfg.GeoIPDB, "geoip-db", "", "MaxMind City database used for --location instead of the HTTP lookup")
	flag.StringVar(&cfg.GeoEndpoint, "geo-endpoint", model.DefaultGeoEndpoint, "base URL of the IP geolocation service")

	flag.Parse()

	if cfg.ConfigFile != "" {
		f, err := config.Load(cfg.ConfigFile)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		config.Apply(&cfg, f, explicitFlags())
	}

	log := logging.NewLogger(os.Stderr, cfg.Verbose, cfg.Quiet)

	if cfg.Repeat < 1 {
		cfg.Repeat = 1
	}
	if cfg.TimeoutSeconds < 1 {
		log.Warn("timeout must be positive, using default", "timeout_seconds", cfg.TimeoutSeconds)
		cfg.TimeoutSeconds = model.DefaultTimeoutSeconds
	}
	if cfg.OutputFile != "" && cfg.OutputFormat != "json" && cfg.OutputFormat != "csv" {
		fmt.Fprintln(os.Stderr, "--format must be json or csv")
		os.Exit(1)
	}

	units, err := parser.LoadUnits(cfg.InputFile, os.Stdin)
	if err != nil {
		log.Error("failed to read candidates", "err", err)
		os.Exit(1)
	}

	if cfg.Location {
		resolver, closeFn := newResolver(cfg, log)
		defer closeFn()
		cfg.Resolver = resolver
	}

	log.Info("starting proxytrial",
		"candidates", len(units),
		"target", cfg.Target,
		"timeout_seconds", cfg.TimeoutSeconds,
		"repeat", cfg.Repeat,
		"concurrency", cfg.Concurrency,
		"location", cfg.Location,
	)

	printer := output.NewPrinter(os.Stdout, output.Options{
		Quiet:    cfg.Quiet,
		Verbose:  cfg.Verbose,
		Location: cfg.Location,
	})

	ctx := context.Background()
	start := time.Now()

	results := checker.RunBatch(ctx, units, cfg, checker.NewHTTPChecker(cfg), log, printer.Print)

	stats := analytics.Compute(results, time.Since(start))

	log.Info("batch finished",
		"total_ms", stats.TotalProcessingTimeMs,
		"candidates", stats.TotalCandidates,
		"uris", stats.TotalURIs,
		"working", stats.WorkingURIs,
		"timeouts", stats.Timeouts,
		"failures", stats.Failures,
		"content_mismatches", stats.ContentMismatches,
	)

	if cfg.OutputFile != "" {
		if err := output.WriteFile(cfg.OutputFile, cfg.OutputFormat, results, stats); err != nil {
			log.Error("failed to write output file", "err", err, "path", cfg.OutputFile)
		} else {
			log.Info("results written",
				"path", cfg.OutputFile,
				"format", cfg.OutputFormat,
			)
		}
	}
}

func newResolver(cfg model.Config, log *slog.Logger) (model.IPResolver, func()) {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second

	if cfg.GeoIPDB != "" {
		mm, err := geo.OpenMaxMind(cfg.GeoIPDB)
		if err == nil {
			return mm, func() { _ = mm.Close() }
		}
		log.Warn("geoip database unavailable, using lookup service", "err", err, "path", cfg.GeoIPDB)
	}
	return geo.NewIPAPI(cfg.GeoEndpoint, timeout), func() {}
}

// explicitFlags returns the long names of flags set on the command line.
func explicitFlags() map[string]bool {
	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) {
		name := f.Name
		if long, ok := aliases[name]; ok {
			name = long
		}
		set[name] = true
	})
	return set
}
