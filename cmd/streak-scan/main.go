package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/ironsheep/streak-scanner/internal/config"
	"github.com/ironsheep/streak-scanner/internal/detection"
	"github.com/ironsheep/streak-scanner/internal/logger"
	"github.com/ironsheep/streak-scanner/internal/metrics"
	"github.com/ironsheep/streak-scanner/internal/pipeline"
	"github.com/ironsheep/streak-scanner/internal/server"
	"github.com/ironsheep/streak-scanner/internal/visualize"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run executes the command line and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	if len(args) > 0 {
		switch args[0] {
		case "--version", "-v", "version":
			fmt.Fprintf(stdout, "streak-scan %s\n", Version)
			fmt.Fprintf(stdout, "  Build time: %s\n", BuildTime)
			fmt.Fprintf(stdout, "  Git commit: %s\n", GitCommit)
			return 0
		case "--help", "-h", "help":
			printUsage(stdout)
			return 0
		case "mcp":
			return runMCP(stderr)
		}
	}
	return runScan(args, stdout, stderr)
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "streak-scan - detect and classify light streaks in an image catalog")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  streak-scan [options] [catalog]    Scan a catalog and write the report (options may follow the catalog)")
	fmt.Fprintln(w, "  streak-scan mcp                    Serve the scan tools over MCP stdio")
	fmt.Fprintln(w, "  streak-scan version                Print version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	newFlagSet(w).fs.PrintDefaults()
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment variables:")
	fmt.Fprintf(w, "  %s=debug    Log level (debug, info, warn, error)\n", config.EnvLogLevel)
	fmt.Fprintf(w, "  %s=4          Number of files processed in parallel\n", config.EnvWorkers)
}

// scanFlags holds the command line options of a scan. Only flags that were
// set on the command line override the configuration file.
type scanFlags struct {
	fs *flag.FlagSet

	configPath  string
	catalog     string
	pattern     string
	report      string
	minArea     int
	padding     float64
	policy      string
	constant    float64
	workers     int
	profilesDir string
	noProfiles  bool
	noAngle     bool
	noPartition bool
	logLevel    string
	logJSON     bool
	metricsFile string

	positional []string
}

func newFlagSet(output io.Writer) *scanFlags {
	f := &scanFlags{fs: flag.NewFlagSet("streak-scan", flag.ContinueOnError)}
	f.fs.SetOutput(output)

	f.fs.StringVar(&f.configPath, "config", "", "YAML configuration file")
	f.fs.StringVar(&f.catalog, "catalog", "", "Directory holding the images to scan")
	f.fs.StringVar(&f.pattern, "pattern", "*.png", "Glob selecting candidate files")
	f.fs.StringVar(&f.report, "report", "analytics.txt", "Report file, relative to the catalog unless absolute")
	f.fs.IntVar(&f.minArea, "min-area", 100, "Minimum pixel area of an accepted streak")
	f.fs.Float64Var(&f.padding, "padding", 0.1, "Bounding box padding fraction before normalization")
	f.fs.StringVar(&f.policy, "policy", "otsu", "Threshold policy: otsu or max-fraction")
	f.fs.Float64Var(&f.constant, "constant", 0, "Threshold constant: Otsu divisor or max fraction (0 keeps the configured value)")
	f.fs.IntVar(&f.workers, "workers", 0, "Files processed in parallel (0 keeps the configured value)")
	f.fs.StringVar(&f.profilesDir, "profiles-dir", "", "Plot output directory (default <catalog>/brightness_profile)")
	f.fs.BoolVar(&f.noProfiles, "no-profiles", false, "Do not write profile plots")
	f.fs.BoolVar(&f.noAngle, "no-angle", false, "Do not write rotation angle diagrams")
	f.fs.BoolVar(&f.noPartition, "no-partition", false, "Do not move no-event files")
	f.fs.StringVar(&f.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	f.fs.BoolVar(&f.logJSON, "log-json", false, "Log in JSON")
	f.fs.StringVar(&f.metricsFile, "metrics-textfile", "", "Write run metrics in Prometheus text format to this file")
	return f
}

// apply overrides cfg with every flag set on the command line.
func (f *scanFlags) apply(cfg *config.Config) {
	f.fs.Visit(func(fl *flag.Flag) {
		switch fl.Name {
		case "catalog":
			cfg.Catalog = f.catalog
		case "pattern":
			cfg.Pattern = f.pattern
		case "report":
			cfg.Report = f.report
		case "min-area":
			cfg.MinArea = f.minArea
		case "padding":
			cfg.Padding = f.padding
		case "policy":
			cfg.Threshold.Policy = f.policy
		case "workers":
			if f.workers > 0 {
				cfg.Workers = f.workers
			}
		case "profiles-dir":
			cfg.Profiles.Dir = f.profilesDir
		case "no-profiles":
			cfg.Profiles.Enabled = !f.noProfiles
		case "no-angle":
			cfg.Profiles.DrawAngle = !f.noAngle
		case "no-partition":
			cfg.Partition.Enabled = !f.noPartition
		case "log-level":
			cfg.Logging.Level = f.logLevel
		case "log-json":
			cfg.Logging.JSON = f.logJSON
		case "metrics-textfile":
			cfg.Metrics.Textfile = f.metricsFile
		}
	})

	// The constant belongs to whichever policy is active after the overrides.
	if f.constant > 0 {
		if cfg.Threshold.Policy == detection.PolicyMaxFraction {
			cfg.Threshold.MaxFraction = f.constant
		} else {
			cfg.Threshold.OtsuDivisor = f.constant
		}
	}
	if len(f.positional) > 0 {
		cfg.Catalog = f.positional[0]
	}
}

// parse reads options and the catalog argument in any order. Everything
// after a "--" terminator is positional.
func (f *scanFlags) parse(args []string) error {
	for {
		if err := f.fs.Parse(args); err != nil {
			return err
		}
		rest := f.fs.Args()
		if len(rest) == 0 {
			break
		}
		if consumed := len(args) - len(rest); consumed > 0 && args[consumed-1] == "--" {
			f.positional = append(f.positional, rest...)
			break
		}
		f.positional = append(f.positional, rest[0])
		args = rest[1:]
	}
	if len(f.positional) > 1 {
		return fmt.Errorf("expected one catalog directory, got %d arguments: %s",
			len(f.positional), strings.Join(f.positional, " "))
	}
	return nil
}

// loadConfig builds the effective configuration: defaults, then the YAML
// file, then the environment, then the command line.
func loadConfig(args []string, stderr io.Writer) (*config.Config, error) {
	flags := newFlagSet(stderr)
	if err := flags.parse(args); err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	flags.apply(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runScan(args []string, stdout, stderr io.Writer) int {
	cfg, err := loadConfig(args, stderr)
	if err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		fmt.Fprintf(stderr, "streak-scan: %v\n", err)
		return 2
	}

	log := logger.NewWithOutput(stderr, cfg.Logging.Level, cfg.Logging.JSON)
	log.WithFields(logrus.Fields{
		"version": Version,
		"catalog": cfg.Catalog,
		"policy":  cfg.Threshold.Policy,
		"workers": cfg.Workers,
	}).Debug("Starting scan")

	opts, err := pipeline.OptionsFromConfig(cfg)
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		return 2
	}

	var observer pipeline.Observer
	if cfg.Profiles.Enabled {
		observer = visualize.NewProfileWriter(cfg.ProfilesDir(), cfg.Profiles.DrawAngle, cfg.Padding, log)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	rec := metrics.New()
	start := time.Now()
	res, err := pipeline.NewRunner(opts, log, rec, observer).Run(ctx)
	if cfg.Metrics.Textfile != "" {
		if werr := rec.WriteTextfile(cfg.Metrics.Textfile); werr != nil {
			log.WithError(werr).Warn("Cannot write metrics textfile")
		}
	}
	if err != nil {
		log.WithError(err).Error("Scan failed")
		return 1
	}

	fmt.Fprintf(stdout, "Scanned %s in %.2fs: %s\n", cfg.Catalog, time.Since(start).Seconds(), res.Summary())
	if !res.Classification.Skipped {
		fmt.Fprintf(stdout, "Streak length mean %.2f, std %.2f (short < %.2f, long > %.2f)\n",
			res.Classification.Mean, res.Classification.Std,
			res.Classification.ShortBelow, res.Classification.LongAbove)
	}
	fmt.Fprintf(stdout, "Report written to %s\n", opts.ReportPath)
	if res.Moved > 0 {
		fmt.Fprintf(stdout, "Moved %d files to %s\n", res.Moved, cfg.Partition.Dir)
	}
	return 0
}

func runMCP(stderr io.Writer) int {
	cfg := config.DefaultConfig()
	cfg.ApplyEnv()
	log := logger.NewWithOutput(stderr, cfg.Logging.Level, false)
	log.WithFields(logrus.Fields{
		"version": Version,
		"built":   BuildTime,
		"commit":  GitCommit,
	}).Debug("Streak scanner MCP server")

	srv := server.New(log, Version)
	if err := srv.Run(); err != nil {
		log.WithError(err).Error("Server error")
		return 1
	}
	return 0
}
