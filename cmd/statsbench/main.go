package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/storagekit/enginestats/pkg/config"
	"github.com/storagekit/enginestats/pkg/stats"
)

var (
	// Global flags
	configFile string
	logLevel   string
	logFormat  string
	workers    int
	duration   time.Duration

	// Build info (set by build system)
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statsbench",
		Short: "Synthetic workload driver for the engine statistics library",
		Long: `statsbench drives a synthetic storage-engine workload (reads, writes,
multigets, background compactions) against one shared statistics registry
from many goroutines, and periodically reports ticker counts and histogram
summaries. It exists to exercise and demonstrate the concurrency contract
of the statistics layer under realistic load.`,
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		RunE:    runBench,
	}

	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l", "", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVarP(&logFormat, "log-format", "f", "", "log format (json, console)")
	rootCmd.PersistentFlags().IntVarP(&workers, "workers", "w", 0, "number of workload goroutines")
	rootCmd.PersistentFlags().DurationVarP(&duration, "duration", "d", 0, "how long to run the workload")

	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runBench(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Override config with command line flags
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	if workers > 0 {
		cfg.Workload.Workers = workers
	}
	if duration > 0 {
		cfg.Workload.Duration = duration
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := setupLogging(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}

	logger.Info().
		Str("version", version).
		Int("workers", cfg.Workload.Workers).
		Dur("duration", cfg.Workload.Duration).
		Float64("read_ratio", cfg.Workload.ReadRatio).
		Msg("Starting statistics workload")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Workload.Duration)
	defer cancel()
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	registry := stats.New()
	workload := newWorkload(cfg, registry, logger)
	workload.run(ctx)

	report(logger, registry)
	if cfg.Report.DumpHistograms {
		dumpHistograms(registry)
	}

	logger.Info().Msg("Workload complete")
	return nil
}

func setupLogging(cfg config.LoggingConfig) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Logger{}, fmt.Errorf("invalid log level: %w", err)
	}
	zerolog.SetGlobalLevel(level)

	var logger zerolog.Logger
	switch cfg.Format {
	case "console":
		logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	case "json":
		fallthrough
	default:
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	return logger, nil
}

// report logs the headline tickers and the latency summaries for the two
// foreground operations.
func report(logger zerolog.Logger, s stats.Statistics) {
	var get, write stats.HistogramData
	s.HistogramData(stats.DBGet, &get)
	s.HistogramData(stats.DBWrite, &write)

	logger.Info().
		Uint64("keys_read", s.GetTickerCount(stats.NumberKeysRead)).
		Uint64("keys_written", s.GetTickerCount(stats.NumberKeysWritten)).
		Uint64("bytes_read", s.GetTickerCount(stats.BytesRead)).
		Uint64("bytes_written", s.GetTickerCount(stats.BytesWritten)).
		Uint64("cache_hits", s.GetTickerCount(stats.BlockCacheHit)).
		Uint64("cache_misses", s.GetTickerCount(stats.BlockCacheMiss)).
		Uint64("multiget_calls", s.GetTickerCount(stats.NumberMultigetCalls)).
		Float64("get_p50_us", get.Median).
		Float64("get_p99_us", get.Percentile99).
		Float64("get_avg_us", get.Average).
		Float64("write_p50_us", write.Median).
		Float64("write_p99_us", write.Percentile99).
		Float64("write_avg_us", write.Average).
		Msg("Workload statistics")
}

func dumpHistograms(s stats.Statistics) {
	for kind := stats.HistogramKind(0); kind < stats.HistogramKindCount; kind++ {
		fmt.Printf("%s\n%s\n", kind, s.HistogramString(kind))
	}
}

func newConfigCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management commands",
	}

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.DefaultConfig()

			if outputPath == "" {
				outputPath = "statsbench.yaml"
			}

			if err := cfg.SaveConfig(outputPath); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			fmt.Printf("Generated default configuration: %s\n", outputPath)
			return nil
		},
	}
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file path")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			fmt.Printf("Configuration is valid\n")
			fmt.Printf("Workers: %d\n", cfg.Workload.Workers)
			fmt.Printf("Duration: %s\n", cfg.Workload.Duration)
			fmt.Printf("Read ratio: %g\n", cfg.Workload.ReadRatio)
			fmt.Printf("Report interval: %s\n", cfg.Report.Interval)

			return nil
		},
	}

	cmd.AddCommand(generateCmd)
	cmd.AddCommand(validateCmd)

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("statsbench\n")
			fmt.Printf("Version: %s\n", version)
			fmt.Printf("Commit: %s\n", commit)
			fmt.Printf("Built: %s\n", date)
		},
	}
}
