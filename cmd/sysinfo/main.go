package main

import (
	"fmt"
	"os"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/internal/aggregator"
	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/config"
)

var (
	version    = "dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "sysinfo - cached host telemetry reports",
	Long: `sysinfo reports host identity, memory, CPU, disk, network, installed
software and serial devices. Each category is collected on first request
and cached until refreshed.

Run without a subcommand to print the dashboard summary.`,
	SilenceUsage: true,
	RunE:         runSummary,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sysinfo %s (commit: %s, built: %s)\n", version, commitHash, buildDate)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./sysinfo.yaml)")
	rootCmd.PersistentFlags().String("listen", "", "gRPC listen address (default :9560)")
	rootCmd.PersistentFlags().String("http-listen", "", "HTTP listen address (default :9561)")
	rootCmd.PersistentFlags().String("database", "", "SQLite report archive path (default sysinfo.db)")
	rootCmd.PersistentFlags().String("log-level", "", "debug, info, warn or error (default info)")
	rootCmd.PersistentFlags().Duration("cpu-interval", 0, "CPU usage sampling window (default 1s)")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies CLI flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	flags := cmd.Flags()
	if v, _ := flags.GetString("listen"); v != "" {
		cfg.Listen = v
	}
	if v, _ := flags.GetString("http-listen"); v != "" {
		cfg.HTTPListen = v
	}
	if v, _ := flags.GetString("database"); v != "" {
		cfg.DatabasePath = v
	}
	if v, _ := flags.GetString("log-level"); v != "" {
		cfg.LogLevel = v
	}
	if v, _ := flags.GetDuration("cpu-interval"); v > 0 {
		cfg.CPUSampleInterval = v
	}
	return cfg, nil
}

// newLogger returns a stderr logger filtered at level.
func newLogger(level string) log.Logger {
	logger := log.With(log.NewStdLogger(os.Stderr),
		"ts", log.DefaultTimestamp,
		"caller", log.DefaultCaller,
	)
	return log.NewFilter(logger, log.FilterLevel(log.ParseLevel(level)))
}

// newAggregator wires the production collectors for cfg.
func newAggregator(cfg *config.Config, logger log.Logger) *aggregator.Aggregator {
	return aggregator.New(logger, collector.Defaults(collector.Options{
		CPUSampleInterval: cfg.CPUSampleInterval,
	})...)
}
