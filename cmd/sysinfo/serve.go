package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/go-kratos/kratos/v2/log"
	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/cmd/sysinfo/assets"
	"github.com/go-tangra/go-tangra-sysinfo/internal/server"
	"github.com/go-tangra/go-tangra-sysinfo/internal/winsvc"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve cached reports over HTTP and gRPC",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	// Windows service mode logs to the event log.
	if winsvc.IsWindowsService() {
		logger, closeLog, err := winsvc.NewEventLogger(winsvc.ServiceName)
		if err != nil {
			logger = newLogger(cfg.LogLevel)
		} else {
			defer closeLog()
			logger = log.NewFilter(logger, log.FilterLevel(log.ParseLevel(cfg.LogLevel)))
		}
		return winsvc.RunService(winsvc.ServiceName, logger, func(ctx context.Context) error {
			return server.Run(ctx, cfg, logger, assets.OpenApiData)
		})
	}

	// Interactive mode: shut down on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return server.Run(ctx, cfg, newLogger(cfg.LogLevel), assets.OpenApiData)
}
