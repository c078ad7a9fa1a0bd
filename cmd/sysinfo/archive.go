package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/internal/config"
	"github.com/go-tangra/go-tangra-sysinfo/internal/server"
	"github.com/go-tangra/go-tangra-sysinfo/internal/store"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Archive the current report of every category",
	RunE:  runExport,
}

var (
	historyCategory string
	historyRun      string
	historyLimit    int
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List archived reports, newest first",
	RunE:  runHistory,
}

var purgeDays int

var purgeCmd = &cobra.Command{
	Use:   "purge",
	Short: "Purge archived reports older than the specified number of days",
	RunE:  runPurge,
}

func init() {
	historyCmd.Flags().StringVar(&historyCategory, "category", "", "only this category")
	historyCmd.Flags().StringVar(&historyRun, "run", "", "only this export run id")
	historyCmd.Flags().IntVar(&historyLimit, "limit", store.DefaultListLimit, "maximum number of reports")
	purgeCmd.Flags().IntVar(&purgeDays, "days", 90, "purge reports older than this many days")

	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(purgeCmd)
}

func openArchive(cfg *config.Config) (*store.Store, func(), error) {
	if cfg.DatabasePath == "" {
		return nil, nil, fmt.Errorf("no report database configured")
	}
	db, err := store.New(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	return db, func() { db.Close() }, nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, closeDB, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	logger := newLogger(cfg.LogLevel)
	hostname, _ := os.Hostname()
	h := server.NewHandler(logger, newAggregator(cfg, logger), db, hostname)

	res, err := h.Export(cmd.Context())
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d reports as run %s\n", res.Count, res.RunID)
	return nil
}

func runHistory(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, closeDB, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	h := server.NewHandler(newLogger(cfg.LogLevel), nil, db, "")
	reports, err := h.History(cmd.Context(), store.ListFilter{
		Category: historyCategory,
		RunID:    historyRun,
		Limit:    historyLimit,
	})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for i, r := range reports {
		if i > 0 {
			fmt.Fprintln(out)
		}
		status := ""
		if r.Failed {
			status = " (failed)"
		}
		fmt.Fprintf(out, "== %s %s %s run=%s%s ==\n%s\n", r.CollectedAt, r.Hostname, r.Category, r.RunID, status, r.Report)
	}
	if len(reports) == 0 {
		fmt.Fprintln(out, "No archived reports found.")
	}
	return nil
}

func runPurge(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	db, closeDB, err := openArchive(cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	n, err := db.Purge(cmd.Context(), time.Duration(purgeDays)*24*time.Hour)
	if err != nil {
		return fmt.Errorf("purge: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Purged %d reports older than %d days\n", n, purgeDays)
	return nil
}
