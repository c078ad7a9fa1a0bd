package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/internal/collector"
	"github.com/go-tangra/go-tangra-sysinfo/internal/config"
	"github.com/go-tangra/go-tangra-sysinfo/internal/report"
)

var showAll bool

var showCmd = &cobra.Command{
	Use:   "show <category>...",
	Short: "Print the detailed report for one or more categories",
	Long: `Print the detailed report for each named category: identity, memory,
cpu, disk, network, software or devices.`,
	RunE: runShow,
}

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Print the identity, memory and CPU summary",
	RunE:  runSummary,
}

var (
	snapshotJSON   bool
	snapshotOutput string
)

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Collect every category once and print the result",
	RunE:  runSnapshot,
}

func init() {
	showCmd.Flags().BoolVar(&showAll, "all", false, "show every category")
	snapshotCmd.Flags().BoolVar(&snapshotJSON, "json", false, "write typed snapshots as JSON")
	snapshotCmd.Flags().StringVarP(&snapshotOutput, "output", "o", "", "write output to file instead of stdout")

	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(snapshotCmd)
}

func runShow(cmd *cobra.Command, args []string) error {
	var categories []collector.Category
	if showAll {
		categories = collector.Categories()
	} else {
		if len(args) == 0 {
			return fmt.Errorf("name at least one category or pass --all")
		}
		for _, a := range args {
			c, err := collector.ParseCategory(a)
			if err != nil {
				return err
			}
			categories = append(categories, c)
		}
	}

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	agg := newAggregator(cfg, newLogger(cfg.LogLevel))

	blocks := make([]string, 0, len(categories))
	for _, c := range categories {
		blocks = append(blocks, agg.Titled(cmd.Context(), c))
	}
	fmt.Fprintln(cmd.OutOrStdout(), strings.Join(blocks, "\n\n"))
	return nil
}

func runSummary(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	agg := newAggregator(cfg, newLogger(cfg.LogLevel))
	fmt.Fprintln(cmd.OutOrStdout(), agg.GetSummary(cmd.Context()))
	return nil
}

// snapshotDocument is the JSON form of a full collection pass.
type snapshotDocument struct {
	Hostname    string                                    `json:"hostname"`
	CollectedAt time.Time                                 `json:"collected_at"`
	Snapshots   map[collector.Category]collector.Snapshot `json:"snapshots"`
	Errors      map[collector.Category]string             `json:"errors,omitempty"`
}

func runSnapshot(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if snapshotOutput != "" {
		f, err := os.Create(snapshotOutput)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	doc := collectSnapshot(cmd, cfg)

	if snapshotJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encode snapshot: %w", err)
		}
	} else {
		blocks := make([]string, 0, len(collector.Categories()))
		for _, c := range collector.Categories() {
			text := doc.Errors[c]
			if snap, ok := doc.Snapshots[c]; ok {
				text = report.Render(snap)
			}
			blocks = append(blocks, c.Title()+"\n\n"+text)
		}
		fmt.Fprintln(w, strings.Join(blocks, "\n\n"))
	}

	if snapshotOutput != "" {
		fmt.Fprintf(os.Stderr, "snapshot written to %s\n", snapshotOutput)
	}
	return nil
}

func collectSnapshot(cmd *cobra.Command, cfg *config.Config) *snapshotDocument {
	collectors := collector.Defaults(collector.Options{CPUSampleInterval: cfg.CPUSampleInterval})
	snaps, errs := collector.CollectAll(cmd.Context(), collectors)

	doc := &snapshotDocument{
		CollectedAt: time.Now().UTC(),
		Snapshots:   snaps,
	}
	if id, ok := snaps[collector.CategoryIdentity].(collector.Identity); ok {
		doc.Hostname = id.Hostname
	}
	if len(errs) > 0 {
		doc.Errors = make(map[collector.Category]string, len(errs))
		for c, err := range errs {
			doc.Errors[c] = report.Error(c, err)
		}
	}
	return doc
}
