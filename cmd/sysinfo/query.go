package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/go-tangra/go-tangra-sysinfo/internal/client"
)

var queryAddr string

var queryCmd = &cobra.Command{
	Use:   "query <category|summary|refresh>",
	Short: "Ask a running sysinfo server for a report",
	Args:  cobra.ExactArgs(1),
	RunE:  runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryAddr, "addr", "localhost:9560", "gRPC address of the server")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	c, err := client.New(queryAddr)
	if err != nil {
		return err
	}
	defer c.Close()

	ctx := cmd.Context()
	switch args[0] {
	case "summary":
		out, err := c.GetSummary(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	case "refresh":
		if err := c.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "cache refreshed")
	default:
		out, err := c.GetCategory(ctx, args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return nil
}
