package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show index and corpus statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.Statistics()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Index path:     %s\n", stats.IndexPath)
		fmt.Fprintf(out, "Documents:      %d\n", stats.DocumentCount)
		fmt.Fprintf(out, "Tree nodes:     %d (%d pages)\n", stats.Nodes, stats.Pages)
		fmt.Fprintf(out, "Built at:       %s\n", stats.BuiltAt.Format(time.RFC3339))
		fmt.Fprintf(out, "Schema version: %s\n", stats.SchemaVersion)
		fmt.Fprintf(out, "Fingerprint:    %s\n", stats.SourceFingerprint)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statsCmd)
}
