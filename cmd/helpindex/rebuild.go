package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/service"
)

var (
	rebuildForce       bool
	rebuildMetricsAddr string
)

var rebuildCmd = &cobra.Command{
	Use:   "rebuild",
	Short: "Rebuild the search index if the source changed",
	Long: `Fingerprints the structure document against the persisted index metadata
and rebuilds the search index when they differ. Use --force to rebuild
unconditionally.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		var obs *service.ObservabilityServer
		if rebuildMetricsAddr != "" {
			obs = service.NewObservabilityServer(rebuildMetricsAddr, logger.GetGlobalLogger())
			go obs.Start()
		}

		svc, err := newService(rebuildForce)
		if err != nil {
			return err
		}
		defer svc.Close()

		stats, err := svc.Statistics()
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Index at %s: %d documents (built %s)\n",
			stats.IndexPath, stats.DocumentCount, stats.BuiltAt.Format(time.RFC3339))

		if obs != nil {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			obs.Shutdown(ctx)
		}
		return nil
	},
}

func init() {
	rebuildCmd.Flags().BoolVar(&rebuildForce, "force", false, "Rebuild even if the source is unchanged")
	rebuildCmd.Flags().StringVar(&rebuildMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address during the rebuild")
	rootCmd.AddCommand(rebuildCmd)
}
