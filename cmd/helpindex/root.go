package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nainya/helpindex/internal/logger"
	"github.com/nainya/helpindex/internal/metrics"
	"github.com/nainya/helpindex/internal/service"
)

var (
	flagHelpRoot  string
	flagIndexPath string
	flagOnlineURL string
	flagLogLevel  string
	flagPretty    bool
)

var rootCmd = &cobra.Command{
	Use:   "helpindex",
	Short: "Index and search hierarchical help content",
	Long: `helpindex parses a B&R help content structure document into a navigable
document tree, maintains a full-text search index over the referenced HTML
pages, and answers ranked queries with breadcrumb navigation.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHelpRoot, "help-root", ".", "Root directory of the help content")
	rootCmd.PersistentFlags().StringVar(&flagIndexPath, "index-path", "", "Override the search index location")
	rootCmd.PersistentFlags().StringVar(&flagOnlineURL, "online-help-url", "", "Base URL for online help links")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&flagPretty, "pretty", false, "Pretty-print logs for development")
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newService builds a fully initialized service from the persistent flags
func newService(force bool) (*service.Service, error) {
	logger.InitGlobalLogger(logger.Config{
		Level:  flagLogLevel,
		Pretty: flagPretty,
	})

	return service.New(service.Config{
		HelpRoot:          flagHelpRoot,
		IndexPath:         flagIndexPath,
		OnlineHelpBaseURL: flagOnlineURL,
		ForceRebuild:      force,
		Logger:            logger.GetGlobalLogger(),
		Metrics:           metrics.NewMetrics(),
	})
}
