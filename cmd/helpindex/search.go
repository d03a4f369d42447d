package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nainya/helpindex/pkg/search"
)

var (
	searchLimit    int
	searchOffset   int
	searchPrefix   bool
	searchCategory string
)

var searchCmd = &cobra.Command{
	Use:   "search QUERY...",
	Short: "Run a ranked full-text query",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		page, err := svc.Search(strings.Join(args, " "), search.Options{
			Offset:   searchOffset,
			Size:     searchLimit,
			Prefix:   searchPrefix,
			Category: searchCategory,
		})
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "%d matches\n", page.Total)
		for i, r := range page.Results {
			fmt.Fprintf(cmd.OutOrStdout(), "%3d. %-40s %s\n", page.Offset+i+1, r.Title, r.Breadcrumb)
		}
		return nil
	},
}

func init() {
	searchCmd.Flags().IntVar(&searchLimit, "limit", 10, "Maximum results per page")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "Result offset for pagination")
	searchCmd.Flags().BoolVar(&searchPrefix, "prefix", false, "Match the final query token as a word prefix")
	searchCmd.Flags().StringVar(&searchCategory, "category", "", "Restrict results to one top-level category")
	rootCmd.AddCommand(searchCmd)
}
