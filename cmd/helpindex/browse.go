package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var lookupHelpID string

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the top-level help categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		for _, n := range svc.Categories() {
			fmt.Fprintf(cmd.OutOrStdout(), "%-24s %s\n", n.ID, n.Title)
		}
		return nil
	},
}

var browseCmd = &cobra.Command{
	Use:   "browse SECTION_ID",
	Short: "List the direct children of a section",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		children, ok := svc.Browse(args[0])
		if !ok {
			return fmt.Errorf("unknown section: %s", args[0])
		}
		for _, n := range children {
			kind := "page"
			if n.IsSection {
				kind = "section"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %-24s %s\n", kind, n.ID, n.Title)
		}
		return nil
	},
}

var breadcrumbCmd = &cobra.Command{
	Use:   "breadcrumb NODE_ID",
	Short: "Resolve the root-to-node ancestry path",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		crumbs, ok := svc.Breadcrumb(args[0])
		if !ok {
			return fmt.Errorf("unknown node: %s", args[0])
		}
		for i, c := range crumbs {
			fmt.Fprintf(cmd.OutOrStdout(), "%*s%s (%s)\n", i*2, "", c.Title, c.ID)
		}
		return nil
	},
}

var lookupCmd = &cobra.Command{
	Use:   "lookup",
	Short: "Look up a page by its stable help identifier",
	RunE: func(cmd *cobra.Command, args []string) error {
		if lookupHelpID == "" {
			return fmt.Errorf("--help-id is required")
		}

		svc, err := newService(false)
		if err != nil {
			return err
		}
		defer svc.Close()

		node, ok := svc.LookupHelpID(lookupHelpID)
		if !ok {
			return fmt.Errorf("no page bound to help ID %s", lookupHelpID)
		}

		page, _ := svc.Page(node.ID)
		fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", page.Title, page.BreadcrumbPath)
		if page.OnlineURL != "" {
			fmt.Fprintln(cmd.OutOrStdout(), page.OnlineURL)
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().StringVar(&lookupHelpID, "help-id", "", "Stable help identifier to resolve")
	rootCmd.AddCommand(categoriesCmd, browseCmd, breadcrumbCmd, lookupCmd)
}
