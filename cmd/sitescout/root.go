// Package main provides the entry point for the sitescout CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for sitescout.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sitescout",
		Short: "Incremental sitemap inventory for a bounded website section",
		Long: `Sitescout crawls one section of a website breadth-first and writes a
CSV inventory of the HTML pages and PDF documents it finds: URL, title,
description, depth, and type.

Runs are incremental: URLs listed in a prior inventory are skipped, so a
repeat run reports only what appeared since. Fetched HTML is cached on
disk, which makes re-runs cheap.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewCrawlCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
