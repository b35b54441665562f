package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sitescout/sitescout/internal/config"
	"github.com/sitescout/sitescout/internal/database"
	"github.com/sitescout/sitescout/internal/model"
)

// NewCompareCmd creates the compare command.
// This command compares crawl runs recorded in the history database.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare [site]",
		Short: "Compare the two most recent crawl runs of a site",
		Long: `Compare shows what changed between a site's two most recent recorded
runs: URLs that appeared, URLs that are no longer discovered, and URLs
whose title changed.

Runs are recorded automatically by 'sitescout crawl' unless --no-history
was given. The comparison needs at least two recorded runs.

Examples:
  # Compare the latest two runs for a site
  sitescout compare docs

  # List recorded runs for a site
  sitescout compare --list docs

  # List all sites with recorded runs
  sitescout compare --list-sites

  # Output the comparison as JSON
  sitescout compare --json docs`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCompareCmd,
	}

	cmd.Flags().BoolP("list", "l", false,
		"List recorded runs for the specified site")
	cmd.Flags().BoolP("list-sites", "L", false,
		"List all sites with recorded runs")
	cmd.Flags().BoolP("json", "j", false,
		"Output comparison result in JSON format")
	cmd.Flags().String("db-dir", "",
		"Directory of the history database (default: XDG data directory)")

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	listSites, err := cmd.Flags().GetBool("list-sites")
	if err != nil {
		return err
	}

	var site string
	if !listSites {
		if len(args) == 0 {
			return errors.New("site name is required (use --list-sites to see recorded sites)")
		}
		site = args[0]
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	// A missing database means no run was ever recorded; opening in
	// non-create mode turns that into a clear error instead of an
	// empty comparison.
	db, err := database.Open(dbDir, database.Options{CreateIfNotExists: false, EnableWAL: true})
	if err != nil {
		return fmt.Errorf("no crawl history found (run 'sitescout crawl' first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	if listSites {
		return printSites(ctx, cmd, db)
	}

	list, err := cmd.Flags().GetBool("list")
	if err != nil {
		return err
	}
	if list {
		return printRuns(ctx, cmd, db, site)
	}

	jsonOut, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	return compareLatestRuns(ctx, cmd, db, site, jsonOut)
}

// printSites lists every site with recorded runs.
func printSites(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB) error {
	sites, err := db.ListSites(ctx)
	if err != nil {
		return err
	}
	if len(sites) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No recorded runs.")
		return nil
	}
	for _, site := range sites {
		fmt.Fprintln(cmd.OutOrStdout(), site)
	}
	return nil
}

// printRuns lists a site's recorded runs, newest first.
func printRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, site string) error {
	runs, err := db.ListRuns(ctx, site)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		return fmt.Errorf("no recorded runs for site %q", site)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Runs for %s:\n", site)
	for _, run := range runs {
		fmt.Fprintf(cmd.OutOrStdout(), "  #%d  %s  pages=%d pdfs=%d elapsed=%s\n",
			run.ID,
			run.StartedAt.Format(time.RFC3339),
			run.Pages,
			run.PDFs,
			run.Elapsed.Round(time.Millisecond),
		)
	}
	return nil
}

// titleChange records a URL present in both runs whose title moved.
type titleChange struct {
	URL      string `json:"url"`
	OldTitle string `json:"old_title"`
	NewTitle string `json:"new_title"`
}

// runComparison is the JSON shape of a two-run comparison.
type runComparison struct {
	Site        string                  `json:"site"`
	NewerRunID  int64                   `json:"newer_run_id"`
	OlderRunID  int64                   `json:"older_run_id"`
	Appeared    []model.DiscoveryRecord `json:"appeared"`
	Disappeared []model.DiscoveryRecord `json:"disappeared"`
	Retitled    []titleChange           `json:"retitled"`
}

// compareLatestRuns diffs the discoveries of the two most recent runs.
func compareLatestRuns(ctx context.Context, cmd *cobra.Command, db *database.HistoryDB, site string, jsonOut bool) error {
	runs, err := db.LatestRuns(ctx, site, 2)
	if err != nil {
		return err
	}
	if len(runs) < 2 {
		return fmt.Errorf("site %q has %d recorded run(s); comparison needs two", site, len(runs))
	}

	newer, older := runs[0], runs[1]

	newerRecords, err := db.RunDiscoveries(ctx, newer.ID)
	if err != nil {
		return err
	}
	olderRecords, err := db.RunDiscoveries(ctx, older.ID)
	if err != nil {
		return err
	}

	appeared, disappeared, retitled := diffRecords(olderRecords, newerRecords)

	if jsonOut {
		result := runComparison{
			Site:        site,
			NewerRunID:  newer.ID,
			OlderRunID:  older.ID,
			Appeared:    appeared,
			Disappeared: disappeared,
			Retitled:    retitled,
		}
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Comparing runs #%d (%s) -> #%d (%s) for %s\n\n",
		older.ID, older.StartedAt.Format("2006-01-02 15:04"),
		newer.ID, newer.StartedAt.Format("2006-01-02 15:04"),
		site,
	)

	fmt.Fprintf(out, "Appeared (%d):\n", len(appeared))
	for _, r := range appeared {
		fmt.Fprintf(out, "  + [%s] %s  %s\n", r.Type, r.URL, r.Title)
	}
	if len(appeared) == 0 {
		fmt.Fprintln(out, "  (none)")
	}

	fmt.Fprintf(out, "\nDisappeared (%d):\n", len(disappeared))
	for _, r := range disappeared {
		fmt.Fprintf(out, "  - [%s] %s  %s\n", r.Type, r.URL, r.Title)
	}
	if len(disappeared) == 0 {
		fmt.Fprintln(out, "  (none)")
	}

	fmt.Fprintf(out, "\nRetitled (%d):\n", len(retitled))
	for _, c := range retitled {
		fmt.Fprintf(out, "  ~ %s  %q -> %q\n", c.URL, c.OldTitle, c.NewTitle)
	}
	if len(retitled) == 0 {
		fmt.Fprintln(out, "  (none)")
	}

	return nil
}

// diffRecords splits two runs into records only in newer (appeared),
// records only in older (disappeared), and shared URLs whose title
// changed. Results are keyed by URL and keep each side's order.
func diffRecords(older, newer []model.DiscoveryRecord) (appeared, disappeared []model.DiscoveryRecord, retitled []titleChange) {
	olderByURL := make(map[string]model.DiscoveryRecord, len(older))
	for _, r := range older {
		olderByURL[r.URL] = r
	}
	newerSet := make(map[string]struct{}, len(newer))
	for _, r := range newer {
		newerSet[r.URL] = struct{}{}
	}

	appeared = []model.DiscoveryRecord{}
	retitled = []titleChange{}
	for _, r := range newer {
		old, ok := olderByURL[r.URL]
		if !ok {
			appeared = append(appeared, r)
			continue
		}
		if old.Title != r.Title {
			retitled = append(retitled, titleChange{URL: r.URL, OldTitle: old.Title, NewTitle: r.Title})
		}
	}
	disappeared = []model.DiscoveryRecord{}
	for _, r := range older {
		if _, ok := newerSet[r.URL]; !ok {
			disappeared = append(disappeared, r)
		}
	}
	return appeared, disappeared, retitled
}
