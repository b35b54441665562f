package database

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sitescout/sitescout/internal/model"
)

func testReport(site string, records []model.DiscoveryRecord) *model.CrawlReport {
	report := model.NewCrawlReport(site, []string{"https://" + site + "/"})
	report.Records = records
	report.StartedAt = time.Date(2026, 8, 25, 10, 0, 0, 0, time.UTC)
	report.Elapsed = 3 * time.Second
	return report
}

func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database and schema", func(t *testing.T) {
		t.Parallel()

		hdb, err := Open(t.TempDir(), DefaultOptions())
		if err != nil {
			t.Fatal(err)
		}
		defer hdb.Close()

		sites, err := hdb.ListSites(context.Background())
		if err != nil {
			t.Fatal(err)
		}
		if len(sites) != 0 {
			t.Errorf("new database lists sites: %v", sites)
		}
	})

	t.Run("missing database without create option fails", func(t *testing.T) {
		t.Parallel()

		opts := Options{CreateIfNotExists: false, EnableWAL: true}
		if _, err := Open(t.TempDir(), opts); err == nil {
			t.Fatal("expected error for missing database")
		}
	})
}

func TestSaveRunAndQuery(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer hdb.Close()
	ctx := context.Background()

	records := []model.DiscoveryRecord{
		{URL: "https://example.com/", Title: "Home", Description: "Front.", Depth: 1, Type: model.NodeTypePage},
		{URL: "https://example.com/a/", Title: "A", Description: "No Description", Depth: 2, Type: model.NodeTypePage},
		{URL: "https://example.com/m.pdf", Title: "Manual", Description: "No Description (PDF)", Depth: 2.5, Type: model.NodeTypePDF},
	}

	runID, err := hdb.SaveRun(ctx, testReport("example.com", records))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("run summary is stored", func(t *testing.T) {
		runs, err := hdb.ListRuns(ctx, "example.com")
		if err != nil {
			t.Fatal(err)
		}
		if len(runs) != 1 {
			t.Fatalf("got %d runs, want 1", len(runs))
		}
		run := runs[0]
		if run.ID != runID {
			t.Errorf("ID = %d, want %d", run.ID, runID)
		}
		if run.Pages != 2 || run.PDFs != 1 {
			t.Errorf("counts = %d pages / %d pdfs, want 2/1", run.Pages, run.PDFs)
		}
		if run.Elapsed != 3*time.Second {
			t.Errorf("Elapsed = %v, want 3s", run.Elapsed)
		}
	})

	t.Run("discoveries round trip in visit order", func(t *testing.T) {
		got, err := hdb.RunDiscoveries(ctx, runID)
		if err != nil {
			t.Fatal(err)
		}
		if len(got) != len(records) {
			t.Fatalf("got %d discoveries, want %d", len(got), len(records))
		}
		for i := range records {
			if got[i] != records[i] {
				t.Errorf("discovery %d = %+v, want %+v", i, got[i], records[i])
			}
		}
	})

	t.Run("unknown run id", func(t *testing.T) {
		if _, err := hdb.RunDiscoveries(ctx, runID+999); !errors.Is(err, ErrRunNotFound) {
			t.Errorf("error = %v, want ErrRunNotFound", err)
		}
	})

	t.Run("sites listing", func(t *testing.T) {
		sites, err := hdb.ListSites(ctx)
		if err != nil {
			t.Fatal(err)
		}
		if len(sites) != 1 || sites[0] != "example.com" {
			t.Errorf("sites = %v, want [example.com]", sites)
		}
	})
}

func TestLatestRuns(t *testing.T) {
	t.Parallel()

	hdb, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatal(err)
	}
	defer hdb.Close()
	ctx := context.Background()

	base := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	for i := range 3 {
		report := testReport("example.com", []model.DiscoveryRecord{
			{URL: "https://example.com/", Title: "Home", Description: "-", Depth: 1, Type: model.NodeTypePage},
		})
		report.StartedAt = base.Add(time.Duration(i) * 24 * time.Hour)
		if _, err := hdb.SaveRun(ctx, report); err != nil {
			t.Fatal(err)
		}
	}

	runs, err := hdb.LatestRuns(ctx, "example.com", 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if !runs[0].StartedAt.After(runs[1].StartedAt) {
		t.Errorf("runs not newest first: %v then %v", runs[0].StartedAt, runs[1].StartedAt)
	}
}
