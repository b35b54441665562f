package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/sitescout/sitescout/internal/model"
)

// ErrRunNotFound is returned when a run ID does not exist.
var ErrRunNotFound = errors.New("run not found")

// HistoryDB provides SQLite-based storage for crawl run history.
//
// Design decision: We use one database file for all sites rather than
// one per site because:
//  1. Cross-site listing is a single query
//  2. Backup and cleanup handle one file
//  3. SQLite happily holds all of it
type HistoryDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures HistoryDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a HistoryDB in dbDir. With CreateIfNotExists
// unset, a missing database is an error instead of a silently created
// empty one; the compare command uses that to tell "no history" apart
// from "empty history".
func Open(dbDir string, opts Options) (*HistoryDB, error) {
	dbPath := filepath.Join(dbDir, "sitescout.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("history database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	// mode=rw prevents the driver from creating a new file behind the
	// existence check above.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite supports one writer; a larger pool only adds lock churn.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	hdb := &HistoryDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	if err := hdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create tables: %w", err)
	}

	return hdb, nil
}

// Close closes the database connection.
func (hdb *HistoryDB) Close() error {
	return hdb.db.Close()
}

// createTables creates the schema if it doesn't exist.
func (hdb *HistoryDB) createTables() error {
	schema := `
	-- One row per completed crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		site TEXT NOT NULL,
		started_at DATETIME NOT NULL,
		elapsed_ms INTEGER NOT NULL DEFAULT 0,
		pages INTEGER NOT NULL DEFAULT 0,
		pdfs INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_site ON runs(site);
	CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

	-- One row per discovery within a run
	CREATE TABLE IF NOT EXISTS discoveries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		url TEXT NOT NULL,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		depth REAL NOT NULL,
		type TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_discoveries_run ON discoveries(run_id);
	CREATE INDEX IF NOT EXISTS idx_discoveries_url ON discoveries(url);
	`

	_, err := hdb.db.ExecContext(context.Background(), schema)
	return err
}

// Run is the stored summary of one crawl run.
type Run struct {
	ID        int64
	Site      string
	StartedAt time.Time
	Elapsed   time.Duration
	Pages     int
	PDFs      int
}

// SaveRun stores a completed crawl report and its discoveries in one
// transaction, returning the new run ID.
func (hdb *HistoryDB) SaveRun(ctx context.Context, report *model.CrawlReport) (int64, error) {
	tx, err := hdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // rollback after commit is a no-op

	result, err := tx.ExecContext(ctx,
		`INSERT INTO runs (site, started_at, elapsed_ms, pages, pdfs) VALUES (?, ?, ?, ?, ?)`,
		report.Site,
		report.StartedAt.UTC().Format(time.RFC3339),
		report.Elapsed.Milliseconds(),
		report.PageCount(),
		report.PDFCount(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	runID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("read run id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO discoveries (run_id, url, title, description, depth, type) VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("prepare discovery insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range report.Records {
		if _, err := stmt.ExecContext(ctx, runID, r.URL, r.Title, r.Description, r.Depth, r.Type.String()); err != nil {
			return 0, fmt.Errorf("insert discovery %s: %w", r.URL, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// ListSites returns the distinct sites with stored runs, sorted.
func (hdb *HistoryDB) ListSites(ctx context.Context) ([]string, error) {
	rows, err := hdb.db.QueryContext(ctx, `SELECT DISTINCT site FROM runs ORDER BY site`)
	if err != nil {
		return nil, fmt.Errorf("list sites: %w", err)
	}
	defer rows.Close()

	var sites []string
	for rows.Next() {
		var site string
		if err := rows.Scan(&site); err != nil {
			return nil, fmt.Errorf("scan site: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

// ListRuns returns a site's runs, newest first.
func (hdb *HistoryDB) ListRuns(ctx context.Context, site string) ([]Run, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT id, site, started_at, elapsed_ms, pages, pdfs
		 FROM runs WHERE site = ? ORDER BY started_at DESC, id DESC`, site)
	if err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", site, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRuns returns up to n of a site's most recent runs, newest
// first.
func (hdb *HistoryDB) LatestRuns(ctx context.Context, site string, n int) ([]Run, error) {
	rows, err := hdb.db.QueryContext(ctx,
		`SELECT id, site, started_at, elapsed_ms, pages, pdfs
		 FROM runs WHERE site = ? ORDER BY started_at DESC, id DESC LIMIT ?`, site, n)
	if err != nil {
		return nil, fmt.Errorf("latest runs for %s: %w", site, err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// RunDiscoveries returns the discovery records of one run in insert
// order, which is the original visit order.
func (hdb *HistoryDB) RunDiscoveries(ctx context.Context, runID int64) ([]model.DiscoveryRecord, error) {
	var exists bool
	if err := hdb.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM runs WHERE id = ?)`, runID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("check run %d: %w", runID, err)
	}
	if !exists {
		return nil, fmt.Errorf("run %d: %w", runID, ErrRunNotFound)
	}

	rows, err := hdb.db.QueryContext(ctx,
		`SELECT url, title, description, depth, type
		 FROM discoveries WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("discoveries of run %d: %w", runID, err)
	}
	defer rows.Close()

	records := []model.DiscoveryRecord{}
	for rows.Next() {
		var r model.DiscoveryRecord
		var typ string
		if err := rows.Scan(&r.URL, &r.Title, &r.Description, &r.Depth, &typ); err != nil {
			return nil, fmt.Errorf("scan discovery: %w", err)
		}
		nodeType, err := model.ParseNodeType(typ)
		if err != nil {
			return nil, fmt.Errorf("run %d, url %s: %w", runID, r.URL, err)
		}
		r.Type = nodeType
		records = append(records, r)
	}
	return records, rows.Err()
}

// scanRun reads one runs row.
func scanRun(rows *sql.Rows) (Run, error) {
	var run Run
	var startedAt string
	var elapsedMS int64
	if err := rows.Scan(&run.ID, &run.Site, &startedAt, &elapsedMS, &run.Pages, &run.PDFs); err != nil {
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	run.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	run.StartedAt = parseTimestamp(startedAt)
	return run, nil
}

// parseTimestamp handles the timestamp formats SQLite hands back
// depending on how the value was stored.
func parseTimestamp(s string) time.Time {
	for _, layout := range []string{
		time.RFC3339,
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z07:00",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
