package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/phuslu/log"
	_ "modernc.org/sqlite"

	"Prisme/internal/model"
)

// SQLiteRecorder persists the audit trail to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets the API read while the scheduler writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Info().Str("path", dbPath).Msg("sqlite recorder opened")
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id           TEXT PRIMARY KEY,
			timestamp        INTEGER NOT NULL,
			horizon          TEXT,
			etf_count        INTEGER,
			excluded_count   INTEGER,
			overlap          INTEGER,
			comparison_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS snapshots (
			id                INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id            TEXT NOT NULL REFERENCES runs(run_id),
			etf               TEXT NOT NULL,
			points            INTEGER,
			first_date        INTEGER,
			last_date         INTEGER,
			last_close        REAL,
			mean_return       REAL,
			volatility        REAL,
			cumulative_return REAL,
			max_drawdown      REAL,
			ma200             REAL,
			position_52w      REAL,
			profile           TEXT,
			risk_score        REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_run ON snapshots(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_snapshots_etf ON snapshots(etf)`,

		`CREATE TABLE IF NOT EXISTS rankings (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL REFERENCES runs(run_id),
			rank        INTEGER,
			etf         TEXT NOT NULL,
			mean_return REAL,
			volatility  REAL,
			score       REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_rankings_run ON rankings(run_id)`,

		`CREATE TABLE IF NOT EXISTS exclusions (
			id     INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL REFERENCES runs(run_id),
			etf    TEXT NOT NULL,
			reason TEXT
		)`,

		`CREATE TABLE IF NOT EXISTS etl_runs (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			source    TEXT,
			period    TEXT,
			written   TEXT,
			failed    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_etl_ts ON etl_runs(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

// RecordRun stores the report in a single transaction.
func (r *SQLiteRecorder) RecordRun(report *model.Report) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	overlap := 0
	if report.Comparison != nil {
		overlap = report.Comparison.Overlap
	}
	if _, err := tx.Exec(`INSERT INTO runs
		(run_id, timestamp, horizon, etf_count, excluded_count, overlap, comparison_error)
		VALUES (?,?,?,?,?,?,?)`,
		report.RunID, report.GeneratedAt.Unix(), string(report.Horizon),
		len(report.Snapshots), len(report.Excluded), overlap, report.ComparisonError,
	); err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	for _, s := range report.Snapshots {
		a, _ := report.Assessment(s.ETF)
		if _, err := tx.Exec(`INSERT INTO snapshots
			(run_id, etf, points, first_date, last_date, last_close,
			 mean_return, volatility, cumulative_return, max_drawdown,
			 ma200, position_52w, profile, risk_score)
			VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
			report.RunID, s.ETF, s.Points, s.From.Unix(), s.To.Unix(), s.LastClose,
			s.MeanReturn, s.Volatility, s.CumulativeReturn, s.MaxDrawdown,
			s.MA200, s.Position52w, string(a.Profile), a.Score,
		); err != nil {
			return fmt.Errorf("insert snapshot %s: %w", s.ETF, err)
		}
	}

	if report.Comparison != nil {
		for _, e := range report.Comparison.Ranking {
			if _, err := tx.Exec(`INSERT INTO rankings
				(run_id, rank, etf, mean_return, volatility, score)
				VALUES (?,?,?,?,?,?)`,
				report.RunID, e.Rank, e.ETF, e.MeanReturn, e.Volatility, e.Score,
			); err != nil {
				return fmt.Errorf("insert ranking %s: %w", e.ETF, err)
			}
		}
	}

	for _, etf := range sortedKeys(report.Excluded) {
		if _, err := tx.Exec(`INSERT INTO exclusions (run_id, etf, reason) VALUES (?,?,?)`,
			report.RunID, etf, report.Excluded[etf],
		); err != nil {
			return fmt.Errorf("insert exclusion %s: %w", etf, err)
		}
	}

	return tx.Commit()
}

func (r *SQLiteRecorder) RecordETL(evt *ETLEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	failed := make([]string, 0, len(evt.Failed))
	for _, etf := range sortedKeys(evt.Failed) {
		failed = append(failed, etf+": "+evt.Failed[etf])
	}
	_, err := r.db.Exec(`INSERT INTO etl_runs
		(timestamp, source, period, written, failed)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), evt.Source, evt.Period,
		strings.Join(evt.Written, ","), strings.Join(failed, "\n"),
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Info().Msg("closing sqlite recorder")
	return r.db.Close()
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
