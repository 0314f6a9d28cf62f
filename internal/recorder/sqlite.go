package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"LiquiMind/internal/model"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists historical data to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so dashboards can read while the schedulers write.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS activity_cycles (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			cycle_id    TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			wallets     INTEGER,
			submitted   INTEGER,
			skipped     INTEGER,
			failed      INTEGER,
			note        TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_cycles_ts ON activity_cycles(started_at)`,

		`CREATE TABLE IF NOT EXISTS reward_submissions (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp  INTEGER NOT NULL,
			cycle_id   TEXT,
			wallet     TEXT NOT NULL,
			activity   TEXT NOT NULL,
			count      TEXT,
			tier       INTEGER,
			content_id TEXT,
			status     TEXT NOT NULL,
			error      TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_ts ON reward_submissions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_wallet ON reward_submissions(wallet, activity, status)`,

		`CREATE TABLE IF NOT EXISTS retrain_runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id      TEXT NOT NULL,
			started_at  INTEGER NOT NULL,
			finished_at INTEGER NOT NULL,
			samples     INTEGER,
			version     INTEGER,
			loss        REAL,
			status      TEXT NOT NULL,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_retrain_ts ON retrain_runs(started_at)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func unixOrNow(t time.Time) int64 {
	if t.IsZero() {
		return time.Now().Unix()
	}
	return t.Unix()
}

func (r *SQLiteRecorder) RecordCycle(evt *CycleEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO activity_cycles
		(cycle_id, started_at, finished_at, wallets, submitted, skipped, failed, note)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.ID, unixOrNow(evt.StartedAt), unixOrNow(evt.FinishedAt),
		evt.Wallets, evt.Submitted, evt.Skipped, evt.Failed, evt.Note,
	)
	return err
}

func (r *SQLiteRecorder) RecordSubmission(evt *SubmissionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	// count is stored as text, u64 volumes overflow SQLite integers.
	_, err := r.db.Exec(`INSERT INTO reward_submissions
		(timestamp, cycle_id, wallet, activity, count, tier, content_id, status, error)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		unixOrNow(evt.At), evt.CycleID, evt.Wallet, string(evt.Activity),
		strconv.FormatUint(evt.Count, 10), int(evt.Tier), evt.ContentID,
		evt.Status, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) RecordRetrain(evt *RetrainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO retrain_runs
		(run_id, started_at, finished_at, samples, version, loss, status, error)
		VALUES (?,?,?,?,?,?,?,?)`,
		evt.RunID, unixOrNow(evt.StartedAt), unixOrNow(evt.FinishedAt),
		evt.Samples, evt.Version, evt.Loss, evt.Status, evt.Error,
	)
	return err
}

func (r *SQLiteRecorder) LastSubmission(wallet string, activity model.Activity) (time.Time, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var ts sql.NullInt64
	err := r.db.QueryRow(`SELECT MAX(timestamp) FROM reward_submissions
		WHERE wallet = ? AND activity = ? AND status = ?`,
		wallet, string(activity), StatusCommitted,
	).Scan(&ts)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("last submission: %w", err)
	}
	if !ts.Valid {
		return time.Time{}, false, nil
	}
	return time.Unix(ts.Int64, 0), true, nil
}

func (r *SQLiteRecorder) Summary(since time.Time) (*Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := &Summary{Since: since}
	from := since.Unix()

	if err := r.db.QueryRow(`SELECT COUNT(*) FROM activity_cycles WHERE started_at >= ?`, from).
		Scan(&s.Cycles); err != nil {
		return nil, fmt.Errorf("count cycles: %w", err)
	}

	rows, err := r.db.Query(`SELECT status, COUNT(*) FROM reward_submissions
		WHERE timestamp >= ? GROUP BY status`, from)
	if err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan submissions: %w", err)
		}
		switch status {
		case StatusCommitted:
			s.Committed = n
		case StatusFailed:
			s.Failed = n
		case StatusSkipped:
			s.Skipped = n
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("count submissions: %w", err)
	}

	if err := r.db.QueryRow(`SELECT COUNT(*), COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0)
		FROM retrain_runs WHERE started_at >= ?`, RetrainFailed, from).
		Scan(&s.Retrains, &s.RetrainFailed); err != nil {
		return nil, fmt.Errorf("count retrains: %w", err)
	}

	var version, finished sql.NullInt64
	err = r.db.QueryRow(`SELECT version, finished_at FROM retrain_runs
		WHERE status = ? ORDER BY finished_at DESC, id DESC LIMIT 1`, RetrainOK).
		Scan(&version, &finished)
	switch {
	case err == sql.ErrNoRows:
	case err != nil:
		return nil, fmt.Errorf("latest retrain: %w", err)
	default:
		s.LatestVersion = int(version.Int64)
		s.LastRetrainAt = time.Unix(finished.Int64, 0)
	}
	return s, nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
