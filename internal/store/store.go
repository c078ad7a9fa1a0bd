// Package store archives rendered reports in SQLite. The archive is
// written only on explicit export and never feeds the aggregator cache.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// DefaultListLimit caps List when the filter sets no limit.
const DefaultListLimit = 50

// timeLayout is fixed width so collected_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrEmptyRun is returned by InsertRun when there is nothing to archive.
var ErrEmptyRun = errors.New("no reports to archive")

// Report is one archived category report.
type Report struct {
	ID          int64
	RunID       string
	Hostname    string
	Category    string
	Report      string
	Failed      bool
	CollectedAt time.Time
}

// ListFilter holds optional query parameters for listing reports.
type ListFilter struct {
	Category string
	RunID    string
	Limit    int
}

// Store provides archive operations over a single SQLite file.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// New opens the SQLite database at path and runs migrations.
func New(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(1)

	if _, err := db.Exec(createTableSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, now: time.Now}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// InsertRun stores reports as one export run under a fresh run id. Each
// report keeps its own CollectedAt; a zero value is stamped with now.
func (s *Store) InsertRun(ctx context.Context, reports []Report) (string, error) {
	if len(reports) == 0 {
		return "", ErrEmptyRun
	}

	runID := uuid.NewString()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin export: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO reports (run_id, hostname, category, report, failed, collected_at)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return "", fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range reports {
		at := r.CollectedAt
		if at.IsZero() {
			at = s.now()
		}
		if _, err := stmt.ExecContext(ctx,
			runID,
			r.Hostname,
			r.Category,
			r.Report,
			r.Failed,
			at.UTC().Format(timeLayout),
		); err != nil {
			return "", fmt.Errorf("insert %s report: %w", r.Category, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit export: %w", err)
	}
	return runID, nil
}

// List returns archived reports matching f, newest first.
func (s *Store) List(ctx context.Context, f ListFilter) ([]Report, error) {
	where, args := buildWhere(f)

	limit := f.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}

	query := `SELECT id, run_id, hostname, category, report, failed, collected_at
		FROM reports` + where + ` ORDER BY collected_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	defer rows.Close()

	var out []Report
	for rows.Next() {
		var r Report
		var collectedAt string
		if err := rows.Scan(&r.ID, &r.RunID, &r.Hostname, &r.Category, &r.Report, &r.Failed, &collectedAt); err != nil {
			return nil, fmt.Errorf("scan report: %w", err)
		}
		r.CollectedAt, _ = time.Parse(timeLayout, collectedAt)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Purge deletes reports collected more than olderThan ago.
func (s *Store) Purge(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := s.now().UTC().Add(-olderThan).Format(timeLayout)
	result, err := s.db.ExecContext(ctx, `DELETE FROM reports WHERE collected_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge reports: %w", err)
	}
	return result.RowsAffected()
}

func buildWhere(f ListFilter) (string, []any) {
	var conditions []string
	var args []any

	if f.Category != "" {
		conditions = append(conditions, "category = ?")
		args = append(args, f.Category)
	}
	if f.RunID != "" {
		conditions = append(conditions, "run_id = ?")
		args = append(args, f.RunID)
	}

	if len(conditions) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conditions, " AND "), args
}
