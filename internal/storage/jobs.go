package storage

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// SQLiteJobStore persists pending named jobs so an armed invocation
// survives a process restart.
type SQLiteJobStore struct {
	db *sql.DB
}

func NewSQLiteJobStore(db *sql.DB) *SQLiteJobStore {
	return &SQLiteJobStore{db: db}
}

func (s *SQLiteJobStore) SaveJob(ctx context.Context, name string, runAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (name, run_at) VALUES (?, ?)
		ON CONFLICT(name) DO UPDATE SET run_at = excluded.run_at`,
		name, runAt.UnixMilli(),
	)
	return err
}

// KeepJob inserts runAt unless name already has a row, and reports the
// run time on record.
func (s *SQLiteJobStore) KeepJob(ctx context.Context, name string, runAt time.Time) (time.Time, bool, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO scheduled_jobs (name, run_at) VALUES (?, ?)
		ON CONFLICT(name) DO NOTHING`,
		name, runAt.UnixMilli(),
	)
	if err != nil {
		return time.Time{}, false, err
	}
	if n, err := res.RowsAffected(); err == nil && n == 1 {
		return runAt, true, nil
	}

	var ms int64
	err = s.db.QueryRowContext(ctx, `SELECT run_at FROM scheduled_jobs WHERE name = ?`, name).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		// Deleted between the two statements.
		return runAt, true, s.SaveJob(ctx, name, runAt)
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return time.UnixMilli(ms).UTC(), false, nil
}

func (s *SQLiteJobStore) DeleteJob(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM scheduled_jobs WHERE name = ?`, name)
	return err
}

func (s *SQLiteJobStore) ListJobs(ctx context.Context) (map[string]time.Time, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, run_at FROM scheduled_jobs`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]time.Time)
	for rows.Next() {
		var name string
		var ms int64
		if err := rows.Scan(&name, &ms); err != nil {
			return nil, err
		}
		out[name] = time.UnixMilli(ms).UTC()
	}
	return out, rows.Err()
}
