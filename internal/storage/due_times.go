package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"
)

const dueKeyPrefix = "task_due_"

// SQLiteDueTimeStore keeps task_due_<id> -> epoch milliseconds in the
// reminder_schedule table, apart from the settings key space.
type SQLiteDueTimeStore struct {
	db *sql.DB
}

func NewSQLiteDueTimeStore(db *sql.DB) *SQLiteDueTimeStore {
	return &SQLiteDueTimeStore{db: db}
}

func DueKey(taskID int64) string {
	return dueKeyPrefix + strconv.FormatInt(taskID, 10)
}

// ParseDueKey reports false for keys outside the prefix or with a
// non-numeric suffix.
func ParseDueKey(key string) (int64, bool) {
	if !strings.HasPrefix(key, dueKeyPrefix) {
		return 0, false
	}
	id, err := strconv.ParseInt(strings.TrimPrefix(key, dueKeyPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// Get reports ok=false when no entry exists or the stored value is not a
// positive timestamp.
func (s *SQLiteDueTimeStore) Get(ctx context.Context, taskID int64) (time.Time, bool, error) {
	var ms int64
	err := s.db.QueryRowContext(ctx, `SELECT due_at FROM reminder_schedule WHERE key = ?`, DueKey(taskID)).Scan(&ms)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, false, nil
		}
		return time.Time{}, false, err
	}
	if ms <= 0 {
		return time.Time{}, false, nil
	}
	return time.UnixMilli(ms).UTC(), true, nil
}

func (s *SQLiteDueTimeStore) Set(ctx context.Context, taskID int64, dueAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reminder_schedule (key, due_at) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET due_at = excluded.due_at`,
		DueKey(taskID), dueAt.UnixMilli(),
	)
	return err
}

func (s *SQLiteDueTimeStore) Remove(ctx context.Context, taskID int64) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM reminder_schedule WHERE key = ?`, DueKey(taskID))
	return err
}

// RemoveWhere deletes every entry whose task id satisfies pred. Entries with
// a malformed key are always removed.
func (s *SQLiteDueTimeStore) RemoveWhere(ctx context.Context, pred func(taskID int64) bool) (int, error) {
	keys, err := s.rawKeys(ctx)
	if err != nil {
		return 0, err
	}
	doomed := make([]string, 0)
	for _, key := range keys {
		id, ok := ParseDueKey(key)
		if !ok || pred(id) {
			doomed = append(doomed, key)
		}
	}
	if len(doomed) == 0 {
		return 0, nil
	}
	return len(doomed), s.deleteKeys(ctx, doomed)
}

func (s *SQLiteDueTimeStore) Keys(ctx context.Context) ([]int64, error) {
	keys, err := s.rawKeys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]int64, 0, len(keys))
	for _, key := range keys {
		if id, ok := ParseDueKey(key); ok {
			out = append(out, id)
		}
	}
	return out, nil
}

func (s *SQLiteDueTimeStore) Clear(ctx context.Context) (int, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM reminder_schedule WHERE key LIKE ? ESCAPE '\'`, likePrefix(dueKeyPrefix))
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteDueTimeStore) rawKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key FROM reminder_schedule WHERE key LIKE ? ESCAPE '\'`, likePrefix(dueKeyPrefix))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		out = append(out, key)
	}
	return out, rows.Err()
}

func (s *SQLiteDueTimeStore) deleteKeys(ctx context.Context, keys []string) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, key := range keys {
		if _, err = tx.ExecContext(ctx, `DELETE FROM reminder_schedule WHERE key = ?`, key); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func likePrefix(prefix string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(prefix) + "%"
}
