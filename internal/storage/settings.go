package storage

import (
	"context"
	"database/sql"
	"errors"
	"strconv"

	"github.com/sandeepkv93/nagd/internal/model"
)

const (
	keyThemeMode      = "theme_mode"
	keyShowQuotes     = "show_quotes"
	keyQuoteText      = "quote_text"
	keyQuoteReference = "quote_reference"
	keyQuoteEpochDay  = "quote_epoch_day"
)

func (r *SQLiteRepository) ThemeMode(ctx context.Context) (model.ThemeMode, error) {
	raw, _, err := r.getSetting(ctx, keyThemeMode)
	if err != nil {
		return model.ThemeSystem, err
	}
	return model.ParseThemeMode(raw), nil
}

func (r *SQLiteRepository) SetThemeMode(ctx context.Context, mode model.ThemeMode) error {
	return r.putSettings(ctx, map[string]string{keyThemeMode: string(model.ParseThemeMode(string(mode)))})
}

func (r *SQLiteRepository) QuotesEnabled(ctx context.Context) (bool, error) {
	raw, ok, err := r.getSetting(ctx, keyShowQuotes)
	if err != nil || !ok {
		return false, err
	}
	enabled, parseErr := strconv.ParseBool(raw)
	if parseErr != nil {
		return false, nil
	}
	return enabled, nil
}

func (r *SQLiteRepository) SetQuotesEnabled(ctx context.Context, enabled bool) error {
	return r.putSettings(ctx, map[string]string{keyShowQuotes: strconv.FormatBool(enabled)})
}

func (r *SQLiteRepository) CachedQuote(ctx context.Context) (CachedQuote, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT key, value FROM settings WHERE key IN (?, ?, ?)`,
		keyQuoteText, keyQuoteReference, keyQuoteEpochDay)
	if err != nil {
		return CachedQuote{}, err
	}
	defer rows.Close()

	var out CachedQuote
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return CachedQuote{}, err
		}
		switch key {
		case keyQuoteText:
			out.Text = value
		case keyQuoteReference:
			out.Reference = value
		case keyQuoteEpochDay:
			if day, parseErr := strconv.ParseInt(value, 10, 64); parseErr == nil {
				out.EpochDay = day
			}
		}
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) SaveQuote(ctx context.Context, quote CachedQuote) error {
	return r.putSettings(ctx, map[string]string{
		keyQuoteText:      quote.Text,
		keyQuoteReference: quote.Reference,
		keyQuoteEpochDay:  strconv.FormatInt(quote.EpochDay, 10),
	})
}

func (r *SQLiteRepository) getSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := r.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", false, nil
		}
		return "", false, err
	}
	return value, true, nil
}

// putSettings writes all values in one transaction.
func (r *SQLiteRepository) putSettings(ctx context.Context, values map[string]string) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for key, value := range values {
		if _, err = tx.ExecContext(ctx, `
			INSERT INTO settings (key, value) VALUES (?, ?)
			ON CONFLICT(key) DO UPDATE SET value = excluded.value`, key, value); err != nil {
			return err
		}
	}
	return tx.Commit()
}
