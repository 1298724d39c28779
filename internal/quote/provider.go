package quote

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sandeepkv93/nagd/internal/model"
	"github.com/sandeepkv93/nagd/internal/storage"
)

type Store interface {
	QuotesEnabled(ctx context.Context) (bool, error)
	CachedQuote(ctx context.Context) (storage.CachedQuote, error)
	SaveQuote(ctx context.Context, quote storage.CachedQuote) error
}

type Source interface {
	Fetch(ctx context.Context) (*model.Quote, error)
}

// Provider serves the cached quote and refreshes it at most once per local
// calendar day. Refresh failures are logged and otherwise ignored.
type Provider struct {
	store   Store
	source  Source
	timeout time.Duration
	now     func() time.Time
	logger  *slog.Logger
	group   singleflight.Group
}

func NewProvider(store Store, source Source, timeout time.Duration, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	return &Provider{
		store:   store,
		source:  source,
		timeout: timeout,
		now:     time.Now,
		logger:  logger,
	}
}

// EpochDay is the number of days since 1970-01-01 for t's local date.
func EpochDay(t time.Time) int64 {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400
}

func (p *Provider) QuotesEnabled(ctx context.Context) (bool, error) {
	return p.store.QuotesEnabled(ctx)
}

func (p *Provider) CachedQuote(ctx context.Context) (*model.Quote, error) {
	cached, err := p.store.CachedQuote(ctx)
	if err != nil {
		return nil, err
	}
	return cached.Quote(), nil
}

// RefreshIfStale fetches a new quote when quotes are enabled and the cached
// one is missing or from an earlier day, or unconditionally when force is
// set. It reports whether a new quote was stored. Concurrent calls with the
// same force flag share one fetch.
func (p *Provider) RefreshIfStale(ctx context.Context, force bool) bool {
	v, _, _ := p.group.Do(strconv.FormatBool(force), func() (any, error) {
		return p.refresh(ctx, force), nil
	})
	return v.(bool)
}

func (p *Provider) refresh(ctx context.Context, force bool) bool {
	enabled, err := p.store.QuotesEnabled(ctx)
	if err != nil {
		p.logger.Warn("read quote setting failed", "error", err)
		return false
	}
	if !enabled {
		return false
	}

	today := EpochDay(p.now())
	cached, err := p.store.CachedQuote(ctx)
	if err != nil {
		p.logger.Warn("read cached quote failed", "error", err)
		return false
	}
	fresh := cached.EpochDay == today && cached.Quote() != nil
	if fresh && !force {
		return false
	}

	fetchCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}
	q, err := p.source.Fetch(fetchCtx)
	if err != nil {
		p.logger.Debug("quote refresh skipped", "error", err)
		return false
	}
	if err := p.store.SaveQuote(ctx, storage.CachedQuote{Text: q.Text, Reference: q.Reference, EpochDay: today}); err != nil {
		p.logger.Warn("store quote failed", "error", err)
		return false
	}
	return true
}
