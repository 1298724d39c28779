// Package quote fetches and caches the daily motivational quote attached to
// reminders.
package quote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sandeepkv93/nagd/internal/model"
)

var (
	ErrUpstreamStatus = errors.New("quote: unexpected upstream status")
	ErrEmptyQuote     = errors.New("quote: empty quote text")
)

var DefaultReferences = []string{
	"Philippians 4:13",
	"Joshua 1:9",
	"Isaiah 41:10",
	"Romans 8:31",
	"Psalm 46:1",
	"2 Timothy 1:7",
	"Proverbs 3:5",
}

const maxBodyBytes = 64 << 10

type Fetcher struct {
	Endpoint   string
	Client     *http.Client
	References []string
	pick       func(n int) int
}

func NewFetcher(endpoint string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Endpoint:   endpoint,
		Client:     &http.Client{Timeout: timeout},
		References: DefaultReferences,
		pick:       rand.IntN,
	}
}

type versePayload struct {
	Text      string `json:"text"`
	Reference string `json:"reference"`
}

// Fetch requests one verse from a random reference in the pool.
func (f *Fetcher) Fetch(ctx context.Context) (*model.Quote, error) {
	if len(f.References) == 0 {
		return nil, errors.New("quote: no references configured")
	}
	reference := f.References[f.pick(len(f.References))]
	endpoint := strings.TrimRight(f.Endpoint, "/") + "/" + url.PathEscape(reference)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build quote request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := f.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: %d", ErrUpstreamStatus, resp.StatusCode)
	}

	var payload versePayload
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode quote: %w", err)
	}
	text := strings.Join(strings.Fields(payload.Text), " ")
	if text == "" {
		return nil, ErrEmptyQuote
	}
	ref := strings.TrimSpace(payload.Reference)
	if ref == "" {
		ref = reference
	}
	return &model.Quote{Text: text, Reference: ref}, nil
}
