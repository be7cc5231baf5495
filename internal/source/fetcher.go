package source

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/JonMunkholm/prayerboard/internal/logging"
	"github.com/JonMunkholm/prayerboard/internal/schedule"
)

// Document is a successfully downloaded and tokenized schedule.
type Document struct {
	Source    string
	Raw       []byte
	Grid      schedule.RawGrid
	FetchedAt time.Time
}

// Options configures a Fetcher. Zero values fall back to defaults.
type Options struct {
	// Client performs the requests (default: a client with Timeout).
	Client *http.Client

	// Timeout applies to the default client only. Zero leaves the
	// transport defaults in place.
	Timeout time.Duration

	// MaxBodyBytes caps each response body (default: DefaultMaxBodyBytes).
	MaxBodyBytes int64

	// Now supplies the cache-busting timestamp (default: time.Now).
	Now func() time.Time
}

// Fetcher downloads the schedule CSV from an ordered list of candidates.
type Fetcher struct {
	candidates []Candidate
	client     *http.Client
	maxBody    int64
	now        func() time.Time
}

// NewFetcher creates a Fetcher over candidates, tried in order.
func NewFetcher(candidates []Candidate, opts Options) *Fetcher {
	client := opts.Client
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	maxBody := opts.MaxBodyBytes
	if maxBody <= 0 {
		maxBody = DefaultMaxBodyBytes
	}

	return &Fetcher{
		candidates: append([]Candidate(nil), candidates...),
		client:     client,
		maxBody:    maxBody,
		now:        now,
	}
}

// Candidates returns a copy of the configured source list.
func (f *Fetcher) Candidates() []Candidate {
	return append([]Candidate(nil), f.candidates...)
}

// Fetch tries each candidate until one returns a body that is neither a
// rejection nor malformed CSV.
//
// With no candidates it fails with ErrConfiguration without touching the
// network. When every candidate fails, the returned error joins one
// AttemptError per candidate so errors.Is matches any of the failure kinds.
func (f *Fetcher) Fetch(ctx context.Context) (*Document, error) {
	logger := logging.FromContext(ctx)

	if len(f.candidates) == 0 {
		return nil, fmt.Errorf("%w: no source url configured", ErrConfiguration)
	}

	var errs []error
	for i, c := range f.candidates {
		start := time.Now()
		doc, err := f.fetchOne(ctx, c)
		if err == nil {
			logger.Info("schedule source fetched",
				"source", c.Name,
				"attempt", i+1,
				"bytes", len(doc.Raw),
				"rows", len(doc.Grid),
				"duration_ms", time.Since(start).Milliseconds(),
			)
			return doc, nil
		}

		logger.Warn("schedule source failed",
			"source", c.Name,
			"attempt", i+1,
			"error", err,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		errs = append(errs, &AttemptError{Source: c.Name, Err: err})

		if ctx.Err() != nil {
			break
		}
	}

	return nil, errors.Join(errs...)
}

// fetchOne performs a single attempt against c.
func (f *Fetcher) fetchOne(ctx context.Context, c Candidate) (*Document, error) {
	fetchedAt := f.now()

	target, err := c.RequestURL(fetchedAt)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfiguration, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: build request: %w", ErrConfiguration, err)
	}
	req.Header.Set("Accept", "text/csv, text/plain;q=0.9, */*;q=0.1")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: unexpected status %s", ErrTransport, resp.Status)
	}

	body, err := readBody(resp.Body, f.maxBody)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTransport, err)
	}

	if msg, ok := rejection(body); ok {
		return nil, fmt.Errorf("%w: %s", ErrUpstreamRejection, msg)
	}

	grid, err := Tokenize(body)
	if err != nil {
		return nil, err
	}

	return &Document{
		Source:    c.Name,
		Raw:       body,
		Grid:      grid,
		FetchedAt: fetchedAt,
	}, nil
}
