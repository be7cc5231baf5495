package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "Updated: Jan 1\n,Fajr-فجر,Zuhar-ظہر\n\nDowntown\nAl-Noor,5:00,1:30\n"

func serveBody(status int, body string) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func fixedNow() time.Time {
	return time.UnixMilli(1700000000000)
}

func TestFetch_NoCandidates(t *testing.T) {
	f := NewFetcher(nil, Options{})
	doc, err := f.Fetch(context.Background())
	assert.Nil(t, doc)
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
}

func TestFetch_PrimarySuccess(t *testing.T) {
	var gotSecret, gotT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotSecret = r.URL.Query().Get("secret")
		gotT = r.URL.Query().Get("t")
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	f := NewFetcher([]Candidate{{Name: "primary", URL: srv.URL, Secret: "abc"}}, Options{Now: fixedNow})
	doc, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "primary", doc.Source)
	assert.Equal(t, "abc", gotSecret)
	assert.Equal(t, "1700000000000", gotT)
	assert.Equal(t, fixedNow(), doc.FetchedAt)
	require.Len(t, doc.Grid, 6)
	assert.Equal(t, []string{""}, doc.Grid[2])
}

func TestFetch_FallbackOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		primary *httptest.Server
		wantErr error
	}{
		{"server error", serveBody(http.StatusInternalServerError, "boom"), ErrTransport},
		{"not found", serveBody(http.StatusNotFound, ""), ErrTransport},
		{"rejection body", serveBody(http.StatusOK, "  Error: Invalid secret\nat line 3"), ErrUpstreamRejection},
		{"malformed csv", serveBody(http.StatusOK, "a,\"broken\n"), ErrTokenization},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer tt.primary.Close()
			fallback := serveBody(http.StatusOK, sampleCSV)
			defer fallback.Close()

			f := NewFetcher([]Candidate{
				{Name: "primary", URL: tt.primary.URL, Secret: "x"},
				{Name: "fallback", URL: fallback.URL},
			}, Options{})

			doc, err := f.Fetch(context.Background())
			require.NoError(t, err)
			assert.Equal(t, "fallback", doc.Source)

			// same failure without a fallback
			only := NewFetcher([]Candidate{{Name: "primary", URL: tt.primary.URL}}, Options{})
			_, err = only.Fetch(context.Background())
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v", err)

			var attempt *AttemptError
			require.True(t, errors.As(err, &attempt))
			assert.Equal(t, "primary", attempt.Source)
		})
	}
}

func TestFetch_AllFail(t *testing.T) {
	rejecting := serveBody(http.StatusOK, "Error: Unauthorized")
	defer rejecting.Close()
	down := serveBody(http.StatusBadGateway, "")
	defer down.Close()

	f := NewFetcher([]Candidate{
		{Name: "secure", URL: rejecting.URL},
		{Name: "published", URL: down.URL},
	}, Options{})

	_, err := f.Fetch(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUpstreamRejection))
	assert.True(t, errors.Is(err, ErrTransport))
	assert.Contains(t, err.Error(), "Error: Unauthorized")
	assert.Contains(t, err.Error(), "502")
}

func TestFetch_TransportError(t *testing.T) {
	srv := serveBody(http.StatusOK, sampleCSV)
	addr := srv.URL
	srv.Close() // nothing listens any more

	f := NewFetcher([]Candidate{{Name: "gone", URL: addr}}, Options{})
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestFetch_BadCandidateURL(t *testing.T) {
	f := NewFetcher([]Candidate{{Name: "bad", URL: "not a url"}}, Options{})
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrConfiguration), "got %v", err)
}

func TestFetch_BodyTooLarge(t *testing.T) {
	srv := serveBody(http.StatusOK, sampleCSV)
	defer srv.Close()

	f := NewFetcher([]Candidate{{Name: "big", URL: srv.URL}}, Options{MaxBodyBytes: 8})
	_, err := f.Fetch(context.Background())
	assert.True(t, errors.Is(err, ErrTransport), "got %v", err)
}

func TestFetch_StripsBOM(t *testing.T) {
	srv := serveBody(http.StatusOK, "\xEF\xBB\xBFUpdated\n,F-f\nA,1\n")
	defer srv.Close()

	doc, err := NewFetcher([]Candidate{{Name: "bom", URL: srv.URL}}, Options{}).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Updated", doc.Grid[0][0])
}

func TestFetch_CancelledContextStops(t *testing.T) {
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewFetcher([]Candidate{{Name: "a", URL: srv.URL}, {Name: "b", URL: srv.URL}}, Options{})
	_, err := f.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, int32(0), hits.Load())
}

func TestFetch_CacheBusterChangesPerRequest(t *testing.T) {
	var seen []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = append(seen, r.URL.Query().Get(CacheBustParam))
		_, _ = w.Write([]byte(sampleCSV))
	}))
	defer srv.Close()

	tick := int64(1000)
	f := NewFetcher([]Candidate{{Name: "a", URL: srv.URL}}, Options{Now: func() time.Time {
		tick++
		return time.UnixMilli(tick)
	}})

	for i := 0; i < 2; i++ {
		_, err := f.Fetch(context.Background())
		require.NoError(t, err)
	}
	require.Len(t, seen, 2)
	assert.NotEqual(t, seen[0], seen[1])
}
