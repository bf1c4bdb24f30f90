//go:build integration

package integration

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqwal-app/aqwal/internal/adapters/clients"
	"github.com/aqwal-app/aqwal/internal/adapters/clients/acl"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/platform/config"
)

// testAdapterConfig returns a config suitable for adapter integration testing.
func testAdapterConfig(baseURL string) *clients.Config {
	return &clients.Config{
		ServiceName: "quote-table",
		BaseURL:     baseURL,
		Timeout:     5 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     2,
			InitialInterval: 10 * time.Millisecond,
			MaxInterval:     50 * time.Millisecond,
			Multiplier:      2.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   3,
			Timeout:       100 * time.Millisecond,
			HalfOpenLimit: 2,
		},
	}
}

func newTestQuoteTable(t *testing.T, cfg *clients.Config) *acl.QuoteTable {
	t.Helper()

	client, err := clients.New(cfg)
	require.NoError(t, err)

	return acl.NewQuoteTable(acl.QuoteTableConfig{Client: client})
}

// TestQuoteTable_Fetch_Integration verifies the full flow of fetching
// quotes through the adapter, including query shape and row translation.
func TestQuoteTable_Fetch_Integration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/quotes", r.URL.Path)
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "id,text,author", r.URL.Query().Get("select"))
		assert.Equal(t, "id.desc", r.URL.Query().Get("order"))
		assert.Equal(t, "25", r.URL.Query().Get("limit"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 3, "text": "العلم نور", "author": "مثل عربي"},
			{"id": 2, "text": "الصبر مفتاح الفرج", "author": ""},
			{"id": 1, "text": "", "author": "ignored"}
		]`))
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	quotes, err := table.Fetch(context.Background(), 25)

	require.NoError(t, err)
	require.Len(t, quotes, 2, "empty-text rows are dropped")

	assert.Equal(t, "3", quotes[0].ID)
	assert.Equal(t, "العلم نور", quotes[0].Text)
	assert.Equal(t, "مثل عربي", quotes[0].Author)

	// Missing author falls back to the sentinel.
	assert.Equal(t, "2", quotes[1].ID)
	assert.Equal(t, domain.UnknownAuthor, quotes[1].Author)
}

// TestQuoteTable_Insert_Integration verifies that a single insert asks
// for the inserted row back and translates the server-assigned id.
func TestQuoteTable_Insert_Integration(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/rest/v1/quotes", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "return=representation", r.Header.Get("Prefer"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var rows []map[string]string
		require.NoError(t, json.Unmarshal(body, &rows))
		require.Len(t, rows, 1)
		assert.Equal(t, "من جد وجد", rows[0]["text"])

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 42, "text": "من جد وجد", "author": "مثل عربي"}]`))
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	inserted, err := table.Insert(context.Background(), domain.Quote{
		Text:   "من جد وجد",
		Author: "مثل عربي",
	})

	require.NoError(t, err)
	assert.Equal(t, "42", inserted.ID)
	assert.Equal(t, "من جد وجد", inserted.Text)
}

// TestQuoteTable_InsertBatch_Integration verifies that a batch insert
// sends all rows in one request and skips the representation echo.
func TestQuoteTable_InsertBatch_Integration(t *testing.T) {
	var requests int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)

		assert.Equal(t, "return=minimal", r.Header.Get("Prefer"))

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		var rows []map[string]string
		require.NoError(t, json.Unmarshal(body, &rows))
		assert.Len(t, rows, 3)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	err := table.InsertBatch(context.Background(), []domain.Quote{
		{Text: "one", Author: "a"},
		{Text: "two", Author: "b"},
		{Text: "three", Author: "c"},
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(&requests), "batch goes out as a single request")
}

// TestQuoteTable_ErrorMapping_AuthRejected verifies that 401 responses
// surface as UnavailableError since the table is unusable until the
// operator fixes the API key.
func TestQuoteTable_ErrorMapping_AuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message": "No API key found in request"}`))
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	_, err := table.Fetch(context.Background(), 10)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "expected UnavailableError")
	assert.Contains(t, err.Error(), "authentication rejected")
}

// TestQuoteTable_ErrorMapping_Validation verifies that 400 responses
// with a PostgREST error body are mapped to domain ValidationError.
func TestQuoteTable_ErrorMapping_Validation(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{
			"code": "23502",
			"message": "null value in column \"text\" violates not-null constraint"
		}`))
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	_, err := table.Insert(context.Background(), domain.Quote{Text: "x"})

	require.Error(t, err)
	assert.True(t, domain.IsValidation(err), "expected ValidationError")
	assert.Contains(t, err.Error(), "not-null constraint")
}

// TestQuoteTable_ErrorMapping_ServiceUnavailable verifies that 5xx
// responses are mapped to domain UnavailableError.
func TestQuoteTable_ErrorMapping_ServiceUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`internal server error`))
	}))
	defer server.Close()

	cfg := testAdapterConfig(server.URL)
	cfg.Retry.MaxAttempts = 1 // Fail fast for this test

	table := newTestQuoteTable(t, cfg)

	_, err := table.Fetch(context.Background(), 10)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "expected UnavailableError")
}

// TestQuoteTable_ErrorMapping_CircuitOpen verifies that circuit breaker
// open state is correctly mapped to domain UnavailableError.
func TestQuoteTable_ErrorMapping_CircuitOpen(t *testing.T) {
	var calls int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	cfg := testAdapterConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 2

	table := newTestQuoteTable(t, cfg)

	// Trip the circuit breaker
	_, _ = table.Fetch(context.Background(), 1)
	_, _ = table.Fetch(context.Background(), 1)

	// This call should fail fast with circuit open
	callsBefore := atomic.LoadInt32(&calls)
	_, err := table.Fetch(context.Background(), 1)

	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err), "expected UnavailableError")
	assert.Contains(t, err.Error(), "circuit breaker open")
	assert.Equal(t, callsBefore, atomic.LoadInt32(&calls), "no server call when circuit is open")
}

// TestQuoteTable_Retry_InsertBody verifies that the insert body is
// replayed intact when the first attempt fails transiently.
func TestQuoteTable_Retry_InsertBody(t *testing.T) {
	var attempts int32

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		count := atomic.AddInt32(&attempts, 1)

		body, err := io.ReadAll(r.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), "retry me")

		if count == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 7, "text": "retry me", "author": "unknown"}]`))
	}))
	defer server.Close()

	table := newTestQuoteTable(t, testAdapterConfig(server.URL))

	inserted, err := table.Insert(context.Background(), domain.Quote{Text: "retry me"})

	require.NoError(t, err)
	assert.Equal(t, "7", inserted.ID)
	assert.Equal(t, int32(2), atomic.LoadInt32(&attempts))
}

// TestQuoteTable_HealthCheck_Integration verifies the adapter's health
// check probes the table with a single-row fetch.
func TestQuoteTable_HealthCheck_Integration(t *testing.T) {
	healthy := atomic.Bool{}
	healthy.Store(true)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "1", r.URL.Query().Get("limit"))

		if !healthy.Load() {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	cfg := testAdapterConfig(server.URL)
	cfg.Retry.MaxAttempts = 1
	cfg.Circuit.MaxFailures = 10

	table := newTestQuoteTable(t, cfg)

	assert.Equal(t, "quote-table", table.Name())
	assert.NoError(t, table.Check(context.Background()))

	healthy.Store(false)
	assert.Error(t, table.Check(context.Background()))
}
