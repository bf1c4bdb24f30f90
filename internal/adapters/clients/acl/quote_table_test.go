package acl

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqwal-app/aqwal/internal/adapters/clients"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/platform/config"
)

func newTestClient(t *testing.T, baseURL string) *clients.Client {
	t.Helper()

	client, err := clients.New(&clients.Config{
		BaseURL:     baseURL,
		ServiceName: "quote-table",
		Timeout:     2 * time.Second,
		Retry: config.RetryConfig{
			MaxAttempts:     1,
			InitialInterval: time.Millisecond,
			MaxInterval:     time.Millisecond,
			Multiplier:      1.0,
		},
		Circuit: config.CircuitBreakerConfig{
			MaxFailures:   10,
			Timeout:       time.Second,
			HalfOpenLimit: 1,
		},
		AuthFunc: func(r *http.Request) {
			r.Header.Set("apikey", "test-key")
			r.Header.Set("Authorization", "Bearer test-key")
		},
	})
	require.NoError(t, err)

	return client
}

func TestQuoteTable_Fetch(t *testing.T) {
	var gotPath, gotQuery, gotAPIKey string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = r.URL.RawQuery
		gotAPIKey = r.Header.Get("apikey")

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"id": 12, "text": "الصبر مفتاح الفرج", "author": "مثل عربي"},
			{"id": 11, "text": "العلم نور", "author": ""},
			{"id": 10, "text": "", "author": "x"}
		]`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	quotes, err := table.Fetch(context.Background(), 50)
	require.NoError(t, err)

	assert.Equal(t, "/rest/v1/quotes", gotPath)
	assert.Equal(t, "select=id,text,author&order=id.desc&limit=50", gotQuery)
	assert.Equal(t, "test-key", gotAPIKey)

	// Empty-text rows are dropped, missing author falls back to the
	// sentinel label, ids become strings.
	require.Len(t, quotes, 2)
	assert.Equal(t, domain.Quote{ID: "12", Text: "الصبر مفتاح الفرج", Author: "مثل عربي"}, quotes[0])
	assert.Equal(t, domain.Quote{ID: "11", Text: "العلم نور", Author: domain.UnknownAuthor}, quotes[1])
}

func TestQuoteTable_FetchUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	_, err := table.Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
}

func TestQuoteTable_FetchAuthRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"JWT expired"}`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	_, err := table.Fetch(context.Background(), 10)
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))
	assert.Contains(t, err.Error(), "authentication rejected")
}

func TestQuoteTable_Insert(t *testing.T) {
	var gotPrefer, gotContentType string
	var gotBody []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")
		gotContentType = r.Header.Get("Content-Type")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotBody)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`[{"id": 42, "text": "من جد وجد", "author": "مثل عربي"}]`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	got, err := table.Insert(context.Background(), domain.Quote{Text: "من جد وجد", Author: "مثل عربي"})
	require.NoError(t, err)

	assert.Equal(t, "return=representation", gotPrefer)
	assert.Equal(t, "application/json", gotContentType)
	require.Len(t, gotBody, 1)
	assert.Equal(t, "من جد وجد", gotBody[0]["text"])

	assert.Equal(t, "42", got.ID)
	assert.Equal(t, "من جد وجد", got.Text)
}

func TestQuoteTable_InsertSurfacesWriteFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"23502","message":"null value in column text"}`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	_, err := table.Insert(context.Background(), domain.Quote{Text: "x"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "null value in column text")
}

func TestQuoteTable_InsertBatch(t *testing.T) {
	var gotPrefer string
	var gotRows []map[string]any

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPrefer = r.Header.Get("Prefer")

		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &gotRows)

		w.WriteHeader(http.StatusCreated)
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	err := table.InsertBatch(context.Background(), []domain.Quote{
		{Text: "a", Author: "x"},
		{Text: "b", Author: "y"},
	})
	require.NoError(t, err)

	assert.Equal(t, "return=minimal", gotPrefer)
	require.Len(t, gotRows, 2)
	assert.Equal(t, "a", gotRows[0]["text"])
	assert.Equal(t, "b", gotRows[1]["text"])
}

func TestQuoteTable_InsertBatchEmptyIsNoop(t *testing.T) {
	called := false

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	require.NoError(t, table.InsertBatch(context.Background(), nil))
	assert.False(t, called)
}

func TestQuoteTable_CustomTableName(t *testing.T) {
	var gotPath string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{
		Client: newTestClient(t, server.URL),
		Table:  "aqwal",
	})

	_, err := table.Fetch(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "/rest/v1/aqwal", gotPath)
}

func TestQuoteTable_HealthCheck(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[]`))
	}))
	defer server.Close()

	table := NewQuoteTable(QuoteTableConfig{Client: newTestClient(t, server.URL)})

	assert.Equal(t, "quote-table", table.Name())
	assert.NoError(t, table.Check(context.Background()))
}
