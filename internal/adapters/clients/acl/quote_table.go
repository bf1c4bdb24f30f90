package acl

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/aqwal-app/aqwal/internal/adapters/clients"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/platform/logging"
)

// serviceName identifies the remote quote table in errors and health
// check output.
const serviceName = "quote-table"

// QuoteTableConfig contains configuration for the quote table client.
type QuoteTableConfig struct {
	// Client is the instrumented HTTP client. Its BaseURL must point at
	// the REST root of the remote store and its AuthFunc must inject
	// the API key headers.
	Client *clients.Client

	// Table is the table name under /rest/v1/. Defaults to "quotes".
	Table string

	// Logger is the structured logger.
	Logger *slog.Logger
}

// QuoteTable implements ports.QuoteRepository against a PostgREST-style
// table endpoint. Rows carry a server-assigned numeric id; the newest
// row has the highest id, so "order=id.desc" yields newest-first.
type QuoteTable struct {
	client *clients.Client
	path   string
	logger *slog.Logger
}

// NewQuoteTable creates a quote table adapter.
// Panics if Client is nil. Defaults logger to slog.Default() if nil.
func NewQuoteTable(cfg QuoteTableConfig) *QuoteTable {
	if cfg.Client == nil {
		panic("QuoteTable: Client is required")
	}

	table := cfg.Table
	if table == "" {
		table = "quotes"
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteTable{
		client: cfg.Client,
		path:   "/rest/v1/" + url.PathEscape(table),
		logger: logger,
	}
}

// quoteRow is the external row shape. Never exposed outside the ACL.
type quoteRow struct {
	ID     int64  `json:"id,omitempty"`
	Text   string `json:"text"`
	Author string `json:"author"`
}

// Fetch returns at most limit quotes, newest first.
// Implements ports.QuoteRepository.
func (t *QuoteTable) Fetch(ctx context.Context, limit int) ([]domain.Quote, error) {
	const operation = "fetch quotes"

	path := fmt.Sprintf("%s?select=id,text,author&order=id.desc&limit=%d", t.path, limit)
	t.logger.Log(ctx, logging.LevelTrace, "starting request", slog.String("path", path))

	resp, err := t.client.Get(ctx, path)
	if err != nil {
		return nil, mapTableError(nil, err, operation)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		return nil, mapTableError(resp, nil, operation)
	}

	return decodeRows(resp.Body)
}

// Insert persists one quote and returns it with the server-assigned ID.
// Implements ports.QuoteRepository.
func (t *QuoteTable) Insert(ctx context.Context, quote domain.Quote) (domain.Quote, error) {
	const operation = "insert quote"

	rows, err := t.insertRows(ctx, []quoteRow{{Text: quote.Text, Author: quote.Author}}, true, operation)
	if err != nil {
		return domain.Quote{}, err
	}

	if len(rows) == 0 {
		return domain.Quote{}, domain.NewUnavailableError(serviceName, "insert returned no row")
	}

	return translateRow(rows[0]), nil
}

// InsertBatch persists a batch of quotes as a single request.
// Implements ports.QuoteRepository.
func (t *QuoteTable) InsertBatch(ctx context.Context, quotes []domain.Quote) error {
	const operation = "insert quote batch"

	if len(quotes) == 0 {
		return nil
	}

	rows := make([]quoteRow, 0, len(quotes))
	for _, q := range quotes {
		rows = append(rows, quoteRow{Text: q.Text, Author: q.Author})
	}

	_, err := t.insertRows(ctx, rows, false, operation)

	return err
}

// insertRows POSTs rows to the table. When representation is true the
// server is asked to echo the inserted rows back, ids included.
func (t *QuoteTable) insertRows(ctx context.Context, rows []quoteRow, representation bool, operation string) ([]quoteRow, error) {
	body, err := json.Marshal(rows)
	if err != nil {
		return nil, fmt.Errorf("encoding rows: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.client.URL(t.path), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if representation {
		req.Header.Set("Prefer", "return=representation")
	} else {
		req.Header.Set("Prefer", "return=minimal")
	}

	// Allow the instrumented client to rewind the body on retry.
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(body)), nil
	}

	t.logger.Log(ctx, logging.LevelTrace, "starting request",
		slog.String("path", t.path),
		slog.Int("rows", len(rows)))

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return nil, mapTableError(nil, err, operation)
	}
	defer func() { _ = resp.Body.Close() }()

	t.logger.Log(ctx, logging.LevelTrace, "request complete",
		slog.String("path", t.path),
		slog.Int("status", resp.StatusCode))

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		return nil, mapTableError(resp, nil, operation)
	}

	if !representation {
		return nil, nil
	}

	inserted, err := decodeRowSlice(resp.Body)
	if err != nil {
		return nil, err
	}

	return inserted, nil
}

// decodeRows reads a row array and translates it to domain quotes,
// dropping rows that would not survive domain validation.
func decodeRows(body io.Reader) ([]domain.Quote, error) {
	rows, err := decodeRowSlice(body)
	if err != nil {
		return nil, err
	}

	quotes := make([]domain.Quote, 0, len(rows))

	for _, row := range rows {
		if row.Text == "" {
			continue
		}

		quotes = append(quotes, translateRow(row))
	}

	return quotes, nil
}

func decodeRowSlice(body io.Reader) ([]quoteRow, error) {
	var rows []quoteRow
	if err := json.NewDecoder(body).Decode(&rows); err != nil {
		return nil, domain.NewUnavailableError(serviceName,
			fmt.Sprintf("decoding rows: %v", err))
	}

	return rows, nil
}

// translateRow converts an external row to a domain Quote.
func translateRow(row quoteRow) domain.Quote {
	author := row.Author
	if author == "" {
		author = domain.UnknownAuthor
	}

	return domain.Quote{
		ID:     strconv.FormatInt(row.ID, 10),
		Text:   row.Text,
		Author: author,
	}
}

// Name returns the health check name for this adapter.
// Implements ports.HealthChecker.
func (t *QuoteTable) Name() string {
	return serviceName
}

// Check verifies connectivity by fetching a single row.
// Implements ports.HealthChecker.
func (t *QuoteTable) Check(ctx context.Context) error {
	_, err := t.Fetch(ctx, 1)

	return err
}
