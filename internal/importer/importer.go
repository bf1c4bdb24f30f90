// Package importer converts raw import files into validated quote
// candidates. Two formats are accepted, dispatched by file extension:
// JSON (an array of {text, author} objects) and headerless two-column
// CSV. The strictness deliberately differs between the two: a JSON
// file that is not an array rejects the whole batch, while malformed
// CSV rows are skipped individually and the batch survives.
package importer

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aqwal-app/aqwal/internal/domain"
)

// Parse converts a file's name and decoded content into an ordered list
// of candidate quotes. The returned error is always a domain.ParseError;
// this boundary never panics. Candidates keep the input row/array order.
func Parse(filename string, data []byte) ([]domain.Quote, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".json":
		return parseJSON(data)
	case ".csv":
		return parseCSV(data), nil
	default:
		return nil, domain.NewParseError("", "unsupported file type")
	}
}

// jsonCandidate mirrors one element of the import array. Fields are
// raw JSON so non-string values can be coerced the way the lenient
// contract requires instead of failing the batch.
type jsonCandidate struct {
	Text   json.RawMessage `json:"text"`
	Author json.RawMessage `json:"author"`
}

// parseJSON parses a JSON import. The value must be an array; any
// structural error rejects the whole batch. Individual elements are
// treated leniently: non-object elements and elements with empty
// trimmed text are dropped silently.
func parseJSON(data []byte) ([]domain.Quote, error) {
	var elements []json.RawMessage

	err := json.Unmarshal(data, &elements)
	if err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, domain.NewParseError("json", "expected an array of quote objects")
		}

		return nil, domain.NewParseError("json", err.Error())
	}

	quotes := make([]domain.Quote, 0, len(elements))

	for _, raw := range elements {
		var el jsonCandidate
		if err := json.Unmarshal(raw, &el); err != nil {
			continue
		}

		q, ok := candidate(coerceString(el.Text), coerceString(el.Author))
		if ok {
			quotes = append(quotes, q)
		}
	}

	return quotes, nil
}

// parseCSV parses a headerless two-column CSV import: quote text,
// author. Rows are handled best-effort: a row that fails to parse or
// has an empty first column is skipped, never failing the batch.
func parseCSV(data []byte) []domain.Quote {
	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var quotes []domain.Quote

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}

		if err != nil {
			// Malformed row: skip it and keep reading.
			var parseErr *csv.ParseError
			if errors.As(err, &parseErr) {
				continue
			}

			break
		}

		var text, author string
		if len(record) > 0 {
			text = record[0]
		}

		if len(record) > 1 {
			author = record[1]
		}

		q, ok := candidate(text, author)
		if ok {
			quotes = append(quotes, q)
		}
	}

	return quotes
}

// candidate applies the shared trim/default rules and reports whether
// the row survives (empty-text rows are dropped).
func candidate(text, author string) (domain.Quote, bool) {
	q, err := domain.NewQuote(text, author)
	if err != nil {
		return domain.Quote{}, false
	}

	return q, true
}

// coerceString converts a raw JSON value to its string form the way a
// lenient importer should: strings are used as-is, numbers and booleans
// are stringified, null and missing values become empty.
func coerceString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil || v == nil {
		return ""
	}

	switch v.(type) {
	case map[string]any, []any:
		// Nested structures are not meaningful quote fields.
		return ""
	default:
		return fmt.Sprint(v)
	}
}
