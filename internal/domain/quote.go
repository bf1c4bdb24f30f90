// Package domain contains core business entities and rules.
package domain

import (
	"fmt"
	"strings"
)

// UnknownAuthor is the sentinel label used when a quote has no author.
const UnknownAuthor = "unknown"

// Quote is a text/author pair displayed, shared, and exported by the
// system. Quotes are immutable once created; list position is identity,
// the ID exists only so HTTP routes can address a single quote.
type Quote struct {
	// ID is server-assigned for remotely persisted quotes and a UUID
	// for quotes added in local-only mode.
	ID string

	// Text is the quote body. Never empty for a valid quote.
	Text string

	// Author is who said or wrote the quote. Defaults to UnknownAuthor.
	Author string
}

// NewQuote builds a quote from raw text and author, applying the
// trimming and defaulting rules shared by every ingestion path
// (manual add, file import, remote fetch).
// Returns a validation error when the trimmed text is empty.
func NewQuote(text, author string) (Quote, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Quote{}, NewValidationError("text", "cannot be empty")
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = UnknownAuthor
	}

	return Quote{Text: text, Author: author}, nil
}

// ShareText returns the canonical share string for a quote.
func (q Quote) ShareText() string {
	return fmt.Sprintf("%q — %s", q.Text, q.Author)
}

// Matches reports whether the quote matches a search query.
// The test is a case-sensitive substring match over the concatenation
// of text and author; no unicode normalization is applied. An empty
// query matches everything.
func (q Quote) Matches(query string) bool {
	if query == "" {
		return true
	}

	return strings.Contains(q.Text+q.Author, query)
}

// Filter returns the quotes matching query, preserving relative order.
// The result is a subsequence of the input and reapplying the same
// query is idempotent.
func Filter(quotes []Quote, query string) []Quote {
	if query == "" {
		return quotes
	}

	matched := make([]Quote, 0, len(quotes))
	for _, q := range quotes {
		if q.Matches(query) {
			matched = append(matched, q)
		}
	}

	return matched
}
