// Package memstore holds the in-process quote list backing the read
// API. The store is the single source the handlers render from; when a
// remote quote table is configured it is hydrated from there, otherwise
// it starts from the built-in samples and lives only as long as the
// process.
package memstore

import (
	"sync"

	"github.com/aqwal-app/aqwal/internal/domain"
)

// Store is a concurrency-safe, ordered quote list. Index 0 is the
// newest quote; Prepend and PrependBatch keep that invariant.
type Store struct {
	mu     sync.RWMutex
	quotes []domain.Quote
}

// New creates an empty store.
func New() *Store {
	return &Store{}
}

// List returns a snapshot of all quotes, newest first. The returned
// slice is owned by the caller.
func (s *Store) List() []domain.Quote {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Quote, len(s.quotes))
	copy(out, s.quotes)

	return out
}

// Get returns the quote with the given ID.
func (s *Store) Get(id string) (domain.Quote, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, q := range s.quotes {
		if q.ID == id {
			return q, true
		}
	}

	return domain.Quote{}, false
}

// Len returns the number of stored quotes.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.quotes)
}

// Prepend inserts a single quote at the front of the list.
func (s *Store) Prepend(quote domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = append([]domain.Quote{quote}, s.quotes...)
}

// PrependBatch inserts a batch at the front as one block, preserving
// the batch's own order. Given a store [c d] and a batch [a b], the
// result is [a b c d].
func (s *Store) PrependBatch(quotes []domain.Quote) {
	if len(quotes) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	merged := make([]domain.Quote, 0, len(quotes)+len(s.quotes))
	merged = append(merged, quotes...)
	merged = append(merged, s.quotes...)
	s.quotes = merged
}

// Replace swaps the whole list for an authoritative snapshot, e.g.
// after a fresh fetch from the remote table.
func (s *Store) Replace(quotes []domain.Quote) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.quotes = make([]domain.Quote, len(quotes))
	copy(s.quotes, quotes)
}
