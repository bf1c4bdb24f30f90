// Package app contains application services that orchestrate use cases.
// This is the application layer in Clean Architecture - it coordinates
// domain logic and infrastructure through ports.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"github.com/aqwal-app/aqwal/internal/adapters/memstore"
	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/ports"
)

// defaultFetchLimit bounds how many rows a remote load pulls in.
const defaultFetchLimit = 200

// QuoteService orchestrates quote use cases: loading the working set,
// listing with client-style substring filtering, adding quotes, and
// producing share text.
//
// The service always answers from the in-process store. When a remote
// quote table is configured it is the source of truth: loads hydrate
// the store from it and writes go remote-first. Without one the
// service runs local-only on the built-in samples.
type QuoteService struct {
	store      *memstore.Store
	repo       ports.QuoteRepository // nil in local-only mode
	fetchLimit int
	logger     *slog.Logger

	// loads collapses concurrent remote hydrations into one request.
	loads singleflight.Group
}

// QuoteServiceConfig contains configuration for the quote service.
type QuoteServiceConfig struct {
	Store      *memstore.Store
	Repository ports.QuoteRepository
	FetchLimit int
	Logger     *slog.Logger
}

// NewQuoteService creates a new quote service with the provided dependencies.
// Panics if Store is nil.
func NewQuoteService(cfg QuoteServiceConfig) *QuoteService {
	if cfg.Store == nil {
		panic("QuoteService: Store is required")
	}

	fetchLimit := cfg.FetchLimit
	if fetchLimit <= 0 {
		fetchLimit = defaultFetchLimit
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &QuoteService{
		store:      cfg.Store,
		repo:       cfg.Repository,
		fetchLimit: fetchLimit,
		logger:     logger.With(slog.String("component", "app.QuoteService")),
	}
}

// Load hydrates the store and returns its contents, newest first.
//
// A failing or empty remote fetch never breaks the read path: the
// service logs the failure and falls back to whatever the store holds,
// seeding the built-in samples when it holds nothing. Concurrent loads
// share a single remote request.
func (s *QuoteService) Load(ctx context.Context) ([]domain.Quote, error) {
	if s.repo == nil {
		s.seedIfEmpty(ctx)

		return s.store.List(), nil
	}

	_, err, _ := s.loads.Do("load", func() (any, error) {
		quotes, fetchErr := s.repo.Fetch(ctx, s.fetchLimit)
		if fetchErr != nil {
			return nil, fetchErr
		}

		if len(quotes) > 0 {
			s.store.Replace(quotes)
		}

		return nil, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "remote load failed, serving local state",
			slog.Any("error", err))
	}

	s.seedIfEmpty(ctx)

	return s.store.List(), nil
}

// List returns quotes matching the query, newest first, capped at
// limit when limit is positive. Matching is a case-sensitive substring
// check; an empty query returns everything.
func (s *QuoteService) List(ctx context.Context, query string, limit int) []domain.Quote {
	_ = ctx

	quotes := domain.Filter(s.store.List(), query)
	if limit > 0 && len(quotes) > limit {
		quotes = quotes[:limit]
	}

	return quotes
}

// Get returns the quote with the given ID.
func (s *QuoteService) Get(ctx context.Context, id string) (domain.Quote, error) {
	_ = ctx

	quote, ok := s.store.Get(id)
	if !ok {
		return domain.Quote{}, domain.NewNotFoundError("quote", id)
	}

	return quote, nil
}

// Share returns the share text for the quote with the given ID.
func (s *QuoteService) Share(ctx context.Context, id string) (string, error) {
	quote, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}

	return quote.ShareText(), nil
}

// Add validates and persists a single quote, returning it with its
// assigned ID. Unlike loads, write failures against the remote table
// are surfaced to the caller; the local store is only updated once the
// write is confirmed.
func (s *QuoteService) Add(ctx context.Context, text, author string) (domain.Quote, error) {
	quote, err := domain.NewQuote(text, author)
	if err != nil {
		return domain.Quote{}, err
	}

	if s.repo != nil {
		confirmed, insertErr := s.repo.Insert(ctx, quote)
		if insertErr != nil {
			s.logger.ErrorContext(ctx, "remote insert failed",
				slog.Any("error", insertErr))

			return domain.Quote{}, fmt.Errorf("adding quote: %w", insertErr)
		}

		quote = confirmed
	} else {
		quote.ID = uuid.NewString()
	}

	s.store.Prepend(quote)

	s.logger.InfoContext(ctx, "quote added",
		slog.String("quote_id", quote.ID),
		slog.String("author", quote.Author))

	return quote, nil
}

// AddBatch persists a batch of already-validated quotes as one block.
// With a remote table the whole batch is written first and the store
// is re-hydrated so local state carries the server-assigned ids; if
// that refresh fails the batch is prepended with locally assigned ids
// instead. Local-only mode prepends directly.
func (s *QuoteService) AddBatch(ctx context.Context, quotes []domain.Quote) error {
	if len(quotes) == 0 {
		return nil
	}

	if s.repo != nil {
		if err := s.repo.InsertBatch(ctx, quotes); err != nil {
			s.logger.ErrorContext(ctx, "remote batch insert failed",
				slog.Int("count", len(quotes)),
				slog.Any("error", err))

			return fmt.Errorf("inserting batch: %w", err)
		}

		fresh, err := s.repo.Fetch(ctx, s.fetchLimit)
		if err == nil && len(fresh) > 0 {
			s.store.Replace(fresh)

			return nil
		}

		s.logger.WarnContext(ctx, "post-commit refresh failed, prepending locally",
			slog.Any("error", err))
	}

	local := make([]domain.Quote, len(quotes))
	copy(local, quotes)

	for i := range local {
		if local[i].ID == "" {
			local[i].ID = uuid.NewString()
		}
	}

	s.store.PrependBatch(local)

	return nil
}

// seedIfEmpty fills an empty store with the built-in samples.
func (s *QuoteService) seedIfEmpty(ctx context.Context) {
	if s.store.Len() > 0 {
		return
	}

	s.store.Replace(memstore.Samples())
	s.logger.InfoContext(ctx, "store seeded with built-in samples",
		slog.Int("count", s.store.Len()))
}
