// Package ports defines interfaces for external dependencies.
// Ports are contracts that adapters implement, allowing the application
// layer to depend on abstractions rather than concrete implementations.
//
// Port Design Principles:
//   - Context as first parameter (always) for cancellation and deadlines
//   - Return domain types, never external DTOs or infrastructure types
//   - Error returns use domain error types (ErrNotFound, ErrUnavailable, ...)
//   - Keep interfaces small and focused
package ports

import (
	"context"

	"github.com/aqwal-app/aqwal/internal/domain"
)

// QuoteRepository is the remote persistence collaborator: a table-like
// store of quote rows with a server-assigned id. The collaborator is
// optional; when the remote connection parameters are unset the
// application runs local-only and no repository is wired at all.
type QuoteRepository interface {
	// Fetch returns at most limit quotes ordered newest-first
	// (server id descending).
	// Returns domain.ErrUnavailable when the store is unreachable.
	Fetch(ctx context.Context, limit int) ([]domain.Quote, error)

	// Insert persists one quote and returns it as confirmed by the
	// store, including the server-assigned ID.
	// Returns domain.ErrUnavailable on write failure; the caller must
	// surface the error rather than fall back silently.
	Insert(ctx context.Context, quote domain.Quote) (domain.Quote, error)

	// InsertBatch persists a batch of quotes as a single operation.
	// Either the whole batch is accepted or the error leaves the store
	// unchanged from the caller's point of view.
	InsertBatch(ctx context.Context, quotes []domain.Quote) error
}

// Poster is a rendered export artifact: PNG bytes plus the suggested
// download filename (quote-<unix-millis>.png).
type Poster struct {
	PNG      []byte
	Filename string
}

// PosterRenderer rasterizes a single quote into a downloadable image.
type PosterRenderer interface {
	// Render lays out and rasterizes the quote. Layout and
	// rasterization are an explicit two-phase operation inside the
	// implementation; a layout that cannot be produced is an error,
	// never a silent no-op.
	Render(ctx context.Context, quote domain.Quote) (*Poster, error)
}
