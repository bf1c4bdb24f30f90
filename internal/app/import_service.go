package app

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aqwal-app/aqwal/internal/domain"
	"github.com/aqwal-app/aqwal/internal/importer"
)

// ImportState is the phase of the bulk import workflow.
type ImportState string

const (
	// ImportStateEmpty means no preview is staged.
	ImportStateEmpty ImportState = "empty"

	// ImportStatePreviewing means parsed candidates are staged and
	// waiting for commit or discard.
	ImportStatePreviewing ImportState = "previewing"

	// ImportStateCommitting means a commit is in flight. Preview,
	// discard, and commit requests are rejected until it finishes.
	ImportStateCommitting ImportState = "committing"
)

// defaultPreviewLimit caps how many candidates a snapshot carries.
const defaultPreviewLimit = 50

// ImportSnapshot is the externally visible state of the import
// workflow. Candidates is truncated to the preview limit; Total is the
// full staged count.
type ImportSnapshot struct {
	State      ImportState
	Filename   string
	Candidates []domain.Quote
	Total      int
}

// ImportReport summarizes a finished commit.
type ImportReport struct {
	Committed int
	Filename  string
}

// ImportService drives the two-step bulk import: stage a parsed file
// as a preview, then commit or discard it. Exactly one preview is
// staged at a time; a new preview replaces the old one. The service is
// safe for concurrent use and refuses overlapping commits.
type ImportService struct {
	quotes       *QuoteService
	executor     *Executor
	previewLimit int
	logger       *slog.Logger

	mu       sync.Mutex
	state    ImportState
	staged   []domain.Quote
	filename string
}

// ImportServiceConfig contains configuration for the import service.
type ImportServiceConfig struct {
	Quotes       *QuoteService
	PreviewLimit int
	Logger       *slog.Logger
}

// NewImportService creates a new import service.
// Panics if Quotes is nil.
func NewImportService(cfg ImportServiceConfig) *ImportService {
	if cfg.Quotes == nil {
		panic("ImportService: Quotes is required")
	}

	previewLimit := cfg.PreviewLimit
	if previewLimit <= 0 {
		previewLimit = defaultPreviewLimit
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("component", "app.ImportService"))

	return &ImportService{
		quotes:       cfg.Quotes,
		executor:     NewExecutor(logger),
		previewLimit: previewLimit,
		logger:       logger,
		state:        ImportStateEmpty,
	}
}

// Preview parses an uploaded file and stages the result, replacing any
// previously staged preview. A file that fails to parse or yields no
// candidates leaves the existing preview untouched and returns the
// error. Rejected with a conflict while a commit is in flight.
func (s *ImportService) Preview(ctx context.Context, filename string, data []byte) (ImportSnapshot, error) {
	s.mu.Lock()
	if s.state == ImportStateCommitting {
		s.mu.Unlock()

		return ImportSnapshot{}, domain.NewConflictError("import", "commit in progress")
	}
	s.mu.Unlock()

	candidates, err := importer.Parse(filename, data)
	if err != nil {
		s.logger.WarnContext(ctx, "import parse failed",
			slog.String("filename", filename),
			slog.Any("error", err))

		return ImportSnapshot{}, err
	}

	if len(candidates) == 0 {
		return ImportSnapshot{}, domain.NewValidationError("file", "nothing to import")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Re-check: a commit may have started while parsing.
	if s.state == ImportStateCommitting {
		return ImportSnapshot{}, domain.NewConflictError("import", "commit in progress")
	}

	s.staged = candidates
	s.filename = filename
	s.state = ImportStatePreviewing

	s.logger.InfoContext(ctx, "import preview staged",
		slog.String("filename", filename),
		slog.Int("candidates", len(candidates)))

	return s.snapshotLocked(), nil
}

// Snapshot returns the current import state.
func (s *ImportService) Snapshot(ctx context.Context) ImportSnapshot {
	_ = ctx

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.snapshotLocked()
}

// Discard drops the staged preview.
// Rejected with a conflict while a commit is in flight.
func (s *ImportService) Discard(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == ImportStateCommitting {
		return domain.NewConflictError("import", "commit in progress")
	}

	s.logger.InfoContext(ctx, "import preview discarded",
		slog.String("filename", s.filename),
		slog.Int("candidates", len(s.staged)))

	s.reset()

	return nil
}

// Commit persists the staged preview as one batch. On success the
// preview is cleared; on failure it stays staged so the caller can
// retry or discard. Only one commit runs at a time.
func (s *ImportService) Commit(ctx context.Context) (ImportReport, error) {
	s.mu.Lock()

	switch s.state {
	case ImportStateCommitting:
		s.mu.Unlock()

		return ImportReport{}, domain.NewConflictError("import", "commit in progress")

	case ImportStateEmpty:
		s.mu.Unlock()

		return ImportReport{}, domain.NewValidationError("", "nothing to import")
	}

	batch := s.staged
	filename := s.filename
	s.state = ImportStateCommitting
	s.mu.Unlock()

	report, err := Execute(ctx, s.executor, Operation[[]domain.Quote, int, int, ImportReport]{
		Name: "import.commit",

		Validate: func(_ context.Context, input []domain.Quote) error {
			if len(input) == 0 {
				return domain.NewValidationError("", "nothing to import")
			}

			return nil
		},

		Perform: func(ctx context.Context, input []domain.Quote) (int, error) {
			if err := s.quotes.AddBatch(ctx, input); err != nil {
				return 0, err
			}

			return len(input), nil
		},

		Verify: func(_ context.Context, input []domain.Quote, performed int) (int, error) {
			if performed != len(input) {
				return 0, domain.NewUnavailableError("import",
					"batch was only partially written")
			}

			return performed, nil
		},

		Respond: func(_ context.Context, _ []domain.Quote, verified int) (ImportReport, error) {
			return ImportReport{Committed: verified, Filename: filename}, nil
		},
	}, batch)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		// Keep the preview so the operator can retry or discard.
		s.state = ImportStatePreviewing

		return ImportReport{}, err
	}

	s.reset()

	return report, nil
}

// snapshotLocked builds a snapshot. Caller holds s.mu.
func (s *ImportService) snapshotLocked() ImportSnapshot {
	snap := ImportSnapshot{
		State:    s.state,
		Filename: s.filename,
		Total:    len(s.staged),
	}

	limit := len(s.staged)
	if limit > s.previewLimit {
		limit = s.previewLimit
	}

	snap.Candidates = make([]domain.Quote, limit)
	copy(snap.Candidates, s.staged[:limit])

	return snap
}

// reset clears staged state. Caller holds s.mu.
func (s *ImportService) reset() {
	s.state = ImportStateEmpty
	s.staged = nil
	s.filename = ""
}
