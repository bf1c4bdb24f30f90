package app

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aqwal-app/aqwal/internal/adapters/memstore"
	"github.com/aqwal-app/aqwal/internal/domain"
)

// fakeRepo is a hand-rolled ports.QuoteRepository for testing.
type fakeRepo struct {
	mu      sync.Mutex
	rows    []domain.Quote
	nextID  int64
	fetches int32

	fetchErr  error
	insertErr error
}

func newFakeRepo(rows ...domain.Quote) *fakeRepo {
	return &fakeRepo{rows: rows, nextID: int64(len(rows)) + 1}
}

func (f *fakeRepo) Fetch(_ context.Context, limit int) ([]domain.Quote, error) {
	atomic.AddInt32(&f.fetches, 1)

	if f.fetchErr != nil {
		return nil, f.fetchErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]domain.Quote, len(f.rows))
	copy(out, f.rows)

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeRepo) Insert(_ context.Context, quote domain.Quote) (domain.Quote, error) {
	if f.insertErr != nil {
		return domain.Quote{}, f.insertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	quote.ID = "r-" + string(rune('0'+f.nextID))
	f.nextID++
	f.rows = append([]domain.Quote{quote}, f.rows...)

	return quote, nil
}

func (f *fakeRepo) InsertBatch(_ context.Context, quotes []domain.Quote) error {
	if f.insertErr != nil {
		return f.insertErr
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	// Newest first: the batch lands at the front in batch order.
	withIDs := make([]domain.Quote, len(quotes))
	copy(withIDs, quotes)

	for i := range withIDs {
		withIDs[i].ID = "r-" + string(rune('0'+f.nextID))
		f.nextID++
	}

	f.rows = append(withIDs, f.rows...)

	return nil
}

func newLocalService(t *testing.T) *QuoteService {
	t.Helper()

	return NewQuoteService(QuoteServiceConfig{Store: memstore.New()})
}

func TestQuoteService_LoadLocalOnlySeedsSamples(t *testing.T) {
	svc := newLocalService(t)

	quotes, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, memstore.Samples(), quotes)
}

func TestQuoteService_LoadHydratesFromRepo(t *testing.T) {
	repo := newFakeRepo(
		domain.Quote{ID: "2", Text: "b", Author: "y"},
		domain.Quote{ID: "1", Text: "a", Author: "x"},
	)

	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: repo})

	quotes, err := svc.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	assert.Equal(t, "2", quotes[0].ID)
}

func TestQuoteService_LoadFallsBackOnRemoteFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.fetchErr = domain.NewUnavailableError("quote-table", "down")

	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: repo})

	// A dead remote never breaks the read path.
	quotes, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, memstore.Samples(), quotes)
}

func TestQuoteService_LoadEmptyRemoteSeedsSamples(t *testing.T) {
	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: newFakeRepo()})

	quotes, err := svc.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, memstore.Samples(), quotes)
}

func TestQuoteService_List(t *testing.T) {
	svc := newLocalService(t)
	store := svc.store
	store.Replace([]domain.Quote{
		{ID: "1", Text: "الصبر مفتاح الفرج", Author: "مثل"},
		{ID: "2", Text: "العلم نور", Author: "مثل"},
		{ID: "3", Text: "hello", Author: "x"},
	})

	t.Run("empty query returns all", func(t *testing.T) {
		assert.Len(t, svc.List(context.Background(), "", 0), 3)
	})

	t.Run("substring filter", func(t *testing.T) {
		got := svc.List(context.Background(), "العلم", 0)
		require.Len(t, got, 1)
		assert.Equal(t, "2", got[0].ID)
	})

	t.Run("limit caps results", func(t *testing.T) {
		got := svc.List(context.Background(), "", 2)
		require.Len(t, got, 2)
		assert.Equal(t, "1", got[0].ID)
	})
}

func TestQuoteService_GetAndShare(t *testing.T) {
	svc := newLocalService(t)
	svc.store.Replace([]domain.Quote{{ID: "q1", Text: "العلم نور", Author: "مثل"}})

	quote, err := svc.Get(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "العلم نور", quote.Text)

	text, err := svc.Share(context.Background(), "q1")
	require.NoError(t, err)
	assert.Equal(t, "\"العلم نور\" — مثل", text)

	_, err = svc.Get(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, domain.IsNotFound(err))
}

func TestQuoteService_AddLocalAssignsID(t *testing.T) {
	svc := newLocalService(t)

	quote, err := svc.Add(context.Background(), "  نص جديد ", "")
	require.NoError(t, err)

	assert.NotEmpty(t, quote.ID)
	assert.Equal(t, "نص جديد", quote.Text)
	assert.Equal(t, domain.UnknownAuthor, quote.Author)

	// New quote lands at the front.
	list := svc.List(context.Background(), "", 0)
	require.NotEmpty(t, list)
	assert.Equal(t, quote.ID, list[0].ID)
}

func TestQuoteService_AddRejectsEmptyText(t *testing.T) {
	svc := newLocalService(t)

	_, err := svc.Add(context.Background(), "   ", "x")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestQuoteService_AddRemoteConfirmedFirst(t *testing.T) {
	repo := newFakeRepo()
	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: repo})

	quote, err := svc.Add(context.Background(), "a", "x")
	require.NoError(t, err)

	// The stored quote carries the server-assigned ID.
	assert.Equal(t, "r-1", quote.ID)
	stored, ok := svc.store.Get("r-1")
	require.True(t, ok)
	assert.Equal(t, "a", stored.Text)
}

func TestQuoteService_AddSurfacesRemoteWriteFailure(t *testing.T) {
	repo := newFakeRepo()
	repo.insertErr = domain.NewUnavailableError("quote-table", "down")

	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: repo})

	_, err := svc.Add(context.Background(), "a", "x")
	require.Error(t, err)
	assert.True(t, domain.IsUnavailable(err))

	// Nothing was written locally either.
	assert.Equal(t, 0, svc.store.Len())
}

func TestQuoteService_AddBatchLocalPrependsBlock(t *testing.T) {
	svc := newLocalService(t)
	svc.store.Replace([]domain.Quote{{ID: "old", Text: "old"}})

	err := svc.AddBatch(context.Background(), []domain.Quote{
		{Text: "first", Author: "a"},
		{Text: "second", Author: "b"},
	})
	require.NoError(t, err)

	list := svc.store.List()
	require.Len(t, list, 3)

	// Batch order is preserved at the front of the list.
	assert.Equal(t, "first", list[0].Text)
	assert.Equal(t, "second", list[1].Text)
	assert.Equal(t, "old", list[2].Text)
	assert.NotEmpty(t, list[0].ID)
}

func TestQuoteService_AddBatchRemoteRefreshesStore(t *testing.T) {
	repo := newFakeRepo(domain.Quote{ID: "1", Text: "old", Author: "x"})
	svc := NewQuoteService(QuoteServiceConfig{Store: memstore.New(), Repository: repo})

	err := svc.AddBatch(context.Background(), []domain.Quote{{Text: "new", Author: "y"}})
	require.NoError(t, err)

	list := svc.store.List()
	require.Len(t, list, 2)
	assert.Equal(t, "new", list[0].Text)
	assert.NotEmpty(t, list[0].ID)
}
