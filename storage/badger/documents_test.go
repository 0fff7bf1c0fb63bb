package badger

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T, opts ...Option) *DocumentStore {
	t.Helper()
	backend, err := OpenBackend("", true)
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	s, err := newDocumentStore(backend, opts...)
	require.NoError(t, err)
	return s
}

func modAttrs(project string) core.Attributes {
	return core.Attributes{
		core.AttrType:       string(core.DocumentTypeMod),
		core.AttrProjectID:  project,
		core.AttrCategories: []string{"tech"},
	}
}

func TestDocumentStore_UpsertAndGet(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	err := s.Upsert(ctx, "mod_1_v1.0", []float32{3, 4}, modAttrs("1"))
	require.NoError(t, err)

	doc, err := s.Get(ctx, "mod_1_v1.0")
	require.NoError(t, err)
	assert.Equal(t, core.DocumentID("mod_1_v1.0"), doc.ID)
	assert.InDelta(t, 0.6, doc.Vector[0], 1e-6)
	assert.Equal(t, "1", doc.Attributes.String(core.AttrProjectID))

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestDocumentStore_UpsertReplaces(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "mod_1_v1.0", []float32{1, 0}, modAttrs("1")))
	require.NoError(t, s.Upsert(ctx, "mod_1_v1.0", []float32{0, 1}, modAttrs("1")))

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	doc, err := s.Get(ctx, "mod_1_v1.0")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, doc.Vector)
}

func TestDocumentStore_UpsertValidation(t *testing.T) {
	s := newTestStore(t, WithDimension(3))
	ctx := context.Background()

	assert.ErrorIs(t, s.Upsert(ctx, "", []float32{1, 2, 3}, nil), storage.ErrInvalidQuery)
	assert.ErrorIs(t, s.Upsert(ctx, "a", nil, nil), storage.ErrEmptyVector)
	assert.ErrorIs(t, s.Upsert(ctx, "a", []float32{1, 2}, nil), storage.ErrDimensionMismatch)
	assert.ErrorIs(t, s.Upsert(ctx, "a", []float32{1, 2, 3}, core.Attributes{"n": 1}), storage.ErrSerializationFailed)
}

func TestDocumentStore_Query(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Upsert(ctx, core.ModDocumentID(fmt.Sprint(i), "1.0"), []float32{1, float32(i)}, modAttrs(fmt.Sprint(i))))
	}
	require.NoError(t, s.Upsert(ctx, "pack_P_1.0", []float32{1, 1}, core.Attributes{core.AttrType: string(core.DocumentTypePack)}))

	all, err := s.Query(ctx, nil, 100)
	require.NoError(t, err)
	assert.Len(t, all, 6)

	mods, err := s.Query(ctx, storage.Filter{core.AttrType: "base_mod"}, 100)
	require.NoError(t, err)
	assert.Len(t, mods, 5)

	truncated, err := s.Query(ctx, nil, 2)
	require.NoError(t, err)
	assert.Len(t, truncated, 2)

	_, err = s.Query(ctx, nil, 0)
	assert.ErrorIs(t, err, storage.ErrInvalidQuery)
}

func TestDocumentStore_Search(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Upsert(ctx, "north", []float32{0, 1}, modAttrs("n")))
	require.NoError(t, s.Upsert(ctx, "east", []float32{1, 0}, modAttrs("e")))
	require.NoError(t, s.Upsert(ctx, "northeast", []float32{1, 1}, core.Attributes{core.AttrType: "pack_overview"}))

	results, err := s.Search(ctx, []float32{0, 2}, nil, 10)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, core.DocumentID("north"), results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-6)
	assert.Equal(t, core.DocumentID("northeast"), results[1].ID)
	assert.Equal(t, core.DocumentID("east"), results[2].ID)

	filtered, err := s.Search(ctx, []float32{0, 2}, storage.Filter{core.AttrType: "base_mod"}, 1)
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	assert.Equal(t, core.DocumentID("north"), filtered[0].ID)

	_, err = s.Search(ctx, nil, nil, 1)
	assert.ErrorIs(t, err, storage.ErrEmptyVector)
}

func TestDocumentStore_ConcurrentUpserts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			id := core.ModDocumentID(fmt.Sprint(i%10), "1.0")
			assert.NoError(t, s.Upsert(ctx, id, []float32{1, float32(i)}, modAttrs(fmt.Sprint(i%10))))
		}(i)
	}
	wg.Wait()

	count, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 10, count)
}

func TestDocumentStore_Closed(t *testing.T) {
	store, err := NewMemoryStore()
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Upsert(context.Background(), "a", []float32{1}, nil)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = store.Query(context.Background(), nil, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestNewDocumentStore_RequiresBackend(t *testing.T) {
	_, err := NewDocumentStore(nil)
	assert.Error(t, err)
}
