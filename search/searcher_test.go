package search

import (
	"context"
	"log/slog"
	"testing"

	"github.com/poiesic/packvault/ai/mock"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
	"github.com/poiesic/packvault/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingMonitor captures monitor callbacks for assertions.
type recordingMonitor struct {
	query     string
	dimension int
	fetched   int
	dropped   []core.DocumentID
	finished  int
}

func (m *recordingMonitor) Start(query string) { m.query = query }
func (m *recordingMonitor) AfterEmbedding(dimension int) { m.dimension = dimension }
func (m *recordingMonitor) AfterStoreSearch(matches []storage.Match) { m.fetched = len(matches) }
func (m *recordingMonitor) Dropped(match storage.Match) { m.dropped = append(m.dropped, match.ID) }
func (m *recordingMonitor) Finish(results []storage.Match) { m.finished = len(results) }

func setupStore(t *testing.T, embedder *mock.MockEmbedder) storage.VectorStore {
	t.Helper()
	store, err := badger.NewMemoryStore()
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	docs := []struct {
		id   core.DocumentID
		kind core.DocumentType
		text string
	}{
		{"mod_238222_v15.2.0", core.DocumentTypeMod, "Just Enough Items shows recipes and item uses"},
		{"mod_394468_v0.5.3", core.DocumentTypeMod, "Sodium is a rendering engine that improves frame rates"},
		{"mod_306612_v1.0", core.DocumentTypeMod, "Create adds mechanical contraptions and rotational power"},
		{"pack_atm_1.0", core.DocumentTypePack, "All the Mods pack overview with JEI recipes"},
	}
	ctx := context.Background()
	for _, d := range docs {
		vector, err := embedder.EmbedText(ctx, d.text)
		require.NoError(t, err)
		require.NoError(t, store.Upsert(ctx, d.id, vector, core.Attributes{
			core.AttrType: string(d.kind),
			core.AttrText: d.text,
		}))
	}
	embedder.Reset()
	return store
}

func TestNewSearcher(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)

	t.Run("valid configuration", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, store)
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with custom logger", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, store, WithLogger(slog.Default()))
		require.NoError(t, err)
		assert.NotNil(t, searcher)
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		searcher, err := NewSearcher(embedder, store, WithLogger(nil))
		require.NoError(t, err)
		assert.NotNil(t, searcher.logger)
	})

	t.Run("nil embedder", func(t *testing.T) {
		_, err := NewSearcher(nil, store)
		assert.Equal(t, ErrEmbedderRequired, err)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewSearcher(embedder, nil)
		assert.Equal(t, ErrStoreRequired, err)
	})
}

func TestSearch_ExactTextRanksFirst(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)
	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(),
		"Sodium is a rendering engine that improves frame rates", 2, nil)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, core.DocumentID("mod_394468_v0.5.3"), results[0].ID)
	assert.InDelta(t, 1.0, results[0].Score, 1e-4)
	assert.GreaterOrEqual(t, results[0].Score, results[1].Score)
	assert.Equal(t, 1, embedder.CallCount())
}

func TestSearch_Filter(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)
	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "recipes", 10,
		storage.Filter{core.AttrType: string(core.DocumentTypePack)})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, core.DocumentID("pack_atm_1.0"), results[0].ID)
}

func TestSearch_Verbatim(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)
	searcher, err := NewSearcher(embedder, store, WithVerbatim(true))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	results, err := searcher.SearchWithMonitor(context.Background(), "the JEI recipes", 10, nil, monitor)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.Equal(t, core.DocumentID("pack_atm_1.0"), results[0].ID)
	assert.Equal(t, "the JEI recipes", monitor.query)
	assert.Equal(t, mock.DefaultDimension, monitor.dimension)
	assert.Equal(t, 4, monitor.fetched)
	assert.Len(t, monitor.dropped, 3)
	assert.Equal(t, 1, monitor.finished)
}

func TestSearch_MaxHits(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)
	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	results, err := searcher.Search(context.Background(), "mods", 1, nil)
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = searcher.Search(context.Background(), "mods", 0, nil)
	require.NoError(t, err)
	assert.Len(t, results, 4, "zero falls back to the default")
}

func TestSearch_Errors(t *testing.T) {
	embedder := mock.NewMockEmbedder()
	store := setupStore(t, embedder)
	searcher, err := NewSearcher(embedder, store)
	require.NoError(t, err)

	_, err = searcher.Search(context.Background(), "   ", 5, nil)
	assert.ErrorIs(t, err, ErrEmptyQuery)

	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, assert.AnError
	}
	_, err = searcher.Search(context.Background(), "jei", 5, nil)
	assert.ErrorIs(t, err, assert.AnError)
}

func TestContainsAllQueryWords(t *testing.T) {
	tests := []struct {
		name     string
		document string
		query    string
		want     bool
	}{
		{"all words present", "Just Enough Items shows recipes", "items recipes", true},
		{"punctuation and case ignored", "Shows RECIPES, items!", "recipes? Items.", true},
		{"stop words ignored", "recipes for every item", "the recipes of an item", true},
		{"missing word", "Just Enough Items", "items recipes", false},
		{"hyphenated names split", "# Just-Enough-Items (JEI)", "enough items", true},
		{"versions kept whole", "Minecraft: 1.20.1", "1.20.1", true},
		{"version prefix is not a match", "Minecraft: 1.20.1", "1.20", false},
		{"only stop words", "anything", "the and of", false},
		{"empty query", "anything", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, containsAllQueryWords(tt.document, tt.query))
		})
	}
}
