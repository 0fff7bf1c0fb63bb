package pinecone

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeIndex is a minimal in-memory stand-in for the Pinecone data plane.
type fakeIndex struct {
	mu      sync.Mutex
	vectors map[string]vector
	queries []queryRequest
	apiKey  string
}

func newFakeIndex(t *testing.T) (*fakeIndex, *httptest.Server) {
	t.Helper()
	idx := &fakeIndex{vectors: make(map[string]vector)}
	mux := http.NewServeMux()
	mux.HandleFunc("POST /vectors/upsert", func(w http.ResponseWriter, r *http.Request) {
		idx.mu.Lock()
		defer idx.mu.Unlock()
		idx.apiKey = r.Header.Get("Api-Key")
		var req upsertRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		for _, v := range req.Vectors {
			idx.vectors[v.ID] = v
		}
		w.Write([]byte(`{"upsertedCount":1}`))
	})
	mux.HandleFunc("POST /query", func(w http.ResponseWriter, r *http.Request) {
		idx.mu.Lock()
		defer idx.mu.Unlock()
		var req queryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		idx.queries = append(idx.queries, req)
		var resp struct {
			Matches []map[string]any `json:"matches"`
		}
		for id, v := range idx.vectors {
			if len(resp.Matches) == req.TopK {
				break
			}
			resp.Matches = append(resp.Matches, map[string]any{"id": id, "score": 0.5, "metadata": v.Metadata})
		}
		json.NewEncoder(w).Encode(resp)
	})
	mux.HandleFunc("GET /describe_index_stats", func(w http.ResponseWriter, r *http.Request) {
		idx.mu.Lock()
		defer idx.mu.Unlock()
		json.NewEncoder(w).Encode(map[string]any{
			"dimension":        3,
			"totalVectorCount": len(idx.vectors),
			"namespaces":       map[string]any{"mods": map[string]any{"vectorCount": 7}},
		})
	})
	return idx, httptest.NewServer(mux)
}

func TestClient_UpsertQueryCount(t *testing.T) {
	idx, srv := newFakeIndex(t)
	defer srv.Close()

	c, err := newClient(srv.URL, WithDimension(3), WithAPIKey("key"))
	require.NoError(t, err)
	ctx := context.Background()

	attrs := core.Attributes{
		core.AttrType:       "base_mod",
		core.AttrDownloads:  int64(1234),
		core.AttrCategories: []string{"magic"},
	}
	require.NoError(t, c.Upsert(ctx, "mod_1_v1.0", []float32{1, 0, 0}, attrs))
	assert.Equal(t, "key", idx.apiKey)

	matches, err := c.Query(ctx, storage.Filter{core.AttrType: "base_mod"}, 1000)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, core.DocumentID("mod_1_v1.0"), matches[0].ID)
	assert.Equal(t, int64(1234), matches[0].Attributes[core.AttrDownloads])
	assert.Equal(t, []string{"magic"}, matches[0].Attributes[core.AttrCategories])

	// The snapshot query uses a zero vector of the index dimension.
	require.Len(t, idx.queries, 1)
	assert.Equal(t, []float32{0, 0, 0}, idx.queries[0].Vector)
	assert.Equal(t, 1000, idx.queries[0].TopK)
	assert.Equal(t, map[string]any{core.AttrType: map[string]any{"$eq": "base_mod"}}, idx.queries[0].Filter)

	count, err := c.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestClient_CountNamespace(t *testing.T) {
	_, srv := newFakeIndex(t)
	defer srv.Close()

	c, err := newClient(srv.URL, WithDimension(3), WithNamespace("mods"))
	require.NoError(t, err)

	count, err := c.Count(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, count)
}

func TestClient_UpsertValidation(t *testing.T) {
	c, err := newClient("http://127.0.0.1:1", WithDimension(3))
	require.NoError(t, err)
	ctx := context.Background()

	assert.ErrorIs(t, c.Upsert(ctx, "", []float32{1, 2, 3}, nil), storage.ErrInvalidQuery)
	assert.ErrorIs(t, c.Upsert(ctx, "a", nil, nil), storage.ErrEmptyVector)
	assert.ErrorIs(t, c.Upsert(ctx, "a", []float32{1}, nil), storage.ErrDimensionMismatch)
}

func TestClient_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "index unavailable", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c, err := newClient(srv.URL, WithDimension(2))
	require.NoError(t, err)

	err = c.Upsert(context.Background(), "a", []float32{1, 2}, nil)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.Contains(t, err.Error(), "index unavailable")

	_, err = c.Search(context.Background(), []float32{1, 2}, nil, 5)
	assert.ErrorIs(t, err, ErrRequestFailed)
}

func TestNewClient_Defaults(t *testing.T) {
	c, err := newClient("")
	require.NoError(t, err)
	assert.Equal(t, DefaultHost, c.host)
	assert.Equal(t, DefaultDimension, c.dimension)

	_, err = newClient("", WithDimension(0))
	assert.Error(t, err)
}

func TestDecodeMetadata(t *testing.T) {
	attrs := decodeMetadata(map[string]any{
		"whole":  float64(42),
		"frac":   1.5,
		"list":   []any{"a", "b"},
		"text":   "x",
		"truthy": true,
	})
	assert.Equal(t, int64(42), attrs["whole"])
	assert.Equal(t, 1.5, attrs["frac"])
	assert.Equal(t, []string{"a", "b"}, attrs["list"])
	assert.Equal(t, "x", attrs["text"])
	assert.Equal(t, true, attrs["truthy"])
}
