package search

import (
	"context"
	"log/slog"
	"strings"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
)

// DefaultMaxHits is used when a caller asks for zero or fewer hits.
const DefaultMaxHits = 5

// verbatimOverfetch widens the store search when verbatim filtering will
// drop some of the hits.
const verbatimOverfetch = 4

// Searcher embeds queries and delegates ranking to the vector store.
type Searcher struct {
	embedder ai.Embedder
	store    storage.VectorStore
	verbatim bool
	logger   *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithVerbatim keeps only hits whose text contains every non-stop-word of the query.
func WithVerbatim(verbatim bool) Option {
	return func(s *Searcher) error {
		s.verbatim = verbatim
		return nil
	}
}

// NewSearcher creates a new searcher.
func NewSearcher(embedder ai.Embedder, store storage.VectorStore, opts ...Option) (*Searcher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		embedder: embedder,
		store:    store,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search returns up to maxHits documents matching filter, in the order the
// store ranks them.
func (s *Searcher) Search(ctx context.Context, query string, maxHits int, filter storage.Filter) ([]storage.Match, error) {
	return s.SearchWithMonitor(ctx, query, maxHits, filter, nil)
}

// SearchWithMonitor is Search with callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, maxHits int, filter storage.Filter, monitor SearchMonitor) ([]storage.Match, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	if strings.TrimSpace(query) == "" {
		return nil, ErrEmptyQuery
	}
	if maxHits < 1 {
		maxHits = DefaultMaxHits
	}

	monitor.Start(query)

	embedding, err := s.embedder.EmbedText(ctx, query)
	if err != nil {
		s.logger.Error("error generating embedding for query", "query", query, "err", err)
		return nil, err
	}
	if len(embedding) == 0 {
		return nil, ai.ErrEmptyEmbedding
	}
	monitor.AfterEmbedding(len(embedding))

	limit := maxHits
	if s.verbatim {
		limit *= verbatimOverfetch
	}
	matches, err := s.store.Search(ctx, embedding, filter, limit)
	if err != nil {
		s.logger.Error("error searching store", "err", err)
		return nil, err
	}
	monitor.AfterStoreSearch(matches)

	results := matches
	if s.verbatim {
		results = make([]storage.Match, 0, len(matches))
		for _, m := range matches {
			if !containsAllQueryWords(m.Attributes.String(core.AttrText), query) {
				monitor.Dropped(m)
				continue
			}
			results = append(results, m)
		}
	}
	if len(results) > maxHits {
		results = results[:maxHits]
	}
	monitor.Finish(results)

	return results, nil
}
