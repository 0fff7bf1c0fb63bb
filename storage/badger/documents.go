package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
)

// DocumentStore is an embedded storage.VectorStore backed by BadgerDB.
// Vectors are normalized on write so Search can score by dot product.
type DocumentStore struct {
	backend     *Backend
	ownsBackend bool
	dimension   int
	logger      *slog.Logger
}

var _ storage.VectorStore = (*DocumentStore)(nil)

// Option configures a DocumentStore.
type Option func(*DocumentStore) error

// WithDimension makes Upsert reject vectors of any other length.
// Zero (the default) accepts any non-empty vector.
func WithDimension(dimension int) Option {
	return func(s *DocumentStore) error {
		if dimension < 0 {
			return fmt.Errorf("invalid dimension %d", dimension)
		}
		s.dimension = dimension
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *DocumentStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewDocumentStore creates a store on an open backend.
// The caller keeps ownership of the backend.
func NewDocumentStore(backend *Backend, opts ...Option) (storage.VectorStore, error) {
	return newDocumentStore(backend, opts...)
}

// OpenDocumentStore opens a backend at filePath and creates a store that
// closes it on Close.
func OpenDocumentStore(filePath string, inMemory bool, opts ...Option) (storage.VectorStore, error) {
	backend, err := OpenBackend(filePath, inMemory)
	if err != nil {
		return nil, err
	}
	s, err := newDocumentStore(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	s.ownsBackend = true
	return s, nil
}

func newDocumentStore(backend *Backend, opts ...Option) (*DocumentStore, error) {
	if backend == nil {
		return nil, errors.New("backend required")
	}
	s := &DocumentStore{
		backend: backend,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "badger-store")
	return s, nil
}

// Upsert implements storage.VectorStore.
func (s *DocumentStore) Upsert(ctx context.Context, id core.DocumentID, vector []float32, attrs core.Attributes) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	if id == "" {
		return fmt.Errorf("%w: empty document id", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return storage.ErrEmptyVector
	}
	if s.dimension > 0 && len(vector) != s.dimension {
		return fmt.Errorf("%w: got %d, want %d", storage.ErrDimensionMismatch, len(vector), s.dimension)
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := storage.MarshalDocument(&storage.StoredDocument{
		ID:         id,
		Vector:     unitVector(vector),
		Attributes: attrs,
	})
	if err != nil {
		return err
	}

	err = s.backend.Update(func(tx *badger.Txn) error {
		return tx.Set(makeDocumentKey(id), data)
	})
	if err != nil {
		s.logger.Error("failed to upsert document", "id", id, "err", err)
		return err
	}
	return nil
}

// Get returns the stored document with the given id.
// Returns storage.ErrNotFound if it doesn't exist.
func (s *DocumentStore) Get(ctx context.Context, id core.DocumentID) (*storage.StoredDocument, error) {
	var doc *storage.StoredDocument
	err := s.backend.View(func(tx *badger.Txn) error {
		item, err := tx.Get(makeDocumentKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return storage.ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			doc, err = storage.UnmarshalDocument(val)
			return err
		})
	})
	return doc, err
}

// Query implements storage.VectorStore. Documents are visited in key order.
func (s *DocumentStore) Query(ctx context.Context, filter storage.Filter, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	var matches []storage.Match
	err := s.scan(ctx, func(doc *storage.StoredDocument) bool {
		if !filter.Matches(doc.Attributes) {
			return true
		}
		matches = append(matches, storage.Match{ID: doc.ID, Attributes: doc.Attributes})
		return len(matches) < limit
	})
	if err != nil {
		return nil, err
	}
	return matches, nil
}

// Search implements storage.VectorStore.
func (s *DocumentStore) Search(ctx context.Context, vector []float32, filter storage.Filter, limit int) ([]storage.Match, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}
	if len(vector) == 0 {
		return nil, storage.ErrEmptyVector
	}
	query := unitVector(vector)

	var matches []storage.Match
	err := s.scan(ctx, func(doc *storage.StoredDocument) bool {
		if filter.Matches(doc.Attributes) {
			matches = append(matches, storage.Match{
				ID:         doc.ID,
				Score:      dot(query, doc.Vector),
				Attributes: doc.Attributes,
			})
		}
		return true
	})
	if err != nil {
		return nil, err
	}

	// Sort by similarity descending, id ascending for ties
	slices.SortFunc(matches, func(a, b storage.Match) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		case a.ID < b.ID:
			return -1
		case a.ID > b.ID:
			return 1
		}
		return 0
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

// Count implements storage.VectorStore.
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	count := 0
	err := s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return ctx.Err()
	})
	return count, err
}

// Close implements storage.VectorStore. The backend is closed only when the
// store opened it.
func (s *DocumentStore) Close() error {
	if s.ownsBackend {
		return s.backend.Close()
	}
	return nil
}

// scan visits every stored document until visit returns false.
func (s *DocumentStore) scan(ctx context.Context, visit func(doc *storage.StoredDocument) bool) error {
	return s.backend.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(documentPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var doc *storage.StoredDocument
			err := iter.Item().Value(func(val []byte) error {
				var err error
				doc, err = storage.UnmarshalDocument(val)
				return err
			})
			if err != nil {
				return err
			}
			if !visit(doc) {
				return nil
			}
		}
		return nil
	})
}
