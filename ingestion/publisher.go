package ingestion

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/storage"
)

// Publisher embeds canonical documents and writes them to a vector store.
type Publisher struct {
	embedder ai.Embedder
	store    storage.VectorStore
	logger   *slog.Logger
}

// NewPublisher requires an embedder and a store. A nil logger uses slog.Default.
func NewPublisher(embedder ai.Embedder, store storage.VectorStore, logger *slog.Logger) (*Publisher, error) {
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		embedder: embedder,
		store:    store,
		logger:   logger.With("component", "publisher"),
	}, nil
}

// Publish embeds doc.Text and upserts the vector with doc's attributes.
// Failures wrap ErrPublishFailed and name the stage that broke.
func (p *Publisher) Publish(ctx context.Context, doc core.CanonicalDocument) error {
	vector, err := p.Embed(ctx, doc)
	if err != nil {
		return err
	}
	return p.Upsert(ctx, doc, vector)
}

// Embed returns the embedding for doc.Text. Empty vectors are rejected.
func (p *Publisher) Embed(ctx context.Context, doc core.CanonicalDocument) ([]float32, error) {
	if err := core.ValidateDocument(&doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrPublishFailed, doc.ID, err)
	}
	vector, err := p.embedder.EmbedText(ctx, doc.Text)
	if err != nil {
		return nil, fmt.Errorf("%w: embedding %s: %w", ErrPublishFailed, doc.ID, err)
	}
	if len(vector) == 0 {
		return nil, fmt.Errorf("%w: embedding %s: %w", ErrPublishFailed, doc.ID, ai.ErrEmptyEmbedding)
	}
	return vector, nil
}

// Upsert writes doc with a vector produced by Embed.
func (p *Publisher) Upsert(ctx context.Context, doc core.CanonicalDocument, vector []float32) error {
	if err := p.store.Upsert(ctx, doc.ID, vector, doc.Attributes); err != nil {
		return fmt.Errorf("%w: upserting %s: %w", ErrPublishFailed, doc.ID, err)
	}
	p.logger.Debug("published document", "id", doc.ID, "dimension", len(vector))
	return nil
}
