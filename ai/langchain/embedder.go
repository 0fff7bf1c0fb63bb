// Package langchain adapts langchaingo embedding clients to ai.Embedder.
//
// The ollama and openai packages only build their langchaingo client; the
// batching, newline stripping and vector checks live here.
package langchain

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/packvault/ai"
	"github.com/tmc/langchaingo/embeddings"
)

// Embedder wraps a langchaingo client. It is safe for concurrent use.
type Embedder struct {
	embedder embeddings.Embedder
	config   *ai.Config
	logger   *slog.Logger
}

// NewEmbedder wraps client. name tags log records, e.g. "ollama".
func NewEmbedder(client embeddings.EmbedderClient, config *ai.Config, name string) (*Embedder, error) {
	embedder, err := embeddings.NewEmbedder(client,
		embeddings.WithStripNewLines(true),
		embeddings.WithBatchSize(config.BatchSize),
	)
	if err != nil {
		return nil, err
	}

	return &Embedder{
		embedder: embedder,
		config:   config,
		logger:   slog.Default().With("component", name+"-embedder", "model", config.EmbeddingModel),
	}, nil
}

// EmbedText implements ai.Embedder.
func (e *Embedder) EmbedText(ctx context.Context, text string) ([]float32, error) {
	vectors, err := e.EmbedTexts(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

// EmbedTexts implements ai.Embedder. Every returned vector is non-empty and
// has the configured dimension.
func (e *Embedder) EmbedTexts(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	e.logger.Debug("generating embeddings", "count", len(texts))

	vectors, err := e.embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		e.logger.Error("failed to generate embeddings", "count", len(texts), "err", err)
		return nil, err
	}
	if len(vectors) != len(texts) {
		e.logger.Warn("embedder returned too few vectors", "want", len(texts), "got", len(vectors))
		return nil, fmt.Errorf("%w: %d vectors for %d texts", ai.ErrEmptyEmbedding, len(vectors), len(texts))
	}
	for i, v := range vectors {
		if len(v) == 0 {
			return nil, fmt.Errorf("%w: text %d", ai.ErrEmptyEmbedding, i)
		}
		if err := e.config.CheckDimension(v); err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
	}
	return vectors, nil
}
