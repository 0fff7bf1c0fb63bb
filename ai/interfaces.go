package ai

import "context"

// Embedder turns document text and search queries into vectors.
// Implementations must be safe for concurrent use; the ingestion workers
// share one Embedder.
type Embedder interface {
	// EmbedText returns the vector for one text. It never returns an empty
	// vector without an error; ErrEmptyEmbedding covers that case.
	EmbedText(ctx context.Context, text string) ([]float32, error)

	// EmbedTexts returns one vector per text, in input order.
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// AIProvider owns an Embedder and the client behind it.
type AIProvider interface {
	Embedder() Embedder

	// Close releases the client. The Embedder must not be used afterwards.
	Close() error
}
