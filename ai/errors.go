package ai

import "errors"

var (
	// ErrDimensionMismatch is returned when an embedding has an unexpected length.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrEmptyEmbedding is returned when the service answers without a vector.
	ErrEmptyEmbedding = errors.New("embedder returned an empty result")
)
