package ingestion

import "errors"

var (
	// ErrFetcherRequired is returned when a metadata fetcher is not provided.
	ErrFetcherRequired = errors.New("metadata fetcher required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrStoreRequired is returned when a vector store is not provided.
	ErrStoreRequired = errors.New("vector store required")

	// ErrManifestRequired is returned when RunPack is called without a manifest.
	ErrManifestRequired = errors.New("manifest required")

	// ErrFetchFailed marks a reference whose metadata could not be fetched
	// from any catalog.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrPublishFailed marks a document that could not be embedded or
	// written to the store.
	ErrPublishFailed = errors.New("publish failed")
)
