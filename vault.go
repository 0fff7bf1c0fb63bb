// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package packvault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/ai/ollama"
	"github.com/poiesic/packvault/ai/openai"
	"github.com/poiesic/packvault/catalog"
	"github.com/poiesic/packvault/catalog/curseforge"
	"github.com/poiesic/packvault/catalog/modrinth"
	"github.com/poiesic/packvault/config"
	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/ingestion"
	"github.com/poiesic/packvault/search"
	"github.com/poiesic/packvault/storage"
	"github.com/poiesic/packvault/storage/badger"
	"github.com/poiesic/packvault/storage/pinecone"
)

// Vault wires a vector store, an embedding provider and the metadata
// catalogs together from a config.Config.
type Vault struct {
	config   *config.Config
	store    storage.VectorStore
	provider ai.AIProvider
	fetcher  *catalog.Fetcher
	logger   *slog.Logger

	ownsStore    bool
	ownsProvider bool
}

// VaultOption configures a Vault.
type VaultOption func(*vaultOptions)

type vaultOptions struct {
	store    storage.VectorStore
	provider ai.AIProvider
	catalogs []catalog.Catalog
	logger   *slog.Logger
}

// WithStore uses store instead of opening the configured one.
// The caller keeps ownership of store.
func WithStore(store storage.VectorStore) VaultOption {
	return func(o *vaultOptions) {
		o.store = store
	}
}

// WithProvider uses provider instead of the configured embedding service.
// The caller keeps ownership of provider.
func WithProvider(provider ai.AIProvider) VaultOption {
	return func(o *vaultOptions) {
		o.provider = provider
	}
}

// WithCatalogs replaces the configured catalogs.
func WithCatalogs(catalogs ...catalog.Catalog) VaultOption {
	return func(o *vaultOptions) {
		o.catalogs = catalogs
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) VaultOption {
	return func(o *vaultOptions) {
		o.logger = logger
	}
}

// Open validates cfg and opens everything it describes.
func Open(cfg *config.Config, opts ...VaultOption) (*Vault, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	options := &vaultOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	v := &Vault{
		config: cfg,
		logger: options.logger.With("component", "vault"),
	}

	if options.catalogs == nil {
		catalogs, err := openCatalogs(cfg)
		if err != nil {
			return nil, err
		}
		options.catalogs = catalogs
	}
	fetcher, err := catalog.NewFetcher(options.catalogs, catalog.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}
	v.fetcher = fetcher

	v.provider = options.provider
	if v.provider == nil {
		provider, err := openProvider(cfg.AI())
		if err != nil {
			return nil, err
		}
		v.provider = provider
		v.ownsProvider = true
	}

	v.store = options.store
	if v.store == nil {
		store, err := openStore(cfg, options.logger)
		if err != nil {
			v.Close()
			return nil, err
		}
		v.store = store
		v.ownsStore = true
	}

	return v, nil
}

func openCatalogs(cfg *config.Config) ([]catalog.Catalog, error) {
	var catalogs []catalog.Catalog
	for _, name := range cfg.CatalogOrder() {
		switch name {
		case core.OriginCurseForge:
			opts := []curseforge.Option{curseforge.WithTimeout(cfg.Catalogs.Timeout)}
			if cfg.Catalogs.CurseForgeBaseURL != "" {
				opts = append(opts, curseforge.WithBaseURL(cfg.Catalogs.CurseForgeBaseURL))
			}
			c, err := curseforge.NewClient(cfg.Catalogs.CurseForgeAPIKey, opts...)
			if err != nil {
				return nil, err
			}
			catalogs = append(catalogs, c)
		case core.OriginModrinth:
			opts := []modrinth.Option{
				modrinth.WithTimeout(cfg.Catalogs.Timeout),
				modrinth.WithToken(cfg.Catalogs.ModrinthToken),
			}
			if cfg.Catalogs.ModrinthBaseURL != "" {
				opts = append(opts, modrinth.WithBaseURL(cfg.Catalogs.ModrinthBaseURL))
			}
			c, err := modrinth.NewClient(opts...)
			if err != nil {
				return nil, err
			}
			catalogs = append(catalogs, c)
		}
	}
	return catalogs, nil
}

func openProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		return openai.NewProvider(cfg)
	default:
		return ollama.NewProvider(cfg)
	}
}

func openStore(cfg *config.Config, logger *slog.Logger) (storage.VectorStore, error) {
	switch cfg.Store.Backend {
	case config.StorePinecone:
		opts := []pinecone.Option{
			pinecone.WithAPIKey(cfg.Store.PineconeAPIKey),
			pinecone.WithNamespace(cfg.Store.Namespace),
			pinecone.WithDimension(cfg.Embedding.Dimension),
		}
		if cfg.Store.Timeout > 0 {
			opts = append(opts, pinecone.WithTimeout(cfg.Store.Timeout))
		}
		return pinecone.NewClient(cfg.Store.PineconeHost, opts...)
	default:
		return badger.OpenDocumentStore(cfg.Store.Path, cfg.Store.InMemory,
			badger.WithDimension(cfg.Embedding.Dimension),
			badger.WithLogger(logger))
	}
}

// Close releases what Open created. Stores and providers passed in through
// options are left open.
func (v *Vault) Close() error {
	var errs []error
	if v.ownsProvider && v.provider != nil {
		if err := v.provider.Close(); err != nil {
			v.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if v.ownsStore && v.store != nil {
		if err := v.store.Close(); err != nil {
			v.logger.Error("error closing vector store", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (v *Vault) Config() *config.Config {
	return v.config
}

func (v *Vault) Store() storage.VectorStore {
	return v.store
}

func (v *Vault) Fetcher() *catalog.Fetcher {
	return v.fetcher
}

func (v *Vault) Embedder() ai.Embedder {
	return v.provider.Embedder()
}

// NewIngestionPipeline creates a pipeline tuned by the pipeline section of
// the config. opts are applied after the configured ones.
func (v *Vault) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	p := v.config.Pipeline
	configured := []ingestion.Option{
		ingestion.WithPoolSize(p.Workers),
		ingestion.WithDispatchInterval(p.DispatchInterval),
		ingestion.WithSnapshotLimit(p.SnapshotLimit),
		ingestion.WithOverrideLimit(p.OverrideLimit),
		ingestion.WithLogger(v.logger),
	}
	return ingestion.NewPipeline(v.fetcher, v.provider.Embedder(), v.store, append(configured, opts...)...)
}

func (v *Vault) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(v.provider.Embedder(), v.store,
		append([]search.Option{search.WithLogger(v.logger)}, opts...)...)
}

// Status summarizes the stored documents.
type Status struct {
	Documents int
	// ByType counts documents per type attribute, from one snapshot query.
	ByType map[string]int
	// Truncated is set when the snapshot query hit its limit.
	Truncated bool
}

// Types returns the keys of ByType in sorted order.
func (s Status) Types() []string {
	return slices.Sorted(maps.Keys(s.ByType))
}

// Status counts stored documents and reads their types from one query of
// at most the configured snapshot limit.
func (v *Vault) Status(ctx context.Context) (Status, error) {
	count, err := v.store.Count(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("counting documents: %w", err)
	}

	limit := v.config.Pipeline.SnapshotLimit
	matches, err := v.store.Query(ctx, nil, limit)
	if err != nil {
		return Status{}, fmt.Errorf("querying documents: %w", err)
	}

	status := Status{
		Documents: count,
		ByType:    make(map[string]int),
		Truncated: len(matches) >= limit,
	}
	for _, m := range matches {
		kind := m.Attributes.String(core.AttrType)
		if kind == "" {
			kind = "unknown"
		}
		status.ByType[kind]++
	}
	return status, nil
}
