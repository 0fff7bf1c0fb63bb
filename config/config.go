// Package config provides configuration loading for packvault.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/core"
)

// Store backends.
const (
	StoreBadger   = "badger"
	StorePinecone = "pinecone"
)

// Environment variables that override credentials from the file.
const (
	EnvCurseForgeAPIKey = "CURSEFORGE_API_KEY"
	EnvModrinthToken    = "MODRINTH_TOKEN"
	EnvPineconeAPIKey   = "PINECONE_API_KEY"
)

// Config represents the complete packvault configuration
type Config struct {
	Catalogs  CatalogsConfig  `yaml:"catalogs"`
	Store     StoreConfig     `yaml:"store"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Pipeline  PipelineConfig  `yaml:"pipeline"`
}

// CatalogsConfig configures the metadata catalogs
type CatalogsConfig struct {
	// Order is the default lookup order; a pack's own origin is always tried first.
	Order []string `yaml:"order"`
	// CurseForgeAPIKey enables the CurseForge catalog. Without it only Modrinth is used.
	CurseForgeAPIKey string `yaml:"curseforge_api_key"`
	// CurseForgeBaseURL overrides the CurseForge API base URL
	CurseForgeBaseURL string `yaml:"curseforge_base_url"`
	// ModrinthToken is sent as the Authorization header (optional)
	ModrinthToken string `yaml:"modrinth_token"`
	// ModrinthBaseURL overrides the Modrinth API base URL
	ModrinthBaseURL string `yaml:"modrinth_base_url"`
	// Timeout bounds each catalog HTTP request
	Timeout time.Duration `yaml:"timeout"`
}

// StoreConfig selects and configures the vector store
type StoreConfig struct {
	// Backend is "badger" (embedded) or "pinecone"
	Backend string `yaml:"backend"`
	// Path is the BadgerDB directory
	Path string `yaml:"path"`
	// InMemory keeps the BadgerDB store in memory
	InMemory bool `yaml:"in_memory"`
	// PineconeHost is the index host (default: http://localhost:5081, Pinecone Local)
	PineconeHost string `yaml:"pinecone_host"`
	// PineconeAPIKey is sent as the Api-Key header (optional for Pinecone Local)
	PineconeAPIKey string `yaml:"pinecone_api_key"`
	// Namespace partitions the Pinecone index
	Namespace string `yaml:"namespace"`
	// Timeout bounds each Pinecone HTTP request
	Timeout time.Duration `yaml:"timeout"`
}

// EmbeddingConfig configures the embedding service
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai"
	Provider string `yaml:"provider"`
	// Host is the embedding service base URL
	Host string `yaml:"host"`
	// Model is the embedding model name
	Model string `yaml:"model"`
	// APIKey for OpenAI-compatible services
	APIKey string `yaml:"api_key"`
	// Dimension is the embedding length; stores reject other lengths
	Dimension int `yaml:"dimension"`
	// BatchSize caps texts per batch request
	BatchSize int `yaml:"batch_size"`
}

// PipelineConfig tunes ingestion
type PipelineConfig struct {
	// Workers is the number of references processed concurrently
	Workers int `yaml:"workers"`
	// DispatchInterval is the minimum delay between dispatches
	DispatchInterval time.Duration `yaml:"dispatch_interval"`
	// SnapshotLimit caps the dedup snapshot query
	SnapshotLimit int `yaml:"snapshot_limit"`
	// OverrideLimit caps override scripts per pack (0 = all, negative = none)
	OverrideLimit int `yaml:"override_limit"`
	// ProgressInterval prints progress every N references
	ProgressInterval int `yaml:"progress_interval"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	aiDefaults := ai.DefaultConfig()
	return &Config{
		Catalogs: CatalogsConfig{
			Order:   []string{core.OriginCurseForge, core.OriginModrinth},
			Timeout: 15 * time.Second,
		},
		Store: StoreConfig{
			Backend:      StoreBadger,
			Path:         "packvault.db",
			PineconeHost: "http://localhost:5081",
			Timeout:      30 * time.Second,
		},
		Embedding: EmbeddingConfig{
			Provider:  aiDefaults.Provider,
			Host:      aiDefaults.EmbeddingHost,
			Model:     aiDefaults.EmbeddingModel,
			Dimension: aiDefaults.Dimension,
			BatchSize: aiDefaults.BatchSize,
		},
		Pipeline: PipelineConfig{
			Workers:          5,
			DispatchInterval: 100 * time.Millisecond,
			SnapshotLimit:    10000,
			OverrideLimit:    0,
			ProgressInterval: 25,
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	var errs []error

	if len(c.Catalogs.Order) == 0 {
		errs = append(errs, errors.New("catalogs.order must name at least one catalog"))
	}
	for _, name := range c.Catalogs.Order {
		if name != core.OriginCurseForge && name != core.OriginModrinth {
			errs = append(errs, fmt.Errorf("catalogs.order: unknown catalog %q", name))
		}
	}
	if c.Catalogs.Timeout < 0 {
		errs = append(errs, errors.New("catalogs.timeout cannot be negative"))
	}

	switch c.Store.Backend {
	case StoreBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			errs = append(errs, errors.New("store.path is required for the badger backend"))
		}
	case StorePinecone:
		if c.Store.PineconeHost == "" {
			errs = append(errs, errors.New("store.pinecone_host is required for the pinecone backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend must be %q or %q, got %q", StoreBadger, StorePinecone, c.Store.Backend))
	}

	if err := c.AI().Validate(); err != nil {
		errs = append(errs, err)
	}

	if c.Pipeline.Workers < 1 {
		errs = append(errs, errors.New("pipeline.workers must be at least 1"))
	}
	if c.Pipeline.DispatchInterval < 0 {
		errs = append(errs, errors.New("pipeline.dispatch_interval cannot be negative"))
	}
	if c.Pipeline.SnapshotLimit < 1 {
		errs = append(errs, errors.New("pipeline.snapshot_limit must be at least 1"))
	}
	if c.Pipeline.ProgressInterval < 1 {
		errs = append(errs, errors.New("pipeline.progress_interval must be at least 1"))
	}

	return errors.Join(errs...)
}

// AI returns the embedding settings as an ai.Config.
func (c *Config) AI() *ai.Config {
	return ai.NewConfig(
		ai.WithProvider(c.Embedding.Provider),
		ai.WithEmbeddingHost(c.Embedding.Host),
		ai.WithEmbeddingModel(c.Embedding.Model),
		ai.WithAPIKey(c.Embedding.APIKey),
		ai.WithDimension(c.Embedding.Dimension),
		ai.WithBatchSize(c.Embedding.BatchSize),
	)
}

// CatalogOrder returns the configured order without catalogs that cannot be
// used, such as CurseForge without an API key.
func (c *Config) CatalogOrder() []string {
	return slices.DeleteFunc(slices.Clone(c.Catalogs.Order), func(name string) bool {
		return name == core.OriginCurseForge && c.Catalogs.CurseForgeAPIKey == ""
	})
}

// ApplyEnv overrides credentials with non-empty environment values.
func (c *Config) ApplyEnv(getenv func(string) string) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if v := getenv(EnvCurseForgeAPIKey); v != "" {
		c.Catalogs.CurseForgeAPIKey = v
	}
	if v := getenv(EnvModrinthToken); v != "" {
		c.Catalogs.ModrinthToken = v
	}
	if v := getenv(EnvPineconeAPIKey); v != "" {
		c.Store.PineconeAPIKey = v
	}
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	// Credentials may be stored here
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
