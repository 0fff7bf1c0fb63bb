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


package ai

import (
	"errors"
	"fmt"
	"strings"
)

// Embedding backends.
const (
	// ProviderOllama talks to Ollama's native API.
	ProviderOllama = "ollama"
	// ProviderOpenAI talks to any OpenAI-compatible /v1 API, Ollama included.
	ProviderOpenAI = "openai"
)

type Config struct {
	// Provider selects the embedding backend: "ollama" or "openai".
	Provider string

	// EmbeddingHost is the base URL for the embedding service API.
	// Example: "http://localhost:11434" for Ollama; Normalize adds or strips
	// the /v1 suffix to suit the provider.
	EmbeddingHost string

	// EmbeddingModel is the model identifier to use for text embeddings.
	// Example: "nomic-embed-text", "text-embedding-3-small"
	EmbeddingModel string

	// APIKey is sent to OpenAI-compatible services. Local services ignore it.
	APIKey string

	// Dimension is the expected embedding length. Embeddings of any other
	// length are rejected. Zero disables the check.
	// Default: 768 (nomic-embed-text)
	Dimension int

	// BatchSize caps the number of texts sent in one EmbedTexts request.
	// Default: 32
	BatchSize int
}

type ConfigOption func(*Config)

func WithProvider(provider string) ConfigOption {
	return func(c *Config) {
		c.Provider = provider
	}
}

func WithEmbeddingHost(host string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingHost = host
	}
}

func WithEmbeddingModel(model string) ConfigOption {
	return func(c *Config) {
		c.EmbeddingModel = model
	}
}

func WithAPIKey(key string) ConfigOption {
	return func(c *Config) {
		c.APIKey = key
	}
}

func WithDimension(dimension int) ConfigOption {
	return func(c *Config) {
		c.Dimension = dimension
	}
}

func WithBatchSize(size int) ConfigOption {
	return func(c *Config) {
		c.BatchSize = size
	}
}

func DefaultConfig() *Config {
	return &Config{
		Provider:       ProviderOllama,
		EmbeddingHost:  "http://localhost:11434",
		EmbeddingModel: "nomic-embed-text",
		Dimension:      768,
		BatchSize:      32,
	}
}

func NewConfig(opts ...ConfigOption) *Config {
	cfg := DefaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

func (c *Config) Normalize() {
	c.Provider = strings.ToLower(strings.TrimSpace(c.Provider))
	if c.EmbeddingHost == "" {
		return
	}
	host := strings.TrimSuffix(c.EmbeddingHost, "/")
	switch c.Provider {
	case ProviderOpenAI:
		// Ensure EmbeddingHost ends with /v1 for OpenAI-compatible APIs
		if !strings.HasSuffix(host, "/v1") {
			host += "/v1"
		}
	case ProviderOllama:
		// The native Ollama client adds its own /api paths
		host = strings.TrimSuffix(host, "/v1")
	}
	c.EmbeddingHost = host
}

func (c *Config) Validate() error {
	// Normalize first to ensure hosts are in correct format
	c.Normalize()

	if c.Provider != ProviderOllama && c.Provider != ProviderOpenAI {
		return fmt.Errorf("ai config: unknown Provider %q", c.Provider)
	}
	if c.EmbeddingHost == "" {
		return errors.New("ai config: EmbeddingHost is required")
	}
	if c.EmbeddingModel == "" {
		return errors.New("ai config: EmbeddingModel is required")
	}
	if c.Dimension < 0 {
		return errors.New("ai config: Dimension cannot be negative")
	}
	if c.BatchSize < 1 {
		return errors.New("ai config: BatchSize must be at least 1")
	}
	return nil
}

// CheckDimension returns an error when vector does not have the configured length.
func (c *Config) CheckDimension(vector []float32) error {
	if c.Dimension > 0 && len(vector) != c.Dimension {
		return fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(vector), c.Dimension)
	}
	return nil
}
