// Package ollama provides an embedding provider for Ollama's native API.
//
//	config := ai.NewConfig() // ollama, nomic-embed-text on localhost:11434
//	provider, err := ollama.NewProvider(config)
package ollama

import (
	"log/slog"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/ai/langchain"
)

// Provider serves embeddings from a local or remote Ollama server.
type Provider struct {
	embedder *langchain.Embedder
	logger   *slog.Logger
}

func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder: embedder,
		logger:   slog.Default().With("component", "ollama-provider"),
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Close() error {
	p.logger.Debug("closing Ollama provider")
	return nil
}
