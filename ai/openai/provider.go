package openai

import (
	"log/slog"

	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/ai/langchain"
)

// Provider serves embeddings from an OpenAI-compatible endpoint.
type Provider struct {
	embedder *langchain.Embedder
	logger   *slog.Logger
}

// NewProvider validates config and connects lazily; no request is made
// until the first embedding.
func NewProvider(config *ai.Config) (ai.AIProvider, error) {
	embedder, err := newEmbedder(config)
	if err != nil {
		return nil, err
	}

	return &Provider{
		embedder: embedder,
		logger:   slog.Default().With("component", "openai-provider", "host", config.EmbeddingHost),
	}, nil
}

func (p *Provider) Embedder() ai.Embedder {
	return p.embedder
}

func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
