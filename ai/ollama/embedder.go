package ollama

import (
	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/ai/langchain"
	"github.com/tmc/langchaingo/llms/ollama"
)

func newEmbedder(config *ai.Config) (*langchain.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := ollama.New(
		ollama.WithServerURL(config.EmbeddingHost),
		ollama.WithModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	return langchain.NewEmbedder(client, config, "ollama")
}

// NewEmbedder creates an embedder for the model named in config.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}
