package openai

import (
	"github.com/poiesic/packvault/ai"
	"github.com/poiesic/packvault/ai/langchain"
	"github.com/tmc/langchaingo/llms/openai"
)

// localToken is sent when no API key is configured. Local /v1 servers
// ignore it but the client refuses to start without one.
const localToken = "none"

func newEmbedder(config *ai.Config) (*langchain.Embedder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	token := config.APIKey
	if token == "" {
		token = localToken
	}
	client, err := openai.New(
		openai.WithBaseURL(config.EmbeddingHost),
		openai.WithToken(token),
		openai.WithEmbeddingModel(config.EmbeddingModel),
	)
	if err != nil {
		return nil, err
	}
	return langchain.NewEmbedder(client, config, "openai")
}

// NewEmbedder creates an embedder for an OpenAI-compatible /v1 API.
func NewEmbedder(config *ai.Config) (ai.Embedder, error) {
	return newEmbedder(config)
}
