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


// Package openai provides an embedding provider for OpenAI-compatible APIs:
// OpenAI itself, Ollama's /v1 endpoint, LocalAI or vLLM.
//
// The client is langchaingo's; see ai/langchain for the shared batching and
// vector checks. A missing API key is replaced with a placeholder so local
// servers work without one.
//
//	config := ai.NewConfig(
//	    ai.WithProvider(ai.ProviderOpenAI),
//	    ai.WithEmbeddingHost("http://localhost:11434"), // /v1 added by Normalize
//	    ai.WithEmbeddingModel("nomic-embed-text"),
//	)
//	provider, err := openai.NewProvider(config)
package openai
