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


// Package ai provides abstractions for the embedding services used by packvault.
//
// The package defines two interfaces:
//
//   - Embedder: Generates vector embeddings from text
//   - AIProvider: Owns an Embedder and its underlying client
//
// How embeddings are computed is up to the external service; packvault only
// checks that a vector came back with the configured dimension.
//
// # Implementation Packages
//
//   - ai/ollama: Ollama's native API (default)
//   - ai/openai: OpenAI-compatible /v1 APIs
//   - ai/langchain: the langchaingo adapter both of the above build on
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (ollama.NewProvider, openai.NewEmbedder, etc.) return
// INTERFACE types to enforce abstraction and prevent accidental coupling to
// concrete implementations.
//
//	provider, err := ollama.NewProvider(ai.DefaultConfig())  // returns ai.AIProvider
//
// Test utility constructors (mock.NewMockEmbedder) return CONCRETE types to
// enable test assertions and behavior injection via public fields and
// methods (EmbedTextFunc, CallCount, Reset).
//
//	mockEmbed := mock.NewMockEmbedder()  // returns *mock.MockEmbedder
//	count := mockEmbed.CallCount()       // test assertion
package ai
