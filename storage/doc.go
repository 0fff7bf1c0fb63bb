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


// Package storage provides the vector store abstraction for packvault.
//
// VectorStore decouples the ingestion pipeline and the searcher from the
// concrete store. Two implementations exist:
//
//   - badger: an embedded store for local use and tests
//   - pinecone: a client for a Pinecone (or Pinecone Local) index
//
// # Constructor Return Type Pattern
//
// Public constructors return the storage.VectorStore interface:
//
//	store, err := badger.NewDocumentStore(backend)  // returns storage.VectorStore
//
// Internal constructors may return concrete types since they are only used
// within the implementation package.
//
// # Upsert Semantics
//
// Upsert is keyed by DocumentID. Writing the same id twice replaces the
// document, so republishing is harmless. The ingestion pipeline still avoids
// it to save embedding work.
//
// # Query Limits
//
// Query is bounded by its limit argument and may return a truncated result.
// Callers that build dedup snapshots from it must tolerate that.
//
// # Thread Safety
//
// All implementations must be safe for concurrent use.
package storage
