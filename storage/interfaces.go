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


package storage

import (
	"context"

	"github.com/poiesic/packvault/core"
)

// Match is a document returned by a store query or search.
type Match struct {
	ID         core.DocumentID
	Score      float32 // Similarity score; zero for plain queries
	Attributes core.Attributes
}

// VectorStore persists embedded documents and their attributes.
type VectorStore interface {
	// Upsert inserts or replaces the document with the given id.
	// Upserting the same id twice leaves a single document.
	Upsert(ctx context.Context, id core.DocumentID, vector []float32, attrs core.Attributes) error

	// Query returns up to limit documents whose attributes match filter.
	// The result may be truncated; callers must not assume it is exhaustive.
	Query(ctx context.Context, filter Filter, limit int) ([]Match, error)

	// Search returns up to limit documents matching filter, ordered by
	// similarity to vector (highest first).
	Search(ctx context.Context, vector []float32, filter Filter, limit int) ([]Match, error)

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases resources.
	Close() error
}
