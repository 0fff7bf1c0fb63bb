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


package core

import (
	"fmt"
	"strings"
)

// ValidateReference validates a ComponentReference according to domain rules.
//
// Validation rules:
//   - ProjectID must not be empty or blank
//
// FileID is optional; catalogs fall back to the latest release without it.
func ValidateReference(ref ComponentReference) error {
	if strings.TrimSpace(ref.ProjectID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidReference, ErrEmptyProjectID)
	}
	return nil
}

// ValidateRecord validates an ExternalRecord returned by a catalog.
//
// Validation rules:
//   - ProjectID must not be empty
//   - Version must not be empty (it is part of the document identity)
//   - Title must not be empty
func ValidateRecord(record *ExternalRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidRecord)
	}
	if strings.TrimSpace(record.ProjectID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyProjectID)
	}
	if strings.TrimSpace(record.Version) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyVersion)
	}
	if strings.TrimSpace(record.Title) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidRecord, ErrEmptyTitle)
	}
	return nil
}

// ValidateDocument validates a CanonicalDocument before publishing.
func ValidateDocument(doc *CanonicalDocument) error {
	if doc == nil {
		return fmt.Errorf("%w: document is nil", ErrInvalidDocument)
	}
	if doc.ID == "" {
		return fmt.Errorf("%w: id is empty", ErrInvalidDocument)
	}
	if strings.TrimSpace(doc.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidDocument, ErrEmptyContent)
	}
	for key, value := range doc.Attributes {
		if err := ValidateAttribute(value); err != nil {
			return fmt.Errorf("%w: attribute %q: %w", ErrInvalidDocument, key, err)
		}
	}
	return nil
}

// ValidateAttribute checks that an attribute value has a supported type.
func ValidateAttribute(value any) error {
	switch value.(type) {
	case string, int64, float64, bool, []string:
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedAttribute, value)
	}
}
