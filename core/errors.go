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

import "errors"

// Domain validation errors
var (
	// ErrInvalidReference indicates a ComponentReference failed validation.
	ErrInvalidReference = errors.New("invalid component reference")

	// ErrInvalidRecord indicates an ExternalRecord failed validation.
	ErrInvalidRecord = errors.New("invalid external record")

	// ErrInvalidDocument indicates a CanonicalDocument failed validation.
	ErrInvalidDocument = errors.New("invalid canonical document")

	// ErrEmptyProjectID indicates the ProjectID field is empty.
	ErrEmptyProjectID = errors.New("project id cannot be empty")

	// ErrEmptyVersion indicates the Version field is empty.
	ErrEmptyVersion = errors.New("version cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("title cannot be empty")

	// ErrEmptyContent indicates the document text is empty.
	ErrEmptyContent = errors.New("content cannot be empty")

	// ErrUnsupportedAttribute indicates an attribute value of an unsupported type.
	ErrUnsupportedAttribute = errors.New("unsupported attribute value")
)
