package catalog

import (
	"context"
	"errors"

	"github.com/poiesic/packvault/core"
)

var (
	// ErrNotFound is returned when no catalog produced a record for a reference.
	// Individual catalogs also return it for an unknown project or file.
	ErrNotFound = errors.New("component not found in any catalog")

	// ErrUnknownCatalog is returned when a preference order names an unregistered catalog.
	ErrUnknownCatalog = errors.New("unknown catalog")

	// ErrNoCatalogs is returned when a Fetcher is built without catalogs.
	ErrNoCatalogs = errors.New("at least one catalog is required")
)

// Catalog is an external metadata source for components.
type Catalog interface {
	// Name identifies the catalog, e.g. "curseforge".
	Name() string

	// Fetch returns the metadata for ref.
	// Implementations make a single attempt and never retry.
	Fetch(ctx context.Context, ref core.ComponentReference) (*core.ExternalRecord, error)
}
