package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/poiesic/packvault/core"
)

// Fetcher resolves component references against a set of catalogs tried
// in preference order. The first catalog that returns a valid record wins;
// results are never merged across catalogs.
type Fetcher struct {
	catalogs map[string]Catalog
	order    []string
	logger   *slog.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) FetcherOption {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a Fetcher. The order of catalogs is the default
// preference order.
func NewFetcher(catalogs []Catalog, opts ...FetcherOption) (*Fetcher, error) {
	if len(catalogs) == 0 {
		return nil, ErrNoCatalogs
	}

	f := &Fetcher{
		catalogs: make(map[string]Catalog, len(catalogs)),
		order:    make([]string, 0, len(catalogs)),
		logger:   slog.Default(),
	}
	for _, c := range catalogs {
		if c == nil {
			return nil, fmt.Errorf("%w: nil catalog", ErrUnknownCatalog)
		}
		if _, dup := f.catalogs[c.Name()]; dup {
			return nil, fmt.Errorf("duplicate catalog %q", c.Name())
		}
		f.catalogs[c.Name()] = c
		f.order = append(f.order, c.Name())
	}

	for _, opt := range opts {
		if err := opt(f); err != nil {
			return nil, err
		}
	}
	f.logger = f.logger.With("component", "catalog-fetcher")

	return f, nil
}

// Catalogs returns the registered catalog names in default order.
func (f *Fetcher) Catalogs() []string {
	return append([]string(nil), f.order...)
}

// Order returns the preference order for a pack published on origin:
// origin first when registered, then the remaining catalogs in default order.
func (f *Fetcher) Order(origin string) []string {
	order := make([]string, 0, len(f.order))
	if _, ok := f.catalogs[origin]; ok {
		order = append(order, origin)
	}
	for _, name := range f.order {
		if name != origin {
			order = append(order, name)
		}
	}
	return order
}

// Fetch tries each catalog in order and returns the first valid record.
// An empty order uses the default order. When every catalog fails the
// returned error wraps ErrNotFound together with each catalog's cause.
func (f *Fetcher) Fetch(ctx context.Context, ref core.ComponentReference, order []string) (*core.ExternalRecord, error) {
	if len(order) == 0 {
		order = f.order
	}

	var errs []error
	for _, name := range order {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		c, ok := f.catalogs[name]
		if !ok {
			errs = append(errs, fmt.Errorf("%w: %s", ErrUnknownCatalog, name))
			continue
		}

		record, err := c.Fetch(ctx, ref)
		if err == nil {
			err = core.ValidateRecord(record)
		}
		if err != nil {
			f.logger.Debug("catalog lookup failed", "catalog", name, "project", ref.ProjectID, "file", ref.FileID, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
			continue
		}

		if record.Source == "" {
			record.Source = name
		}
		return record, nil
	}

	return nil, fmt.Errorf("%w: project %s file %s: %w", ErrNotFound, ref.ProjectID, ref.FileID, errors.Join(errs...))
}
