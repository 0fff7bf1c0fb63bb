// Package catalog fetches component metadata from external mod catalogs.
//
// Each Catalog makes exactly one attempt per reference. The Fetcher walks a
// preference order and stops at the first catalog that answers; when none
// does it returns an error wrapping ErrNotFound instead of panicking, so a
// single missing component never interrupts a run.
//
// Implementations live in sub-packages:
//
//   - curseforge: the CurseForge v1 API (requires an API key)
//   - modrinth: the Modrinth v2 API (token optional)
//   - mock: a scripted catalog for tests
package catalog
