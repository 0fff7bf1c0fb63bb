package manifest

import "errors"

var (
	// ErrMalformedManifest is returned when a manifest cannot be parsed or lacks
	// its component list. It is fatal: no reference of the manifest is processed.
	ErrMalformedManifest = errors.New("malformed manifest")

	// ErrManifestMissing is returned when an archive has no manifest.json at its root.
	ErrManifestMissing = errors.New("manifest.json not found in archive")
)
