package manifest

import (
	"archive/zip"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/poiesic/packvault/core"
)

const manifestFileName = "manifest.json"

// Override is a pack specific script bundled in the modpack archive.
type Override struct {
	Path    string
	Content string
}

// Archive is a modpack zip opened for reading.
type Archive struct {
	reader *zip.Reader
	closer io.Closer
}

// OpenArchive opens the modpack zip at filePath.
// The caller must Close the archive.
func OpenArchive(filePath string) (*Archive, error) {
	rc, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive %s: %w", filePath, err)
	}
	return &Archive{reader: &rc.Reader, closer: rc}, nil
}

// NewArchive reads a modpack zip from r.
func NewArchive(r io.ReaderAt, size int64) (*Archive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("failed to read archive: %w", err)
	}
	return &Archive{reader: zr}, nil
}

// Manifest parses manifest.json from the archive root.
func (a *Archive) Manifest() (*core.Manifest, error) {
	f, err := a.reader.Open(manifestFileName)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrManifestMissing
		}
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// Overrides returns the KubeJS scripts in the archive, in archive order.
// A limit of zero or less returns every script. Entries that cannot be read
// are skipped and reported through the returned error.
func (a *Archive) Overrides(limit int) ([]Override, error) {
	var (
		overrides []Override
		errs      []error
	)
	for _, f := range a.reader.File {
		if limit > 0 && len(overrides) >= limit {
			break
		}
		if !isKubeJSScript(f.Name) {
			continue
		}
		content, err := readFile(f)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", f.Name, err))
			continue
		}
		overrides = append(overrides, Override{Path: f.Name, Content: content})
	}
	return overrides, errors.Join(errs...)
}

// Close releases the underlying file, if any.
func (a *Archive) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer.Close()
}

func isKubeJSScript(name string) bool {
	if strings.HasSuffix(name, "/") {
		return false
	}
	return strings.Contains(strings.ToLower(name), "kubejs") && path.Ext(name) == ".js"
}

func readFile(f *zip.File) (string, error) {
	rc, err := f.Open()
	if err != nil {
		return "", err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
