package manifest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/poiesic/packvault/core"
)

// flexibleID accepts a JSON number or string and keeps its textual form.
type flexibleID string

func (f *flexibleID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexibleID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a number or string: %w", err)
	}
	// Integral floats such as 238222.0 are written without the fraction.
	if i, err := n.Int64(); err == nil {
		*f = flexibleID(strconv.FormatInt(i, 10))
		return nil
	}
	if fl, err := n.Float64(); err == nil && fl == float64(int64(fl)) {
		*f = flexibleID(strconv.FormatInt(int64(fl), 10))
		return nil
	}
	*f = flexibleID(n.String())
	return nil
}

type rawFile struct {
	ProjectID flexibleID `json:"projectID"`
	FileID    flexibleID `json:"fileID"`
}

type rawManifest struct {
	ManifestType string `json:"manifestType"`
	Name         string `json:"name"`
	Version      string `json:"version"`
	Minecraft    struct {
		Version string `json:"version"`
	} `json:"minecraft"`
	// Pointer so a missing list can be told apart from an empty one.
	Files *[]rawFile `json:"files"`
}

// Parse reads a manifest from r.
// The returned references keep manifest order, duplicates included.
func Parse(r io.Reader) (*core.Manifest, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	return ParseBytes(data)
}

// ParseBytes parses a manifest held in memory.
func ParseBytes(data []byte) (*core.Manifest, error) {
	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedManifest, err)
	}
	if raw.Files == nil {
		return nil, fmt.Errorf("%w: files list is missing", ErrMalformedManifest)
	}

	refs := make([]core.ComponentReference, 0, len(*raw.Files))
	for i, f := range *raw.Files {
		ref := core.ComponentReference{
			ProjectID: string(f.ProjectID),
			FileID:    string(f.FileID),
		}
		if err := core.ValidateReference(ref); err != nil {
			return nil, fmt.Errorf("%w: files[%d]: %w", ErrMalformedManifest, i, err)
		}
		refs = append(refs, ref)
	}

	m := &core.Manifest{
		Name:             valueOr(raw.Name, "unknown"),
		Version:          valueOr(raw.Version, "0.0.0"),
		MinecraftVersion: valueOr(raw.Minecraft.Version, "unknown"),
		Origin:           originFor(raw.ManifestType),
		References:       refs,
	}
	return m, nil
}

func originFor(manifestType string) string {
	// Anything that is not explicitly Modrinth, minecraftModpack included,
	// is treated as a CurseForge export.
	if strings.EqualFold(strings.TrimSpace(manifestType), core.OriginModrinth) {
		return core.OriginModrinth
	}
	return core.OriginCurseForge
}

func valueOr(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return strings.TrimSpace(s)
}
