package core

import (
	"encoding/hex"

	"github.com/go-crypt/x/blake2b"
)

// DocumentID is the canonical identifier of a published document.
// It is derived deterministically from the component's identity.
type DocumentID string

// DocumentType classifies a published document.
type DocumentType string

const (
	// DocumentTypeMod is a document describing a single referenced mod.
	DocumentTypeMod DocumentType = "base_mod"
	// DocumentTypePack is the overview document of a modpack.
	DocumentTypePack DocumentType = "pack_overview"
	// DocumentTypeOverride is a document built from a pack override script.
	DocumentTypeOverride DocumentType = "pack_override"
)

// Origin names the catalog a modpack was published on.
const (
	OriginCurseForge = "curseforge"
	OriginModrinth   = "modrinth"
)

// ComponentReference is one entry of a modpack manifest.
type ComponentReference struct {
	ProjectID string
	FileID    string
}

// ExternalRecord is the metadata a catalog returns for a component.
type ExternalRecord struct {
	ProjectID     string
	FileID        string
	Title         string
	Description   string
	Version       string
	Categories    []string
	GameVersions  []string
	DownloadCount int64
	Source        string // Catalog that produced the record
	ClientSide    string // Modrinth only; empty when unknown
	ServerSide    string // Modrinth only; empty when unknown
}

// Attributes holds the filterable metadata published alongside a document.
// Values are limited to string, int64, float64, bool and []string.
type Attributes map[string]any

// Attribute keys shared by composers and stores.
const (
	AttrType              = "type"
	AttrProjectID         = "project_id"
	AttrFileID            = "file_id"
	AttrVersion           = "version"
	AttrTitle             = "mod_title"
	AttrSource            = "source"
	AttrCategories        = "categories"
	AttrMinecraftVersions = "minecraft_versions"
	AttrDownloads         = "downloads"
	AttrContentHash       = "content_hash"
	AttrText              = "text"
	AttrPackName          = "pack_name"
	AttrPackVersion       = "pack_version"
	AttrMinecraftVersion  = "minecraft_version"
	AttrModCount          = "mod_count"
	AttrModReferences     = "mod_references"
	AttrFilePath          = "file_path"
	AttrOverrideType      = "override_type"
)

// String returns the attribute as a string, or "" when absent or not a string.
func (a Attributes) String(key string) string {
	s, _ := a[key].(string)
	return s
}

// CanonicalDocument is the stable text rendition of a component, ready to embed.
type CanonicalDocument struct {
	ID         DocumentID
	Text       string
	Attributes Attributes
}

// PackContext describes the modpack a run is processing.
type PackContext struct {
	Name             string
	Version          string
	MinecraftVersion string
	Origin           string
}

// Manifest is the parsed form of a modpack manifest.
type Manifest struct {
	Name             string
	Version          string
	MinecraftVersion string
	Origin           string
	References       []ComponentReference
}

// Pack returns the context of the modpack described by the manifest.
func (m *Manifest) Pack() PackContext {
	return PackContext{
		Name:             m.Name,
		Version:          m.Version,
		MinecraftVersion: m.MinecraftVersion,
		Origin:           m.Origin,
	}
}

// ContentHash returns a hex encoded 128-bit BLAKE2b digest of text.
// Identical text always produces the same hash.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}
