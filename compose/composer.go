package compose

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/manifest"
)

const (
	// FeaturedModCount is the number of project ids listed in a pack overview.
	FeaturedModCount = 20
	// ModReferenceCount is the number of mod references attached to a pack overview.
	ModReferenceCount = 50
	// OverrideExcerptBytes bounds the script excerpt of an override document.
	OverrideExcerptBytes = 1500
)

// ModID returns the canonical id a record will be published under.
func ModID(record *core.ExternalRecord) core.DocumentID {
	return core.ModDocumentID(record.ProjectID, record.Version)
}

// Mod renders the canonical document for a fetched component.
// The output depends only on record, so identical records always yield
// identical documents.
func Mod(record *core.ExternalRecord) core.CanonicalDocument {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", record.Title)
	if record.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", record.Description)
	}

	b.WriteString("## Mod Information\n")
	fmt.Fprintf(&b, "- Project ID: %s\n", record.ProjectID)
	fmt.Fprintf(&b, "- Version: %s\n", record.Version)
	fmt.Fprintf(&b, "- Source: %s\n", record.Source)
	if len(record.Categories) > 0 {
		fmt.Fprintf(&b, "- Categories: %s\n", strings.Join(record.Categories, ", "))
	}
	if record.DownloadCount > 0 {
		fmt.Fprintf(&b, "- Downloads: %s\n", groupThousands(record.DownloadCount))
	}
	if len(record.GameVersions) > 0 {
		fmt.Fprintf(&b, "- Minecraft Versions: %s\n", strings.Join(record.GameVersions, ", "))
	}
	if record.ClientSide != "" {
		fmt.Fprintf(&b, "- Client Side: %s\n", record.ClientSide)
	}
	if record.ServerSide != "" {
		fmt.Fprintf(&b, "- Server Side: %s\n", record.ServerSide)
	}

	b.WriteString("\n## Description\n")
	b.WriteString("This mod provides functionality for Minecraft and can be used across different modpacks.\n")

	text := b.String()
	attrs := core.Attributes{
		core.AttrType:              string(core.DocumentTypeMod),
		core.AttrProjectID:         record.ProjectID,
		core.AttrFileID:            record.FileID,
		core.AttrVersion:           record.Version,
		core.AttrTitle:             record.Title,
		core.AttrSource:            record.Source,
		core.AttrCategories:        nonNil(record.Categories),
		core.AttrMinecraftVersions: nonNil(record.GameVersions),
		core.AttrDownloads:         record.DownloadCount,
		core.AttrContentHash:       core.ContentHash(text),
		core.AttrText:              text,
	}

	return core.CanonicalDocument{
		ID:         ModID(record),
		Text:       text,
		Attributes: attrs,
	}
}

// PackOverview renders the overview document of a modpack.
func PackOverview(m *core.Manifest) core.CanonicalDocument {
	var b strings.Builder
	count := len(m.References)

	fmt.Fprintf(&b, "# %s v%s\n\n", m.Name, m.Version)
	fmt.Fprintf(&b, "This is a Minecraft modpack containing %d mods.\n\n", count)

	b.WriteString("## Pack Information\n")
	fmt.Fprintf(&b, "- Name: %s\n", m.Name)
	fmt.Fprintf(&b, "- Version: %s\n", m.Version)
	fmt.Fprintf(&b, "- Minecraft Version: %s\n", m.MinecraftVersion)
	fmt.Fprintf(&b, "- Total Mods: %d\n", count)

	fmt.Fprintf(&b, "\n## Featured Mods (First %d)\n", FeaturedModCount)
	for i, ref := range m.References {
		if i == FeaturedModCount {
			b.WriteString("...\n")
			break
		}
		fmt.Fprintf(&b, "- Project ID: %s\n", ref.ProjectID)
	}

	b.WriteString("\n## Pack Context\n")
	b.WriteString("This modpack provides a curated experience with carefully selected mods and configurations.\n")

	refs := make([]string, 0, min(count, ModReferenceCount))
	for _, ref := range m.References[:min(count, ModReferenceCount)] {
		refs = append(refs, "mod_"+core.EscapeIDPart(ref.ProjectID))
	}

	text := b.String()
	return core.CanonicalDocument{
		ID:   core.PackDocumentID(m.Name, m.Version),
		Text: text,
		Attributes: core.Attributes{
			core.AttrType:             string(core.DocumentTypePack),
			core.AttrPackName:         m.Name,
			core.AttrPackVersion:      m.Version,
			core.AttrMinecraftVersion: m.MinecraftVersion,
			core.AttrModCount:         int64(count),
			core.AttrModReferences:    refs,
			core.AttrContentHash:      core.ContentHash(text),
			core.AttrText:             text,
		},
	}
}

// Override renders a document for a KubeJS script bundled with a pack.
func Override(pack core.PackContext, o manifest.Override) core.CanonicalDocument {
	var b strings.Builder

	fmt.Fprintf(&b, "# KubeJS Override: %s\n\n", o.Path)
	fmt.Fprintf(&b, "This is a KubeJS configuration file from %s v%s.\n\n", pack.Name, pack.Version)

	b.WriteString("## File Information\n")
	fmt.Fprintf(&b, "- Path: %s\n", o.Path)
	fmt.Fprintf(&b, "- Pack: %s v%s\n", pack.Name, pack.Version)
	b.WriteString("- Type: KubeJS Script\n")

	b.WriteString("\n## Configuration Content\n```javascript\n")
	b.WriteString(excerpt(o.Content, OverrideExcerptBytes))
	b.WriteString("\n```\n")

	b.WriteString("\n## Purpose\n")
	b.WriteString("This script customizes mod behavior specifically for this modpack.\n")

	text := b.String()
	return core.CanonicalDocument{
		ID:   core.OverrideDocumentID(pack, o.Path),
		Text: text,
		Attributes: core.Attributes{
			core.AttrType:         string(core.DocumentTypeOverride),
			core.AttrPackName:     pack.Name,
			core.AttrPackVersion:  pack.Version,
			core.AttrFilePath:     o.Path,
			core.AttrOverrideType: "kubejs",
			core.AttrContentHash:  core.ContentHash(text),
			core.AttrText:         text,
		},
	}
}

// excerpt cuts s to at most n bytes without splitting a rune and marks the cut.
func excerpt(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// groupThousands formats n with comma separators, e.g. 1234567 -> "1,234,567".
func groupThousands(n int64) string {
	s := strconv.FormatInt(n, 10)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
