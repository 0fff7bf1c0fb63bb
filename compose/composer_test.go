package compose

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/poiesic/packvault/core"
	"github.com/poiesic/packvault/manifest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func jei() *core.ExternalRecord {
	return &core.ExternalRecord{
		ProjectID:     "238222",
		FileID:        "4712868",
		Title:         "Just Enough Items",
		Description:   "View items and recipes",
		Version:       "15.2.0.27",
		Categories:    []string{"API and Library", "Cosmetic"},
		GameVersions:  []string{"1.20.1"},
		DownloadCount: 312456789,
		Source:        "curseforge",
	}
}

func TestMod(t *testing.T) {
	doc := Mod(jei())

	assert.Equal(t, core.DocumentID("mod_238222_v15.2.0.27"), doc.ID)
	assert.True(t, strings.HasPrefix(doc.Text, "# Just Enough Items\n\nView items and recipes\n\n## Mod Information\n"))
	assert.Contains(t, doc.Text, "- Categories: API and Library, Cosmetic\n")
	assert.Contains(t, doc.Text, "- Downloads: 312,456,789\n")
	assert.Contains(t, doc.Text, "- Minecraft Versions: 1.20.1\n")
	assert.NotContains(t, doc.Text, "Client Side")

	assert.Equal(t, "base_mod", doc.Attributes.String(core.AttrType))
	assert.Equal(t, "15.2.0.27", doc.Attributes.String(core.AttrVersion))
	assert.Equal(t, int64(312456789), doc.Attributes[core.AttrDownloads])
	assert.Equal(t, core.ContentHash(doc.Text), doc.Attributes.String(core.AttrContentHash))
	assert.Equal(t, doc.Text, doc.Attributes.String(core.AttrText))
	require.NoError(t, core.ValidateDocument(&doc))
}

func TestMod_IsStable(t *testing.T) {
	first := Mod(jei())
	second := Mod(jei())

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, first.Text, second.Text)
	assert.Equal(t, first.Attributes, second.Attributes)
}

func TestMod_OptionalFieldsOmitted(t *testing.T) {
	doc := Mod(&core.ExternalRecord{ProjectID: "1", Version: "1.0", Title: "Bare", Source: "modrinth", ClientSide: "required"})

	assert.NotContains(t, doc.Text, "Categories")
	assert.NotContains(t, doc.Text, "Downloads")
	assert.Contains(t, doc.Text, "- Client Side: required\n")
	assert.Equal(t, []string{}, doc.Attributes[core.AttrCategories])
	require.NoError(t, core.ValidateDocument(&doc))
}

func TestModID_MatchesComposedDocument(t *testing.T) {
	rec := jei()
	assert.Equal(t, ModID(rec), Mod(rec).ID)
}

func TestPackOverview(t *testing.T) {
	refs := make([]core.ComponentReference, 60)
	for i := range refs {
		refs[i] = core.ComponentReference{ProjectID: fmt.Sprint(1000 + i), FileID: "1"}
	}
	m := &core.Manifest{Name: "Big Pack", Version: "2.0", MinecraftVersion: "1.20.1", References: refs}

	doc := PackOverview(m)

	assert.Equal(t, core.DocumentID("pack_Big_20Pack_2.0"), doc.ID)
	assert.Contains(t, doc.Text, "containing 60 mods")
	assert.Contains(t, doc.Text, "- Project ID: 1019\n")
	assert.NotContains(t, doc.Text, "- Project ID: 1020\n")
	assert.Contains(t, doc.Text, "...\n")
	assert.Equal(t, int64(60), doc.Attributes[core.AttrModCount])
	assert.Len(t, doc.Attributes[core.AttrModReferences], ModReferenceCount)
	require.NoError(t, core.ValidateDocument(&doc))
}

func TestOverride(t *testing.T) {
	pack := core.PackContext{Name: "Pack", Version: "1.0"}
	long := strings.Repeat("é", OverrideExcerptBytes) // 2 bytes per rune
	doc := Override(pack, manifest.Override{Path: "overrides/kubejs/server_scripts/a.js", Content: long})

	assert.Equal(t, core.OverrideDocumentID(pack, "overrides/kubejs/server_scripts/a.js"), doc.ID)
	assert.True(t, utf8.ValidString(doc.Text))
	assert.Contains(t, doc.Text, "...\n```")
	assert.Equal(t, "kubejs", doc.Attributes.String(core.AttrOverrideType))
	require.NoError(t, core.ValidateDocument(&doc))
}

func TestGroupThousands(t *testing.T) {
	tests := map[int64]string{
		0:        "0",
		999:      "999",
		1000:     "1,000",
		123456:   "123,456",
		1234567:  "1,234,567",
		-1234567: "-1,234,567",
	}
	for in, want := range tests {
		assert.Equal(t, want, groupThousands(in), "input %d", in)
	}
}
