package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentHash(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "short content", content: "test content"},
		{name: "empty string", content: ""},
		{name: "multi-line markdown", content: "# Title\n\nSome description\n\n- item"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h1 := ContentHash(tt.content)
			h2 := ContentHash(tt.content)
			assert.Equal(t, h1, h2)
			assert.Len(t, h1, 32)
		})
	}

	assert.NotEqual(t, ContentHash("a"), ContentHash("b"))
}

func TestModDocumentID(t *testing.T) {
	tests := []struct {
		name      string
		projectID string
		version   string
		want      DocumentID
	}{
		{name: "plain version", projectID: "238222", version: "1.20.1-15.2.0", want: "mod_238222_v1.20.1-15.2.0"},
		{name: "spaces are escaped", projectID: "1", version: "JEI 1.0", want: "mod_1_vJEI_201.0"},
		{name: "underscore is escaped", projectID: "1", version: "a_b", want: "mod_1_va_5Fb"},
		{name: "surrounding whitespace trimmed", projectID: " 7 ", version: " 2.0 ", want: "mod_7_v2.0"},
		{name: "long versions are kept whole", projectID: "9", version: "forge-1.20.1-47.2.0-universal-build", want: "mod_9_vforge-1.20.1-47.2.0-universal-build"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ModDocumentID(tt.projectID, tt.version))
		})
	}
}

// Pairs are compared after whitespace trimming; " 1.0" and "1.0" are the
// same pair and share an id.
func TestModDocumentID_DistinctPairsNeverCollide(t *testing.T) {
	pairs := [][2]string{
		{"1", "1.0 beta"},
		{"1", "1.0_beta"},
		{"1", "1.0_20beta"},
		{"1", "1.0.beta"},
		{"1", "1.0-beta"},
		{"12", "3"},
		{"1", "23"},
		{"100", "a-very-long-version-string-part-one"},
		{"100", "a-very-long-version-string-part-two"},
	}

	seen := make(map[DocumentID][2]string)
	for _, p := range pairs {
		id := ModDocumentID(p[0], p[1])
		if other, ok := seen[id]; ok {
			t.Fatalf("collision: %v and %v both map to %s", other, p, id)
		}
		seen[id] = p
	}
}

func TestModDocumentID_TrimsWhitespace(t *testing.T) {
	want := ModDocumentID("238222", "1.0")
	for _, version := range []string{"1.0 ", "\t1.0", " 1.0\n"} {
		assert.Equal(t, want, ModDocumentID("238222", version), "version %q", version)
	}
	assert.NotEqual(t, want, ModDocumentID("238222", "1. 0"), "inner whitespace is escaped, not trimmed")
}

func TestPackAndOverrideDocumentIDs(t *testing.T) {
	pack := PackContext{Name: "All the Mods 9", Version: "0.2.44"}

	assert.Equal(t, DocumentID("pack_All_20the_20Mods_209_0.2.44"), PackDocumentID(pack.Name, pack.Version))
	assert.Equal(t,
		DocumentID("override_All_20the_20Mods_209_0.2.44_kubejs_2Fserver_5Fscripts_2Frecipes.js"),
		OverrideDocumentID(pack, "kubejs/server_scripts/recipes.js"))
}

func TestManifestPack(t *testing.T) {
	m := &Manifest{
		Name:             "Pack",
		Version:          "1.0",
		MinecraftVersion: "1.20.1",
		Origin:           OriginCurseForge,
		References:       []ComponentReference{{ProjectID: "1", FileID: "2"}},
	}

	assert.Equal(t, PackContext{Name: "Pack", Version: "1.0", MinecraftVersion: "1.20.1", Origin: OriginCurseForge}, m.Pack())
}

func TestAttributesString(t *testing.T) {
	attrs := Attributes{AttrType: "base_mod", AttrDownloads: int64(5)}

	assert.Equal(t, "base_mod", attrs.String(AttrType))
	assert.Equal(t, "", attrs.String(AttrDownloads))
	assert.Equal(t, "", attrs.String("missing"))
}
