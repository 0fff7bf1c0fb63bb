package storage

import (
	"testing"

	"github.com/poiesic/packvault/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDocument() *StoredDocument {
	return &StoredDocument{
		ID:     "mod_238222_v15.2.0.27",
		Vector: []float32{0.25, -0.5, 0.125, 1},
		Attributes: core.Attributes{
			core.AttrType:       "base_mod",
			core.AttrDownloads:  int64(312456789),
			core.AttrCategories: []string{"API and Library", "Cosmetic"},
			"score":             1.5,
			"featured":          true,
			"empty_list":        []string{},
		},
	}
}

func TestMarshalUnmarshalDocument(t *testing.T) {
	doc := sampleDocument()

	data, err := MarshalDocument(doc)
	require.NoError(t, err)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalDocument(data)
	require.NoError(t, err)
	assert.Equal(t, doc.ID, decoded.ID)
	assert.Equal(t, doc.Vector, decoded.Vector)
	assert.Equal(t, doc.Attributes, decoded.Attributes)
}

func TestMarshalDocument_Deterministic(t *testing.T) {
	first, err := MarshalDocument(sampleDocument())
	require.NoError(t, err)
	second, err := MarshalDocument(sampleDocument())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestMarshalDocument_UnsupportedAttribute(t *testing.T) {
	doc := sampleDocument()
	doc.Attributes["bad"] = 42 // plain int is not allowed

	_, err := MarshalDocument(doc)
	assert.ErrorIs(t, err, ErrSerializationFailed)
	assert.ErrorIs(t, err, core.ErrUnsupportedAttribute)
}

func TestUnmarshalDocument_Invalid(t *testing.T) {
	data, err := MarshalDocument(sampleDocument())
	require.NoError(t, err)

	tests := []struct {
		name string
		data []byte
	}{
		{"empty data", []byte{}},
		{"truncated", data[:len(data)/2]},
		{"only id", data[:len("mod_238222_v15.2.0.27")+1]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalDocument(tt.data)
			assert.Error(t, err)
		})
	}
}

func TestFilterMatches(t *testing.T) {
	attrs := core.Attributes{
		core.AttrType:       "base_mod",
		core.AttrCategories: []string{"magic", "tech"},
		core.AttrDownloads:  int64(100),
	}

	tests := []struct {
		name   string
		filter Filter
		want   bool
	}{
		{"empty filter", nil, true},
		{"string equality", Filter{core.AttrType: "base_mod"}, true},
		{"string mismatch", Filter{core.AttrType: "pack_overview"}, false},
		{"list contains", Filter{core.AttrCategories: "tech"}, true},
		{"list does not contain", Filter{core.AttrCategories: "food"}, false},
		{"number as text", Filter{core.AttrDownloads: "100"}, true},
		{"missing key", Filter{"nope": "x"}, false},
		{"all conditions", Filter{core.AttrType: "base_mod", core.AttrCategories: "magic"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filter.Matches(attrs))
		})
	}
}
