// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"
	"maps"
	"slices"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/packvault/core"
)

// StoredDocument is the persisted form of a published document.
type StoredDocument struct {
	ID         core.DocumentID
	Vector     []float32
	Attributes core.Attributes
}

// Attribute value tags.
const (
	tagString = iota + 1
	tagInt64
	tagFloat64
	tagBool
	tagStrings
)

// MarshalDocument serializes a StoredDocument to bytes.
// Attribute keys are written in sorted order, so equal documents produce
// equal bytes.
func MarshalDocument(doc *StoredDocument) ([]byte, error) {
	keys := slices.Sorted(maps.Keys(doc.Attributes))

	size := ord.String.Size(string(doc.ID))
	size += varint.Int.Size(len(doc.Vector))
	for _, f := range doc.Vector {
		size += raw.Float32.Size(f)
	}
	size += varint.Int.Size(len(keys))
	for _, k := range keys {
		vs, err := valueSize(doc.Attributes[k])
		if err != nil {
			return nil, fmt.Errorf("%w: attribute %q: %w", ErrSerializationFailed, k, err)
		}
		size += ord.String.Size(k) + vs
	}

	bs := make([]byte, size)
	n := ord.String.Marshal(string(doc.ID), bs)
	n += varint.Int.Marshal(len(doc.Vector), bs[n:])
	for _, f := range doc.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	n += varint.Int.Marshal(len(keys), bs[n:])
	for _, k := range keys {
		n += ord.String.Marshal(k, bs[n:])
		n += marshalValue(doc.Attributes[k], bs[n:])
	}
	return bs[:n], nil
}

// UnmarshalDocument deserializes a StoredDocument from bytes.
func UnmarshalDocument(data []byte) (*StoredDocument, error) {
	var (
		doc = &StoredDocument{}
		off int
	)

	id, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, wrapDecode("id", err)
	}
	doc.ID = core.DocumentID(id)
	off += n

	count, n, err := varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, wrapDecode("vector length", err)
	}
	off += n
	if count < 0 || count > len(data)-off {
		return nil, fmt.Errorf("%w: vector length %d", ErrTruncatedData, count)
	}
	doc.Vector = make([]float32, count)
	for i := range doc.Vector {
		f, n, err := raw.Float32.Unmarshal(data[off:])
		if err != nil {
			return nil, wrapDecode("vector", err)
		}
		doc.Vector[i] = f
		off += n
	}

	count, n, err = varint.Int.Unmarshal(data[off:])
	if err != nil {
		return nil, wrapDecode("attribute count", err)
	}
	off += n
	if count < 0 || count > len(data)-off {
		return nil, fmt.Errorf("%w: attribute count %d", ErrTruncatedData, count)
	}
	doc.Attributes = make(core.Attributes, count)
	for range count {
		key, n, err := ord.String.Unmarshal(data[off:])
		if err != nil {
			return nil, wrapDecode("attribute key", err)
		}
		off += n
		value, n, err := unmarshalValue(data[off:])
		if err != nil {
			return nil, wrapDecode("attribute "+key, err)
		}
		off += n
		doc.Attributes[key] = value
	}

	return doc, nil
}

func valueSize(v any) (int, error) {
	switch val := v.(type) {
	case string:
		return varint.Int.Size(tagString) + ord.String.Size(val), nil
	case int64:
		return varint.Int.Size(tagInt64) + varint.Int64.Size(val), nil
	case float64:
		return varint.Int.Size(tagFloat64) + raw.Float64.Size(val), nil
	case bool:
		return varint.Int.Size(tagBool) + ord.Bool.Size(val), nil
	case []string:
		size := varint.Int.Size(tagStrings) + varint.Int.Size(len(val))
		for _, s := range val {
			size += ord.String.Size(s)
		}
		return size, nil
	default:
		return 0, fmt.Errorf("%w: %T", core.ErrUnsupportedAttribute, v)
	}
}

// marshalValue assumes v passed valueSize.
func marshalValue(v any, bs []byte) (n int) {
	switch val := v.(type) {
	case string:
		n = varint.Int.Marshal(tagString, bs)
		n += ord.String.Marshal(val, bs[n:])
	case int64:
		n = varint.Int.Marshal(tagInt64, bs)
		n += varint.Int64.Marshal(val, bs[n:])
	case float64:
		n = varint.Int.Marshal(tagFloat64, bs)
		n += raw.Float64.Marshal(val, bs[n:])
	case bool:
		n = varint.Int.Marshal(tagBool, bs)
		n += ord.Bool.Marshal(val, bs[n:])
	case []string:
		n = varint.Int.Marshal(tagStrings, bs)
		n += varint.Int.Marshal(len(val), bs[n:])
		for _, s := range val {
			n += ord.String.Marshal(s, bs[n:])
		}
	}
	return n
}

func unmarshalValue(bs []byte) (v any, n int, err error) {
	tag, n, err := varint.Int.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	var m int
	switch tag {
	case tagString:
		v, m, err = ord.String.Unmarshal(bs[n:])
	case tagInt64:
		v, m, err = varint.Int64.Unmarshal(bs[n:])
	case tagFloat64:
		v, m, err = raw.Float64.Unmarshal(bs[n:])
	case tagBool:
		v, m, err = ord.Bool.Unmarshal(bs[n:])
	case tagStrings:
		var count int
		count, m, err = varint.Int.Unmarshal(bs[n:])
		if err != nil {
			return nil, n + m, err
		}
		n += m
		if count < 0 || count > len(bs)-n {
			return nil, n, ErrTruncatedData
		}
		list := make([]string, count)
		for i := range list {
			list[i], m, err = ord.String.Unmarshal(bs[n:])
			if err != nil {
				return nil, n + m, err
			}
			n += m
		}
		return list, n, nil
	default:
		return nil, n, fmt.Errorf("unknown attribute tag %d", tag)
	}
	return v, n + m, err
}

func wrapDecode(field string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrSerializationFailed, field, err)
}
