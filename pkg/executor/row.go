package executor

import (
	"bytes"
	"encoding/json"
	"maps"
	"slices"

	"gopkg.in/yaml.v3"
)

// Row is one output record. Keys keep insertion order, which is the
// command's field order. Raw values are kept beside the output for sorting
// across clusters and are never serialized.
type Row struct {
	keys   []string
	values map[string]any
	raw    map[string]any
}

// NewRow returns an empty row.
func NewRow() *Row {
	return &Row{values: map[string]any{}, raw: map[string]any{}}
}

// RowFromMap builds a row from m with keys in the given order. Keys of m not
// listed are appended in sorted order.
func RowFromMap(m map[string]any, order ...string) *Row {
	r := NewRow()
	for _, k := range order {
		if v, ok := m[k]; ok {
			r.Set(k, v)
		}
	}
	rest := slices.Sorted(maps.Keys(m))
	for _, k := range rest {
		if _, ok := r.values[k]; !ok {
			r.Set(k, m[k])
		}
	}
	return r
}

// Set stores v under key, appending key if it is new.
func (r *Row) Set(key string, v any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = v
}

// Get returns the value under key.
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Delete removes key.
func (r *Row) Delete(key string) {
	if _, ok := r.values[key]; !ok {
		return
	}
	delete(r.values, key)
	r.keys = slices.DeleteFunc(r.keys, func(k string) bool { return k == key })
}

// Keys returns the keys in order.
func (r *Row) Keys() []string {
	return slices.Clone(r.keys)
}

// Len returns the number of keys.
func (r *Row) Len() int {
	return len(r.keys)
}

// Map returns a copy of the values.
func (r *Row) Map() map[string]any {
	return maps.Clone(r.values)
}

// Raw returns the pre-conversion value of a field.
func (r *Row) Raw(key string) (any, bool) {
	v, ok := r.raw[key]
	return v, ok
}

// SetRaw records the pre-conversion value of a field.
func (r *Row) SetRaw(key string, v any) {
	r.raw[key] = v
}

// HasRaw reports whether any raw values are attached.
func (r *Row) HasRaw() bool {
	return len(r.raw) > 0
}

// StripRaw drops the raw values.
func (r *Row) StripRaw() {
	clear(r.raw)
}

// MarshalJSON writes the row as an object in key order.
func (r *Row) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(r.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalYAML writes the row as a mapping in key order.
func (r *Row) MarshalYAML() (any, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range r.keys {
		var v yaml.Node
		if err := v.Encode(plainValue(r.values[k])); err != nil {
			return nil, err
		}
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k},
			&v)
	}
	return node, nil
}
