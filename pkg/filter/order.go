package filter

import (
	"encoding/json"
	"sort"
	"strings"
)

// Direction is a sort direction.
type Direction string

const (
	Asc  Direction = "asc"
	Desc Direction = "desc"
)

// OrderSpec is one parsed order token. Field is the name as written by the
// caller; callers map it to a row key before sorting.
type OrderSpec struct {
	Field     string
	Direction Direction
}

// Normalized returns the field with underscores replaced by spaces.
func (o OrderSpec) Normalized() string {
	return strings.ReplaceAll(o.Field, "_", " ")
}

// WithField returns a copy of o keyed by field.
func (o OrderSpec) WithField(field string) OrderSpec {
	o.Field = field
	return o
}

// capacityKeywords mark fields whose missing values sort as zero.
var capacityKeywords = []string{"capacity", "size", "limit", "used", "quota"}

// HasCapacityKeyword reports whether name looks like a capacity field.
func HasCapacityKeyword(name string) bool {
	l := strings.ToLower(name)
	for _, k := range capacityKeywords {
		if strings.Contains(l, k) {
			return true
		}
	}
	return false
}

// SplitOrder accepts an order argument as a comma-separated string or a list
// of tokens and returns the individual tokens.
func SplitOrder(v any) []string {
	var tokens []string
	switch t := v.(type) {
	case string:
		tokens = strings.Split(t, ",")
	case []string:
		tokens = t
	case []any:
		for _, it := range t {
			tokens = append(tokens, strings.Split(ToString(it), ",")...)
		}
	default:
		return nil
	}

	out := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if tok = strings.TrimSpace(tok); tok != "" {
			out = append(out, tok)
		}
	}
	return out
}

// ParseOrder parses every token of an order argument, dropping invalid ones.
func ParseOrder(v any) []OrderSpec {
	var specs []OrderSpec
	for _, tok := range SplitOrder(v) {
		if spec, ok := ParseOrderToken(tok); ok {
			specs = append(specs, spec)
		}
	}
	return specs
}

// ParseOrderToken parses "field:dir", "field dir", "field" or "-field".
// A leading minus takes the rest of the token as the field name.
func ParseOrderToken(tok string) (OrderSpec, bool) {
	s := strings.TrimSpace(tok)
	if s == "" {
		return OrderSpec{}, false
	}

	if rest, ok := strings.CutPrefix(s, "-"); ok {
		field := strings.TrimSpace(rest)
		return OrderSpec{Field: field, Direction: Desc}, field != ""
	}

	field, dir := s, ""
	if f, d, ok := strings.Cut(s, ":"); ok {
		field, dir = f, d
	} else if parts := strings.Fields(s); len(parts) > 1 {
		field = parts[0]
		dir = strings.TrimSpace(strings.TrimPrefix(s, parts[0]))
	}

	field = strings.TrimSpace(field)
	if field == "" {
		return OrderSpec{}, false
	}

	d, ok := ParseDirection(dir)
	if !ok {
		return OrderSpec{}, false
	}
	return OrderSpec{Field: field, Direction: d}, true
}

// ParseDirection accepts any prefix of "ascending" or "descending", the
// "dec"/"dece" synonyms and the empty string (ascending).
func ParseDirection(s string) (Direction, bool) {
	d := strings.ToLower(strings.TrimSpace(s))
	switch {
	case d == "":
		return Asc, true
	case strings.HasPrefix("ascending", d):
		return Asc, true
	case strings.HasPrefix("descending", d), d == "dec", d == "dece":
		return Desc, true
	default:
		return "", false
	}
}

// SortRows sorts rows in place by the given specs. Each spec's Field is used
// as the row key. Keys are applied from last to first with a stable sort.
func SortRows(rows []map[string]any, specs []OrderSpec) {
	SortBy(rows, specs, func(row map[string]any, field string) any {
		return row[field]
	})
}

// SortBy is SortRows for any row type; value returns a row's value for a
// spec's Field.
func SortBy[R any](rows []R, specs []OrderSpec, value func(R, string) any) {
	for i := len(specs) - 1; i >= 0; i-- {
		spec := specs[i]
		zeroNil := HasCapacityKeyword(spec.Field)
		sort.SliceStable(rows, func(a, b int) bool {
			va := sortValue(value(rows[a], spec.Field), zeroNil)
			vb := sortValue(value(rows[b], spec.Field), zeroNil)
			if spec.Direction == Desc {
				return compareValues(vb, va) < 0
			}
			return compareValues(va, vb) < 0
		})
	}
}

func sortValue(v any, zeroNil bool) any {
	if v == nil {
		if zeroNil {
			return float64(0)
		}
		return ""
	}
	return v
}

// compareValues orders numbers before strings before anything else.
func compareValues(a, b any) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}

	switch ra {
	case 0:
		fa, _ := ToFloat(a)
		fb, _ := ToFloat(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	default:
		return strings.Compare(ToString(a), ToString(b))
	}
}

func rank(v any) int {
	switch v.(type) {
	case float64, float32, int, int32, int64, uint64, json.Number, bool:
		return 0
	case string:
		return 1
	default:
		return 2
	}
}
