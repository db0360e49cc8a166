package filter

import (
	"fmt"
	"strconv"
	"strings"
)

// ArgType is the declared type of a command argument.
type ArgType string

const (
	TypeString   ArgType = "string"
	TypeInteger  ArgType = "integer"
	TypeBoolean  ArgType = "boolean"
	TypeList     ArgType = "list"
	TypeCapacity ArgType = "capacity"
)

// ParseArgType accepts both the long and short spellings (str, int, bool).
func ParseArgType(s string) (ArgType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "str", "string":
		return TypeString, true
	case "int", "integer":
		return TypeInteger, true
	case "bool", "boolean":
		return TypeBoolean, true
	case "list":
		return TypeList, true
	case "capacity":
		return TypeCapacity, true
	default:
		return "", false
	}
}

// Kind tags a Predicate.
type Kind string

const (
	KindEquals      Kind = "equals"
	KindContains    Kind = "contains"
	KindNotContains Kind = "not_contains"
	KindStartsWith  Kind = "starts_with"
	KindEndsWith    Kind = "ends_with"
	KindNonEmpty    Kind = "non_empty"
	KindGt          Kind = "gt"
	KindGte         Kind = "gte"
	KindLt          Kind = "lt"
	KindLte         Kind = "lte"
	KindEq          Kind = "eq"
	KindBool        Kind = "bool"
	KindIn          Kind = "in"
)

var suffixes = map[Kind]string{
	KindContains:    "__icontains",
	KindNotContains: "__not_icontains",
	KindStartsWith:  "__startswith",
	KindEndsWith:    "__endswith",
	KindNonEmpty:    "__regex",
	KindGt:          "__gt",
	KindGte:         "__gte",
	KindLt:          "__lt",
	KindLte:         "__lte",
}

// Predicate is a parsed filter literal. Value holds the operand coerced to
// the argument type: string, int64 (integer and capacity bytes) or bool.
type Predicate struct {
	Type  ArgType
	Kind  Kind
	Value any
	Raw   string
}

// Suffix returns the upstream query parameter suffix, empty for equality.
func (p Predicate) Suffix() string {
	return suffixes[p.Kind]
}

// Pushdown reports whether the predicate can be sent upstream. List
// membership is only ever evaluated locally.
func (p Predicate) Pushdown() bool {
	return p.Kind != KindIn
}

// Param returns the upstream parameter name for the given attribute.
func (p Predicate) Param(attr string) string {
	return attr + p.Suffix()
}

// Matches applies the predicate locally. A plain string literal is a
// case-insensitive equality; wildcard literals keep their pattern meaning.
func (p Predicate) Matches(v any) bool {
	if p.Type == TypeString && p.Kind == KindEquals && !strings.ContainsAny(p.Raw, "*?[") {
		return strings.EqualFold(ToString(v), p.Raw)
	}
	return Match(v, p.Raw, p.Type == TypeList)
}

// Parse parses a filter literal for the given argument type.
func Parse(t ArgType, raw string) (Predicate, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return Predicate{}, fmt.Errorf("filter string cannot be empty")
	}
	p := Predicate{Type: t, Raw: s}

	switch t {
	case TypeBoolean:
		switch strings.ToLower(s) {
		case "true", "1":
			p.Kind, p.Value = KindBool, true
		case "false", "0":
			p.Kind, p.Value = KindBool, false
		default:
			return Predicate{}, fmt.Errorf("invalid boolean value %q, use true/false or 1/0", s)
		}
		return p, nil

	case TypeCapacity:
		c, err := ParseCapacity(s)
		if err != nil {
			return Predicate{}, err
		}
		p.Kind, p.Value = Kind(c.Op), c.Bytes
		return p, nil

	case TypeInteger:
		for _, sym := range []string{">=", "<=", ">", "<"} {
			if rest, ok := strings.CutPrefix(s, sym); ok {
				n, err := strconv.ParseInt(strings.TrimSpace(rest), 10, 64)
				if err != nil {
					return Predicate{}, fmt.Errorf("invalid numeric value after %q: %q", sym, rest)
				}
				p.Kind, p.Value = Kind(opFromSymbol(sym)), n
				return p, nil
			}
		}
		n, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Predicate{}, fmt.Errorf("invalid numeric value: %q", s)
		}
		p.Kind, p.Value = KindEq, n
		return p, nil

	case TypeList:
		p.Kind = KindIn
		p.Value = strings.TrimSpace(strings.TrimPrefix(s, "in:"))
		return p, nil
	}

	switch {
	case s == "*":
		p.Kind, p.Value = KindNonEmpty, ".+"
	case s == "!*":
		p.Kind, p.Value = KindNotContains, ""
	case strings.HasPrefix(s, "!*") && strings.HasSuffix(s, "*"):
		p.Kind, p.Value = KindNotContains, s[2:len(s)-1]
	case strings.HasPrefix(s, "*") && strings.HasSuffix(s, "*"):
		p.Kind, p.Value = KindContains, s[1:len(s)-1]
	case strings.HasSuffix(s, "*"):
		p.Kind, p.Value = KindStartsWith, s[:len(s)-1]
	case strings.HasPrefix(s, "*"):
		p.Kind, p.Value = KindEndsWith, s[1:]
	default:
		p.Kind, p.Value = KindEquals, s
	}
	return p, nil
}
