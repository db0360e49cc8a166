package filter

import (
	"strconv"
	"strings"
)

// Match reports whether a row value satisfies a filter literal. The literal
// kind is detected from its shape: capacity, then numeric, then the string
// wildcard forms, then booleans, then glob, then case-insensitive substring.
// nil never matches.
func Match(value any, pattern string, isList bool) bool {
	if value == nil {
		return false
	}

	if isList {
		return matchList(value, pattern)
	}

	if capacityRe.MatchString(pattern) {
		c, err := ParseCapacity(pattern)
		if err != nil {
			return containsFold(ToString(value), pattern)
		}
		b, ok := ToBytes(value)
		if !ok {
			return false
		}
		return compare(c.Op, b, c.Bytes)
	}

	if m := numericRe.FindStringSubmatch(pattern); m != nil {
		if want, err := strconv.ParseFloat(m[2], 64); err == nil {
			got, ok := ToFloat(value)
			if !ok {
				return false
			}
			return compare(opFromSymbol(m[1]), got, want)
		}
	}

	return matchesPattern(ToString(value), pattern)
}

// matchesPattern checks a rendered value against a string pattern.
func matchesPattern(s, pattern string) bool {
	ls := strings.ToLower(s)

	switch {
	case pattern == "*":
		return s != ""
	case pattern == "!*":
		return false
	// !*x* - does not contain
	case strings.HasPrefix(pattern, "!*") && strings.HasSuffix(pattern, "*"):
		return !strings.Contains(ls, strings.ToLower(pattern[2:len(pattern)-1]))
	// *x* - contains
	case strings.HasPrefix(pattern, "*") && strings.HasSuffix(pattern, "*"):
		return strings.Contains(ls, strings.ToLower(pattern[1:len(pattern)-1]))
	// x* - starts with
	case strings.HasSuffix(pattern, "*") && !strings.HasPrefix(pattern, "*"):
		return strings.HasPrefix(ls, strings.ToLower(strings.TrimSuffix(pattern, "*")))
	// *x - ends with
	case strings.HasPrefix(pattern, "*") && !strings.HasSuffix(pattern, "*"):
		return strings.HasSuffix(ls, strings.ToLower(strings.TrimPrefix(pattern, "*")))
	}

	switch strings.ToLower(pattern) {
	case "true", "1":
		b, ok := ToBool(s)
		return ok && b
	case "false", "0":
		b, ok := ToBool(s)
		return ok && !b
	}

	if strings.ContainsAny(pattern, "*?[") {
		return Glob(pattern, s)
	}
	return containsFold(s, pattern)
}

func matchList(value any, pattern string) bool {
	joined := listString(value)
	if strings.TrimSpace(joined) == "" {
		return false
	}

	search := strings.TrimSpace(strings.TrimPrefix(pattern, "in:"))
	items := strings.Split(joined, ",")
	for i := range items {
		items[i] = strings.TrimSpace(items[i])
	}

	for _, item := range items {
		if strings.EqualFold(item, search) {
			return true
		}
	}

	if strings.ContainsAny(search, "*?") {
		for _, item := range items {
			if Glob(search, item) {
				return true
			}
		}
		return false
	}

	for _, item := range items {
		if containsFold(item, search) {
			return true
		}
	}
	return false
}

// listString joins slice values with commas; other values are rendered as is.
func listString(v any) string {
	items, ok := v.([]any)
	if !ok {
		return ToString(v)
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, ToString(it))
	}
	return strings.Join(parts, ",")
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}
