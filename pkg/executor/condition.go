package executor

import (
	"encoding/json"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

type valueKind int

const (
	kindString valueKind = iota
	kindBool
	kindNumber
	kindTime
)

var operatorAliases = map[string]string{
	"eq": "equals", "==": "equals",
	"ne": "not_equals", "!=": "not_equals",
	"gt": "greater_than", ">": "greater_than",
	"lt": "less_than", "<": "less_than",
	"gte": "greater_equal", ">=": "greater_equal",
	"lte": "less_equal", "<=": "less_equal",
}

var conditionRegexCache sync.Map // pattern -> *regexp.Regexp

// evalCondition reports whether a row satisfies a field condition. The
// operand is coerced to the type detected from the row value; a missing or
// nil row value only satisfies "equals null".
func evalCondition(c *template.Condition, scope map[string]any) bool {
	op := strings.ToLower(c.Operator)
	if canonical, ok := operatorAliases[op]; ok {
		op = canonical
	}

	v, ok := scope[c.Field]
	if !ok {
		v, ok = scope[strings.ReplaceAll(c.Field, "_", " ")]
	}
	if !ok {
		return false
	}
	if v == nil {
		return op == "equals" && c.Value == nil
	}

	kind := detectKind(v)
	switch op {
	case "contains":
		return strings.Contains(filter.ToString(v), filter.ToString(c.Value))
	case "starts_with":
		return strings.HasPrefix(filter.ToString(v), filter.ToString(c.Value))
	case "ends_with":
		return strings.HasSuffix(filter.ToString(v), filter.ToString(c.Value))
	case "regex":
		re, err := conditionRegex(filter.ToString(c.Value))
		if err != nil {
			slog.Warn("invalid condition regex", "pattern", c.Value, "error", err)
			return false
		}
		return re.MatchString(filter.ToString(v))
	case "in":
		return evalIn(v, c.Value)
	}

	cmp, ok := compareTyped(kind, v, c.Value)
	if !ok {
		cmp = strings.Compare(filter.ToString(v), filter.ToString(c.Value))
	}
	switch op {
	case "equals":
		return cmp == 0
	case "not_equals":
		return cmp != 0
	case "greater_than":
		return cmp > 0
	case "less_than":
		return cmp < 0
	case "greater_equal":
		return cmp >= 0
	case "less_equal":
		return cmp <= 0
	}
	slog.Warn("unknown condition operator, comparing as strings", "operator", c.Operator)
	return filter.ToString(v) == filter.ToString(c.Value)
}

func detectKind(v any) valueKind {
	switch t := v.(type) {
	case bool:
		return kindBool
	case float64, float32, int, int32, int64, uint64, json.Number:
		return kindNumber
	case string:
		switch strings.ToLower(t) {
		case "true", "false":
			return kindBool
		}
		if _, err := strconv.ParseInt(t, 10, 64); err == nil {
			return kindNumber
		}
		if _, ok := parseTime(t); ok {
			return kindTime
		}
	}
	return kindString
}

// compareTyped compares the row value with the operand under kind. ok is
// false when the operand cannot be coerced.
func compareTyped(kind valueKind, v, operand any) (int, bool) {
	switch kind {
	case kindBool:
		a, _ := filter.ToBool(v)
		b, ok := operandBool(operand)
		if !ok {
			return 0, false
		}
		switch {
		case a == b:
			return 0, true
		case !a:
			return -1, true
		}
		return 1, true
	case kindNumber:
		a, _ := filter.ToFloat(v)
		b, ok := filter.ToFloat(operand)
		if !ok {
			if s, isStr := operand.(string); isStr {
				n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
				b, ok = float64(n), err == nil
			}
		}
		if !ok {
			return 0, false
		}
		switch {
		case a < b:
			return -1, true
		case a > b:
			return 1, true
		}
		return 0, true
	case kindTime:
		a, _ := parseTime(filter.ToString(v))
		b, ok := parseTime(filter.ToString(operand))
		if !ok {
			return 0, false
		}
		return a.Compare(b), true
	}
	return strings.Compare(filter.ToString(v), filter.ToString(operand)), true
}

func operandBool(v any) (bool, bool) {
	switch t := v.(type) {
	case bool:
		return t, true
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "1", "yes", "on":
			return true, true
		}
		return false, true
	case nil:
		return false, false
	}
	f, ok := filter.ToFloat(v)
	return f != 0, ok
}

func evalIn(v, operand any) bool {
	s := filter.ToString(v)
	switch t := operand.(type) {
	case []any:
		return slices.ContainsFunc(t, func(it any) bool { return filter.ToString(it) == s })
	case string:
		if strings.Contains(t, ",") {
			for _, it := range strings.Split(t, ",") {
				if strings.TrimSpace(it) == s {
					return true
				}
			}
			return false
		}
		return strings.Contains(s, t)
	}
	return filter.ToString(operand) == s
}

func conditionRegex(pattern string) (*regexp.Regexp, error) {
	if re, ok := conditionRegexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, err
	}
	conditionRegexCache.Store(pattern, re)
	return re, nil
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
}

// parseTime reads ISO-8601 timestamps. Values without a zone are UTC.
func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len("2006-01-02T15:04") {
		return time.Time{}, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
