package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"regexp"
	"strings"
	"sync"

	"github.com/itchyny/gojq"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

var jqCache sync.Map // expression -> *gojq.Code

var jqJoinSeparator = regexp.MustCompile(`join\s*\(\s*["']([^"']*)["']\s*\)`)

// applyJQ runs a jq program over v. One output replaces the value, several
// become a list, none yields nil. Compile or run failures leave the value
// unchanged, except that lists are joined with the separator of a join()
// call in the expression, or ", ".
func (e *Executor) applyJQ(ctx context.Context, src string, v any) any {
	src = strings.ReplaceAll(src, `\"`, `"`)
	code, err := compileJQ(src)
	if err != nil {
		degradationsTotal.WithLabelValues("jq").Inc()
		slog.Warn("jq expression does not compile, using fallback", "expression", src, "error", err)
		return jqFallback(src, v)
	}

	ctx, cancel := context.WithTimeout(ctx, e.jqTimeout)
	defer cancel()

	var out []any
	iter := code.RunWithContext(ctx, plainValue(v))
	for {
		res, ok := iter.Next()
		if !ok {
			break
		}
		if err, isErr := res.(error); isErr {
			degradationsTotal.WithLabelValues("jq").Inc()
			slog.Warn("jq evaluation failed, keeping value", "expression", src, "error", err)
			return v
		}
		out = append(out, res)
	}

	switch len(out) {
	case 0:
		return nil
	case 1:
		return out[0]
	default:
		return out
	}
}

func compileJQ(src string) (*gojq.Code, error) {
	if c, ok := jqCache.Load(src); ok {
		return c.(*gojq.Code), nil
	}
	q, err := gojq.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	code, err := gojq.Compile(q)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}
	jqCache.Store(src, code)
	return code, nil
}

func jqFallback(src string, v any) any {
	items, ok := v.([]any)
	if !ok {
		return v
	}
	sep := ", "
	if m := jqJoinSeparator.FindStringSubmatch(src); m != nil {
		sep = m[1]
	}
	parts := make([]string, 0, len(items))
	for _, it := range items {
		parts = append(parts, filter.ToString(it))
	}
	return strings.Join(parts, sep)
}

// plainValue converts decoded JSON into plain Go values. gojq rejects
// json.Number and yaml.v3 quotes it.
func plainValue(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil && n >= math.MinInt && n <= math.MaxInt {
			return int(n)
		}
		f, _ := t.Float64()
		return f
	case int64:
		return int(t)
	case int32:
		return int(t)
	case float32:
		return float64(t)
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[k] = plainValue(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	case []map[string]any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = plainValue(val)
		}
		return out
	case []string:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = val
		}
		return out
	}
	return v
}
