package executor

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"strings"
	"time"

	"github.com/vast-data/vast-admin-mcp/pkg/expr"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// record is one row between Transform and Materialize. values and raw are
// keyed by field name and include hidden fields.
type record struct {
	source map[string]any
	values map[string]any
	raw    map[string]any
}

// aggregate is a dotted value collected across the matches of an act_on
// all join.
type aggregate []any

// transform resolves every field of every row in field order. Each
// resolved field is visible to the fields after it.
func (e *Executor) transform(ctx context.Context, r *run) error {
	r.records = make([]*record, 0, len(r.rows))
	for _, row := range r.rows {
		rec := &record{
			source: row,
			values: make(map[string]any, len(r.cmd.Fields)),
			raw:    make(map[string]any, len(r.cmd.Fields)),
		}
		scope := maps.Clone(row)

		for i := range r.cmd.Fields {
			f := &r.cmd.Fields[i]
			if f.Condition != nil && !evalCondition(f.Condition, scope) {
				rec.values[f.Name] = nil
				rec.raw[f.Name] = nil
				continue
			}

			v := e.resolve(r, f, scope)
			if agg, ok := v.(aggregate); ok {
				rec.raw[f.Name] = []any(agg)
				v = e.postProcessAll(ctx, f, agg)
			} else {
				rec.raw[f.Name] = v
				if v != nil {
					v = e.postProcess(ctx, f, v)
				}
			}
			rec.values[f.Name] = v
			scope[f.Name] = v
		}
		r.records = append(r.records, rec)
	}
	return nil
}

// resolve produces a field's value before post-processing.
func (e *Executor) resolve(r *run, f *template.Field, scope map[string]any) any {
	if f.IsComputed() {
		v, err := expr.Eval(f.Value, scope)
		if err != nil {
			degradationsTotal.WithLabelValues("transform").Inc()
			slog.Warn("field expression failed",
				"command", r.cmd.Name,
				"field", f.Name,
				"error", err)
			return nil
		}
		return v
	}

	if name, ok := f.IsCLIReference(); ok {
		if v := r.args[name]; !isEmpty(v) {
			return v
		}
		if v := r.args[name+"s"]; !isEmpty(v) {
			return v
		}
		if name == ArgCluster || name == ArgClusters {
			return e.cluster
		}
		return nil
	}

	if strings.Contains(f.Source, ".") {
		if v, ok := scope[f.Source]; ok {
			return v
		}
		return lookupPath(scope, f.Source)
	}

	if v, ok := scope[f.Source]; ok {
		return v
	}
	return scope[f.Name]
}

// lookupPath walks a dotted path through nested maps. A list on the way
// collects the remaining path from every element into an aggregate. Empty
// maps read as nil.
func lookupPath(row map[string]any, path string) any {
	parts := strings.Split(path, ".")
	var cur any = row
	for i, p := range parts {
		switch t := cur.(type) {
		case map[string]any:
			cur = t[p]
		case []any:
			rest := strings.Join(parts[i:], ".")
			var agg aggregate
			for _, item := range t {
				m, ok := item.(map[string]any)
				if !ok {
					continue
				}
				if v := lookupPath(m, rest); v != nil {
					if nested, ok := v.(aggregate); ok {
						agg = append(agg, nested...)
					} else {
						agg = append(agg, v)
					}
				}
			}
			if len(agg) == 0 {
				return nil
			}
			return agg
		default:
			return nil
		}
	}
	if m, ok := cur.(map[string]any); ok && len(m) == 0 {
		return nil
	}
	return cur
}

// postProcess applies jq, then conversion, then truncation.
func (e *Executor) postProcess(ctx context.Context, f *template.Field, v any) any {
	if f.JQ != "" {
		v = e.applyJQ(ctx, f.JQ, v)
		if v == nil {
			return nil
		}
	}
	if f.Convert != "" {
		v = e.convert(f.Convert, v)
	}
	return truncate(v, f.LimitWidth)
}

// postProcessAll converts each aggregated match and joins them with
// newlines.
func (e *Executor) postProcessAll(ctx context.Context, f *template.Field, agg aggregate) any {
	parts := make([]string, 0, len(agg))
	for _, item := range agg {
		if f.JQ != "" {
			item = e.applyJQ(ctx, f.JQ, item)
		}
		if item == nil {
			continue
		}
		if f.Convert != "" {
			item = e.convert(f.Convert, item)
		}
		parts = append(parts, filter.ToString(item))
	}
	return truncate(strings.Join(parts, "\n"), f.LimitWidth)
}

func (e *Executor) convert(unit string, v any) any {
	if unit == template.ConvertTimeDelta {
		return timeDelta(v, e.now())
	}
	return filter.FormatCapacity(v, unit)
}

// truncate shortens strings longer than width to width characters ending in
// "...".
func truncate(v any, width int) any {
	s, ok := v.(string)
	if !ok || width <= 0 {
		return v
	}
	runes := []rune(s)
	if len(runes) <= width {
		return v
	}
	if width > 3 {
		return string(runes[:width-3]) + "..."
	}
	return string(runes[:width])
}

// timeDelta renders a timestamp relative to now as "3d 1h 45m 38s ago" or
// "in 2h 30m 15s". Unparseable values are returned as strings.
func timeDelta(v any, now time.Time) any {
	s := filter.ToString(v)
	t, ok := parseTime(s)
	if !ok {
		return s
	}

	d := now.Sub(t)
	future := d < 0
	if future {
		d = -d
	}
	total := int64(d / time.Second)
	days := total / 86400
	hours := total % 86400 / 3600
	minutes := total % 3600 / 60
	seconds := total % 60

	var parts []string
	if days > 0 {
		parts = append(parts, fmt.Sprintf("%dd", days))
	}
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%dh", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%dm", minutes))
	}
	if seconds > 0 || len(parts) == 0 {
		parts = append(parts, fmt.Sprintf("%ds", seconds))
	}

	if future {
		return "in " + strings.Join(parts, " ")
	}
	return strings.Join(parts, " ") + " ago"
}
