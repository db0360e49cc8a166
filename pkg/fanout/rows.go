package fanout

import (
	"strings"

	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

// finish orders the combined rows on raw values, applies top and drops the
// raw values.
func finish(rows []*executor.Row, specs []filter.OrderSpec, args map[string]any) []*executor.Row {
	if len(specs) > 0 {
		filter.SortBy(rows, specs, sortValue)
	}
	if top, ok := filter.ToInt(args[executor.ArgTop]); ok && top > 0 && int(top) < len(rows) {
		rows = rows[:top]
	}
	for _, row := range rows {
		row.StripRaw()
	}
	return rows
}

// sortValue reads the raw value of a field, falling back to the displayed
// value for keys without one.
func sortValue(row *executor.Row, field string) any {
	key := executor.CanonicalName(field)
	if v, ok := row.Raw(key); ok {
		return v
	}
	v, _ := row.Get(key)
	return v
}

// align projects a row onto fields, reading alternate spellings of each
// name and filling missing ones with nil. The instance key is kept.
func align(row *executor.Row, fields []string) *executor.Row {
	out := executor.NewRow()
	for _, f := range fields {
		var v, raw any
		var hasRaw bool
		for _, k := range spellings(f) {
			if got, ok := row.Get(k); ok {
				v = got
				raw, hasRaw = row.Raw(k)
				break
			}
		}
		out.Set(f, v)
		if hasRaw {
			out.SetRaw(f, raw)
		}
	}
	if inst, ok := row.Get(executor.InstanceKey); ok {
		out.Set(executor.InstanceKey, inst)
	}
	return out
}

func spellings(name string) []string {
	return []string{
		name,
		strings.ReplaceAll(name, "_", " "),
		strings.ReplaceAll(name, "_", "-"),
	}
}
