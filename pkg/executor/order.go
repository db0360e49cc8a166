package executor

import (
	"context"
	"strings"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// OrderSpecs returns the ordering requested by args, or the command's
// default ordering when args carry none.
func OrderSpecs(cmd *template.Command, args map[string]any) []filter.OrderSpec {
	if v, ok := args[ArgOrder]; ok && !isEmpty(v) {
		return filter.ParseOrder(v)
	}
	if cmd == nil || len(cmd.Ordering) == 0 {
		return nil
	}
	return filter.ParseOrder(cmd.Ordering.Tokens())
}

// order sorts the joined rows on raw values before any conversion.
func (e *Executor) order(_ context.Context, r *run) error {
	specs := OrderSpecs(r.cmd, r.args)
	if len(specs) == 0 {
		return nil
	}
	filter.SortBy(r.rows, specs, func(row map[string]any, field string) any {
		return orderValue(r.cmd, row, field)
	})

	for _, s := range specs {
		if f, ok := r.cmd.Field(s.Field); ok && !hasRawSource(f) {
			r.lateOrder = specs
			break
		}
	}
	return nil
}

// reorder sorts transformed records when an order key is a field that only
// exists after Transform. Raw values are used for every key.
func (e *Executor) reorder(r *run) {
	if len(r.lateOrder) == 0 {
		return
	}
	filter.SortBy(r.records, r.lateOrder, func(rec *record, field string) any {
		if f, ok := r.cmd.Field(field); ok {
			return rec.raw[f.Name]
		}
		return orderValue(r.cmd, rec.source, field)
	})
}

func hasRawSource(f *template.Field) bool {
	if f.IsComputed() {
		return false
	}
	_, cli := f.IsCLIReference()
	return !cli
}

// orderValue finds a sort key in a raw row. Display names map to their
// source; names that are not fields are read as raw attributes.
func orderValue(cmd *template.Command, row map[string]any, field string) any {
	f, ok := cmd.Field(field)
	if !ok {
		if v, found := row[field]; found {
			return v
		}
		return row[strings.ReplaceAll(field, "_", " ")]
	}
	if !hasRawSource(f) {
		return nil
	}
	if strings.Contains(f.Source, ".") {
		return lookupPath(row, f.Source)
	}
	if v, found := row[f.Source]; found {
		return v
	}
	return row[f.Name]
}

// CanonicalName is the single spelling used for output keys: spaces and
// hyphens become underscores, runs collapse and edges are trimmed.
func CanonicalName(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	underscore := false
	for _, c := range strings.TrimSpace(name) {
		if c == ' ' || c == '-' || c == '_' {
			underscore = true
			continue
		}
		if underscore && b.Len() > 0 {
			b.WriteByte('_')
		}
		underscore = false
		b.WriteRune(c)
	}
	return b.String()
}
