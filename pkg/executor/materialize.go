package executor

import (
	"context"
	"maps"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

// materialize emits visible fields in field order under their canonical
// names, with raw values attached for cross-cluster ordering.
func (e *Executor) materialize(_ context.Context, r *run) error {
	e.reorder(r)

	withInstance := false
	if v, ok := r.args[ArgInstance]; ok {
		withInstance, _ = filter.ToBool(v)
	}

	r.out = make([]*Row, 0, len(r.records))
	for _, rec := range r.records {
		row := NewRow()
		for i := range r.cmd.Fields {
			f := &r.cmd.Fields[i]
			if f.Hide {
				continue
			}
			key := CanonicalName(f.Name)
			row.Set(key, rec.values[f.Name])
			row.SetRaw(key, rec.raw[f.Name])
		}
		if withInstance {
			row.Set(InstanceKey, maps.Clone(rec.source))
		}
		r.out = append(r.out, row)
	}
	return nil
}
