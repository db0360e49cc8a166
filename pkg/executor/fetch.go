package executor

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

// fetchRaw calls every endpoint once. A failing endpoint yields no rows
// unless the failure is a whitelist denial.
func (e *Executor) fetchRaw(ctx context.Context, r *run) error {
	r.data = make(map[string][]map[string]any, len(r.cmd.Endpoints))
	for _, ep := range r.cmd.Endpoints {
		rows, err := e.api.Call(ctx, ep, "get", cloneParams(r.params[ep]), r.tenant)
		if err != nil {
			if vaerrors.IsHard(err) {
				return err
			}
			degradationsTotal.WithLabelValues("fetch_raw").Inc()
			slog.Warn("endpoint fetch failed, continuing without its rows",
				"command", r.cmd.Name,
				"cluster", e.cluster,
				"endpoint", ep,
				"error", err)
			rows = nil
		}
		r.data[ep] = rows
	}
	return nil
}

// filterRaw applies local predicates to the endpoint rows that hold their
// attribute. Predicates whose attribute is absent from every row are left
// for filterComputed.
func (e *Executor) filterRaw(_ context.Context, r *run) error {
	for _, lf := range r.filters {
		if lf.deferred {
			continue
		}
		rows := r.data[lf.endpoint]
		if len(rows) > 0 && !anyHas(rows, lf.attr) {
			slog.Debug("filter attribute not in raw data, deferring",
				"command", r.cmd.Name,
				"argument", lf.arg,
				"endpoint", lf.endpoint,
				"attribute", lf.attr)
			lf.deferred = true
			continue
		}
		kept := rows[:0:0]
		for _, row := range rows {
			if matches(lf.pred, row[lf.attr]) {
				kept = append(kept, row)
			}
		}
		r.data[lf.endpoint] = kept
	}
	r.rows = r.data[r.cmd.BaseEndpoint()]
	return nil
}

// matches applies a predicate, accepting a list value when any element
// matches a non-list predicate.
func matches(p filter.Predicate, v any) bool {
	if items, ok := v.([]any); ok && p.Type != filter.TypeList {
		for _, it := range items {
			if p.Matches(it) {
				return true
			}
		}
		return false
	}
	return p.Matches(v)
}

func anyHas(rows []map[string]any, key string) bool {
	for _, row := range rows {
		if _, ok := row[key]; ok {
			return true
		}
	}
	return false
}

// join left-joins every dotted field's endpoint into the base rows.
func (e *Executor) join(_ context.Context, r *run) error {
	base := r.rows
	rows := make([]map[string]any, len(base))
	for i, row := range base {
		rows[i] = maps.Clone(row)
	}

	done := make(map[template.JoinOn]bool)
	for i := range r.cmd.Fields {
		f := &r.cmd.Fields[i]
		if f.JoinOn == nil {
			continue
		}
		ep, _, ok := f.JoinPath()
		if !ok || ep == r.cmd.BaseEndpoint() {
			continue
		}
		joined, fetched := r.data[ep]
		if !fetched {
			continue
		}
		key := *f.JoinOn
		key.Field = ep + "\x00" + key.Field
		if done[key] {
			continue
		}
		done[key] = true
		joinRows(rows, joined, ep, f.JoinOn)
	}
	r.rows = rows
	return nil
}

func joinRows(rows, joined []map[string]any, ep string, on *template.JoinOn) {
	index := make(map[string][]map[string]any)
	for _, j := range joined {
		v, ok := j[on.OnField]
		if !ok || v == nil {
			continue
		}
		k := filter.ToString(v)
		index[k] = append(index[k], j)
	}

	for _, row := range rows {
		v, ok := row[on.Field]
		if !ok || v == nil {
			continue
		}
		hits := index[filter.ToString(v)]
		if len(hits) == 0 {
			continue
		}

		switch on.ActOn {
		case template.ActOnAll:
			list := make([]any, len(hits))
			for i, h := range hits {
				list[i] = h
			}
			row[ep] = list
		default:
			hit := hits[0]
			if on.ActOn == template.ActOnLast {
				hit = hits[len(hits)-1]
			}
			if existing, ok := row[ep].(map[string]any); ok {
				merged := maps.Clone(existing)
				maps.Copy(merged, hit)
				row[ep] = merged
			} else {
				row[ep] = maps.Clone(hit)
			}
		}
	}
}

// perRowFetch queries every per-row endpoint once per base row and attaches
// the result under the endpoint name: a map for one result, a list for
// several, nil for none or a failed call.
func (e *Executor) perRowFetch(ctx context.Context, r *run) error {
	for _, pr := range r.cmd.PerRow {
		for _, row := range r.rows {
			params, tenant := rowQuery(pr.Query, row, r.tenant)
			res, err := e.api.Call(ctx, pr.Name, "get", params, tenant)
			if err != nil {
				if vaerrors.IsHard(err) {
					return err
				}
				degradationsTotal.WithLabelValues("per_row_fetch").Inc()
				slog.Warn("per-row fetch failed",
					"command", r.cmd.Name,
					"cluster", e.cluster,
					"endpoint", pr.Name,
					"error", err)
				row[pr.Name] = nil
				continue
			}
			switch len(res) {
			case 0:
				row[pr.Name] = nil
			case 1:
				row[pr.Name] = res[0]
			default:
				list := make([]any, len(res))
				for i, m := range res {
					list[i] = m
				}
				row[pr.Name] = list
			}
		}
	}
	return nil
}

// rowQuery builds parameters from "key=value" and "key=$field" items. A
// referenced field missing from the row drops that parameter. tenant_id
// becomes the call's tenant.
func rowQuery(query []string, row map[string]any, tenant string) (map[string]any, string) {
	params := map[string]any{}
	for _, q := range query {
		k, v, ok := strings.Cut(q, "=")
		if !ok {
			continue
		}
		k, v = strings.TrimSpace(k), strings.TrimSpace(v)
		var val any = v
		if ref, isRef := strings.CutPrefix(v, "$"); isRef {
			rv, found := row[ref]
			if !found || rv == nil {
				continue
			}
			val = rv
		}
		if k == ArgTenantID {
			tenant = filter.ToString(val)
			continue
		}
		params[k] = val
	}
	return params, tenant
}
