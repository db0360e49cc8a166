package executor

import (
	"context"
	"log/slog"
	"strings"

	"github.com/agnivade/levenshtein"
)

// maxFuzzyDistance bounds the edit distance accepted when a predicate's
// field name matches no field exactly.
const maxFuzzyDistance = 2

// filterComputed applies predicates that could not run on raw data and
// re-checks predicates on joined fields, which drops base rows without a
// matching joined row. Values are compared before conversion.
func (e *Executor) filterComputed(_ context.Context, r *run) error {
	names := make([]string, 0, len(r.cmd.Fields))
	for i := range r.cmd.Fields {
		names = append(names, r.cmd.Fields[i].Name)
	}

	for _, lf := range r.filters {
		if !lf.deferred && !lf.joined {
			continue
		}
		name, ok := resolveFieldName(lf.arg, names)
		if !ok {
			slog.Warn("filter field not found in results, skipping",
				"command", r.cmd.Name,
				"argument", lf.arg)
			continue
		}

		kept := r.records[:0]
		for _, rec := range r.records {
			if matches(lf.pred, rec.raw[name]) {
				kept = append(kept, rec)
			}
		}
		r.records = kept
	}
	return nil
}

// resolveFieldName finds name among fields: exact, then with spaces and
// underscores swapped, then case-insensitively, then by edit distance.
func resolveFieldName(name string, fields []string) (string, bool) {
	spaced := strings.ReplaceAll(name, "_", " ")
	underscored := strings.ReplaceAll(name, " ", "_")
	for _, f := range fields {
		if f == name {
			return f, true
		}
	}
	for _, f := range fields {
		if f == spaced || f == underscored {
			return f, true
		}
	}
	for _, f := range fields {
		if strings.EqualFold(f, name) || strings.EqualFold(f, spaced) {
			return f, true
		}
	}

	best, bestDist := "", maxFuzzyDistance+1
	lower := strings.ToLower(spaced)
	for _, f := range fields {
		if d := levenshtein.ComputeDistance(lower, strings.ToLower(f)); d < bestDist {
			best, bestDist = f, d
		}
	}
	return best, best != ""
}
