package executor

import (
	"context"
	"fmt"
	"maps"
	"strings"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

var reservedArgs = map[string]bool{
	ArgOrder:        true,
	ArgTop:          true,
	ArgInstance:     true,
	ArgOutputFormat: true,
	ArgCluster:      true,
	ArgClusters:     true,
}

// localFilter is a predicate the engine applies itself.
type localFilter struct {
	arg   string
	field *template.Field
	pred  filter.Predicate

	// endpoint and attr locate the raw value; empty when the field only
	// exists after Transform.
	endpoint string
	attr     string

	deferred bool
	joined   bool
}

// normalizeArgs rewrites aliases and spaced names to the argument's field
// name and fills defaults.
func (e *Executor) normalizeArgs(cmd *template.Command, args map[string]any) map[string]any {
	out := make(map[string]any, len(args))
	for k, v := range args {
		if reservedArgs[k] || k == ArgTenantID {
			out[k] = v
			continue
		}
		info, ok := e.set.Argument(cmd.Name, k)
		if !ok {
			out[k] = v
			continue
		}
		if _, dup := out[info.Name]; dup && info.Name != k {
			continue
		}
		out[info.Name] = v
	}

	for _, info := range e.set.Arguments(cmd.Name) {
		if info.Default != nil && isEmpty(out[info.Name]) {
			out[info.Name] = info.Default
		}
	}
	return out
}

// validate checks mandatory arguments and regex validation.
func (e *Executor) validate(_ context.Context, r *run) error {
	for _, info := range e.set.Arguments(r.cmd.Name) {
		v := r.args[info.Name]
		if isEmpty(v) {
			if info.Mandatory {
				return vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidArgument,
					fmt.Sprintf("Missing mandatory argument: %s", info.Name), nil,
					map[string]any{"command": r.cmd.Name, "argument": info.Name})
			}
			continue
		}
		if info.Regex == "" || info.List {
			continue
		}
		if t, _ := filter.ParseArgType(info.Type); t == filter.TypeList {
			continue
		}
		s := filter.ToString(v)
		if strings.ContainsAny(s, "*?[") {
			continue
		}
		if err := e.set.ValidateArgument(r.cmd.Name, info.Name, s); err != nil {
			return err
		}
	}
	return nil
}

// mapArgs builds per-endpoint upstream parameters and the local predicates.
func (e *Executor) mapArgs(_ context.Context, r *run) error {
	r.params = make(map[string]map[string]any, len(r.cmd.Endpoints))
	for _, ep := range r.cmd.Endpoints {
		r.params[ep] = map[string]any{}
	}
	base := r.cmd.BaseEndpoint()

	for name, v := range r.args {
		if reservedArgs[name] || isEmpty(v) {
			continue
		}
		apiName, ok := e.set.APIMapping(r.cmd.Name, name)
		if !ok || strings.HasPrefix(apiName, "$(") {
			continue
		}
		if apiName == ArgTenantID {
			r.tenant = filter.ToString(v)
			continue
		}

		info, known := e.set.Argument(r.cmd.Name, name)
		if !known || !info.Filter {
			for _, ep := range r.cmd.Endpoints {
				r.params[ep][apiName] = paramValue(v, info.List)
			}
			continue
		}

		f, _ := r.cmd.Field(info.Name)
		pred, err := filter.Parse(info.ArgType(f), filterLiteral(v))
		if err != nil {
			return vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidArgument,
				fmt.Sprintf("Invalid filter for '%s'", info.Name), err,
				map[string]any{"command": r.cmd.Name, "argument": info.Name})
		}

		lf := &localFilter{arg: info.Name, field: f, pred: pred}
		r.filters = append(r.filters, lf)

		if f == nil || f.IsComputed() || info.ClientSideFilter {
			lf.deferred = true
			continue
		}
		if _, cli := f.IsCLIReference(); cli {
			lf.deferred = true
			continue
		}

		lf.endpoint, lf.attr = base, apiName
		if ep, attr, dotted := strings.Cut(apiName, "."); dotted && r.cmd.HasEndpoint(ep) {
			lf.endpoint, lf.attr, lf.joined = ep, attr, true
		}
		if pred.Pushdown() {
			r.params[lf.endpoint][pred.Param(lf.attr)] = pred.Value
		}
	}
	return nil
}

// filterLiteral renders an argument value as a filter literal. Lists are
// comma-joined.
func filterLiteral(v any) string {
	switch t := v.(type) {
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, filter.ToString(it))
		}
		return strings.Join(parts, ",")
	case []string:
		return strings.Join(t, ",")
	default:
		return filter.ToString(v)
	}
}

// paramValue sends list arguments comma-joined when the argument is marked
// argument_list, and as repeated parameters otherwise.
func paramValue(v any, joined bool) any {
	switch v.(type) {
	case []any, []string:
		if joined {
			return filterLiteral(v)
		}
	}
	return v
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return t == ""
	case []any:
		return len(t) == 0
	case []string:
		return len(t) == 0
	}
	return false
}

// cloneParams copies one endpoint's parameters for a call.
func cloneParams(p map[string]any) map[string]any {
	if len(p) == 0 {
		return nil
	}
	return maps.Clone(p)
}
