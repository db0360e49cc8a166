package template

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/vast-data/vast-admin-mcp/pkg/expr"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Validation problem kinds.
const (
	KindMissingRequired = "MissingRequired"
	KindInvalidType     = "InvalidType"
	KindInvalidValue    = "InvalidValue"
)

// ValidationError is one structural problem located by its document path,
// for example "list_cmds.views.fields[2].convert".
type ValidationError struct {
	Path   string
	Kind   string
	Detail string
	Line   int
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s - %s", e.Path, e.Kind, e.Detail)
}

type validator struct {
	err error
}

func (v *validator) add(path, kind string, n *yaml.Node, format string, args ...any) {
	ve := &ValidationError{Path: path, Kind: kind, Detail: fmt.Sprintf(format, args...)}
	if n != nil {
		ve.Line = n.Line
	}
	v.err = multierr.Append(v.err, ve)
}

func (v *validator) typeError(path string, n *yaml.Node, want string) {
	v.add(path, KindInvalidType, n, "Expected %s, got %s", want, kindName(n))
}

// validateDocument checks the merged document and returns every problem
// found, combined with multierr.
func validateDocument(doc *yaml.Node) error {
	v := &validator{}

	cmds := mapGet(doc, sectionCommands)
	wl := mapGet(doc, sectionWhitelist)
	if len(mapKeys(cmds)) == 0 && (wl == nil || len(wl.Content) == 0) {
		v.add("<document>", KindMissingRequired, nil, "No commands found in '%s' section and no '%s' section found", sectionCommands, sectionWhitelist)
		return v.err
	}

	if wl != nil && wl.Kind != yaml.SequenceNode && !isNull(wl) {
		v.typeError(sectionWhitelist, wl, "list")
	}
	if vars := mapGet(doc, sectionVariables); vars != nil && vars.Kind != yaml.MappingNode && !isNull(vars) {
		v.typeError(sectionVariables, vars, "dictionary")
	}

	if cmds != nil && cmds.Kind != yaml.MappingNode && !isNull(cmds) {
		v.typeError(sectionCommands, cmds, "dictionary")
	} else if cmds != nil {
		for i := 0; i+1 < len(cmds.Content); i += 2 {
			name := cmds.Content[i].Value
			if strings.HasPrefix(name, "_") {
				continue
			}
			v.command(sectionCommands+"."+name, cmds.Content[i+1])
		}
	}

	if merged := mapGet(doc, sectionMerged); merged != nil && !isNull(merged) {
		if merged.Kind != yaml.SequenceNode {
			v.typeError(sectionMerged, merged, "list")
		} else {
			for i, m := range merged.Content {
				v.mergedCommand(sectionMerged, i, m, cmds)
			}
		}
	}

	return v.err
}

func (v *validator) command(path string, cmd *yaml.Node) {
	if cmd.Kind != yaml.MappingNode {
		v.typeError(path, cmd, "dictionary")
		return
	}

	for _, section := range []string{"api_endpoints", "fields", "description"} {
		if mapGet(cmd, section) == nil {
			v.add(path, KindMissingRequired, cmd, "Missing required section '%s'", section)
		}
	}

	if eps := mapGet(cmd, "api_endpoints"); eps != nil {
		p := path + ".api_endpoints"
		switch {
		case eps.Kind != yaml.SequenceNode:
			v.typeError(p, eps, "list")
		case len(eps.Content) == 0:
			v.add(p, KindInvalidValue, eps, "Must be a non-empty list")
		default:
			for i, ep := range eps.Content {
				if !isString(ep) || strings.TrimSpace(ep.Value) == "" {
					v.add(fmt.Sprintf("%s[%d]", p, i), KindInvalidValue, ep, "Must be a non-empty string")
				}
			}
		}
	}

	if fields := mapGet(cmd, "fields"); fields != nil {
		p := path + ".fields"
		switch {
		case fields.Kind != yaml.SequenceNode:
			v.typeError(p, fields, "list")
		case len(fields.Content) == 0:
			v.add(p, KindInvalidValue, fields, "Must be a non-empty list")
		default:
			seen := make(map[string]bool)
			for i, f := range fields.Content {
				fp := fmt.Sprintf("%s[%d]", p, i)
				v.field(fp, f)
				if name := canonicalName(fieldName(f)); name != "" {
					if seen[name] {
						v.add(fp, KindInvalidValue, f, "Duplicate field name '%s'", fieldName(f))
					}
					seen[name] = true
				}
			}
		}
	}

	if desc := mapGet(cmd, "description"); desc != nil {
		v.nonEmptyString(path+".description", desc, "Description must be a non-empty string")
	}

	if ord := mapGet(cmd, "ordering"); ord != nil && !isNull(ord) {
		v.ordering(path+".ordering", ord)
	}

	if per := mapGet(cmd, "per_row_endpoints"); per != nil && !isNull(per) {
		v.perRow(path+".per_row_endpoints", per)
	}
}

func (v *validator) field(path string, f *yaml.Node) {
	if f.Kind != yaml.MappingNode {
		v.typeError(path, f, "dictionary")
		return
	}
	if mapGet(f, "header") == nil && mapGet(f, "name") == nil {
		v.add(path, KindMissingRequired, f, "Field must have 'header' or 'name' key")
	}

	if c := mapGet(f, "convert"); c != nil && !slices.Contains(validConverts, c.Value) {
		v.add(path+".convert", KindInvalidValue, c, "Expected one of %v, got '%s'", validConverts, c.Value)
	}

	if w := mapGet(f, "limit_table_column_width"); w != nil && (w.Tag != "!!int" || strings.HasPrefix(w.Value, "-")) {
		v.add(path+".limit_table_column_width", KindInvalidValue, w, "Expected a positive integer, got '%s'", w.Value)
	}

	if arg := mapGet(f, "argument"); arg != nil {
		v.argument(path+".argument", arg)
	}

	if cond := mapGet(f, "condition"); cond != nil {
		v.condition(path+".condition", cond)
	}

	if val := mapGet(f, "value"); val != nil {
		p := path + ".value"
		switch {
		case !isString(val):
			v.typeError(p, val, "string")
		case strings.TrimSpace(val.Value) == "":
			v.add(p, KindInvalidValue, val, "Value expression must be a non-empty string")
		default:
			if _, err := expr.Compile(val.Value); err != nil {
				v.add(p, KindInvalidValue, val, "Invalid expression: %v", err)
			}
		}
	}

	if j := mapGet(f, "join_on"); j != nil {
		v.joinOn(path+".join_on", j)
	}
}

func (v *validator) argument(path string, arg *yaml.Node) {
	if arg.Kind != yaml.MappingNode {
		v.typeError(path, arg, "dictionary")
		return
	}

	if t := mapGet(arg, "type"); t != nil && !slices.Contains(validArgTypes, t.Value) {
		v.add(path+".type", KindInvalidValue, t, "Expected one of [str int bool list capacity], got '%s'", t.Value)
	}

	if aliases := mapGet(arg, "aliases"); aliases != nil && !isNull(aliases) {
		p := path + ".aliases"
		if aliases.Kind != yaml.SequenceNode {
			v.typeError(p, aliases, "list")
		} else {
			for i, a := range aliases.Content {
				if !isString(a) {
					v.typeError(fmt.Sprintf("%s[%d]", p, i), a, "string")
				}
			}
		}
	}

	if re := mapGet(arg, "regex_validation"); re != nil {
		if _, err := regexp.Compile(re.Value); err != nil {
			v.add(path+".regex_validation", KindInvalidValue, re, "Invalid regular expression: %v", err)
		}
	}
}

func (v *validator) condition(path string, cond *yaml.Node) {
	if cond.Kind != yaml.MappingNode {
		v.typeError(path, cond, "dictionary")
		return
	}
	for _, key := range []string{"field", "operator", "value"} {
		if mapGet(cond, key) == nil {
			v.add(path, KindMissingRequired, cond, "Missing required key '%s'", key)
		}
	}
	if op := mapGet(cond, "operator"); op != nil && !slices.Contains(validOperators, op.Value) {
		v.add(path+".operator", KindInvalidValue, op, "Expected one of %v, got '%s'", validOperators, op.Value)
	}
	if fld := mapGet(cond, "field"); fld != nil && !isString(fld) {
		v.typeError(path+".field", fld, "string")
	}
}

func (v *validator) joinOn(path string, j *yaml.Node) {
	switch j.Kind {
	case yaml.ScalarNode:
		if strings.TrimSpace(j.Value) == "" {
			v.add(path, KindInvalidValue, j, "Must be a non-empty string")
		}
	case yaml.MappingNode:
		for _, key := range []string{"field", "on_field"} {
			if n := mapGet(j, key); n == nil || strings.TrimSpace(n.Value) == "" {
				v.add(path, KindMissingRequired, j, "Missing required key '%s'", key)
			}
		}
		if act := mapGet(j, "act_on"); act != nil {
			p := path + ".act_on"
			if !isString(act) {
				v.typeError(p, act, "string")
			} else if !slices.Contains(validActOn, strings.ToLower(act.Value)) {
				v.add(p, KindInvalidValue, act, "Expected one of %v, got '%s'", validActOn, act.Value)
			}
		}
	default:
		v.typeError(path, j, "string or dictionary")
	}
}

func (v *validator) ordering(path string, ord *yaml.Node) {
	check := func(p string, m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			dir := m.Content[i+1]
			if _, ok := filter.ParseDirection(dir.Value); !ok {
				v.add(p+"."+m.Content[i].Value, KindInvalidValue, dir, "Expected a prefix of ascending or descending, got '%s'", dir.Value)
			}
		}
	}

	switch ord.Kind {
	case yaml.MappingNode:
		check(path, ord)
	case yaml.SequenceNode:
		for i, item := range ord.Content {
			p := fmt.Sprintf("%s[%d]", path, i)
			if item.Kind != yaml.MappingNode {
				v.typeError(p, item, "dictionary")
				continue
			}
			check(p, item)
		}
	default:
		v.typeError(path, ord, "dictionary or list")
	}
}

func (v *validator) perRow(path string, per *yaml.Node) {
	if per.Kind != yaml.SequenceNode {
		v.typeError(path, per, "list")
		return
	}
	for i, ep := range per.Content {
		p := fmt.Sprintf("%s[%d]", path, i)
		if ep.Kind != yaml.MappingNode {
			v.typeError(p, ep, "dictionary")
			continue
		}

		if name := mapGet(ep, "name"); name == nil {
			v.add(p, KindMissingRequired, ep, "Missing required key 'name'")
		} else {
			v.nonEmptyString(p+".name", name, "Must be a non-empty string")
		}

		q := mapGet(ep, "query")
		if q == nil {
			v.add(p, KindMissingRequired, ep, "Missing required key 'query'")
			continue
		}
		if q.Kind != yaml.SequenceNode {
			v.typeError(p+".query", q, "list")
			continue
		}
		for j, item := range q.Content {
			ip := fmt.Sprintf("%s.query[%d]", p, j)
			if !isString(item) {
				v.typeError(ip, item, "string")
			} else if !strings.Contains(item.Value, "=") {
				v.add(ip, KindInvalidValue, item, "Must be in format 'key=value' or 'key=$field_name'")
			}
		}
	}
}

func (v *validator) mergedCommand(section string, i int, m *yaml.Node, cmds *yaml.Node) {
	path := fmt.Sprintf("%s[%d]", section, i)
	if m.Kind != yaml.MappingNode {
		v.typeError(path, m, "dictionary")
		return
	}

	name := mapGet(m, "name")
	if name == nil {
		v.add(path, KindMissingRequired, m, "Missing required key 'name'")
	} else if v.nonEmptyString(path+".name", name, "Must be a non-empty string") {
		path = section + "." + name.Value
	}

	fns := mapGet(m, "functions")
	switch {
	case fns == nil:
		v.add(path, KindMissingRequired, m, "Missing required key 'functions'")
	case fns.Kind != yaml.SequenceNode:
		v.typeError(path+".functions", fns, "list")
	default:
		if len(fns.Content) < 2 {
			v.add(path+".functions", KindInvalidValue, fns, "Must contain at least 2 functions")
		}
		for j, fn := range fns.Content {
			fp := fmt.Sprintf("%s.functions[%d]", path, j)
			if !isString(fn) {
				v.typeError(fp, fn, "string")
			} else if mapGet(cmds, fn.Value) == nil {
				v.add(fp, KindInvalidValue, fn, "Function '%s' not found in '%s' section", fn.Value, sectionCommands)
			}
		}
	}

	desc := mapGet(m, "description")
	if desc == nil {
		v.add(path, KindMissingRequired, m, "Missing required key 'description'")
		return
	}
	if !v.nonEmptyString(path+".description", desc, "Description must be a non-empty string") {
		return
	}
	for _, ph := range []string{placeholderArguments, placeholderFields} {
		if !strings.Contains(desc.Value, ph) {
			v.add(path+".description", KindInvalidValue, desc, "Description must contain '%s' placeholder", ph)
		}
	}
}

// nonEmptyString reports whether n is a non-blank string, recording a
// problem otherwise.
func (v *validator) nonEmptyString(path string, n *yaml.Node, detail string) bool {
	if !isString(n) {
		v.typeError(path, n, "string")
		return false
	}
	if strings.TrimSpace(n.Value) == "" {
		v.add(path, KindInvalidValue, n, "%s", detail)
		return false
	}
	return true
}
