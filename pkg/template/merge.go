package template

import (
	"log/slog"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// Top-level document sections.
const (
	sectionWhitelist = "api_whitelist"
	sectionVariables = "variables"
	sectionCommands  = "list_cmds"
	sectionMerged    = "merged_list_cmds"
)

// mergeDocuments merges override into base. The override wins on conflicts
// but never drops base-only content.
func mergeDocuments(base, over *yaml.Node) *yaml.Node {
	out := newMapping()
	if base == nil {
		base = newMapping()
	}
	if over == nil {
		over = newMapping()
	}

	if wl := unionList(mapGet(over, sectionWhitelist), mapGet(base, sectionWhitelist)); wl != nil {
		mapSet(out, sectionWhitelist, wl)
	}
	if vars := mergeMapping(mapGet(base, sectionVariables), mapGet(over, sectionVariables)); vars != nil {
		mapSet(out, sectionVariables, vars)
	}
	if cmds := mergeMapping(mapGet(base, sectionCommands), mapGet(over, sectionCommands)); cmds != nil {
		mapSet(out, sectionCommands, cmds)
	}

	bm, om := mapGet(base, sectionMerged), mapGet(over, sectionMerged)
	switch {
	case bm != nil && om != nil && bm.Kind == yaml.SequenceNode && om.Kind == yaml.SequenceNode:
		mapSet(out, sectionMerged, mergeByName(bm, om, keyName))
	case om != nil:
		mapSet(out, sectionMerged, deepCopy(om))
	case bm != nil:
		mapSet(out, sectionMerged, deepCopy(bm))
	}

	return out
}

// mergeMapping deep-merges two mappings. Field lists are merged by name;
// other values from over replace those in base.
func mergeMapping(base, over *yaml.Node) *yaml.Node {
	if base == nil || base.Kind != yaml.MappingNode {
		return deepCopy(over)
	}
	if over == nil || over.Kind != yaml.MappingNode {
		if over != nil {
			return deepCopy(over)
		}
		return deepCopy(base)
	}

	out := deepCopy(base)
	for i := 0; i+1 < len(over.Content); i += 2 {
		key, ov := over.Content[i].Value, over.Content[i+1]
		bv := mapGet(out, key)
		switch {
		case key == "fields" && bv != nil && bv.Kind == yaml.SequenceNode && ov.Kind == yaml.SequenceNode:
			mapSet(out, key, mergeByName(bv, ov, fieldName))
		case bv != nil && bv.Kind == yaml.MappingNode && ov.Kind == yaml.MappingNode:
			mapSet(out, key, mergeMapping(bv, ov))
		default:
			mapSet(out, key, deepCopy(ov))
		}
	}
	return out
}

// mergeByName merges two lists of mappings keyed by canonical name. Matched
// items deep-merge in base position, unmatched base items are kept and
// unmatched override items are appended. Unnamed items pass through.
func mergeByName(base, over *yaml.Node, nameOf func(*yaml.Node) string) *yaml.Node {
	out := newSequence()
	index := make(map[string]int)

	add := func(item *yaml.Node) {
		if name := canonicalName(nameOf(item)); name != "" {
			if _, seen := index[name]; !seen {
				index[name] = len(out.Content)
			}
		}
		out.Content = append(out.Content, deepCopy(item))
	}

	for _, item := range base.Content {
		add(item)
	}
	for _, item := range over.Content {
		name := canonicalName(nameOf(item))
		if pos, ok := index[name]; ok && name != "" {
			out.Content[pos] = mergeMapping(out.Content[pos], item)
			continue
		}
		add(item)
	}
	return out
}

// unionList returns first followed by the entries of second it lacks.
func unionList(first, second *yaml.Node) *yaml.Node {
	if first == nil || first.Kind != yaml.SequenceNode || len(first.Content) == 0 {
		return deepCopy(second)
	}
	out := deepCopy(first)
	if second == nil || second.Kind != yaml.SequenceNode {
		return out
	}
	for _, item := range second.Content {
		dup := false
		for _, existing := range first.Content {
			if nodeEqual(existing, item) {
				dup = true
				break
			}
		}
		if !dup {
			out.Content = append(out.Content, deepCopy(item))
		}
	}
	return out
}

func canonicalName(name string) string {
	return strings.ReplaceAll(strings.TrimSpace(name), "_", " ")
}

// fieldName returns a field entry's name, falling back to its header.
func fieldName(item *yaml.Node) string {
	if n := mapGet(item, "name"); n != nil && n.Kind == yaml.ScalarNode {
		return n.Value
	}
	if n := mapGet(item, "header"); n != nil && n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return ""
}

func keyName(item *yaml.Node) string {
	if n := mapGet(item, "name"); n != nil && n.Kind == yaml.ScalarNode {
		return n.Value
	}
	return ""
}

// normalizeFieldEntries rewrites bare string field entries into {name: s}
// mappings so that both spellings merge by name.
func normalizeFieldEntries(doc *yaml.Node) {
	cmds := mapGet(doc, sectionCommands)
	if cmds == nil || cmds.Kind != yaml.MappingNode {
		return
	}
	for i := 1; i < len(cmds.Content); i += 2 {
		fields := mapGet(cmds.Content[i], "fields")
		if fields == nil || fields.Kind != yaml.SequenceNode {
			continue
		}
		for j, item := range fields.Content {
			if isString(item) {
				m := newMapping()
				mapSet(m, "name", scalar(item.Value))
				fields.Content[j] = m
			}
		}
	}
}

// variables extracts the scalar entries of the variables section.
func variables(doc *yaml.Node) map[string]string {
	vars := make(map[string]string)
	sec := mapGet(doc, sectionVariables)
	if sec == nil {
		return vars
	}
	for i := 0; i+1 < len(sec.Content); i += 2 {
		k, v := sec.Content[i].Value, sec.Content[i+1]
		if v.Kind != yaml.ScalarNode || isNull(v) {
			slog.Warn("ignoring non-scalar template variable", "variable", k)
			continue
		}
		vars[k] = v.Value
	}
	return vars
}

var placeholderRe = regexp.MustCompile(`\{\{([^{}]+)\}\}`)

// maxSubstitutionPasses bounds expansion of variables that reference others.
const maxSubstitutionPasses = 8

// substitute replaces {{var}} in every string scalar under n. Names starting
// with "$" are reserved and left in place, as are unknown names.
func substitute(n *yaml.Node, vars map[string]string) {
	if n == nil || len(vars) == 0 {
		return
	}
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!str" {
			n.Value = expandVars(n.Value, vars)
		}
		return
	}
	for _, c := range n.Content {
		substitute(c, vars)
	}
}

func expandVars(s string, vars map[string]string) string {
	for range maxSubstitutionPasses {
		next := placeholderRe.ReplaceAllStringFunc(s, func(m string) string {
			name := m[2 : len(m)-2]
			if strings.HasPrefix(name, "$") {
				return m
			}
			if v, ok := vars[name]; ok {
				return v
			}
			return m
		})
		if next == s {
			return s
		}
		s = next
	}
	return s
}
