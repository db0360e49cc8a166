package template

import (
	"fmt"
	"log/slog"
	"maps"
	"regexp"
	"slices"
	"strings"
	"sync"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

// Set is the merged, validated collection of commands. It is immutable
// after Load and safe for concurrent use.
type Set struct {
	commands    map[string]*Command
	order       []string
	merged      map[string]*MergedCommand
	mergedOrder []string
	whitelist   map[string][]string
	variables   map[string]string

	regexCache sync.Map // pattern -> *regexp.Regexp
}

// Command returns the named command.
func (s *Set) Command(name string) (*Command, bool) {
	c, ok := s.commands[name]
	return c, ok
}

// CommandNames returns command names in document order.
func (s *Set) CommandNames() []string {
	return slices.Clone(s.order)
}

// Merged returns the named merged command.
func (s *Set) Merged(name string) (*MergedCommand, bool) {
	m, ok := s.merged[name]
	return m, ok
}

// MergedNames returns merged command names in document order.
func (s *Set) MergedNames() []string {
	return slices.Clone(s.mergedOrder)
}

// Whitelist returns a copy of the endpoint -> permitted verbs map. An empty
// map denies every call.
func (s *Set) Whitelist() map[string][]string {
	out := make(map[string][]string, len(s.whitelist))
	for k, v := range s.whitelist {
		out[k] = slices.Clone(v)
	}
	return out
}

// Variables returns a copy of the merged variables.
func (s *Set) Variables() map[string]string {
	return maps.Clone(s.variables)
}

// Arguments returns the arguments of a command in field order, each with a
// description generated when the document does not supply one.
func (s *Set) Arguments(name string) []ArgumentInfo {
	cmd, ok := s.commands[name]
	if !ok {
		return nil
	}

	var out []ArgumentInfo
	for i := range cmd.Fields {
		f := &cmd.Fields[i]
		if f.Argument == nil {
			continue
		}
		a := f.Argument
		info := ArgumentInfo{
			Name:             f.Name,
			Type:             a.Type,
			Mandatory:        a.Mandatory,
			Filter:           a.Filter,
			List:             a.ArgumentList,
			Aliases:          slices.Clone(a.Aliases),
			Default:          a.Default,
			Regex:            a.RegexValidation,
			ClientSideFilter: a.ClientSideFilter,
		}
		if info.Type == "" {
			info.Type = "str"
		}
		if f.SourceSet {
			info.APIField = f.Source
		}

		if strings.TrimSpace(a.Description) == "" {
			info.Description = argumentDescription(name, f, info)
		} else {
			info.Description = a.Description
			if len(info.Aliases) > 0 && !strings.Contains(info.Description, "Aliases:") {
				info.Description += ". Aliases: " + strings.Join(info.Aliases, ", ")
			}
		}
		out = append(out, info)
	}
	return out
}

// Argument finds one argument by name, alias, or with underscores read as
// spaces.
func (s *Set) Argument(command, arg string) (ArgumentInfo, bool) {
	spaced := strings.ReplaceAll(arg, "_", " ")
	args := s.Arguments(command)
	for _, a := range args {
		if a.Name == arg || a.Name == spaced {
			return a, true
		}
	}
	for _, a := range args {
		if slices.Contains(a.Aliases, arg) {
			return a, true
		}
	}
	return ArgumentInfo{}, false
}

// APIMapping returns the upstream parameter for an argument. ok is false for
// arguments that never reach the upstream, such as cluster selection.
// Unknown arguments map to themselves.
func (s *Set) APIMapping(command, arg string) (string, bool) {
	cmd, found := s.commands[command]
	if !found {
		return arg, true
	}

	spaced := strings.ReplaceAll(arg, "_", " ")
	for i := range cmd.Fields {
		f := &cmd.Fields[i]
		if f.Argument == nil || (f.Name != arg && f.Name != spaced) {
			continue
		}
		if !f.SourceSet {
			if f.Name == "cluster" || f.Name == "clusters" {
				return "", false
			}
			return f.Name, true
		}
		return f.Source, true
	}
	return arg, true
}

// ValidateArgument checks value against the argument's regex_validation.
// The pattern must match at the start of the value.
func (s *Set) ValidateArgument(command, arg, value string) error {
	a, ok := s.Argument(command, arg)
	if !ok || a.Regex == "" {
		return nil
	}

	re, err := s.compileAnchored(a.Regex)
	if err != nil {
		return vaerrors.Newf(vaerrors.ErrCodeConfig, "Invalid regex pattern in template for '%s': %v", arg, err)
	}
	if !re.MatchString(value) {
		return vaerrors.WrapWithContext(vaerrors.ErrCodeInvalidArgument,
			fmt.Sprintf("Invalid format for '%s'", arg), nil,
			map[string]any{"argument": arg, "value": value})
	}
	return nil
}

func (s *Set) compileAnchored(pattern string) (*regexp.Regexp, error) {
	if re, ok := s.regexCache.Load(pattern); ok {
		return re.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile(`^(?:` + pattern + `)`)
	if err != nil {
		return nil, err
	}
	s.regexCache.Store(pattern, re)
	return re, nil
}

// MergedArguments unions the arguments of a merged command's sources by
// underscore-normalized name. The first occurrence wins.
func (s *Set) MergedArguments(name string) []ArgumentInfo {
	m, ok := s.merged[name]
	if !ok {
		return nil
	}

	var out []ArgumentInfo
	index := make(map[string]int)
	for _, fn := range m.Functions {
		for _, a := range s.Arguments(fn) {
			key := strings.ReplaceAll(a.Name, " ", "_")
			if i, seen := index[key]; seen {
				if out[i].Type != a.Type || out[i].Mandatory != a.Mandatory {
					slog.Warn("conflicting argument definitions in merged command, using first occurrence",
						"merged", name, "argument", a.Name, "command", fn)
				}
				continue
			}
			index[key] = len(out)
			out = append(out, a)
		}
	}
	return out
}

// MergedFields unions the visible and hidden field names of a merged
// command's sources: every field of the first source, then names from later
// sources not seen yet. Names are underscore-normalized.
func (s *Set) MergedFields(name string) []string {
	var out []string
	for _, f := range s.mergedFieldConfigs(name) {
		out = append(out, strings.ReplaceAll(f.Name, " ", "_"))
	}
	return out
}

func (s *Set) mergedFieldConfigs(name string) []*Field {
	m, ok := s.merged[name]
	if !ok {
		return nil
	}

	var out []*Field
	seen := make(map[string]bool)
	for _, fn := range m.Functions {
		cmd, ok := s.commands[fn]
		if !ok {
			continue
		}
		for i := range cmd.Fields {
			key := strings.ReplaceAll(cmd.Fields[i].Name, " ", "_")
			if key == "" || seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, &cmd.Fields[i])
		}
	}
	return out
}

// Fields describes the visible output fields of a command or merged command.
func (s *Set) Fields(name string) []FieldInfo {
	var fields []*Field
	if cmd, ok := s.commands[name]; ok {
		for i := range cmd.Fields {
			fields = append(fields, &cmd.Fields[i])
		}
	} else {
		fields = s.mergedFieldConfigs(name)
	}

	var out []FieldInfo
	for _, f := range fields {
		if f.Hide {
			continue
		}
		info := FieldInfo{
			Name:        f.Name,
			Type:        inferFieldType(f),
			Description: fieldDescription(f),
		}
		if _, cli := f.IsCLIReference(); f.SourceSet && !cli {
			info.APIField = f.Source
		}
		out = append(out, info)
	}
	return out
}
