package template

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"
)

// Load merges the base and override documents, validates the result and
// returns the read-only command set. Either document may be empty but not
// both.
func Load(base, override []byte) (*Set, error) {
	start := time.Now()
	set, err := load(base, override)
	templateLoadDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		templateLoadTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	templateLoadTotal.WithLabelValues("success").Inc()
	return set, nil
}

// LoadFiles reads the documents at basePath and overridePath. A path that is
// empty or does not exist is treated as an absent document.
func LoadFiles(basePath, overridePath string) (*Set, error) {
	base, err := readOptional(basePath)
	if err != nil {
		return nil, err
	}
	override, err := readOptional(overridePath)
	if err != nil {
		return nil, err
	}
	if base == nil && override == nil {
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig,
			"neither default template (%s) nor user template (%s) found", basePath, overridePath)
	}
	return Load(base, override)
}

// LoadWithDefault merges the override file at overridePath on top of the
// embedded default document.
func LoadWithDefault(overridePath string) (*Set, error) {
	override, err := readOptional(overridePath)
	if err != nil {
		return nil, err
	}
	return Load(defaultTemplate, override)
}

func readOptional(path string) ([]byte, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Debug("template document not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to read template "+path, err)
	}
	return data, nil
}

func load(base, override []byte) (*Set, error) {
	baseDoc, err := parseDocument(base)
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to parse default template", err)
	}
	overDoc, err := parseDocument(override)
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to parse template modifications", err)
	}
	if baseDoc == nil && overDoc == nil {
		return nil, vaerrors.New(vaerrors.ErrCodeConfig, "neither default template nor user template found")
	}

	normalizeFieldEntries(baseDoc)
	normalizeFieldEntries(overDoc)
	doc := mergeDocuments(baseDoc, overDoc)

	vars := variables(doc)
	substitute(mapGet(doc, sectionCommands), vars)
	substitute(mapGet(doc, sectionMerged), vars)

	if err := validateDocument(doc); err != nil {
		return nil, configError(err)
	}

	set := &Set{
		commands:  make(map[string]*Command),
		merged:    make(map[string]*MergedCommand),
		variables: vars,
		whitelist: parseWhitelist(mapGet(doc, sectionWhitelist)),
	}

	var decodeErr error
	cmds := mapGet(doc, sectionCommands)
	if cmds == nil {
		cmds = newMapping()
	}
	for i := 0; i+1 < len(cmds.Content); i += 2 {
		name := cmds.Content[i].Value
		if strings.HasPrefix(name, "_") {
			continue
		}
		cmd, err := decodeCommand(name, cmds.Content[i+1])
		if err != nil {
			decodeErr = multierr.Append(decodeErr, &ValidationError{
				Path: sectionCommands + "." + name, Kind: KindInvalidType, Detail: err.Error(), Line: cmds.Content[i].Line,
			})
			continue
		}
		set.commands[name] = cmd
		set.order = append(set.order, name)
	}

	if merged := mapGet(doc, sectionMerged); merged != nil {
		for i, m := range merged.Content {
			var mc MergedCommand
			if err := m.Decode(&mc); err != nil {
				decodeErr = multierr.Append(decodeErr, &ValidationError{
					Path: fmt.Sprintf("%s[%d]", sectionMerged, i), Kind: KindInvalidType, Detail: err.Error(), Line: m.Line,
				})
				continue
			}
			mc.Description = strings.TrimSpace(mc.Description)
			set.merged[mc.Name] = &mc
			set.mergedOrder = append(set.mergedOrder, mc.Name)
		}
	}

	if decodeErr != nil {
		return nil, configError(decodeErr)
	}

	slog.Debug("templates loaded",
		"commands", len(set.order),
		"merged", len(set.mergedOrder),
		"whitelist", len(set.whitelist))

	return set, nil
}

func configError(err error) error {
	errs := multierr.Errors(err)
	lines := make([]string, 0, len(errs))
	for _, e := range errs {
		lines = append(lines, e.Error())
	}
	se := vaerrors.Wrap(vaerrors.ErrCodeConfig, "template validation failed", err)
	se.Context = map[string]any{"problems": lines}
	return se
}

// Problems returns the individual validation problems carried by a load
// error, in document order.
func Problems(err error) []*ValidationError {
	var out []*ValidationError
	var se *vaerrors.StructuredError
	if errors.As(err, &se) {
		err = se.Cause
	}
	for _, e := range multierr.Errors(err) {
		var ve *ValidationError
		if errors.As(e, &ve) {
			out = append(out, ve)
		}
	}
	return out
}

func decodeCommand(name string, n *yaml.Node) (*Command, error) {
	var cmd Command
	if err := n.Decode(&cmd); err != nil {
		return nil, err
	}
	cmd.Name = name
	cmd.Description = strings.TrimSpace(cmd.Description)

	for i := range cmd.Fields {
		f := &cmd.Fields[i]
		f.SourceSet = f.Source != ""
		fromHeader := f.Name == ""
		if fromHeader {
			f.Name = f.Header
		}
		if f.Source == "" {
			if !fromHeader && (f.Name == "cluster" || f.Name == "clusters") {
				f.Source = "$(" + f.Name + ")"
			} else {
				f.Source = f.Name
			}
		}
		if f.JoinOn != nil && f.JoinOn.ActOn == "" {
			f.JoinOn.ActOn = ActOnFirst
		}
	}
	return &cmd, nil
}

// parseWhitelist turns api_whitelist entries into endpoint -> verbs. A bare
// entry permits GET; a mapping entry permits GET plus the listed verbs.
// Repeated entries for one endpoint union their verbs.
func parseWhitelist(seq *yaml.Node) map[string][]string {
	wl := make(map[string][]string)
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return wl
	}

	allow := func(ep string, methods ...string) {
		cur := wl[ep]
		if len(cur) == 0 {
			cur = []string{"get"}
		}
		for _, m := range methods {
			m = strings.ToLower(strings.TrimSpace(m))
			if m != "" && !contains(cur, m) {
				cur = append(cur, m)
			}
		}
		wl[ep] = cur
	}

	for _, entry := range seq.Content {
		switch entry.Kind {
		case yaml.ScalarNode:
			allow(entry.Value)
		case yaml.MappingNode:
			for i := 0; i+1 < len(entry.Content); i += 2 {
				ep, methods := entry.Content[i].Value, entry.Content[i+1]
				if methods.Kind != yaml.SequenceNode {
					allow(ep)
					continue
				}
				var ms []string
				for _, m := range methods.Content {
					ms = append(ms, m.Value)
				}
				allow(ep, ms...)
			}
		default:
			slog.Warn("skipping invalid api_whitelist entry", "line", entry.Line)
		}
	}
	return wl
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
