package mcp

import (
	"context"
	"fmt"
	"regexp"
	"slices"
	"strings"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
	"github.com/vast-data/vast-admin-mcp/pkg/executor"
	"github.com/vast-data/vast-admin-mcp/pkg/fanout"
	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

const (
	toolListClusters = "list_clusters_vast"
	toolListFields   = "list_fields_vast"
	toolDescribeTool = "describe_tool_vast"
)

const instructions = "Read-only access to VAST clusters. Call list_clusters_vast first to " +
	"discover cluster names, then list_<object>_vast tools to query objects. " +
	"Use list_fields_vast and describe_tool_vast to learn the fields and filter formats of a tool."

var toolNameSanitizer = regexp.MustCompile(`[^A-Za-z0-9_]+`)

// ToolName returns the tool name of a list command.
func ToolName(command string) string {
	return "list_" + strings.Trim(toolNameSanitizer.ReplaceAllString(command, "_"), "_") + "_vast"
}

func argumentKey(name string) string {
	return strings.ReplaceAll(name, " ", "_")
}

// registerTools builds one tool per command and merged command, followed by
// the built-in tools.
func (s *Server) registerTools() {
	names := append(s.set.CommandNames(), s.set.MergedNames()...)
	for _, name := range names {
		tool := s.commandTool(name)
		if _, dup := s.handlers[tool.Name]; dup {
			continue
		}
		s.tools = append(s.tools, tool)
		s.handlers[tool.Name] = s.listHandler(name)
	}

	builtins := []struct {
		tool    Tool
		handler toolHandler
	}{
		{
			tool: Tool{
				Name:        toolListClusters,
				Description: "Retrieve information about configured VAST clusters",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"clusters": {Type: "string", Description: "Comma-separated cluster names or addresses. Returns all if not specified"},
					},
				},
			},
			handler: s.listClusters,
		},
		{
			tool: Tool{
				Name:        toolListFields,
				Description: "Get available fields for a command with metadata",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"command_name": {Type: "string", Description: "Name of the command, e.g. views"},
					},
					Required: []string{"command_name"},
				},
			},
			handler: s.listFields,
		},
		{
			tool: Tool{
				Name:        toolDescribeTool,
				Description: "Get tool schema with examples and accepted formats",
				InputSchema: InputSchema{
					Type: "object",
					Properties: map[string]Property{
						"tool_name": {Type: "string", Description: "Name of the tool, e.g. list_views_vast"},
					},
					Required: []string{"tool_name"},
				},
			},
			handler: s.describeTool,
		},
	}
	for _, b := range builtins {
		s.tools = append(s.tools, b.tool)
		s.handlers[b.tool.Name] = b.handler
	}
}

func (s *Server) arguments(name string) []template.ArgumentInfo {
	if _, ok := s.set.Merged(name); ok {
		return s.set.MergedArguments(name)
	}
	return s.set.Arguments(name)
}

func (s *Server) commandTool(name string) Tool {
	props := make(map[string]Property)
	var required []string
	for _, a := range s.arguments(name) {
		key := argumentKey(a.Name)
		props[key] = Property{
			Type:        schemaType(a),
			Description: a.Description,
			Default:     a.Default,
		}
		if a.Mandatory {
			required = append(required, key)
		}
	}
	if _, ok := props[executor.ArgCluster]; !ok {
		props[executor.ArgCluster] = Property{
			Type:        "string",
			Description: "Cluster names or addresses, comma-separated. Runs on every configured cluster if not specified",
		}
	}
	props[executor.ArgOrder] = Property{
		Type:        "string",
		Description: "Sort order as field:direction pairs, e.g. 'logical_used:desc,name'. A leading '-' sorts descending",
	}
	props[executor.ArgTop] = Property{
		Type:        "integer",
		Description: "Return at most this many rows after ordering",
	}

	return Tool{
		Name:        ToolName(name),
		Description: s.set.Description(name),
		InputSchema: InputSchema{Type: "object", Properties: props, Required: required},
	}
}

// schemaType maps an argument to a JSON Schema type. Filters and lists take
// strings so that operators and comma-separated values can be passed.
func schemaType(a template.ArgumentInfo) string {
	if a.Filter || a.List {
		return "string"
	}
	switch a.Type {
	case "int":
		return "integer"
	case "bool":
		return "boolean"
	default:
		return "string"
	}
}

func (s *Server) listHandler(name string) toolHandler {
	return func(ctx context.Context, args map[string]any) (any, error) {
		rows, err := s.runner.Execute(ctx, name, args)
		if err != nil {
			return nil, err
		}
		if rows == nil {
			rows = []*executor.Row{}
		}
		return rows, nil
	}
}

func (s *Server) listClusters(ctx context.Context, args map[string]any) (any, error) {
	rows, err := s.runner.Clusters(ctx, fanout.ClusterIDs(args)...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// fieldMeta is one entry of list_fields_vast.
type fieldMeta struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Unit        string `json:"unit,omitempty"`
	Sortable    bool   `json:"sortable"`
	Filterable  bool   `json:"filterable"`
	APIField    string `json:"api_field"`
	Description string `json:"description"`
}

func (s *Server) listFields(_ context.Context, args map[string]any) (any, error) {
	name := strings.TrimSpace(filter.ToString(args["command_name"]))
	if !s.known(name) {
		return nil, vaerrors.Newf(vaerrors.ErrCodeCommandNotFound,
			"Command '%s' not found. Available commands: %s", name, strings.Join(s.commandNames(), ", "))
	}

	filterable := make(map[string]bool)
	for _, a := range s.arguments(name) {
		filterable[argumentKey(a.Name)] = a.Filter
	}

	fields := []fieldMeta{}
	for _, f := range s.set.Fields(name) {
		api := f.APIField
		if api == "" {
			api = f.Name
		}
		fields = append(fields, fieldMeta{
			Name:        f.Name,
			Type:        f.Type,
			Unit:        unitOf(f),
			Sortable:    true,
			Filterable:  filterable[argumentKey(f.Name)],
			APIField:    api,
			Description: f.Description,
		})
	}
	return map[string]any{"command": name, "fields": fields}, nil
}

func unitOf(f template.FieldInfo) string {
	name := strings.ToLower(f.Name)
	switch {
	case f.Type == "capacity":
		return "bytes"
	case strings.Contains(name, "iops"):
		return "iops"
	case strings.Contains(name, "latency"):
		return "ms"
	case strings.Contains(name, "time"):
		return "seconds"
	}
	return ""
}

// argumentMeta is one argument in describe_tool_vast.
type argumentMeta struct {
	Name            string   `json:"name"`
	Type            string   `json:"type"`
	Required        bool     `json:"required"`
	Default         any      `json:"default"`
	Description     string   `json:"description"`
	Aliases         []string `json:"aliases"`
	Examples        []string `json:"examples"`
	AcceptedFormats []string `json:"accepted_formats"`
}

var argumentFormats = map[string]struct{ examples, formats []string }{
	"str": {
		examples: []string{"value", "*value*", "value*"},
		formats:  []string{"exact match", "wildcard: *value*", "starts with: value*", "ends with: *value"},
	},
	"int": {
		examples: []string{"100", ">100", ">=100", "<100", "<=100"},
		formats:  []string{"exact: 100", "greater: >100", "greater or equal: >=100", "less: <100", "less or equal: <=100"},
	},
	"capacity": {
		examples: []string{"1TB", ">500GB", ">=1M", "<100KB"},
		formats:  []string{"exact: 1TB", "greater: >1TB", "greater or equal: >=500GB", "less: <100KB", "less or equal: <=1M"},
	},
	"bool": {
		examples: []string{"true", "false", "True", "False", "1", "0"},
		formats:  []string{"boolean: true/false", "case-insensitive", "numeric: 1/0"},
	},
}

func (s *Server) describeTool(_ context.Context, args map[string]any) (any, error) {
	toolName := strings.TrimSpace(filter.ToString(args["tool_name"]))
	idx := slices.IndexFunc(s.tools, func(t Tool) bool { return t.Name == toolName })
	if idx < 0 {
		names := make([]string, 0, len(s.tools))
		for _, t := range s.tools {
			names = append(names, t.Name)
		}
		return nil, vaerrors.Newf(vaerrors.ErrCodeInvalidArgument,
			"Tool '%s' not found. Available tools: %s", toolName, strings.Join(names, ", "))
	}
	tool := s.tools[idx]

	command, ok := s.commandOf(toolName)
	if !ok {
		var arguments []argumentMeta
		for _, key := range sortedKeys(tool.InputSchema.Properties) {
			p := tool.InputSchema.Properties[key]
			arguments = append(arguments, argumentMeta{
				Name:            key,
				Type:            p.Type,
				Required:        slices.Contains(tool.InputSchema.Required, key),
				Description:     p.Description,
				Aliases:         []string{},
				Examples:        []string{},
				AcceptedFormats: []string{},
			})
		}
		return map[string]any{
			"tool_name":   toolName,
			"description": tool.Description,
			"arguments":   arguments,
		}, nil
	}

	arguments := []argumentMeta{}
	for _, a := range s.arguments(command) {
		m := argumentMeta{
			Name:            argumentKey(a.Name),
			Type:            a.Type,
			Required:        a.Mandatory,
			Default:         a.Default,
			Description:     a.Description,
			Aliases:         append([]string{}, a.Aliases...),
			Examples:        []string{},
			AcceptedFormats: []string{},
		}
		if f, ok := argumentFormats[a.Type]; ok {
			m.Examples, m.AcceptedFormats = f.examples, f.formats
		}
		arguments = append(arguments, m)
	}

	returned := []template.FieldInfo{}
	returned = append(returned, s.set.Fields(command)...)

	return map[string]any{
		"tool_name":   toolName,
		"description": tool.Description,
		"arguments":   arguments,
		"return_structure": map[string]any{
			"type":  "list",
			"items": map[string]any{"type": "dict", "fields": returned},
		},
		"examples": []string{
			fmt.Sprintf("%s(cluster='cluster1')", toolName),
			fmt.Sprintf("%s(cluster='cluster1', order='name:asc', top=10)", toolName),
		},
		"common_pitfalls": []string{
			"Call list_clusters_vast first to discover available cluster names",
			"Capacity filters take a unit, e.g. '>10GB'",
			"Order keys are output field names with spaces written as underscores",
		},
	}, nil
}

func (s *Server) known(name string) bool {
	if _, ok := s.set.Command(name); ok {
		return true
	}
	_, ok := s.set.Merged(name)
	return ok
}

func (s *Server) commandNames() []string {
	return append(s.set.CommandNames(), s.set.MergedNames()...)
}

func (s *Server) commandOf(toolName string) (string, bool) {
	for _, name := range s.commandNames() {
		if ToolName(name) == toolName {
			return name, true
		}
	}
	return "", false
}

func sortedKeys(m map[string]Property) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
