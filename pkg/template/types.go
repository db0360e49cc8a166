package template

import (
	"fmt"
	"strings"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
	"gopkg.in/yaml.v3"
)

// Command is one list command definition from the list_cmds section.
type Command struct {
	Name        string           `yaml:"-"`
	Endpoints   []string         `yaml:"api_endpoints"`
	Fields      []Field          `yaml:"fields"`
	Description string           `yaml:"description"`
	PerRow      []PerRowEndpoint `yaml:"per_row_endpoints,omitempty"`
	Ordering    Ordering         `yaml:"ordering,omitempty"`
}

// BaseEndpoint returns the first endpoint, whose rows drive the pipeline.
func (c *Command) BaseEndpoint() string {
	if len(c.Endpoints) == 0 {
		return ""
	}
	return c.Endpoints[0]
}

// HasEndpoint reports whether ep is one of the command's endpoints.
func (c *Command) HasEndpoint(ep string) bool {
	for _, e := range c.Endpoints {
		if e == ep {
			return true
		}
	}
	return false
}

// Field finds a field by name, accepting underscores for spaces.
func (c *Command) Field(name string) (*Field, bool) {
	spaced := strings.ReplaceAll(name, "_", " ")
	for i := range c.Fields {
		if c.Fields[i].Name == name || c.Fields[i].Name == spaced {
			return &c.Fields[i], true
		}
	}
	return nil, false
}

// Field describes one output column. After loading, Name is always set and
// Source holds the effective source expression.
type Field struct {
	Name       string     `yaml:"name,omitempty"`
	Header     string     `yaml:"header,omitempty"`
	Source     string     `yaml:"field,omitempty"`
	Convert    string     `yaml:"convert,omitempty"`
	JQ         string     `yaml:"jq,omitempty"`
	Value      string     `yaml:"value,omitempty"`
	Condition  *Condition `yaml:"condition,omitempty"`
	JoinOn     *JoinOn    `yaml:"join_on,omitempty"`
	Hide       bool       `yaml:"hide,omitempty"`
	LimitWidth int        `yaml:"limit_table_column_width,omitempty"`
	Argument   *Argument  `yaml:"argument,omitempty"`

	// SourceSet is true when the document named the source explicitly.
	SourceSet bool `yaml:"-"`
}

// IsComputed reports whether the field is produced by a value expression.
func (f *Field) IsComputed() bool {
	return f.Value != ""
}

// IsCLIReference reports whether the source is a $(name) reference and
// returns the referenced argument.
func (f *Field) IsCLIReference() (string, bool) {
	if strings.HasPrefix(f.Source, "$(") && strings.HasSuffix(f.Source, ")") {
		return f.Source[2 : len(f.Source)-1], true
	}
	return "", false
}

// JoinPath splits a dotted source into endpoint and attribute.
func (f *Field) JoinPath() (endpoint, attr string, ok bool) {
	if _, cli := f.IsCLIReference(); cli {
		return "", "", false
	}
	return strings.Cut(f.Source, ".")
}

// IsCapacity reports whether the field holds a byte count.
func (f *Field) IsCapacity() bool {
	if f.Convert != "" && f.Convert != ConvertTimeDelta {
		return true
	}
	return filter.HasCapacityKeyword(f.Name)
}

// Argument makes a field usable as an invocation argument.
type Argument struct {
	Type             string   `yaml:"type,omitempty"`
	Mandatory        bool     `yaml:"mandatory,omitempty"`
	Filter           bool     `yaml:"filter,omitempty"`
	ArgumentList     bool     `yaml:"argument_list,omitempty"`
	Aliases          []string `yaml:"aliases,omitempty"`
	Default          any      `yaml:"default,omitempty"`
	RegexValidation  string   `yaml:"regex_validation,omitempty"`
	Description      string   `yaml:"description,omitempty"`
	ClientSideFilter bool     `yaml:"client_side_filter,omitempty"`
}

// Condition gates a field value on another field of the same row.
type Condition struct {
	Field    string `yaml:"field"`
	Operator string `yaml:"operator"`
	Value    any    `yaml:"value"`
}

// Act-on policies for joins.
const (
	ActOnFirst = "first"
	ActOnLast  = "last"
	ActOnAll   = "all"
)

// JoinOn keys a left join between the base endpoint and a joined one.
// The scalar form names a field present on both sides.
type JoinOn struct {
	Field   string `yaml:"field"`
	OnField string `yaml:"on_field"`
	ActOn   string `yaml:"act_on,omitempty"`
}

// UnmarshalYAML accepts both the scalar and the mapping form.
func (j *JoinOn) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		j.Field, j.OnField, j.ActOn = node.Value, node.Value, ActOnFirst
		return nil
	}

	type plain JoinOn
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*j = JoinOn(p)
	j.ActOn = strings.ToLower(j.ActOn)
	if j.ActOn == "" {
		j.ActOn = ActOnFirst
	}
	return nil
}

// PerRowEndpoint is queried once per base row. Query items are "key=value"
// or "key=$field".
type PerRowEndpoint struct {
	Name  string   `yaml:"name"`
	Query []string `yaml:"query"`
}

// OrderEntry is one default ordering key.
type OrderEntry struct {
	Field     string
	Direction string
}

// Ordering is the default sort of a command. It is written either as a
// mapping or as a list of single-key mappings.
type Ordering []OrderEntry

// UnmarshalYAML keeps the document order of the keys.
func (o *Ordering) UnmarshalYAML(node *yaml.Node) error {
	var out Ordering
	appendPairs := func(m *yaml.Node) {
		for i := 0; i+1 < len(m.Content); i += 2 {
			out = append(out, OrderEntry{Field: m.Content[i].Value, Direction: m.Content[i+1].Value})
		}
	}

	switch node.Kind {
	case yaml.MappingNode:
		appendPairs(node)
	case yaml.SequenceNode:
		for _, item := range node.Content {
			if item.Kind == yaml.MappingNode && len(item.Content) >= 2 {
				appendPairs(&yaml.Node{Kind: yaml.MappingNode, Content: item.Content[:2]})
			}
		}
	default:
		return fmt.Errorf("ordering must be a mapping or a list, got %s", kindName(node))
	}

	*o = out
	return nil
}

// Tokens renders the ordering as "field:direction" order tokens.
func (o Ordering) Tokens() []string {
	out := make([]string, 0, len(o))
	for _, e := range o {
		out = append(out, e.Field+":"+e.Direction)
	}
	return out
}

// MergedCommand runs several commands and merges their rows.
type MergedCommand struct {
	Name        string   `yaml:"name"`
	Functions   []string `yaml:"functions"`
	Description string   `yaml:"description"`
}

// ArgumentInfo is the resolved view of an argument: the field's name plus its
// argument block with a description always present.
type ArgumentInfo struct {
	Name             string
	Type             string
	Mandatory        bool
	Filter           bool
	List             bool
	Aliases          []string
	Default          any
	Regex            string
	Description      string
	ClientSideFilter bool

	// APIField is the field's explicit source, if any.
	APIField string
}

// ArgType returns the declared type, with integer filters on capacity-like
// fields reinterpreted as capacity.
func (a ArgumentInfo) ArgType(f *Field) filter.ArgType {
	t, ok := filter.ParseArgType(a.Type)
	if !ok {
		t = filter.TypeString
	}
	if t == filter.TypeInteger && a.Filter && f != nil {
		if f.Convert != "" || filter.HasCapacityKeyword(f.Name) {
			return filter.TypeCapacity
		}
	}
	return t
}

// FieldInfo describes an output field for tool consumers.
type FieldInfo struct {
	Name        string `json:"name" yaml:"name"`
	Type        string `json:"type" yaml:"type"`
	Description string `json:"description" yaml:"description"`
	// APIField is the explicit upstream source of the field, if any.
	APIField string `json:"api_field,omitempty" yaml:"api_field,omitempty"`
}

// Convert targets.
const (
	ConvertAuto      = "AUTO"
	ConvertTimeDelta = "time_delta"
)

var validConverts = []string{"B", "KB", "MB", "GB", "TB", "PB", ConvertAuto, ConvertTimeDelta}

var validArgTypes = []string{"str", "int", "bool", "list", "capacity", "string", "integer", "boolean"}

var validOperators = []string{
	"equals", "not_equals", "greater_than", "less_than",
	"greater_equal", "less_equal", "contains", "starts_with",
	"ends_with", "in", "regex",
	"eq", "==", "ne", "!=", "gt", ">", "lt", "<",
	"gte", ">=", "lte", "<=",
}

var validActOn = []string{ActOnFirst, ActOnLast, ActOnAll}
