package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescription_ExpandsPlaceholders(t *testing.T) {
	doc := `
list_cmds:
  items:
    api_endpoints: [items]
    description: |
      List items.
      Arguments:
        {{$arguments}}
      Fields: {{$fields}}
    fields:
      - name: name
        argument:
          type: str
          mandatory: true
          regex_validation: '[a-z]+'
          aliases: [n]
          description: Item name
      - name: size
        convert: GB
      - name: secret
        hide: true
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)

	want := "List items.\n" +
		"Arguments:\n" +
		"  name (str) (required): Item name. Aliases: n [Regex validation: [a-z]+] [Aliases: n]\n" +
		"Fields: name (string): view name\n" +
		"size (capacity): capacity in GB"
	assert.Equal(t, want, set.Description("items"))
}

func TestDescription_NoArguments(t *testing.T) {
	doc := `
list_cmds:
  items:
    api_endpoints: [items]
    description: "Items.\n    {{$arguments}}\n  {{$fields}}\nEnd {{$fields}}"
    fields:
      - name: created
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)

	want := "Items.\n" +
		"    No arguments available.\n" +
		"  created (datetime): created value\n" +
		"End created (datetime): created value"
	assert.Equal(t, want, set.Description("items"))
}

func TestDescription_Merged(t *testing.T) {
	set, err := Load([]byte(mergedDoc), nil)
	require.NoError(t, err)

	want := "Both.\n" +
		"  name (str) (optional): Filter as by name. " + cheatsheets["str"] + ". Returns all if not specified.\n" +
		"  owner_name (str) (optional): Owner Name. Optional.\n" +
		"name (string): view name\n" +
		"size (capacity): capacity in GB\n" +
		"owner_name (string): view name"
	assert.Equal(t, want, set.Description("both"))
}

func TestInferFieldType(t *testing.T) {
	tests := []struct {
		field Field
		want  string
	}{
		{Field{Name: "x", Convert: "AUTO"}, "capacity"},
		{Field{Name: "x", JQ: `join(",")`}, "string (from list)"},
		{Field{Name: "x", JQ: `.[0]`}, "transformed"},
		{Field{Name: "hard limit"}, "capacity"},
		{Field{Name: "Created"}, "datetime"},
		{Field{Name: "protocols"}, "string (protocol list)"},
		{Field{Name: "name"}, "string"},
	}
	for _, tt := range tests {
		t.Run(tt.want+"/"+tt.field.Name, func(t *testing.T) {
			assert.Equal(t, tt.want, inferFieldType(&tt.field))
		})
	}
}

func TestFieldDescription(t *testing.T) {
	tests := []struct {
		name  string
		field Field
		want  string
	}{
		{"auto", Field{Name: "x", Convert: ConvertAuto}, "human-readable capacity (auto-selected unit)"},
		{"time delta", Field{Name: "x", Convert: ConvertTimeDelta}, "relative time delta (e.g., '3d 1h 45m 38s ago' or 'in 2h 30m 15s')"},
		{"unit", Field{Name: "x", Convert: "TB"}, "capacity in TB"},
		{"jq separator", Field{Name: "x", JQ: `join(", ")`}, "comma-separated list joined with ', '"},
		{"jq no separator", Field{Name: "x", JQ: `join($sep)`}, "comma-separated list"},
		{"joined convert", Field{Name: "x", Convert: "GB", JoinOn: &JoinOn{Field: "a", OnField: "a"}}, "capacity in GB. from joined data"},
		{"cli reference", Field{Name: "cluster", Source: "$(cluster)"}, "cluster name"},
		{"qos policy", Field{Name: "qos policy"}, "QoS policy name"},
		{"view policy", Field{Name: "policy"}, "view policy name"},
		{"logical used", Field{Name: "logical used"}, "logical capacity used by the view"},
		{"quota", Field{Name: "hard quota"}, "hard quota limit for the view"},
		{"single name", Field{Name: "name"}, "view name"},
		{"multi word name", Field{Name: "owner name"}, "owner name value"},
		{"fallback", Field{Name: "some_thing-else"}, "some thing else value"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fieldDescription(&tt.field))
		})
	}
}

func TestHumanize(t *testing.T) {
	assert.Equal(t, "Logical Used", humanize("logical_used"))
	assert.Equal(t, "Vip Pool Names", humanize("VIP-pool names"))
}
