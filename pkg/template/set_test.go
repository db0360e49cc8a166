package template

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

func mustDefault(t *testing.T) *Set {
	t.Helper()
	set, err := Default()
	require.NoError(t, err)
	return set
}

func TestSet_Arguments_GeneratedDescriptions(t *testing.T) {
	set := mustDefault(t)

	byName := make(map[string]ArgumentInfo)
	for _, a := range set.Arguments("views") {
		byName[a.Name] = a
	}

	tests := []struct {
		arg  string
		want string
	}{
		{"cluster", "Cluster name or address. Queries all clusters from configuration if not specified."},
		{"tenant", "Filter views by tenant. " + cheatsheets["str"] + ". Returns all tenants if not specified."},
		{"name", "Filter views by name. " + cheatsheets["str"] + ". Returns all if not specified."},
		{"logical used", "Filter views by logical used. " + cheatsheets["capacity"] + ". Returns all if not specified."},
		{"protocols", "Filter by checking if value exists in comma-separated list. " +
			"Supports: exact match (e.g., 'user1'), 'in:value' syntax (e.g., 'in:user1'), wildcards (e.g., '*admin*'), " +
			"or substring match (e.g., 'admin' matches 'admin1', 'admin2', etc.). All matching is case-insensitive."},
	}
	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			a, ok := byName[tt.arg]
			require.True(t, ok)
			assert.Equal(t, tt.want, a.Description)
		})
	}

	assert.Equal(t, "int", byName["logical used"].Type, "declared type is reported as written")
	assert.Equal(t, []string{"clusters"}, byName["cluster"].Aliases)
}

func TestSet_Arguments_ExplicitDescriptionGetsAliases(t *testing.T) {
	doc := `
list_cmds:
  things:
    api_endpoints: [things]
    description: d
    fields:
      - name: owner
        argument:
          description: Owner account
          aliases: [o, user]
      - name: group
        argument:
          description: "Group. Aliases: g"
          aliases: [g]
      - name: kind
        argument: {}
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)

	args := set.Arguments("things")
	require.Len(t, args, 3)
	assert.Equal(t, "Owner account. Aliases: o, user", args[0].Description)
	assert.Equal(t, "Group. Aliases: g", args[1].Description)
	assert.Equal(t, "str", args[2].Type)
	assert.Equal(t, "Kind. Optional.", args[2].Description)
}

func TestSet_Argument_ByAlias(t *testing.T) {
	set := mustDefault(t)

	a, ok := set.Argument("views", "clusters")
	require.True(t, ok)
	assert.Equal(t, "cluster", a.Name)

	a, ok = set.Argument("views", "logical_used")
	require.True(t, ok)
	assert.Equal(t, "logical used", a.Name)

	_, ok = set.Argument("views", "nope")
	assert.False(t, ok)
}

func TestSet_APIMapping(t *testing.T) {
	set := mustDefault(t)

	tests := []struct {
		cmd, arg string
		want     string
		wantOK   bool
	}{
		{"views", "tenant", "tenant_name", true},
		{"views", "path", "path", true},
		{"views", "logical_used", "quotas.used_effective_capacity", true},
		{"views", "cluster", "", false},
		{"views", "unknown", "unknown", true},
		{"nope", "tenant", "tenant", true},
	}
	for _, tt := range tests {
		t.Run(tt.cmd+"/"+tt.arg, func(t *testing.T) {
			got, ok := set.APIMapping(tt.cmd, tt.arg)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSet_ValidateArgument(t *testing.T) {
	set := mustDefault(t)

	assert.NoError(t, set.ValidateArgument("views", "path", "/data/projects"))
	assert.NoError(t, set.ValidateArgument("views", "path", "/a b"), "pattern only anchors at the start")
	assert.NoError(t, set.ValidateArgument("views", "name", "anything"), "no regex configured")
	assert.NoError(t, set.ValidateArgument("views", "unknown", "x"))

	err := set.ValidateArgument("views", "path", "data")
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeInvalidArgument, vaerrors.CodeOf(err))
	assert.Equal(t, "Invalid format for 'path'", err.Error())
}

const mergedDoc = `
list_cmds:
  a:
    api_endpoints: [a]
    description: d
    fields:
      - name: name
        argument:
          type: str
          filter: true
      - name: size
        convert: GB
  b:
    api_endpoints: [b]
    description: d
    fields:
      - name: name
        argument:
          type: int
      - name: owner_name
        argument:
          type: str
      - name: secret
        hide: true
merged_list_cmds:
  - name: both
    functions: [a, b]
    description: |
      Both.
        {{$arguments}}
      {{$fields}}
`

func TestSet_MergedUnions(t *testing.T) {
	set, err := Load([]byte(mergedDoc), nil)
	require.NoError(t, err)

	m, ok := set.Merged("both")
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, m.Functions)

	args := set.MergedArguments("both")
	require.Len(t, args, 2)
	assert.Equal(t, "name", args[0].Name)
	assert.Equal(t, "str", args[0].Type, "first occurrence wins")
	assert.Equal(t, "owner_name", args[1].Name)

	assert.Equal(t, []string{"name", "size", "owner_name", "secret"}, set.MergedFields("both"))

	fields := set.Fields("both")
	require.Len(t, fields, 3)
	assert.Equal(t, FieldInfo{Name: "size", Type: "capacity", Description: "capacity in GB"}, fields[1])
}

func TestSet_UnknownNames(t *testing.T) {
	set, err := Load([]byte(mergedDoc), nil)
	require.NoError(t, err)

	_, ok := set.Command("missing")
	assert.False(t, ok)
	assert.Nil(t, set.Arguments("missing"))
	assert.Nil(t, set.MergedArguments("missing"))
	assert.Nil(t, set.MergedFields("missing"))
	assert.Empty(t, set.Description("missing"))
}
