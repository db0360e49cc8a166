package template

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

const baseDoc = `
api_whitelist:
  - views
variables:
  what: views
list_cmds:
  views:
    api_endpoints: [views, quotas]
    description: List {{what}}.
    fields:
      - name
      - name: path
        argument:
          type: str
          filter: true
      - name: logical used
        field: quotas.used_effective_capacity
        join_on: path
        convert: GB
`

func TestLoad_NoDocuments(t *testing.T) {
	_, err := Load(nil, nil)
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeConfig, vaerrors.CodeOf(err))

	_, err = Load([]byte("   \n"), []byte("null"))
	require.Error(t, err)
	assert.Equal(t, vaerrors.ErrCodeConfig, vaerrors.CodeOf(err))
}

func TestLoad_EitherDocumentAlone(t *testing.T) {
	for name, docs := range map[string][2][]byte{
		"base only":     {[]byte(baseDoc), nil},
		"override only": {nil, []byte(baseDoc)},
	} {
		t.Run(name, func(t *testing.T) {
			set, err := Load(docs[0], docs[1])
			require.NoError(t, err)
			assert.Equal(t, []string{"views"}, set.CommandNames())
		})
	}
}

func TestLoad_FieldDefaults(t *testing.T) {
	set, err := Load([]byte(baseDoc), nil)
	require.NoError(t, err)

	cmd, ok := set.Command("views")
	require.True(t, ok)
	assert.Equal(t, "views", cmd.BaseEndpoint())
	assert.Equal(t, "List views.", cmd.Description)
	require.Len(t, cmd.Fields, 3)

	name := cmd.Fields[0]
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, "name", name.Source)
	assert.False(t, name.SourceSet)

	used := cmd.Fields[2]
	assert.True(t, used.SourceSet)
	assert.Equal(t, &JoinOn{Field: "path", OnField: "path", ActOn: ActOnFirst}, used.JoinOn)
	ep, attr, ok := used.JoinPath()
	assert.True(t, ok)
	assert.Equal(t, "quotas", ep)
	assert.Equal(t, "used_effective_capacity", attr)
	assert.True(t, used.IsCapacity())
}

func TestLoad_HeaderAndClusterShorthand(t *testing.T) {
	doc := `
list_cmds:
  things:
    api_endpoints: [things]
    description: d
    fields:
      - header: Name
      - name: cluster
      - name: clusters
        field: cluster_list
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)
	cmd, _ := set.Command("things")

	assert.Equal(t, "Name", cmd.Fields[0].Name)
	assert.Equal(t, "Name", cmd.Fields[0].Source)

	ref, ok := cmd.Fields[1].IsCLIReference()
	assert.True(t, ok)
	assert.Equal(t, "cluster", ref)

	_, ok = cmd.Fields[2].IsCLIReference()
	assert.False(t, ok)
	assert.Equal(t, "cluster_list", cmd.Fields[2].Source)
}

func TestLoad_OverrideMergesFieldsByName(t *testing.T) {
	override := `
list_cmds:
  views:
    fields:
      - name: path
        argument:
          mandatory: true
      - name: bucket
  extra:
    api_endpoints: [tenants]
    description: Tenants.
    fields: [name]
`
	set, err := Load([]byte(baseDoc), []byte(override))
	require.NoError(t, err)
	assert.Equal(t, []string{"views", "extra"}, set.CommandNames())

	cmd, _ := set.Command("views")
	var names []string
	for _, f := range cmd.Fields {
		names = append(names, f.Name)
	}
	assert.Equal(t, []string{"name", "path", "logical used", "bucket"}, names)

	path, ok := cmd.Field("path")
	require.True(t, ok)
	require.NotNil(t, path.Argument)
	assert.True(t, path.Argument.Mandatory)
	assert.True(t, path.Argument.Filter, "base keys survive the merge")
	assert.Equal(t, "str", path.Argument.Type)
	assert.Equal(t, []string{"views", "quotas"}, cmd.Endpoints)
}

func TestLoad_MergeMatchesUnderscoreSpelling(t *testing.T) {
	override := `
list_cmds:
  views:
    fields:
      - name: logical_used
        convert: TB
`
	set, err := Load([]byte(baseDoc), []byte(override))
	require.NoError(t, err)
	cmd, _ := set.Command("views")
	require.Len(t, cmd.Fields, 3)

	f, ok := cmd.Field("logical_used")
	require.True(t, ok)
	assert.Equal(t, "TB", f.Convert)
	assert.Equal(t, "quotas.used_effective_capacity", f.Source)
}

func TestLoad_MergeWithSelfIsIdempotent(t *testing.T) {
	once, err := Load([]byte(baseDoc), nil)
	require.NoError(t, err)
	twice, err := Load([]byte(baseDoc), []byte(baseDoc))
	require.NoError(t, err)

	a, _ := once.Command("views")
	b, _ := twice.Command("views")
	assert.Equal(t, a, b)
	assert.Equal(t, once.Whitelist(), twice.Whitelist())
	assert.Equal(t, once.Variables(), twice.Variables())
}

func TestLoad_WhitelistUnion(t *testing.T) {
	override := `
api_whitelist:
  - views:
      - POST
  - quotas
`
	set, err := Load([]byte(baseDoc), []byte(override))
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"views":  {"get", "post"},
		"quotas": {"get"},
	}, set.Whitelist())
}

func TestLoad_OverrideVariablesWin(t *testing.T) {
	set, err := Load([]byte(baseDoc), []byte("variables:\n  what: quotas\n"))
	require.NoError(t, err)
	cmd, _ := set.Command("views")
	assert.Equal(t, "List quotas.", cmd.Description)
}

func TestLoad_NestedVariables(t *testing.T) {
	doc := `
variables:
  outer: "[{{inner}}]"
  inner: x
list_cmds:
  c:
    api_endpoints: [c]
    description: "{{outer}} {{unknown}} {{$fields}}"
    fields: [name]
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)
	cmd, _ := set.Command("c")
	assert.Equal(t, "[x] {{unknown}} {{$fields}}", cmd.Description)
}

func TestLoad_AnchorsAndMergeKeys(t *testing.T) {
	doc := `
list_cmds:
  _shared: &shared
    name: tenant
    field: tenant_name
    argument:
      type: str
      filter: true
  views:
    api_endpoints: [views]
    description: d
    fields:
      - *shared
      - <<: *shared
        name: owner
        field: owner_name
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"views"}, set.CommandNames())

	cmd, _ := set.Command("views")
	require.Len(t, cmd.Fields, 2)
	assert.Equal(t, "tenant_name", cmd.Fields[0].Source)
	assert.Equal(t, "owner", cmd.Fields[1].Name)
	assert.Equal(t, "owner_name", cmd.Fields[1].Source)
	require.NotNil(t, cmd.Fields[1].Argument)
	assert.True(t, cmd.Fields[1].Argument.Filter)
}

func TestLoad_Ordering(t *testing.T) {
	doc := `
list_cmds:
  a:
    api_endpoints: [a]
    description: d
    fields: [x, y]
    ordering:
      y: desc
      x: asc
  b:
    api_endpoints: [b]
    description: d
    fields: [x, y]
    ordering:
      - x: descending
      - y: a
`
	set, err := Load([]byte(doc), nil)
	require.NoError(t, err)

	a, _ := set.Command("a")
	assert.Equal(t, []string{"y:desc", "x:asc"}, a.Ordering.Tokens())
	b, _ := set.Command("b")
	assert.Equal(t, []string{"x:descending", "y:a"}, b.Ordering.Tokens())
}

func TestLoadFiles(t *testing.T) {
	dir := t.TempDir()
	base := filepath.Join(dir, "base.yaml")
	require.NoError(t, os.WriteFile(base, []byte(baseDoc), 0o600))

	set, err := LoadFiles(base, filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Equal(t, []string{"views"}, set.CommandNames())

	_, err = LoadFiles(filepath.Join(dir, "nope.yaml"), filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, vaerrors.IsCode(err, vaerrors.ErrCodeConfig))
}

func TestLoadWithDefault(t *testing.T) {
	dir := t.TempDir()
	override := filepath.Join(dir, "mods.yaml")
	require.NoError(t, os.WriteFile(override, []byte(`
list_cmds:
  views:
    fields:
      - name: path
        argument:
          mandatory: true
`), 0o600))

	set, err := LoadWithDefault(override)
	require.NoError(t, err)
	args := set.Arguments("views")
	var found bool
	for _, a := range args {
		if a.Name == "path" {
			found = true
			assert.True(t, a.Mandatory)
		}
	}
	assert.True(t, found)
}

func TestDefault(t *testing.T) {
	set, err := Default()
	require.NoError(t, err)

	again, err := Default()
	require.NoError(t, err)
	assert.Same(t, set, again)

	assert.Equal(t, []string{"clusters", "views", "quotas", "snapshots", "tenants"}, set.CommandNames())
	assert.Equal(t, []string{"capacity_usage"}, set.MergedNames())
	assert.Equal(t, []string{"get"}, set.Whitelist()["monitors.ad_hoc_query"])

	for _, name := range append(set.CommandNames(), set.MergedNames()...) {
		desc := set.Description(name)
		assert.NotContains(t, desc, placeholderArguments, name)
		assert.NotContains(t, desc, placeholderFields, name)
		assert.NotContains(t, desc, "{{vast_cluster}}", name)
	}
}
