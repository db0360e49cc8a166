package executor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/vast-data/vast-admin-mcp/pkg/template"
)

func TestRow_MarshalKeepsOrder(t *testing.T) {
	r := NewRow()
	r.Set("name", "v1")
	r.Set("logical_used", "1.00 GB")
	r.Set("cluster", nil)
	r.Set("count", json.Number("3"))
	r.SetRaw("logical_used", 1073741824)

	b, err := json.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"v1","logical_used":"1.00 GB","cluster":null,"count":3}`, string(b))

	y, err := yaml.Marshal(r)
	require.NoError(t, err)
	assert.Equal(t, "name: v1\nlogical_used: 1.00 GB\ncluster: null\ncount: 3\n", string(y))

	r.Delete("cluster")
	assert.Equal(t, []string{"name", "logical_used", "count"}, r.Keys())
	assert.True(t, r.HasRaw())
	r.StripRaw()
	assert.False(t, r.HasRaw())
}

func TestRow_MarshalYAMLNumbers(t *testing.T) {
	r := NewRow()
	r.Set("used", json.Number("1073741824"))
	r.Set("ratio", json.Number("1.5"))
	r.Set("instance", map[string]any{"id": json.Number("7")})

	y, err := yaml.Marshal(r)
	require.NoError(t, err)

	var back map[string]any
	require.NoError(t, yaml.Unmarshal(y, &back))
	assert.Equal(t, 1073741824, back["used"])
	assert.Equal(t, 1.5, back["ratio"])
	assert.Equal(t, map[string]any{"id": 7}, back["instance"])
}

func TestRowFromMap(t *testing.T) {
	r := RowFromMap(map[string]any{"b": 1, "a": 2, "c": 3}, "c", "missing")
	assert.Equal(t, []string{"c", "a", "b"}, r.Keys())
}

func TestEvalCondition(t *testing.T) {
	row := map[string]any{
		"state":   "EXCEEDED",
		"count":   json.Number("5"),
		"enabled": true,
		"flag":    "false",
		"created": "2025-12-10T17:40:53Z",
		"empty":   nil,
		"num str": "42",
	}

	tests := []struct {
		name  string
		cond  template.Condition
		wants bool
	}{
		{"equals string", template.Condition{Field: "state", Operator: "equals", Value: "EXCEEDED"}, true},
		{"equals is case sensitive", template.Condition{Field: "state", Operator: "==", Value: "exceeded"}, false},
		{"not equals", template.Condition{Field: "state", Operator: "ne", Value: "OK"}, true},
		{"number gt", template.Condition{Field: "count", Operator: ">", Value: 3}, true},
		{"number lte string operand", template.Condition{Field: "count", Operator: "lte", Value: "4"}, false},
		{"bool", template.Condition{Field: "enabled", Operator: "equals", Value: "true"}, true},
		{"bool string", template.Condition{Field: "flag", Operator: "equals", Value: false}, true},
		{"datetime", template.Condition{Field: "created", Operator: "greater_than", Value: "2025-01-01T00:00:00Z"}, true},
		{"contains", template.Condition{Field: "state", Operator: "contains", Value: "CEED"}, true},
		{"starts_with", template.Condition{Field: "state", Operator: "starts_with", Value: "EX"}, true},
		{"ends_with", template.Condition{Field: "state", Operator: "ends_with", Value: "ED"}, true},
		{"in list", template.Condition{Field: "state", Operator: "in", Value: []any{"OK", "EXCEEDED"}}, true},
		{"in comma string", template.Condition{Field: "state", Operator: "in", Value: "OK, WARN"}, false},
		{"regex anchored", template.Condition{Field: "state", Operator: "regex", Value: "CEED"}, false},
		{"regex", template.Condition{Field: "state", Operator: "regex", Value: "EX.*"}, true},
		{"missing field", template.Condition{Field: "nope", Operator: "equals", Value: nil}, false},
		{"nil equals null", template.Condition{Field: "empty", Operator: "equals", Value: nil}, true},
		{"nil not equals", template.Condition{Field: "empty", Operator: "not_equals", Value: "x"}, false},
		{"underscore name", template.Condition{Field: "num_str", Operator: "gte", Value: 42}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wants, evalCondition(&tt.cond, row))
		})
	}
}

func TestTimeDelta(t *testing.T) {
	now := time.Date(2025, 12, 13, 19, 26, 31, 0, time.UTC)
	tests := []struct {
		in   any
		want any
	}{
		{"2025-12-10T17:40:53Z", "3d 1h 45m 38s ago"},
		{"2025-11-26T21:18:36.547643Z", "16d 22h 7m 54s ago"},
		{"2025-12-13T19:26:31+00:00", "0s ago"},
		{"2025-12-13T21:56:46", "in 2h 30m 15s"},
		{"2025-12-13T20:26:31+01:00", "0s ago"},
		{"not a time", "not a time"},
	}
	for _, tt := range tests {
		t.Run(tt.in.(string), func(t *testing.T) {
			assert.Equal(t, tt.want, timeDelta(tt.in, now))
		})
	}
}

func TestLookupPath(t *testing.T) {
	row := map[string]any{
		"quotas":    map[string]any{"used": 5, "owner": map[string]any{"name": "u1"}},
		"snapshots": []any{map[string]any{"name": "s1"}, map[string]any{"name": nil}, map[string]any{"name": "s3"}},
		"empty":     map[string]any{"sub": map[string]any{}},
	}

	assert.Equal(t, 5, lookupPath(row, "quotas.used"))
	assert.Equal(t, "u1", lookupPath(row, "quotas.owner.name"))
	assert.Equal(t, aggregate{"s1", "s3"}, lookupPath(row, "snapshots.name"))
	assert.Nil(t, lookupPath(row, "quotas.missing.deeper"))
	assert.Nil(t, lookupPath(row, "empty.sub"))
	assert.Nil(t, lookupPath(row, "nothing.here"))
}

func TestCanonicalName(t *testing.T) {
	tests := map[string]string{
		"logical used":      "logical_used",
		"snapshot-names":    "snapshot_names",
		"  a  b__c ":        "a_b_c",
		"already_canonical": "already_canonical",
		"":                  "",
	}
	for in, want := range tests {
		assert.Equal(t, want, CanonicalName(in), in)
	}
}

func TestResolveFieldName(t *testing.T) {
	fields := []string{"name", "logical used", "Tenant", "replication state"}
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{"name", "name", true},
		{"logical_used", "logical used", true},
		{"tenant", "Tenant", true},
		{"replication_stat", "replication state", true},
		{"zzz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := resolveFieldName(tt.in, fields)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestJoinRows_ActOnPolicies(t *testing.T) {
	joined := []map[string]any{
		{"path": "/a", "id": 1},
		{"path": "/a", "id": 2},
		{"path": "/b", "id": 3},
	}
	tests := []struct {
		actOn string
		want  []map[string]any
	}{
		{template.ActOnFirst, []map[string]any{
			{"path": "/a", "quotas": map[string]any{"path": "/a", "id": 1}},
			{"path": "/b", "quotas": map[string]any{"path": "/b", "id": 3}},
			{"path": "/c"},
		}},
		{template.ActOnLast, []map[string]any{
			{"path": "/a", "quotas": map[string]any{"path": "/a", "id": 2}},
			{"path": "/b", "quotas": map[string]any{"path": "/b", "id": 3}},
			{"path": "/c"},
		}},
		{template.ActOnAll, []map[string]any{
			{"path": "/a", "quotas": []any{map[string]any{"path": "/a", "id": 1}, map[string]any{"path": "/a", "id": 2}}},
			{"path": "/b", "quotas": []any{map[string]any{"path": "/b", "id": 3}}},
			{"path": "/c"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.actOn, func(t *testing.T) {
			rows := []map[string]any{{"path": "/a"}, {"path": "/b"}, {"path": "/c"}}
			joinRows(rows, joined, "quotas", &template.JoinOn{Field: "path", OnField: "path", ActOn: tt.actOn})
			if diff := cmp.Diff(tt.want, rows); diff != "" {
				t.Errorf("joinRows() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRowQuery(t *testing.T) {
	row := map[string]any{"id": 7, "tenant_id": 3}
	params, tenant := rowQuery([]string{"view_id=$id", "tenant_id=$tenant_id", "kind = nfs", "skip=$missing", "bad"}, row, "")
	assert.Equal(t, map[string]any{"view_id": 7, "kind": "nfs"}, params)
	assert.Equal(t, "3", tenant)
}

func TestApplyJQ(t *testing.T) {
	e := New(nil, nil)
	list := []any{map[string]any{"name": "a"}, map[string]any{"name": "b"}}

	tests := []struct {
		name string
		expr string
		in   any
		want any
	}{
		{"join", `map(.name) | join(", ")`, list, "a, b"},
		{"escaped quotes", `map(.name) | join(\"-\")`, list, "a-b"},
		{"number", `. * 2`, json.Number("21"), 42},
		{"several outputs", `.[] | .name`, list, []any{"a", "b"}},
		{"no output", `empty`, list, nil},
		{"runtime error keeps value", `.foo`, "text", "text"},
		{"compile error joins list", `map(.name | join("/")`, []any{"x", "y"}, "x/y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, e.applyJQ(t.Context(), tt.expr, tt.in))
		})
	}
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc...", truncate("abcdefghij", 6))
	assert.Equal(t, "ab", truncate("abcdef", 2))
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, 12345, truncate(12345, 2))
	assert.Equal(t, "abcdef", truncate("abcdef", 0))
}
