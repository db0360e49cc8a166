package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name       string
		typ        ArgType
		in         string
		wantKind   Kind
		wantValue  any
		wantSuffix string
		wantErr    bool
	}{
		{"non empty", TypeString, "*", KindNonEmpty, ".+", "__regex", false},
		{"contains", TypeString, "*prod*", KindContains, "prod", "__icontains", false},
		{"not contains", TypeString, "!*tmp*", KindNotContains, "tmp", "__not_icontains", false},
		{"starts with", TypeString, "/data*", KindStartsWith, "/data", "__startswith", false},
		{"ends with", TypeString, "*.log", KindEndsWith, ".log", "__endswith", false},
		{"equals", TypeString, "tenant1", KindEquals, "tenant1", "", false},
		{"trimmed", TypeString, "  tenant1 ", KindEquals, "tenant1", "", false},
		{"int gt", TypeInteger, ">100", KindGt, int64(100), "__gt", false},
		{"int gte", TypeInteger, ">= 100", KindGte, int64(100), "__gte", false},
		{"int lt", TypeInteger, "<5", KindLt, int64(5), "__lt", false},
		{"int lte", TypeInteger, "<=5", KindLte, int64(5), "__lte", false},
		{"int eq", TypeInteger, "42", KindEq, int64(42), "", false},
		{"int bad", TypeInteger, ">abc", "", nil, "", true},
		{"int not a number", TypeInteger, "4.5", "", nil, "", true},
		{"capacity gte", TypeCapacity, ">=10GB", KindGte, int64(10 * 1024 * 1024 * 1024), "__gte", false},
		{"capacity alias", TypeCapacity, "<1M", KindLt, int64(1024 * 1024), "__lt", false},
		{"capacity eq", TypeCapacity, "1TB", KindEq, int64(1 << 40), "", false},
		{"capacity fractional", TypeCapacity, ">1.5KB", KindGt, int64(1536), "__gt", false},
		{"capacity bad unit", TypeCapacity, ">1XB", "", nil, "", true},
		{"capacity no unit", TypeCapacity, ">100", "", nil, "", true},
		{"bool true", TypeBoolean, "TRUE", KindBool, true, "", false},
		{"bool one", TypeBoolean, "1", KindBool, true, "", false},
		{"bool false", TypeBoolean, "false", KindBool, false, "", false},
		{"bool bad", TypeBoolean, "yes", "", nil, "", true},
		{"list in", TypeList, "in:NFS", KindIn, "NFS", "", false},
		{"list plain", TypeList, "S3", KindIn, "S3", "", false},
		{"empty", TypeString, "  ", "", nil, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := Parse(tt.typ, tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantKind, p.Kind)
			assert.Equal(t, tt.wantValue, p.Value)
			assert.Equal(t, tt.wantSuffix, p.Suffix())
		})
	}
}

func TestParseArgType(t *testing.T) {
	for in, want := range map[string]ArgType{
		"str": TypeString, "string": TypeString, "": TypeString,
		"int": TypeInteger, "integer": TypeInteger,
		"bool": TypeBoolean, "boolean": TypeBoolean,
		"list": TypeList, "capacity": TypeCapacity,
	} {
		got, ok := ParseArgType(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseArgType("float")
	assert.False(t, ok)
}

func TestPredicate_ParamAndPushdown(t *testing.T) {
	p, err := Parse(TypeCapacity, ">=10GB")
	require.NoError(t, err)
	assert.Equal(t, "used_capacity__gte", p.Param("used_capacity"))
	assert.True(t, p.Pushdown())

	l, err := Parse(TypeList, "in:NFS")
	require.NoError(t, err)
	assert.False(t, l.Pushdown())
}

// Parsing a literal and re-applying it locally must agree with each
// operator's reference decision.
func TestPredicate_MatchesReferenceDecision(t *testing.T) {
	tests := []struct {
		typ   ArgType
		lit   string
		value any
		want  bool
	}{
		{TypeString, "*", "x", true},
		{TypeString, "*", "", false},
		{TypeString, "*prod*", "my-PROD-view", true},
		{TypeString, "*prod*", "dev", false},
		{TypeString, "!*prod*", "dev", true},
		{TypeString, "!*prod*", "prod1", false},
		{TypeString, "/data*", "/data/a", true},
		{TypeString, "/data*", "/other", false},
		{TypeString, "*.log", "app.LOG", true},
		{TypeString, "*.log", "app.txt", false},
		{TypeString, "prod", "PROD", true},
		{TypeString, "prod", "prod-archive", false},
		{TypeString, "prod", "nonprod", false},
		{TypeString, "v*1", "v21", true},
		{TypeInteger, ">100", float64(101), true},
		{TypeInteger, ">100", float64(100), false},
		{TypeInteger, ">=100", float64(100), true},
		{TypeInteger, "<5", float64(4), true},
		{TypeInteger, "<=5", float64(6), false},
		{TypeInteger, "42", float64(42), true},
		{TypeInteger, "42", "42", true},
		{TypeCapacity, ">=10GB", float64(12e9), true},
		{TypeCapacity, ">=10GB", float64(5e9), false},
		{TypeCapacity, "<1TB", "500GB", true},
		{TypeBoolean, "true", true, true},
		{TypeBoolean, "false", true, false},
		{TypeBoolean, "false", false, true},
		{TypeList, "in:nfs", "NFS,S3", true},
		{TypeList, "SMB", "NFS,S3", false},
		{TypeList, "S3", []any{"NFS", "S3"}, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.typ)+" "+tt.lit, func(t *testing.T) {
			p, err := Parse(tt.typ, tt.lit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Matches(tt.value), "value %v", tt.value)
		})
	}
}
