package expr

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEval(t *testing.T) {
	row := map[string]any{
		"role":         "Primary",
		"name":         "  view-1 ",
		"logical used": json.Number("2048"),
		"guid":         "abcdef123456",
		"count":        int64(3),
		"tenant":       "default",
		"path":         "/data",
		"missing":      nil,
		"hard_limit":   int64(10),
	}

	tests := []struct {
		src  string
		want any
	}{
		{`f"async/{lower(role)}"`, "async/primary"},
		{`f'{upper(role)}'`, "PRIMARY"},
		{`strip(name)`, "view-1"},
		{`concat(role, "-", count)`, "Primary-3"},
		{`join("/", tenant, path)`, "default//data"},
		{`replace(path, "/", ":")`, ":data"},
		{`substring(guid, 0, 6)`, "abcdef"},
		{`substring(guid, -4)`, "3456"},
		{`substring(guid, 10, 2)`, ""},
		{`logical_used + 1`, int64(2049)},
		{`count + 0.5`, 3.5},
		{`"a" + "b"`, "ab"},
		{`-count`, int64(-3)},
		{`int("42") + 1`, int64(43)},
		{`float("1.5")`, 1.5},
		{`len(guid)`, int64(12)},
		{`bool(missing)`, false},
		{`str(True)`, "true"},
		{`f"{missing}x"`, "x"},
		{`f"{logical used}/{hard limit}"`, "2048/10"},
		{`f"{logical_used}"`, "2048"},
		{`f"{{literal}} {count}"`, "{literal} 3"},
		{`f"{concat(role, '}')}"`, "Primary}"},
		{`lower(missing)`, ""},
		{`(count)`, int64(3)},
		{`None`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.src, func(t *testing.T) {
			got, err := Eval(tt.src, row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEval_Errors(t *testing.T) {
	row := map[string]any{"a": "x", "n": int64(1)}

	tests := []string{
		``,
		`unknown`,
		`open("x")`,
		`lower(a, a)`,
		`a + n`,
		`f"{a"`,
		`f"a}"`,
		`lower(a`,
		`a b`,
		`__import__("os")`,
		`int("x")`,
		`substring(a, "1")`,
	}

	for _, src := range tests {
		t.Run(src, func(t *testing.T) {
			got, err := Eval(src, row)
			require.Error(t, err)
			assert.Nil(t, got)
		})
	}
}

func TestParse_SyntaxErrorPosition(t *testing.T) {
	_, err := Parse(`f"ok {lower(}"`)
	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, 12, se.Pos)
}

func TestCompile_Cached(t *testing.T) {
	p1, err := Compile(`upper(x)`)
	require.NoError(t, err)
	p2, err := Compile(`  upper(x) `)
	require.NoError(t, err)
	assert.Same(t, p1, p2)
	assert.Equal(t, "upper(x)", p1.String())
}
