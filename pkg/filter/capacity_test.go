package filter

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapacity(t *testing.T) {
	tests := []struct {
		in      string
		wantOp  Op
		want    int64
		wantErr bool
	}{
		{"1B", OpEq, 1, false},
		{">1KB", OpGt, 1024, false},
		{">=500GB", OpGte, 500 << 30, false},
		{"<1M", OpLt, 1 << 20, false},
		{"<= 2 tb", OpLte, 2 << 40, false},
		{"=1P", OpEq, 1 << 50, false},
		{"", "", 0, true},
		{"GB", "", 0, true},
		{"10 XB", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			c, err := ParseCapacity(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantOp, c.Op)
			assert.Equal(t, tt.want, c.Bytes)
		})
	}
}

func TestParseCapacity_UnitStepIs1024(t *testing.T) {
	for _, op := range []string{"", ">", ">=", "<", "<="} {
		prev := int64(0)
		for i, unit := range Units {
			c, err := ParseCapacity(fmt.Sprintf("%s3%s", op, unit))
			require.NoError(t, err)
			if i > 0 {
				assert.Equal(t, prev*1024, c.Bytes, "unit %s", unit)
			}
			prev = c.Bytes
		}
	}
}

func TestParseCapacity_MonotonicInNumber(t *testing.T) {
	for _, unit := range []string{"B", "K", "MB", "G", "TB"} {
		prev := int64(-1)
		for _, n := range []string{"0", "0.5", "1", "1.25", "2", "10", "1000"} {
			c, err := ParseCapacity(">=" + n + unit)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, c.Bytes, prev, "%s%s", n, unit)
			prev = c.Bytes
		}
	}
}

func TestFormatCapacity(t *testing.T) {
	tests := []struct {
		v    any
		unit string
		want string
	}{
		{float64(12e9), "GB", "11.18 GB"},
		{float64(20e9), "GB", "18.63 GB"},
		{float64(1536), "KB", "1.50 KB"},
		{float64(512), "AUTO", "512.00 B"},
		{float64(1 << 30), "AUTO", "1.00 GB"},
		{"1048576", "MB", "1.00 MB"},
		{"n/a", "GB", "n/a"},
		{float64(100), "XB", "100"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCapacity(tt.v, tt.unit))
		})
	}
}
