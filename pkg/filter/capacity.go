package filter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Op is a comparison operator.
type Op string

const (
	OpEq  Op = "eq"
	OpGt  Op = "gt"
	OpGte Op = "gte"
	OpLt  Op = "lt"
	OpLte Op = "lte"
)

// Units lists the capacity units in ascending order.
var Units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

var (
	capacityRe = regexp.MustCompile(`^(>=|<=|>|<|=)?\s*([\d.]+)\s*([A-Za-z]+)$`)
	numericRe  = regexp.MustCompile(`^(>=|<=|>|<|=)?\s*([\d.]+)$`)

	unitAliases = map[string]string{"K": "KB", "M": "MB", "G": "GB", "T": "TB", "P": "PB"}
)

// Capacity is a parsed capacity literal.
type Capacity struct {
	Op    Op
	Bytes int64
}

// UnitMultiplier returns 1024^n for the n-th unit, accepting single-letter
// aliases. ok is false for unknown units.
func UnitMultiplier(unit string) (int64, bool) {
	u := strings.ToUpper(unit)
	if alias, found := unitAliases[u]; found {
		u = alias
	}
	mult := int64(1)
	for _, known := range Units {
		if known == u {
			return mult, true
		}
		mult *= 1024
	}
	return 0, false
}

// ParseCapacity parses "[op]<number><unit>", for example ">=1.5TB" or "500G".
func ParseCapacity(s string) (Capacity, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Capacity{}, fmt.Errorf("capacity string cannot be empty")
	}

	m := capacityRe.FindStringSubmatch(s)
	if m == nil {
		return Capacity{}, fmt.Errorf("invalid capacity format %q, expected [operator]number[unit] (e.g. >1TB, >=500GB)", s)
	}

	mult, ok := UnitMultiplier(m[3])
	if !ok {
		return Capacity{}, fmt.Errorf("invalid unit %q, supported units: B, KB, MB, GB, TB, PB", strings.ToUpper(m[3]))
	}

	n, err := strconv.ParseFloat(m[2], 64)
	if err != nil {
		return Capacity{}, fmt.Errorf("invalid number in capacity string %q", m[2])
	}

	return Capacity{Op: opFromSymbol(m[1]), Bytes: int64(n * float64(mult))}, nil
}

func opFromSymbol(sym string) Op {
	switch sym {
	case ">=":
		return OpGte
	case "<=":
		return OpLte
	case ">":
		return OpGt
	case "<":
		return OpLt
	default:
		return OpEq
	}
}

func compare[T int64 | float64](op Op, left, right T) bool {
	switch op {
	case OpGt:
		return left > right
	case OpGte:
		return left >= right
	case OpLt:
		return left < right
	case OpLte:
		return left <= right
	default:
		return left == right
	}
}

// FormatCapacity renders a byte count in the given unit with two decimals.
// Unit "AUTO" picks the largest unit that keeps the value at or above 1.
// Values that are not integral byte counts are returned in string form.
func FormatCapacity(v any, unit string) string {
	b, ok := ToInt(v)
	if !ok {
		return ToString(v)
	}

	if unit == "AUTO" {
		size := float64(b)
		i := 0
		for size >= 1024 && i < len(Units)-1 {
			size /= 1024
			i++
		}
		return fmt.Sprintf("%.2f %s", size, Units[i])
	}

	for i, u := range Units {
		if u == unit {
			div := float64(int64(1) << (10 * i))
			return fmt.Sprintf("%.2f %s", float64(b)/div, unit)
		}
	}

	return strconv.FormatInt(b, 10)
}
