package expr

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/vast-data/vast-admin-mcp/pkg/filter"
)

// Program is a compiled expression.
type Program struct {
	src  string
	root Node
}

// String returns the source the program was compiled from.
func (p *Program) String() string {
	return p.src
}

var cache sync.Map // string -> *Program

// Compile parses src. Compiled programs are cached by source text.
func Compile(src string) (*Program, error) {
	src = strings.TrimSpace(src)
	if cached, ok := cache.Load(src); ok {
		return cached.(*Program), nil
	}

	root, err := Parse(src)
	if err != nil {
		return nil, err
	}

	prog := &Program{src: src, root: root}
	cache.Store(src, prog)
	return prog, nil
}

// Eval compiles and evaluates src against vars.
func Eval(src string, vars map[string]any) (any, error) {
	prog, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return prog.Eval(vars)
}

// Eval evaluates the program. Names resolve against vars, trying the name as
// written and then with underscores read as spaces.
func (p *Program) Eval(vars map[string]any) (any, error) {
	return eval(p.root, vars)
}

func eval(n Node, vars map[string]any) (any, error) {
	switch n := n.(type) {
	case Literal:
		return n.Value, nil

	case Name:
		if v, ok := lookup(vars, n.Name); ok {
			return v, nil
		}
		return nil, fmt.Errorf("name %q is not defined", n.Name)

	case Negate:
		v, err := eval(n.X, vars)
		if err != nil {
			return nil, err
		}
		switch x := normalizeNumber(v).(type) {
		case int64:
			return -x, nil
		case float64:
			return -x, nil
		}
		return nil, fmt.Errorf("bad operand for unary -: %T", v)

	case Binary:
		l, err := eval(n.Left, vars)
		if err != nil {
			return nil, err
		}
		r, err := eval(n.Right, vars)
		if err != nil {
			return nil, err
		}
		return add(l, r)

	case FString:
		var sb strings.Builder
		for _, part := range n.Parts {
			v, err := eval(part, vars)
			if err != nil {
				return nil, err
			}
			sb.WriteString(str(v))
		}
		return sb.String(), nil

	case Call:
		fn, ok := builtins[n.Func]
		if !ok {
			return nil, fmt.Errorf("unknown function %q", n.Func)
		}
		args := make([]any, len(n.Args))
		for i, a := range n.Args {
			v, err := eval(a, vars)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return fn(args)
	}

	return nil, fmt.Errorf("unsupported node %T", n)
}

func lookup(vars map[string]any, name string) (any, bool) {
	if v, ok := vars[name]; ok {
		return v, true
	}
	for _, alt := range []string{
		strings.ReplaceAll(name, "_", " "),
		strings.ReplaceAll(name, " ", "_"),
	} {
		if alt == name {
			continue
		}
		if v, ok := vars[alt]; ok {
			return v, true
		}
	}
	return nil, false
}

func add(l, r any) (any, error) {
	l, r = normalizeNumber(l), normalizeNumber(r)
	li, lInt := l.(int64)
	ri, rInt := r.(int64)
	if lInt && rInt {
		return li + ri, nil
	}

	if isNumber(l) && isNumber(r) {
		lf, _ := filter.ToFloat(l)
		rf, _ := filter.ToFloat(r)
		return lf + rf, nil
	}

	ls, lStr := l.(string)
	rs, rStr := r.(string)
	if lStr && rStr {
		return ls + rs, nil
	}

	return nil, fmt.Errorf("unsupported operand types for +: %T and %T", l, r)
}

func normalizeNumber(v any) any {
	n, ok := v.(json.Number)
	if !ok {
		return v
	}
	if i, err := n.Int64(); err == nil {
		return i
	}
	if f, err := n.Float64(); err == nil {
		return f
	}
	return n.String()
}

func isNumber(v any) bool {
	switch v.(type) {
	case int64, float64, int:
		return true
	}
	return false
}

// str renders a value for interpolation. nil renders as the empty string.
func str(v any) string {
	if v == nil {
		return ""
	}
	return filter.ToString(v)
}

type builtin func(args []any) (any, error)

var builtins map[string]builtin

func init() {
	builtins = map[string]builtin{
		"lower":     unary("lower", func(v any) (any, error) { return strings.ToLower(str(v)), nil }),
		"upper":     unary("upper", func(v any) (any, error) { return strings.ToUpper(str(v)), nil }),
		"strip":     unary("strip", func(v any) (any, error) { return strings.TrimSpace(str(v)), nil }),
		"str":       unary("str", func(v any) (any, error) { return str(v), nil }),
		"bool":      unary("bool", toBool),
		"int":       unary("int", toInt),
		"float":     unary("float", toFloat),
		"len":       unary("len", length),
		"concat":    concat,
		"join":      join,
		"replace":   replace,
		"substring": substring,
	}
}

func unary(name string, fn func(any) (any, error)) builtin {
	return func(args []any) (any, error) {
		if len(args) != 1 {
			return nil, fmt.Errorf("%s() takes exactly one argument (%d given)", name, len(args))
		}
		return fn(args[0])
	}
}

func concat(args []any) (any, error) {
	var sb strings.Builder
	for _, a := range args {
		sb.WriteString(str(a))
	}
	return sb.String(), nil
}

func join(args []any) (any, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("join() requires a separator")
	}
	parts := make([]string, 0, len(args)-1)
	for _, a := range args[1:] {
		parts = append(parts, str(a))
	}
	return strings.Join(parts, str(args[0])), nil
}

func replace(args []any) (any, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("replace() takes exactly three arguments (%d given)", len(args))
	}
	if args[0] == nil {
		return "", nil
	}
	return strings.ReplaceAll(str(args[0]), str(args[1]), str(args[2])), nil
}

// substring slices by rune with negative indices counting from the end.
func substring(args []any) (any, error) {
	if len(args) < 2 || len(args) > 3 {
		return nil, fmt.Errorf("substring() takes two or three arguments (%d given)", len(args))
	}
	if args[0] == nil {
		return "", nil
	}

	runes := []rune(str(args[0]))
	n := int64(len(runes))

	start, ok := normalizeNumber(args[1]).(int64)
	if !ok {
		return nil, fmt.Errorf("substring() start must be an integer")
	}
	end := n
	if len(args) == 3 && args[2] != nil {
		if end, ok = normalizeNumber(args[2]).(int64); !ok {
			return nil, fmt.Errorf("substring() end must be an integer")
		}
	}

	start, end = clampIndex(start, n), clampIndex(end, n)
	if start >= end {
		return "", nil
	}
	return string(runes[start:end]), nil
}

func clampIndex(i, n int64) int64 {
	if i < 0 {
		i += n
	}
	return max(0, min(i, n))
}

func toBool(v any) (any, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		return x != "", nil
	}
	f, ok := filter.ToFloat(v)
	return ok && f != 0, nil
}

func toInt(v any) (any, error) {
	switch x := v.(type) {
	case int64:
		return x, nil
	case bool:
		if x {
			return int64(1), nil
		}
		return int64(0), nil
	case string:
		n, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid literal for int(): %q", x)
		}
		return n, nil
	}
	f, ok := filter.ToFloat(v)
	if !ok {
		return nil, fmt.Errorf("int() argument must be a string or a number, not %T", v)
	}
	return int64(math.Trunc(f)), nil
}

func toFloat(v any) (any, error) {
	if s, ok := v.(string); ok {
		f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return nil, fmt.Errorf("could not convert string to float: %q", s)
		}
		return f, nil
	}
	f, ok := filter.ToFloat(v)
	if !ok {
		return nil, fmt.Errorf("float() argument must be a string or a number, not %T", v)
	}
	return f, nil
}

func length(v any) (any, error) {
	switch x := v.(type) {
	case string:
		return int64(utf8.RuneCountInString(x)), nil
	case []any:
		return int64(len(x)), nil
	case map[string]any:
		return int64(len(x)), nil
	}
	return nil, fmt.Errorf("object of type %T has no len()", v)
}
