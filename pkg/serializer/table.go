package serializer

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
	"text/tabwriter"
	"unicode/utf8"
)

// Record is an ordered row. executor.Row implements it.
type Record interface {
	Keys() []string
	Get(key string) (any, bool)
}

type mapRecord map[string]any

func (m mapRecord) Keys() []string {
	return slices.Sorted(maps.Keys(m))
}

func (m mapRecord) Get(key string) (any, bool) {
	v, ok := m[key]
	return v, ok
}

// records reports whether data is a list of rows and returns them.
func records(data any) ([]Record, bool) {
	switch v := data.(type) {
	case []Record:
		return v, true
	case Record:
		return []Record{v}, true
	case []map[string]any:
		out := make([]Record, len(v))
		for i, m := range v {
			out[i] = mapRecord(m)
		}
		return out, true
	}

	rv := reflect.ValueOf(data)
	if !rv.IsValid() || rv.Kind() != reflect.Slice {
		return nil, false
	}
	out := make([]Record, 0, rv.Len())
	for i := range rv.Len() {
		switch r := rv.Index(i).Interface().(type) {
		case Record:
			out = append(out, r)
		case map[string]any:
			out = append(out, mapRecord(r))
		default:
			return nil, false
		}
	}
	return out, true
}

// columns unions the keys of rows in first-seen order. Keys starting with
// an underscore are metadata and left out.
func columns(rows []Record) []string {
	var cols []string
	seen := make(map[string]bool)
	for _, r := range rows {
		for _, k := range r.Keys() {
			if seen[k] || strings.HasPrefix(k, "_") {
				continue
			}
			seen[k] = true
			cols = append(cols, k)
		}
	}
	return cols
}

// cell renders one value for table and CSV output.
func cell(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case []any:
		parts := make([]string, len(t))
		for i, it := range t {
			parts[i] = cell(it)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(t, ", ")
	case map[string]any:
		b, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(b)
	default:
		return fmt.Sprint(t)
	}
}

func renderTable(data any) ([]byte, error) {
	rows, ok := records(data)
	if !ok {
		if data == nil {
			return []byte(noResults + "\n"), nil
		}
		return renderFlat(data)
	}
	if len(rows) == 0 {
		return []byte(noResults + "\n"), nil
	}

	cols := columns(rows)
	grid := make([][]string, len(rows))
	widths := make([]int, len(cols))
	for i, c := range cols {
		widths[i] = utf8.RuneCountInString(c)
	}
	for r, row := range rows {
		grid[r] = make([]string, len(cols))
		for i, c := range cols {
			v, _ := row.Get(c)
			s := cell(v)
			grid[r][i] = s
			for _, line := range strings.Split(s, "\n") {
				widths[i] = max(widths[i], utf8.RuneCountInString(line))
			}
		}
	}

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	writeLine(tw, cols)
	rule := make([]string, len(cols))
	for i, w := range widths {
		rule[i] = strings.Repeat("-", w)
	}
	writeLine(tw, rule)

	// Multi-line cells continue on the following lines of their column.
	for _, cells := range grid {
		split := make([][]string, len(cells))
		height := 1
		for i, s := range cells {
			split[i] = strings.Split(s, "\n")
			height = max(height, len(split[i]))
		}
		for l := range height {
			line := make([]string, len(cells))
			for i := range cells {
				if l < len(split[i]) {
					line[i] = split[i][l]
				}
			}
			writeLine(tw, line)
		}
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeLine(tw *tabwriter.Writer, cells []string) {
	fmt.Fprintln(tw, strings.TrimRight(strings.Join(cells, "\t"), " "))
}

func renderCSV(data any) ([]byte, error) {
	rows, ok := records(data)
	if !ok {
		return nil, fmt.Errorf("csv output needs a list of rows, got %T", data)
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if len(rows) > 0 {
		cols := columns(rows)
		if err := w.Write(cols); err != nil {
			return nil, err
		}
		for _, row := range rows {
			rec := make([]string, len(cols))
			for i, c := range cols {
				v, _ := row.Get(c)
				rec[i] = cell(v)
			}
			if err := w.Write(rec); err != nil {
				return nil, err
			}
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// renderFlat prints any value as FIELD/VALUE pairs with flattened paths
// such as "[0].name" or "clusters[1].address".
func renderFlat(data any) ([]byte, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}
	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return nil, err
	}

	flat := make(map[string]string)
	flatten("", generic, flat)

	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FIELD\tVALUE")
	for _, k := range slices.Sorted(maps.Keys(flat)) {
		fmt.Fprintf(tw, "%s\t%s\n", k, flat[k])
	}
	if err := tw.Flush(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func flatten(prefix string, v any, out map[string]string) {
	switch t := v.(type) {
	case map[string]any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = "{}"
		}
		for k, val := range t {
			key := k
			if prefix != "" {
				key = prefix + "." + k
			}
			flatten(key, val, out)
		}
	case []any:
		if len(t) == 0 && prefix != "" {
			out[prefix] = "[]"
		}
		for i, val := range t {
			flatten(fmt.Sprintf("%s[%d]", prefix, i), val, out)
		}
	default:
		key := prefix
		if key == "" {
			key = "value"
		}
		out[key] = cell(v)
	}
}
