package template

import (
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Reserved description placeholders, expanded after variable substitution.
const (
	placeholderArguments = "{{$arguments}}"
	placeholderFields    = "{{$fields}}"
)

var titleCaser = cases.Title(language.Und)

// Description returns the description of a command or merged command with
// the {{$arguments}} and {{$fields}} placeholders expanded. The first line
// holding {{$arguments}} is replaced by the argument listing, indented like
// that line. Every {{$fields}} is expanded.
func (s *Set) Description(name string) string {
	var (
		desc   string
		args   []ArgumentInfo
		fields []fieldLine
	)
	if m, ok := s.merged[name]; ok {
		desc = m.Description
		args = s.MergedArguments(name)
		for _, f := range s.mergedFieldConfigs(name) {
			fields = append(fields, fieldLine{name: strings.ReplaceAll(f.Name, " ", "_"), field: f})
		}
	} else if cmd, ok := s.commands[name]; ok {
		desc = cmd.Description
		args = s.Arguments(name)
		for i := range cmd.Fields {
			fields = append(fields, fieldLine{name: cmd.Fields[i].Name, field: &cmd.Fields[i]})
		}
	} else {
		return ""
	}

	if strings.Contains(desc, placeholderArguments) {
		lines := strings.Split(desc, "\n")
		for i, line := range lines {
			if strings.Contains(line, placeholderArguments) {
				lines[i] = formatArguments(args, leadingSpaces(line))
				break
			}
		}
		desc = strings.Join(lines, "\n")
	}

	for strings.Contains(desc, placeholderFields) {
		lines := strings.Split(desc, "\n")
		for i, line := range lines {
			if !strings.Contains(line, placeholderFields) {
				continue
			}
			listing := formatFields(fields, leadingSpaces(line))
			if strings.TrimSpace(line) == placeholderFields {
				lines[i] = listing
			} else {
				lines[i] = strings.Replace(line, placeholderFields, listing, 1)
			}
			break
		}
		next := strings.Join(lines, "\n")
		if next == desc {
			break
		}
		desc = next
	}
	return desc
}

type fieldLine struct {
	name  string
	field *Field
}

func leadingSpaces(line string) int {
	return len(line) - len(strings.TrimLeft(line, " "))
}

func formatArguments(args []ArgumentInfo, indent int) string {
	pad := strings.Repeat(" ", indent)
	if len(args) == 0 {
		return pad + "No arguments available."
	}

	lines := make([]string, 0, len(args))
	for _, a := range args {
		req := "optional"
		if a.Mandatory {
			req = "required"
		}
		line := fmt.Sprintf("%s%s (%s) (%s): %s", pad, a.Name, a.Type, req, a.Description)
		if a.Regex != "" {
			line += " [Regex validation: " + a.Regex + "]"
		}
		if len(a.Aliases) > 0 {
			line += " [Aliases: " + strings.Join(a.Aliases, ", ") + "]"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatFields(fields []fieldLine, indent int) string {
	pad := strings.Repeat(" ", indent)
	if len(fields) == 0 {
		return pad + "No fields available."
	}

	var lines []string
	for _, fl := range fields {
		if fl.field.Hide {
			continue
		}
		lines = append(lines, fmt.Sprintf("%s%s (%s): %s", pad, fl.name, inferFieldType(fl.field), fieldDescription(fl.field)))
	}
	return strings.Join(lines, "\n")
}

// inferFieldType guesses a display type from conversions and the name.
func inferFieldType(f *Field) string {
	if f.Convert != "" {
		return "capacity"
	}
	if f.JQ != "" {
		if strings.Contains(f.JQ, "join") {
			return "string (from list)"
		}
		return "transformed"
	}

	name := strings.ToLower(f.Name)
	switch {
	case containsAny(name, "capacity", "size", "limit", "used", "quota"):
		return "capacity"
	case containsAny(name, "time", "date", "created", "updated"):
		return "datetime"
	case strings.Contains(name, "protocol"):
		return "string (protocol list)"
	}
	return "string"
}

var jqJoinSeparator = regexp.MustCompile(`join\s*\([\\]?["']([^"'\\]+)[\\]?["']\s*\)`)

func fieldDescription(f *Field) string {
	var parts []string

	switch f.Convert {
	case "":
	case ConvertAuto:
		parts = append(parts, "human-readable capacity (auto-selected unit)")
	case ConvertTimeDelta:
		parts = append(parts, "relative time delta (e.g., '3d 1h 45m 38s ago' or 'in 2h 30m 15s')")
	default:
		parts = append(parts, "capacity in "+f.Convert)
	}

	if strings.Contains(f.JQ, "join") {
		if m := jqJoinSeparator.FindStringSubmatch(f.JQ); m != nil {
			parts = append(parts, fmt.Sprintf("comma-separated list joined with '%s'", m[1]))
		} else {
			parts = append(parts, "comma-separated list")
		}
	}
	if f.JoinOn != nil {
		parts = append(parts, "from joined data")
	}
	if strings.HasPrefix(f.Source, "$(") {
		parts = append(parts, "cluster name")
	}

	if len(parts) == 0 {
		parts = append(parts, describeByName(f.Name))
	}
	return strings.Join(parts, ". ")
}

// describeByName picks a description from well-known name fragments. More
// specific fragments are checked first.
func describeByName(name string) string {
	n := strings.ToLower(name)
	switch {
	case strings.Contains(n, "cluster"):
		return "name of the VAST cluster"
	case strings.Contains(n, "tenant"):
		return "tenant name"
	case strings.Contains(n, "policy"):
		if strings.Contains(n, "qos") {
			return "QoS policy name"
		}
		return "view policy name"
	case strings.Contains(n, "bucket"):
		return "S3 bucket name"
	case strings.Contains(n, "share"):
		return "SMB share name"
	case strings.Contains(n, "protocol"):
		return "supported protocols (NFS, S3, SMB, etc.)"
	case strings.Contains(n, "logical") && strings.Contains(n, "used"):
		return "logical capacity used by the view"
	case strings.Contains(n, "physical") && strings.Contains(n, "used"):
		return "physical capacity used by the view"
	case strings.Contains(n, "quota"):
		return "hard quota limit for the view"
	case strings.Contains(n, "qos"):
		return "QoS policy name"
	case strings.Contains(n, "path"):
		return "view path"
	case strings.Contains(n, "view"):
		return "view information"
	case strings.Contains(n, "name") && len(strings.Fields(n)) == 1:
		return "view name"
	}
	human := strings.NewReplacer("_", " ", "-", " ").Replace(name)
	return human + " value"
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// humanize turns "logical_used" into "Logical Used".
func humanize(name string) string {
	words := strings.Fields(strings.NewReplacer("_", " ", "-", " ").Replace(name))
	for i, w := range words {
		words[i] = titleCaser.String(w)
	}
	return strings.Join(words, " ")
}

// Filter syntax cheatsheets by argument type.
var cheatsheets = map[string]string{
	"str":      "Supports: * (non-empty), *value* (contains), !*value* (not contains), value* (starts with), *value (ends with), value (equals)",
	"int":      "Supports: >value (greater than), >=value (greater or equal), <value (less than), <=value (less or equal), value (equals)",
	"capacity": "Supports: >1TB, >=500GB, <1M, <=100KB, 1TB (equals). Units: B, KB, MB, GB, TB, PB",
	"bool":     "Supports: true/false, True/False, TRUE/FALSE, 1/0",
}

// argumentDescription generates the description of an argument that has
// none in the document.
func argumentDescription(command string, f *Field, a ArgumentInfo) string {
	human := humanize(f.Name)
	argType := a.Type
	if argType == "int" && a.Filter && (f.Convert != "" || containsAny(strings.ToLower(f.Name), "capacity", "size", "limit", "used", "quota")) {
		argType = "capacity"
	}

	var parts []string
	finish := func() string { return strings.Join(parts, ". ") + "." }

	if f.Name == "cluster" || f.Name == "clusters" {
		if a.List {
			parts = append(parts, "Comma-separated list of cluster names")
		} else {
			parts = append(parts, "Cluster name or address")
		}
		if !a.Mandatory {
			parts = append(parts, "Queries all clusters from configuration if not specified")
		}
		return finish()
	}

	if argType == "list" && a.Filter {
		parts = append(parts,
			"Filter by checking if value exists in comma-separated list",
			"Supports: exact match (e.g., 'user1'), 'in:value' syntax (e.g., 'in:user1'), wildcards (e.g., '*admin*'), or substring match (e.g., 'admin' matches 'admin1', 'admin2', etc.)",
			"All matching is case-insensitive")
		return finish()
	}

	switch {
	case a.Filter:
		plural := command
		if !strings.HasSuffix(plural, "s") {
			plural += "s"
		}
		parts = append(parts, fmt.Sprintf("Filter %s by %s", plural, strings.ToLower(human)))
		if sheet, ok := cheatsheets[argType]; ok {
			parts = append(parts, sheet)
		}
	case a.List && argType == "list":
		parts = append(parts, "Comma-separated list of "+strings.ToLower(human))
	default:
		parts = append(parts, human)
	}

	if !a.Mandatory {
		switch {
		case a.Filter:
			switch f.Name {
			case "tenant", "path", "bucket", "share":
				parts = append(parts, fmt.Sprintf("Returns all %ss if not specified", f.Name))
			default:
				parts = append(parts, "Returns all if not specified")
			}
		case a.List:
			parts = append(parts, "Uses default from configuration if not specified")
		default:
			parts = append(parts, "Optional")
		}
	}
	return finish()
}
