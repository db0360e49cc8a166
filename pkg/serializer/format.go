package serializer

import (
	"slices"
	"strings"
)

// Format is an output format.
type Format string

const (
	FormatTable Format = "table"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatCSV   Format = "csv"
)

// SupportedFormats lists the formats in help-text order.
func SupportedFormats() []string {
	return []string{string(FormatTable), string(FormatJSON), string(FormatYAML), string(FormatCSV)}
}

// IsUnknown reports whether f is not a supported format.
func (f Format) IsUnknown() bool {
	return !slices.Contains(SupportedFormats(), string(f))
}

// ParseFormat normalizes a user-supplied format name. "yml" is accepted for
// YAML. The result may be unknown; see IsUnknown.
func ParseFormat(s string) Format {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if f == "yml" {
		return FormatYAML
	}
	return f
}
