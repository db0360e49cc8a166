package client

import (
	"fmt"
	"slices"
	"strings"

	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

// Whitelist maps endpoint names to permitted lower-case verbs. A nil or
// empty whitelist denies everything.
type Whitelist map[string][]string

// Check returns an ACCESS_DENIED error unless method is permitted on
// endpoint. A dotted sub-endpoint such as monitors.12.query inherits the
// entry of its first segment when it has none of its own.
func (w Whitelist) Check(endpoint, method string) error {
	method = strings.ToLower(method)

	allowed, ok := w[endpoint]
	if !ok {
		if parent, _, dotted := strings.Cut(endpoint, "."); dotted {
			allowed, ok = w[parent]
		}
	}
	if !ok {
		accessDeniedTotal.WithLabelValues("endpoint").Inc()
		return vaerrors.WrapWithContext(vaerrors.ErrCodeAccessDenied,
			fmt.Sprintf("Access denied: API endpoint '%s' is not whitelisted. "+
				"Please contact your administrator to add it to the api_whitelist section in the YAML configuration file.", endpoint),
			nil, map[string]any{"endpoint": endpoint})
	}

	if !slices.Contains(allowed, method) {
		accessDeniedTotal.WithLabelValues("method").Inc()
		return vaerrors.WrapWithContext(vaerrors.ErrCodeAccessDenied,
			fmt.Sprintf("Access denied: HTTP method '%s' is not allowed for endpoint '%s'. Allowed methods: [%s]",
				strings.ToUpper(method), endpoint, strings.Join(allowed, ", ")),
			nil, map[string]any{"endpoint": endpoint, "method": method})
	}
	return nil
}
