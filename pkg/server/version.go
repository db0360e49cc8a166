package server

import (
	"mime"
	"net/http"
	"slices"
	"strings"
)

const (
	// DefaultAPIVersion is served when the client does not ask for one.
	DefaultAPIVersion = "v1"

	// vendorPrefix and vendorSuffix bracket the version in a vendor media
	// type such as application/vnd.vast.admin.v1+json.
	vendorPrefix = "application/vnd.vast.admin."
	vendorSuffix = "+json"

	// HeaderAPIVersion reports the negotiated version.
	HeaderAPIVersion = "X-API-Version"
)

var supportedAPIVersions = []string{"v1"}

// negotiateAPIVersion picks the first supported version named by a vendor
// media type in Accept, or DefaultAPIVersion.
func negotiateAPIVersion(r *http.Request) string {
	for _, part := range strings.Split(r.Header.Get("Accept"), ",") {
		mt, _, err := mime.ParseMediaType(strings.TrimSpace(part))
		if err != nil {
			continue
		}
		if !strings.HasPrefix(mt, vendorPrefix) || !strings.HasSuffix(mt, vendorSuffix) {
			continue
		}
		v := strings.TrimSuffix(strings.TrimPrefix(mt, vendorPrefix), vendorSuffix)
		if isValidAPIVersion(v) {
			return v
		}
	}
	return DefaultAPIVersion
}

func isValidAPIVersion(v string) bool {
	return slices.Contains(supportedAPIVersions, v)
}
