// Package config loads the cluster configuration consumed by the API access
// layer.
//
// The configuration lists the clusters vast-admin-mcp may talk to:
//
//	{
//	  "clusters": [
//	    {"cluster": "10.0.0.1", "cluster_name": "prod", "username": "admin",
//	     "password": "...", "tenant": "default", "user_type": "SUPER_ADMIN",
//	     "vast_version": "5.3.1"}
//	  ]
//	}
//
// The document may be JSON, YAML or TOML, chosen by file extension, or read
// from the config.json key of a Kubernetes ConfigMap addressed as
// cm://namespace/name. Passwords may be supplied through the environment as
// VAST_ADMIN_MCP_PASSWORD_<CLUSTER_NAME>.
package config

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
	"k8s.io/utils/ptr"

	"github.com/vast-data/vast-admin-mcp/pkg/defaults"
	vaerrors "github.com/vast-data/vast-admin-mcp/pkg/errors"
)

// User types.
const (
	UserTypeSuperAdmin  = "SUPER_ADMIN"
	UserTypeTenantAdmin = "TENANT_ADMIN"
)

// Document formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatTOML = "toml"
)

// Cluster is one configured cluster.
type Cluster struct {
	Address     string `json:"cluster" yaml:"cluster" toml:"cluster"`
	Name        string `json:"cluster_name,omitempty" yaml:"cluster_name,omitempty" toml:"cluster_name"`
	Username    string `json:"username" yaml:"username" toml:"username"`
	Password    string `json:"password,omitempty" yaml:"password,omitempty" toml:"password"`
	Tenant      string `json:"tenant,omitempty" yaml:"tenant,omitempty" toml:"tenant"`
	UserType    string `json:"user_type,omitempty" yaml:"user_type,omitempty" toml:"user_type"`
	VastVersion string `json:"vast_version,omitempty" yaml:"vast_version,omitempty" toml:"vast_version"`

	// InsecureSkipVerify defaults to true; clusters commonly serve
	// self-signed certificates.
	InsecureSkipVerify *bool `json:"insecure_skip_verify,omitempty" yaml:"insecure_skip_verify,omitempty" toml:"insecure_skip_verify"`
}

// DisplayName returns the cluster name, falling back to its address.
func (c Cluster) DisplayName() string {
	if c.Name != "" {
		return c.Name
	}
	return c.Address
}

// SkipVerify reports whether TLS verification is disabled.
func (c Cluster) SkipVerify() bool {
	return ptr.Deref(c.InsecureSkipVerify, true)
}

// IsSuperAdmin reports whether the credentials are cluster-wide.
func (c Cluster) IsSuperAdmin() bool {
	return strings.EqualFold(c.UserType, UserTypeSuperAdmin)
}

// IsLegacy reports whether the cluster runs a version older than 5.3.
// Unknown or unparsable versions are treated as current.
func (c Cluster) IsLegacy() bool {
	major, minor, ok := parseVersion(c.VastVersion)
	if !ok {
		return false
	}
	return major < 5 || (major == 5 && minor < 3)
}

// SessionTenant returns the tenant to log in with, or "" for clusters whose
// credentials are not tenant scoped.
func (c Cluster) SessionTenant() string {
	if c.IsLegacy() || c.IsSuperAdmin() {
		return ""
	}
	return c.Tenant
}

func parseVersion(v string) (major, minor int, ok bool) {
	v = strings.TrimPrefix(strings.TrimSpace(v), "v")
	if v == "" {
		return 0, 0, false
	}
	v, _, _ = strings.Cut(v, "-")
	parts := strings.Split(v, ".")
	if len(parts) < 2 {
		return 0, 0, false
	}
	major, err := strconv.Atoi(parts[0])
	if err != nil {
		return 0, 0, false
	}
	minor, err = strconv.Atoi(parts[1])
	if err != nil {
		return 0, 0, false
	}
	return major, minor, true
}

// Config is the parsed cluster configuration.
type Config struct {
	Clusters []Cluster `json:"clusters" yaml:"clusters" toml:"clusters"`
}

// Lookup finds a cluster by address or configured name.
func (c *Config) Lookup(id string) (Cluster, bool) {
	for _, cl := range c.Clusters {
		if cl.Address == id || (cl.Name != "" && cl.Name == id) {
			return cl, true
		}
	}
	return Cluster{}, false
}

// ByAddress finds a cluster by address only.
func (c *Config) ByAddress(addr string) (Cluster, bool) {
	for _, cl := range c.Clusters {
		if cl.Address == addr {
			return cl, true
		}
	}
	return Cluster{}, false
}

// Addresses returns every configured address in order.
func (c *Config) Addresses() []string {
	out := make([]string, 0, len(c.Clusters))
	for _, cl := range c.Clusters {
		out = append(out, cl.Address)
	}
	return out
}

// Validate checks that every cluster has an address and a username.
func (c *Config) Validate() error {
	if len(c.Clusters) == 0 {
		return vaerrors.New(vaerrors.ErrCodeConfig, "no clusters configured. Please run setup first")
	}
	for i, cl := range c.Clusters {
		if strings.TrimSpace(cl.Address) == "" {
			return vaerrors.Newf(vaerrors.ErrCodeConfig, "clusters[%d]: missing cluster address", i)
		}
		if strings.TrimSpace(cl.Username) == "" {
			return vaerrors.Newf(vaerrors.ErrCodeConfig, "clusters[%d] (%s): missing username", i, cl.Address)
		}
	}
	return nil
}

// FormatFromPath picks a document format from a file extension. Unknown
// extensions are read as JSON.
func FormatFromPath(path string) string {
	lower := strings.ToLower(path)
	switch {
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return FormatYAML
	case strings.HasSuffix(lower, ".toml"):
		return FormatTOML
	default:
		return FormatJSON
	}
}

// Parse decodes a configuration document, applies environment overrides and
// validates the result.
func Parse(data []byte, format string) (*Config, error) {
	var cfg Config
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &cfg)
	case FormatTOML:
		_, err = toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
	case FormatJSON, "":
		err = json.Unmarshal(data, &cfg)
	default:
		return nil, vaerrors.Newf(vaerrors.ErrCodeConfig, "unsupported config format %q", format)
	}
	if err != nil {
		return nil, vaerrors.Wrap(vaerrors.ErrCodeConfig, "failed to parse config", err)
	}

	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// applyEnv fills passwords from VAST_ADMIN_MCP_PASSWORD_<NAME> variables.
func applyEnv(cfg *Config) {
	for i := range cfg.Clusters {
		cl := &cfg.Clusters[i]
		if v, ok := os.LookupEnv(PasswordEnvVar(cl.DisplayName())); ok {
			cl.Password = v
		}
	}
}

// PasswordEnvVar returns the variable that overrides a cluster's password:
// the name upper-cased with every other character replaced by "_".
func PasswordEnvVar(name string) string {
	var b strings.Builder
	b.WriteString(defaults.EnvPasswordPrefix)
	for _, r := range strings.ToUpper(name) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

// Marshal encodes cfg in the given format.
func Marshal(cfg *Config, format string) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(cfg)
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatJSON, "":
		return json.MarshalIndent(cfg, "", "  ")
	}
	return nil, fmt.Errorf("unsupported config format %q", format)
}
