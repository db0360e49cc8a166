package defaults

import (
	"os"
	"path/filepath"
	"time"
)

// Transport.
const (
	// PageSize is the number of rows requested per page from paginating
	// endpoints.
	PageSize = 1000

	ConnectTimeout = 5 * time.Second
	ReadTimeout    = 10 * time.Second

	// MaxRetries is the number of retries after a failed upstream call.
	MaxRetries = 1

	// RetryDelay is the constant pause between attempts.
	RetryDelay = 200 * time.Millisecond
)

// NonPaginatedEndpoints are called once, without page parameters.
var NonPaginatedEndpoints = []string{"monitors.ad_hoc_query"}

// JQTimeout bounds a single jq post-processing evaluation.
const JQTimeout = 5 * time.Second

// Caches.
const (
	ConfigCacheTTL      = 30 * time.Second
	ClusterNameCacheTTL = 5 * time.Minute
)

// Server.
const (
	ServerPort            = 8080
	ServerRateLimit       = 100
	ServerRateLimitBurst  = 200
	ServerReadTimeout     = 10 * time.Second
	ServerWriteTimeout    = 30 * time.Second
	ServerIdleTimeout     = 120 * time.Second
	ServerShutdownTimeout = 30 * time.Second

	// CommandTimeout bounds one command invocation served over HTTP.
	CommandTimeout = 2 * time.Minute
)

// Environment variables.
const (
	EnvConfigFile          = "VAST_ADMIN_MCP_CONFIG"
	EnvDefaultTemplateFile = "VAST_ADMIN_MCP_DEFAULT_TEMPLATE_FILE"
	EnvTemplateModsFile    = "VAST_ADMIN_MCP_TEMPLATE_MODIFICATIONS_FILE"
	EnvPasswordPrefix      = "VAST_ADMIN_MCP_PASSWORD_"
	EnvFanoutParallelism   = "VAST_ADMIN_MCP_PARALLELISM"
	configDirName          = ".vast-admin-mcp"
	configFileName         = "config.json"
	templateModsFileName   = "mcp_list_template_modifications.yaml"
)

// ConfigDir returns ~/.vast-admin-mcp.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, configDirName)
}

// ConfigFile returns the cluster config path, honoring VAST_ADMIN_MCP_CONFIG.
func ConfigFile() string {
	if p := os.Getenv(EnvConfigFile); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), configFileName)
}

// TemplateModificationsFile returns the override template path, honoring
// VAST_ADMIN_MCP_TEMPLATE_MODIFICATIONS_FILE.
func TemplateModificationsFile() string {
	if p := os.Getenv(EnvTemplateModsFile); p != "" {
		return p
	}
	return filepath.Join(ConfigDir(), templateModsFileName)
}

// DefaultTemplateFile returns the base template path from
// VAST_ADMIN_MCP_DEFAULT_TEMPLATE_FILE, or "" for the embedded document.
func DefaultTemplateFile() string {
	return os.Getenv(EnvDefaultTemplateFile)
}
