// Package defaults provides centralized configuration constants for
// vast-admin-mcp.
//
// This package defines timeout values, retry parameters, cache lifetimes and
// file locations used across the codebase. Centralizing these values keeps
// the transport, the command engine and the front ends consistent.
//
// # Categories
//
//   - Transport: page size, connect/read timeouts and the retry budget of
//     the REST caller
//   - Post-processing: the jq evaluation timeout
//   - Caches: lifetimes of cached configuration and cluster-name resolutions
//   - Server: HTTP server timeouts and rate limits
//   - Files: default locations of the cluster config and template documents
//
// # Usage
//
//	ctx, cancel := context.WithTimeout(ctx, defaults.JQTimeout)
//	defer cancel()
package defaults
