// Copyright (c) 2025, VAST Data Ltd.  All rights reserved.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package cli implements the vast-admin-mcp command-line interface.
//
// # Overview
//
// The list commands are not compiled in: they are generated at start-up
// from the template documents, one subcommand per command and merged
// command. The documents are the embedded default (or --default-template)
// with the modifications document (--template, default
// ~/.vast-admin-mcp/mcp_list_template_modifications.yaml) merged on top.
//
// # Commands
//
// list - Run a list command across clusters:
//
//	vast-admin-mcp list views --cluster prod1,prod2 --name 'db*' --order logical_used:desc --top 5
//	vast-admin-mcp list quotas --hard_limit '>1TB' --format json --output quotas.json
//	vast-admin-mcp list views --arg tenant_id=3
//
// Every template argument becomes a string flag carrying the filter
// grammar. --cluster, --order, --top and --instance are present on every
// list command.
//
// clusters - List configured clusters:
//
//	vast-admin-mcp clusters [name|address ...]
//
// fields - List the output fields of a command:
//
//	vast-admin-mcp fields views
//
// templates - Inspect the template documents:
//
//	vast-admin-mcp templates validate [--all]
//	vast-admin-mcp templates show views
//	vast-admin-mcp templates commands
//
// config - Print the cluster config with passwords redacted:
//
//	vast-admin-mcp --config clusters.yaml config show --format toml
//
// serve - Serve the list commands over HTTP (see package api):
//
//	vast-admin-mcp serve --port 8080
//
// mcp - Serve the list commands as MCP tools over stdio (see package mcp):
//
//	vast-admin-mcp mcp
//
// # Global Flags
//
//	--config, -c        cluster config (.json, .yaml, .toml, cm://namespace/name)
//	--template          template modifications document
//	--default-template  default template document (default: embedded)
//	--log-level         debug, info, warn or error (default: info)
//	--parallelism       clusters queried at once (default: 1)
//	--kubeconfig        kubeconfig for cm:// cluster configs
//
// Each flag also reads its environment variable: VAST_ADMIN_MCP_CONFIG,
// VAST_ADMIN_MCP_TEMPLATE_MODIFICATIONS_FILE,
// VAST_ADMIN_MCP_DEFAULT_TEMPLATE_FILE, LOG_LEVEL and
// VAST_ADMIN_MCP_PARALLELISM.
//
// # Output
//
// Output-producing commands take --format (table, json, yaml, csv) and
// --output (file path, default stdout).
//
// # Exit Codes
//
//	0  success
//	1  failure
//	2  unknown command or invalid argument
package cli
