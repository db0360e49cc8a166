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

// Package mcp exposes list commands as Model Context Protocol tools over a
// newline-delimited JSON-RPC 2.0 stream, normally the process's stdin and
// stdout.
//
// Every command and merged command of the template set becomes a tool named
// list_<command>_vast whose input schema is generated from the command's
// arguments, plus order, top and cluster. Three built-in tools are added:
//
//	list_clusters_vast   configured clusters (never passwords)
//	list_fields_vast     output fields of a command with type and unit
//	describe_tool_vast   argument formats, examples and return shape
//
// Tool results are the JSON encoding of the rows. Command failures are
// reported as tool results with isError set; protocol problems are JSON-RPC
// errors. Each request is logged with a generated request_id.
//
// Usage:
//
//	srv := mcp.NewServer("vast-admin-mcp", version, runner, set, os.Stdin, os.Stdout)
//	err := srv.Run(ctx)
package mcp
