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

// Package api serves the list commands over HTTP.
//
// Routes, registered on a pkg/server Server:
//
//	GET  /v1/commands          metadata for every command and merged command
//	GET  /v1/commands/{name}   arguments and fields of one command
//	POST /v1/commands/{name}   run a command across clusters
//	GET  /v1/clusters          configured clusters; ?name= selects a subset
//
// A run takes an optional JSON object of arguments, the same keys the CLI
// flags and MCP tools accept:
//
//	curl -s -X POST localhost:8080/v1/commands/views \
//	  -d '{"cluster": "prod1", "logical_used": ">1TB", "order": "logical_used:desc", "top": 5}'
//
// and answers {"command", "count", "rows"}. Responses are JSON unless the
// Accept header prefers application/yaml. Errors are server.ErrorResponse
// documents; unknown commands are 404, invalid arguments 400, endpoints
// outside the whitelist 403 and runs exceeding the command timeout 504.
package api
