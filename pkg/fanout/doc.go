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

// Package fanout runs list commands across one or more clusters.
//
// A Runner resolves the cluster and clusters arguments (or every configured
// cluster when neither is given), runs the command on each target through an
// executor and concatenates the rows in target order. The combined rows are
// then ordered on their raw values and cut to the requested top.
//
// Failure handling:
//   - A cluster that cannot be resolved is skipped with a warning. If none
//     resolves, the call fails with INVALID_ARGUMENT.
//   - A cluster whose run fails softly is skipped with a warning.
//   - Hard errors (access denied, bad arguments, configuration problems)
//     abort the whole pass.
//
// Clusters run one at a time unless WithParallelism raises the limit; the
// vast-admin-mcp binaries read it from VAST_ADMIN_MCP_PARALLELISM. Output
// order does not depend on the limit.
//
// Merged commands run each source command with the arguments it knows and
// align every row on the union of the sources' visible fields.
//
// Usage:
//
//	resolver := client.NewResolver(loader, cache, client.DialREST())
//	runner := fanout.New(set, resolver, fanout.WithParallelism(4))
//	rows, err := runner.Execute(ctx, "views", map[string]any{"cluster": "prod"})
package fanout
