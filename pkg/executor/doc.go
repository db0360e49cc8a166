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
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package executor runs one list command against one cluster.
//
// A command is a template: a list of upstream endpoints and a list of output
// fields. Execute drives every invocation through the same stages:
//
//	Validate → MapArgs → FetchRaw → FilterRaw → Join → PerRowFetch →
//	Order → Transform → FilterComputed → Materialize
//
// # Filtering
//
// A filter argument is sent upstream as a suffixed parameter where possible
// (name__icontains, size__gte) and is always applied again locally, first on
// the raw rows of the endpoint that holds the attribute and, for computed or
// joined fields, on the transformed rows.
//
// # Joins
//
// Dotted field sources (quotas.used) left-join the named endpoint on the
// field's join_on key. act_on selects the first, the last or all matches;
// values from all matches are converted one by one and joined with newlines.
//
// # Rows
//
// Row keeps the command's field order for JSON, YAML and table output and
// carries each field's unconverted value for ordering across clusters.
//
// Usage:
//
//	e := executor.New(set, api, executor.WithCluster("prod"))
//	rows, err := e.Execute(ctx, "views", map[string]any{"name": "*data*", "order": "-logical_used"})
package executor
