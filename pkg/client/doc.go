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

// Package client is the access layer between list commands and a cluster's
// REST API.
//
// # Layers
//
// A Caller performs one request and returns the decoded JSON body.
// RESTCaller is the production implementation: basic authentication, a
// tenant header for tenant-scoped logins, a 5s connect and 10s read
// timeout, and a single retry for transport failures and 5xx responses.
//
// API wraps a Caller with the endpoint whitelist and pagination:
//
//	api := client.New(caller, client.Whitelist{"views": {"get"}})
//	rows, err := api.Call(ctx, "views", "get", map[string]any{"path": "/a"}, "")
//
// GET requests fetch pages of 1000 rows until the reported total is reached
// or a page comes back empty. Endpoints such as monitors.ad_hoc_query are
// called exactly once.
//
// # Whitelist
//
// The whitelist is fail-closed: an endpoint that is not listed is denied
// for every verb. A dotted sub-endpoint inherits its parent's verbs.
//
// # Cluster Resolution
//
// Resolver accepts a configured address or name. Other names are resolved
// by asking clusters with a similar address or name for their own names;
// answers are cached for five minutes. A Session memoizes connections per
// address for one fan-out pass.
package client
