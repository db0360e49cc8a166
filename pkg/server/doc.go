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

// Package server hosts HTTP handlers behind a shared middleware chain.
//
// Every registered handler runs inside request-id assignment, debug
// logging, panic recovery, a global token-bucket rate limiter, API version
// negotiation and Prometheus instrumentation. The server also exposes:
//
//	GET /         name, version, readiness and registered routes
//	GET /health   liveness
//	GET /ready    readiness; 503 until Run is listening and during shutdown
//	GET /metrics  Prometheus metrics
//
// Errors are written as ErrorResponse documents. Structured errors from
// pkg/errors map to HTTP status codes via HTTPStatusFromCode:
//
//	server.WriteErrorFromErr(w, r, err, "command failed", nil)
//
// Run listens until its context is cancelled or SIGINT/SIGTERM arrives and
// then drains in-flight requests within Config.ShutdownTimeout. When started
// by systemd with Type=notify the service manager is told READY=1 and
// STOPPING=1 at the matching points.
//
// Configuration defaults come from pkg/defaults. PORT overrides the listen
// port and LOG_LEVEL the logging level.
package server
