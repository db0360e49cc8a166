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

// Package filter implements the filter and order literal grammar used by list
// commands.
//
// # Filter Literals
//
// A filter literal is parsed against the declared argument type:
//
//	string:   *        non-empty
//	          *x*      contains (case-insensitive)
//	          !*x*     does not contain
//	          x*       starts with
//	          *x       ends with
//	          x        equals (case-insensitive)
//	integer:  >n  >=n  <n  <=n  n
//	capacity: same operators, operand <number><unit>, unit B, K/KB, M/MB,
//	          G/GB, T/TB, P/PB, each step x1024
//	boolean:  true false 1 0
//
// Parse returns a Predicate that carries the upstream query suffix
// (__icontains, __gte, ...) so the value can be pushed down to the API, and
// Predicate.Matches re-applies the same literal locally against a row value.
// The local check is authoritative: rows are always re-filtered after the
// upstream returns them.
//
// List-typed fields hold comma-joined values and match when any item equals
// the operand (an optional "in:" prefix is accepted), matches a wildcard, or
// contains it as a substring.
//
// # Order Literals
//
// An order literal is a comma-separated list of "field:direction",
// "field direction" or "-field" tokens. Directions accept any prefix of
// "ascending" or "descending" plus the "dec" synonym. Tokens with an
// unrecognized direction are dropped. SortRows applies the keys as a stable
// sort from the last key to the first, so the first key is primary.
package filter
