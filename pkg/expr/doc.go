/*
Copyright © 2025 VAST Data Ltd.
SPDX-License-Identifier: Apache-2.0
*/

// Package expr evaluates the small expression language used by computed
// fields. An expression is a literal, a field name, a helper call or an
// f-string whose {holes} hold nested expressions:
//
//	f"async/{lower(role)}"
//	concat(name, "-", substring(guid, 0, 8))
//	join("/", tenant, path)
//
// Available helpers are lower, upper, strip, concat, join, replace,
// substring, str, int, float, bool and len. Names resolve against the row
// being transformed; an unknown name or helper is an evaluation error.
package expr
