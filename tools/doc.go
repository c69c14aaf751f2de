/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package tools defines the provider-independent tool abstraction the
// climate analysis tools implement: a Definition describing the tool's
// name, purpose and parameters, a Run entry point dispatching an action
// string plus sparse optional parameters onto one analysis handler, and a
// Registry that collects tools and converts their definitions to the
// OpenAI function-calling format.
//
// Every handler returns a JSON-safe map. Failures are structured error
// mappings of the form {"error": "..."} produced by the params package;
// handlers never panic or return errors across the tool boundary.
package tools
