/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
)

// Call is a provider-independent representation of a tool call.
type Call struct {
	ID   string
	Name string
	Args map[string]any
}

// Definition describes a tool's schema (name, description, parameters).
type Definition struct {
	Name        string
	Description string
	Parameters  []Parameter
}

// Parameter describes a single tool parameter.
type Parameter struct {
	Name        string
	Type        string // "string", "integer", "boolean", "number"
	Description string
	Required    bool
	Enum        []string
}

// Tool is a named analysis surface: Run dispatches the "action" argument
// onto one handler and returns a JSON-safe result mapping. A failed call
// returns {"error": ...} rather than an error value, so the result can be
// handed back to the model verbatim.
type Tool interface {
	Definition() Definition
	Run(ctx context.Context, args map[string]any) map[string]any
}

// ActionParam is the dispatch parameter every climate tool shares.
func ActionParam(description string) Parameter {
	return Parameter{
		Name:        "action",
		Type:        "string",
		Description: description,
		Required:    true,
	}
}
