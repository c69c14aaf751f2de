/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package tools

import (
	"context"
	"fmt"
	"sort"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"

	"climategpt.dev/climatetools/tools/params"
)

// Registry collects tools by name and dispatches calls to them. Tools are
// registered once at startup; Registry is not safe for concurrent
// registration, but dispatch is read-only and may be called from multiple
// goroutines.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry holding the given tools.
// Registering two tools with the same name is a programming error.
func NewRegistry(ts ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(ts))}
	for _, t := range ts {
		r.Register(t)
	}
	return r
}

// Register adds a tool to the registry.
func (r *Registry) Register(t Tool) {
	name := t.Definition().Name
	if _, ok := r.tools[name]; ok {
		panic(fmt.Sprintf("tool %q registered twice", name))
	}
	r.tools[name] = t
}

// Get returns the tool with the given name.
func (r *Registry) Get(name string) (Tool, bool) {
	t, ok := r.tools[name]
	return t, ok
}

// Names returns the registered tool names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Dispatch routes a call to the named tool and returns its result mapping.
// An unknown tool name yields an error mapping, not an error, so the
// response can be surfaced to the model like any other tool failure.
func (r *Registry) Dispatch(ctx context.Context, call Call) map[string]any {
	t, ok := r.tools[call.Name]
	if !ok {
		clog.FromContext(ctx).Warnf("call to unknown tool %q", call.Name)
		return params.Error("unknown tool: %s", call.Name)
	}
	return t.Run(ctx, call.Args)
}

// OpenAITools converts the registered tool definitions to the OpenAI
// function-calling format, in sorted name order.
func (r *Registry) OpenAITools() []openai.ChatCompletionToolParam {
	out := make([]openai.ChatCompletionToolParam, 0, len(r.tools))
	for _, name := range r.Names() {
		out = append(out, OpenAITool(r.tools[name].Definition()))
	}
	return out
}

// OpenAITool converts a single tool definition to the OpenAI function-calling
// format.
func OpenAITool(def Definition) openai.ChatCompletionToolParam {
	properties := make(map[string]any, len(def.Parameters))
	required := []string{}
	for _, p := range def.Parameters {
		prop := map[string]any{
			"type":        p.Type,
			"description": p.Description,
		}
		if len(p.Enum) > 0 {
			prop["enum"] = p.Enum
		}
		properties[p.Name] = prop
		if p.Required {
			required = append(required, p.Name)
		}
	}
	return openai.ChatCompletionToolParam{
		Function: openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters: openai.FunctionParameters{
				"type":       "object",
				"properties": properties,
				"required":   required,
			},
		},
	}
}
