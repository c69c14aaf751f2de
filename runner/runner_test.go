/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"climategpt.dev/climatetools/retry"
	"climategpt.dev/climatetools/tools"
)

type echoTool struct {
	lastArgs map[string]any
}

func (t *echoTool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "echo_tool",
		Description: "Echoes its arguments.",
		Parameters: []tools.Parameter{
			tools.ActionParam("The operation to perform."),
		},
	}
}

func (t *echoTool) Run(_ context.Context, args map[string]any) map[string]any {
	t.lastArgs = args
	return map[string]any{"echoed": args["action"]}
}

const toolCallResponse = `{
	"id": "chatcmpl-1",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{
		"index": 0,
		"finish_reason": "tool_calls",
		"message": {
			"role": "assistant",
			"content": "",
			"tool_calls": [{
				"id": "call_1",
				"type": "function",
				"function": {"name": "echo_tool", "arguments": "{\"action\": \"detect_anomalies\"}"}
			}]
		}
	}],
	"usage": {"prompt_tokens": 25, "completion_tokens": 12, "total_tokens": 37}
}`

const finalResponse = `{
	"id": "chatcmpl-2",
	"object": "chat.completion",
	"model": "test-model",
	"choices": [{
		"index": 0,
		"finish_reason": "stop",
		"message": {"role": "assistant", "content": "No anomalies were detected."}
	}],
	"usage": {"prompt_tokens": 40, "completion_tokens": 8, "total_tokens": 48}
}`

// chatRequest captures the parts of the wire request the tests assert on.
type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role       string `json:"role"`
		Content    any    `json:"content"`
		ToolCallID string `json:"tool_call_id"`
	} `json:"messages"`
	Tools []struct {
		Function struct {
			Name string `json:"name"`
		} `json:"function"`
	} `json:"tools"`
}

func newRunner(t *testing.T, handler http.HandlerFunc, reg *tools.Registry, opts ...Option) *Runner {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	client := openai.NewClient(
		option.WithAPIKey("test-key"),
		option.WithBaseURL(srv.URL),
		option.WithMaxRetries(0),
	)
	opts = append([]Option{WithModel("test-model")}, opts...)
	r, err := New(client, reg, opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return r
}

func TestRunDispatchesToolCalls(t *testing.T) {
	tool := &echoTool{}
	reg := tools.NewRegistry(tool)

	var requests []chatRequest
	handler := func(w http.ResponseWriter, req *http.Request) {
		var cr chatRequest
		if err := json.NewDecoder(req.Body).Decode(&cr); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		requests = append(requests, cr)

		w.Header().Set("Content-Type", "application/json")
		if len(requests) == 1 {
			w.Write([]byte(toolCallResponse))
		} else {
			w.Write([]byte(finalResponse))
		}
	}

	r := newRunner(t, handler, reg)
	got, err := r.Run(context.Background(), "Are there anomalies in the Atlantic?")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "No anomalies were detected."; got != want {
		t.Errorf("Run() = %q, want %q", got, want)
	}

	if len(requests) != 2 {
		t.Fatalf("got %d requests, want 2", len(requests))
	}

	// The tool schema travels with every request.
	if len(requests[0].Tools) != 1 || requests[0].Tools[0].Function.Name != "echo_tool" {
		t.Errorf("first request tools = %+v, want echo_tool", requests[0].Tools)
	}

	// The tool saw the arguments the model sent.
	wantArgs := map[string]any{"action": "detect_anomalies"}
	if diff := cmp.Diff(wantArgs, tool.lastArgs); diff != "" {
		t.Errorf("tool args mismatch (-want +got):\n%s", diff)
	}

	// The second request carries the assistant turn and the tool result.
	second := requests[1]
	last := second.Messages[len(second.Messages)-1]
	if last.Role != "tool" || last.ToolCallID != "call_1" {
		t.Errorf("last message = %+v, want tool result for call_1", last)
	}
	if content, ok := last.Content.(string); !ok || content != `{"echoed":"detect_anomalies"}` {
		t.Errorf("tool result content = %v, want echoed args", last.Content)
	}
}

func TestRunTextOnlyAnswer(t *testing.T) {
	reg := tools.NewRegistry(&echoTool{})
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(finalResponse))
	}

	r := newRunner(t, handler, reg)
	got, err := r.Run(context.Background(), "Say hello")
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if want := "No anomalies were detected."; got != want {
		t.Errorf("Run() = %q, want %q", got, want)
	}
}

func TestRunRetriesRateLimit(t *testing.T) {
	reg := tools.NewRegistry(&echoTool{})

	calls := 0
	handler := func(w http.ResponseWriter, _ *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, `{"error": {"message": "rate limited"}}`, http.StatusTooManyRequests)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(finalResponse))
	}

	r := newRunner(t, handler, reg, WithRetryConfig(retry.Config{
		MaxRetries:  2,
		BaseBackoff: time.Millisecond,
		MaxBackoff:  5 * time.Millisecond,
		MaxJitter:   time.Millisecond,
	}))
	if _, err := r.Run(context.Background(), "hello"); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if calls != 2 {
		t.Errorf("got %d API calls, want 2", calls)
	}
}

func TestRunToolRoundLimit(t *testing.T) {
	reg := tools.NewRegistry(&echoTool{})
	handler := func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(toolCallResponse))
	}

	r := newRunner(t, handler, reg, WithMaxToolRounds(2))
	if _, err := r.Run(context.Background(), "loop forever"); err == nil {
		t.Error("Run() expected error once tool rounds are exhausted")
	}
}

func TestRunEmptyPrompt(t *testing.T) {
	reg := tools.NewRegistry(&echoTool{})
	r := newRunner(t, func(http.ResponseWriter, *http.Request) {}, reg)
	if _, err := r.Run(context.Background(), ""); err == nil {
		t.Error("Run() expected error for empty prompt")
	}
}

func TestNewOptionValidation(t *testing.T) {
	client := openai.NewClient(option.WithAPIKey("test-key"))
	reg := tools.NewRegistry(&echoTool{})

	tests := []struct {
		name string
		opt  Option
	}{
		{"zero max tokens", WithMaxTokens(0)},
		{"negative temperature", WithTemperature(-0.5)},
		{"empty model", WithModel("")},
		{"zero tool rounds", WithMaxToolRounds(0)},
		{"bad retry config", WithRetryConfig(retry.Config{MaxRetries: -1})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(client, reg, tt.opt); err == nil {
				t.Error("New() expected option validation error")
			}
		})
	}
}

func TestStructured(t *testing.T) {
	type answer struct {
		Trend string  `json:"trend"`
		Slope float64 `json:"slope"`
	}

	structuredResponse := `{
		"id": "chatcmpl-3",
		"object": "chat.completion",
		"model": "test-model",
		"choices": [{
			"index": 0,
			"finish_reason": "stop",
			"message": {"role": "assistant", "content": "` +
		"```json\\n{\\\"trend\\\": \\\"Increase\\\", \\\"slope\\\": 1.5}\\n```" + `"}
		}],
		"usage": {"prompt_tokens": 30, "completion_tokens": 15, "total_tokens": 45}
	}`

	var sawSchema bool
	handler := func(w http.ResponseWriter, req *http.Request) {
		var cr chatRequest
		if err := json.NewDecoder(req.Body).Decode(&cr); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		if len(cr.Messages) > 0 {
			if content, ok := cr.Messages[0].Content.(string); ok {
				// The reflected schema names the answer fields.
				sawSchema = strings.Contains(content, `"trend"`) &&
					strings.Contains(content, `"slope"`)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(structuredResponse))
	}

	r := newRunner(t, handler, tools.NewRegistry(&echoTool{}))
	got, err := Structured[answer](context.Background(), r, "What is the trend?")
	if err != nil {
		t.Fatalf("Structured() error = %v", err)
	}
	want := answer{Trend: "Increase", Slope: 1.5}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Structured() mismatch (-want +got):\n%s", diff)
	}
	if !sawSchema {
		t.Error("prompt did not embed the answer schema")
	}
}
