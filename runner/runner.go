/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/chainguard-dev/clog"
	"github.com/openai/openai-go"

	"climategpt.dev/climatetools/metrics"
	"climategpt.dev/climatetools/retry"
	"climategpt.dev/climatetools/tools"
)

// Runner executes tool-calling conversations over an OpenAI-compatible
// chat completion API.
type Runner struct {
	client        openai.Client
	registry      *tools.Registry
	modelName     string
	systemPrompt  string
	maxTokens     int64
	temperature   float64
	maxToolRounds int
	chatMetrics   *metrics.Chat // token usage and tool call counters
	retryConfig   retry.Config  // retry configuration for transient API errors
}

// New creates a Runner with minimal required configuration.
func New(client openai.Client, registry *tools.Registry, opts ...Option) (*Runner, error) {
	if registry == nil {
		return nil, errors.New("registry cannot be nil")
	}

	// A unified meter across all runners, with model name as a dimension.
	chatMetrics := metrics.NewChat("climategpt.dev.climatetools")

	r := &Runner{
		client:        client,
		registry:      registry,
		modelName:     "llama-3.3-70b-versatile",
		maxTokens:     4096,
		temperature:   0.1, // low default for reproducible analyses
		maxToolRounds: 10,
		chatMetrics:   chatMetrics,
		retryConfig:   retry.DefaultConfig(),
	}

	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("failed to apply option: %w", err)
		}
	}

	return r, nil
}

// Run executes the conversation for the given prompt and returns the
// model's final text answer.
func (r *Runner) Run(ctx context.Context, prompt string) (string, error) {
	log := clog.FromContext(ctx)

	if prompt == "" {
		return "", errors.New("prompt cannot be empty")
	}

	log.With("prompt_length", len(prompt)).
		With("model", r.modelName).
		Info("Starting tool-calling conversation")

	var messages []openai.ChatCompletionMessageParamUnion
	if r.systemPrompt != "" {
		messages = append(messages, openai.SystemMessage(r.systemPrompt))
	}
	messages = append(messages, openai.UserMessage(prompt))

	params := openai.ChatCompletionNewParams{
		Model:               openai.ChatModel(r.modelName),
		Messages:            messages,
		Tools:               r.registry.OpenAITools(),
		MaxCompletionTokens: openai.Int(r.maxTokens),
		Temperature:         openai.Float(r.temperature),
	}

	for round := 0; ; round++ {
		completion, err := retry.Do(ctx, r.retryConfig, "chat_completion", isRetryableAPIError, func() (*openai.ChatCompletion, error) {
			return r.client.Chat.Completions.New(ctx, params)
		})
		if err != nil {
			return "", fmt.Errorf("chat completion failed: %w", err)
		}

		if completion.Usage.PromptTokens > 0 || completion.Usage.CompletionTokens > 0 {
			r.chatMetrics.RecordTokens(ctx, r.modelName,
				completion.Usage.PromptTokens, completion.Usage.CompletionTokens)
		}

		if len(completion.Choices) == 0 {
			return "", errors.New("no choices in completion response")
		}
		message := completion.Choices[0].Message

		if len(message.ToolCalls) == 0 {
			if message.Content == "" {
				return "", errors.New("no content in completion response")
			}
			log.With("rounds", round).Info("Conversation completed")
			return message.Content, nil
		}

		if round >= r.maxToolRounds {
			return "", fmt.Errorf("exceeded %d tool rounds without a final answer", r.maxToolRounds)
		}

		// Add the model's tool calls to the conversation, then every
		// tool result as its own tool message.
		params.Messages = append(params.Messages, message.ToParam())
		for _, toolCall := range message.ToolCalls {
			resultMsg, err := r.executeToolCall(ctx, toolCall)
			if err != nil {
				return "", err
			}
			params.Messages = append(params.Messages, resultMsg)
		}
	}
}

// executeToolCall dispatches a single tool call through the registry and
// wraps its result mapping as a tool message. Malformed arguments and
// unknown tools are reported back to the model as error mappings rather
// than aborting the conversation.
func (r *Runner) executeToolCall(ctx context.Context, toolCall openai.ChatCompletionMessageToolCall) (openai.ChatCompletionMessageParamUnion, error) {
	log := clog.FromContext(ctx)

	log.With("tool", toolCall.Function.Name).
		With("id", toolCall.ID).
		Info("Executing tool call")
	r.chatMetrics.RecordToolCall(ctx, r.modelName, toolCall.Function.Name)

	var args map[string]any
	if toolCall.Function.Arguments != "" {
		if err := json.Unmarshal([]byte(toolCall.Function.Arguments), &args); err != nil {
			log.With("tool", toolCall.Function.Name).
				With("error", err).
				Warn("Malformed tool call arguments")
			args = nil
		}
	}

	var result map[string]any
	if args == nil && toolCall.Function.Arguments != "" {
		result = map[string]any{
			"error": fmt.Sprintf("invalid arguments for tool %q", toolCall.Function.Name),
		}
	} else {
		result = r.registry.Dispatch(ctx, tools.Call{
			ID:   toolCall.ID,
			Name: toolCall.Function.Name,
			Args: args,
		})
	}

	resultBytes, err := json.Marshal(result)
	if err != nil {
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("failed to marshal tool result: %w", err)
	}
	return openai.ToolMessage(string(resultBytes), toolCall.ID), nil
}

// isRetryableAPIError reports whether an error is a transient API error
// worth retrying. Rate limits and server-side failures qualify.
func isRetryableAPIError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		switch apiErr.StatusCode {
		case 429, 500, 502, 503, 504:
			return true
		}
	}
	return false
}
