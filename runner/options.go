/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"errors"
	"fmt"

	"climategpt.dev/climatetools/retry"
)

// Option is a functional option for configuring the runner.
type Option func(*Runner) error

// WithModel overrides the model name.
func WithModel(model string) Option {
	return func(r *Runner) error {
		if model == "" {
			return errors.New("model cannot be empty")
		}
		r.modelName = model
		return nil
	}
}

// WithSystemPrompt sets a system message sent ahead of the user prompt.
func WithSystemPrompt(prompt string) Option {
	return func(r *Runner) error {
		if prompt == "" {
			return errors.New("system prompt cannot be empty")
		}
		r.systemPrompt = prompt
		return nil
	}
}

// WithMaxTokens sets the maximum completion tokens per round.
func WithMaxTokens(tokens int64) Option {
	return func(r *Runner) error {
		if tokens <= 0 {
			return fmt.Errorf("max tokens must be positive, got %d", tokens)
		}
		r.maxTokens = tokens
		return nil
	}
}

// WithTemperature sets the sampling temperature.
// Lower values produce more deterministic outputs.
func WithTemperature(temp float64) Option {
	return func(r *Runner) error {
		if temp < 0.0 || temp > 2.0 {
			return fmt.Errorf("temperature must be between 0.0 and 2.0, got %f", temp)
		}
		r.temperature = temp
		return nil
	}
}

// WithMaxToolRounds bounds the number of tool-calling rounds before the
// conversation is abandoned.
func WithMaxToolRounds(rounds int) Option {
	return func(r *Runner) error {
		if rounds <= 0 {
			return fmt.Errorf("max tool rounds must be positive, got %d", rounds)
		}
		r.maxToolRounds = rounds
		return nil
	}
}

// WithRetryConfig sets the retry configuration for transient API errors.
// This is particularly useful for handling 429 rate limit responses.
// If not set, a default configuration is used.
func WithRetryConfig(cfg retry.Config) Option {
	return func(r *Runner) error {
		if err := cfg.Validate(); err != nil {
			return err
		}
		r.retryConfig = cfg
		return nil
	}
}
