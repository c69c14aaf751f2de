/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package runner drives tool-calling conversations against an
// OpenAI-compatible chat completion endpoint. It sends the user prompt
// together with the registry's tool schemas, dispatches every tool call
// the model makes, feeds the results back, and loops until the model
// produces a final text answer.
package runner
