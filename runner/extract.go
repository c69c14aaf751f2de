/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package runner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"climategpt.dev/climatetools/schema"
)

// ExtractJSON extracts JSON content from model text that may wrap it in
// markdown code blocks. It looks for content between ```json and ```
// markers, or returns the input trimmed if no markers are found.
func ExtractJSON(responseText string) string {
	// Search for the first ```json on its own line and collect content
	// until the closing ```.
	lines := strings.Split(responseText, "\n")
	var jsonBuffer bytes.Buffer
	inJSONBlock := false
	foundJSON := false

	for _, line := range lines {
		if !inJSONBlock && line == "```json" {
			inJSONBlock = true
			foundJSON = true
			continue
		}

		if inJSONBlock && line == "```" {
			break
		}

		if inJSONBlock {
			if jsonBuffer.Len() > 0 {
				jsonBuffer.WriteString("\n")
			}
			jsonBuffer.WriteString(line)
		}
	}

	if foundJSON {
		// A ```json block that turned out empty is left for the caller
		// to reject during unmarshaling.
		return strings.TrimSpace(jsonBuffer.String())
	}

	responseText = strings.TrimSpace(responseText)

	if strings.HasPrefix(responseText, "```json") && strings.HasSuffix(responseText, "```") {
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	} else {
		// These do nothing if the markers aren't there, so always do it.
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)
	}

	return responseText
}

// Extract extracts JSON content from model text and unmarshals it into
// the provided type.
func Extract[T any](responseText string) (T, error) {
	var result T
	if err := json.Unmarshal([]byte(ExtractJSON(responseText)), &result); err != nil {
		return result, err
	}
	return result, nil
}

// Structured runs the conversation and parses the final answer into T.
// The JSON schema of T is appended to the prompt so the model knows the
// expected shape.
func Structured[T any](ctx context.Context, r *Runner, prompt string) (T, error) {
	var result T

	answerSchema, err := json.Marshal(schema.ReflectType[T]())
	if err != nil {
		return result, fmt.Errorf("failed to marshal answer schema: %w", err)
	}

	structured := fmt.Sprintf(
		"%s\n\nRespond with a single JSON object matching this schema, inside a ```json code block:\n%s",
		prompt, answerSchema)

	text, err := r.Run(ctx, structured)
	if err != nil {
		return result, err
	}

	parsed, err := Extract[T](text)
	if err != nil {
		return result, fmt.Errorf("failed to parse structured answer: %w", err)
	}
	return parsed, nil
}
