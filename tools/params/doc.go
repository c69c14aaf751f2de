/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package params provides shared parameter extraction and error formatting
// utilities used by the climate analysis tools.
//
// Tool arguments arrive as map[string]any decoded from model-produced JSON,
// so every numeric value is a float64 and list values may be either JSON
// arrays or comma-separated strings. The helpers here hide those decoding
// quirks and keep the error-mapping contract in one place.
package params
