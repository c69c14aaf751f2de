/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package dataset holds the read-only observation tables the analysis
// tools query, the loaders that build them from the climate spreadsheets,
// and the normalizer that makes tool results JSON-safe.
//
// A Table is loaded once at startup and injected into each tool; it is
// never mutated afterwards, so concurrent readers need no locking. If the
// source file changes the process must be restarted to pick it up.
package dataset
