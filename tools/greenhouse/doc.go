/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package greenhouse analyzes country-level greenhouse gas emissions
// broken down by world region, substance and year. Actions cover per
// country lookups, regional aggregation, trends, comparisons, rankings
// and cumulative totals.
package greenhouse
