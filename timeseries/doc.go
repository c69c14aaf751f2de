/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package timeseries provides the small statistical toolbox shared by the
// climate analysis tools: z-scores, least-squares trends, correlation,
// rolling ranges, additive seasonal decomposition, and a short-horizon
// ARIMA(1,1,1) forecaster.
//
// All functions operate on plain float64 slices extracted from a
// dataset.Table. Functions that need a minimum number of observations
// return an error instead of producing a degenerate result; callers at the
// tool boundary convert these errors into structured error mappings.
package timeseries
