/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package organicsoil analyzes CO2 and N2O emissions from drained organic
// soils by area and year. Actions cover trend analysis, summaries,
// cross-area comparisons, rankings, threshold alerts, missing-data
// detection, correlation and long-term forecasting.
package organicsoil
