/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package sealevel analyzes mean sea level change measurements grouped by
// ocean region. The single tool dispatches an action string onto one of
// twenty-two analyses covering anomalies, trends, seasonality, forecasting
// and cross-region comparisons.
package sealevel
