/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package weather retrieves current conditions for a city from the
// OpenWeather API and derives simple analyses from them: a readable
// conditions report, a comfort banding, and a dew-point fog risk
// estimate.
package weather
