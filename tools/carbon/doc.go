/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

// Package carbon exposes daily carbon emissions from the Carbon Monitor
// dataset as a query tool: filter by country list, exact date or date
// range, and sector, then aggregate to a single MtCO2 total.
package carbon
