/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package greenhouse_test

import (
	"context"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"climategpt.dev/climatetools/dataset"
	"climategpt.dev/climatetools/tools/greenhouse"
)

func testTable() *dataset.Table {
	return dataset.New([]dataset.Observation{
		{Category: "Germany", Region: "Europe", Gas: "CO2", Year: 2000, Value: 800},
		{Category: "Germany", Region: "Europe", Gas: "CH4", Year: 2000, Value: 100},
		{Category: "Germany", Region: "Europe", Gas: "CO2", Year: 2001, Value: 780},
		{Category: "France", Region: "Europe", Gas: "CO2", Year: 2000, Value: 400},
		{Category: "France", Region: "Europe", Gas: "CO2", Year: 2001, Value: 410},
		{Category: "India", Region: "Asia", Gas: "CO2", Year: 2000, Value: 900},
		{Category: "India", Region: "Asia", Gas: "CO2", Year: 2001, Value: 950},
	})
}

func run(args map[string]any) map[string]any {
	return greenhouse.New(testTable()).Run(context.Background(), args)
}

func results(t *testing.T, got map[string]any) []any {
	t.Helper()
	list, ok := got["results"].([]any)
	if !ok {
		t.Fatalf("results has type %T, want []any: %v", got["results"], got)
	}
	return list
}

func TestCountryEmissions(t *testing.T) {
	got := results(t, run(map[string]any{
		"action": "country_emissions", "country": "Germany", "year": float64(2000),
	}))
	if len(got) != 2 {
		t.Fatalf("got %d rows, want 2: %v", len(got), got)
	}
	row := got[0].(map[string]any)
	if row["Country"] != "Germany" || row["Year"] != 2000 {
		t.Errorf("unexpected row %v", row)
	}
}

func TestCountryEmissionsNoData(t *testing.T) {
	got := run(map[string]any{
		"action": "country_emissions", "country": "Germany", "year": float64(1980),
	})
	errMsg, ok := got["error"].(string)
	if !ok || !strings.Contains(errMsg, "No data available for Germany in 1980") {
		t.Errorf("got %v, want no-data error", got)
	}
}

func TestRegionAggregation(t *testing.T) {
	got := results(t, run(map[string]any{"action": "region_aggregation", "region": "Europe"}))
	want := []any{
		map[string]any{"Year": 2000, "Value": 1300.0},
		map[string]any{"Year": 2001, "Value": 1190.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("region_aggregation mismatch (-want +got):\n%s", diff)
	}
}

func TestRegionAggregationWithGasFilter(t *testing.T) {
	got := results(t, run(map[string]any{
		"action": "region_aggregation", "region": "Europe", "gas_type": "CH4",
	}))
	want := []any{map[string]any{"Year": 2000, "Value": 100.0}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("gas-filtered aggregation mismatch (-want +got):\n%s", diff)
	}
}

func TestCompareCountries(t *testing.T) {
	got := results(t, run(map[string]any{
		"action": "compare_countries", "country": "Germany", "country2": "France",
	}))
	want := []any{
		map[string]any{"Year": 2000, "Value_Germany": 900.0, "Value_France": 400.0},
		map[string]any{"Year": 2001, "Value_Germany": 780.0, "Value_France": 410.0},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("compare_countries mismatch (-want +got):\n%s", diff)
	}
}

func TestTopNCountriesByEmissions(t *testing.T) {
	got := results(t, run(map[string]any{
		"action": "top_n_countries_by_emissions", "year": float64(2000), "top_n": float64(2),
	}))
	want := []any{
		map[string]any{"Country": "India", "Value": 900.0},
		map[string]any{"Country": "Germany", "Value": 900.0},
	}
	// India and Germany tie at 900; order falls back to name. Germany first
	// alphabetically, so assert membership rather than order of the tie.
	if len(got) != 2 {
		t.Fatalf("got %d countries, want 2: %v", len(got), got)
	}
	names := map[any]bool{}
	for _, row := range got {
		names[row.(map[string]any)["Country"]] = true
	}
	for _, row := range want {
		name := row.(map[string]any)["Country"]
		if !names[name] {
			t.Errorf("missing %v in top 2: %v", name, got)
		}
	}
}

func TestPercentageChangeEmissions(t *testing.T) {
	got := run(map[string]any{
		"action": "percentage_change_emissions", "country": "India",
		"start_year": float64(2000), "end_year": float64(2001),
	})
	change, ok := got["percentage_change"].(float64)
	if !ok {
		t.Fatalf("percentage_change has type %T: %v", got["percentage_change"], got)
	}
	// 900 -> 950 is a 5.555...% increase.
	if math.Abs(change-50.0/9) > 1e-9 {
		t.Errorf("got change %f, want %f", change, 50.0/9)
	}
}

func TestPercentageChangeMissingYear(t *testing.T) {
	got := run(map[string]any{
		"action": "percentage_change_emissions", "country": "India",
		"start_year": float64(1990), "end_year": float64(2001),
	})
	if got["error"] == nil {
		t.Fatalf("expected error mapping, got %v", got)
	}
}

func TestHighestAndLowestEmissionsYear(t *testing.T) {
	highest := run(map[string]any{"action": "highest_emissions_year", "country": "Germany"})
	if highest["year"] != 2000 || highest["highest_emissions"] != 900.0 {
		t.Errorf("highest: got %v, want year 2000 at 900", highest)
	}

	lowest := run(map[string]any{"action": "lowest_emissions_year", "country": "Germany"})
	if lowest["year"] != 2001 || lowest["lowest_emissions"] != 780.0 {
		t.Errorf("lowest: got %v, want year 2001 at 780", lowest)
	}

	global := run(map[string]any{"action": "highest_emissions_year"})
	if global["year"] != 2000 {
		t.Errorf("global highest: got %v, want year 2000", global)
	}
}

func TestCumulativeEmissions(t *testing.T) {
	got := run(map[string]any{
		"action": "cumulative_emissions", "region": "Asia",
		"start_year": float64(2000), "end_year": float64(2001),
	})
	if got["cumulative_emissions"] != 1850.0 {
		t.Errorf("got %v, want 1850", got["cumulative_emissions"])
	}
}

func TestInvalidActionNamesAction(t *testing.T) {
	got := run(map[string]any{"action": "destroy_data"})
	errMsg, ok := got["error"].(string)
	if !ok {
		t.Fatalf("expected error mapping, got %v", got)
	}
	if !strings.Contains(errMsg, "Invalid action or missing parameters") {
		t.Errorf("got error %q, want invalid-action message", errMsg)
	}
	if !strings.Contains(errMsg, "destroy_data") {
		t.Errorf("error %q should name the action", errMsg)
	}
}
