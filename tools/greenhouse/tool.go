/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package greenhouse

import (
	"context"
	"sort"

	"github.com/chainguard-dev/clog"

	"climategpt.dev/climatetools/dataset"
	"climategpt.dev/climatetools/tools"
	"climategpt.dev/climatetools/tools/params"
)

// defaultTopN is how many countries top_n_countries_by_emissions returns
// when the caller does not ask for a specific count.
const defaultTopN = 10

// Tool analyzes greenhouse gas emissions by country, region, substance
// and year.
type Tool struct {
	data *dataset.Table
}

// New builds the tool over a loaded greenhouse gas table. Rows carry the
// country as category, the world region, the substance as gas, a year and
// the emission value.
func New(data *dataset.Table) *Tool {
	return &Tool{data: data}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "greenhouse_gas_emissions_tool",
		Description: "Perform analysis on greenhouse gas emissions data.",
		Parameters: []tools.Parameter{
			tools.ActionParam("Type of analysis to perform: 'country_emissions', 'region_aggregation', etc."),
			{Name: "country", Type: "string", Description: "Country name for analysis (if applicable)."},
			{Name: "country2", Type: "string", Description: "Second country name, for comparisons."},
			{Name: "region", Type: "string", Description: "Region name for analysis (if applicable)."},
			{Name: "year", Type: "integer", Description: "Year for filtering data (if applicable)."},
			{Name: "gas_type", Type: "string", Description: "Filter by specific gas type (if applicable)."},
			{Name: "start_year", Type: "integer", Description: "Start of a year range (if applicable)."},
			{Name: "end_year", Type: "integer", Description: "End of a year range (if applicable)."},
			{Name: "top_n", Type: "integer", Description: "Number of top countries to return (default 10)."},
		},
	}
}

// Run implements tools.Tool.
func (t *Tool) Run(ctx context.Context, args map[string]any) map[string]any {
	action, err := params.Extract[string](args, "action")
	if err != nil {
		return params.Invalid()
	}
	country, err := params.ExtractOptional(args, "country", "")
	if err != nil {
		return params.Error("%s", err)
	}
	country2, err := params.ExtractOptional(args, "country2", "")
	if err != nil {
		return params.Error("%s", err)
	}
	region, err := params.ExtractOptional(args, "region", "")
	if err != nil {
		return params.Error("%s", err)
	}
	year, err := params.ExtractOptional(args, "year", 0)
	if err != nil {
		return params.Error("%s", err)
	}
	gasType, err := params.ExtractOptional(args, "gas_type", "")
	if err != nil {
		return params.Error("%s", err)
	}
	startYear, err := params.ExtractOptional(args, "start_year", 0)
	if err != nil {
		return params.Error("%s", err)
	}
	endYear, err := params.ExtractOptional(args, "end_year", 0)
	if err != nil {
		return params.Error("%s", err)
	}
	topN, err := params.ExtractOptional(args, "top_n", defaultTopN)
	if err != nil {
		return params.Error("%s", err)
	}

	clog.FromContext(ctx).With("action", action, "country", country, "region", region).Debug("greenhouse gas analysis")

	var result any
	switch {
	case action == "country_emissions" && country != "" && year != 0:
		result = t.countryEmissions(country, year)
	case action == "region_aggregation" && region != "":
		result = t.regionAggregation(region, gasType)
	case action == "emissions_trend" && country != "":
		result = t.emissionsTrend(country)
	case action == "compare_countries" && country != "" && country2 != "":
		result = t.compareCountries(country, country2)
	case action == "total_global_emissions":
		result = t.totalGlobalEmissions()
	case action == "total_emissions_by_gas" && gasType != "":
		result = t.totalEmissionsByGas(gasType)
	case action == "emissions_by_region":
		result = t.emissionsByRegion()
	case action == "top_n_countries_by_emissions" && year != 0:
		result = t.topNCountriesByEmissions(year, topN, gasType)
	case action == "percentage_change_emissions" && startYear != 0 && endYear != 0:
		result = t.percentageChangeEmissions(country, region, startYear, endYear)
	case action == "highest_emissions_year":
		result = t.extremeEmissionsYear(country, region, true)
	case action == "lowest_emissions_year":
		result = t.extremeEmissionsYear(country, region, false)
	case action == "cumulative_emissions" && startYear != 0 && endYear != 0:
		result = t.cumulativeEmissions(country, region, startYear, endYear)
	default:
		result = params.Error("Invalid action or missing parameters for action: %s", action)
	}
	return wrap(dataset.Normalize(result))
}

// wrap lifts list results into a mapping so every response has the same
// top-level shape.
func wrap(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return map[string]any{"results": v}
}

// scope narrows the table to a country if given, else a region if given,
// else the whole table.
func (t *Tool) scope(country, region string) *dataset.Table {
	switch {
	case country != "":
		return t.data.Filter(dataset.CategoryIs(country))
	case region != "":
		return t.data.Filter(dataset.RegionIs(region))
	}
	return t.data
}

// sumByYear totals values per year, ascending.
func sumByYear(data *dataset.Table) (years []int, totals map[int]float64) {
	totals = make(map[int]float64)
	for _, o := range data.Rows() {
		if _, ok := totals[o.Year]; !ok {
			years = append(years, o.Year)
		}
		totals[o.Year] += o.Value
	}
	sort.Ints(years)
	return years, totals
}

func yearRecords(data *dataset.Table) []map[string]any {
	years, totals := sumByYear(data)
	out := make([]map[string]any, 0, len(years))
	for _, y := range years {
		out = append(out, map[string]any{"Year": y, "Value": totals[y]})
	}
	return out
}

// countryEmissions lists the raw rows for one country and year.
func (t *Tool) countryEmissions(country string, year int) any {
	data := t.data.Filter(dataset.And(dataset.CategoryIs(country), dataset.YearIs(year)))
	if data.Empty() {
		return params.Error("No data available for %s in %d", country, year)
	}
	out := make([]map[string]any, 0, data.Len())
	for _, o := range data.Rows() {
		out = append(out, map[string]any{"Country": o.Category, "Year": o.Year, "Value": o.Value})
	}
	return out
}

// regionAggregation totals a region's emissions per year, optionally
// restricted to one substance.
func (t *Tool) regionAggregation(region, gasType string) any {
	data := t.data.Filter(dataset.RegionIs(region))
	if gasType != "" {
		data = data.Filter(dataset.GasIs(gasType))
	}
	return yearRecords(data)
}

// emissionsTrend totals one country's emissions per year.
func (t *Tool) emissionsTrend(country string) any {
	return yearRecords(t.data.Filter(dataset.CategoryIs(country)))
}

// compareCountries reports both countries' yearly totals side by side for
// the years both have data.
func (t *Tool) compareCountries(country1, country2 string) any {
	years1, totals1 := sumByYear(t.data.Filter(dataset.CategoryIs(country1)))
	_, totals2 := sumByYear(t.data.Filter(dataset.CategoryIs(country2)))
	out := []map[string]any{}
	for _, y := range years1 {
		v2, ok := totals2[y]
		if !ok {
			continue
		}
		out = append(out, map[string]any{
			"Year":              y,
			"Value_" + country1: totals1[y],
			"Value_" + country2: v2,
		})
	}
	return out
}

// totalGlobalEmissions totals all emissions per year.
func (t *Tool) totalGlobalEmissions() any {
	return yearRecords(t.data)
}

// totalEmissionsByGas totals one substance's emissions per year.
func (t *Tool) totalEmissionsByGas(gasType string) any {
	return yearRecords(t.data.Filter(dataset.GasIs(gasType)))
}

// emissionsByRegion totals emissions per region and year.
func (t *Tool) emissionsByRegion() any {
	type key struct {
		region string
		year   int
	}
	totals := make(map[key]float64)
	var keys []key
	for _, o := range t.data.Rows() {
		k := key{o.Region, o.Year}
		if _, ok := totals[k]; !ok {
			keys = append(keys, k)
		}
		totals[k] += o.Value
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].region != keys[j].region {
			return keys[i].region < keys[j].region
		}
		return keys[i].year < keys[j].year
	})
	out := make([]map[string]any, 0, len(keys))
	for _, k := range keys {
		out = append(out, map[string]any{"World_Region": k.region, "Year": k.year, "Value": totals[k]})
	}
	return out
}

// topNCountriesByEmissions ranks countries by total emissions in one year.
func (t *Tool) topNCountriesByEmissions(year, n int, gasType string) any {
	data := t.data.Filter(dataset.YearIs(year))
	if gasType != "" {
		data = data.Filter(dataset.GasIs(gasType))
	}
	totals := make(map[string]float64)
	for _, o := range data.Rows() {
		totals[o.Category] += o.Value
	}
	countries := make([]string, 0, len(totals))
	for c := range totals {
		countries = append(countries, c)
	}
	sort.Slice(countries, func(i, j int) bool {
		if totals[countries[i]] != totals[countries[j]] {
			return totals[countries[i]] > totals[countries[j]]
		}
		return countries[i] < countries[j]
	})
	if len(countries) > n {
		countries = countries[:n]
	}
	out := make([]map[string]any, 0, len(countries))
	for _, c := range countries {
		out = append(out, map[string]any{"Country": c, "Value": totals[c]})
	}
	return out
}

// percentageChangeEmissions computes the relative change in yearly totals
// between two years for a country, a region, or globally.
func (t *Tool) percentageChangeEmissions(country, region string, startYear, endYear int) any {
	_, totals := sumByYear(t.scope(country, region))
	start, okStart := totals[startYear]
	end, okEnd := totals[endYear]
	if !okStart || !okEnd || start == 0 {
		return params.Error("Data not available for the specified years")
	}
	return map[string]any{
		"start_year":        startYear,
		"end_year":          endYear,
		"percentage_change": (end - start) / start * 100,
	}
}

// extremeEmissionsYear finds the year with the highest or lowest total
// emissions for a country, a region, or globally.
func (t *Tool) extremeEmissionsYear(country, region string, highest bool) any {
	years, totals := sumByYear(t.scope(country, region))
	if len(years) == 0 {
		return params.Error("No emissions data available for the requested scope")
	}
	best := years[0]
	for _, y := range years[1:] {
		if highest == (totals[y] > totals[best]) && totals[y] != totals[best] {
			best = y
		}
	}
	if highest {
		return map[string]any{"year": best, "highest_emissions": totals[best]}
	}
	return map[string]any{"year": best, "lowest_emissions": totals[best]}
}

// cumulativeEmissions sums emissions over an inclusive year range for a
// country, a region, or globally.
func (t *Tool) cumulativeEmissions(country, region string, startYear, endYear int) any {
	data := t.scope(country, region).Filter(dataset.YearBetween(startYear, endYear))
	total := 0.0
	for _, v := range data.Values() {
		total += v
	}
	return map[string]any{
		"start_year":           startYear,
		"end_year":             endYear,
		"cumulative_emissions": total,
	}
}
