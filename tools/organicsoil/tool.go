/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package organicsoil

import (
	"context"
	"sort"
	"strconv"

	"github.com/chainguard-dev/clog"

	"climategpt.dev/climatetools/dataset"
	"climategpt.dev/climatetools/timeseries"
	"climategpt.dev/climatetools/tools"
	"climategpt.dev/climatetools/tools/params"
)

// The two emission elements this dataset tracks.
const (
	ElementCO2 = "Emissions (CO2)"
	ElementN2O = "Emissions (N2O)"
)

// Tool analyzes emissions from drained organic soils. Area lookups are
// case-insensitive to match how models tend to spell country names.
type Tool struct {
	data *dataset.Table
}

// New builds the tool over a loaded organic soils table. Rows carry the
// area as category, the element as gas, plus item, source, unit, year
// and value.
func New(data *dataset.Table) *Tool {
	return &Tool{data: data}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Definition{
		Name: "organic_soil_emissions_tool",
		Description: "Analyze CO2 and N2O emissions from organic soils for specified areas, year ranges, and criteria. " +
			"The tool provides functionality for calculating trends, comparing emissions, listing top emitters, " +
			"setting alerts, identifying missing data, and forecasting future emissions.",
		Parameters: []tools.Parameter{
			tools.ActionParam("Specifies the action to perform. Supported actions: 'calculate_trends', " +
				"'get_summary_data', 'compare_emissions', 'compare_emissions_with_conditions', " +
				"'list_highest_emissions', 'set_emission_alert', 'find_missing_data', 'long_term_forecast', " +
				"'analyze_correlation', 'average_annual_emissions', 'cumulative_emissions'."),
			{Name: "area", Type: "string", Description: "Name of the country/area to analyze emissions."},
			{Name: "areas", Type: "string", Description: "Comma-separated list of areas, for comparisons."},
			{Name: "element", Type: "string", Description: "Type of emission element, such as 'Emissions (CO2)' or 'Emissions (N2O)'.", Enum: []string{ElementCO2, ElementN2O}},
			{Name: "item", Type: "string", Description: "Item type filter, e.g. 'Cropland organic soils'."},
			{Name: "source", Type: "string", Description: "Data source filter, e.g. 'FAO TIER 1'."},
			{Name: "unit", Type: "string", Description: "Unit of measurement filter, e.g. 'kt'."},
			{Name: "start_year", Type: "integer", Description: "Starting year for the analysis."},
			{Name: "end_year", Type: "integer", Description: "Ending year for the analysis."},
			{Name: "threshold", Type: "number", Description: "Emission threshold for alerts."},
			{Name: "projection_years", Type: "integer", Description: "Number of years to forecast."},
		},
	}
}

// Run implements tools.Tool.
func (t *Tool) Run(ctx context.Context, args map[string]any) map[string]any {
	action, err := params.Extract[string](args, "action")
	if err != nil {
		return params.Invalid()
	}
	area, err := params.ExtractOptional(args, "area", "")
	if err != nil {
		return params.Error("%s", err)
	}
	element, err := params.ExtractOptional(args, "element", "")
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

	clog.FromContext(ctx).With("action", action, "area", area).Debug("organic soil analysis")

	var result map[string]any
	switch {
	case action == "calculate_trends" && area != "" && startYear != 0 && endYear != 0:
		result = t.calculateTrends(area, startYear, endYear)
	case action == "get_summary_data":
		result = t.getSummaryData(area, startYear, endYear)
	case action == "compare_emissions" && startYear != 0 && endYear != 0:
		result = t.withAreas(args, func(areas []string) map[string]any {
			return t.compareEmissions(areas, startYear, endYear)
		})
	case action == "compare_emissions_with_conditions" && startYear != 0 && endYear != 0:
		result = t.withAreas(args, func(areas []string) map[string]any {
			return t.compareEmissionsWithConditions(args, areas, element, startYear, endYear)
		})
	case action == "list_highest_emissions" && element != "" && startYear != 0 && endYear != 0:
		result = t.listHighestEmissions(element, startYear, endYear)
	case action == "set_emission_alert" && area != "" && element != "":
		threshold, err := params.Extract[float64](args, "threshold")
		if err != nil {
			return params.Error("%s", err)
		}
		result = t.setEmissionAlert(area, element, threshold)
	case action == "find_missing_data" && area != "" && element != "":
		result = t.findMissingData(area, element)
	case action == "long_term_forecast" && area != "" && element != "":
		projectionYears, err := params.Extract[int](args, "projection_years")
		if err != nil {
			return params.Error("%s", err)
		}
		result = t.longTermForecast(area, element, projectionYears)
	case action == "analyze_correlation" && area != "" && startYear != 0 && endYear != 0:
		result = t.analyzeCorrelation(area, startYear, endYear)
	case action == "average_annual_emissions" && area != "" && element != "" && startYear != 0 && endYear != 0:
		result = t.averageAnnualEmissions(area, element, startYear, endYear)
	case action == "cumulative_emissions" && area != "" && element != "" && startYear != 0 && endYear != 0:
		result = t.cumulativeEmissions(area, element, startYear, endYear)
	default:
		result = params.Invalid()
	}
	return dataset.Normalize(result).(map[string]any)
}

// withAreas extracts the areas list and hands it to the comparison.
func (t *Tool) withAreas(args map[string]any, f func([]string) map[string]any) map[string]any {
	areas, err := params.ExtractStringList(args, "areas")
	if err != nil {
		return params.Error("%s", err)
	}
	return f(areas)
}

// areaYears returns the case-folded area's rows inside the year range.
func (t *Tool) areaYears(area string, startYear, endYear int) *dataset.Table {
	return t.data.Filter(dataset.And(
		dataset.CategoryFold(area),
		dataset.YearBetween(startYear, endYear),
	))
}

// yearlySums totals values per year, ascending.
func yearlySums(data *dataset.Table) (years []int, totals map[int]float64) {
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

// calculateTrends classifies each element's emissions over the period as
// increasing, decreasing or stable by comparing the first and last years.
func (t *Tool) calculateTrends(area string, startYear, endYear int) map[string]any {
	filtered := t.areaYears(area, startYear, endYear)
	if filtered.Empty() {
		return params.Error("No data found for %s between %d and %d", area, startYear, endYear)
	}
	trends := map[string]any{}
	for _, element := range []string{ElementCO2, ElementN2O} {
		years, totals := yearlySums(filtered.Filter(dataset.GasIs(element)))
		if len(years) == 0 {
			continue
		}
		first, last := totals[years[0]], totals[years[len(years)-1]]
		trend := "Stable"
		switch {
		case last > first:
			trend = "Increase"
		case last < first:
			trend = "Decrease"
		}
		yearly := map[string]any{}
		for _, y := range years {
			yearly[strconv.Itoa(y)] = totals[y]
		}
		trends[element] = map[string]any{"yearly_emissions": yearly, "trend": trend}
	}
	return map[string]any{"trends": trends}
}

// getSummaryData totals emissions per element, optionally narrowed to one
// area and year range.
func (t *Tool) getSummaryData(area string, startYear, endYear int) map[string]any {
	data := t.data
	if area != "" {
		data = data.Filter(dataset.CategoryFold(area))
	}
	if startYear != 0 && endYear != 0 {
		data = data.Filter(dataset.YearBetween(startYear, endYear))
	}
	summary := map[string]any{}
	for element, values := range data.GroupValues(func(o dataset.Observation) string { return o.Gas }) {
		total := 0.0
		for _, v := range values {
			total += v
		}
		summary[element] = total
	}
	return map[string]any{"summary": summary}
}

// compareEmissions totals each area's emissions per element over the range.
func (t *Tool) compareEmissions(areas []string, startYear, endYear int) map[string]any {
	comparison := map[string]any{}
	for _, area := range areas {
		byElement := map[string]any{}
		groups := t.areaYears(area, startYear, endYear).GroupValues(func(o dataset.Observation) string { return o.Gas })
		for element, values := range groups {
			total := 0.0
			for _, v := range values {
				total += v
			}
			byElement[element] = total
		}
		comparison[area] = byElement
	}
	return map[string]any{"comparison_data": comparison}
}

// compareEmissionsWithConditions totals each area's emissions under exact
// element, item, source and unit filters.
func (t *Tool) compareEmissionsWithConditions(args map[string]any, areas []string, element string, startYear, endYear int) map[string]any {
	item, err := params.Extract[string](args, "item")
	if err != nil {
		return params.Error("%s", err)
	}
	source, err := params.Extract[string](args, "source")
	if err != nil {
		return params.Error("%s", err)
	}
	unit, err := params.Extract[string](args, "unit")
	if err != nil {
		return params.Error("%s", err)
	}
	if element == "" {
		return params.Error("element parameter is required")
	}

	comparison := map[string]any{}
	for _, area := range areas {
		data := t.areaYears(area, startYear, endYear).Filter(func(o dataset.Observation) bool {
			return o.Gas == element && o.Item == item && o.Source == source && o.Unit == unit
		})
		total := 0.0
		for _, v := range data.Values() {
			total += v
		}
		comparison[area] = total
	}
	return map[string]any{
		"comparison_data": comparison,
		"element":         element,
		"item":            item,
		"source":          source,
		"unit":            unit,
		"start_year":      startYear,
		"end_year":        endYear,
	}
}

// listHighestEmissions totals each area's emissions of one element over
// the range.
func (t *Tool) listHighestEmissions(element string, startYear, endYear int) map[string]any {
	data := t.data.Filter(dataset.And(
		dataset.GasIs(element),
		dataset.YearBetween(startYear, endYear),
	))
	if data.Empty() {
		return params.Error("No data available for %s emissions from %d to %d", element, startYear, endYear)
	}
	highest := map[string]any{}
	for area, values := range data.GroupValues(func(o dataset.Observation) string { return o.Category }) {
		total := 0.0
		for _, v := range values {
			total += v
		}
		highest[area] = total
	}
	return map[string]any{
		"highest_emissions": highest,
		"element":           element,
		"start_year":        startYear,
		"end_year":          endYear,
	}
}

// setEmissionAlert reports whether any observation for the area and
// element exceeds the threshold.
func (t *Tool) setEmissionAlert(area, element string, threshold float64) map[string]any {
	data := t.data.Filter(dataset.And(dataset.CategoryFold(area), dataset.GasIs(element)))
	for _, v := range data.Values() {
		if v > threshold {
			return map[string]any{
				"alert":   true,
				"message": element + " emissions in " + area + " exceeded " + strconv.FormatFloat(threshold, 'g', -1, 64) + ".",
			}
		}
	}
	return map[string]any{"alert": false, "message": "No alert triggered."}
}

// findMissingData lists the years inside the dataset's span with no
// observation for the area and element.
func (t *Tool) findMissingData(area, element string) map[string]any {
	minYear, maxYear := t.data.YearRange()
	recorded := make(map[int]bool)
	for _, o := range t.data.Filter(dataset.And(dataset.CategoryFold(area), dataset.GasIs(element))).Rows() {
		recorded[o.Year] = true
	}
	missing := []int{}
	for y := minYear; y <= maxYear; y++ {
		if !recorded[y] {
			missing = append(missing, y)
		}
	}
	return map[string]any{
		"area":          area,
		"element":       element,
		"missing_years": missing,
	}
}

// longTermForecast predicts future emissions with an ARIMA(1,1,1) fit on
// the area's yearly history.
func (t *Tool) longTermForecast(area, element string, projectionYears int) map[string]any {
	data := t.data.Filter(dataset.And(dataset.CategoryFold(area), dataset.GasIs(element)))
	if data.Empty() {
		return params.Error("No historical data for %s in %s", element, area)
	}
	years, totals := yearlySums(data)
	values := make([]float64, len(years))
	sum := 0.0
	for i, y := range years {
		values[i] = totals[y]
		sum += totals[y]
	}
	if sum == 0 {
		return params.Error("All historical values are zero for %s in %s", element, area)
	}
	forecast, err := timeseries.ForecastARIMA(values, projectionYears)
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{"forecast": forecast}
}

// analyzeCorrelation correlates the yearly CO2 and N2O totals of one area
// over the years where both are recorded. The result is symmetric in the
// two elements.
func (t *Tool) analyzeCorrelation(area string, startYear, endYear int) map[string]any {
	filtered := t.areaYears(area, startYear, endYear)
	if filtered.Empty() {
		return params.Error("No data found for specified area and date range")
	}
	co2Years, co2 := yearlySums(filtered.Filter(dataset.GasIs(ElementCO2)))
	_, n2o := yearlySums(filtered.Filter(dataset.GasIs(ElementN2O)))

	var x, y []float64
	for _, year := range co2Years {
		if v, ok := n2o[year]; ok {
			x = append(x, co2[year])
			y = append(y, v)
		}
	}
	corr, err := timeseries.Correlation(x, y)
	if err != nil {
		return params.Error("Insufficient data for correlation analysis")
	}
	return map[string]any{"correlation": corr}
}

// averageAnnualEmissions averages the area's observations of one element
// over the range.
func (t *Tool) averageAnnualEmissions(area, element string, startYear, endYear int) map[string]any {
	data := t.areaYears(area, startYear, endYear).Filter(dataset.GasIs(element))
	if data.Empty() {
		return params.Error("No data available for %s emissions in %s from %d to %d", element, area, startYear, endYear)
	}
	return map[string]any{
		"average_annual_emissions": timeseries.Mean(data.Values()),
		"area":                     area,
		"element":                  element,
		"start_year":               startYear,
		"end_year":                 endYear,
	}
}

// cumulativeEmissions totals the area's observations of one element over
// the range. The total is truncated to a whole number, matching how the
// figure is reported.
func (t *Tool) cumulativeEmissions(area, element string, startYear, endYear int) map[string]any {
	data := t.areaYears(area, startYear, endYear).Filter(dataset.GasIs(element))
	if data.Empty() {
		return params.Error("No data available for %s emissions in %s from %d to %d", element, area, startYear, endYear)
	}
	total := 0.0
	for _, v := range data.Values() {
		total += v
	}
	return map[string]any{
		"cumulative_emissions": int(total),
		"area":                 area,
		"element":              element,
		"start_year":           startYear,
		"end_year":             endYear,
	}
}
