/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package carbon

import (
	"context"
	"fmt"
	"strings"

	"github.com/chainguard-dev/clog"

	"climategpt.dev/climatetools/dataset"
	"climategpt.dev/climatetools/tools"
	"climategpt.dev/climatetools/tools/params"
)

// Tool aggregates daily carbon emissions filtered by country, date and
// sector. Unlike the other climate tools it exposes a single query
// operation, so it takes no action parameter.
type Tool struct {
	data *dataset.Table
}

// New builds the tool over a loaded carbon monitor table. Rows carry the
// country as their category, a daily date, a sector, and the emission
// value in MtCO2 per day.
func New(data *dataset.Table) *Tool {
	return &Tool{data: data}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Definition{
		Name: "get_carbon_emissions",
		Description: "Retrieve carbon emissions data for one or more specified countries, " +
			"optionally filtered by a specific date in 'dd/mm/yyyy' format and/or sector. " +
			"The tool provides total daily carbon emissions measured in MtCO2 per day. " +
			"If no date or sector is provided, it returns total emissions across all dates and sectors.",
		Parameters: []tools.Parameter{
			{Name: "country", Type: "string", Description: "The country (or list of countries separated by commas) for which to fetch carbon emissions data. For example, 'India' or 'India, Brazil'. If not provided, data for all countries will be aggregated."},
			{Name: "date", Type: "string", Description: "The specific date for which to get carbon emissions data, in 'dd/mm/yyyy' format. If not provided, data across all dates will be aggregated."},
			{Name: "start_date", Type: "string", Description: "The start of a date range in 'dd/mm/yyyy' format, used together with end_date."},
			{Name: "end_date", Type: "string", Description: "The end of a date range in 'dd/mm/yyyy' format, used together with start_date."},
			{Name: "sector", Type: "string", Description: "The sector for which to filter the carbon emissions data (e.g., 'Transport', 'Energy'). If not provided, data across all sectors will be aggregated."},
		},
	}
}

// Run implements tools.Tool.
func (t *Tool) Run(ctx context.Context, args map[string]any) map[string]any {
	country, err := params.ExtractOptional(args, "country", "")
	if err != nil {
		return params.Error("%s", err)
	}
	date, err := params.ExtractOptional(args, "date", "")
	if err != nil {
		return params.Error("%s", err)
	}
	startDate, err := params.ExtractOptional(args, "start_date", "")
	if err != nil {
		return params.Error("%s", err)
	}
	endDate, err := params.ExtractOptional(args, "end_date", "")
	if err != nil {
		return params.Error("%s", err)
	}
	sector, err := params.ExtractOptional(args, "sector", "")
	if err != nil {
		return params.Error("%s", err)
	}

	clog.FromContext(ctx).With("country", country, "date", date, "sector", sector).Debug("carbon emissions query")

	data := t.data
	countryLabel := "all"

	if country != "" {
		countries, err := params.ExtractStringList(args, "country")
		if err != nil {
			return params.Error("%s", err)
		}
		if invalid := t.unknownCountries(countries); len(invalid) > 0 {
			joined := strings.Join(invalid, ", ")
			return params.ErrorWithContext(
				fmt.Errorf("The specified country or countries (%s) are not present in the dataset", joined),
				map[string]any{"country": joined})
		}
		data = data.Filter(dataset.CategoryIn(countries))
		countryLabel = strings.Join(countries, ", ")
	}

	dateLabel := "All Dates"
	switch {
	case date != "":
		d, err := dataset.ParseDate(date)
		if err != nil {
			return params.Error("Invalid date format. Please provide the date in 'dd/mm/yyyy' format")
		}
		data = data.Filter(dataset.DateIs(d))
		dateLabel = date
	case startDate != "" && endDate != "":
		start, err := dataset.ParseDate(startDate)
		if err != nil {
			return params.Error("Invalid date range format. Please provide dates in 'dd/mm/yyyy' format")
		}
		end, err := dataset.ParseDate(endDate)
		if err != nil {
			return params.Error("Invalid date range format. Please provide dates in 'dd/mm/yyyy' format")
		}
		data = data.Filter(dataset.DateBetween(start, end))
		dateLabel = fmt.Sprintf("From %s to %s", startDate, endDate)
	}

	sectorLabel := "All Sectors"
	if sector != "" {
		valid := t.data.Distinct(func(o dataset.Observation) string { return o.Sector })
		if !contains(valid, sector) {
			return params.ErrorWithContext(
				fmt.Errorf("The specified sector '%s' is not available in the dataset. Please choose from the available sectors: %s",
					sector, strings.Join(valid, ", ")),
				map[string]any{"sector": sector})
		}
		data = data.Filter(dataset.SectorContainsFold(sector))
		sectorLabel = sector
	}

	if data.Empty() {
		return params.ErrorWithContext(
			fmt.Errorf("No emissions data available for %s", describeQuery(countryLabel, dateLabel, sectorLabel)),
			map[string]any{"country": countryLabel})
	}

	total := 0.0
	for _, v := range data.Values() {
		total += v
	}
	return map[string]any{
		"country":         countryLabel,
		"date":            dateLabel,
		"sector":          sectorLabel,
		"total_emissions": fmt.Sprintf("%.4f MtCO2", total),
	}
}

// unknownCountries returns the requested countries absent from the table.
func (t *Tool) unknownCountries(countries []string) []string {
	var invalid []string
	for _, c := range countries {
		if !t.data.HasCategory(c) {
			invalid = append(invalid, c)
		}
	}
	return invalid
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}

func describeQuery(country, date, sector string) string {
	desc := country
	if date != "All Dates" {
		desc += " on " + date
	}
	if sector != "All Sectors" {
		desc += " in the sector " + sector
	}
	return desc
}
