/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/xuri/excelize/v2"
)

// DayMonthYear is the date layout used across the datasets and the tool
// parameters (dd/mm/yyyy).
const DayMonthYear = "02/01/2006"

// ParseDate parses a dd/mm/yyyy date string.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DayMonthYear, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected dd/mm/yyyy", s)
	}
	return d, nil
}

// LoadSeaLevelWorkbook reads the IMF change-in-mean-sea-level workbook.
// Expected columns: Measure, Date, Value. Date cells carry a leading "D"
// marker (e.g. "D12/17/1992") which is stripped before parsing; rows whose
// date cannot be parsed are dropped, matching the source's coercion.
func LoadSeaLevelWorkbook(path string) (*Table, error) {
	records, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndex(records, "Measure", "Date", "Value")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []Observation
	for _, rec := range records[1:] {
		measure := cell(rec, cols["Measure"])
		date, ok := parseSeaLevelDate(cell(rec, cols["Date"]))
		if measure == "" || !ok {
			continue
		}
		value, err := strconv.ParseFloat(cell(rec, cols["Value"]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, Observation{
			Category: measure,
			Date:     date,
			Year:     date.Year(),
			Value:    value,
		})
	}
	return New(rows), nil
}

// LoadCarbonCSV reads the carbon-monitor CSV through gota. Expected
// columns: country, date (dd/mm/yyyy), sector, "MtCO2 per day".
func LoadCarbonCSV(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	df := dataframe.ReadCSV(f, dataframe.DefaultType(series.String))
	if df.Err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, df.Err)
	}
	records := df.Records()
	cols, err := columnIndex(records, "country", "date", "sector", "MtCO2 per day")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []Observation
	for _, rec := range records[1:] {
		date, err := ParseDate(cell(rec, cols["date"]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(cell(rec, cols["MtCO2 per day"]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, Observation{
			Category: cell(rec, cols["country"]),
			Sector:   cell(rec, cols["sector"]),
			Date:     date,
			Year:     date.Year(),
			Value:    value,
		})
	}
	return New(rows), nil
}

// LoadGreenhouseWorkbook reads the total-global-greenhouse-gas-emissions
// workbook. Expected columns: Country, World_Region, Substance, Year,
// Value. Rows with any missing field are dropped.
func LoadGreenhouseWorkbook(path string) (*Table, error) {
	records, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndex(records, "Country", "World_Region", "Substance", "Year", "Value")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []Observation
	for _, rec := range records[1:] {
		country := cell(rec, cols["Country"])
		region := cell(rec, cols["World_Region"])
		substance := cell(rec, cols["Substance"])
		if country == "" || region == "" || substance == "" {
			continue
		}
		year, err := parseYear(cell(rec, cols["Year"]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(cell(rec, cols["Value"]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, Observation{
			Category: country,
			Region:   region,
			Gas:      substance,
			Year:     year,
			Value:    value,
		})
	}
	return New(rows), nil
}

// LoadOrganicSoilsWorkbook reads the drained-organic-soils workbook,
// keeping only the CO2 and N2O emission elements. Expected columns:
// Area, Element, Item, Source, Unit, Year, Value.
func LoadOrganicSoilsWorkbook(path string) (*Table, error) {
	records, err := readWorkbook(path)
	if err != nil {
		return nil, err
	}
	cols, err := columnIndex(records, "Area", "Element", "Item", "Source", "Unit", "Year", "Value")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	var rows []Observation
	for _, rec := range records[1:] {
		element := cell(rec, cols["Element"])
		if element != "Emissions (CO2)" && element != "Emissions (N2O)" {
			continue
		}
		year, err := parseYear(cell(rec, cols["Year"]))
		if err != nil {
			continue
		}
		value, err := strconv.ParseFloat(cell(rec, cols["Value"]), 64)
		if err != nil {
			continue
		}
		rows = append(rows, Observation{
			Category: cell(rec, cols["Area"]),
			Gas:      element,
			Item:     cell(rec, cols["Item"]),
			Source:   cell(rec, cols["Source"]),
			Unit:     cell(rec, cols["Unit"]),
			Year:     year,
			Value:    value,
		})
	}
	return New(rows), nil
}

// readWorkbook returns all rows of the first sheet of an xlsx workbook.
func readWorkbook(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%s has no sheets", path)
	}
	records, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", sheets[0], path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("%s has no data rows", path)
	}
	return records, nil
}

// columnIndex maps the required header names to their positions.
func columnIndex(records [][]string, required ...string) (map[string]int, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("missing header row")
	}
	index := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		index[strings.TrimSpace(name)] = i
	}
	cols := make(map[string]int, len(required))
	for _, name := range required {
		i, ok := index[name]
		if !ok {
			return nil, fmt.Errorf("missing required column %q", name)
		}
		cols[name] = i
	}
	return cols, nil
}

func cell(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

// parseSeaLevelDate handles the workbook's "D"-prefixed date cells, which
// appear in month-first form.
func parseSeaLevelDate(s string) (time.Time, bool) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "D")
	for _, layout := range []string{"01/02/2006", "1/2/2006", "2006-01-02"} {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}

func parseYear(s string) (int, error) {
	// Workbook cells sometimes render integer years as floats.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return strconv.Atoi(s)
}
