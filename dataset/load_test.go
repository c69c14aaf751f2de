/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("15/03/2021")
	require.NoError(t, err)
	require.Equal(t, time.Date(2021, 3, 15, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("2021-03-15")
	require.Error(t, err)

	_, err = ParseDate("31/02/2021")
	require.Error(t, err)
}

// writeWorkbook writes rows to the first sheet of a fresh xlsx file and
// returns its path.
func writeWorkbook(t *testing.T, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())
	return path
}

func TestLoadSeaLevelWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Measure", "Date", "Value"},
		{"North Atlantic", "D12/17/1992", "12.5"},
		{"North Atlantic", "D1/5/1993", "13.1"},
		{"Baltic Sea", "not-a-date", "9.9"}, // dropped
		{"", "D12/17/1992", "1.0"},          // dropped, no measure
	})

	tbl, err := LoadSeaLevelWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	first := tbl.Rows()[0]
	require.Equal(t, "North Atlantic", first.Category)
	require.Equal(t, time.Date(1992, 12, 17, 0, 0, 0, 0, time.UTC), first.Date)
	require.Equal(t, 1992, first.Year)
	require.Equal(t, 12.5, first.Value)
}

func TestLoadSeaLevelWorkbookMissingColumn(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Measure", "Value"},
		{"North Atlantic", "12.5"},
	})
	_, err := LoadSeaLevelWorkbook(path)
	require.ErrorContains(t, err, `missing required column "Date"`)
}

func TestLoadCarbonCSV(t *testing.T) {
	csv := `country,date,sector,MtCO2 per day
India,01/01/2023,Power,10.5
Brazil,02/01/2023,Industry,7.25
India,bad-date,Power,1.0
`
	path := filepath.Join(t.TempDir(), "carbon.csv")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	tbl, err := LoadCarbonCSV(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	first := tbl.Rows()[0]
	require.Equal(t, "India", first.Category)
	require.Equal(t, "Power", first.Sector)
	require.Equal(t, time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC), first.Date)
	require.Equal(t, 10.5, first.Value)
}

func TestLoadGreenhouseWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Country", "World_Region", "Substance", "Year", "Value"},
		{"Germany", "Europe", "CO2", "2020", "800.5"},
		{"Germany", "Europe", "CO2", "2021.0", "790"}, // float-rendered year
		{"France", "", "CO2", "2020", "400"},          // dropped, no region
	})

	tbl, err := LoadGreenhouseWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())
	require.Equal(t, 2021, tbl.Rows()[1].Year)
	require.Equal(t, "Europe", tbl.Rows()[0].Region)
	require.Equal(t, "CO2", tbl.Rows()[0].Gas)
}

func TestLoadOrganicSoilsWorkbook(t *testing.T) {
	path := writeWorkbook(t, [][]any{
		{"Area", "Element", "Item", "Source", "Unit", "Year", "Value"},
		{"Brazil", "Emissions (CO2)", "Cropland organic soils", "FAO TIER 1", "kt", "2010", "1000"},
		{"Brazil", "Emissions (N2O)", "Cropland organic soils", "FAO TIER 1", "kt", "2010", "10"},
		{"Brazil", "Area harvested", "Cropland organic soils", "FAO TIER 1", "ha", "2010", "5"}, // filtered element
	})

	tbl, err := LoadOrganicSoilsWorkbook(path)
	require.NoError(t, err)
	require.Equal(t, 2, tbl.Len())

	first := tbl.Rows()[0]
	require.Equal(t, "Brazil", first.Category)
	require.Equal(t, "Emissions (CO2)", first.Gas)
	require.Equal(t, "Cropland organic soils", first.Item)
	require.Equal(t, "kt", first.Unit)
}
