/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package dataset

import (
	"sort"
	"strings"
	"time"
)

// Observation is a single row of a climate dataset. Only the fields the
// source spreadsheet carries are populated; the rest stay zero. Category
// is the primary grouping key (a sea region, country, or area name).
type Observation struct {
	Category string
	Region   string // world region the category belongs to
	Gas      string // substance or emission element
	Sector   string
	Item     string
	Source   string
	Unit     string
	Date     time.Time // zero for year-resolution datasets
	Year     int
	Value    float64
}

// Table is an immutable collection of observations. All query methods
// return derived data or new tables; the underlying rows are never
// modified after construction.
type Table struct {
	rows []Observation
}

// New builds a table over the given rows. The caller hands over ownership
// of the slice.
func New(rows []Observation) *Table {
	return &Table{rows: rows}
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return len(t.rows) == 0 }

// Rows returns the underlying rows. Callers must treat them as read-only.
func (t *Table) Rows() []Observation { return t.rows }

// Filter returns a new table containing the rows the predicate keeps.
func (t *Table) Filter(keep func(Observation) bool) *Table {
	var rows []Observation
	for _, o := range t.rows {
		if keep(o) {
			rows = append(rows, o)
		}
	}
	return &Table{rows: rows}
}

// SortedByDate returns a copy of the table ordered by date, then year.
func (t *Table) SortedByDate() *Table {
	rows := make([]Observation, len(t.rows))
	copy(rows, t.rows)
	sort.SliceStable(rows, func(i, j int) bool {
		if !rows[i].Date.Equal(rows[j].Date) {
			return rows[i].Date.Before(rows[j].Date)
		}
		return rows[i].Year < rows[j].Year
	})
	return &Table{rows: rows}
}

// Values returns the value column in row order.
func (t *Table) Values() []float64 {
	vals := make([]float64, len(t.rows))
	for i, o := range t.rows {
		vals[i] = o.Value
	}
	return vals
}

// Categories returns the distinct category names in sorted order.
func (t *Table) Categories() []string {
	return t.Distinct(func(o Observation) string { return o.Category })
}

// Distinct returns the sorted distinct values of the given key.
func (t *Table) Distinct(key func(Observation) string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, o := range t.rows {
		k := key(o)
		if k == "" {
			continue
		}
		if _, ok := seen[k]; !ok {
			seen[k] = struct{}{}
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// HasCategory reports whether any row carries the exact category name.
func (t *Table) HasCategory(name string) bool {
	for _, o := range t.rows {
		if o.Category == name {
			return true
		}
	}
	return false
}

// GroupValues buckets the value column by the given key.
func (t *Table) GroupValues(key func(Observation) string) map[string][]float64 {
	groups := make(map[string][]float64)
	for _, o := range t.rows {
		k := key(o)
		groups[k] = append(groups[k], o.Value)
	}
	return groups
}

// YearRange returns the smallest and largest year present.
func (t *Table) YearRange() (min, max int) {
	for i, o := range t.rows {
		if i == 0 || o.Year < min {
			min = o.Year
		}
		if i == 0 || o.Year > max {
			max = o.Year
		}
	}
	return min, max
}

// Predicate helpers shared by the tools.

// CategoryIs matches rows with the exact category name.
func CategoryIs(name string) func(Observation) bool {
	return func(o Observation) bool { return o.Category == name }
}

// CategoryFold matches rows whose category equals name, ignoring case.
func CategoryFold(name string) func(Observation) bool {
	return func(o Observation) bool { return strings.EqualFold(o.Category, name) }
}

// CategoryIn matches rows whose category is one of the given names.
func CategoryIn(names []string) func(Observation) bool {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return func(o Observation) bool {
		_, ok := set[o.Category]
		return ok
	}
}

// RegionIs matches rows with the exact world region name.
func RegionIs(name string) func(Observation) bool {
	return func(o Observation) bool { return o.Region == name }
}

// GasIs matches rows with the exact gas or element name.
func GasIs(name string) func(Observation) bool {
	return func(o Observation) bool { return o.Gas == name }
}

// SectorContainsFold matches rows whose sector contains the given text,
// ignoring case.
func SectorContainsFold(text string) func(Observation) bool {
	lower := strings.ToLower(text)
	return func(o Observation) bool {
		return strings.Contains(strings.ToLower(o.Sector), lower)
	}
}

// YearIs matches rows from one year.
func YearIs(year int) func(Observation) bool {
	return func(o Observation) bool { return o.Year == year }
}

// YearBetween matches rows with start <= year <= end.
func YearBetween(start, end int) func(Observation) bool {
	return func(o Observation) bool { return o.Year >= start && o.Year <= end }
}

// DateIs matches rows on the exact date.
func DateIs(d time.Time) func(Observation) bool {
	return func(o Observation) bool { return o.Date.Equal(d) }
}

// DateBetween matches rows with start <= date <= end.
func DateBetween(start, end time.Time) func(Observation) bool {
	return func(o Observation) bool {
		return !o.Date.Before(start) && !o.Date.After(end)
	}
}

// And combines predicates conjunctively.
func And(preds ...func(Observation) bool) func(Observation) bool {
	return func(o Observation) bool {
		for _, p := range preds {
			if !p(o) {
				return false
			}
		}
		return true
	}
}

// Decade truncates a year to its containing 10-year band.
func Decade(year int) int { return year - year%10 }

// Season maps a calendar month onto a quarter bucket where December,
// January and February share bucket 1.
func Season(month time.Month) int { return int(month)%12/3 + 1 }
