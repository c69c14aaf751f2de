/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package timeseries

import (
	"errors"
	"math"
	"testing"
)

// seasonalSeries builds a linear trend plus a repeating period-4 pattern.
func seasonalSeries(n int) []float64 {
	pattern := []float64{3, -1, -3, 1}
	values := make([]float64, n)
	for i := range values {
		values[i] = 10 + 0.5*float64(i) + pattern[i%4]
	}
	return values
}

func TestDecompose(t *testing.T) {
	values := seasonalSeries(24)
	dec, err := Decompose(values, 4)
	if err != nil {
		t.Fatalf("Decompose() error = %v", err)
	}

	// The seasonal component sums to zero over one period.
	var sum float64
	for _, s := range dec.Seasonal[:4] {
		sum += s
	}
	if math.Abs(sum) > 1e-9 {
		t.Errorf("seasonal period sum = %v, want 0", sum)
	}

	// The seasonal component repeats with the period.
	for i := 4; i < len(values); i++ {
		if !almostEqual(dec.Seasonal[i], dec.Seasonal[i-4]) {
			t.Errorf("seasonal[%d] = %v, want %v", i, dec.Seasonal[i], dec.Seasonal[i-4])
		}
	}

	// Interior trend points recover the underlying line; residuals vanish.
	for i := 2; i < len(values)-2; i++ {
		wantTrend := 10 + 0.5*float64(i)
		if math.Abs(dec.Trend[i]-wantTrend) > 1e-9 {
			t.Errorf("trend[%d] = %v, want %v", i, dec.Trend[i], wantTrend)
		}
		if math.Abs(dec.Residual[i]) > 1e-9 {
			t.Errorf("residual[%d] = %v, want 0", i, dec.Residual[i])
		}
	}

	// Edge positions have no complete window.
	if !math.IsNaN(dec.Trend[0]) || !math.IsNaN(dec.Trend[len(values)-1]) {
		t.Error("edge trend points should be NaN")
	}
}

func TestDecomposeErrors(t *testing.T) {
	if _, err := Decompose([]float64{1, 2, 3}, 1); err == nil {
		t.Error("expected error for period < 2")
	}
	if _, err := Decompose([]float64{1, 2, 3, 4, 5}, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("short series error = %v, want ErrInsufficientData", err)
	}
}

func TestSeasonalStrength(t *testing.T) {
	strong, err := SeasonalStrength(seasonalSeries(24), 4)
	if err != nil {
		t.Fatalf("SeasonalStrength() error = %v", err)
	}
	if strong < 0.2 {
		t.Errorf("SeasonalStrength(seasonal series) = %v, want substantial", strong)
	}

	// A pure trend has essentially no seasonal variance.
	trend := make([]float64, 24)
	for i := range trend {
		trend[i] = float64(i)
	}
	weak, err := SeasonalStrength(trend, 4)
	if err != nil {
		t.Fatalf("SeasonalStrength() error = %v", err)
	}
	if weak > 0.05 {
		t.Errorf("SeasonalStrength(pure trend) = %v, want near 0", weak)
	}

	flat, err := SeasonalStrength(make([]float64, 24), 4)
	if err != nil {
		t.Fatalf("SeasonalStrength() error = %v", err)
	}
	if flat != 0 {
		t.Errorf("SeasonalStrength(constant) = %v, want 0", flat)
	}
}
