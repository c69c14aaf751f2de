/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package timeseries

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// ErrInsufficientData is returned when a computation needs more
// observations than the caller supplied.
var ErrInsufficientData = errors.New("insufficient data")

// Mean returns the arithmetic mean of values.
func Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	return stat.Mean(values, nil)
}

// StdDev returns the sample standard deviation (n-1 in the denominator),
// matching how the variability aggregations are defined.
func StdDev(values []float64) float64 {
	if len(values) < 2 {
		return math.NaN()
	}
	return stat.StdDev(values, nil)
}

// ZScores returns the population z-score of every value. A series with
// zero variance has no meaningful z-scores; all zeros are returned so that
// threshold checks simply match nothing.
func ZScores(values []float64) []float64 {
	scores := make([]float64, len(values))
	if len(values) == 0 {
		return scores
	}
	mean := stat.Mean(values, nil)
	var ss float64
	for _, v := range values {
		d := v - mean
		ss += d * d
	}
	sigma := math.Sqrt(ss / float64(len(values)))
	if sigma == 0 {
		return scores
	}
	for i, v := range values {
		scores[i] = (v - mean) / sigma
	}
	return scores
}

// Correlation returns the Pearson correlation of two aligned series.
// It requires at least two points and non-degenerate variance in both.
func Correlation(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("series length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: correlation needs at least 2 points, got %d", ErrInsufficientData, len(x))
	}
	r := stat.Correlation(x, y, nil)
	if math.IsNaN(r) {
		return 0, errors.New("correlation undefined: a series has zero variance")
	}
	return r, nil
}

// Slope returns the least-squares slope of y against x.
func Slope(x, y []float64) (float64, error) {
	if len(x) != len(y) {
		return 0, fmt.Errorf("series length mismatch: %d vs %d", len(x), len(y))
	}
	if len(x) < 2 {
		return 0, fmt.Errorf("%w: slope needs at least 2 points, got %d", ErrInsufficientData, len(x))
	}
	_, beta := stat.LinearRegression(x, y, nil, false)
	return beta, nil
}

// IndexSlope returns the least-squares slope of values against their
// 0-based index, the trend measure used when no natural x-axis exists.
func IndexSlope(values []float64) (float64, error) {
	x := make([]float64, len(values))
	for i := range x {
		x[i] = float64(i)
	}
	return Slope(x, values)
}

// QuadraticCoefficient fits values against their index with a degree-2
// polynomial and returns the quadratic coefficient, interpreted as the
// acceleration of the series.
func QuadraticCoefficient(values []float64) (float64, error) {
	n := len(values)
	if n < 3 {
		return 0, fmt.Errorf("%w: quadratic fit needs at least 3 points, got %d", ErrInsufficientData, n)
	}

	// Normal equations for y = a0 + a1*x + a2*x^2 over x = 0..n-1.
	var s [5]float64
	var t [3]float64
	for i, y := range values {
		x := float64(i)
		xp := 1.0
		for p := 0; p < 5; p++ {
			s[p] += xp
			if p < 3 {
				t[p] += xp * y
			}
			xp *= x
		}
	}
	a := mat.NewDense(3, 3, []float64{
		s[0], s[1], s[2],
		s[1], s[2], s[3],
		s[2], s[3], s[4],
	})
	b := mat.NewVecDense(3, t[:])
	var coeffs mat.VecDense
	if err := coeffs.SolveVec(a, b); err != nil {
		return 0, fmt.Errorf("quadratic fit is singular: %w", err)
	}
	return coeffs.AtVec(2), nil
}

// CrossCorrelationLag computes the full cross-correlation
// c[lag] = sum(a[n+lag] * b[n]) of two series and returns the lag at
// which it peaks. A positive lag means the second series leads the
// first.
func CrossCorrelationLag(a, b []float64) (int, error) {
	if len(a) == 0 || len(b) == 0 {
		return 0, fmt.Errorf("%w: cross-correlation needs non-empty series", ErrInsufficientData)
	}
	bestLag := 0
	best := math.Inf(-1)
	// Lags range over [-(len(b)-1), len(a)-1] in full mode.
	for lag := -(len(b) - 1); lag <= len(a)-1; lag++ {
		var sum float64
		for n, bv := range b {
			i := n + lag
			if i >= 0 && i < len(a) {
				sum += a[i] * bv
			}
		}
		if sum > best {
			best = sum
			bestLag = lag
		}
	}
	return bestLag, nil
}

// TrendReversals counts the points where the direction of successive
// changes flips sign (rising to falling or vice versa).
func TrendReversals(values []float64) int {
	var reversals int
	prev := 0.0
	for i := 1; i < len(values); i++ {
		sign := 0.0
		switch d := values[i] - values[i-1]; {
		case d > 0:
			sign = 1
		case d < 0:
			sign = -1
		}
		if i > 1 && sign != prev {
			reversals++
		}
		prev = sign
	}
	return reversals
}

// RollingRange returns the centered rolling max-min range over the given
// window. Positions without a complete window are NaN.
func RollingRange(values []float64, window int) []float64 {
	out := make([]float64, len(values))
	for i := range out {
		out[i] = math.NaN()
	}
	if window <= 0 || window > len(values) {
		return out
	}
	half := (window - 1) / 2
	for i := range values {
		start := i - half
		end := start + window
		if start < 0 || end > len(values) {
			continue
		}
		lo, hi := math.Inf(1), math.Inf(-1)
		for _, v := range values[start:end] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		out[i] = hi - lo
	}
	return out
}
