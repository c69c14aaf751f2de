/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package timeseries

import (
	"fmt"
	"math"
)

// Decomposition holds the components of an additive seasonal decomposition.
type Decomposition struct {
	Trend    []float64 // NaN where the centered moving average is undefined
	Seasonal []float64
	Residual []float64 // NaN wherever Trend is NaN
}

// Decompose performs an additive seasonal decomposition with the given
// period: a centered moving-average trend, mean-centered seasonal averages
// of the detrended series, and the residual. The series must cover at
// least two full periods.
func Decompose(values []float64, period int) (*Decomposition, error) {
	if period < 2 {
		return nil, fmt.Errorf("decomposition period must be at least 2, got %d", period)
	}
	if len(values) < 2*period {
		return nil, fmt.Errorf("%w: decomposition with period %d needs at least %d observations, got %d",
			ErrInsufficientData, period, 2*period, len(values))
	}

	n := len(values)
	trend := movingAverageTrend(values, period)

	// Seasonal averages of the detrended series, indexed by phase.
	sums := make([]float64, period)
	counts := make([]int, period)
	for i, v := range values {
		if math.IsNaN(trend[i]) {
			continue
		}
		phase := i % period
		sums[phase] += v - trend[i]
		counts[phase]++
	}
	phaseMeans := make([]float64, period)
	var total float64
	for p := range phaseMeans {
		if counts[p] > 0 {
			phaseMeans[p] = sums[p] / float64(counts[p])
		}
		total += phaseMeans[p]
	}
	// Center the seasonal component so it sums to zero over one period.
	offset := total / float64(period)
	for p := range phaseMeans {
		phaseMeans[p] -= offset
	}

	seasonal := make([]float64, n)
	residual := make([]float64, n)
	for i := range values {
		seasonal[i] = phaseMeans[i%period]
		if math.IsNaN(trend[i]) {
			residual[i] = math.NaN()
		} else {
			residual[i] = values[i] - trend[i] - seasonal[i]
		}
	}
	return &Decomposition{Trend: trend, Seasonal: seasonal, Residual: residual}, nil
}

// SeasonalStrength returns the ratio of seasonal-component variance to the
// variance of the original series; values above 0.5 indicate the series is
// dominated by its seasonal cycle.
func SeasonalStrength(values []float64, period int) (float64, error) {
	dec, err := Decompose(values, period)
	if err != nil {
		return 0, err
	}
	totalVar := popVariance(values)
	if totalVar == 0 {
		return 0, nil
	}
	return popVariance(dec.Seasonal) / totalVar, nil
}

// movingAverageTrend computes a centered moving average of the given
// period; for even periods the two endpoint observations carry half
// weight, mirroring the conventional 2xMA filter.
func movingAverageTrend(values []float64, period int) []float64 {
	n := len(values)
	trend := make([]float64, n)
	for i := range trend {
		trend[i] = math.NaN()
	}
	if period%2 == 1 {
		half := period / 2
		for i := half; i < n-half; i++ {
			var sum float64
			for _, v := range values[i-half : i+half+1] {
				sum += v
			}
			trend[i] = sum / float64(period)
		}
		return trend
	}
	half := period / 2
	for i := half; i < n-half; i++ {
		sum := 0.5*values[i-half] + 0.5*values[i+half]
		for _, v := range values[i-half+1 : i+half] {
			sum += v
		}
		trend[i] = sum / float64(period)
	}
	return trend
}

func popVariance(values []float64) float64 {
	clean := values[:0:0]
	for _, v := range values {
		if !math.IsNaN(v) {
			clean = append(clean, v)
		}
	}
	if len(clean) == 0 {
		return 0
	}
	mean := Mean(clean)
	var ss float64
	for _, v := range clean {
		d := v - mean
		ss += d * d
	}
	return ss / float64(len(clean))
}
