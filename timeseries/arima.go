/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package timeseries

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
)

// arimaMinObservations is the smallest series the ARIMA(1,1,1) fit will
// accept: one observation is lost to differencing and the conditional
// sum-of-squares needs a few residuals to be meaningful.
const arimaMinObservations = 5

// ForecastARIMA fits an ARIMA(1,1,1) model to the series by conditional
// sum-of-squares and returns forecasts for the next steps periods,
// re-integrated onto the level of the last observation.
func ForecastARIMA(values []float64, steps int) ([]float64, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("forecast steps must be positive, got %d", steps)
	}
	if len(values) < arimaMinObservations {
		return nil, fmt.Errorf("%w: ARIMA(1,1,1) needs at least %d observations, got %d",
			ErrInsufficientData, arimaMinObservations, len(values))
	}

	// First difference.
	diffs := make([]float64, len(values)-1)
	for i := 1; i < len(values); i++ {
		diffs[i-1] = values[i] - values[i-1]
	}

	// Conditional sum of squares for w_t = c + phi*w_{t-1} + theta*e_{t-1} + e_t.
	css := func(p []float64) float64 {
		c, phi, theta := p[0], p[1], p[2]
		// Penalize parameters outside the stationarity/invertibility region.
		if math.Abs(phi) >= 1 || math.Abs(theta) >= 1 {
			return math.Inf(1)
		}
		var sse, e float64
		for t := 1; t < len(diffs); t++ {
			resid := diffs[t] - c - phi*diffs[t-1] - theta*e
			sse += resid * resid
			e = resid
		}
		return sse
	}

	problem := optimize.Problem{Func: css}
	init := []float64{Mean(diffs), 0.1, 0.1}
	result, err := optimize.Minimize(problem, init, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, fmt.Errorf("fitting ARIMA(1,1,1): %w", err)
	}
	c, phi, theta := result.X[0], result.X[1], result.X[2]

	// Final pass to recover the last residual under the fitted parameters.
	var e float64
	for t := 1; t < len(diffs); t++ {
		e = diffs[t] - c - phi*diffs[t-1] - theta*e
	}

	// Recursive h-step forecast of the differenced series; the MA term
	// only contributes at horizon 1.
	forecasts := make([]float64, steps)
	level := values[len(values)-1]
	w := diffs[len(diffs)-1]
	for h := 0; h < steps; h++ {
		next := c + phi*w
		if h == 0 {
			next += theta * e
		}
		level += next
		forecasts[h] = level
		w = next
	}
	return forecasts, nil
}
