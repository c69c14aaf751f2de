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

func TestForecastARIMA(t *testing.T) {
	// A steady upward ramp should forecast further steady growth.
	values := make([]float64, 24)
	for i := range values {
		values[i] = 100 + 2*float64(i)
	}

	forecasts, err := ForecastARIMA(values, 6)
	if err != nil {
		t.Fatalf("ForecastARIMA() error = %v", err)
	}
	if len(forecasts) != 6 {
		t.Fatalf("got %d forecasts, want 6", len(forecasts))
	}

	last := values[len(values)-1]
	for i, f := range forecasts {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			t.Fatalf("forecast[%d] = %v", i, f)
		}
		if f <= last {
			t.Errorf("forecast[%d] = %v, want above last observation %v", i, f, last)
		}
		last = f
	}

	// The one-step forecast of a linear ramp stays close to the ramp.
	if math.Abs(forecasts[0]-148) > 2 {
		t.Errorf("forecast[0] = %v, want ~148", forecasts[0])
	}
}

func TestForecastARIMAErrors(t *testing.T) {
	if _, err := ForecastARIMA([]float64{1, 2, 3}, 4); !errors.Is(err, ErrInsufficientData) {
		t.Errorf("short series error = %v, want ErrInsufficientData", err)
	}
	if _, err := ForecastARIMA([]float64{1, 2, 3, 4, 5, 6}, 0); err == nil {
		t.Error("expected error for non-positive steps")
	}
}
