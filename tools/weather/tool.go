/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package weather

import (
	"context"
	"math"
	"time"

	"github.com/chainguard-dev/clog"

	"climategpt.dev/climatetools/tools"
	"climategpt.dev/climatetools/tools/params"
)

const timeLayout = "2006-01-02 15:04:05"

// Tool answers weather questions for a city through an injected Client.
type Tool struct {
	client *Client
}

// New builds the weather tool.
func New(client *Client) *Tool {
	return &Tool{client: client}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Definition{
		Name: "weather_data_tool",
		Description: "Retrieve current weather data for a specified city, including temperature, " +
			"humidity, wind speed, weather description, and optional analyses like " +
			"comfort index and fog risk assessment.",
		Parameters: []tools.Parameter{
			tools.ActionParam("Type of analysis: 'current_weather_data', 'comfort_index', or 'fog_risk'."),
			{Name: "city", Type: "string", Description: "The city for which to fetch weather data, e.g., 'Fairfax'.", Required: true},
		},
	}
}

// Run implements tools.Tool.
func (t *Tool) Run(ctx context.Context, args map[string]any) map[string]any {
	action, err := params.Extract[string](args, "action")
	if err != nil {
		return params.Invalid()
	}
	city, err := params.Extract[string](args, "city")
	if err != nil {
		return params.Invalid()
	}

	clog.FromContext(ctx).With("action", action, "city", city).Debug("weather lookup")

	cond, err := t.client.Fetch(ctx, city)
	if err != nil {
		return params.Error("No data available for city '%s'", city)
	}

	switch action {
	case "current_weather_data":
		return currentWeatherData(cond, city)
	case "comfort_index":
		return comfortIndex(cond, city)
	case "fog_risk":
		return fogRisk(cond, city)
	}
	return params.Error("Invalid action: '%s'", action)
}

// kelvinToCF converts a Kelvin reading to Celsius and Fahrenheit, both
// rounded to two decimals.
func kelvinToCF(kelvin float64) (celsius, fahrenheit float64) {
	c := kelvin - 273.15
	return round2(c), round2(c*9/5 + 32)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// localTime renders an epoch timestamp in the observation's local time.
func localTime(epoch, offset int64) string {
	return time.Unix(epoch+offset, 0).UTC().Format(timeLayout)
}

func currentWeatherData(cond *Conditions, city string) map[string]any {
	if len(cond.Weather) == 0 {
		return params.Error("Data retrieval issue for city '%s'", city)
	}
	tempC, tempF := kelvinToCF(cond.Main.Temp)
	minC, minF := kelvinToCF(cond.Main.TempMin)
	maxC, maxF := kelvinToCF(cond.Main.TempMax)
	feelsC, feelsF := kelvinToCF(cond.Main.FeelsLike)

	return map[string]any{
		"city":                city,
		"country":             cond.Sys.Country,
		"current_temperature": map[string]any{"celsius": tempC, "fahrenheit": tempF},
		"temperature_range": map[string]any{
			"min": map[string]any{"celsius": minC, "fahrenheit": minF},
			"max": map[string]any{"celsius": maxC, "fahrenheit": maxF},
		},
		"feels_like_temperature": map[string]any{"celsius": feelsC, "fahrenheit": feelsF},
		"humidity":               cond.Main.Humidity,
		"wind_speed":             cond.Wind.Speed,
		"weather_description":    cond.Weather[0].Description,
		"sunrise_time":           localTime(cond.Sys.Sunrise, cond.Timezone),
		"sunset_time":            localTime(cond.Sys.Sunset, cond.Timezone),
	}
}

// comfortIndex bands the conditions from very comfortable to heat stress.
func comfortIndex(cond *Conditions, city string) map[string]any {
	tempC := cond.Main.Temp - 273.15
	humidity := cond.Main.Humidity

	var level string
	switch {
	case tempC < 20 && humidity < 60:
		level = "Very Comfortable"
	case tempC < 30 && humidity < 70:
		level = "Comfortable"
	case tempC < 35 || humidity > 70:
		level = "Uncomfortable"
	default:
		level = "High Risk of Heat Stress"
	}

	return map[string]any{
		"city":                city,
		"comfort_index":       level,
		"temperature_celsius": round2(tempC),
		"humidity":            humidity,
		"wind_speed":          cond.Wind.Speed,
	}
}

// fogRisk estimates fog likelihood from how close the dew point sits to
// the air temperature.
func fogRisk(cond *Conditions, city string) map[string]any {
	tempC := cond.Main.Temp - 273.15
	humidity := cond.Main.Humidity

	dewPoint := tempC - (100-humidity)/5.0
	risk := "Low Fog Risk"
	if dewPoint >= tempC-1 {
		risk = "High Fog Risk"
	}

	return map[string]any{
		"city":                city,
		"fog_risk":            risk,
		"temperature_celsius": round2(tempC),
		"humidity":            humidity,
		"dew_point_celsius":   round2(dewPoint),
	}
}
