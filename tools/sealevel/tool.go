/*
Copyright 2025 The ClimateTools Authors
SPDX-License-Identifier: Apache-2.0
*/

package sealevel

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/chainguard-dev/clog"

	"climategpt.dev/climatetools/dataset"
	"climategpt.dev/climatetools/timeseries"
	"climategpt.dev/climatetools/tools"
	"climategpt.dev/climatetools/tools/params"
)

const (
	// defaultZThreshold flags observations as extreme when their absolute
	// z-score exceeds it.
	defaultZThreshold = 2.5
	// defaultStabilityThreshold bounds the rolling range of a stable period.
	defaultStabilityThreshold = 5.0
	// stabilizationWindow is the centered rolling window for stability
	// detection.
	stabilizationWindow = 30
	// forecastHorizon is the number of periods forecast_sea_level predicts.
	forecastHorizon = 12
	// seasonalPeriod is the cycle length for decomposition, one year of
	// monthly observations.
	seasonalPeriod = 12
	// hotspotCount is how many regions sea_level_hotspots reports.
	hotspotCount = 5
)

// Tool analyzes sea level change data grouped by ocean region.
type Tool struct {
	data *dataset.Table
}

// New builds the tool over a loaded sea level table. Rows carry the region
// name as their category and a monthly measurement date.
func New(data *dataset.Table) *Tool {
	return &Tool{data: data}
}

// Definition implements tools.Tool.
func (t *Tool) Definition() tools.Definition {
	return tools.Definition{
		Name:        "sea_level_analysis_tool",
		Description: "Perform analysis on sea level data.",
		Parameters: []tools.Parameter{
			tools.ActionParam("Type of analysis to perform, such as 'temporal_patterns', 'compare_variability', etc."),
			{Name: "region", Type: "string", Description: "Region name for analysis (if applicable)."},
			{Name: "region2", Type: "string", Description: "Second region name for analysis (if applicable)."},
			{Name: "threshold", Type: "number", Description: "Threshold for identifying extreme events (if applicable)."},
			{Name: "period", Type: "string", Description: "Period for aggregation ('Y' for yearly, 'M' for monthly)."},
		},
	}
}

// Run implements tools.Tool. Every branch returns a JSON-safe mapping;
// an unrecognized action or an absent required parameter yields the
// uniform invalid-request error.
func (t *Tool) Run(ctx context.Context, args map[string]any) map[string]any {
	action, err := params.Extract[string](args, "action")
	if err != nil {
		return params.Invalid()
	}
	region, err := params.ExtractOptional(args, "region", "")
	if err != nil {
		return params.Error("%s", err)
	}
	region2, err := params.ExtractOptional(args, "region2", "")
	if err != nil {
		return params.Error("%s", err)
	}
	// NaN marks the threshold as absent so an explicit 0 is honored.
	threshold, err := params.ExtractOptional(args, "threshold", math.NaN())
	if err != nil {
		return params.Error("%s", err)
	}
	period, err := params.ExtractOptional(args, "period", "Y")
	if err != nil {
		return params.Error("%s", err)
	}

	clog.FromContext(ctx).With("action", action, "region", region).Debug("sea level analysis")

	var result map[string]any
	switch {
	case action == "temporal_patterns" && region != "":
		result = t.temporalPatterns(region)
	case action == "compare_variability":
		result = t.compareVariability()
	case action == "correlation_between_regions" && region != "" && region2 != "":
		result = t.correlationBetweenRegions(region, region2)
	case action == "trend_with_outliers" && region != "":
		result = t.trendWithOutliers(region)
	case action == "seasonal_peaks_troughs" && region != "":
		result = t.seasonalPeaksTroughs(region)
	case action == "annual_rate_of_change" && region != "":
		result = t.annualRateOfChange(region)
	case action == "positive_negative_ratio" && region != "":
		result = t.positiveNegativeRatio(region)
	case action == "consistency_over_time" && region != "":
		result = t.consistencyOverTime(region)
	case action == "decadal_shifts" && region != "":
		result = t.decadalShifts(region)
	case action == "rank_by_average_annual_change":
		result = t.rankByAverageAnnualChange()
	case action == "seasonal_consistency" && region != "":
		result = t.seasonalConsistency(region)
	case action == "sea_level_hotspots":
		result = t.seaLevelHotspots()
	case action == "trend_reversal_detection" && region != "":
		result = t.trendReversalDetection(region)
	case action == "acceleration_analysis" && region != "":
		result = t.accelerationAnalysis(region)
	case action == "leading_lagging_indicators" && region != "" && region2 != "":
		result = t.leadingLaggingIndicators(region, region2)
	case action == "forecast_sea_level" && region != "":
		result = t.forecastSeaLevel(region)
	case action == "monthly_vs_annual_fluctuations" && region != "":
		result = t.monthlyVsAnnualFluctuations(region)
	case action == "extreme_event_frequency_duration" && region != "":
		result = t.extremeEventFrequencyDuration(region, orDefault(threshold, defaultZThreshold))
	case action == "dominant_trends" && region != "":
		result = t.dominantTrends(region)
	case action == "stabilization_events" && region != "":
		result = t.stabilizationEvents(region, orDefault(threshold, defaultStabilityThreshold))
	case action == "seasonal_vs_non_seasonal_variation" && region != "":
		result = t.seasonalVsNonSeasonalVariation(region)
	case action == "peak_to_trough_analysis" && region != "":
		result = t.peakToTroughAnalysis(region, period)
	default:
		result = params.Invalid()
	}
	return dataset.Normalize(result).(map[string]any)
}

func orDefault(v, def float64) float64 {
	if math.IsNaN(v) {
		return def
	}
	return v
}

// regionData returns the region's rows in date order, or an error mapping
// when the region is unknown.
func (t *Tool) regionData(region string) (*dataset.Table, map[string]any) {
	data := t.data.Filter(dataset.CategoryIs(region)).SortedByDate()
	if data.Empty() {
		return nil, params.Error("no sea level data for region %q", region)
	}
	return data, nil
}

// yearlyAverages returns the mean value per year in ascending year order.
func yearlyAverages(data *dataset.Table) (years []float64, avgs []float64) {
	groups := make(map[int][]float64)
	for _, o := range data.Rows() {
		y := o.Date.Year()
		groups[y] = append(groups[y], o.Value)
	}
	ys := make([]int, 0, len(groups))
	for y := range groups {
		ys = append(ys, y)
	}
	sort.Ints(ys)
	for _, y := range ys {
		years = append(years, float64(y))
		avgs = append(avgs, timeseries.Mean(groups[y]))
	}
	return years, avgs
}

func record(o dataset.Observation) map[string]any {
	return map[string]any{
		"Measure": o.Category,
		"Date":    o.Date,
		"Value":   o.Value,
	}
}

// temporalPatterns flags observations whose absolute z-score exceeds the
// anomaly threshold.
func (t *Tool) temporalPatterns(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	z := timeseries.ZScores(data.Values())
	anomalies := []map[string]any{}
	for i, o := range data.Rows() {
		if math.Abs(z[i]) > defaultZThreshold {
			anomalies = append(anomalies, record(o))
		}
	}
	return map[string]any{"Region": region, "Anomalies": anomalies}
}

// compareVariability reports the standard deviation of each region's values.
func (t *Tool) compareVariability() map[string]any {
	out := map[string]any{}
	for region, values := range t.data.GroupValues(func(o dataset.Observation) string { return o.Category }) {
		out[region] = timeseries.StdDev(values)
	}
	return out
}

// correlationBetweenRegions computes the Pearson correlation of two regions
// over their overlapping dates, averaging duplicate measurements per date.
func (t *Tool) correlationBetweenRegions(region1, region2 string) map[string]any {
	byDate := func(region string) map[int64][]float64 {
		out := make(map[int64][]float64)
		for _, o := range t.data.Filter(dataset.CategoryIs(region)).Rows() {
			out[o.Date.Unix()] = append(out[o.Date.Unix()], o.Value)
		}
		return out
	}
	d1, d2 := byDate(region1), byDate(region2)

	shared := make([]int64, 0, len(d1))
	for date := range d1 {
		if _, ok := d2[date]; ok {
			shared = append(shared, date)
		}
	}
	if len(shared) < 2 {
		return params.Error("Insufficient overlapping data for correlation calculation: only %d overlapping points found", len(shared))
	}
	sort.Slice(shared, func(i, j int) bool { return shared[i] < shared[j] })

	x := make([]float64, len(shared))
	y := make([]float64, len(shared))
	for i, date := range shared {
		x[i] = timeseries.Mean(d1[date])
		y[i] = timeseries.Mean(d2[date])
	}
	corr, err := timeseries.Correlation(x, y)
	if err != nil {
		return params.Error("Correlation could not be computed due to data limitations")
	}
	return map[string]any{"Region1": region1, "Region2": region2, "Correlation": corr}
}

// trendWithOutliers compares the least-squares slope of the full series to
// the slope after dropping z-score outliers.
func (t *Tool) trendWithOutliers(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	values := data.Values()
	withOutliers, err := timeseries.IndexSlope(values)
	if err != nil {
		return params.Error("%s", err)
	}
	z := timeseries.ZScores(values)
	var kept []float64
	for i, v := range values {
		if math.Abs(z[i]) < defaultZThreshold {
			kept = append(kept, v)
		}
	}
	withoutOutliers, err := timeseries.IndexSlope(kept)
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{
		"Region":                 region,
		"Slope With Outliers":    withOutliers,
		"Slope Without Outliers": withoutOutliers,
	}
}

// seasonalPeaksTroughs finds the calendar months with the highest and
// lowest average sea level.
func (t *Tool) seasonalPeaksTroughs(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	monthly := data.GroupValues(func(o dataset.Observation) string {
		return strconv.Itoa(int(o.Date.Month()))
	})
	peak, trough := 0, 0
	var peakAvg, troughAvg float64
	for m := 1; m <= 12; m++ {
		values, ok := monthly[strconv.Itoa(m)]
		if !ok {
			continue
		}
		avg := timeseries.Mean(values)
		if peak == 0 || avg > peakAvg {
			peak, peakAvg = m, avg
		}
		if trough == 0 || avg < troughAvg {
			trough, troughAvg = m, avg
		}
	}
	return map[string]any{"Region": region, "Seasonal Peaks": peak, "Troughs": trough}
}

// annualRateOfChange regresses yearly average sea level on the year.
func (t *Tool) annualRateOfChange(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	years, avgs := yearlyAverages(data)
	slope, err := timeseries.Slope(years, avgs)
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{"Region": region, "Annual Rate of Change": slope}
}

// positiveNegativeRatio counts rising versus falling observations. When no
// negative observations exist the ratio is reported as null rather than
// dividing by zero.
func (t *Tool) positiveNegativeRatio(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	positives, negatives := 0, 0
	for _, v := range data.Values() {
		switch {
		case v > 0:
			positives++
		case v < 0:
			negatives++
		}
	}
	result := map[string]any{
		"Region":         region,
		"Positive Count": positives,
		"Negative Count": negatives,
	}
	if negatives == 0 {
		result["Positive to Negative Ratio"] = nil
		result["Note"] = "no negative observations in this region"
	} else {
		result["Positive to Negative Ratio"] = float64(positives) / float64(negatives)
	}
	return result
}

// consistencyOverTime measures the spread of yearly average sea levels.
func (t *Tool) consistencyOverTime(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	_, avgs := yearlyAverages(data)
	return map[string]any{"Region": region, "Consistency Over Time": timeseries.StdDev(avgs)}
}

// decadalShifts averages sea level per decade.
func (t *Tool) decadalShifts(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	groups := data.GroupValues(func(o dataset.Observation) string {
		return strconv.Itoa(dataset.Decade(o.Date.Year()))
	})
	out := map[string]any{}
	for decade, values := range groups {
		out[decade] = timeseries.Mean(values)
	}
	return out
}

// rankByAverageAnnualChange averages each region's yearly means.
func (t *Tool) rankByAverageAnnualChange() map[string]any {
	out := map[string]any{}
	for _, region := range t.data.Categories() {
		data := t.data.Filter(dataset.CategoryIs(region))
		_, avgs := yearlyAverages(data)
		out[region] = timeseries.Mean(avgs)
	}
	return out
}

// seasonalConsistency measures how much each season's yearly averages vary.
func (t *Tool) seasonalConsistency(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	// season -> year -> values
	buckets := make(map[int]map[int][]float64)
	for _, o := range data.Rows() {
		season := dataset.Season(o.Date.Month())
		if buckets[season] == nil {
			buckets[season] = make(map[int][]float64)
		}
		buckets[season][o.Date.Year()] = append(buckets[season][o.Date.Year()], o.Value)
	}
	out := map[string]any{}
	for season, years := range buckets {
		var yearlyMeans []float64
		for _, values := range years {
			yearlyMeans = append(yearlyMeans, timeseries.Mean(values))
		}
		out[strconv.Itoa(season)] = timeseries.StdDev(yearlyMeans)
	}
	return out
}

// seaLevelHotspots reports the regions with the highest average change.
func (t *Tool) seaLevelHotspots() map[string]any {
	type regionAvg struct {
		region string
		avg    float64
	}
	var avgs []regionAvg
	for region, values := range t.data.GroupValues(func(o dataset.Observation) string { return o.Category }) {
		avgs = append(avgs, regionAvg{region, timeseries.Mean(values)})
	}
	sort.Slice(avgs, func(i, j int) bool { return avgs[i].avg > avgs[j].avg })
	if len(avgs) > hotspotCount {
		avgs = avgs[:hotspotCount]
	}
	out := map[string]any{}
	for _, ra := range avgs {
		out[ra.region] = ra.avg
	}
	return out
}

// trendReversalDetection counts direction changes in consecutive
// observation differences.
func (t *Tool) trendReversalDetection(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	return map[string]any{"Region": region, "Reversals": timeseries.TrendReversals(data.Values())}
}

// accelerationAnalysis fits yearly averages with a quadratic and reports
// the second-order coefficient.
func (t *Tool) accelerationAnalysis(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	_, avgs := yearlyAverages(data)
	accel, err := timeseries.QuadraticCoefficient(avgs)
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{"Region": region, "Acceleration": accel}
}

// leadingLaggingIndicators cross-correlates two regions' series to find the
// lag at which they align best.
func (t *Tool) leadingLaggingIndicators(region1, region2 string) map[string]any {
	data1, errMap := t.regionData(region1)
	if errMap != nil {
		return errMap
	}
	data2, errMap := t.regionData(region2)
	if errMap != nil {
		return errMap
	}
	lag, err := timeseries.CrossCorrelationLag(data1.Values(), data2.Values())
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{"Lag between regions": lag}
}

// forecastSeaLevel predicts the next periods with an ARIMA(1,1,1) model.
func (t *Tool) forecastSeaLevel(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	forecast, err := timeseries.ForecastARIMA(data.Values(), forecastHorizon)
	if err != nil {
		return params.Error("%s", err)
	}
	return map[string]any{"Region": region, "Forecast": forecast}
}

// monthlyVsAnnualFluctuations compares the average within-month and
// within-year standard deviations.
func (t *Tool) monthlyVsAnnualFluctuations(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	avgStd := func(groups map[string][]float64) float64 {
		var stds []float64
		for _, values := range groups {
			stds = append(stds, timeseries.StdDev(values))
		}
		return timeseries.Mean(stds)
	}
	monthly := data.GroupValues(func(o dataset.Observation) string {
		return strconv.Itoa(int(o.Date.Month()))
	})
	annual := data.GroupValues(func(o dataset.Observation) string {
		return strconv.Itoa(o.Date.Year())
	})
	return map[string]any{
		"Monthly Fluctuations": avgStd(monthly),
		"Annual Fluctuations":  avgStd(annual),
	}
}

// extremeEventFrequencyDuration counts threshold-exceeding observations and
// the longest consecutive run of them.
func (t *Tool) extremeEventFrequencyDuration(region string, threshold float64) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	z := timeseries.ZScores(data.Values())
	frequency, run, maxRun := 0, 0, 0
	for _, v := range z {
		if math.Abs(v) > threshold {
			frequency++
			run++
			if run > maxRun {
				maxRun = run
			}
		} else {
			run = 0
		}
	}
	return map[string]any{"Frequency": frequency, "Max Duration": maxRun}
}

// dominantTrends classifies the yearly-average slope as rising, falling or
// stable.
func (t *Tool) dominantTrends(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	years, avgs := yearlyAverages(data)
	slope, err := timeseries.Slope(years, avgs)
	if err != nil {
		return params.Error("%s", err)
	}
	trend := "Stable"
	switch {
	case slope > 0:
		trend = "Rising"
	case slope < 0:
		trend = "Falling"
	}
	return map[string]any{"Region": region, "Trend": trend}
}

// stabilizationEvents reports observations inside a centered rolling window
// whose peak-to-trough range stays under the threshold.
func (t *Tool) stabilizationEvents(region string, threshold float64) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	ranges := timeseries.RollingRange(data.Values(), stabilizationWindow)
	stable := []map[string]any{}
	for i, o := range data.Rows() {
		if !math.IsNaN(ranges[i]) && ranges[i] < threshold {
			stable = append(stable, map[string]any{"Date": o.Date, "Value": o.Value})
		}
	}
	return map[string]any{"Region": region, "Stable Periods": stable}
}

// seasonalVsNonSeasonalVariation decomposes the series and classifies it by
// the share of variance the seasonal component explains.
func (t *Tool) seasonalVsNonSeasonalVariation(region string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	strength, err := timeseries.SeasonalStrength(data.Values(), seasonalPeriod)
	if err != nil {
		return params.Error("%s", err)
	}
	variation := "Non-Seasonal"
	if strength > 0.5 {
		variation = "Seasonal"
	}
	return map[string]any{"Region": region, "Seasonal Variation": variation}
}

// peakToTroughAnalysis reports the max-min value range per year or per
// month. Keys are period starts ("2006" or "2006-01") so they sort
// chronologically.
func (t *Tool) peakToTroughAnalysis(region string, period string) map[string]any {
	data, errMap := t.regionData(region)
	if errMap != nil {
		return errMap
	}
	var key func(o dataset.Observation) string
	switch period {
	case "Y", "YE":
		key = func(o dataset.Observation) string { return strconv.Itoa(o.Date.Year()) }
	case "M":
		key = func(o dataset.Observation) string {
			return fmt.Sprintf("%04d-%02d", o.Date.Year(), int(o.Date.Month()))
		}
	default:
		return params.Error("Unsupported period. Use 'Y' for yearly or 'M' for monthly")
	}
	out := map[string]any{}
	for bucket, values := range data.GroupValues(key) {
		lo, hi := values[0], values[0]
		for _, v := range values[1:] {
			lo = math.Min(lo, v)
			hi = math.Max(hi, v)
		}
		out[bucket] = hi - lo
	}
	return out
}
