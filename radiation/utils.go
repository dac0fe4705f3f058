package radiation

import (
	"fmt"
	"math"
	"time"
)

// timeLayout is the ISO8601 layout Open-Meteo uses for hourly
// timestamps when timezone=UTC is requested (no zone suffix).
const timeLayout = "2006-01-02T15:04"

// Sample is one timestamped irradiance value in W/m².
type Sample struct {
	Time  time.Time
	Value float64
}

// parseTimes converts the forecast's hourly timestamp strings to
// time.Time values in UTC.
func (f *Forecast) parseTimes() ([]time.Time, error) {
	if f == nil {
		return nil, fmt.Errorf("forecast is nil")
	}

	times := make([]time.Time, len(f.Hourly.Time))
	for i, s := range f.Hourly.Time {
		t, err := time.ParseInLocation(timeLayout, s, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("failed to parse timestamp %q: %w", s, err)
		}
		times[i] = t
	}
	return times, nil
}

// series pairs the parsed timestamps with one value slice.
func (f *Forecast) series(name string, values []float64) ([]Sample, error) {
	times, err := f.parseTimes()
	if err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("forecast has no %s series", name)
	}
	if len(values) != len(times) {
		return nil, fmt.Errorf("%s series has %d values for %d timestamps", name, len(values), len(times))
	}

	samples := make([]Sample, len(times))
	for i := range times {
		samples[i] = Sample{Time: times[i], Value: values[i]}
	}
	return samples, nil
}

// DirectNormalSeries returns the hourly direct normal irradiance
// forecast as timestamped samples.
func (f *Forecast) DirectNormalSeries() ([]Sample, error) {
	if f == nil {
		return nil, fmt.Errorf("forecast is nil")
	}
	return f.series("direct_normal_irradiance", f.Hourly.DirectNormalIrradiance)
}

// ShortwaveSeries returns the hourly global horizontal irradiance
// forecast as timestamped samples.
func (f *Forecast) ShortwaveSeries() ([]Sample, error) {
	if f == nil {
		return nil, fmt.Errorf("forecast is nil")
	}
	return f.series("shortwave_radiation", f.Hourly.ShortwaveRadiation)
}

// DiffuseSeries returns the hourly diffuse irradiance forecast as
// timestamped samples.
func (f *Forecast) DiffuseSeries() ([]Sample, error) {
	if f == nil {
		return nil, fmt.Errorf("forecast is nil")
	}
	return f.series("diffuse_radiation", f.Hourly.DiffuseRadiation)
}

// Nearest returns the sample closest in time to t, or nil for an empty
// series.
func Nearest(samples []Sample, t time.Time) *Sample {
	if len(samples) == 0 {
		return nil
	}

	best := 0
	bestDiff := math.Abs(samples[0].Time.Sub(t).Seconds())
	for i := 1; i < len(samples); i++ {
		diff := math.Abs(samples[i].Time.Sub(t).Seconds())
		if diff < bestDiff {
			best = i
			bestDiff = diff
		}
	}
	return &samples[best]
}
