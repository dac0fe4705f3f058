package panel

import (
	"fmt"
	"sort"
	"time"
)

// DefaultClearSkyIrradiance is a reasonable clear-sky direct-normal
// irradiance in W/m² at sea level (standard test condition value).
const DefaultClearSkyIrradiance = 1000.0

// IrradianceModel supplies direct-normal irradiance in W/m² for any
// instant. The closed set of implementations is ConstantIrradiance for
// clear-sky assumptions and SeriesIrradiance for caller-supplied
// measurements or forecasts.
type IrradianceModel interface {
	At(t time.Time) float64
}

// ConstantIrradiance is a fixed clear-sky irradiance in W/m².
type ConstantIrradiance float64

// At returns the constant irradiance regardless of time.
func (c ConstantIrradiance) At(time.Time) float64 {
	return float64(c)
}

// IrradianceSample is one timestamped irradiance observation in W/m².
type IrradianceSample struct {
	Time       time.Time `json:"time"`
	Irradiance float64   `json:"irradiance"`
}

// SeriesIrradiance is a time-keyed irradiance series, typically an
// hourly forecast. Lookups step through the series: At returns the
// value of the most recent sample at or before the queried instant and
// zero before the first sample.
type SeriesIrradiance struct {
	samples []IrradianceSample
}

// NewSeries builds a SeriesIrradiance from the given samples. The input
// is copied and sorted by time; it must not be empty, and no sample may
// carry a negative irradiance.
func NewSeries(samples []IrradianceSample) (*SeriesIrradiance, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("irradiance series must not be empty")
	}

	copied := make([]IrradianceSample, len(samples))
	copy(copied, samples)
	sort.Slice(copied, func(i, j int) bool {
		return copied[i].Time.Before(copied[j].Time)
	})

	for _, s := range copied {
		if s.Irradiance < 0 {
			return nil, fmt.Errorf("irradiance must be non-negative, got %f at %s",
				s.Irradiance, s.Time.Format(time.RFC3339))
		}
	}

	return &SeriesIrradiance{samples: copied}, nil
}

// At returns the irradiance of the most recent sample at or before t,
// or zero if t precedes the series.
func (s *SeriesIrradiance) At(t time.Time) float64 {
	// First sample strictly after t; the one before it governs.
	idx := sort.Search(len(s.samples), func(i int) bool {
		return s.samples[i].Time.After(t)
	})
	if idx == 0 {
		return 0
	}
	return s.samples[idx-1].Irradiance
}

// Span returns the time range covered by the series.
func (s *SeriesIrradiance) Span() (start, end time.Time) {
	return s.samples[0].Time, s.samples[len(s.samples)-1].Time
}
