package solarpos

import (
	"fmt"
	"math"
	"time"
)

// GeometricHorizon is the horizon altitude for a purely geometric
// sunrise/sunset: the center of the solar disk crossing altitude zero.
const GeometricHorizon = 0.0

// StandardHorizon is the conventional sunrise/sunset altitude of
// -0.833°, accounting for average atmospheric refraction and the
// apparent radius of the solar disk.
const StandardHorizon = -0.833

// DayKind distinguishes ordinary days from the degenerate polar cases.
type DayKind int

const (
	// NormalDay means the sun crosses the horizon: sunrise and sunset exist.
	NormalDay DayKind = iota
	// PolarDay means the sun stays above the horizon for the whole day.
	PolarDay
	// PolarNight means the sun stays below the horizon for the whole day.
	PolarNight
)

// String returns a human-readable name for the day kind.
func (k DayKind) String() string {
	switch k {
	case NormalDay:
		return "normal"
	case PolarDay:
		return "polar_day"
	case PolarNight:
		return "polar_night"
	default:
		return fmt.Sprintf("unknown(%d)", int(k))
	}
}

// Summary describes sunrise, sunset, solar noon and day length for one
// date at one location. For PolarDay and PolarNight the Sunrise and
// Sunset fields are zero and DayLength is pinned to 24h and 0h
// respectively; SolarNoon is always populated.
type Summary struct {
	Kind      DayKind       `json:"kind"`
	Sunrise   time.Time     `json:"sunrise,omitempty"`
	Sunset    time.Time     `json:"sunset,omitempty"`
	SolarNoon time.Time     `json:"solar_noon"`
	DayLength time.Duration `json:"day_length"`
}

// DaySummary computes sunrise, sunset, solar noon and day length for
// the UTC date of the given instant, using the geometric horizon.
func DaySummary(date time.Time, loc Location) (Summary, error) {
	return DaySummaryAltitude(date, loc, GeometricHorizon)
}

// DaySummaryAltitude is DaySummary with an explicit horizon altitude in
// degrees. Pass StandardHorizon for the conventional refraction-corrected
// sunrise/sunset definition.
//
// Latitudes at exactly ±90° make the hour-angle equation singular; the
// result there is the polar-day/polar-night classification implied by
// the sign of the declination, not a precise geometry.
func DaySummaryAltitude(date time.Time, loc Location, horizonAltitude float64) (Summary, error) {
	if date.IsZero() {
		return Summary{}, fmt.Errorf("date must be set")
	}
	if err := loc.Validate(); err != nil {
		return Summary{}, fmt.Errorf("invalid location: %w", err)
	}

	u := date.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	// Solar noon from the equation of time, first evaluated at civil
	// noon and then refined once at the estimated solar noon.
	noonMin := solarNoonMinutes(midnight.Add(12*time.Hour), loc)
	noon := midnight.Add(minutesToDuration(noonMin))
	noonMin = solarNoonMinutes(noon, loc)
	noon = midnight.Add(minutesToDuration(noonMin))

	eph := solarEphemeris(noon)

	latRad := degToRad(loc.Latitude)
	declRad := degToRad(eph.declination)

	// Hour angle of the horizon crossing:
	// cos ω₀ = (sin h₀ − sin φ sin δ) / (cos φ cos δ).
	// With h₀ = 0 this reduces to −tan φ · tan δ.
	cosHA := (math.Sin(degToRad(horizonAltitude)) - math.Sin(latRad)*math.Sin(declRad)) /
		(math.Cos(latRad) * math.Cos(declRad))

	if math.IsNaN(cosHA) {
		// Exactly at a pole: the horizon crossing degenerates, classify
		// by whether the sun sits above or below the celestial equator.
		cosHA = math.Inf(1)
		if loc.Latitude*eph.declination > 0 {
			cosHA = math.Inf(-1)
		}
	}
	if cosHA > 1 {
		// The sun never reaches the horizon from below.
		return Summary{Kind: PolarNight, SolarNoon: noon, DayLength: 0}, nil
	}
	if cosHA < -1 {
		// The sun never drops below the horizon.
		return Summary{Kind: PolarDay, SolarNoon: noon, DayLength: 24 * time.Hour}, nil
	}

	haMin := radToDeg(math.Acos(cosHA)) * 4 // 4 minutes per degree
	sunrise := midnight.Add(minutesToDuration(noonMin - haMin))
	sunset := midnight.Add(minutesToDuration(noonMin + haMin))

	return Summary{
		Kind:      NormalDay,
		Sunrise:   sunrise,
		Sunset:    sunset,
		SolarNoon: noon,
		DayLength: sunset.Sub(sunrise),
	}, nil
}

// solarNoonMinutes returns solar noon as minutes from UTC midnight for
// the day of t: 720 minus the longitude offset and the equation of time.
func solarNoonMinutes(t time.Time, loc Location) float64 {
	eph := solarEphemeris(t)
	return 720 - 4*loc.Longitude - eph.eqTimeMin
}

func minutesToDuration(min float64) time.Duration {
	return time.Duration(math.Round(min * float64(time.Minute)))
}

// Sample is one point of a daily sun-path curve, suitable for charting.
type Sample struct {
	Time     time.Time `json:"time"`
	Altitude float64   `json:"altitude"`
	Azimuth  float64   `json:"azimuth"`
}

// DefaultProfileStep is the sampling interval used by Profile when the
// caller passes a non-positive step.
const DefaultProfileStep = 10 * time.Minute

// Profile samples the sun's altitude and azimuth across the UTC date of
// the given instant, from midnight to midnight inclusive.
func Profile(date time.Time, loc Location, step time.Duration) ([]Sample, error) {
	if step <= 0 {
		step = DefaultProfileStep
	}
	if date.IsZero() {
		return nil, fmt.Errorf("date must be set")
	}
	if err := loc.Validate(); err != nil {
		return nil, fmt.Errorf("invalid location: %w", err)
	}

	u := date.UTC()
	midnight := time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)

	var samples []Sample
	for offset := time.Duration(0); offset <= 24*time.Hour; offset += step {
		t := midnight.Add(offset)
		pos, err := Position(t, loc)
		if err != nil {
			return nil, err
		}
		samples = append(samples, Sample{Time: t, Altitude: pos.Altitude, Azimuth: pos.Azimuth})
	}
	return samples, nil
}
