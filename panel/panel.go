// Package panel models the energy output of a fixed-tilt flat-plate
// solar panel from the sun positions computed by the solarpos package.
//
// A Panel is an immutable configuration value validated at construction.
// Power and energy calculations are pure functions: the incidence angle
// comes from the spherical law of cosines between the sun direction and
// the panel normal, instantaneous power from the direct-normal
// irradiance projected onto the panel plane, and daily energy from
// trapezoidal integration of the power curve between sunrise and sunset.
package panel

import (
	"fmt"
	"math"

	"github.com/devskill-org/suntrack/solarpos"
)

// Panel describes a fixed flat-plate panel installation.
type Panel struct {
	Tilt       float64 `json:"tilt"`       // degrees from horizontal, 0..90
	Azimuth    float64 `json:"azimuth"`    // facing direction, degrees clockwise from north, 0..360
	Area       float64 `json:"area"`       // m², > 0
	Efficiency float64 `json:"efficiency"` // conversion efficiency, 0..1
}

// New constructs a validated Panel.
func New(tilt, azimuth, area, efficiency float64) (Panel, error) {
	p := Panel{Tilt: tilt, Azimuth: azimuth, Area: area, Efficiency: efficiency}
	if err := p.Validate(); err != nil {
		return Panel{}, err
	}
	return p, nil
}

// Validate checks that the panel parameters are within acceptable ranges.
func (p Panel) Validate() error {
	if p.Tilt < 0 || p.Tilt > 90 {
		return fmt.Errorf("tilt must be between 0 and 90, got %f", p.Tilt)
	}
	if p.Azimuth < 0 || p.Azimuth > 360 {
		return fmt.Errorf("azimuth must be between 0 and 360, got %f", p.Azimuth)
	}
	if p.Area <= 0 {
		return fmt.Errorf("area must be positive, got %f", p.Area)
	}
	if p.Efficiency < 0 || p.Efficiency > 1 {
		return fmt.Errorf("efficiency must be between 0 and 1, got %f", p.Efficiency)
	}
	return nil
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

func clamp1(x float64) float64 {
	return math.Max(-1.0, math.Min(1.0, x))
}

// IncidenceAngle returns the angle in degrees between the incoming
// sunlight and the panel's surface normal. Zero means the sun is
// perpendicular to the panel; values of 90 and above mean the sunlight
// arrives edge-on or from behind the panel plane.
//
// cos θ = cos z · cos β + sin z · sin β · cos(γ_sun − γ_panel)
// where z is the solar zenith angle and β the panel tilt.
func (p Panel) IncidenceAngle(sun solarpos.SunPosition) float64 {
	zenith := degToRad(90 - sun.Altitude)
	tilt := degToRad(p.Tilt)
	azDiff := degToRad(sun.Azimuth - p.Azimuth)

	cosTheta := math.Cos(zenith)*math.Cos(tilt) +
		math.Sin(zenith)*math.Sin(tilt)*math.Cos(azDiff)

	return radToDeg(math.Acos(clamp1(cosTheta)))
}

// InstantPower returns the electrical power in watts produced by the
// panel for the given sun position and direct-normal irradiance in
// W/m². The result is zero whenever the sun is at or below the horizon
// or behind the panel plane; it is never negative.
func (p Panel) InstantPower(sun solarpos.SunPosition, directNormal float64) float64 {
	if sun.Altitude <= 0 || directNormal <= 0 {
		return 0
	}

	theta := p.IncidenceAngle(sun)
	if theta >= 90 {
		return 0
	}

	surfaceIrradiance := directNormal * math.Cos(degToRad(theta))
	return surfaceIrradiance * p.Area * p.Efficiency
}
