package solarpos

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

// Location identifies an observer on Earth.
type Location struct {
	Latitude  float64 `json:"latitude"`            // degrees, -90..90
	Longitude float64 `json:"longitude"`           // degrees, -180..180, east positive
	Elevation float64 `json:"elevation,omitempty"` // meters above sea level, >= 0
}

// Validate checks that the location coordinates are within acceptable ranges.
func (l Location) Validate() error {
	if l.Latitude < -90 || l.Latitude > 90 {
		return fmt.Errorf("latitude must be between -90 and 90, got %f", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return fmt.Errorf("longitude must be between -180 and 180, got %f", l.Longitude)
	}
	if l.Elevation < 0 {
		return fmt.Errorf("elevation must be non-negative, got %f", l.Elevation)
	}
	return nil
}

// SunPosition is the topocentric position of the sun at a single instant.
// All angles are in degrees.
type SunPosition struct {
	Declination    float64 `json:"declination"`      // -23.45..23.45
	HourAngle      float64 `json:"hour_angle"`       // negative before solar noon
	Altitude       float64 `json:"altitude"`         // elevation above the horizon, -90..90
	Azimuth        float64 `json:"azimuth"`          // clockwise from true north, 0..360
	EquationOfTime float64 `json:"equation_of_time"` // minutes, apparent minus mean solar time
}

func degToRad(deg float64) float64 { return deg * math.Pi / 180.0 }
func radToDeg(rad float64) float64 { return rad * 180.0 / math.Pi }

// fixAngle normalizes an angle to [0, 360) degrees.
func fixAngle(a float64) float64 {
	return a - 360.0*math.Floor(a/360.0)
}

// clamp1 limits x to [-1, 1] so inverse trigonometric functions never
// receive arguments pushed out of domain by floating-point rounding.
func clamp1(x float64) float64 {
	return math.Max(-1.0, math.Min(1.0, x))
}

// ephemeris holds the low-precision solar coordinates shared between the
// position and day-summary calculations.
type ephemeris struct {
	declination float64 // degrees
	eqTimeMin   float64 // minutes
}

// solarEphemeris evaluates the polynomial solar series for the given
// instant: Julian centuries since J2000.0, apparent ecliptic longitude,
// obliquity, declination and the equation of time.
func solarEphemeris(t time.Time) ephemeris {
	jd := julian.TimeToJD(t.UTC())
	T := (jd - 2451545.0) / 36525.0

	L0 := fixAngle(280.46646 + T*(36000.76983+T*0.0003032)) // mean longitude
	M := fixAngle(357.52911 + T*(35999.05029-T*0.0001537))  // mean anomaly
	e := 0.016708634 - T*(0.000042037+T*0.0000001267)       // orbital eccentricity

	// Equation of center and apparent longitude, corrected for nutation.
	C := math.Sin(degToRad(M))*(1.914602-T*(0.004817+T*0.000014)) +
		math.Sin(degToRad(2*M))*(0.019993-T*0.000101) +
		math.Sin(degToRad(3*M))*0.000289
	omega := 125.04 - 1934.136*T
	lambda := L0 + C - 0.00569 - 0.00478*math.Sin(degToRad(omega))

	// Obliquity of the ecliptic.
	eps0 := 23 + (26+(21.448-T*(46.815+T*(0.00059-T*0.001813)))/60)/60
	eps := eps0 + 0.00256*math.Cos(degToRad(omega))

	decl := radToDeg(math.Asin(clamp1(math.Sin(degToRad(eps)) * math.Sin(degToRad(lambda)))))

	y := math.Tan(degToRad(eps0)/2) * math.Tan(degToRad(eps0)/2)
	eqTimeMin := radToDeg(y*math.Sin(degToRad(2*L0))-
		2*e*math.Sin(degToRad(M))+
		4*e*y*math.Sin(degToRad(M))*math.Cos(degToRad(2*L0))-
		0.5*y*y*math.Sin(degToRad(4*L0))-
		1.25*e*e*math.Sin(degToRad(2*M))) * 4 // 4 minutes per degree

	return ephemeris{declination: decl, eqTimeMin: eqTimeMin}
}

// Position computes the topocentric sun position for the given instant
// and observer location. The instant is normalized to UTC before use,
// so it must carry the intended offset.
func Position(t time.Time, loc Location) (SunPosition, error) {
	if t.IsZero() {
		return SunPosition{}, fmt.Errorf("timestamp must be set")
	}
	if err := loc.Validate(); err != nil {
		return SunPosition{}, fmt.Errorf("invalid location: %w", err)
	}

	eph := solarEphemeris(t)

	// True solar time in minutes: UTC clock time shifted by longitude
	// (4 min per degree) and the equation of time.
	utc := t.UTC()
	utcMin := float64(utc.Hour()*60+utc.Minute()) + float64(utc.Second())/60.0
	tst := utcMin + 4*loc.Longitude + eph.eqTimeMin

	// Hour angle, normalized to (-180, 180] with solar noon at zero.
	ha := tst/4 - 180
	ha = math.Mod(ha+540, 360) - 180

	latRad := degToRad(loc.Latitude)
	declRad := degToRad(eph.declination)
	haRad := degToRad(ha)

	sinAlt := math.Sin(latRad)*math.Sin(declRad) +
		math.Cos(latRad)*math.Cos(declRad)*math.Cos(haRad)
	sinAlt = clamp1(sinAlt)
	altRad := math.Asin(sinAlt)

	pos := SunPosition{
		Declination:    eph.declination,
		HourAngle:      ha,
		Altitude:       radToDeg(altRad),
		EquationOfTime: eph.eqTimeMin,
	}
	pos.Azimuth = azimuth(latRad, declRad, sinAlt, altRad, ha)
	return pos, nil
}

// azimuth computes the compass direction of the sun, clockwise from
// true north in [0, 360). The arccosine identity yields the morning
// branch; afternoon positions mirror to the western half.
func azimuth(latRad, declRad, sinAlt, altRad, haDeg float64) float64 {
	den := math.Cos(latRad) * math.Cos(altRad)
	if math.Abs(den) < 1e-12 {
		// Sun at the zenith (or observer at a pole): azimuth is
		// undefined, report north.
		return 0
	}
	cosAz := (math.Sin(declRad) - math.Sin(latRad)*sinAlt) / den
	az := radToDeg(math.Acos(clamp1(cosAz)))
	if haDeg > 0 {
		az = 360 - az
	}
	return fixAngle(az)
}
