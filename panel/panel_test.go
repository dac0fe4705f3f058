package panel

import (
	"math"
	"testing"

	"github.com/devskill-org/suntrack/solarpos"
)

func TestNewValidation(t *testing.T) {
	tests := []struct {
		name                     string
		tilt, azimuth, area, eff float64
		wantErr                  bool
	}{
		{"valid south 30", 30, 180, 1.6, 0.2, false},
		{"flat panel", 0, 0, 1.0, 0.18, false},
		{"vertical panel", 90, 270, 2.0, 1.0, false},
		{"tilt too high", 90.1, 180, 1.6, 0.2, true},
		{"negative tilt", -1, 180, 1.6, 0.2, true},
		{"azimuth out of range", 30, 361, 1.6, 0.2, true},
		{"negative azimuth", 30, -10, 1.6, 0.2, true},
		{"zero area", 30, 180, 0, 0.2, true},
		{"negative area", 30, 180, -1.6, 0.2, true},
		{"efficiency above one", 30, 180, 1.6, 1.1, true},
		{"negative efficiency", 30, 180, 1.6, -0.1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tilt, tt.azimuth, tt.area, tt.eff)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIncidenceAnglePerpendicular(t *testing.T) {
	// A panel facing south at tilt 30 sees the sun perpendicular when
	// the sun stands due south at altitude 60 (zenith 30).
	p := Panel{Tilt: 30, Azimuth: 180, Area: 1, Efficiency: 1}
	sun := solarpos.SunPosition{Altitude: 60, Azimuth: 180}

	if got := p.IncidenceAngle(sun); math.Abs(got) > 1e-9 {
		t.Errorf("IncidenceAngle = %f, want 0", got)
	}
}

func TestIncidenceAngleFlatPanel(t *testing.T) {
	// A flat panel with the sun at the zenith: incidence 0 regardless of
	// azimuth.
	p := Panel{Tilt: 0, Azimuth: 123, Area: 1, Efficiency: 1}
	sun := solarpos.SunPosition{Altitude: 90, Azimuth: 42}

	if got := p.IncidenceAngle(sun); math.Abs(got) > 1e-9 {
		t.Errorf("IncidenceAngle = %f, want 0", got)
	}
}

func TestIncidenceAngleVerticalPanel(t *testing.T) {
	p := Panel{Tilt: 90, Azimuth: 180, Area: 1, Efficiency: 1}

	// Sun on the southern horizon: dead-on.
	front := p.IncidenceAngle(solarpos.SunPosition{Altitude: 0, Azimuth: 180})
	if math.Abs(front) > 1e-9 {
		t.Errorf("Front incidence = %f, want 0", front)
	}

	// Sun on the northern horizon: square behind the panel.
	back := p.IncidenceAngle(solarpos.SunPosition{Altitude: 0, Azimuth: 0})
	if math.Abs(back-180) > 1e-9 {
		t.Errorf("Back incidence = %f, want 180", back)
	}
}

func TestInstantPowerZeroBelowHorizon(t *testing.T) {
	panels := []Panel{
		{Tilt: 0, Azimuth: 0, Area: 1, Efficiency: 0.2},
		{Tilt: 45, Azimuth: 90, Area: 10, Efficiency: 1},
		{Tilt: 90, Azimuth: 270, Area: 2.5, Efficiency: 0.5},
	}

	for _, p := range panels {
		for _, alt := range []float64{0, -0.1, -30, -90} {
			sun := solarpos.SunPosition{Altitude: alt, Azimuth: 180}
			if got := p.InstantPower(sun, 1000); got != 0 {
				t.Errorf("InstantPower at altitude %f = %f, want 0", alt, got)
			}
		}
	}
}

func TestInstantPowerZeroBehindPanel(t *testing.T) {
	// Vertical south-facing panel with the sun high in the north.
	p := Panel{Tilt: 90, Azimuth: 180, Area: 1, Efficiency: 1}
	sun := solarpos.SunPosition{Altitude: 30, Azimuth: 0}

	if got := p.InstantPower(sun, 1000); got != 0 {
		t.Errorf("InstantPower behind panel = %f, want 0", got)
	}
}

func TestInstantPowerPerpendicular(t *testing.T) {
	p := Panel{Tilt: 30, Azimuth: 180, Area: 2, Efficiency: 0.2}
	sun := solarpos.SunPosition{Altitude: 60, Azimuth: 180}

	// Perpendicular incidence: power = irradiance × area × efficiency.
	want := 1000.0 * 2 * 0.2
	if got := p.InstantPower(sun, 1000); math.Abs(got-want) > 1e-6 {
		t.Errorf("InstantPower = %f, want %f", got, want)
	}
}

func TestInstantPowerCosineProjection(t *testing.T) {
	// Flat panel, sun at altitude 30: incidence 60, cos 0.5.
	p := Panel{Tilt: 0, Azimuth: 0, Area: 1, Efficiency: 1}
	sun := solarpos.SunPosition{Altitude: 30, Azimuth: 180}

	want := 1000.0 * 0.5
	if got := p.InstantPower(sun, 1000); math.Abs(got-want) > 1e-6 {
		t.Errorf("InstantPower = %f, want %f", got, want)
	}
}

func TestInstantPowerNeverNegative(t *testing.T) {
	p := Panel{Tilt: 60, Azimuth: 180, Area: 1.6, Efficiency: 0.21}

	for alt := -90.0; alt <= 90; alt += 5 {
		for az := 0.0; az < 360; az += 15 {
			sun := solarpos.SunPosition{Altitude: alt, Azimuth: az}
			if got := p.InstantPower(sun, 800); got < 0 {
				t.Fatalf("InstantPower(alt=%f az=%f) = %f, negative", alt, az, got)
			}
		}
	}
}

func TestInstantPowerIgnoresNonPositiveIrradiance(t *testing.T) {
	p := Panel{Tilt: 30, Azimuth: 180, Area: 1, Efficiency: 0.2}
	sun := solarpos.SunPosition{Altitude: 60, Azimuth: 180}

	if got := p.InstantPower(sun, 0); got != 0 {
		t.Errorf("InstantPower with zero irradiance = %f, want 0", got)
	}
	if got := p.InstantPower(sun, -100); got != 0 {
		t.Errorf("InstantPower with negative irradiance = %f, want 0", got)
	}
}
