package panel

import (
	"testing"
	"time"

	"github.com/devskill-org/suntrack/solarpos"
)

var (
	boulder = solarpos.Location{Latitude: 40.0, Longitude: -105.0}
	tromso  = solarpos.Location{Latitude: 70.0, Longitude: 25.0}
)

func southPanel(t *testing.T) Panel {
	t.Helper()
	p, err := New(30, 180, 1.6, 0.2)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return p
}

func TestDailyEnergyNonNegative(t *testing.T) {
	p := southPanel(t)
	dates := []time.Time{
		time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC),
	}

	for _, date := range dates {
		got, err := p.DailyEnergy(boulder, date, ConstantIrradiance(800), 5*time.Minute)
		if err != nil {
			t.Fatalf("DailyEnergy: %v", err)
		}
		if got < 0 {
			t.Errorf("DailyEnergy on %s = %f, negative", date.Format("2006-01-02"), got)
		}
		if got == 0 {
			t.Errorf("DailyEnergy on %s = 0, expected some production at latitude 40", date.Format("2006-01-02"))
		}
	}
}

func TestDailyEnergyMonotonicInIrradiance(t *testing.T) {
	p := southPanel(t)
	date := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	var prev float64
	for _, irr := range []float64{0, 200, 500, 800, 1000} {
		got, err := p.DailyEnergy(boulder, date, ConstantIrradiance(irr), 5*time.Minute)
		if err != nil {
			t.Fatalf("DailyEnergy: %v", err)
		}
		if got < prev {
			t.Errorf("DailyEnergy at %f W/m² = %f, less than %f at lower irradiance", irr, got, prev)
		}
		prev = got
	}
}

func TestDailyEnergyPolarNightIsZero(t *testing.T) {
	p := southPanel(t)
	got, err := p.DailyEnergy(tromso, time.Date(2024, 12, 21, 0, 0, 0, 0, time.UTC), ConstantIrradiance(1000), time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}
	if got != 0 {
		t.Errorf("DailyEnergy on a polar night = %f, want 0", got)
	}
}

func TestDailyEnergyPolarDayIntegratesFullDay(t *testing.T) {
	// Midnight sun: a flat panel produces around the clock.
	p, err := New(0, 0, 1.0, 1.0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	got, err := p.DailyEnergy(tromso, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), ConstantIrradiance(1000), 10*time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}
	if got <= 0 {
		t.Fatalf("DailyEnergy on a polar day = %f, want > 0", got)
	}

	// The sun never sets, so even the weakest hour contributes: the
	// total must exceed what the noon hours alone could deliver.
	if got < 3000 {
		t.Errorf("DailyEnergy on a polar day = %f Wh, suspiciously low", got)
	}
}

func TestDailyEnergyRejectsInvalidInput(t *testing.T) {
	p := southPanel(t)
	date := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	bad := Panel{Tilt: 120, Azimuth: 180, Area: 1, Efficiency: 0.2}
	if _, err := bad.DailyEnergy(boulder, date, ConstantIrradiance(1000), time.Minute); err == nil {
		t.Error("Expected error for invalid panel")
	}

	if _, err := p.DailyEnergy(boulder, date, nil, time.Minute); err == nil {
		t.Error("Expected error for nil irradiance model")
	}

	if _, err := p.DailyEnergy(solarpos.Location{Latitude: 95}, date, ConstantIrradiance(1000), time.Minute); err == nil {
		t.Error("Expected error for invalid location")
	}
}

func TestDailyEnergyStepIndependence(t *testing.T) {
	// Finer sampling should not change the result materially.
	p := southPanel(t)
	date := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	coarse, err := p.DailyEnergy(boulder, date, ConstantIrradiance(1000), 10*time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}
	fine, err := p.DailyEnergy(boulder, date, ConstantIrradiance(1000), time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}

	if diff := (coarse - fine) / fine; diff > 0.01 || diff < -0.01 {
		t.Errorf("Coarse %f Wh and fine %f Wh integration differ by more than 1%%", coarse, fine)
	}
}

func TestSeriesIrradiance(t *testing.T) {
	base := time.Date(2024, 6, 20, 10, 0, 0, 0, time.UTC)
	series, err := NewSeries([]IrradianceSample{
		{Time: base.Add(2 * time.Hour), Irradiance: 400}, // out of order on purpose
		{Time: base, Irradiance: 800},
		{Time: base.Add(time.Hour), Irradiance: 600},
	})
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	tests := []struct {
		at   time.Time
		want float64
	}{
		{base.Add(-time.Minute), 0}, // before the series
		{base, 800},
		{base.Add(30 * time.Minute), 800},
		{base.Add(time.Hour), 600},
		{base.Add(90 * time.Minute), 600},
		{base.Add(3 * time.Hour), 400}, // held after the last sample
	}
	for _, tt := range tests {
		if got := series.At(tt.at); got != tt.want {
			t.Errorf("At(%v) = %f, want %f", tt.at, got, tt.want)
		}
	}

	start, end := series.Span()
	if !start.Equal(base) || !end.Equal(base.Add(2*time.Hour)) {
		t.Errorf("Span() = %v..%v, want %v..%v", start, end, base, base.Add(2*time.Hour))
	}
}

func TestNewSeriesRejectsBadInput(t *testing.T) {
	if _, err := NewSeries(nil); err == nil {
		t.Error("Expected error for empty series")
	}

	if _, err := NewSeries([]IrradianceSample{{Time: time.Now(), Irradiance: -1}}); err == nil {
		t.Error("Expected error for negative irradiance")
	}
}

func TestDailyEnergyWithSeries(t *testing.T) {
	p := southPanel(t)
	date := time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)

	// Hourly clear-sky-ish forecast covering the whole day.
	var samples []IrradianceSample
	for h := 0; h < 24; h++ {
		irr := 0.0
		if h >= 6 && h <= 18 {
			irr = 700
		}
		samples = append(samples, IrradianceSample{Time: date.Add(time.Duration(h) * time.Hour), Irradiance: irr})
	}
	series, err := NewSeries(samples)
	if err != nil {
		t.Fatalf("NewSeries: %v", err)
	}

	fromSeries, err := p.DailyEnergy(boulder, date, series, 5*time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}
	fromConstant, err := p.DailyEnergy(boulder, date, ConstantIrradiance(700), 5*time.Minute)
	if err != nil {
		t.Fatalf("DailyEnergy: %v", err)
	}

	if fromSeries <= 0 {
		t.Fatalf("DailyEnergy with series = %f, want > 0", fromSeries)
	}
	// The series zeroes out part of the daylight window, so it can
	// never beat the constant model at the same level.
	if fromSeries > fromConstant {
		t.Errorf("Series energy %f exceeds constant-model energy %f", fromSeries, fromConstant)
	}
}
