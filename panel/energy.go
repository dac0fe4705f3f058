package panel

import (
	"fmt"
	"time"

	"github.com/devskill-org/suntrack/solarpos"
)

// DefaultEnergyStep is the sampling interval used by DailyEnergy when
// the caller passes a non-positive step.
const DefaultEnergyStep = time.Minute

// DailyEnergy integrates the panel's power output over the daylight
// portion of the UTC date of the given instant and returns watt-hours.
//
// The power curve is sampled every step between sunrise and sunset and
// summed with the trapezoidal rule. On a polar day the integration
// covers the full 24 hours; on a polar night the result is zero.
func (p Panel) DailyEnergy(loc solarpos.Location, date time.Time, model IrradianceModel, step time.Duration) (float64, error) {
	if err := p.Validate(); err != nil {
		return 0, fmt.Errorf("invalid panel: %w", err)
	}
	if model == nil {
		return 0, fmt.Errorf("irradiance model must not be nil")
	}
	if step <= 0 {
		step = DefaultEnergyStep
	}

	day, err := solarpos.DaySummary(date, loc)
	if err != nil {
		return 0, err
	}

	var start, end time.Time
	switch day.Kind {
	case solarpos.PolarNight:
		return 0, nil
	case solarpos.PolarDay:
		u := date.UTC()
		start = time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
		end = start.Add(24 * time.Hour)
	default:
		start = day.Sunrise
		end = day.Sunset
	}

	prevPower, err := p.powerAt(start, loc, model)
	if err != nil {
		return 0, err
	}

	var energyWh float64
	prevTime := start
	for t := start.Add(step); prevTime.Before(end); t = t.Add(step) {
		if t.After(end) {
			t = end
		}
		power, err := p.powerAt(t, loc, model)
		if err != nil {
			return 0, err
		}

		dt := t.Sub(prevTime).Hours()
		energyWh += (prevPower + power) / 2 * dt

		prevTime = t
		prevPower = power
	}

	return energyWh, nil
}

func (p Panel) powerAt(t time.Time, loc solarpos.Location, model IrradianceModel) (float64, error) {
	pos, err := solarpos.Position(t, loc)
	if err != nil {
		return 0, err
	}
	return p.InstantPower(pos, model.At(t)), nil
}
