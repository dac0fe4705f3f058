package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/devskill-org/suntrack/solarpos"
	"github.com/devskill-org/suntrack/utils"
)

// saveEnergyPeriod persists one integrated energy period to the database
func (e *Estimator) saveEnergyPeriod(deviceID int, data IntegratedEnergy) error {
	if e.db == nil {
		return fmt.Errorf("database connection not available")
	}

	_, err := e.db.Exec(
		`INSERT INTO energy_periods (
			timestamp, device_id,
			modeled_energy, measured_energy,
			sample_count, measured_sample_count
		) VALUES ($1, $2, $3, $4, $5, $6)`,
		data.timestamp, deviceID,
		data.modeledEnergy, data.measuredEnergy,
		data.sampleCount, data.measuredSamples,
	)
	if err != nil {
		return fmt.Errorf("failed to insert energy period: %w", err)
	}

	return nil
}

// DailyEstimate represents the expected production for one calendar day.
type DailyEstimate struct {
	Date           time.Time
	Kind           string
	Sunrise        *time.Time
	Sunset         *time.Time
	SolarNoon      time.Time
	DayLength      time.Duration
	ExpectedEnergy float64 // Wh
}

// saveDailyEstimates persists daily estimates to the database
func (e *Estimator) saveDailyEstimates(ctx context.Context, estimates []DailyEstimate) error {
	if e.db == nil {
		return fmt.Errorf("database connection not available")
	}

	if len(estimates) == 0 {
		return nil
	}

	// Begin transaction
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	// Prepare upsert statement
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO daily_estimates (
			date,
			device_id,
			day_kind,
			sunrise,
			sunset,
			solar_noon,
			day_length_seconds,
			expected_energy
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (date, device_id) DO UPDATE SET
			day_kind = EXCLUDED.day_kind,
			sunrise = EXCLUDED.sunrise,
			sunset = EXCLUDED.sunset,
			solar_noon = EXCLUDED.solar_noon,
			day_length_seconds = EXCLUDED.day_length_seconds,
			expected_energy = EXCLUDED.expected_energy
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	deviceID := e.GetConfig().DeviceID

	// Insert all estimates
	for _, estimate := range estimates {
		_, err := stmt.ExecContext(ctx,
			estimate.Date,
			deviceID,
			estimate.Kind,
			estimate.Sunrise,
			estimate.Sunset,
			estimate.SolarNoon,
			int64(estimate.DayLength.Seconds()),
			estimate.ExpectedEnergy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert estimate for %s: %w", utils.DateString(estimate.Date), err)
		}
	}

	// Commit transaction
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	e.logger.Printf("Saved %d daily estimates to database", len(estimates))
	return nil
}

// loadDailyEstimates loads daily estimates from the database with date >= from
func (e *Estimator) loadDailyEstimates(ctx context.Context, from time.Time) ([]DailyEstimate, error) {
	if e.db == nil {
		return nil, fmt.Errorf("database connection not available")
	}

	deviceID := e.GetConfig().DeviceID

	rows, err := e.db.QueryContext(ctx, `
		SELECT
			date,
			day_kind,
			sunrise,
			sunset,
			solar_noon,
			day_length_seconds,
			expected_energy
		FROM daily_estimates
		WHERE date >= $1 AND device_id = $2
		ORDER BY date ASC
	`, from, deviceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query estimates: %w", err)
	}
	defer rows.Close()

	var estimates []DailyEstimate
	for rows.Next() {
		var estimate DailyEstimate
		var sunrise, sunset sql.NullTime
		var dayLengthSeconds int64

		err := rows.Scan(
			&estimate.Date,
			&estimate.Kind,
			&sunrise,
			&sunset,
			&estimate.SolarNoon,
			&dayLengthSeconds,
			&estimate.ExpectedEnergy,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan estimate: %w", err)
		}

		if sunrise.Valid {
			t := sunrise.Time
			estimate.Sunrise = &t
		}
		if sunset.Valid {
			t := sunset.Time
			estimate.Sunset = &t
		}
		estimate.DayLength = time.Duration(dayLengthSeconds) * time.Second

		estimates = append(estimates, estimate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating estimates: %w", err)
	}

	if len(estimates) == 0 {
		e.logger.Printf("No daily estimates found in database")
		return nil, nil
	}

	e.logger.Printf("Loaded %d daily estimates from database", len(estimates))

	return estimates, nil
}

// BuildDailyEstimate computes the estimate for one calendar day without persisting it.
func (e *Estimator) BuildDailyEstimate(date time.Time) (DailyEstimate, error) {
	config := e.GetConfig()

	summary, err := solarpos.DaySummaryAltitude(date, config.Location(), solarpos.StandardHorizon)
	if err != nil {
		return DailyEstimate{}, err
	}

	energy, err := e.ExpectedDailyEnergy(date)
	if err != nil {
		return DailyEstimate{}, err
	}

	day := date.UTC().Truncate(24 * time.Hour)
	estimate := DailyEstimate{
		Date:           day,
		Kind:           summary.Kind.String(),
		SolarNoon:      summary.SolarNoon,
		DayLength:      summary.DayLength,
		ExpectedEnergy: energy,
	}

	if summary.Kind == solarpos.NormalDay {
		sunrise := summary.Sunrise
		sunset := summary.Sunset
		estimate.Sunrise = &sunrise
		estimate.Sunset = &sunset
	}

	return estimate, nil
}

// runDailySummary computes and persists estimates for today and tomorrow
func (e *Estimator) runDailySummary(ctx context.Context) error {
	now := time.Now().UTC()

	estimates := make([]DailyEstimate, 0, 2)
	for _, date := range []time.Time{now, now.Add(24 * time.Hour)} {
		estimate, err := e.BuildDailyEstimate(date)
		if err != nil {
			e.logger.Printf("Daily summary: failed to build estimate for %s: %v", utils.DateString(date), err)
			return err
		}
		estimates = append(estimates, estimate)
	}

	config := e.GetConfig()
	if config.DryRun || e.db == nil {
		for _, estimate := range estimates {
			e.logger.Printf("Daily summary: %s kind=%s day_length=%s expected=%.1f Wh",
				utils.DateString(estimate.Date), estimate.Kind, estimate.DayLength, estimate.ExpectedEnergy)
		}
		return nil
	}

	return e.saveDailyEstimates(ctx, estimates)
}
