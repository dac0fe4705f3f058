package service

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/lib/pq"
)

func TestSaveEnergyPeriodWithoutDB(t *testing.T) {
	estimator := NewEstimator(DefaultConfig(), testLogger())

	err := estimator.saveEnergyPeriod(0, IntegratedEnergy{timestamp: time.Now()})
	if err == nil {
		t.Error("Expected error when no database connection is available")
	}
}

func TestSaveDailyEstimatesWithoutDB(t *testing.T) {
	estimator := NewEstimator(DefaultConfig(), testLogger())

	err := estimator.saveDailyEstimates(context.Background(), []DailyEstimate{{Date: time.Now()}})
	if err == nil {
		t.Error("Expected error when no database connection is available")
	}
}

func TestSaveDailyEstimatesEmptySlice(t *testing.T) {
	estimator := NewEstimator(DefaultConfig(), testLogger())

	// Skip if no database connection available
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()
	estimator.db = db

	if err := estimator.saveDailyEstimates(context.Background(), nil); err != nil {
		t.Errorf("Saving an empty slice should be a no-op, got: %v", err)
	}
}

func TestPersistence_SaveAndLoadDailyEstimates(t *testing.T) {
	// Skip if no database connection available
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	// Clean up table before test
	if _, err := db.Exec("DELETE FROM daily_estimates"); err != nil {
		t.Fatalf("Failed to clean up table: %v", err)
	}

	config := boulderConfig()
	estimator := NewEstimator(config, testLogger())
	estimator.db = db

	ctx := context.Background()

	date := time.Date(2024, 3, 20, 0, 0, 0, 0, time.UTC)
	estimate, err := estimator.BuildDailyEstimate(date)
	if err != nil {
		t.Fatalf("BuildDailyEstimate failed: %v", err)
	}

	if err := estimator.saveDailyEstimates(ctx, []DailyEstimate{estimate}); err != nil {
		t.Fatalf("Failed to save estimates: %v", err)
	}

	// Saving again must upsert, not duplicate
	estimate.ExpectedEnergy = estimate.ExpectedEnergy * 0.9
	if err := estimator.saveDailyEstimates(ctx, []DailyEstimate{estimate}); err != nil {
		t.Fatalf("Failed to re-save estimates: %v", err)
	}

	loaded, err := estimator.loadDailyEstimates(ctx, date.Add(-24*time.Hour))
	if err != nil {
		t.Fatalf("Failed to load estimates: %v", err)
	}

	if len(loaded) != 1 {
		t.Fatalf("Expected 1 estimate, got %d", len(loaded))
	}

	got := loaded[0]
	if !got.Date.Equal(estimate.Date) {
		t.Errorf("Date mismatch: expected %v, got %v", estimate.Date, got.Date)
	}
	if got.Kind != estimate.Kind {
		t.Errorf("Kind mismatch: expected %s, got %s", estimate.Kind, got.Kind)
	}
	if got.Sunrise == nil || got.Sunset == nil {
		t.Fatal("Expected sunrise and sunset to round-trip")
	}
	if abs(got.ExpectedEnergy-estimate.ExpectedEnergy) > 0.5 {
		t.Errorf("Energy mismatch: expected %.1f, got %.1f", estimate.ExpectedEnergy, got.ExpectedEnergy)
	}
	if got.DayLength != estimate.DayLength.Truncate(time.Second) {
		t.Errorf("DayLength mismatch: expected %s, got %s", estimate.DayLength, got.DayLength)
	}
}

func TestPersistence_SaveEnergyPeriod(t *testing.T) {
	// Skip if no database connection available
	connString := os.Getenv("TEST_POSTGRES_CONN")
	if connString == "" {
		t.Skip("Skipping test: TEST_POSTGRES_CONN not set")
	}

	db, err := sql.Open("postgres", connString)
	if err != nil {
		t.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if _, err := db.Exec("DELETE FROM energy_periods"); err != nil {
		t.Fatalf("Failed to clean up table: %v", err)
	}

	estimator := NewEstimator(DefaultConfig(), testLogger())
	estimator.db = db

	data := IntegratedEnergy{
		modeledEnergy:   125.5,
		measuredEnergy:  118.2,
		measuredSamples: 90,
		sampleCount:     90,
		timestamp:       time.Date(2024, 6, 1, 12, 15, 0, 0, time.UTC),
	}

	if err := estimator.saveEnergyPeriod(7, data); err != nil {
		t.Fatalf("Failed to save energy period: %v", err)
	}

	var modeled, measured float64
	var samples int
	err = db.QueryRow(
		`SELECT modeled_energy, measured_energy, sample_count FROM energy_periods WHERE device_id = $1`, 7,
	).Scan(&modeled, &measured, &samples)
	if err != nil {
		t.Fatalf("Failed to read back energy period: %v", err)
	}

	if abs(modeled-125.5) > 0.001 || abs(measured-118.2) > 0.001 || samples != 90 {
		t.Errorf("Round-trip mismatch: modeled=%.3f measured=%.3f samples=%d", modeled, measured, samples)
	}
}
