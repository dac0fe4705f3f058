package service

import (
	"testing"
	"time"

	"github.com/devskill-org/suntrack/radiation"
)

func TestPowerSamples_IntegrateSamplesWithPeriodBoundary(t *testing.T) {
	samples := &PowerSamples{}
	sampleInterval := 10 * time.Second
	integrationPeriod := 1 * time.Minute

	baseTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	// Add samples for first period (12:00:00 to 12:00:50)
	for i := 0; i < 6; i++ {
		ts := baseTime.Add(time.Duration(i) * sampleInterval)
		samples.AddSample(300.0, 280.0, true, ts)
	}

	// Add samples for second period (12:01:00 to 12:01:50)
	for i := 0; i < 6; i++ {
		ts := baseTime.Add(integrationPeriod).Add(time.Duration(i) * sampleInterval)
		samples.AddSample(400.0, 370.0, true, ts)
	}

	// Integrate first period only. The sample at exactly 12:01:00 is also
	// included because the cutoff is inclusive.
	cutoffTime := baseTime.Add(integrationPeriod)
	data := samples.IntegrateSamples(sampleInterval, cutoffTime)

	if data.sampleCount != 7 {
		t.Errorf("Expected 7 samples integrated, got %d", data.sampleCount)
	}

	if !data.timestamp.Equal(cutoffTime) {
		t.Errorf("Expected timestamp %v, got %v", cutoffTime, data.timestamp)
	}

	hours := sampleInterval.Seconds() / 3600.0
	expectedModeled := (300.0*6 + 400.0*1) * hours
	if abs(data.modeledEnergy-expectedModeled) > 0.001 {
		t.Errorf("Expected modeled energy ~%.3f Wh, got %.3f Wh", expectedModeled, data.modeledEnergy)
	}

	expectedMeasured := (280.0*6 + 370.0*1) * hours
	if abs(data.measuredEnergy-expectedMeasured) > 0.001 {
		t.Errorf("Expected measured energy ~%.3f Wh, got %.3f Wh", expectedMeasured, data.measuredEnergy)
	}

	// Samples are preserved until cleared explicitly
	if samples.IsEmpty() {
		t.Error("Samples should not be cleared after integration")
	}
}

func TestPowerSamples_ClearBefore(t *testing.T) {
	samples := &PowerSamples{}
	baseTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 12; i++ {
		ts := baseTime.Add(time.Duration(i) * 10 * time.Second)
		samples.AddSample(100.0, 90.0, true, ts)
	}

	// Clear samples up to and including the 1 minute mark (7 samples)
	cutoffTime := baseTime.Add(1 * time.Minute)
	samples.ClearBefore(cutoffTime)

	if samples.Len() != 5 {
		t.Errorf("Expected 5 samples remaining, got %d", samples.Len())
	}

	samples.mu.Lock()
	firstSampleTime := samples.samples[0].ts
	samples.mu.Unlock()

	if !firstSampleTime.After(cutoffTime) {
		t.Errorf("First remaining sample at %v should be after cutoff %v", firstSampleTime, cutoffTime)
	}
}

func TestPowerSamples_IntegrationPreservesForRetry(t *testing.T) {
	samples := &PowerSamples{}
	sampleInterval := 10 * time.Second
	baseTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	for i := 0; i < 6; i++ {
		ts := baseTime.Add(time.Duration(i) * sampleInterval)
		samples.AddSample(300.0, 0, false, ts)
	}

	cutoffTime := baseTime.Add(50 * time.Second)

	data1 := samples.IntegrateSamples(sampleInterval, cutoffTime)

	// Simulate failure - don't clear samples, add more for the next period
	for i := 0; i < 6; i++ {
		ts := baseTime.Add(60 * time.Second).Add(time.Duration(i) * sampleInterval)
		samples.AddSample(500.0, 0, false, ts)
	}

	data2 := samples.IntegrateSamples(sampleInterval, cutoffTime)

	if data1.sampleCount != data2.sampleCount {
		t.Errorf("Retry produced different sample count: first=%d, retry=%d", data1.sampleCount, data2.sampleCount)
	}
	if data1.modeledEnergy != data2.modeledEnergy {
		t.Errorf("Retry produced different energy: first=%.3f, retry=%.3f", data1.modeledEnergy, data2.modeledEnergy)
	}
	if data2.sampleCount != 6 {
		t.Errorf("Expected 6 samples on retry, got %d", data2.sampleCount)
	}
}

func TestPowerSamples_EmptyIntegration(t *testing.T) {
	samples := &PowerSamples{}

	data := samples.IntegrateSamples(10*time.Second, time.Now())

	if data.sampleCount != 0 {
		t.Errorf("Expected 0 samples, got %d", data.sampleCount)
	}
	if data.modeledEnergy != 0 {
		t.Errorf("Expected 0 modeled energy, got %.3f", data.modeledEnergy)
	}
}

func TestPowerSamples_MeasuredSamplesCountedSeparately(t *testing.T) {
	samples := &PowerSamples{}
	sampleInterval := 10 * time.Second
	baseTime := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	samples.AddSample(300.0, 290.0, true, baseTime)
	samples.AddSample(300.0, 0, false, baseTime.Add(sampleInterval))
	samples.AddSample(300.0, 310.0, true, baseTime.Add(2*sampleInterval))

	data := samples.IntegrateSamples(sampleInterval, baseTime.Add(2*sampleInterval))

	if data.sampleCount != 3 {
		t.Errorf("Expected 3 samples, got %d", data.sampleCount)
	}
	if data.measuredSamples != 2 {
		t.Errorf("Expected 2 measured samples, got %d", data.measuredSamples)
	}

	hours := sampleInterval.Seconds() / 3600.0
	expectedMeasured := (290.0 + 310.0) * hours
	if abs(data.measuredEnergy-expectedMeasured) > 0.001 {
		t.Errorf("Expected measured energy ~%.3f Wh, got %.3f Wh", expectedMeasured, data.measuredEnergy)
	}
}

func TestPowerSamples_LatestValues(t *testing.T) {
	samples := &PowerSamples{}

	if samples.GetLatestModeled() != 0 || samples.GetLatestMeasured() != 0 {
		t.Error("Empty collection should report zero power")
	}

	baseTime := time.Now()
	samples.AddSample(100.0, 95.0, true, baseTime)
	samples.AddSample(200.0, 190.0, true, baseTime.Add(time.Second))

	if samples.GetLatestModeled() != 200.0 {
		t.Errorf("Expected latest modeled 200.0, got %.1f", samples.GetLatestModeled())
	}
	if samples.GetLatestMeasured() != 190.0 {
		t.Errorf("Expected latest measured 190.0, got %.1f", samples.GetLatestMeasured())
	}
}

func TestForecastCache(t *testing.T) {
	cache := ForecastCache{cacheDuration: time.Hour}

	if _, ok := cache.Get(); ok {
		t.Error("Empty cache should report a miss")
	}

	forecast := &radiation.Forecast{
		Hourly: radiation.Hourly{
			Time:                   []string{"2024-06-01T12:00", "2024-06-01T13:00"},
			DirectNormalIrradiance: []float64{650.0, 700.0},
		},
	}
	cache.Set(forecast)

	got, ok := cache.Get()
	if !ok {
		t.Fatal("Expected cache hit after Set")
	}
	if got != forecast {
		t.Error("Cache returned a different forecast")
	}

	dni, ok := cache.DirectNormal()
	if !ok {
		t.Fatal("Expected direct normal series in cache")
	}
	if len(dni) != 2 || dni[1].Value != 700.0 {
		t.Errorf("Unexpected direct normal series: %+v", dni)
	}
}

func TestForecastCacheExpiry(t *testing.T) {
	cache := ForecastCache{cacheDuration: time.Hour}
	cache.Set(&radiation.Forecast{})

	// Force the entry to look stale
	cache.mu.Lock()
	cache.fetchedAt = time.Now().Add(-2 * time.Hour)
	cache.mu.Unlock()

	if _, ok := cache.Get(); ok {
		t.Error("Expired cache entry should report a miss")
	}
	if _, ok := cache.DirectNormal(); ok {
		t.Error("Expired direct normal series should report a miss")
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
