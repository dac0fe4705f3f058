package service

import (
	"sync"
	"time"

	"github.com/devskill-org/suntrack/inverter"
	"github.com/devskill-org/suntrack/panel"
	"github.com/devskill-org/suntrack/radiation"
	"github.com/devskill-org/suntrack/solarpos"
	"github.com/devskill-org/suntrack/utils"
)

// ForecastCache caches the irradiance forecast with expiration.
type ForecastCache struct {
	mu            sync.RWMutex
	forecast      *radiation.Forecast
	directNormal  []radiation.Sample
	fetchedAt     time.Time
	cacheDuration time.Duration
}

// Get retrieves the cached forecast if it is still valid.
func (f *ForecastCache) Get() (*radiation.Forecast, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.forecast == nil {
		return nil, false
	}

	if time.Since(f.fetchedAt) > f.cacheDuration {
		return nil, false
	}

	return f.forecast, true
}

// DirectNormal returns the cached direct normal irradiance series, if any.
func (f *ForecastCache) DirectNormal() ([]radiation.Sample, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if f.directNormal == nil || time.Since(f.fetchedAt) > f.cacheDuration {
		return nil, false
	}

	return f.directNormal, true
}

// Set updates the cached forecast with a new value.
func (f *ForecastCache) Set(forecast *radiation.Forecast) {
	dni, err := forecast.DirectNormalSeries()
	if err != nil {
		dni = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.forecast = forecast
	f.directNormal = dni
	f.fetchedAt = time.Now()
}

// PowerSample represents a single measurement of modeled and measured panel power.
type PowerSample struct {
	modeledPower  float64 // W, from the geometric panel model
	measuredPower float64 // W, from the inverter (0 when no inverter is configured)
	hasMeasured   bool
	ts            time.Time
}

// PowerSamples is a thread-safe collection of power samples.
type PowerSamples struct {
	mu      sync.Mutex
	samples []PowerSample
}

// AddSample adds a new power sample to the collection.
func (p *PowerSamples) AddSample(modeledPower, measuredPower float64, hasMeasured bool, ts time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.samples = append(p.samples, PowerSample{
		modeledPower:  modeledPower,
		measuredPower: measuredPower,
		hasMeasured:   hasMeasured,
		ts:            ts,
	})
}

// IntegratedEnergy represents aggregated energy over an integration period.
type IntegratedEnergy struct {
	modeledEnergy   float64 // Wh
	measuredEnergy  float64 // Wh
	measuredSamples int
	timestamp       time.Time
	sampleCount     int // Number of samples integrated
}

// IntegrateSamples computes integrated energy from collected samples up to the specified cutoff time.
// Only samples with timestamp <= cutoffTime are integrated.
// The cutoffTime represents the end of the integration period and is used as the result timestamp.
// Samples are preserved and must be cleared explicitly using ClearBefore() after successful processing.
func (p *PowerSamples) IntegrateSamples(sampleInterval time.Duration, cutoffTime time.Time) IntegratedEnergy {
	p.mu.Lock()
	defer p.mu.Unlock()

	var result IntegratedEnergy
	result.timestamp = cutoffTime

	for _, sample := range p.samples {
		// Only integrate samples that belong to this period
		if sample.ts.After(cutoffTime) {
			continue
		}

		result.sampleCount++
		hours := sampleInterval.Seconds() / 3600.0

		result.modeledEnergy += sample.modeledPower * hours

		if sample.hasMeasured {
			result.measuredSamples++
			result.measuredEnergy += sample.measuredPower * hours
		}
	}

	return result
}

// ClearBefore removes all samples with timestamp <= cutoffTime from the collection.
// Should only be called after samples have been successfully processed for that period.
func (p *PowerSamples) ClearBefore(cutoffTime time.Time) {
	p.mu.Lock()
	defer p.mu.Unlock()

	filteredSamples := make([]PowerSample, 0, len(p.samples))
	for _, sample := range p.samples {
		if sample.ts.After(cutoffTime) {
			filteredSamples = append(filteredSamples, sample)
		}
	}
	p.samples = filteredSamples
}

// IsEmpty returns true if there are no samples collected.
func (p *PowerSamples) IsEmpty() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples) == 0
}

// Len returns the number of collected samples.
func (p *PowerSamples) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.samples)
}

// GetLatestModeled returns the most recent modeled power sample, or 0 if no samples exist
func (p *PowerSamples) GetLatestModeled() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.samples) == 0 {
		return 0
	}
	return p.samples[len(p.samples)-1].modeledPower
}

// GetLatestMeasured returns the most recent measured power sample, or 0 if no samples exist
func (p *PowerSamples) GetLatestMeasured() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.samples) == 0 {
		return 0
	}
	return p.samples[len(p.samples)-1].measuredPower
}

// runForecastUpdate refreshes the irradiance forecast cache from the API
func (e *Estimator) runForecastUpdate() {
	config := e.GetConfig()

	client := radiation.NewClient(config.UserAgent)

	elevation := int(config.Elevation)
	params := radiation.QueryParams{
		Location: radiation.Location{
			Latitude:  config.Latitude,
			Longitude: config.Longitude,
			Elevation: &elevation,
		},
		ForecastDays: 2,
	}

	forecast, err := client.GetHourly(params)
	if err != nil {
		e.logger.Printf("Forecast update: failed to fetch irradiance forecast: %v", err)
		return
	}

	e.forecastCache.Set(forecast)
	e.logger.Printf("Forecast update: refreshed irradiance forecast")
}

// directNormalAt returns the direct normal irradiance at the given time.
// Falls back to the configured clear-sky value when no forecast is cached.
func (e *Estimator) directNormalAt(t time.Time) float64 {
	if dni, ok := e.forecastCache.DirectNormal(); ok {
		if sample := radiation.Nearest(dni, t); sample != nil {
			return sample.Value
		}
	}
	return e.GetConfig().ClearSkyIrradiance
}

// ModeledPowerAt computes the modeled panel power output at the given time.
func (e *Estimator) ModeledPowerAt(t time.Time) (float64, error) {
	config := e.GetConfig()

	sun, err := solarpos.Position(t, config.Location())
	if err != nil {
		return 0, err
	}

	pnl, err := config.Panel()
	if err != nil {
		return 0, err
	}

	return pnl.InstantPower(sun, e.directNormalAt(t)), nil
}

func (e *Estimator) runSamplePoll() error {
	now := time.Now()

	modeled, err := e.ModeledPowerAt(now)
	if err != nil {
		e.logger.Printf("Sample poll: failed to compute modeled power: %v", err)
		return err
	}

	var measured float64
	var hasMeasured bool
	if status, err := e.readInverterStatus(); err != nil {
		e.logger.Printf("Sample poll: failed to read inverter: %v", err)
	} else if status != nil {
		measured = status.ACPower
		hasMeasured = true
	}

	e.samples.AddSample(modeled, measured, hasMeasured, now)
	return nil
}

// readInverterStatus reads the current status from the configured inverter.
// Returns (nil, nil) when no inverter is configured.
func (e *Estimator) readInverterStatus() (*inverter.Status, error) {
	if e.inverterReadFunc != nil {
		return e.inverterReadFunc()
	}

	config := e.GetConfig()
	if config.InverterModbusAddress == "" {
		return nil, nil
	}

	slaveID := byte(config.InverterSlaveID)
	client, err := inverter.NewTCPClient(config.InverterModbusAddress, slaveID)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	return client.ReadStatus(slaveID)
}

func (e *Estimator) runEnergyIntegration(sampleInterval time.Duration, deviceID int, dryRun bool) error {
	// Calculate the period boundary timestamp (end of current integration period)
	// This ensures samples are grouped by their integration period
	config := e.GetConfig()
	now := time.Now()
	periodEndTime := now.Truncate(config.IntegrationPeriod)
	if periodEndTime.Before(now.Add(-config.IntegrationPeriod)) {
		periodEndTime = periodEndTime.Add(config.IntegrationPeriod)
	}

	// Integrate only samples up to the period boundary
	data := e.samples.IntegrateSamples(sampleInterval, periodEndTime)

	if data.sampleCount == 0 {
		e.logger.Printf("Energy integration: no samples collected in period ending at %s", utils.UTCString(periodEndTime))
		return nil
	}

	timestamp := data.timestamp

	if e.db == nil || dryRun {
		if dryRun {
			e.logger.Printf("Energy integration [DRY-RUN]: would save period for device_id=%d at %s (samples: %d)",
				deviceID, utils.UTCString(timestamp), data.sampleCount)
			e.logger.Printf("  Modeled: %.1f Wh, Measured: %.1f Wh (%d measured samples)",
				data.modeledEnergy, data.measuredEnergy, data.measuredSamples)
		}
		e.samples.ClearBefore(periodEndTime)
		return nil
	}

	if err := e.saveEnergyPeriod(deviceID, data); err != nil {
		e.logger.Printf("Energy integration: failed to insert period: %v", err)
		return err
	}

	// Only clear samples for this period after successful DB insertion
	e.samples.ClearBefore(periodEndTime)

	e.logger.Printf("Energy integration: saved period for device_id=%d at %s (samples: %d)",
		deviceID, utils.UTCString(timestamp), data.sampleCount)
	e.logger.Printf("  Modeled: %.1f Wh, Measured: %.1f Wh (%d measured samples)",
		data.modeledEnergy, data.measuredEnergy, data.measuredSamples)
	return nil
}

// GetInverterStatus returns the current inverter status
// If InverterModbusAddress is not configured, returns nil
func (e *Estimator) GetInverterStatus() *inverter.Status {
	status, err := e.readInverterStatus()
	if err != nil {
		e.logger.Printf("Failed to read inverter status: %v", err)
		return nil
	}
	return status
}

// ExpectedDailyEnergy computes the expected energy for the given date using
// the cached forecast, falling back to the clear-sky irradiance.
func (e *Estimator) ExpectedDailyEnergy(date time.Time) (float64, error) {
	config := e.GetConfig()

	pnl, err := config.Panel()
	if err != nil {
		return 0, err
	}

	var model panel.IrradianceModel = panel.ConstantIrradiance(config.ClearSkyIrradiance)
	if dni, ok := e.forecastCache.DirectNormal(); ok {
		samples := make([]panel.IrradianceSample, 0, len(dni))
		for _, s := range dni {
			samples = append(samples, panel.IrradianceSample{Time: s.Time, Irradiance: s.Value})
		}
		if series, err := panel.NewSeries(samples); err == nil {
			model = series
		}
	}

	return pnl.DailyEnergy(config.Location(), date, model, panel.DefaultEnergyStep)
}
