package service

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "github.com/lib/pq"

	"github.com/devskill-org/suntrack/inverter"
	"github.com/devskill-org/suntrack/solarpos"
)

// PeriodicTask represents a task that runs periodically with an optional initial delay
type PeriodicTask struct {
	name         string
	initialDelay time.Duration
	interval     time.Duration
	runFunc      func()
}

// run executes the periodic task in a loop, respecting the initial delay and context cancellation
func (pt *PeriodicTask) run(ctx context.Context, stopChan <-chan struct{}, logger *log.Logger) {
	// Wait for initial delay
	if pt.initialDelay > 0 {
		logger.Printf("[%s] Waiting for initial delay: %v", pt.name, pt.initialDelay)
		select {
		case <-time.After(pt.initialDelay):
			// Initial delay passed, run the task
			logger.Printf("[%s] Initial delay passed, running first iteration", pt.name)
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped during initial delay due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped during initial delay due to stop signal", pt.name)
			return
		}
	} else {
		// No initial delay, run immediately
		logger.Printf("[%s] Running immediately (no initial delay)", pt.name)
		pt.runFunc()
	}

	// Create ticker for periodic execution
	ticker := time.NewTicker(pt.interval)
	defer ticker.Stop()

	logger.Printf("[%s] Started with interval: %v", pt.name, pt.interval)

	for {
		select {
		case <-ticker.C:
			pt.runFunc()
		case <-ctx.Done():
			logger.Printf("[%s] Stopped due to context cancellation", pt.name)
			return
		case <-stopChan:
			logger.Printf("[%s] Stopped due to stop signal", pt.name)
			return
		}
	}
}

// Estimator runs the panel energy model continuously, compares it against
// live inverter readings, and persists integrated energy periods.
type Estimator struct {
	// Configuration
	config *Config

	// State
	samples   *PowerSamples
	isRunning bool
	stopChan  chan struct{}
	mu        sync.RWMutex

	// Irradiance forecast cache
	forecastCache ForecastCache

	// Web server
	webServer *WebServer

	// Database connection
	db *sql.DB

	// Logging
	logger *log.Logger

	// Test hooks for dependency injection
	inverterReadFunc func() (*inverter.Status, error)
}

// NewEstimator creates a new estimator instance
func NewEstimator(config *Config, logger *log.Logger) *Estimator {
	if logger == nil {
		logger = log.Default()
	}

	estimator := &Estimator{
		config:   config,
		samples:  &PowerSamples{},
		stopChan: make(chan struct{}),
		logger:   logger,
		forecastCache: ForecastCache{
			cacheDuration: 2 * time.Hour,
		},
	}

	return estimator
}

// NewEstimatorWithWebServer creates a new estimator instance with the HTTP API enabled
func NewEstimatorWithWebServer(config *Config, logger *log.Logger) *Estimator {
	estimator := NewEstimator(config, logger)
	estimator.webServer = NewWebServer(estimator, config.HTTPPort)
	return estimator
}

// SetConfig updates the configuration
func (e *Estimator) SetConfig(config *Config) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.config = config
}

// GetConfig returns the current configuration
func (e *Estimator) GetConfig() *Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.config
}

func (e *Estimator) getInitialDelay(now time.Time, delayInterval time.Duration) time.Duration {
	top := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	delay := now.Sub(top)
	for delay > 0 {
		delay = delay - delayInterval
	}
	return -delay
}

// getMidnightDelay returns the time remaining until the next UTC midnight.
func (e *Estimator) getMidnightDelay(now time.Time) time.Duration {
	next := now.UTC().Truncate(24 * time.Hour).Add(24 * time.Hour)
	return next.Sub(now)
}

// Start begins the estimator's periodic tasks
func (e *Estimator) Start(ctx context.Context, serverOnly bool) error {
	e.mu.Lock()
	if e.isRunning {
		e.mu.Unlock()
		return fmt.Errorf("estimator is already running")
	}
	e.isRunning = true
	e.stopChan = make(chan struct{})
	e.mu.Unlock()

	if e.config.DryRun {
		e.logger.Printf("DRY-RUN MODE ENABLED: Nothing will be persisted")
	}

	// Start web server if configured
	if e.webServer != nil {
		err := e.webServer.Start()
		if err != nil {
			e.logger.Printf("Failed to start web server: %v", err)
		} else {
			e.logger.Printf("Web server started on port %d", e.webServer.port)
		}
		if serverOnly {
			return err
		}
	}

	config := e.GetConfig()

	// Database connection for energy persistence
	if config.PostgresConnString != "" {
		db, err := sql.Open("postgres", config.PostgresConnString)
		if err != nil {
			e.logger.Printf("Persistence: failed to connect to DB: %v", err)
		} else {
			e.db = db
		}
	}

	// Calculate initial delays
	now := time.Now()
	integrationInitialDelay := e.getInitialDelay(now, config.IntegrationPeriod)
	dailyInitialDelay := e.getMidnightDelay(now) + 2*time.Second

	// Create periodic tasks
	tasks := []PeriodicTask{
		{
			name:         "ForecastUpdate",
			initialDelay: 0, // Run immediately
			interval:     config.ForecastUpdateInterval,
			runFunc: func() {
				e.runForecastUpdate()
			},
		},
		{
			name:         "SamplePoll",
			initialDelay: integrationInitialDelay,
			interval:     config.SampleInterval,
			runFunc: func() {
				e.runSamplePoll()
			},
		},
		{
			name:         "EnergyIntegration",
			initialDelay: integrationInitialDelay,
			interval:     config.IntegrationPeriod,
			runFunc: func() {
				e.runEnergyIntegration(config.SampleInterval, config.DeviceID, config.DryRun)
			},
		},
		{
			name:         "DailySummary",
			initialDelay: dailyInitialDelay,
			interval:     24 * time.Hour,
			runFunc: func() {
				e.runDailySummary(ctx)
			},
		},
	}

	// Start each periodic task in its own goroutine
	var wg sync.WaitGroup
	for _, task := range tasks {
		wg.Add(1)
		task := task // capture loop variable
		go func() {
			defer wg.Done()
			task.run(ctx, e.stopChan, e.logger)
		}()
	}

	// Wait for all tasks to complete
	wg.Wait()

	e.logger.Printf("All periodic tasks stopped")
	e.stop()
	return nil
}

// Stop gracefully stops the estimator
func (e *Estimator) Stop() {
	e.stop()
}

func (e *Estimator) stop() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.isRunning {
		return
	}

	e.isRunning = false

	// Close stopChan if it's not already closed
	select {
	case <-e.stopChan:
		// Already closed
	default:
		close(e.stopChan)
	}

	// Stop web server if running
	if e.webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := e.webServer.Stop(ctx); err != nil {
			e.logger.Printf("Error stopping web server: %v", err)
		}
	}

	// The handle stays set after Close; in-flight queries get an error
	// from the closed pool rather than a nil dereference.
	if e.db != nil {
		e.db.Close()
	}
}

// IsRunning returns whether the estimator is currently running
func (e *Estimator) IsRunning() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.isRunning
}

// GetStatus returns the current status of the estimator
func (e *Estimator) GetStatus() EstimatorStatus {
	e.mu.RLock()
	defer e.mu.RUnlock()

	_, hasForecast := e.forecastCache.Get()

	return EstimatorStatus{
		IsRunning:     e.isRunning,
		HasForecast:   hasForecast,
		SampleCount:   e.samples.Len(),
		ModeledPower:  e.samples.GetLatestModeled(),
		MeasuredPower: e.samples.GetLatestMeasured(),
	}
}

// CurrentPosition returns the sun position for the configured site right now
func (e *Estimator) CurrentPosition() (solarpos.SunPosition, error) {
	return solarpos.Position(time.Now(), e.GetConfig().Location())
}

// TodaySummary returns today's sunrise/sunset summary for the configured site
func (e *Estimator) TodaySummary() (solarpos.Summary, error) {
	config := e.GetConfig()
	return solarpos.DaySummaryAltitude(time.Now(), config.Location(), solarpos.StandardHorizon)
}

// EstimatorStatus represents the current status of the estimator
type EstimatorStatus struct {
	IsRunning     bool    `json:"is_running"`
	HasForecast   bool    `json:"has_forecast"`
	SampleCount   int     `json:"sample_count"`
	ModeledPower  float64 `json:"modeled_power"`  // W
	MeasuredPower float64 `json:"measured_power"` // W
}
