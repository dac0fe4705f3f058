package service

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/devskill-org/suntrack/panel"
	"github.com/devskill-org/suntrack/solarpos"
)

// Config represents the configuration for the energy estimator service
type Config struct {
	// Site settings
	Latitude  float64 `json:"latitude"`  // Site latitude in degrees, north positive
	Longitude float64 `json:"longitude"` // Site longitude in degrees, east positive
	Elevation float64 `json:"elevation"` // Site elevation in meters above sea level

	// Panel settings
	PanelTilt       float64 `json:"panel_tilt"`       // Panel tilt from horizontal in degrees (0-90)
	PanelAzimuth    float64 `json:"panel_azimuth"`    // Panel facing direction in degrees from north (0-360)
	PanelArea       float64 `json:"panel_area"`       // Panel area in m²
	PanelEfficiency float64 `json:"panel_efficiency"` // Panel conversion efficiency (0-1)

	// Estimator settings
	ClearSkyIrradiance float64       `json:"clear_sky_irradiance"` // Fallback direct normal irradiance in W/m²
	SampleInterval     time.Duration `json:"sample_interval"`      // How often to sample modeled power
	IntegrationPeriod  time.Duration `json:"integration_period"`   // Period over which samples are integrated to energy
	DryRun             bool          `json:"dry_run"`              // Run without persisting to the database

	// Forecast API settings
	ForecastUpdateInterval time.Duration `json:"forecast_update_interval"` // How often to refresh the irradiance forecast
	APITimeout             time.Duration `json:"api_timeout"`              // Timeout for API calls
	UserAgent              string        `json:"user_agent"`               // User agent for the forecast API client

	// Logging settings
	LogLevel  string `json:"log_level"`  // Log level: debug, info, warn, error
	LogFormat string `json:"log_format"` // Log format: text, json

	// Advanced settings
	HTTPPort int `json:"http_port"` // Port for the HTTP API and websocket endpoint (0 = disabled)

	// Inverter Modbus server
	InverterModbusAddress string `json:"inverter_modbus_address"` // Inverter Modbus server address (format: IP:PORT, e.g., "192.168.1.100:502")
	InverterSlaveID       int    `json:"inverter_slave_id"`       // Inverter Modbus slave ID (1-246)

	// Persistence
	DeviceID           int    `json:"device_id"`            // Device ID for the metrics tables
	PostgresConnString string `json:"postgres_conn_string"` // PostgreSQL connection string
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	return &Config{
		Latitude:               56.9496, // Riga, Latvia
		Longitude:              24.1052, // Riga, Latvia
		Elevation:              11.0,
		PanelTilt:              35.0,
		PanelAzimuth:           180.0, // facing south
		PanelArea:              1.6,
		PanelEfficiency:        0.20,
		ClearSkyIrradiance:     panel.DefaultClearSkyIrradiance,
		SampleInterval:         10 * time.Second,
		IntegrationPeriod:      15 * time.Minute,
		DryRun:                 false,
		ForecastUpdateInterval: 1 * time.Hour,
		APITimeout:             30 * time.Second,
		UserAgent:              "MyApp/1.0 (username@example.com)",
		LogLevel:               "info",
		LogFormat:              "text",
		HTTPPort:               0,
		InverterModbusAddress:  "",
		InverterSlaveID:        1,
		DeviceID:               0,
		PostgresConnString:     "",
	}
}

// LoadConfig loads configuration from a JSON file
func LoadConfig(filename string) (*Config, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer file.Close()

	return LoadConfigFromReader(file)
}

// LoadConfigFromReader loads configuration from an io.Reader
func LoadConfigFromReader(reader io.Reader) (*Config, error) {
	config := DefaultConfig()

	decoder := json.NewDecoder(reader)
	if err := decoder.Decode(config); err != nil {
		return nil, fmt.Errorf("failed to decode config JSON: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// SaveConfig saves the configuration to a JSON file
func (c *Config) SaveConfig(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	return c.SaveConfigToWriter(file)
}

// SaveConfigToWriter saves the configuration to an io.Writer
func (c *Config) SaveConfigToWriter(writer io.Writer) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config JSON: %w", err)
	}

	return nil
}

// Location returns the site location described by the config
func (c *Config) Location() solarpos.Location {
	return solarpos.Location{
		Latitude:  c.Latitude,
		Longitude: c.Longitude,
		Elevation: c.Elevation,
	}
}

// Panel returns the panel described by the config
func (c *Config) Panel() (panel.Panel, error) {
	return panel.New(c.PanelTilt, c.PanelAzimuth, c.PanelArea, c.PanelEfficiency)
}

// Validate checks if the configuration values are valid
func (c *Config) Validate() error {
	if err := c.Location().Validate(); err != nil {
		return err
	}

	if _, err := c.Panel(); err != nil {
		return err
	}

	if c.ClearSkyIrradiance < 0 {
		return fmt.Errorf("clear_sky_irradiance must be non-negative, got: %f", c.ClearSkyIrradiance)
	}

	if c.SampleInterval <= 0 {
		return fmt.Errorf("sample_interval must be greater than 0, got: %s", c.SampleInterval)
	}

	if c.IntegrationPeriod <= 0 {
		return fmt.Errorf("integration_period must be greater than 0, got: %s", c.IntegrationPeriod)
	}

	if c.IntegrationPeriod < c.SampleInterval {
		return fmt.Errorf("integration_period (%s) cannot be shorter than sample_interval (%s)", c.IntegrationPeriod, c.SampleInterval)
	}

	if c.ForecastUpdateInterval <= 0 {
		return fmt.Errorf("forecast_update_interval must be greater than 0, got: %s", c.ForecastUpdateInterval)
	}

	if c.APITimeout <= 0 {
		return fmt.Errorf("api_timeout must be greater than 0, got: %s", c.APITimeout)
	}

	if c.UserAgent == "" {
		return fmt.Errorf("user_agent cannot be empty")
	}

	if c.HTTPPort < 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("http_port must be between 0 and 65535, got: %d", c.HTTPPort)
	}

	if c.InverterSlaveID < 1 || c.InverterSlaveID > 246 {
		return fmt.Errorf("inverter_slave_id must be between 1 and 246, got: %d", c.InverterSlaveID)
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level: %s, must be one of: debug, info, warn, error", c.LogLevel)
	}

	// Validate log format
	validLogFormats := map[string]bool{
		"text": true,
		"json": true,
	}
	if !validLogFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format: %s, must be one of: text, json", c.LogFormat)
	}

	return nil
}

// MarshalJSON implements custom JSON marshaling to handle durations
func (c *Config) MarshalJSON() ([]byte, error) {
	type Alias Config
	return json.Marshal(&struct {
		*Alias
		SampleInterval         string `json:"sample_interval"`
		IntegrationPeriod      string `json:"integration_period"`
		ForecastUpdateInterval string `json:"forecast_update_interval"`
		APITimeout             string `json:"api_timeout"`
	}{
		Alias:                  (*Alias)(c),
		SampleInterval:         c.SampleInterval.String(),
		IntegrationPeriod:      c.IntegrationPeriod.String(),
		ForecastUpdateInterval: c.ForecastUpdateInterval.String(),
		APITimeout:             c.APITimeout.String(),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling to handle durations
func (c *Config) UnmarshalJSON(data []byte) error {
	type Alias Config
	aux := &struct {
		*Alias
		SampleInterval         string `json:"sample_interval"`
		IntegrationPeriod      string `json:"integration_period"`
		ForecastUpdateInterval string `json:"forecast_update_interval"`
		APITimeout             string `json:"api_timeout"`
	}{
		Alias: (*Alias)(c),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	if aux.SampleInterval != "" {
		if c.SampleInterval, err = time.ParseDuration(aux.SampleInterval); err != nil {
			return fmt.Errorf("invalid sample_interval: %w", err)
		}
	}

	if aux.IntegrationPeriod != "" {
		if c.IntegrationPeriod, err = time.ParseDuration(aux.IntegrationPeriod); err != nil {
			return fmt.Errorf("invalid integration_period: %w", err)
		}
	}

	if aux.ForecastUpdateInterval != "" {
		if c.ForecastUpdateInterval, err = time.ParseDuration(aux.ForecastUpdateInterval); err != nil {
			return fmt.Errorf("invalid forecast_update_interval: %w", err)
		}
	}

	if aux.APITimeout != "" {
		if c.APITimeout, err = time.ParseDuration(aux.APITimeout); err != nil {
			return fmt.Errorf("invalid api_timeout: %w", err)
		}
	}

	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}
