package radiation

// Location identifies the point the forecast is requested for.
type Location struct {
	Latitude  float64
	Longitude float64
	Elevation *int // meters above sea level; the API derives it from a terrain model when nil
}

// QueryParams contains the parameters for a forecast request.
type QueryParams struct {
	Location     Location
	ForecastDays int // number of days to forecast, API default when 0
	PastDays     int // number of past days to include, none when 0
}

// HourlyUnits contains the units for the hourly forecast values.
type HourlyUnits struct {
	Time                   string  `json:"time"`
	ShortwaveRadiation     *string `json:"shortwave_radiation,omitempty"`
	DirectNormalIrradiance *string `json:"direct_normal_irradiance,omitempty"`
	DiffuseRadiation       *string `json:"diffuse_radiation,omitempty"`
}

// Hourly contains the hourly forecast series. All value slices are
// index-aligned with Time.
type Hourly struct {
	Time                   []string  `json:"time"`
	ShortwaveRadiation     []float64 `json:"shortwave_radiation,omitempty"`
	DirectNormalIrradiance []float64 `json:"direct_normal_irradiance,omitempty"`
	DiffuseRadiation       []float64 `json:"diffuse_radiation,omitempty"`
}

// Forecast is the Open-Meteo forecast response.
type Forecast struct {
	Latitude             float64     `json:"latitude"`
	Longitude            float64     `json:"longitude"`
	Elevation            float64     `json:"elevation"`
	GenerationTimeMs     float64     `json:"generationtime_ms"`
	UTCOffsetSeconds     int         `json:"utc_offset_seconds"`
	Timezone             string      `json:"timezone"`
	TimezoneAbbreviation string      `json:"timezone_abbreviation"`
	HourlyUnits          HourlyUnits `json:"hourly_units"`
	Hourly               Hourly      `json:"hourly"`
}

// apiError is the JSON error body the API returns alongside non-200
// status codes.
type apiError struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
