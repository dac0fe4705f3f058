package radiation

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// hourlyVariables are the radiation series requested from the API.
const hourlyVariables = "shortwave_radiation,direct_normal_irradiance,diffuse_radiation"

// Client represents a client for the Open-Meteo forecast API
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
}

// NewClient creates a new client for the Open-Meteo forecast API
func NewClient(userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   "https://api.open-meteo.com/v1",
		userAgent: userAgent,
	}
}

// NewClientWithHTTPClient creates a new client with a custom HTTP client
func NewClientWithHTTPClient(httpClient *http.Client, userAgent string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    "https://api.open-meteo.com/v1",
		userAgent:  userAgent,
	}
}

// SetBaseURL sets the base URL for the API (useful for testing)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetHourly retrieves the hourly radiation forecast for the specified location
func (c *Client) GetHourly(params QueryParams) (*Forecast, error) {
	if err := ValidateLocation(params.Location); err != nil {
		return nil, err
	}

	reqURL, err := c.buildURL("forecast", params)
	if err != nil {
		return nil, fmt.Errorf("failed to build URL: %w", err)
	}

	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Operation: "forecast request", Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// The API reports failures as {"error":true,"reason":"..."}.
		var detail apiError
		message := string(body)
		if json.Unmarshal(body, &detail) == nil && detail.Reason != "" {
			message = detail.Reason
		}
		return nil, &APIError{
			StatusCode: resp.StatusCode,
			Message:    message,
		}
	}

	var forecast Forecast
	if err := json.Unmarshal(body, &forecast); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &forecast, nil
}

// buildURL constructs the API URL with query parameters
func (c *Client) buildURL(endpoint string, params QueryParams) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}

	u.Path = fmt.Sprintf("%s/%s", u.Path, endpoint)

	query := u.Query()
	query.Set("latitude", formatFloat(params.Location.Latitude))
	query.Set("longitude", formatFloat(params.Location.Longitude))
	query.Set("hourly", hourlyVariables)
	query.Set("timezone", "UTC")

	if params.Location.Elevation != nil {
		query.Set("elevation", strconv.Itoa(*params.Location.Elevation))
	}
	if params.ForecastDays > 0 {
		query.Set("forecast_days", strconv.Itoa(params.ForecastDays))
	}
	if params.PastDays > 0 {
		query.Set("past_days", strconv.Itoa(params.PastDays))
	}

	u.RawQuery = query.Encode()
	return u.String(), nil
}

// formatFloat formats a float64 to a string with appropriate precision
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ValidateLocation validates that the location parameters are within acceptable ranges
func ValidateLocation(loc Location) error {
	if loc.Latitude < -90 || loc.Latitude > 90 {
		return &ValidationError{Field: "latitude", Message: fmt.Sprintf("must be between -90 and 90, got %f", loc.Latitude)}
	}
	if loc.Longitude < -180 || loc.Longitude > 180 {
		return &ValidationError{Field: "longitude", Message: fmt.Sprintf("must be between -180 and 180, got %f", loc.Longitude)}
	}
	if loc.Elevation != nil && *loc.Elevation < 0 {
		return &ValidationError{Field: "elevation", Message: fmt.Sprintf("must be non-negative, got %d", *loc.Elevation)}
	}
	return nil
}
