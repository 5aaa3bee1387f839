package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"time"

	"github.com/kjstillabower/weather-history-service/internal/models"
	"github.com/kjstillabower/weather-history-service/internal/observability"
)

// WeatherClient fetches current conditions for a US zip code.
type WeatherClient interface {
	GetCurrentWeather(ctx context.Context, zipCode string) (models.SimplifiedWeather, error)
	// Configured reports whether an API key is set.
	Configured() bool
}

var (
	ErrAPIKeyMissing       = errors.New("API key not configured")
	ErrLocationNotFound    = errors.New("location not found")
	ErrUpstreamFailure     = errors.New("upstream failure")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)

const (
	countryCode = "us"
	units       = "imperial"

	// maxErrorBody caps how much of an upstream error body is kept.
	maxErrorBody = 4 << 10
)

// UpstreamError is a non-success, non-404 response from the provider.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("upstream failure: HTTP %d: %s", e.StatusCode, e.Body)
}

func (e *UpstreamError) Unwrap() error {
	return ErrUpstreamFailure
}

type OpenWeatherClient struct {
	apiKey string
	apiURL string
	client *http.Client
}

// NewOpenWeatherClient returns a client for the OpenWeatherMap current-weather endpoint.
// An empty apiKey is accepted; lookups then fail with ErrAPIKeyMissing.
// timeout <= 0 leaves the http.Client without a timeout.
func NewOpenWeatherClient(apiKey, apiURL string, timeout time.Duration) (*OpenWeatherClient, error) {
	if _, err := url.Parse(apiURL); err != nil || apiURL == "" {
		return nil, fmt.Errorf("invalid API URL %q", apiURL)
	}
	c := &http.Client{}
	if timeout > 0 {
		c.Timeout = timeout
	}
	return &OpenWeatherClient{
		apiKey: apiKey,
		apiURL: apiURL,
		client: c,
	}, nil
}

// Configured implements WeatherClient.
func (c *OpenWeatherClient) Configured() bool {
	return c.apiKey != ""
}

// openWeatherResponse mirrors the parts of the provider payload we read.
// Every node is a pointer so that absent objects decode to nil.
type openWeatherResponse struct {
	Name    *string `json:"name"`
	Weather []struct {
		Main        *string `json:"main"`
		Description *string `json:"description"`
	} `json:"weather"`
	Main *struct {
		Temp      *float64 `json:"temp"`
		FeelsLike *float64 `json:"feels_like"`
		Humidity  *float64 `json:"humidity"`
	} `json:"main"`
	Wind *struct {
		Speed *float64 `json:"speed"`
	} `json:"wind"`
	Coord *struct {
		Lat *float64 `json:"lat"`
		Lon *float64 `json:"lon"`
	} `json:"coord"`
}

// GetCurrentWeather issues a single request; there is no retry.
func (c *OpenWeatherClient) GetCurrentWeather(ctx context.Context, zipCode string) (models.SimplifiedWeather, error) {
	if !c.Configured() {
		return models.SimplifiedWeather{}, ErrAPIKeyMissing
	}

	start := time.Now()
	req, err := c.buildRequest(ctx, zipCode)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("error").Inc()
		return models.SimplifiedWeather{}, fmt.Errorf("build request: %w", err)
	}

	if corrID := extractCorrelationID(ctx); corrID != "" {
		req.Header.Set("X-Correlation-ID", corrID)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		observability.WeatherAPICallsTotal.WithLabelValues("network").Inc()
		observability.WeatherAPIDuration.WithLabelValues("network").Observe(time.Since(start).Seconds())
		return models.SimplifiedWeather{}, fmt.Errorf("%w: %w", ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	status := statusLabel(resp.StatusCode)
	observability.WeatherAPICallsTotal.WithLabelValues(status).Inc()
	observability.WeatherAPIDuration.WithLabelValues(status).Observe(time.Since(start).Seconds())

	if err := handleErrorResponse(resp); err != nil {
		return models.SimplifiedWeather{}, err
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return models.SimplifiedWeather{}, fmt.Errorf("%w: read response body: %w", ErrUpstreamUnavailable, err)
	}

	var apiResp openWeatherResponse
	if err := json.Unmarshal(body, &apiResp); err != nil {
		return models.SimplifiedWeather{}, fmt.Errorf("parse response: %w", err)
	}

	return simplify(apiResp), nil
}

func (c *OpenWeatherClient) buildRequest(ctx context.Context, zipCode string) (*http.Request, error) {
	baseURL, err := url.Parse(c.apiURL)
	if err != nil {
		return nil, fmt.Errorf("invalid API URL: %w", err)
	}

	params := baseURL.Query()
	params.Set("zip", zipCode+","+countryCode)
	params.Set("appid", c.apiKey)
	params.Set("units", units)
	baseURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	return req, nil
}

func handleErrorResponse(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	if resp.StatusCode == http.StatusNotFound {
		return ErrLocationNotFound
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	return &UpstreamError{StatusCode: resp.StatusCode, Body: string(body)}
}

// simplify flattens the provider payload. Missing nodes at any depth yield nil fields.
func simplify(r openWeatherResponse) models.SimplifiedWeather {
	out := models.SimplifiedWeather{City: r.Name}
	if len(r.Weather) > 0 {
		out.Weather = r.Weather[0].Main
		out.Description = r.Weather[0].Description
	}
	if r.Main != nil {
		out.Temperature = r.Main.Temp
		out.FeelsLike = r.Main.FeelsLike
		out.Humidity = wholePercent(r.Main.Humidity)
	}
	if r.Wind != nil {
		out.WindSpeed = r.Wind.Speed
	}
	if r.Coord != nil {
		out.Latitude = r.Coord.Lat
		out.Longitude = r.Coord.Lon
	}
	return out
}

func extractCorrelationID(ctx context.Context) string {
	if corrIDVal := ctx.Value("correlation_id"); corrIDVal != nil {
		if corrID, ok := corrIDVal.(string); ok {
			return corrID
		}
	}
	return ""
}

func statusLabel(statusCode int) string {
	switch {
	case statusCode >= 200 && statusCode < 300:
		return "success"
	case statusCode == http.StatusNotFound:
		return "not_found"
	case statusCode >= 400 && statusCode < 500:
		return "client_error"
	case statusCode >= 500:
		return "server_error"
	}
	return "error"
}

// wholePercent converts a humidity reading to int. The provider sends integers,
// but a value like 55.0 is accepted too. Fractional or out-of-range values yield nil.
func wholePercent(v *float64) *int {
	if v == nil || *v != math.Trunc(*v) || math.Abs(*v) > math.MaxInt32 {
		return nil
	}
	n := int(*v)
	return &n
}
