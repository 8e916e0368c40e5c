// Package upstream: Open-Meteo current-weather client.
package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultWeatherURL is the public Open-Meteo forecast endpoint.
const DefaultWeatherURL = "https://api.open-meteo.com/v1/forecast"

// Reading is the current-weather payload as delivered by Open-Meteo.
// Time is the upstream-provided observation timestamp, passed through
// unparsed.
type Reading struct {
	Temperature   float64 `json:"temperature"`
	Windspeed     float64 `json:"windspeed"`
	Winddirection float64 `json:"winddirection"`
	Weathercode   int     `json:"weathercode"`
	Time          string  `json:"time"`
}

// WeatherClient fetches current conditions for a coordinate pair.
type WeatherClient struct {
	// BaseURL is the forecast endpoint. Defaults to DefaultWeatherURL when empty.
	BaseURL string
	// UserAgent identifies this application to the upstream.
	UserAgent string
	// Client performs the calls.
	Client *http.Client
}

// Current requests only the current-weather fields for lat/lon. A response
// lacking the current_weather payload is treated the same as a protocol
// violation and returns ErrUpstream; there is no retry.
func (w *WeatherClient) Current(ctx context.Context, lat, lon float64) (Reading, error) {
	base := w.BaseURL
	if base == "" {
		base = DefaultWeatherURL
	}

	params := url.Values{}
	params.Set("latitude", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("current_weather", "true")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base+"?"+params.Encode(), nil)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", w.UserAgent)

	client := w.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("%w: weather API returned status %d", ErrUpstream, resp.StatusCode)
	}

	var payload struct {
		CurrentWeather *Reading `json:"current_weather"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Reading{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	if payload.CurrentWeather == nil {
		return Reading{}, fmt.Errorf("%w: no current weather data available", ErrUpstream)
	}
	return *payload.CurrentWeather, nil
}
