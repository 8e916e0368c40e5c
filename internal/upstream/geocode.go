// Package upstream: Nominatim place-search client.
//
// Two call patterns share the same endpoint but differ in failure policy:
// Resolve is on the critical path of a weather lookup and surfaces errors,
// while Suggest is an autocomplete helper that must never fail the caller.
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

// DefaultGeocodeURL is the public Nominatim search endpoint.
const DefaultGeocodeURL = "https://nominatim.openstreetmap.org/search"

// Geocoder resolves free-text place names against a Nominatim-compatible
// search API. The Nominatim usage policy requires an identifying User-Agent
// on every request.
type Geocoder struct {
	// BaseURL is the search endpoint. Defaults to DefaultGeocodeURL when empty.
	BaseURL string
	// UserAgent identifies this application to the upstream.
	UserAgent string
	// Client performs coordinate-resolution calls.
	Client *http.Client
	// SuggestClient performs best-effort autocomplete calls; typically it
	// carries a shorter timeout than Client.
	SuggestClient *http.Client
}

// nominatimPlace is the subset of a Nominatim search result we consume.
// Latitude and longitude come over the wire as strings.
type nominatimPlace struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

func (g *Geocoder) baseURL() string {
	if g.BaseURL != "" {
		return g.BaseURL
	}
	return DefaultGeocodeURL
}

func (g *Geocoder) client() *http.Client {
	if g.Client != nil {
		return g.Client
	}
	return &http.Client{Timeout: 10 * time.Second}
}

func (g *Geocoder) search(ctx context.Context, client *http.Client, params url.Values) ([]nominatimPlace, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.baseURL()+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("User-Agent", g.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: geocoding returned status %d", ErrUpstream, resp.StatusCode)
	}

	var places []nominatimPlace
	if err := json.NewDecoder(resp.Body).Decode(&places); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	return places, nil
}

// Resolve looks up the raw location string and returns the first candidate's
// coordinates. It returns ErrLocationNotFound (wrapped with the location)
// when the upstream has no candidates, and ErrUpstream on any transport,
// status, or payload failure.
func (g *Geocoder) Resolve(ctx context.Context, location string) (lat, lon float64, err error) {
	params := url.Values{}
	params.Set("q", location)
	params.Set("format", "json")
	params.Set("limit", "1")

	places, err := g.search(ctx, g.client(), params)
	if err != nil {
		return 0, 0, err
	}
	if len(places) == 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrLocationNotFound, location)
	}

	lat, err = strconv.ParseFloat(places[0].Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad latitude %q", ErrUpstream, places[0].Lat)
	}
	lon, err = strconv.ParseFloat(places[0].Lon, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: bad longitude %q", ErrUpstream, places[0].Lon)
	}
	return lat, lon, nil
}

// Suggest returns up to limit city-name suggestions for query. It is best
// effort: any upstream failure yields an empty slice, never an error.
// Names are deduplicated by exact string equality, first-seen order kept.
func (g *Geocoder) Suggest(ctx context.Context, query string, limit int) []string {
	if limit <= 0 {
		return []string{}
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(limit))
	params.Set("featuretype", "city")

	client := g.SuggestClient
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	places, err := g.search(ctx, client, params)
	if err != nil {
		return []string{}
	}

	seen := make(map[string]struct{}, len(places))
	suggestions := make([]string, 0, len(places))
	for _, p := range places {
		if p.Name == "" {
			continue
		}
		if _, dup := seen[p.Name]; dup {
			continue
		}
		seen[p.Name] = struct{}{}
		suggestions = append(suggestions, p.Name)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}
