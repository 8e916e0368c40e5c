// Package services: WeatherService
//
// This file implements the WeatherService, which composes the geocoder, the
// weather client, and the history repository into the lookup pipeline:
// resolve coordinates, fetch current weather, persist a history record, and
// return the reading together with its human-readable description. The
// service is stateless across requests; all shared state lives in the store.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/as-o/go-weather-backend/internal/domain"
	"github.com/as-o/go-weather-backend/internal/repo"
	"github.com/as-o/go-weather-backend/internal/upstream"
)

// HistoryRepo defines the repository contract required by WeatherService.
type HistoryRepo interface {
	// InsertHistory appends one lookup record.
	InsertHistory(ctx context.Context, db *gorm.DB, city, sessionToken string) (*domain.HistoryEntry, error)

	// LatestForSession returns the most recent entry for a session token.
	LatestForSession(ctx context.Context, db *gorm.DB, sessionToken string) (*domain.HistoryEntry, error)

	// CountsByCity returns the per-city aggregate, ordered.
	CountsByCity(ctx context.Context, db *gorm.DB) ([]domain.CityCount, error)
}

// Geocoder resolves free-text place names. Implemented by upstream.Geocoder.
type Geocoder interface {
	Resolve(ctx context.Context, location string) (lat, lon float64, err error)
	Suggest(ctx context.Context, query string, limit int) []string
}

// WeatherProvider fetches current conditions for a coordinate pair.
// Implemented by upstream.WeatherClient.
type WeatherProvider interface {
	Current(ctx context.Context, lat, lon float64) (upstream.Reading, error)
}

// LookupResult is the outcome of a successful weather lookup, ready for
// template rendering.
type LookupResult struct {
	// Location is the raw requested string, echoed back.
	Location string
	// Weather is the current-weather reading from the upstream.
	Weather upstream.Reading
	// Description is the WMO weather code rendered as text.
	Description string
}

// WeatherService provides the lookup pipeline plus the read-only queries
// backing the landing page and the stats endpoint.
type WeatherService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the history repository used by this service.
	Repo HistoryRepo
	// Geo resolves locations and serves autocomplete suggestions.
	Geo Geocoder
	// Weather fetches current conditions.
	Weather WeatherProvider

	// SuggestLimit caps autocomplete suggestions per query.
	SuggestLimit int
	// MinQueryLen is the autocomplete cutoff: shorter queries return an
	// empty list without an upstream call.
	MinQueryLen int
}

// NewWeatherService constructs a WeatherService with the default
// autocomplete limits.
func NewWeatherService(db *gorm.DB, r HistoryRepo, geo Geocoder, w WeatherProvider) *WeatherService {
	return &WeatherService{
		DB:           db,
		Repo:         r,
		Geo:          geo,
		Weather:      w,
		SuggestLimit: 3,
		MinQueryLen:  2,
	}
}

// Lookup runs the full pipeline for location under sessionToken. Failures
// propagate with their cause intact: upstream.ErrLocationNotFound when the
// geocoder has no match, upstream.ErrUpstream on upstream failures, and raw
// DB errors when the history insert fails. The insert happens before the
// result is returned; a failed insert fails the lookup even though weather
// was already fetched.
func (s *WeatherService) Lookup(ctx context.Context, location, sessionToken string) (*LookupResult, error) {
	if location == "" {
		return nil, ErrEmptyLocation
	}

	lat, lon, err := s.Geo.Resolve(ctx, location)
	if err != nil {
		return nil, err
	}

	reading, err := s.Weather.Current(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if _, err := s.Repo.InsertHistory(ctx, s.DB, location, sessionToken); err != nil {
		return nil, err
	}

	return &LookupResult{
		Location:    location,
		Weather:     reading,
		Description: upstream.Describe(reading.Weathercode),
	}, nil
}

// Suggest returns up to SuggestLimit autocomplete suggestions for query.
// Queries shorter than MinQueryLen return an empty list without an
// upstream call. Never errors.
func (s *WeatherService) Suggest(ctx context.Context, query string) []string {
	if len([]rune(query)) < s.MinQueryLen {
		return []string{}
	}
	return s.Geo.Suggest(ctx, query, s.SuggestLimit)
}

// LastCity returns the most recently looked-up city for sessionToken, used
// as the landing page pre-fill hint. A session with no history yields ""
// with no error; other DB errors propagate.
func (s *WeatherService) LastCity(ctx context.Context, sessionToken string) (string, error) {
	e, err := s.Repo.LatestForSession(ctx, s.DB, sessionToken)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", nil
		}
		return "", err
	}
	return e.City, nil
}

// Stats returns the per-city lookup counts, ordered by count descending
// (ties by city name ascending).
func (s *WeatherService) Stats(ctx context.Context) ([]domain.CityCount, error) {
	return s.Repo.CountsByCity(ctx, s.DB)
}
