// Weather HTTP handlers.
//
// This file exposes the public endpoints:
//   - GET /                (landing page with pre-fill hint)
//   - GET /autocomplete    (JSON suggestions, best effort)
//   - GET /weather         (lookup pipeline, HTML result, session cookie)
//   - GET /location-stats  (JSON per-city counts)
//
// Handlers are transport-thin: they read the session cookie and query
// params, call the weather service, and translate results into HTTP
// responses. All cross-request state lives in the cookie and the store.
package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/as-o/go-weather-backend/internal/domain"
	"github.com/as-o/go-weather-backend/internal/http/middleware"
	"github.com/as-o/go-weather-backend/internal/services"
	"github.com/as-o/go-weather-backend/internal/upstream"
)

// SessionCookie is the cookie carrying the opaque per-browser token.
// It is httponly and session-lifetime: the server keeps no expiry record.
const SessionCookie = "session_id"

// WeatherService defines the lookup operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type WeatherService interface {
	// Lookup runs geocode → fetch → persist for location under sessionToken.
	Lookup(ctx context.Context, location, sessionToken string) (*services.LookupResult, error)
	// Suggest returns autocomplete candidates; it never errors.
	Suggest(ctx context.Context, query string) []string
	// LastCity returns the most recent city for a session ("" when none).
	LastCity(ctx context.Context, sessionToken string) (string, error)
	// Stats returns the ordered per-city lookup counts.
	Stats(ctx context.Context) ([]domain.CityCount, error)
}

// Handlers groups the HTTP endpoints. It depends on the abstract service
// interface to keep transport concerns separate from business logic.
type Handlers struct {
	svc WeatherService
}

// New constructs a Handlers instance bound to the given service.
func New(svc WeatherService) *Handlers {
	return &Handlers{svc: svc}
}

// sessionToken reads the session cookie. It returns "" when the browser has
// no session yet.
func sessionToken(c *gin.Context) string {
	tok, err := c.Cookie(SessionCookie)
	if err != nil {
		return ""
	}
	return tok
}

// setSessionCookie (re)issues the session cookie on the response. MaxAge 0
// leaves expiry to the browser session.
func setSessionCookie(c *gin.Context, token string) {
	c.SetCookie(SessionCookie, token, 0, "/", "", false, true)
}

// Index renders the landing page. When the browser presents a session
// cookie, the most recently looked-up city is surfaced as a pre-fill hint.
// The page always renders 200; a store failure only drops the hint.
func (h *Handlers) Index(c *gin.Context) {
	data := gin.H{}
	if tok := sessionToken(c); tok != "" {
		city, err := h.svc.LastCity(c.Request.Context(), tok)
		if err != nil {
			middleware.LoggerFrom(c).Warn().Err(err).Msg("history hint unavailable")
		} else if city != "" {
			data["LastLocation"] = city
		}
	}
	c.HTML(http.StatusOK, "index.html", data)
}

// Autocomplete returns up to three suggestions for the query parameter as a
// JSON array of strings. It never fails: short queries and upstream errors
// both yield an empty array.
func (h *Handlers) Autocomplete(c *gin.Context) {
	suggestions := h.svc.Suggest(c.Request.Context(), c.Query("query"))
	if suggestions == nil {
		suggestions = []string{}
	}
	ok(c, http.StatusOK, suggestions)
}

// Weather runs the lookup pipeline and renders the result page. A missing
// session cookie mints a fresh token; the cookie is set (or refreshed) on
// the successful response. Failures: 400 without a location, 404 when the
// geocoder has no match (naming the location), 500 on upstream or storage
// errors.
func (h *Handlers) Weather(c *gin.Context) {
	location := c.Query("location")
	if strings.TrimSpace(location) == "" {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "location query parameter is required")
		return
	}

	token := sessionToken(c)
	if token == "" {
		token = uuid.NewString()
	}

	res, err := h.svc.Lookup(c.Request.Context(), location, token)
	if err != nil {
		switch {
		case errors.Is(err, upstream.ErrLocationNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, fmt.Sprintf("location %q not found", location))
		case errors.Is(err, upstream.ErrUpstream):
			fail(c, http.StatusInternalServerError, ErrCodeUpstreamFailed, "upstream weather lookup failed")
		default:
			fail(c, http.StatusInternalServerError, ErrCodeInternal, err.Error())
		}
		return
	}

	setSessionCookie(c, token)
	c.HTML(http.StatusOK, "index.html", gin.H{
		"Location":    res.Location,
		"Description": res.Description,
		"Weather":     res.Weather,
		"SessionID":   token,
	})
}

// LocationStats returns the full per-city count list as a JSON array of
// {city, count} objects, ordered by count descending with a stable
// tie-break. No pagination, no filtering.
func (h *Handlers) LocationStats(c *gin.Context) {
	stats, err := h.svc.Stats(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeStatsFailed, err.Error())
		return
	}
	ok(c, http.StatusOK, stats)
}
