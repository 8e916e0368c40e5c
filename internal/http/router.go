// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging, panic recovery, metrics, CORS, and
// security headers.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - Deterministic, minimal router setup; all dependencies injected
//   - Production-ready CORS and security header posture
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/as-o/go-weather-backend/internal/config"
	"github.com/as-o/go-weather-backend/internal/domain"
	"github.com/as-o/go-weather-backend/internal/http/handlers"
	"github.com/as-o/go-weather-backend/internal/http/middleware"
	"github.com/as-o/go-weather-backend/internal/repo"
	"github.com/as-o/go-weather-backend/internal/services"
	"github.com/as-o/go-weather-backend/internal/upstream"
	"github.com/as-o/go-weather-backend/internal/web"
)

// historyRepoShim adapts the repository free functions to the
// services.HistoryRepo interface expected by the WeatherService. This keeps
// services decoupled from the concrete repo package while reusing existing
// functions.
type historyRepoShim struct{}

// InsertHistory proxies repo.InsertHistory.
func (historyRepoShim) InsertHistory(ctx context.Context, db *gorm.DB, city, sessionToken string) (*domain.HistoryEntry, error) {
	return repo.InsertHistory(ctx, db, city, sessionToken)
}

// LatestForSession proxies repo.LatestForSession.
func (historyRepoShim) LatestForSession(ctx context.Context, db *gorm.DB, sessionToken string) (*domain.HistoryEntry, error) {
	return repo.LatestForSession(ctx, db, sessionToken)
}

// CountsByCity proxies repo.CountsByCity.
func (historyRepoShim) CountsByCity(ctx context.Context, db *gorm.DB) ([]domain.CityCount, error) {
	return repo.CountsByCity(ctx, db)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), CORS and security
// headers, health and metrics endpoints, builds the upstream API clients over
// a shared response cache, and then mounts the public routes.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. Logger: structured request logs
//  4. Recovery: capture panics after logger
//  5. Gzip compression
//  6. Metrics
//  7. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging
	r.Use(middleware.Logger())

	// 4) Panic recovery to JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 5) Compress responses for clients that accept it
	r.Use(gzip.Gzip(gzip.DefaultCompression))

	// 6) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 7) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		// Echo ACAO with the request Origin when it is in the allowlist (in addition to gin-contrib/cors).
		allowed := make(map[string]struct{}, len(cfg.CORS.AllowedOrigins))
		for _, o := range cfg.CORS.AllowedOrigins {
			allowed[o] = struct{}{}
		}
		r.Use(func(c *gin.Context) {
			if origin := c.GetHeader("Origin"); origin != "" {
				if _, ok := allowed[origin]; ok {
					h := c.Writer.Header()
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
				}
			}
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS)
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Upstream clients share one response cache so repeated lookups within
	// the TTL never hit the network twice.
	up := cfg.Upstream
	var rt http.RoundTripper
	if up.CacheTTL > 0 {
		rt = &upstream.CachingTransport{Cache: upstream.NewResponseCache(up.CacheTTL)}
	}
	geo := &upstream.Geocoder{
		BaseURL:       up.GeocodeURL,
		UserAgent:     up.UserAgent,
		Client:        upstream.NewClient(up.GeocodeTimeout, rt),
		SuggestClient: upstream.NewClient(up.SuggestTimeout, rt),
	}
	wx := &upstream.WeatherClient{
		BaseURL:   up.WeatherURL,
		UserAgent: up.UserAgent,
		Client:    upstream.NewClient(up.WeatherTimeout, rt),
	}

	// Dependency injection: service ← repo/db/upstream
	svc := services.NewWeatherService(db, historyRepoShim{}, geo, wx)
	svc.SuggestLimit = up.SuggestLimit

	h := handlers.New(svc)

	// HTML pages are rendered from the embedded template set.
	r.SetHTMLTemplate(web.Templates())

	// Public routes
	r.GET("/", h.Index)
	r.GET("/autocomplete", h.Autocomplete)
	r.GET("/weather", h.Weather)
	r.GET("/location-stats", h.LocationStats)
}
