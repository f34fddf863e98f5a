// Package httpapi wires the HTTP transport (Gin) to application services,
// middleware, and route handlers. It centralizes cross-cutting concerns such
// as tracing, correlation IDs, logging/redaction, panic recovery, metrics,
// compression, CORS, security headers, idempotency, and rate limiting.
//
// Design goals:
//   - Put observability first (OTel + Prometheus)
//   - Safe-by-default middleware ordering (RequestID → logging → recovery)
//   - One error pipeline: handlers forward failures, the dispatcher answers
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
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/evlampios/go-places-backend/internal/config"
	"github.com/evlampios/go-places-backend/internal/domain"
	"github.com/evlampios/go-places-backend/internal/http/handlers"
	"github.com/evlampios/go-places-backend/internal/http/middleware"
	"github.com/evlampios/go-places-backend/internal/repo"
	"github.com/evlampios/go-places-backend/internal/services"
)

// placeRepoShim adapts the repository free functions to the services.PlaceRepo
// interface expected by the PlaceService. This keeps services decoupled from
// the concrete repo package while reusing existing functions.
type placeRepoShim struct{}

// CreatePlace proxies repo.CreatePlace.
func (placeRepoShim) CreatePlace(ctx context.Context, db *gorm.DB, creatorID, name, description, address, imageURL string) (*domain.Place, error) {
	return repo.CreatePlace(ctx, db, creatorID, name, description, address, imageURL)
}

// GetPlace proxies repo.GetPlace.
func (placeRepoShim) GetPlace(ctx context.Context, db *gorm.DB, id string) (*domain.Place, error) {
	return repo.GetPlace(ctx, db, id)
}

// ListPlaces proxies repo.ListPlaces.
func (placeRepoShim) ListPlaces(ctx context.Context, db *gorm.DB, creatorID string) ([]domain.Place, error) {
	return repo.ListPlaces(ctx, db, creatorID)
}

// CountPlaces proxies repo.CountPlaces (pagination support).
func (placeRepoShim) CountPlaces(ctx context.Context, db *gorm.DB, creatorID string) (int64, error) {
	return repo.CountPlaces(ctx, db, creatorID)
}

// ListPlacesPage proxies repo.ListPlacesPage (pagination support).
func (placeRepoShim) ListPlacesPage(ctx context.Context, db *gorm.DB, creatorID string, offset, limit int) ([]domain.Place, error) {
	return repo.ListPlacesPage(ctx, db, creatorID, offset, limit)
}

// UpdatePlace proxies repo.UpdatePlace.
func (placeRepoShim) UpdatePlace(ctx context.Context, db *gorm.DB, id, creatorID, name, description string) error {
	return repo.UpdatePlace(ctx, db, id, creatorID, name, description)
}

// DeletePlace proxies repo.DeletePlace.
func (placeRepoShim) DeletePlace(ctx context.Context, db *gorm.DB, id, creatorID string) error {
	return repo.DeletePlace(ctx, db, id, creatorID)
}

// RegisterRoutes attaches all middleware and HTTP endpoints to the given Gin
// engine. It configures observability (tracing, metrics), the error dispatch
// pipeline, idempotency and rate limiting, CORS and security headers, health
// and metrics endpoints, and then mounts the versioned public API under /api/v*.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Gzip: response compression (before any middleware that may write a
//     body, so late writers still go through the open compressed stream)
//  5. Recovery: capture panics after logger
//  6. Body size limiter
//  7. Metrics (wraps the dispatcher so it records the status the dispatcher wrote)
//  8. ErrorDispatcher: classify forwarded errors into the JSON error envelope
//  9. Idempotency validator (inside the dispatcher so bad keys get dispatched;
//     before rate limiter to allow bypass on replay)
//  10. Rate limiter (per user/IP, bypass on replay; answers 429 inline since
//     429 is not part of the error taxonomy)
//  11. CORS and Security headers
func RegisterRoutes(r *gin.Engine, db *gorm.DB, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	// 1) Trace all HTTP requests
	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))

	// 2) Correlate requests and logs
	r.Use(middleware.RequestID())

	// 3) Structured logging with redaction
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{
			"X-API-Key", // project-specific sensitive header example
		},
	}))

	// 4) Response compression (Prometheus does its own content negotiation)
	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	// 5) Panic recovery to the masked JSON 500 (with request id)
	r.Use(middleware.Recovery())

	// 6) Global body size limit (1 MiB)
	r.Use(limitBody(1 << 20))

	// 7) Prometheus metrics and /metrics endpoint
	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 8) Error dispatcher: single source of truth for error responses
	r.Use(middleware.ErrorDispatcher())

	// 9) Idempotency validation (before rate limiting)
	r.Use(middleware.IdempotencyValidator(
		middleware.IdempotencyOptions{
			MaxLen: 200,
		},
		func(ctx context.Context, userID, key string, now time.Time) (bool, error) {
			rec, err := repo.GetIdempotency(ctx, db, userID, key, now)
			if err != nil || rec == nil {
				return false, nil
			}
			return true, nil
		},
	))

	// 10) Token-bucket rate limiter per user/IP
	rl := middleware.NewRateLimiter(cfg.RateRPS, cfg.RateBurst, middleware.KeyByUserOrIP())
	r.Use(rl.Handler())

	// 11) CORS posture (safe defaults: allow all if none configured)
	if len(cfg.CORS.AllowedOrigins) == 0 {
		// Force ACAO: * even for requests without an Origin header (helps tests and simple health checks).
		r.Use(func(c *gin.Context) {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
			c.Next()
		})
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
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
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-User-ID", middleware.HeaderIdempotencyKey},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Security headers (HSTS only when enabled and request is HTTPS).
	// NoStore stays off so ETag revalidation on the list endpoint keeps working.
	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS:   cfg.Security.EnableHSTS,
		HSTSMaxAge:   cfg.Security.HSTSMaxAge,
		NoStore:      false,
		EnablePolicy: true,
	}))

	// Fallbacks. Unknown routes report through the dispatcher like any other
	// missing resource; 405 is a transport answer outside the error taxonomy.
	r.NoRoute(func(c *gin.Context) {
		handlers.Forward(c, domain.NotFound("Could not find this route"))
	})
	r.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handlers.MessageResponse{Message: "method not allowed"})
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Swagger UI (optional)
	if cfg.SwaggerEnabled {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	// Dependency injection: service ← repo/db
	placeSvc := services.NewPlaceService(db, placeRepoShim{})
	placeSvc.NameLocale = language.English

	h := handlers.New(placeSvc)
	h.IdemTTL = cfg.IdempotencyTTL

	// Public API
	apiBase := cfg.APIBasePath // e.g. "/api/v1"
	api := groupWithPrefix(r, apiBase)
	{
		// Places
		api.POST("/places", h.CreatePlace)
		api.GET("/places", h.ListPlaces)
		api.GET("/places/:id", h.GetPlace)
		api.PUT("/places/:id", h.UpdatePlace)
		api.DELETE("/places/:id", h.DeletePlace)
	}
}

// limitBody returns a Gin middleware that caps the request body size for all
// endpoints to maxBytes using http.MaxBytesReader. Requests exceeding the cap
// will cause downstream body reads to error.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}

// groupWithPrefix mounts a group at prefix, treating "/" (or empty) as root.
func groupWithPrefix(r *gin.Engine, prefix string) *gin.RouterGroup {
	if prefix == "" || prefix == "/" {
		return r.Group("")
	}
	return r.Group(prefix)
}
