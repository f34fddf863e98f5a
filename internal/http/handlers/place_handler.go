// Place HTTP handlers.
//
// This file exposes REST endpoints for place resources:
//   - POST   /places        (create, idempotent via Idempotency-Key)
//   - GET    /places        (list, paginated, ETag support)
//   - GET    /places/{id}   (fetch one)
//   - PUT    /places/{id}   (update name/description)
//   - DELETE /places/{id}   (remove)
//
// Handlers are transport-thin: they bind and normalize input, call application
// services, and forward any failure to the error dispatcher, which owns the
// response format for every error in the API.
package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evlampios/go-places-backend/internal/domain"
	"github.com/evlampios/go-places-backend/internal/http/middleware"
	"github.com/evlampios/go-places-backend/internal/repo"
	"github.com/evlampios/go-places-backend/internal/services"
	"github.com/evlampios/go-places-backend/internal/utils"
)

//
// Service contract (context-aware)
//

// PlaceService defines place lifecycle operations consumed by HTTP handlers.
//
// Implementations should be safe for concurrent use and must honor the
// provided context for cancellation and timeouts.
type PlaceService interface {
	// Create stores a new place owned by userID.
	Create(ctx context.Context, userID, name, description, address, imageURL string) (*domain.Place, error)
	// Get returns a single place by id.
	Get(ctx context.Context, id string) (*domain.Place, error)
	// List returns all places for a user (legacy, non-paginated).
	List(ctx context.Context, userID string) ([]domain.Place, error)
	// ListPage returns a page of the user's places and the total count.
	ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Place, int64, error)
	// Update changes the name/description of a place that belongs to userID.
	Update(ctx context.Context, userID, placeID, name, description string) error
	// Delete removes a place that belongs to userID.
	Delete(ctx context.Context, userID, placeID string) error
}

//
// Handler wiring
//

// Handlers groups the HTTP endpoints for place resources. It depends on an
// abstract service interface to keep transport concerns separate from
// business logic.
type Handlers struct {
	placeSvc PlaceService

	// IdemTTL is how long a stored Idempotency-Key record stays replayable.
	// Wired from config (IDEMPOTENCY_TTL); New defaults it to 24h.
	IdemTTL time.Duration
}

// New constructs and returns a Handlers instance bound to the given service.
func New(placeSvc PlaceService) *Handlers {
	return &Handlers{placeSvc: placeSvc, IdemTTL: 24 * time.Hour}
}

// userID extracts the authenticated user id from Gin context (set by upstream
// middleware). If absent, it falls back to "X-User-ID" header (tests use it),
// and finally to "demo-user". It never touches c.Request if it's nil.
func userID(c *gin.Context) string {
	if v, ok := c.Get("userID"); ok {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	if c != nil && c.Request != nil {
		if h := strings.TrimSpace(c.GetHeader("X-User-ID")); h != "" {
			return h
		}
	}
	return "demo-user"
}

//
// DTOs
//

// CreatePlaceRequest is the JSON payload for creating a place.
//
// Required-field validation is owned by the service layer so every invalid
// payload yields the same canonical validation message.
type CreatePlaceRequest struct {
	// Name of the place (required).
	Name string `json:"name" example:"Empire State Building"`
	// Description is optional free text.
	Description string `json:"description" example:"Famous 102-story skyscraper"`
	// Address is the street address (required).
	Address string `json:"address" example:"20 W 34th St, New York, NY 10001"`
	// ImageURL points at a representative photo (required).
	ImageURL string `json:"image_url" example:"https://example.com/esb.jpg"`
}

// UpdatePlaceRequest is the JSON payload for updating a place.
type UpdatePlaceRequest struct {
	// Name is the new place name (must not be blank).
	Name string `json:"name" example:"Empire State Bldg"`
	// Description replaces the stored description.
	Description string `json:"description" example:"Landmark office tower in Midtown"`
}

// PlaceResponse is the JSON envelope for a single place resource.
type PlaceResponse struct {
	// Place is the stored place record.
	Place *domain.Place `json:"place"`
}

// Pagination carries pagination metadata for list responses.
type Pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
	HasNext    bool  `json:"has_next"`
}

// ListPlacesResponse wraps a page of places and pagination information.
type ListPlacesResponse struct {
	Places     []domain.Place `json:"places"`
	Pagination Pagination     `json:"pagination"`
}

//
// Helpers
//

// clampPagination parses and bounds page and page_size query params to sane
// defaults and limits, returning (page, pageSize).
func clampPagination(c *gin.Context) (page, pageSize int) {
	const (
		defaultPage     = 1
		defaultPageSize = 20
		maxPageSize     = 100
	)
	page = utils.AtoiDefault(c.Query("page"), defaultPage)
	if page < 1 {
		page = 1
	}
	pageSize = utils.AtoiDefault(c.Query("page_size"), defaultPageSize)
	if pageSize < 1 {
		pageSize = 1
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}
	return
}

// idempotencyKey returns the Idempotency-Key for this request, preferring the
// value validated and stashed by the idempotency middleware and falling back
// to the raw header when the middleware is not mounted (as in handler tests).
func idempotencyKey(c *gin.Context) string {
	if k, ok := middleware.GetIdempotencyKey(c); ok {
		return k
	}
	return strings.TrimSpace(c.GetHeader(middleware.HeaderIdempotencyKey))
}

//
// Handlers
//

// CreatePlace godoc
// @ID          createPlace
// @Summary     Create a new place
// @Description Creates a place owned by the current user and returns the place resource.
// @Description Supports idempotency via the Idempotency-Key header (same key → same result).
// @Tags        Places
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID        header  string  false "User ID (demo header)"  example(user123)
// @Param       Idempotency-Key  header  string  false "Idempotency key for safe retries (UUID recommended)"  example(7a8d9f4c-1b2a-4c3d-8e9f-0123456789ab)
// @Param       body             body    handlers.CreatePlaceRequest  true  "Create place payload"
//
// @Success     201  {object}  handlers.PlaceResponse
// @Failure     400  {object}  handlers.MessageResponse  "Validation failure"
// @Failure     500  {object}  handlers.MessageResponse  "Internal error"
// @Router      /places [post]
func (h *Handlers) CreatePlace(c *gin.Context) {
	ctx := c.Request.Context()

	var req CreatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		forward(c, domain.Validation("invalid JSON body"))
		return
	}

	currentUser := userID(c)

	// Idempotency (replay path) – return the previously created place.
	idemKey := idempotencyKey(c)
	if idemKey != "" {
		if svc, okSvc := h.placeSvc.(*services.PlaceService); okSvc && svc.DB != nil {
			if rec, err := repo.GetIdempotency(ctx, svc.DB, currentUser, idemKey, time.Now().UTC()); err == nil && rec != nil {
				if prev, err2 := repo.GetPlace(ctx, svc.DB, rec.PlaceID); err2 == nil {
					c.Header("Idempotency-Replayed", "true")
					ok(c, http.StatusCreated, PlaceResponse{Place: prev})
					return
				}
			}
		}
	}

	p, err := h.placeSvc.Create(ctx, currentUser, req.Name, req.Description, req.Address, req.ImageURL)
	if err != nil {
		forward(c, err)
		return
	}

	// Idempotency (store path) – best effort.
	if idemKey != "" {
		if svc, okSvc := h.placeSvc.(*services.PlaceService); okSvc && svc.DB != nil {
			ttl := h.IdemTTL
			if ttl <= 0 {
				ttl = 24 * time.Hour
			}
			_, _ = repo.CreateIdempotency(ctx, svc.DB, currentUser, idemKey, p.ID, http.StatusCreated, ttl)
		}
	}

	ok(c, http.StatusCreated, PlaceResponse{Place: p})
}

// GetPlace godoc
// @ID          getPlace
// @Summary     Fetch a place
// @Description Returns a single place by its id.
// @Tags        Places
// @Produce     json
//
// @Param       id  path  string  true  "Place ID (UUID)"  format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
//
// @Success     200  {object}  handlers.PlaceResponse
// @Failure     400  {object}  handlers.MessageResponse  "Bad place id"
// @Failure     404  {object}  handlers.MessageResponse  "Place not found"
// @Failure     500  {object}  handlers.MessageResponse  "Internal error"
// @Router      /places/{id} [get]
func (h *Handlers) GetPlace(c *gin.Context) {
	placeID := c.Param("id")
	if _, err := uuid.Parse(placeID); err != nil {
		forward(c, domain.Validation("place id must be a UUID"))
		return
	}

	p, err := h.placeSvc.Get(c.Request.Context(), placeID)
	if err != nil {
		forward(c, err)
		return
	}
	ok(c, http.StatusOK, PlaceResponse{Place: p})
}

// ListPlaces godoc
// @ID          listPlaces
// @Summary     List places (paginated)
// @Description Returns a page of the user's places. Supports weak ETag via If-None-Match and may return 304.
// @Tags        Places
// @Produce     json
//
// @Param       X-User-ID      header  string  false "User ID (demo header)"       example(user123)
// @Param       If-None-Match  header  string  false "Return 304 if ETag matches"  example(W/\"abc123\")
// @Param       page           query   int     false "Page number"                  minimum(1) default(1)
// @Param       page_size      query   int     false "Items per page"               minimum(1) maximum(100) default(20)
//
// @Success     200  {object} handlers.ListPlacesResponse
// @Header      200  {string} ETag           "Weak ETag for current result"
// @Header      200  {string} Cache-Control  "Caching directives (if set)"
// @Success     304  {string} string "Not Modified"
// @Failure     500  {object} handlers.MessageResponse "Internal error"
// @Router      /places [get]
func (h *Handlers) ListPlaces(c *gin.Context) {
	ctx := c.Request.Context()
	uid := userID(c)
	page, pageSize := clampPagination(c)

	// ETag pre-check (best effort).
	var db *gorm.DB
	if svc, ok := h.placeSvc.(*services.PlaceService); ok {
		db = svc.DB
	}
	if db != nil {
		count, maxTS, err := repo.PlacesStats(ctx, db, uid)
		if err == nil {
			var ts int64
			if maxTS != nil {
				ts = maxTS.Unix()
			}
			etag := fmt.Sprintf(`W/"places:%s:%d:%d"`, uid, count, ts)
			c.Header("ETag", etag)
			if inm := c.GetHeader("If-None-Match"); inm != "" && inm == etag {
				c.Status(http.StatusNotModified)
				return
			}
		}
	}

	// Fetch page.
	items, total, err := h.placeSvc.ListPage(ctx, uid, page, pageSize)
	if err != nil {
		forward(c, err)
		return
	}

	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	ok(c, http.StatusOK, ListPlacesResponse{
		Places: items,
		Pagination: Pagination{
			Page:       page,
			PageSize:   pageSize,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    page < totalPages,
		},
	})
}

// UpdatePlace godoc
// @ID          updatePlace
// @Summary     Update a place
// @Description Updates the name and description of a place owned by the current user.
// @Tags        Places
// @Accept      json
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Place ID (UUID)"        format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
// @Param       body       body    handlers.UpdatePlaceRequest  true  "Update place payload"
//
// @Success     200  {object} handlers.PlaceResponse
// @Failure     400  {object} handlers.MessageResponse "Validation failure"
// @Failure     404  {object} handlers.MessageResponse "Place not found"
// @Failure     500  {object} handlers.MessageResponse "Internal error"
// @Router      /places/{id} [put]
func (h *Handlers) UpdatePlace(c *gin.Context) {
	ctx := c.Request.Context()
	placeID := c.Param("id")
	if _, err := uuid.Parse(placeID); err != nil {
		forward(c, domain.Validation("place id must be a UUID"))
		return
	}

	var req UpdatePlaceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		forward(c, domain.Validation("invalid JSON body"))
		return
	}

	if err := h.placeSvc.Update(ctx, userID(c), placeID, req.Name, req.Description); err != nil {
		forward(c, err)
		return
	}

	// Return the updated resource.
	p, err := h.placeSvc.Get(ctx, placeID)
	if err != nil {
		forward(c, err)
		return
	}
	ok(c, http.StatusOK, PlaceResponse{Place: p})
}

// DeletePlace godoc
// @ID          deletePlace
// @Summary     Delete a place
// @Description Removes a place owned by the current user.
// @Tags        Places
// @Produce     json
//
// @Param       X-User-ID  header  string  false "User ID (demo header)"  example(user123)
// @Param       id         path    string  true  "Place ID (UUID)"        format(uuid) example(141add05-4415-4938-b5a1-17e0d3171aff)
//
// @Success     204  {string} string "No Content"
// @Failure     400  {object} handlers.MessageResponse "Bad place id"
// @Failure     404  {object} handlers.MessageResponse "Place not found"
// @Failure     500  {object} handlers.MessageResponse "Internal error"
// @Router      /places/{id} [delete]
func (h *Handlers) DeletePlace(c *gin.Context) {
	placeID := c.Param("id")
	if _, err := uuid.Parse(placeID); err != nil {
		forward(c, domain.Validation("place id must be a UUID"))
		return
	}

	if err := h.placeSvc.Delete(c.Request.Context(), userID(c), placeID); err != nil {
		forward(c, err)
		return
	}
	noContent(c)
}
