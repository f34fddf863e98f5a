package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evlampios/go-places-backend/internal/domain"
	"github.com/evlampios/go-places-backend/internal/http/middleware"
	"github.com/evlampios/go-places-backend/internal/repo"
	"github.com/evlampios/go-places-backend/internal/services"
)

// ---------- test DB + repo shim ----------

func newPlaceDB(t *testing.T) *gorm.DB {
	t.Helper()

	// Unique DSN per call to avoid cross-test contamination
	dsn := fmt.Sprintf("file:place_handlers_%s?mode=memory&cache=shared", uuid.NewString())

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	// Enforce FKs and migrate schemas
	db.Exec("PRAGMA foreign_keys=ON;")
	if err := db.AutoMigrate(&domain.Place{}, &domain.Idempotency{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Minimal shim implementing services.PlaceRepo using repo package (like router.go)
type testPlaceRepo struct{}

func (testPlaceRepo) CreatePlace(ctx context.Context, db *gorm.DB, creatorID, name, description, address, imageURL string) (*domain.Place, error) {
	return repo.CreatePlace(ctx, db, creatorID, name, description, address, imageURL)
}

func (testPlaceRepo) GetPlace(ctx context.Context, db *gorm.DB, id string) (*domain.Place, error) {
	return repo.GetPlace(ctx, db, id)
}

func (testPlaceRepo) ListPlaces(ctx context.Context, db *gorm.DB, creatorID string) ([]domain.Place, error) {
	return repo.ListPlaces(ctx, db, creatorID)
}

func (testPlaceRepo) CountPlaces(ctx context.Context, db *gorm.DB, creatorID string) (int64, error) {
	return repo.CountPlaces(ctx, db, creatorID)
}

func (testPlaceRepo) ListPlacesPage(ctx context.Context, db *gorm.DB, creatorID string, offset, limit int) ([]domain.Place, error) {
	return repo.ListPlacesPage(ctx, db, creatorID, offset, limit)
}

func (testPlaceRepo) UpdatePlace(ctx context.Context, db *gorm.DB, id, creatorID, name, description string) error {
	return repo.UpdatePlace(ctx, db, id, creatorID, name, description)
}

func (testPlaceRepo) DeletePlace(ctx context.Context, db *gorm.DB, id, creatorID string) error {
	return repo.DeletePlace(ctx, db, id, creatorID)
}

// ---------- flexible service stub ----------

type stubPlaceSvc struct {
	create   func(context.Context, string, string, string, string, string) (*domain.Place, error)
	get      func(context.Context, string) (*domain.Place, error)
	list     func(context.Context, string) ([]domain.Place, error)
	listPage func(context.Context, string, int, int) ([]domain.Place, int64, error)
	update   func(context.Context, string, string, string, string) error
	delete   func(context.Context, string, string) error
}

func (s stubPlaceSvc) Create(ctx context.Context, u, n, d, a, i string) (*domain.Place, error) {
	if s.create != nil {
		return s.create(ctx, u, n, d, a, i)
	}
	return &domain.Place{ID: "p", CreatorID: u, Name: n, Description: d, Address: a, ImageURL: i}, nil
}

func (s stubPlaceSvc) Get(ctx context.Context, id string) (*domain.Place, error) {
	if s.get != nil {
		return s.get(ctx, id)
	}
	return &domain.Place{ID: id}, nil
}

func (s stubPlaceSvc) List(ctx context.Context, u string) ([]domain.Place, error) {
	if s.list != nil {
		return s.list(ctx, u)
	}
	return nil, nil
}

func (s stubPlaceSvc) ListPage(ctx context.Context, u string, p, ps int) ([]domain.Place, int64, error) {
	if s.listPage != nil {
		return s.listPage(ctx, u, p, ps)
	}
	return nil, 0, nil
}

func (s stubPlaceSvc) Update(ctx context.Context, u, id, n, d string) error {
	if s.update != nil {
		return s.update(ctx, u, id, n, d)
	}
	return nil
}

func (s stubPlaceSvc) Delete(ctx context.Context, u, id string) error {
	if s.delete != nil {
		return s.delete(ctx, u, id)
	}
	return nil
}

// newPlacesRouter mounts the handlers behind the error dispatcher the same way
// the real router does, so forwarded errors materialize as HTTP responses.
func newPlacesRouter(h *Handlers) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ErrorDispatcher())
	r.POST("/places", h.CreatePlace)
	r.GET("/places", h.ListPlaces)
	r.GET("/places/:id", h.GetPlace)
	r.PUT("/places/:id", h.UpdatePlace)
	r.DELETE("/places/:id", h.DeletePlace)
	return r
}

func errBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("invalid JSON body %q: %v", w.Body.String(), err)
	}
	return body
}

// ---------- helpers-only tests ----------

func Test_userID_and_clampPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// userID helper
	rc := gin.CreateTestContextOnly(httptest.NewRecorder(), gin.New())
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("fallback userID = %q", got)
	}
	rc.Set("userID", "u1")
	if got := userID(rc); got != "u1" {
		t.Fatalf("ctx userID = %q", got)
	}
	rc.Set("userID", 123) // wrong type → fallback
	if got := userID(rc); got != "demo-user" {
		t.Fatalf("wrong-type fallback userID = %q", got)
	}

	// header fallback
	cH, _ := gin.CreateTestContext(httptest.NewRecorder())
	reqH := httptest.NewRequest("GET", "/", nil)
	reqH.Header.Set("X-User-ID", "u-123")
	cH.Request = reqH
	if got := userID(cH); got != "u-123" {
		t.Fatalf("header fallback userID = %q", got)
	}

	// clampPagination bounds
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	req := httptest.NewRequest("GET", "/?page=-5&page_size=9999", nil)
	c.Request = req
	p, ps := clampPagination(c)
	if p != 1 || ps != 100 {
		t.Fatalf("clamp bounds got p=%d ps=%d", p, ps)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	req = httptest.NewRequest("GET", "/?page=&page_size=0", nil)
	c.Request = req
	p, ps = clampPagination(c)
	if p != 1 || ps != 1 {
		t.Fatalf("clamp defaults got p=%d ps=%d", p, ps)
	}
}

func Test_idempotencyKey(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// No middleware stash, no header
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/", nil)
	if got := idempotencyKey(c); got != "" {
		t.Fatalf("expected empty key, got %q", got)
	}

	// Raw header fallback (trimmed)
	c.Request.Header.Set(middleware.HeaderIdempotencyKey, "  hdr-key  ")
	if got := idempotencyKey(c); got != "hdr-key" {
		t.Fatalf("header fallback key = %q", got)
	}

	// Stashed value wins over the header
	c.Set("idem.key", "stashed-key")
	if got := idempotencyKey(c); got != "stashed-key" {
		t.Fatalf("stashed key = %q", got)
	}
}

// ---------- CreatePlace ----------

func TestCreatePlace_BadJSON_Validation_Success_Internal(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Bad JSON -> 400 via dispatcher
	{
		r := newPlacesRouter(New(stubPlaceSvc{}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString("{bad"))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("bad json -> %d", w.Code)
		}
		if body := errBody(t, w); body["message"] != "invalid JSON body" {
			t.Fatalf("unexpected body: %v", body)
		}
	}

	// Missing required fields -> 400 with the canonical validation message
	{
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		r := newPlacesRouter(New(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(`{"description":"no name"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("missing fields -> %d body=%s", w.Code, w.Body.String())
		}
		if body := errBody(t, w); body["message"] != "Please enter valid place data" {
			t.Fatalf("unexpected body: %v", body)
		}
	}

	// Success -> 201, name normalized and display-cased
	{
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		r := newPlacesRouter(New(svc))

		payload := `{"name":"  empire   state building ","address":"20 W 34th St","image_url":"https://img.example/esb.jpg"}`
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
		}
		var out PlaceResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Place == nil || out.Place.CreatorID != "u1" || out.Place.Name != "Empire State Building" {
			t.Fatalf("unexpected place: %#v", out.Place)
		}
		if out.Place.Address != "20 W 34th St" || out.Place.ImageURL != "https://img.example/esb.jpg" {
			t.Fatalf("unexpected place fields: %#v", out.Place)
		}
	}

	// Internal error -> masked 500
	{
		errSvc := stubPlaceSvc{
			create: func(context.Context, string, string, string, string, string) (*domain.Place, error) {
				return nil, gorm.ErrInvalidField
			},
		}
		r := newPlacesRouter(New(errSvc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(`{"name":"X","address":"Y","image_url":"Z"}`))
		req.Header.Set("X-User-ID", "uX")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusInternalServerError {
			t.Fatalf("internal -> %d", w.Code)
		}
		if body := errBody(t, w); body["message"] != "Internal Server Error" {
			t.Fatalf("raw error must be masked: %v", body)
		}
	}
}

func TestCreatePlace_IdempotentReplay(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPlaceDB(t)
	svc := services.NewPlaceService(db, testPlaceRepo{})
	r := newPlacesRouter(New(svc))

	payload := `{"name":"CN Tower","address":"290 Bremner Blvd","image_url":"https://img.example/cn.jpg"}`
	key := uuid.NewString()

	// First request creates the place.
	w1 := httptest.NewRecorder()
	req1 := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
	req1.Header.Set("X-User-ID", "u1")
	req1.Header.Set(middleware.HeaderIdempotencyKey, key)
	r.ServeHTTP(w1, req1)
	if w1.Code != http.StatusCreated {
		t.Fatalf("first create -> %d body=%s", w1.Code, w1.Body.String())
	}
	var first PlaceResponse
	if err := json.Unmarshal(w1.Body.Bytes(), &first); err != nil {
		t.Fatalf("json: %v", err)
	}
	if w1.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("first request must not be marked as replay")
	}

	// Retry with the same key replays the stored place, even with a new body.
	w2 := httptest.NewRecorder()
	req2 := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(`{"name":"Other","address":"Elsewhere","image_url":"https://img.example/x.jpg"}`))
	req2.Header.Set("X-User-ID", "u1")
	req2.Header.Set(middleware.HeaderIdempotencyKey, key)
	r.ServeHTTP(w2, req2)
	if w2.Code != http.StatusCreated {
		t.Fatalf("replay -> %d body=%s", w2.Code, w2.Body.String())
	}
	if w2.Header().Get("Idempotency-Replayed") != "true" {
		t.Fatalf("expected Idempotency-Replayed header on retry")
	}
	var second PlaceResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &second); err != nil {
		t.Fatalf("json: %v", err)
	}
	if second.Place == nil || first.Place == nil || second.Place.ID != first.Place.ID {
		t.Fatalf("replay must return the original place: first=%#v second=%#v", first.Place, second.Place)
	}
	if second.Place.Name != "CN Tower" {
		t.Fatalf("replay returned wrong record: %#v", second.Place)
	}

	// A different user with the same key is not a replay.
	w3 := httptest.NewRecorder()
	req3 := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
	req3.Header.Set("X-User-ID", "u2")
	req3.Header.Set(middleware.HeaderIdempotencyKey, key)
	r.ServeHTTP(w3, req3)
	if w3.Code != http.StatusCreated {
		t.Fatalf("other-user create -> %d", w3.Code)
	}
	if w3.Header().Get("Idempotency-Replayed") != "" {
		t.Fatalf("keys are scoped per user; no replay expected")
	}
}

func TestCreatePlace_IdemTTL_Configurable(t *testing.T) {
	gin.SetMode(gin.TestMode)

	payload := `{"name":"Old Mill","address":"21 Old Mill Rd","image_url":"https://img.example/mill.jpg"}`

	t.Run("stored record honors the configured ttl", func(t *testing.T) {
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		h := New(svc)
		h.IdemTTL = 48 * time.Hour
		r := newPlacesRouter(h)

		key := uuid.NewString()
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
		req.Header.Set("X-User-ID", "u1")
		req.Header.Set(middleware.HeaderIdempotencyKey, key)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusCreated {
			t.Fatalf("create -> %d body=%s", w.Code, w.Body.String())
		}

		// Still replayable well past the 24h default.
		rec, err := repo.GetIdempotency(context.Background(), db, "u1", key, time.Now().UTC().Add(36*time.Hour))
		if err != nil || rec == nil {
			t.Fatalf("record should stay valid for the configured 48h ttl: rec=%v err=%v", rec, err)
		}
	})

	t.Run("expired record is not replayed", func(t *testing.T) {
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		h := New(svc)
		h.IdemTTL = time.Nanosecond
		r := newPlacesRouter(h)

		key := uuid.NewString()
		w1 := httptest.NewRecorder()
		req1 := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
		req1.Header.Set("X-User-ID", "u1")
		req1.Header.Set(middleware.HeaderIdempotencyKey, key)
		r.ServeHTTP(w1, req1)
		if w1.Code != http.StatusCreated {
			t.Fatalf("first create -> %d body=%s", w1.Code, w1.Body.String())
		}
		var first PlaceResponse
		if err := json.Unmarshal(w1.Body.Bytes(), &first); err != nil {
			t.Fatalf("json: %v", err)
		}

		w2 := httptest.NewRecorder()
		req2 := httptest.NewRequest(http.MethodPost, "/places", bytes.NewBufferString(payload))
		req2.Header.Set("X-User-ID", "u1")
		req2.Header.Set(middleware.HeaderIdempotencyKey, key)
		r.ServeHTTP(w2, req2)
		if w2.Code != http.StatusCreated {
			t.Fatalf("retry -> %d body=%s", w2.Code, w2.Body.String())
		}
		if w2.Header().Get("Idempotency-Replayed") != "" {
			t.Fatalf("expired key must not replay")
		}
		var second PlaceResponse
		if err := json.Unmarshal(w2.Body.Bytes(), &second); err != nil {
			t.Fatalf("json: %v", err)
		}
		if first.Place == nil || second.Place == nil || second.Place.ID == first.Place.ID {
			t.Fatalf("retry after expiry must create a fresh place: first=%#v second=%#v", first.Place, second.Place)
		}
	})
}

// ---------- GetPlace ----------

func TestGetPlace_BadUUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPlaceDB(t)
	svc := services.NewPlaceService(db, testPlaceRepo{})
	r := newPlacesRouter(New(svc))

	// bad UUID -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/places/not-a-uuid", nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("uuid 400 -> %d", w.Code)
	}

	// well-formed but missing -> 404 with the domain message
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/places/"+uuid.NewString(), nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing 404 -> %d body=%s", w.Code, w.Body.String())
	}
	if body := errBody(t, w); body["message"] != "Place is not found" {
		t.Fatalf("unexpected body: %v", body)
	}

	// success
	created, err := svc.Create(context.Background(), "u1", "Acropolis", "", "Athens 105 58", "https://img.example/acr.jpg")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/places/"+created.ID, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get 200 -> %d body=%s", w.Code, w.Body.String())
	}
	var out PlaceResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Place == nil || out.Place.ID != created.ID || out.Place.Name != "Acropolis" {
		t.Fatalf("unexpected place: %#v", out.Place)
	}
}

// ---------- ListPlaces ----------

func TestListPlaces_ETag304_and_SuccessPage(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPlaceDB(t)
	svc := services.NewPlaceService(db, testPlaceRepo{})
	r := newPlacesRouter(New(svc))

	// Seed places for user u1
	if _, err := svc.Create(context.Background(), "u1", "Place A", "", "Addr A", "https://img.example/a.jpg"); err != nil {
		t.Fatalf("seed a: %v", err)
	}
	if _, err := svc.Create(context.Background(), "u1", "Place B", "", "Addr B", "https://img.example/b.jpg"); err != nil {
		t.Fatalf("seed b: %v", err)
	}

	// Compute expected ETag
	count, maxTS, err := repo.PlacesStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	var ts int64
	if maxTS != nil {
		ts = maxTS.Unix()
	}
	etag := fmt.Sprintf(`W/"places:%s:%d:%d"`, "u1", count, ts)

	// 304 path
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/places", nil)
	req.Header.Set("X-User-ID", "u1")
	req.Header.Set("If-None-Match", etag)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotModified {
		t.Fatalf("etag 304 -> %d", w.Code)
	}

	// 200 success with pagination
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/places?page=1&page_size=1", nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("list 200 -> %d body=%s", w.Code, w.Body.String())
	}
	var out ListPlacesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Page != 1 || out.Pagination.PageSize != 1 || out.Pagination.Total != count {
		t.Fatalf("pagination mismatch: %#v", out.Pagination)
	}
	if out.Pagination.TotalPages != 2 || out.Pagination.HasNext != true {
		t.Fatalf("pages/hasnext mismatch: %#v", out.Pagination)
	}
	if len(out.Places) != 1 {
		t.Fatalf("expected 1 place on page 1")
	}
}

func TestListPlaces_SkipETagPrecheck_And_ListError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Use the stub service (not *services.PlaceService) so db==nil → ETag pre-check is skipped.
	svc := stubPlaceSvc{
		listPage: func(context.Context, string, int, int) ([]domain.Place, int64, error) {
			return nil, 0, gorm.ErrInvalidField
		},
	}
	r := newPlacesRouter(New(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/places?page=1&page_size=5", nil)
	req.Header.Set("X-User-ID", "uX")
	// Provide a bogus If-None-Match to also exercise the inm != "" && inm != etag path
	req.Header.Set("If-None-Match", `W/"nope"`)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 on list error; got %d body=%s", w.Code, w.Body.String())
	}
	if body := errBody(t, w); body["message"] != "Internal Server Error" {
		t.Fatalf("raw error must be masked: %v", body)
	}
}

func TestListPlaces_EmptyState_SetsETag_WithZeroTS(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// Real service with migrated DB, but no places for this user → count=0, maxTS=nil.
	db := newPlaceDB(t)
	svc := services.NewPlaceService(db, testPlaceRepo{})
	r := newPlacesRouter(New(svc))

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/places", nil)
	req.Header.Set("X-User-ID", "u2") // user with no places
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 on empty list; got %d body=%s", w.Code, w.Body.String())
	}
	if et := w.Header().Get("ETag"); et != `W/"places:u2:0:0"` {
		t.Fatalf(`expected ETag W/"places:u2:0:0", got %q`, et)
	}

	var out ListPlacesResponse
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("json: %v", err)
	}
	if out.Pagination.Total != 0 || out.Pagination.TotalPages != 0 || out.Pagination.HasNext {
		t.Fatalf("unexpected pagination: %#v", out.Pagination)
	}
}

// ---------- UpdatePlace ----------

func TestUpdatePlace_UUID_Validation_Success_NotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)

	// bad UUID -> 400
	{
		r := newPlacesRouter(New(stubPlaceSvc{}))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/places/not-uuid", bytes.NewBufferString(`{"name":"x"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("uuid 400 -> %d", w.Code)
		}
	}

	// blank name -> 400 with the canonical validation message
	{
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		r := newPlacesRouter(New(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/places/"+uuid.NewString(), bytes.NewBufferString(`{"name":"   "}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("blank name 400 -> %d body=%s", w.Code, w.Body.String())
		}
		if body := errBody(t, w); body["message"] != "Please enter valid place data" {
			t.Fatalf("unexpected body: %v", body)
		}
	}

	// success 200 returns the updated resource
	{
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		r := newPlacesRouter(New(svc))

		created, err := svc.Create(context.Background(), "u1", "Old Name", "old", "Addr", "https://img.example/p.jpg")
		if err != nil {
			t.Fatalf("seed: %v", err)
		}

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/places/"+created.ID, bytes.NewBufferString(`{"name":"grand central terminal","description":"landmark"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("update 200 -> %d body=%s", w.Code, w.Body.String())
		}
		var out PlaceResponse
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("json: %v", err)
		}
		if out.Place == nil || out.Place.Name != "Grand Central Terminal" || out.Place.Description != "landmark" {
			t.Fatalf("unexpected updated place: %#v", out.Place)
		}
	}

	// well-formed but missing -> 404 with the domain message
	{
		db := newPlaceDB(t)
		svc := services.NewPlaceService(db, testPlaceRepo{})
		r := newPlacesRouter(New(svc))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPut, "/places/"+uuid.NewString(), bytes.NewBufferString(`{"name":"X"}`))
		req.Header.Set("X-User-ID", "u1")
		r.ServeHTTP(w, req)
		if w.Code != http.StatusNotFound {
			t.Fatalf("missing 404 -> %d", w.Code)
		}
		if body := errBody(t, w); body["message"] != "Place is not found" {
			t.Fatalf("unexpected body: %v", body)
		}
	}
}

// ---------- DeletePlace ----------

func TestDeletePlace_BadUUID_NotFound_Success(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := newPlaceDB(t)
	svc := services.NewPlaceService(db, testPlaceRepo{})
	r := newPlacesRouter(New(svc))

	// bad UUID -> 400
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodDelete, "/places/garbage", nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("uuid 400 -> %d", w.Code)
	}

	// missing -> 404
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/places/"+uuid.NewString(), nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing 404 -> %d", w.Code)
	}

	// success -> 204, then the place is gone
	created, err := svc.Create(context.Background(), "u1", "Ephemeral", "", "Addr", "https://img.example/e.jpg")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/places/"+created.ID, nil)
	req.Header.Set("X-User-ID", "u1")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete 204 -> %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/places/"+created.ID, nil)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("deleted place should 404, got %d", w.Code)
	}

	// deleting with the wrong user -> 404 (creator scoped)
	other, err := svc.Create(context.Background(), "u1", "Guarded", "", "Addr", "https://img.example/g.jpg")
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodDelete, "/places/"+other.ID, nil)
	req.Header.Set("X-User-ID", "intruder")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Fatalf("foreign delete should 404, got %d", w.Code)
	}
}
