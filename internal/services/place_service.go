// Package services implements the business layer between HTTP handlers and
// the repository. Services validate and normalize input, enforce ownership
// rules, and translate persistence failures into the domain error taxonomy
// so handlers can forward errors without inspecting them.
//
// Predictable failures are raised as *domain.Error (NotFound, Validation);
// anything else is propagated untouched and classified downstream as an
// internal failure.
package services

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/evlampios/go-places-backend/internal/domain"
)

// Canonical messages carried by domain errors raised in this package.
const (
	msgPlaceNotFound = "Place is not found"
	msgInvalidPlace  = "Please enter valid place data"
)

// PlaceRepo defines the repository contract required by PlaceService.
// Implementations are responsible for persistence of place aggregates.
type PlaceRepo interface {
	// CreatePlace inserts a new place row owned by the given user.
	CreatePlace(ctx context.Context, db *gorm.DB, creatorID, name, description, address, imageURL string) (*domain.Place, error)

	// GetPlace fetches a place by ID. Reads are not owner-scoped.
	GetPlace(ctx context.Context, db *gorm.DB, id string) (*domain.Place, error)

	// ListPlaces returns all places belonging to the user (non-paginated).
	ListPlaces(ctx context.Context, db *gorm.DB, creatorID string) ([]domain.Place, error)

	// CountPlaces returns the total number of places for pagination.
	CountPlaces(ctx context.Context, db *gorm.DB, creatorID string) (int64, error)

	// ListPlacesPage returns a page of places belonging to the user.
	ListPlacesPage(ctx context.Context, db *gorm.DB, creatorID string, offset, limit int) ([]domain.Place, error)

	// UpdatePlace updates name/description (only if the place belongs to the user).
	UpdatePlace(ctx context.Context, db *gorm.DB, id, creatorID, name, description string) error

	// DeletePlace soft-deletes a place (only if it belongs to the user).
	DeletePlace(ctx context.Context, db *gorm.DB, id, creatorID string) error
}

// PlaceService provides place-level operations such as creating, reading,
// listing, updating, and deleting places. It enforces input rules and
// ownership constraints.
type PlaceService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// Repo is the place repository used by this service.
	Repo PlaceRepo

	// NameMaxLen caps stored place names by rune length.
	NameMaxLen int
	// NameLocale selects the locale used when display-casing names.
	NameLocale language.Tag
}

// NewPlaceService constructs a PlaceService with sane defaults for name handling.
func NewPlaceService(db *gorm.DB, r PlaceRepo) *PlaceService {
	return &PlaceService{
		DB:         db,
		Repo:       r,
		NameMaxLen: 120,
		NameLocale: language.Und,
	}
}

// Create inserts a new place owned by userID. Name, address, and image URL
// are required; a missing field raises a validation error with a
// caller-presentable message.
func (s *PlaceService) Create(ctx context.Context, userID, name, description, address, imageURL string) (*domain.Place, error) {
	name = normalizeText(name)
	description = strings.TrimSpace(description)
	address = normalizeText(address)
	imageURL = strings.TrimSpace(imageURL)

	if name == "" || address == "" || imageURL == "" {
		return nil, domain.Validation(msgInvalidPlace)
	}
	return s.Repo.CreatePlace(ctx, s.DB, userID, s.clip(s.displayName(name)), description, address, imageURL)
}

// Get fetches a single place by ID. A missing row is raised as a not-found
// domain error; any other repository failure is propagated as-is.
func (s *PlaceService) Get(ctx context.Context, id string) (*domain.Place, error) {
	place, err := s.Repo.GetPlace(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NotFound(msgPlaceNotFound)
		}
		return nil, err
	}
	return place, nil
}

// List returns all places for a user (non-paginated).
// Prefer ListPage for scalability on large datasets.
func (s *PlaceService) List(ctx context.Context, userID string) ([]domain.Place, error) {
	return s.Repo.ListPlaces(ctx, s.DB, userID)
}

// ListPage returns a page of places for a user (paginated).
// It applies defaults for invalid page/pageSize and returns total count.
func (s *PlaceService) ListPage(ctx context.Context, userID string, page, pageSize int) ([]domain.Place, int64, error) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	total, err := s.Repo.CountPlaces(ctx, s.DB, userID)
	if err != nil {
		return nil, 0, err
	}
	if total == 0 {
		return []domain.Place{}, 0, nil
	}

	items, err := s.Repo.ListPlacesPage(ctx, s.DB, userID, offset, pageSize)
	return items, total, err
}

// Update changes a place's name and description, ensuring the place exists
// and belongs to the given user. A blank name raises a validation error; a
// missing or foreign place raises a not-found domain error.
func (s *PlaceService) Update(ctx context.Context, userID, placeID, name, description string) error {
	name = normalizeText(name)
	description = strings.TrimSpace(description)
	if name == "" {
		return domain.Validation(msgInvalidPlace)
	}
	err := s.Repo.UpdatePlace(ctx, s.DB, placeID, userID, s.clip(s.displayName(name)), description)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(msgPlaceNotFound)
	}
	return err
}

// Delete removes a place owned by the given user. A missing or foreign place
// raises a not-found domain error.
func (s *PlaceService) Delete(ctx context.Context, userID, placeID string) error {
	err := s.Repo.DeletePlace(ctx, s.DB, placeID, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.NotFound(msgPlaceNotFound)
	}
	return err
}

// displayName title-cases a name that arrived fully lowercased, leaving
// intentionally cased input (acronyms, stylized brands) untouched.
func (s *PlaceService) displayName(name string) string {
	if strings.ToLower(name) != name {
		return name
	}
	return cases.Title(s.NameLocaleOrDefault()).String(name)
}

// NameLocaleOrDefault returns the configured locale for casing or English if unset.
func (s *PlaceService) NameLocaleOrDefault() language.Tag {
	if s.NameLocale == language.Und {
		return language.English
	}
	return s.NameLocale
}

// clip truncates a place name to the configured maximum rune length.
func (s *PlaceService) clip(name string) string {
	if s.NameMaxLen > 0 && utf8.RuneCountInString(name) > s.NameMaxLen {
		return string([]rune(name)[:s.NameMaxLen])
	}
	return name
}

// normalizeText trims whitespace and collapses multiple spaces to one.
func normalizeText(s string) string {
	s = whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
	return s
}

// whitespaceRE collapses consecutive whitespace to a single space.
var whitespaceRE = regexp.MustCompile(`\s+`)
