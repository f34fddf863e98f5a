// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Place model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations.
// They follow the "thin repository" approach: no business logic, only CRUD
// persistence and query composition.
//
// Error semantics:
//   - When a place is not found, functions return gorm.ErrRecordNotFound
//     (also exported here as ErrNotFound for convenience).
//   - On DB errors (constraint violations, connectivity issues, etc.),
//     the raw gorm error is propagated.
//
// This repository is designed to be wrapped by a higher-level service
// (see services.PlaceService) which enforces business rules and translates
// persistence errors into the domain error taxonomy.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/evlampios/go-places-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// CreatePlace inserts a new Place row owned by creatorID. The place ID is a
// randomly generated UUID (string), and CreatedAt is set to UTC.
//
// On success, it returns the persisted Place. On failure, it returns a DB error.
func CreatePlace(ctx context.Context, db *gorm.DB, creatorID, name, description, address, imageURL string) (*domain.Place, error) {
	p := &domain.Place{
		ID:          uuid.NewString(),
		CreatorID:   creatorID,
		Name:        name,
		Description: description,
		Address:     address,
		ImageURL:    imageURL,
		CreatedAt:   time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

// GetPlace fetches a single place by its ID. If the record does not exist,
// it returns ErrNotFound. On other DB errors, the raw error is returned.
func GetPlace(ctx context.Context, db *gorm.DB, id string) (*domain.Place, error) {
	var p domain.Place
	err := db.WithContext(ctx).
		Where("id = ?", id).
		First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// ListPlaces returns all places belonging to creatorID, ordered by creation
// time descending (most recent first). It returns an empty slice if the user
// has no places. On DB error, it returns the error.
func ListPlaces(ctx context.Context, db *gorm.DB, creatorID string) ([]domain.Place, error) {
	var out []domain.Place
	err := db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at desc").
		Find(&out).Error
	return out, err
}

// CountPlaces returns the total number of places owned by creatorID.
// On DB error, it returns the error.
func CountPlaces(ctx context.Context, db *gorm.DB, creatorID string) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.Place{}).
		Where("creator_id = ?", creatorID).
		Count(&total).Error
	return total, err
}

// ListPlacesPage returns a paginated slice of places for creatorID, ordered by
// creation time descending. Use CountPlaces to obtain the total for pagination
// metadata. On DB error, it returns the error.
//
// The caller is responsible for computing offset and limit (e.g., (page-1)*pageSize).
func ListPlacesPage(ctx context.Context, db *gorm.DB, creatorID string, offset, limit int) ([]domain.Place, error) {
	var out []domain.Place
	err := db.WithContext(ctx).
		Where("creator_id = ?", creatorID).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}

// UpdatePlace updates the name and description of a place identified by id and
// owned by creatorID. If no rows are affected (place missing or not owned by
// creatorID), it returns ErrNotFound. On DB error, the raw error is returned.
func UpdatePlace(ctx context.Context, db *gorm.DB, id, creatorID, name, description string) error {
	res := db.WithContext(ctx).
		Model(&domain.Place{}).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Updates(map[string]any{"name": name, "description": description})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeletePlace soft-deletes a place identified by id and owned by creatorID.
// If no rows are affected, it returns ErrNotFound. On DB error, the raw error
// is returned.
func DeletePlace(ctx context.Context, db *gorm.DB, id, creatorID string) error {
	res := db.WithContext(ctx).
		Where("id = ? AND creator_id = ?", id, creatorID).
		Delete(&domain.Place{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
