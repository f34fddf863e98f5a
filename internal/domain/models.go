// Package domain defines the persistence model for places and the domain
// error taxonomy. The types here are mapped with GORM and shared across the
// repository and service layers; they carry no transport concerns.
package domain

import (
	"time"

	"gorm.io/gorm"
)

// Place represents a point of interest created by a user. Each place carries
// a display name, a postal address, and an image URL; places are scoped to
// their creator for listing and mutation.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - CreatorID: identifier of the owning user; indexed for efficient retrieval.
//   - Name: human-readable place name (display-cased by the service layer).
//   - Description: optional free-form text.
//   - Address: postal address of the place.
//   - ImageURL: link to a representative image.
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//   - DeletedAt: soft deletion marker (retains row for audit/history).
type Place struct {
	ID          string         `json:"id"          gorm:"type:char(36);primaryKey"`
	CreatorID   string         `json:"creator_id"  gorm:"type:varchar(64);not null;index:idx_creator_places"`
	Name        string         `json:"name"        gorm:"type:varchar(255);not null"`
	Description string         `json:"description" gorm:"type:text"`
	Address     string         `json:"address"     gorm:"type:varchar(512);not null"`
	ImageURL    string         `json:"image_url"   gorm:"type:varchar(2048);not null"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-"           gorm:"index"`
}

// TableName returns the database table name for Place.
func (Place) TableName() string { return "places" }
