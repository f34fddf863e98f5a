package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	sqlite "github.com/glebarez/sqlite" // pure-Go SQLite (no CGO)
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/evlampios/go-places-backend/internal/domain"
)

func newStatsDB(t *testing.T, migrate ...any) *gorm.DB {
	t.Helper()
	// Unique DB per test to avoid schema leaking across tests.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if len(migrate) > 0 {
		if err := db.AutoMigrate(migrate...); err != nil {
			t.Fatalf("automigrate: %v", err)
		}
	}
	return db
}

func TestPlacesStats_CountError_NoTable(t *testing.T) {
	db := newStatsDB(t /* no migrations */)
	_, _, err := PlacesStats(context.Background(), db, "u1")
	if err == nil {
		t.Fatalf("expected error due to missing places table")
	}
}

func TestPlacesStats_ZeroRows(t *testing.T) {
	db := newStatsDB(t, &domain.Place{})
	count, maxAt, err := PlacesStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PlacesStats error: %v", err)
	}
	if count != 0 || maxAt != nil {
		t.Fatalf("expected (0, nil), got (%d, %v)", count, maxAt)
	}
}

func TestPlacesStats_Success_FilterAndMax(t *testing.T) {
	db := newStatsDB(t, &domain.Place{})

	// Seed places for two users; ensure UpdatedAt is exactly what we set.
	t1 := time.Date(2025, 1, 2, 15, 0, 0, 0, time.UTC)
	t2 := time.Date(2025, 3, 4, 10, 30, 0, 0, time.UTC) // max for u1
	t3 := time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)   // for other user

	p1 := &domain.Place{ID: "p1", CreatorID: "u1", Name: "a", Address: "x", ImageURL: "i", CreatedAt: t1, UpdatedAt: t1}
	p2 := &domain.Place{ID: "p2", CreatorID: "u1", Name: "b", Address: "x", ImageURL: "i", CreatedAt: t2, UpdatedAt: t2}
	p3 := &domain.Place{ID: "p3", CreatorID: "u2", Name: "x", Address: "x", ImageURL: "i", CreatedAt: t3, UpdatedAt: t3}

	if err := db.Create(p1).Error; err != nil {
		t.Fatalf("seed p1: %v", err)
	}
	if err := db.Create(p2).Error; err != nil {
		t.Fatalf("seed p2: %v", err)
	}
	if err := db.Create(p3).Error; err != nil {
		t.Fatalf("seed p3: %v", err)
	}

	count, maxAt, err := PlacesStats(context.Background(), db, "u1")
	if err != nil {
		t.Fatalf("PlacesStats error: %v", err)
	}
	if count != 2 {
		t.Fatalf("expected count 2, got %d", count)
	}
	if maxAt == nil || !maxAt.Equal(t2) {
		t.Fatalf("expected maxUpdatedAt %v, got %v", t2, maxAt)
	}
}

// Force the second query (SELECT updated_at ...) to fail by renaming the column.
func TestPlacesStats_SelectLatest_ErrorPath(t *testing.T) {
	db := newStatsDB(t, &domain.Place{})

	// Seed at least one row so count > 0
	now := time.Now().UTC()
	if err := db.Create(&domain.Place{
		ID:        "px",
		CreatorID: "uerr",
		Name:      "x",
		Address:   "a",
		ImageURL:  "i",
		CreatedAt: now,
		UpdatedAt: now,
	}).Error; err != nil {
		t.Fatalf("seed place: %v", err)
	}

	// Break the follow-up select by removing/renaming updated_at.
	if err := db.Exec(`ALTER TABLE places RENAME COLUMN updated_at TO updated_at_old`).Error; err != nil {
		t.Fatalf("rename column: %v", err)
	}

	_, _, err := PlacesStats(context.Background(), db, "uerr")
	if err == nil {
		t.Fatalf("expected error from latest-updated select after column rename")
	}
}
