// Package repo implements the data persistence layer for the lookup history,
// backed by GORM. This file provides repository functions for the
// HistoryEntry model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// safe for use within transactions or connection-scoped operations. They
// follow the "thin repository" approach: no business logic, only persistence
// and query composition. Each call is a single statement against the table,
// so the underlying engine's transaction isolation is all the concurrency
// control the store needs.
//
// Error semantics:
//   - When no entry exists for a session, LatestForSession returns
//     gorm.ErrRecordNotFound (also exported here as ErrNotFound).
//   - On DB errors (connectivity, missing table, etc.) the raw gorm error
//     is propagated.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/as-o/go-weather-backend/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// InsertHistory appends a new lookup record for city under sessionToken.
// The city string is stored exactly as given and CreatedAt is set to UTC.
//
// On success, it returns the persisted entry with its assigned ID. On
// failure, it returns a DB error.
func InsertHistory(ctx context.Context, db *gorm.DB, city, sessionToken string) (*domain.HistoryEntry, error) {
	e := &domain.HistoryEntry{
		City:         city,
		SessionToken: sessionToken,
		CreatedAt:    time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, err
	}
	return e, nil
}

// LatestForSession returns the most recent entry for sessionToken, ordered
// by creation time descending with ties broken by highest ID. When the
// session has no entries it returns ErrNotFound.
func LatestForSession(ctx context.Context, db *gorm.DB, sessionToken string) (*domain.HistoryEntry, error) {
	var e domain.HistoryEntry
	err := db.WithContext(ctx).
		Where("session_token = ?", sessionToken).
		Order("created_at DESC, id DESC").
		First(&e).Error
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// CountsByCity groups all history entries by exact city string and counts
// them, ordered by count descending. Equal counts are ordered by city name
// ascending, which keeps the output stable across runs.
func CountsByCity(ctx context.Context, db *gorm.DB) ([]domain.CityCount, error) {
	out := []domain.CityCount{}
	err := db.WithContext(ctx).
		Model(&domain.HistoryEntry{}).
		Select("city, COUNT(*) AS count").
		Group("city").
		Order("count DESC, city ASC").
		Scan(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}
