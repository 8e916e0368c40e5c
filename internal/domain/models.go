// Package domain defines the persistence model for weather lookup history.
// The type here is mapped with GORM and forms the core data layer of the
// application.
package domain

import "time"

// HistoryEntry records a single weather lookup. The table is append-only:
// rows are never updated or deleted for the lifetime of the process.
//
// Fields:
//   - ID: auto-increment integer primary key assigned by the store.
//   - City: the raw location string supplied by the caller, stored exactly
//     as requested (case and spelling preserved) so the per-city aggregate
//     counts are sensitive to exact string match.
//   - SessionToken: opaque string correlating a browser session; indexed
//     for the latest-by-session query. Not a foreign key; no user entity
//     exists.
//   - CreatedAt: set once at insert, immutable.
type HistoryEntry struct {
	ID           uint      `json:"id"            gorm:"primaryKey;autoIncrement"`
	City         string    `json:"city"          gorm:"type:varchar(255);not null"`
	SessionToken string    `json:"session_token" gorm:"type:varchar(64);not null;index:idx_history_session"`
	CreatedAt    time.Time `json:"created_at"    gorm:"index"`
}

// TableName returns the database table name for HistoryEntry.
func (HistoryEntry) TableName() string { return "history" }

// CityCount is one row of the per-city lookup aggregate: the exact city
// string and how many history entries carry it.
type CityCount struct {
	City  string `json:"city"`
	Count int64  `json:"count"`
}
