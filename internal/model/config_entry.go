package model

import "time"

// ConfigEntry is one scoped key/value configuration row. An empty UserID marks
// an app-global entry; a non-empty UserID scopes the entry to that user.
// Version grows monotonically on every write so collection blobs can be saved
// with compare-and-swap semantics.
type ConfigEntry struct {
	UserID    string    `gorm:"primaryKey;size:64;default:''"`
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"size:65535"`
	Version   int64     `gorm:"not null;default:0"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}
