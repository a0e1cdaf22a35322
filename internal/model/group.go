package model

import "time"

// Group is one directory group widgets can be scoped to.
type Group struct {
	ID          string    `gorm:"primaryKey;size:64"`
	DisplayName string    `gorm:"size:200"`
	CreatedAt   time.Time `gorm:"autoCreateTime"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime"`
}

// GroupMembership links a platform user to a directory group.
type GroupMembership struct {
	GroupID   string    `gorm:"primaryKey;size:64"`
	UserID    string    `gorm:"primaryKey;size:64;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}
