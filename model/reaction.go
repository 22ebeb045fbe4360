package model

import "time"

// Reaction is the like counter for a session. The unique index on
// SessionID keeps it at most one row per session and backs the
// ON CONFLICT upsert used when liking.
type Reaction struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	SessionID uint      `gorm:"uniqueIndex;not null" json:"session_id"`
	Likes     int       `gorm:"not null;default:0" json:"likes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
