package model

import "time"

// File is the metadata record for one uploaded binary. Every file belongs
// to exactly one session. The binary itself lives in the storage backend
// under StorageKey.
type File struct {
	ID          uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	DisplayName string `gorm:"not null" json:"display_name"`

	// Uploads from different sessions may share a display name, so the
	// stored object is kept under a generated key instead
	StorageKey string    `gorm:"unique;not null" json:"storage_key"`
	MimeType   string    `gorm:"not null" json:"mime_type"`
	SessionID  uint      `gorm:"not null;index" json:"session_id"`
	Order      int       `gorm:"column:display_order;not null;default:0" json:"order"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `gorm:"not null" json:"uploaded_at"`
}
