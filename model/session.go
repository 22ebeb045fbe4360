// Package model defines database models
package model

import "time"

// Session is an album: a named, ordered collection of files with an
// aggregate like counter. Display sequence is display_order ASC with
// newer sessions first on ties.
type Session struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Name        string    `gorm:"not null" json:"name"`
	Description string    `json:"description"`
	Order       int       `gorm:"column:display_order;not null;default:0" json:"order"`
	CreatedAt   time.Time `json:"created_at"`

	Files    []File    `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"files,omitempty"`
	Reaction *Reaction `gorm:"foreignKey:SessionID;constraint:OnDelete:CASCADE" json:"-"`
}
