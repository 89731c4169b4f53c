// Package model defines database models
package model

import "time"

// Content is the metadata row of an uploaded file. Path is the absolute location of the
// blob on disk and doubles as its identity, so it's unique.
type Content struct {
	ID        uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    string    `gorm:"column:userid;index;not null" json:"user_id"`
	Path      string    `gorm:"column:path;size:512;uniqueIndex;not null" json:"path"`
	Type      string    `gorm:"column:type;not null" json:"type"` // Caller supplied label, never validated
	CreatedAt time.Time `gorm:"column:created_at;not null" json:"created_at"`
}

func (Content) TableName() string {
	return "usercontent"
}
