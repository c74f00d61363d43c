package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is an append-only note on a report.
type Comment struct {
	ID         string    `gorm:"primaryKey;type:uuid" json:"id"`
	ReportID   string    `gorm:"type:uuid;not null;index" json:"reportId"`
	AuthorID   string    `gorm:"type:text" json:"authorId,omitempty"`
	AuthorName string    `gorm:"type:text" json:"authorName,omitempty"`
	Text       string    `gorm:"type:text;not null" json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

// BeforeCreate assigns a UUID if the comment has none.
func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	return
}
