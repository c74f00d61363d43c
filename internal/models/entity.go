package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Entity is a public-service organisation that reports are routed to.
// Name is the join key with the lexicon and with Report.EntityName.
type Entity struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Name     string `gorm:"type:text;not null;uniqueIndex" json:"name"`
	Category string `gorm:"type:text" json:"category"`

	Email   string `gorm:"type:text" json:"email,omitempty"`
	Phone   string `gorm:"type:text" json:"phone,omitempty"`
	Website string `gorm:"type:text" json:"website,omitempty"`

	// TelegramChatID receives routing and status notifications when set.
	TelegramChatID *int64 `gorm:"column:telegram_chat_id" json:"telegramChatId,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate assigns a UUID if the entity has none.
func (e *Entity) BeforeCreate(tx *gorm.DB) (err error) {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return
}
