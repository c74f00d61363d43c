package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Report is a citizen complaint routed to a responsible entity.
type Report struct {
	ID          string `gorm:"primaryKey;type:uuid" json:"id"`
	Title       string `gorm:"type:text;not null" json:"title"`
	Description string `gorm:"type:text;not null" json:"description"`
	// Category is a free label kept for compatibility; routing ignores it.
	Category string `gorm:"type:text" json:"category,omitempty"`

	Location  Location       `gorm:"embedded" json:"location"`
	ImageURLs pq.StringArray `gorm:"column:image_urls;type:text[]" json:"imageUrls,omitempty"`

	Status           string            `gorm:"type:text;not null;index" json:"status"`
	EntityName       string            `gorm:"type:text;not null;index" json:"entityName"`
	EntityID         *string           `gorm:"type:uuid" json:"entityId,omitempty"`
	ManuallyAssigned bool              `gorm:"not null;default:false" json:"manuallyAssigned"`
	AIClassification *AIClassification `gorm:"column:ai_classification;type:jsonb;serializer:json" json:"aiClassification,omitempty"`

	Creator Creator `gorm:"embedded;embeddedPrefix:creator_" json:"creator"`

	Rating        *int    `json:"rating,omitempty"`
	RatingComment *string `gorm:"type:text" json:"ratingComment,omitempty"`

	// Version increases on every update; callers may send it back to detect
	// concurrent edits.
	Version int `gorm:"not null;default:1" json:"version"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Location is where the problem was observed. Geocoding happens outside.
type Location struct {
	Latitude  float64 `gorm:"column:latitude" json:"latitude"`
	Longitude float64 `gorm:"column:longitude" json:"longitude"`
	Address   string  `gorm:"column:address;type:text" json:"address"`
}

// Creator identifies the citizen who submitted the report.
type Creator struct {
	UserID string `gorm:"column:user_id;type:text;index" json:"userId,omitempty"`
	Name   string `gorm:"column:name;type:text" json:"name,omitempty"`
	Email  string `gorm:"column:email;type:text" json:"email,omitempty"`
}

// AIClassification is present only on automatically routed reports.
type AIClassification struct {
	Confidence int    `json:"confidence"`
	Reasoning  string `json:"reasoning"`
}

// BeforeCreate assigns a UUID if the report has none.
func (r *Report) BeforeCreate(tx *gorm.DB) (err error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Version == 0 {
		r.Version = 1
	}
	return
}

// ReportPatch carries the partial fields accepted by PATCH /reports/{id}.
// Nil fields are left untouched.
type ReportPatch struct {
	Status        *string `json:"status,omitempty"`
	EntityName    *string `json:"entityName,omitempty"`
	EntityID      *string `json:"entityId,omitempty"`
	Rating        *int    `json:"rating,omitempty"`
	RatingComment *string `json:"ratingComment,omitempty"`
	// Version, when set, must equal the stored version for the update to apply.
	Version *int `json:"version,omitempty"`
}

// IsEmpty reports whether the patch changes nothing.
func (p ReportPatch) IsEmpty() bool {
	return p.Status == nil && p.EntityName == nil && p.EntityID == nil &&
		p.Rating == nil && p.RatingComment == nil
}

// ReportFilter narrows report listings.
type ReportFilter struct {
	Status     string
	EntityName string
	CreatorID  string
	Limit      int
	Offset     int
}
