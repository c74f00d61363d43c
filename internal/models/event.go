package models

import "time"

// Event types published on the report feed.
const (
	EventReportCreated  = "report_created"
	EventReportUpdated  = "report_updated"
	EventReportDeleted  = "report_deleted"
	EventCommentCreated = "comment_created"
)

// ReportEvent is broadcast to dashboards and entity notifiers.
type ReportEvent struct {
	Type           string `json:"type"`
	ReportID       string `json:"reportId"`
	Title          string `json:"title,omitempty"`
	Address        string `json:"address,omitempty"`
	EntityName     string `json:"entityName,omitempty"`
	PreviousEntity string `json:"previousEntity,omitempty"`
	Status         string `json:"status,omitempty"`
	PreviousStatus string `json:"previousStatus,omitempty"`
	// Confidence is set for automatically routed reports; 0 means manual.
	Confidence int       `json:"confidence,omitempty"`
	At         time.Time `json:"at"`
}

// NewReportEvent builds an event snapshot of r.
func NewReportEvent(eventType string, r *Report) ReportEvent {
	evt := ReportEvent{
		Type:       eventType,
		ReportID:   r.ID,
		Title:      r.Title,
		Address:    r.Location.Address,
		EntityName: r.EntityName,
		Status:     r.Status,
		At:         time.Now().UTC(),
	}
	if r.AIClassification != nil {
		evt.Confidence = r.AIClassification.Confidence
	}
	return evt
}
