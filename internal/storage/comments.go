package storage

import (
	"context"

	"reportes/backend/internal/models"
)

// AddComment appends a comment to an existing report.
func (s *Service) AddComment(ctx context.Context, comment *models.Comment) error {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Report{}).Where("id = ?", comment.ReportID).Count(&count).Error; err != nil {
		return classifyError("add comment", err)
	}
	if count == 0 {
		return classifyError("add comment", ErrNotFound)
	}

	if err := s.DB.WithContext(ctx).Create(comment).Error; err != nil {
		return classifyError("add comment", err)
	}
	return nil
}

// ListComments returns the comments of a report, oldest first.
func (s *Service) ListComments(ctx context.Context, reportID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Where("report_id = ?", reportID).
		Order("created_at asc").
		Find(&comments).Error
	if err != nil {
		return nil, classifyError("list comments", err)
	}
	return comments, nil
}
