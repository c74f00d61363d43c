// Package storage persists reports, entities and comments in Postgres (gorm)
// and uses Redis for the entity-catalog cache and the report event bus.
package storage

import (
	"context"
	"errors"
	"time"

	"reportes/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	defaultListLimit = 100
	maxListLimit     = 500
)

// Storage is the report store used by the API and the admin CLI.
type Storage interface {
	CreateReport(ctx context.Context, report *models.Report) error
	GetReport(ctx context.Context, id string) (*models.Report, error)
	ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error)
	// UpdateReport writes the mutable fields of report. When expectedVersion
	// is set, the row must still carry that version or ErrConflict is returned.
	UpdateReport(ctx context.Context, report *models.Report, expectedVersion *int) error
	DeleteReport(ctx context.Context, id string) error

	ListEntities(ctx context.Context) ([]models.Entity, error)
	GetEntityByName(ctx context.Context, name string) (*models.Entity, error)
	CreateEntity(ctx context.Context, entity *models.Entity) error
	UpsertEntity(ctx context.Context, entity *models.Entity) error

	AddComment(ctx context.Context, comment *models.Comment) error
	ListComments(ctx context.Context, reportID string) ([]models.Comment, error)

	PublishEvent(ctx context.Context, evt models.ReportEvent) error
	SubscribeEvents(ctx context.Context) (<-chan models.ReportEvent, error)
}

// Service implements Storage.
type Service struct {
	DB       *gorm.DB
	Redis    *redis.Client
	Logger   *zap.Logger
	CacheTTL time.Duration

	bus eventBus
}

// NewStorageService creates the store. rdb may be nil, in which case the
// entity catalog is read straight from Postgres and events stay in-process.
func NewStorageService(db *gorm.DB, rdb *redis.Client, logger *zap.Logger, cacheTTL time.Duration) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}

	var bus eventBus
	if rdb != nil {
		bus = &redisBus{rdb: rdb, logger: logger}
	} else {
		bus = newLocalBus()
	}

	return &Service{
		DB:       db,
		Redis:    rdb,
		Logger:   logger,
		CacheTTL: cacheTTL,
		bus:      bus,
	}
}

// Migrate creates or updates the tables.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.Entity{},
		&models.Report{},
		&models.Comment{},
	)
}

// CreateReport inserts a routed report.
func (s *Service) CreateReport(ctx context.Context, report *models.Report) error {
	if err := s.DB.WithContext(ctx).Create(report).Error; err != nil {
		s.Logger.Error("Failed to save report", zap.String("entity", report.EntityName), zap.Error(err))
		return classifyError("create report", err)
	}
	return nil
}

// GetReport loads a report by id.
func (s *Service) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var report models.Report
	if err := s.DB.WithContext(ctx).Where("id = ?", id).First(&report).Error; err != nil {
		return nil, classifyError("get report", err)
	}
	return &report, nil
}

// ListReports returns reports newest first.
func (s *Service) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	q := s.DB.WithContext(ctx).Model(&models.Report{})
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.EntityName != "" {
		q = q.Where("entity_name = ?", filter.EntityName)
	}
	if filter.CreatorID != "" {
		q = q.Where("creator_user_id = ?", filter.CreatorID)
	}

	var reports []models.Report
	err := q.Order("created_at desc").
		Limit(clampLimit(filter.Limit)).
		Offset(max(filter.Offset, 0)).
		Find(&reports).Error
	if err != nil {
		return nil, classifyError("list reports", err)
	}
	return reports, nil
}

// UpdateReport writes status, entity assignment, rating and version.
func (s *Service) UpdateReport(ctx context.Context, report *models.Report, expectedVersion *int) error {
	q := s.DB.WithContext(ctx).Model(&models.Report{}).Where("id = ?", report.ID)
	if expectedVersion != nil {
		q = q.Where("version = ?", *expectedVersion)
	}

	res := q.Select(
		"status",
		"entity_name",
		"entity_id",
		"manually_assigned",
		"ai_classification",
		"rating",
		"rating_comment",
		"version",
		"updated_at",
	).Updates(report)
	if res.Error != nil {
		return classifyError("update report", res.Error)
	}

	if res.RowsAffected == 0 {
		if expectedVersion == nil {
			return classifyError("update report", ErrNotFound)
		}
		var count int64
		if err := s.DB.WithContext(ctx).Model(&models.Report{}).Where("id = ?", report.ID).Count(&count).Error; err != nil {
			return classifyError("update report", err)
		}
		if count == 0 {
			return classifyError("update report", ErrNotFound)
		}
		return classifyError("update report", ErrConflict)
	}
	return nil
}

// DeleteReport removes a report and its comments.
func (s *Service) DeleteReport(ctx context.Context, id string) error {
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("report_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Report{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.Logger.Error("Failed to delete report", zap.String("report_id", id), zap.Error(err))
		}
		return classifyError("delete report", err)
	}
	return nil
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	return min(limit, maxListLimit)
}
