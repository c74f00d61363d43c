package handler_test

import (
	"context"

	"reportes/backend/internal/models"

	"github.com/stretchr/testify/mock"
)

type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) CreateReport(ctx context.Context, report *models.Report) error {
	args := m.Called(report)
	if report.ID == "" {
		report.ID = "generated-id"
	}
	return args.Error(0)
}

func (m *MockStorage) GetReport(ctx context.Context, id string) (*models.Report, error) {
	args := m.Called(id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Report), args.Error(1)
}

func (m *MockStorage) ListReports(ctx context.Context, filter models.ReportFilter) ([]models.Report, error) {
	args := m.Called(filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Report), args.Error(1)
}

func (m *MockStorage) UpdateReport(ctx context.Context, report *models.Report, expectedVersion *int) error {
	args := m.Called(report, expectedVersion)
	return args.Error(0)
}

func (m *MockStorage) DeleteReport(ctx context.Context, id string) error {
	args := m.Called(id)
	return args.Error(0)
}

func (m *MockStorage) ListEntities(ctx context.Context) ([]models.Entity, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Entity), args.Error(1)
}

func (m *MockStorage) GetEntityByName(ctx context.Context, name string) (*models.Entity, error) {
	args := m.Called(name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Entity), args.Error(1)
}

func (m *MockStorage) CreateEntity(ctx context.Context, entity *models.Entity) error {
	args := m.Called(entity)
	return args.Error(0)
}

func (m *MockStorage) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	args := m.Called(entity)
	return args.Error(0)
}

func (m *MockStorage) AddComment(ctx context.Context, comment *models.Comment) error {
	args := m.Called(comment)
	return args.Error(0)
}

func (m *MockStorage) ListComments(ctx context.Context, reportID string) ([]models.Comment, error) {
	args := m.Called(reportID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Comment), args.Error(1)
}

func (m *MockStorage) PublishEvent(ctx context.Context, evt models.ReportEvent) error {
	args := m.Called(evt)
	return args.Error(0)
}

func (m *MockStorage) SubscribeEvents(ctx context.Context) (<-chan models.ReportEvent, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan models.ReportEvent), args.Error(1)
}
