package storage

import (
	"context"
	"path/filepath"
	"testing"

	"reportes/backend/internal/models"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// The production schema uses Postgres-only column types, so the tables are
// declared by hand with the same column names.
var sqliteSchema = []string{
	`CREATE TABLE entities (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		category TEXT,
		email TEXT,
		phone TEXT,
		website TEXT,
		telegram_chat_id INTEGER,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE reports (
		id TEXT PRIMARY KEY,
		title TEXT NOT NULL,
		description TEXT NOT NULL,
		category TEXT,
		latitude REAL,
		longitude REAL,
		address TEXT,
		image_urls TEXT,
		status TEXT NOT NULL,
		entity_name TEXT NOT NULL,
		entity_id TEXT,
		manually_assigned BOOLEAN NOT NULL DEFAULT 0,
		ai_classification TEXT,
		creator_user_id TEXT,
		creator_name TEXT,
		creator_email TEXT,
		rating INTEGER,
		rating_comment TEXT,
		version INTEGER NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME
	)`,
	`CREATE TABLE comments (
		id TEXT PRIMARY KEY,
		report_id TEXT NOT NULL,
		author_id TEXT,
		author_name TEXT,
		text TEXT NOT NULL,
		created_at DATETIME
	)`,
}

func newTestService(t *testing.T) *Service {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "reports.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	for _, stmt := range sqliteSchema {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return NewStorageService(db, nil, nil, 0)
}

func seedReport(t *testing.T, s *Service) *models.Report {
	t.Helper()

	report := &models.Report{
		Title:       "Bache en la avenida",
		Description: "Hay un bache enorme",
		Status:      "pendiente",
		EntityName:  "Obras Públicas",
		AIClassification: &models.AIClassification{
			Confidence: 90,
			Reasoning:  "bache",
		},
		Creator: models.Creator{UserID: "u-1", Name: "Ana"},
	}
	require.NoError(t, s.CreateReport(context.Background(), report))
	require.NotEmpty(t, report.ID)
	require.Equal(t, 1, report.Version)
	return report
}

func TestUpdateReport_MatchingVersion(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	report := seedReport(t, s)

	expected := report.Version
	report.Status = "en-proceso"
	report.Version = expected + 1
	require.NoError(t, s.UpdateReport(ctx, report, &expected))

	stored, err := s.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "en-proceso", stored.Status)
	assert.Equal(t, 2, stored.Version)
	require.NotNil(t, stored.AIClassification)
	assert.Equal(t, 90, stored.AIClassification.Confidence)
	assert.Equal(t, "u-1", stored.Creator.UserID)
}

func TestUpdateReport_StaleVersionConflicts(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	report := seedReport(t, s)

	// Another writer moves the report to version 2 first.
	first := *report
	first.Status = "en-proceso"
	first.Version = 2
	v1 := 1
	require.NoError(t, s.UpdateReport(ctx, &first, &v1))

	second := *report
	second.Status = "rechazado"
	second.Version = 2
	err := s.UpdateReport(ctx, &second, &v1)
	require.ErrorIs(t, err, ErrConflict)

	stored, err := s.GetReport(ctx, report.ID)
	require.NoError(t, err)
	assert.Equal(t, "en-proceso", stored.Status)
	assert.Equal(t, 2, stored.Version)
}

func TestUpdateReport_MissingReport(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	missing := &models.Report{ID: "00000000-0000-0000-0000-000000000000", Status: "resuelto", Version: 2}
	v1 := 1
	err := s.UpdateReport(ctx, missing, &v1)
	require.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConflict)

	err = s.UpdateReport(ctx, missing, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteReport_RemovesComments(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()
	report := seedReport(t, s)
	other := seedReport(t, s)

	for _, text := range []string{"primero", "segundo"} {
		require.NoError(t, s.AddComment(ctx, &models.Comment{ReportID: report.ID, Text: text}))
	}
	require.NoError(t, s.AddComment(ctx, &models.Comment{ReportID: other.ID, Text: "ajeno"}))

	require.NoError(t, s.DeleteReport(ctx, report.ID))

	_, err := s.GetReport(ctx, report.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var orphans int64
	require.NoError(t, s.DB.Model(&models.Comment{}).Where("report_id = ?", report.ID).Count(&orphans).Error)
	assert.Zero(t, orphans)

	kept, err := s.ListComments(ctx, other.ID)
	require.NoError(t, err)
	require.Len(t, kept, 1)
	assert.Equal(t, "ajeno", kept[0].Text)

	assert.ErrorIs(t, s.DeleteReport(ctx, report.ID), ErrNotFound)
}

func TestAddComment_UnknownReport(t *testing.T) {
	s := newTestService(t)

	err := s.AddComment(context.Background(), &models.Comment{ReportID: "nope", Text: "hola"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertEntity_ExistingNameKeepsStoredID(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	original := &models.Entity{Name: "Bomberos", Category: "emergencias", Email: "old@example.org"}
	require.NoError(t, s.CreateEntity(ctx, original))

	chatID := int64(4242)
	again := &models.Entity{Name: "Bomberos", Category: "emergencias", Email: "new@example.org", TelegramChatID: &chatID}
	require.NoError(t, s.UpsertEntity(ctx, again))
	assert.Equal(t, original.ID, again.ID)

	stored, err := s.GetEntityByName(ctx, "Bomberos")
	require.NoError(t, err)
	assert.Equal(t, original.ID, stored.ID)
	assert.Equal(t, "new@example.org", stored.Email)
	require.NotNil(t, stored.TelegramChatID)
	assert.Equal(t, chatID, *stored.TelegramChatID)

	var count int64
	require.NoError(t, s.DB.Model(&models.Entity{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestUpsertEntity_NewName(t *testing.T) {
	s := newTestService(t)
	ctx := context.Background()

	entity := &models.Entity{Name: "Policía Local", Category: "seguridad"}
	require.NoError(t, s.UpsertEntity(ctx, entity))
	require.NotEmpty(t, entity.ID)

	stored, err := s.GetEntityByName(ctx, "Policía Local")
	require.NoError(t, err)
	assert.Equal(t, entity.ID, stored.ID)
	assert.Equal(t, "seguridad", stored.Category)
}
