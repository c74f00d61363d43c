package storage

import (
	"context"
	"encoding/json"
	"errors"

	"reportes/backend/internal/models"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

const entityCatalogKey = "entities:catalog"

// ListEntities returns the entity catalog ordered by name, served from Redis
// when a fresh copy is cached.
func (s *Service) ListEntities(ctx context.Context) ([]models.Entity, error) {
	if cached, ok := s.cachedEntities(ctx); ok {
		return cached, nil
	}

	var entities []models.Entity
	if err := s.DB.WithContext(ctx).Order("name asc").Find(&entities).Error; err != nil {
		return nil, classifyError("list entities", err)
	}

	s.cacheEntities(ctx, entities)
	return entities, nil
}

// GetEntityByName looks an entity up by its exact name.
func (s *Service) GetEntityByName(ctx context.Context, name string) (*models.Entity, error) {
	entities, err := s.ListEntities(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entities {
		if entities[i].Name == name {
			return &entities[i], nil
		}
	}
	return nil, classifyError("get entity", ErrNotFound)
}

// CreateEntity inserts a new entity. A duplicate name yields ErrConflict.
func (s *Service) CreateEntity(ctx context.Context, entity *models.Entity) error {
	var existing int64
	if err := s.DB.WithContext(ctx).Model(&models.Entity{}).Where("name = ?", entity.Name).Count(&existing).Error; err != nil {
		return classifyError("create entity", err)
	}
	if existing > 0 {
		return classifyError("create entity", ErrConflict)
	}

	if err := s.DB.WithContext(ctx).Create(entity).Error; err != nil {
		return classifyError("create entity", err)
	}
	s.invalidateEntities(ctx)
	return nil
}

// UpsertEntity creates the entity or updates the contact fields of the
// existing row with the same name. entity.ID always ends up as the stored id.
func (s *Service) UpsertEntity(ctx context.Context, entity *models.Entity) error {
	res := s.DB.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(entity)
	if res.Error != nil {
		return classifyError("upsert entity", res.Error)
	}
	if res.RowsAffected > 0 {
		s.invalidateEntities(ctx)
		return nil
	}

	// Name already taken; the id set by BeforeCreate was never stored.
	var existing models.Entity
	if err := s.DB.WithContext(ctx).Where("name = ?", entity.Name).First(&existing).Error; err != nil {
		return classifyError("upsert entity", err)
	}
	entity.ID = existing.ID
	entity.CreatedAt = existing.CreatedAt

	err := s.DB.WithContext(ctx).Model(&existing).Select(
		"category", "email", "phone", "website", "telegram_chat_id", "updated_at",
	).Updates(entity).Error
	if err != nil {
		return classifyError("upsert entity", err)
	}
	s.invalidateEntities(ctx)
	return nil
}

func (s *Service) cachedEntities(ctx context.Context) ([]models.Entity, bool) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return nil, false
	}

	raw, err := s.Redis.Get(ctx, entityCatalogKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		s.Logger.Warn("Entity cache read failed, falling back to database", zap.Error(err))
		return nil, false
	}

	var entities []models.Entity
	if err := json.Unmarshal(raw, &entities); err != nil {
		s.Logger.Warn("Entity cache is corrupt, ignoring it", zap.Error(err))
		return nil, false
	}
	return entities, true
}

func (s *Service) cacheEntities(ctx context.Context, entities []models.Entity) {
	if s.Redis == nil || s.CacheTTL <= 0 {
		return
	}

	raw, err := json.Marshal(entities)
	if err != nil {
		return
	}
	if err := s.Redis.Set(ctx, entityCatalogKey, raw, s.CacheTTL).Err(); err != nil {
		s.Logger.Warn("Entity cache write failed", zap.Error(err))
	}
}

func (s *Service) invalidateEntities(ctx context.Context) {
	if s.Redis == nil {
		return
	}
	if err := s.Redis.Del(ctx, entityCatalogKey).Err(); err != nil {
		s.Logger.Warn("Entity cache invalidation failed", zap.Error(err))
	}
}
