// Package handler exposes the report service over HTTP.
package handler

import (
	"context"
	"time"

	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/metrics"
	"reportes/backend/internal/models"
	"reportes/backend/internal/reporthub"
	"reportes/backend/internal/routing"
	"reportes/backend/internal/storage"

	"go.uber.org/zap"
)

const publishTimeout = 3 * time.Second

// Handler holds the collaborators shared by every endpoint.
type Handler struct {
	Storage   storage.Storage
	Router    *routing.Router
	Machine   *lifecycle.Machine
	Hub       *reporthub.ManagerService
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	JWTSecret []byte
}

// NewHandler wires a handler. hub and m may be nil.
func NewHandler(s storage.Storage, router *routing.Router, machine *lifecycle.Machine, hub *reporthub.ManagerService, m *metrics.Metrics, logger *zap.Logger, jwtSecret string) *Handler {
	if machine == nil {
		machine = lifecycle.NewMachine(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{
		Storage:   s,
		Router:    router,
		Machine:   machine,
		Hub:       hub,
		Metrics:   m,
		Logger:    logger,
		JWTSecret: []byte(jwtSecret),
	}
}

// publish emits evt on the bus. A failed publish is logged; the write it
// describes has already been committed.
func (h *Handler) publish(ctx context.Context, evt models.ReportEvent) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := h.Storage.PublishEvent(ctx, evt); err != nil {
		h.Logger.Warn("Failed to publish report event",
			zap.String("type", evt.Type),
			zap.String("report_id", evt.ReportID),
			zap.Error(err))
	}
}

// catalog snapshots the entity directory for id resolution.
func (h *Handler) catalog(ctx context.Context) (routing.Catalog, error) {
	entities, err := h.Storage.ListEntities(ctx)
	if err != nil {
		return routing.Catalog{}, err
	}
	return routing.NewCatalog(entities), nil
}
