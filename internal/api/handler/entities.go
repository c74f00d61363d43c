package handler

import (
	"fmt"
	"net/http"
	"strings"

	"reportes/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type entityRequest struct {
	Name           string `json:"name"`
	Category       string `json:"category"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Website        string `json:"website"`
	TelegramChatID *int64 `json:"telegramChatId"`
}

// ListEntities returns the entity directory.
func (h *Handler) ListEntities(c *gin.Context) {
	entities, err := h.Storage.ListEntities(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entities)
}

// CreateEntity registers a new entity. Its name should match a lexicon
// entity for reports to resolve to it.
func (h *Handler) CreateEntity(c *gin.Context) {
	var req entityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.respondError(c, errEmptyName)
		return
	}

	entity := req.toEntity(name)
	if err := h.Storage.CreateEntity(c.Request.Context(), entity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entity)
}

// UpsertEntity creates the entity or replaces its contact details, e.g. to
// register the Telegram chat reported by /chatid.
func (h *Handler) UpsertEntity(c *gin.Context) {
	var req entityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		h.respondError(c, errEmptyName)
		return
	}

	entity := req.toEntity(name)
	if err := h.Storage.UpsertEntity(c.Request.Context(), entity); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entity)
}

func (r entityRequest) toEntity(name string) *models.Entity {
	return &models.Entity{
		Name:           name,
		Category:       strings.TrimSpace(r.Category),
		Email:          strings.TrimSpace(r.Email),
		Phone:          strings.TrimSpace(r.Phone),
		Website:        strings.TrimSpace(r.Website),
		TelegramChatID: r.TelegramChatID,
	}
}
