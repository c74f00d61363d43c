package handler

import (
	"fmt"
	"net/http"
	"strings"

	"reportes/backend/internal/models"

	"github.com/gin-gonic/gin"
)

type commentRequest struct {
	Text       string `json:"text"`
	AuthorName string `json:"authorName"`
}

// ListComments returns a report's comments, oldest first.
func (h *Handler) ListComments(c *gin.Context) {
	comments, err := h.Storage.ListComments(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, comments)
}

// AddComment appends a comment to a report.
func (h *Handler) AddComment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		h.respondError(c, errEmptyComment)
		return
	}

	ctx := c.Request.Context()
	report, err := h.Storage.GetReport(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	comment := &models.Comment{
		ReportID:   report.ID,
		AuthorName: strings.TrimSpace(req.AuthorName),
		Text:       text,
	}
	if claims, ok := CurrentClaims(c); ok {
		comment.AuthorID = claims.UserID
		if comment.AuthorName == "" {
			comment.AuthorName = claims.Name
		}
	}

	if err := h.Storage.AddComment(ctx, comment); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(ctx, models.NewReportEvent(models.EventCommentCreated, report))
	c.JSON(http.StatusCreated, comment)
}
