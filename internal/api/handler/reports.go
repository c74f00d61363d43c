package handler

import (
	"fmt"
	"net/http"
	"strconv"

	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type classifyRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// Classify previews the routing decision for the submission form.
func (h *Handler) Classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	res, err := h.Router.ClassifyText(c.Request.Context(), req.Title, req.Description)
	if err != nil {
		h.respondError(c, err)
		return
	}
	h.Metrics.ObservePreview(res.Entity, res.Confidence)

	c.JSON(http.StatusOK, gin.H{
		"entity":     res.Entity,
		"confidence": res.Confidence,
		"reasoning":  res.Reasoning,
	})
}

// CreateReport routes and stores a new report.
func (h *Handler) CreateReport(c *gin.Context) {
	var req models.ReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}

	sub, err := req.Normalize()
	if err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	// An authenticated caller always files as the token identity; body
	// identity is only kept for anonymous submissions.
	if claims, ok := CurrentClaims(c); ok {
		sub.Creator = models.Creator{UserID: claims.UserID, Name: claims.Name, Email: claims.Email}
	}

	ctx := c.Request.Context()
	catalog, err := h.catalog(ctx)
	if err != nil {
		h.respondError(c, err)
		return
	}

	report := h.Router.Route(sub, catalog)
	if err := h.Storage.CreateReport(ctx, report); err != nil {
		h.respondError(c, err)
		return
	}

	confidence := 0
	if report.AIClassification != nil {
		confidence = report.AIClassification.Confidence
	}
	h.Metrics.ObserveRouted(report.EntityName, report.ManuallyAssigned, confidence)
	h.Logger.Info("Report routed",
		zap.String("report_id", report.ID),
		zap.String("entity", report.EntityName),
		zap.Bool("manual", report.ManuallyAssigned),
		zap.Int("confidence", confidence))

	h.publish(ctx, models.NewReportEvent(models.EventReportCreated, report))
	c.JSON(http.StatusCreated, report)
}

// ListReports returns reports newest first, filtered by status, entity and
// creator.
func (h *Handler) ListReports(c *gin.Context) {
	filter := models.ReportFilter{
		EntityName: c.Query("entity"),
		CreatorID:  c.Query("creator"),
	}
	if raw := c.Query("status"); raw != "" {
		st, err := lifecycle.ParseStatus(raw)
		if err != nil {
			h.respondError(c, err)
			return
		}
		filter.Status = st.String()
	}

	var err error
	if filter.Limit, err = queryInt(c, "limit"); err != nil {
		h.respondError(c, err)
		return
	}
	if filter.Offset, err = queryInt(c, "offset"); err != nil {
		h.respondError(c, err)
		return
	}

	reports, err := h.Storage.ListReports(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reports)
}

// GetReport returns one report.
func (h *Handler) GetReport(c *gin.Context) {
	report, err := h.Storage.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}

// UpdateReport applies an administrative patch: status, entity, rating.
func (h *Handler) UpdateReport(c *gin.Context) {
	var patch models.ReportPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		h.respondError(c, fmt.Errorf("%w: %v", errBadRequest, err))
		return
	}
	if patch.IsEmpty() {
		h.respondError(c, errEmptyPatch)
		return
	}

	ctx := c.Request.Context()
	current, err := h.Storage.GetReport(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}

	next, err := h.Machine.Apply(*current, patch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	if next.EntityName != current.EntityName && patch.EntityID == nil {
		catalog, err := h.catalog(ctx)
		if err != nil {
			h.respondError(c, err)
			return
		}
		if id, ok := catalog.Resolve(next.EntityName); ok {
			next.EntityID = &id
		}
	}

	if err := h.Storage.UpdateReport(ctx, &next, patch.Version); err != nil {
		h.respondError(c, err)
		return
	}

	evt := models.NewReportEvent(models.EventReportUpdated, &next)
	if next.Status != current.Status {
		evt.PreviousStatus = current.Status
		h.Metrics.ObserveStatus(next.Status)
	}
	if next.EntityName != current.EntityName {
		evt.PreviousEntity = current.EntityName
	}
	h.publish(ctx, evt)

	c.JSON(http.StatusOK, next)
}

// DeleteReport removes a report and its comments.
func (h *Handler) DeleteReport(c *gin.Context) {
	ctx := c.Request.Context()
	report, err := h.Storage.GetReport(ctx, c.Param("id"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.Storage.DeleteReport(ctx, report.ID); err != nil {
		h.respondError(c, err)
		return
	}

	h.publish(ctx, models.NewReportEvent(models.EventReportDeleted, report))
	c.Status(http.StatusNoContent)
}

func queryInt(c *gin.Context, key string) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errBadRequest, key)
	}
	return n, nil
}
