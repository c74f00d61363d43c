package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// RequestLogger logs one line per request with zap.
func RequestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		switch {
		case status >= 500:
			logger.Error("request failed", fields...)
		case status >= 400:
			logger.Warn("request error", fields...)
		default:
			logger.Debug("request", fields...)
		}
	}
}

// Healthz reports liveness and, when the hub runs, the live client count.
func (h *Handler) Healthz(c *gin.Context) {
	body := gin.H{"status": "ok"}
	if h.Hub != nil {
		ctx, cancel := context.WithTimeout(c.Request.Context(), time.Second)
		defer cancel()
		if n, err := h.Hub.Count(ctx); err == nil {
			body["clients"] = n
		}
	}
	c.JSON(http.StatusOK, body)
}

// NewEngine registers every route. gatherer may be nil to skip /metrics.
func NewEngine(h *Handler, gatherer prometheus.Gatherer) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.Logger))

	r.GET("/healthz", h.Healthz)
	if gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api", h.OptionalAuth())
	api.POST("/classify", h.Classify)

	api.GET("/reports", h.ListReports)
	api.POST("/reports", h.CreateReport)
	api.GET("/reports/:id", h.GetReport)
	api.PATCH("/reports/:id", h.RequireAdmin(), h.UpdateReport)
	api.DELETE("/reports/:id", h.RequireAdmin(), h.DeleteReport)

	api.GET("/reports/:id/comments", h.ListComments)
	api.POST("/reports/:id/comments", h.AddComment)

	api.GET("/entities", h.ListEntities)
	api.POST("/entities", h.RequireAdmin(), h.CreateEntity)
	api.PUT("/entities", h.RequireAdmin(), h.UpsertEntity)

	api.GET("/ws", h.ServeWebSocket)

	return r
}
