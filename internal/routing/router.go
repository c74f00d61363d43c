// Package routing decides which entity receives a new report, either from the
// submitter's manual choice or from the classifier.
package routing

import (
	"context"
	"strings"
	"time"

	"reportes/backend/internal/analysis"
	"reportes/backend/internal/config"
	"reportes/backend/internal/lifecycle"
	"reportes/backend/internal/models"
)

// Router builds fully routed reports. It performs no I/O.
type Router struct {
	Classifier *analysis.Classifier
	// Delay emulates a remote inference call in ClassifyText.
	Delay time.Duration
}

// NewRouter creates a router around c.
func NewRouter(c *analysis.Classifier, delay time.Duration) *Router {
	return &Router{Classifier: c, Delay: delay}
}

// IsAuto reports whether name asks for automatic routing.
func IsAuto(name string) bool {
	name = strings.TrimSpace(name)
	return name == "" || strings.EqualFold(name, config.AutoEntityToken)
}

// Route turns a submission into a report ready for persistence.
// A manual entity bypasses the classifier. An entity name missing from the
// catalog leaves EntityID unset; that is not an error.
func (r *Router) Route(sub models.Submission, catalog Catalog) *models.Report {
	report := &models.Report{
		Title:       sub.Title,
		Description: sub.Description,
		Category:    sub.Category,
		Location:    sub.Location,
		ImageURLs:   sub.ImageURLs,
		Creator:     sub.Creator,
	}
	lifecycle.Start(report)

	if !IsAuto(sub.ManualEntity) {
		report.EntityName = strings.TrimSpace(sub.ManualEntity)
		report.ManuallyAssigned = true
	} else {
		res := r.Classifier.Classify(sub.Title, sub.Description)
		report.EntityName = res.Entity
		report.ManuallyAssigned = false
		report.AIClassification = &models.AIClassification{
			Confidence: res.Confidence,
			Reasoning:  res.Reasoning,
		}
	}

	if id, ok := catalog.Resolve(report.EntityName); ok {
		report.EntityID = &id
	}

	return report
}

// Preview classifies without building a report, for the submission form.
func (r *Router) Preview(title, description string) analysis.Result {
	return r.Classifier.Classify(title, description)
}

// ClassifyText is Preview behind the configured artificial latency.
func (r *Router) ClassifyText(ctx context.Context, title, description string) (analysis.Result, error) {
	if r.Delay > 0 {
		timer := time.NewTimer(r.Delay)
		defer timer.Stop()

		select {
		case <-ctx.Done():
			return analysis.Result{}, ctx.Err()
		case <-timer.C:
		}
	}
	return r.Preview(title, description), nil
}
