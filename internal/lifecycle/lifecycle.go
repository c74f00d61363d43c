// Package lifecycle governs how a report's status, assigned entity and rating
// change after creation. Apply is pure: it takes the current report and a
// patch and returns the next report, leaving persistence to the caller.
package lifecycle

import (
	"errors"
	"fmt"
	"strings"

	"reportes/backend/internal/models"
)

// Status is the lifecycle state of a report.
type Status string

const (
	Pending    Status = "pendiente"
	InProgress Status = "en-proceso"
	Resolved   Status = "resuelto"
	Rejected   Status = "rechazado"
)

// Initial is the status of every newly created report.
const Initial = Pending

const (
	MinRating = 1
	MaxRating = 5
)

var (
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidRating     = errors.New("rating must be between 1 and 5")
	ErrEmptyEntity       = errors.New("entity name must not be empty")
	ErrTransitionBlocked = errors.New("status transition not allowed")
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{Pending, InProgress, Resolved, Rejected}

// ParseStatus accepts the canonical values and a few spellings seen in older
// clients ("en proceso", "en_proceso").
func ParseStatus(s string) (Status, error) {
	normalized := strings.ToLower(strings.TrimSpace(s))
	normalized = strings.NewReplacer(" ", "-", "_", "-").Replace(normalized)

	st := Status(normalized)
	if !st.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
	}
	return st, nil
}

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case Pending, InProgress, Resolved, Rejected:
		return true
	}
	return false
}

// IsTerminal reports whether no further work is expected.
func (s Status) IsTerminal() bool {
	return s == Resolved || s == Rejected
}

func (s Status) String() string { return string(s) }

// Guard decides whether a transition is allowed.
type Guard func(from, to Status) error

// AllowAll permits every transition, including leaving terminal states.
func AllowAll(from, to Status) error { return nil }

// Strict forbids leaving a terminal state and returning to pendiente.
func Strict(from, to Status) error {
	if from == to {
		return nil
	}
	if from.IsTerminal() {
		return fmt.Errorf("%w: %s is terminal", ErrTransitionBlocked, from)
	}
	if to == Pending {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionBlocked, from, to)
	}
	return nil
}

// Machine applies administrative patches to reports.
type Machine struct {
	guard Guard
}

// NewMachine creates a machine using guard; nil means AllowAll.
func NewMachine(guard Guard) *Machine {
	if guard == nil {
		guard = AllowAll
	}
	return &Machine{guard: guard}
}

// Apply returns the report that results from applying patch to current.
// current is not modified.
func (m *Machine) Apply(current models.Report, patch models.ReportPatch) (models.Report, error) {
	next := current

	if patch.Status != nil {
		to, err := ParseStatus(*patch.Status)
		if err != nil {
			return current, err
		}
		from := Status(current.Status)
		if err := m.guard(from, to); err != nil {
			return current, err
		}
		next.Status = string(to)
	}

	if patch.EntityName != nil {
		name := strings.TrimSpace(*patch.EntityName)
		if name == "" {
			return current, ErrEmptyEntity
		}
		// Repeating the current entity is not a reassignment.
		if name != current.EntityName {
			next.EntityName = name
			next.EntityID = nil
			next.ManuallyAssigned = true
			next.AIClassification = nil
		}
	}

	if patch.EntityID != nil {
		id := strings.TrimSpace(*patch.EntityID)
		if id == "" {
			next.EntityID = nil
		} else {
			next.EntityID = &id
		}
	}

	if patch.Rating != nil {
		if *patch.Rating < MinRating || *patch.Rating > MaxRating {
			return current, ErrInvalidRating
		}
		rating := *patch.Rating
		next.Rating = &rating
	}

	if patch.RatingComment != nil {
		comment := strings.TrimSpace(*patch.RatingComment)
		next.RatingComment = &comment
	}

	next.Version = current.Version + 1
	return next, nil
}

// Start sets the initial status on a freshly routed report.
func Start(r *models.Report) {
	r.Status = string(Initial)
}
