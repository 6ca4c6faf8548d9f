// Package health tracks the state of the components /healthz reports on.
package health

import (
	"context"
	"sync"
	"time"
)

// Component names.
const (
	Database = "database"
	AI       = "ai"
	Catalog  = "catalog"
)

// Status is the health of a single component.
type Status struct {
	Healthy     bool      `json:"healthy"`
	Critical    bool      `json:"critical"`
	LastCheck   time.Time `json:"lastCheck"`
	LastSuccess time.Time `json:"lastSuccess,omitzero"`
	LastError   string    `json:"lastError,omitempty"`
	Message     string    `json:"message,omitempty"`
}

// Checker probes a component on demand.
type Checker func(ctx context.Context) error

// Health tracks the health of various components.
type Health struct {
	mu         sync.RWMutex
	components map[string]*Status
	checkers   map[string]Checker
	now        func() time.Time
}

// New creates a new health tracker.
func New() *Health {
	return &Health{
		components: make(map[string]*Status),
		checkers:   make(map[string]Checker),
		now:        time.Now,
	}
}

// Register adds a component. Critical components make the overall status
// unhealthy when they fail; the others only report degraded.
func (h *Health) Register(component string, critical bool, check Checker) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.status(component).Critical = critical
	if check != nil {
		h.checkers[component] = check
	}
}

// SetHealthy marks a component as healthy.
func (h *Health) SetHealthy(component, message string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	now := h.now()
	s := h.status(component)
	s.Healthy = true
	s.LastCheck = now
	s.LastSuccess = now
	s.LastError = ""
	s.Message = message
}

// SetUnhealthy marks a component as unhealthy.
func (h *Health) SetUnhealthy(component string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	s := h.status(component)
	s.Healthy = false
	s.LastCheck = h.now()
	s.LastError = err.Error()
	s.Message = ""
}

// Record sets the component state from the outcome of an operation.
func (h *Health) Record(component string, err error) {
	if err != nil {
		h.SetUnhealthy(component, err)
		return
	}
	h.SetHealthy(component, "ok")
}

// Check runs every registered checker and records the results.
func (h *Health) Check(ctx context.Context) {
	h.mu.RLock()
	checkers := make(map[string]Checker, len(h.checkers))
	for name, c := range h.checkers {
		checkers[name] = c
	}
	h.mu.RUnlock()

	for name, check := range checkers {
		h.Record(name, check(ctx))
	}
}

// Report is the overall health document.
type Report struct {
	Status     string            `json:"status"` // ok, degraded or unhealthy
	Components map[string]Status `json:"components"`
}

// Snapshot returns the current report.
func (h *Health) Snapshot() Report {
	h.mu.RLock()
	defer h.mu.RUnlock()

	r := Report{Status: "ok", Components: make(map[string]Status, len(h.components))}
	for name, s := range h.components {
		r.Components[name] = *s
		if s.Healthy {
			continue
		}
		if s.Critical {
			r.Status = "unhealthy"
		} else if r.Status == "ok" {
			r.Status = "degraded"
		}
	}
	return r
}

// status returns the entry for component, creating it. Callers hold mu.
func (h *Health) status(component string) *Status {
	s, ok := h.components[component]
	if !ok {
		// unknown until the first check or operation
		s = &Status{Healthy: true}
		h.components[component] = s
	}
	return s
}
