// Package health exposes liveness and readiness probes for long running
// simulations. Checks are registered by name and evaluated on every
// readiness request.
package health

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/opd-ai/go-xpbd/pkg/physics"
)

// HealthCheck is a single named probe.
type HealthCheck interface {
	Name() string
	// Check returns nil when the component is healthy.
	Check(ctx context.Context) error
}

// HealthStatus is the aggregated result served by ReadinessHandler.
type HealthStatus struct {
	Status string                     `json:"status"`
	Checks map[string]ComponentHealth `json:"checks"`
}

// ComponentHealth is the result of one check.
type ComponentHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// HealthChecker runs a set of checks. It is safe for concurrent use.
type HealthChecker struct {
	checks map[string]HealthCheck
	mu     sync.RWMutex
}

// NewHealthChecker creates an empty checker.
func NewHealthChecker() *HealthChecker {
	return &HealthChecker{
		checks: make(map[string]HealthCheck),
	}
}

// AddCheck registers check, replacing any check with the same name.
func (hc *HealthChecker) AddCheck(check HealthCheck) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	hc.checks[check.Name()] = check
}

// RemoveCheck unregisters the named check.
func (hc *HealthChecker) RemoveCheck(name string) {
	hc.mu.Lock()
	defer hc.mu.Unlock()
	delete(hc.checks, name)
}

// CheckHealth runs every check. The overall status is "healthy" only when
// all of them pass.
func (hc *HealthChecker) CheckHealth(ctx context.Context) HealthStatus {
	hc.mu.RLock()
	defer hc.mu.RUnlock()

	status := HealthStatus{
		Status: "healthy",
		Checks: make(map[string]ComponentHealth, len(hc.checks)),
	}
	for name, check := range hc.checks {
		if err := check.Check(ctx); err != nil {
			status.Status = "unhealthy"
			status.Checks[name] = ComponentHealth{Status: "unhealthy", Message: err.Error()}
			continue
		}
		status.Checks[name] = ComponentHealth{Status: "healthy"}
	}
	return status
}

// LivenessHandler answers 200 while the process can serve requests.
func (hc *HealthChecker) LivenessHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "alive"})
}

// ReadinessHandler runs all checks with a five second budget and answers
// 200 or 503 with the aggregated status.
func (hc *HealthChecker) ReadinessHandler(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	health := hc.CheckHealth(ctx)

	w.Header().Set("Content-Type", "application/json")
	if health.Status == "healthy" {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(health)
}

// Handler serves /health and /ready.
func (hc *HealthChecker) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", hc.LivenessHandler)
	mux.HandleFunc("/ready", hc.ReadinessHandler)
	return mux
}

// ErrNotStarted is reported by SimulationMonitor before the first Observe.
var ErrNotStarted = errors.New("simulation has not started")

// SimulationMonitor records the state of a simulator from the goroutine
// that steps it, so probes never touch the simulator directly.
type SimulationMonitor struct {
	mu       sync.RWMutex
	observed bool
	steps    uint64
	bodies   int
	err      error
	progress time.Time

	maxStall time.Duration
	now      func() time.Time
}

// NewSimulationMonitor creates a monitor. A positive maxStall marks the
// simulation unhealthy when no step completes within that duration.
func NewSimulationMonitor(maxStall time.Duration) *SimulationMonitor {
	return &SimulationMonitor{
		maxStall: maxStall,
		now:      time.Now,
	}
}

// Observe snapshots sim. Call it from the stepping goroutine.
func (m *SimulationMonitor) Observe(sim *physics.Simulator) {
	steps := sim.StepCount()
	err := sim.CheckFinite()

	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.observed || steps != m.steps {
		m.progress = m.now()
	}
	m.observed = true
	m.steps = steps
	m.bodies = sim.BodyCount()
	m.err = err
}

// Steps returns the step count seen by the last Observe.
func (m *SimulationMonitor) Steps() uint64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.steps
}

// Name implements HealthCheck.
func (m *SimulationMonitor) Name() string {
	return "simulation"
}

// Check implements HealthCheck.
func (m *SimulationMonitor) Check(ctx context.Context) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case !m.observed:
		return ErrNotStarted
	case m.err != nil:
		return m.err
	case m.maxStall > 0 && m.now().Sub(m.progress) > m.maxStall:
		return fmt.Errorf("no step completed for %s (step %d, %d bodies)",
			m.now().Sub(m.progress).Round(time.Millisecond), m.steps, m.bodies)
	}
	return nil
}

// MemoryHealthCheck fails when heap usage exceeds a limit.
type MemoryHealthCheck struct {
	maxMemoryMB    int64
	getMemoryUsage func() int64
}

// NewMemoryHealthCheck creates a memory check. getMemoryUsage reports the
// current usage in megabytes.
func NewMemoryHealthCheck(maxMemoryMB int64, getMemoryUsage func() int64) *MemoryHealthCheck {
	return &MemoryHealthCheck{
		maxMemoryMB:    maxMemoryMB,
		getMemoryUsage: getMemoryUsage,
	}
}

// Name implements HealthCheck.
func (m *MemoryHealthCheck) Name() string {
	return "memory"
}

// Check implements HealthCheck.
func (m *MemoryHealthCheck) Check(ctx context.Context) error {
	if currentMB := m.getMemoryUsage(); currentMB > m.maxMemoryMB {
		return fmt.Errorf("memory usage %dMB exceeds limit %dMB", currentMB, m.maxMemoryMB)
	}
	return nil
}
