// Package health implements Kubernetes-style liveness and readiness
// probes. Checks run on a shared background ticker; each check must
// fail three consecutive times before its probe reports unhealthy, so
// one slow poll does not bounce the pod.
package health

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

// CheckFunc probes one component. A nil return means healthy.
type CheckFunc func(ctx context.Context) error

// failureThreshold is how many consecutive failures flip a check to
// unhealthy. A single success flips it back.
const failureThreshold = 3

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	fails   int
	lastErr error
}

func (c *check) poll(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.fn(ctx); err != nil {
		c.fails++
		c.lastErr = err
		return
	}
	c.fails = 0
	c.lastErr = nil
}

func (c *check) unhealthy() bool {
	return c.fails >= failureThreshold
}

// Service runs registered checks and serves the probe endpoints.
type Service struct {
	mu        sync.Mutex
	ready     bool
	liveness  []*check
	readiness []*check
	cancel    context.CancelFunc
}

// New creates a Service in the not-ready state. Call SetReady(true)
// once initialization finishes.
func New() *Service {
	return &Service{}
}

// AddLivenessCheck registers a process-level check, e.g. goroutine count.
func (s *Service) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.liveness = append(s.liveness, &check{name: name, timeout: timeout, fn: fn})
}

// AddReadinessCheck registers a dependency check, e.g. a database ping.
func (s *Service) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.readiness = append(s.readiness, &check{name: name, timeout: timeout, fn: fn})
}

// Start launches the polling loop. Checks run once immediately and
// then every interval until Stop or context cancellation.
func (s *Service) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	s.cancel = cancel
	s.mu.Unlock()

	go func() {
		s.pollAll(ctx)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.pollAll(ctx)
			}
		}
	}()
}

func (s *Service) pollAll(ctx context.Context) {
	s.mu.Lock()
	checks := make([]*check, 0, len(s.liveness)+len(s.readiness))
	checks = append(checks, s.liveness...)
	checks = append(checks, s.readiness...)
	s.mu.Unlock()

	for _, c := range checks {
		s.mu.Lock()
		c.poll(ctx)
		s.mu.Unlock()
	}
}

// Stop halts the polling loop. Safe to call more than once.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// SetReady flips the manual readiness gate. Graceful shutdown sets it
// to false first so load balancers drain before the listener closes.
func (s *Service) SetReady(ready bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ready = ready
}

// IsReady reports whether the gate is open and every readiness check passes.
func (s *Service) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.ready {
		return false
	}
	for _, c := range s.readiness {
		if c.unhealthy() {
			return false
		}
	}
	return true
}

// LiveEndpoint serves /livez.
func (s *Service) LiveEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.liveness)
	s.mu.Unlock()

	writeStatus(w, failures)
}

// ReadyEndpoint serves /readyz.
func (s *Service) ReadyEndpoint(w http.ResponseWriter, _ *http.Request) {
	s.mu.Lock()
	failures := collectFailures(s.readiness)
	if !s.ready {
		failures["_readiness"] = "service is not ready"
	}
	s.mu.Unlock()

	writeStatus(w, failures)
}

func collectFailures(checks []*check) map[string]string {
	failures := make(map[string]string)
	for _, c := range checks {
		if !c.unhealthy() {
			continue
		}
		msg := "check is unhealthy"
		if c.lastErr != nil {
			msg = c.lastErr.Error()
		}
		failures[c.name] = msg
	}
	return failures
}

func writeStatus(w http.ResponseWriter, failures map[string]string) {
	body := struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks,omitempty"`
	}{Status: "ok"}

	status := http.StatusOK
	if len(failures) > 0 {
		body.Status = "unhealthy"
		body.Checks = failures
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
