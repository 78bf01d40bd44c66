// Package health runs liveness and readiness probes in the background and
// serves their state over HTTP.
//
// A check must fail failureThreshold times in a row before it is reported
// unhealthy and succeed successThreshold times before it recovers.
package health

import (
	"context"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	failureThreshold = 3
	successThreshold = 1
)

// CheckFunc returns nil when the checked component is healthy.
type CheckFunc func(ctx context.Context) error

type check struct {
	name    string
	timeout time.Duration
	fn      CheckFunc

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// only touched by the goroutine running the check
	fails int
	oks   int
}

func (c *check) run(ctx context.Context, log *zap.Logger) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	err := c.fn(ctx)
	c.lastErr.Store(&err)
	if err != nil {
		c.oks = 0
		c.fails++
		if c.fails >= failureThreshold && c.healthy.Swap(false) {
			log.Warn("Health check failing", zap.String("check", c.name), zap.Error(err))
		}
		return
	}
	c.fails = 0
	c.oks++
	if c.oks >= successThreshold && !c.healthy.Swap(true) {
		log.Info("Health check recovered", zap.String("check", c.name))
	}
}

func (c *check) failure() string {
	if c.healthy.Load() {
		return ""
	}
	if p := c.lastErr.Load(); p != nil && *p != nil {
		return (*p).Error()
	}
	return "check is unhealthy"
}

// Health tracks liveness and readiness of the service.
type Health struct {
	log   *zap.Logger
	ready atomic.Bool

	mu        sync.RWMutex
	liveness  []*check
	readiness []*check
}

func New(log *zap.Logger) *Health {
	if log == nil {
		log = zap.NewNop()
	}
	return &Health{log: log}
}

func newCheck(name string, timeout time.Duration, fn CheckFunc) *check {
	c := &check{name: name, timeout: timeout, fn: fn}
	c.healthy.Store(true)
	return c
}

func (h *Health) AddLivenessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.liveness = append(h.liveness, newCheck(name, timeout, fn))
}

// AddReadinessCheck registers a dependency the service needs to serve
// traffic, such as the database.
func (h *Health) AddReadinessCheck(name string, timeout time.Duration, fn CheckFunc) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readiness = append(h.readiness, newCheck(name, timeout, fn))
}

// Run executes every check each interval until ctx is done.
func (h *Health) Run(ctx context.Context, interval time.Duration) error {
	h.mu.RLock()
	checks := make([]*check, 0, len(h.liveness)+len(h.readiness))
	checks = append(checks, h.liveness...)
	checks = append(checks, h.readiness...)
	h.mu.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		for _, c := range checks {
			c.run(ctx, h.log)
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

// SetReady marks the service ready once it finished starting, or not
// ready while shutting down.
func (h *Health) SetReady(ready bool) {
	h.ready.Store(ready)
}

func failures(checks []*check) map[string]string {
	out := make(map[string]string)
	for _, c := range checks {
		if msg := c.failure(); msg != "" {
			out[c.name] = msg
		}
	}
	return out
}

type status struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func respond(c *fiber.Ctx, failed map[string]string) error {
	if len(failed) == 0 {
		return c.JSON(status{Status: "ok"})
	}
	return c.Status(fiber.StatusServiceUnavailable).JSON(status{Status: "unhealthy", Checks: failed})
}

// Live serves /livez.
func (h *Health) Live(c *fiber.Ctx) error {
	h.mu.RLock()
	failed := failures(h.liveness)
	h.mu.RUnlock()
	return respond(c, failed)
}

// Ready serves /readyz.
func (h *Health) Ready(c *fiber.Ctx) error {
	h.mu.RLock()
	failed := failures(h.readiness)
	h.mu.RUnlock()
	if !h.ready.Load() {
		failed["_readiness"] = "service is not ready"
	}
	return respond(c, failed)
}

// GoroutineCountCheck fails when more than threshold goroutines run.
func GoroutineCountCheck(threshold int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > threshold {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, threshold)
		}
		return nil
	}
}
