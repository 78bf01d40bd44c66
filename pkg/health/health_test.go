package health

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newApp(h *Health) *fiber.App {
	app := fiber.New()
	app.Get("/livez", h.Live)
	app.Get("/readyz", h.Ready)
	return app
}

func get(t *testing.T, app *fiber.App, path string) (int, status) {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, path, nil), -1)
	require.NoError(t, err)
	defer resp.Body.Close()
	var body status
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestCheckThresholds(t *testing.T) {
	fail := true
	c := newCheck("db", time.Second, func(context.Context) error {
		if fail {
			return errors.New("connection refused")
		}
		return nil
	})
	log := zap.NewNop()

	c.run(context.Background(), log)
	c.run(context.Background(), log)
	assert.Empty(t, c.failure(), "two failures stay below the threshold")

	c.run(context.Background(), log)
	assert.Equal(t, "connection refused", c.failure())

	fail = false
	c.run(context.Background(), log)
	assert.Empty(t, c.failure())
}

func TestReadyRequiresSetReady(t *testing.T) {
	h := New(nil)
	h.AddReadinessCheck("db", time.Second, func(context.Context) error { return nil })
	app := newApp(h)

	code, body := get(t, app, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks, "_readiness")

	h.SetReady(true)
	code, body = get(t, app, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
}

func TestRunMarksFailingCheck(t *testing.T) {
	h := New(nil)
	h.AddLivenessCheck("goroutines", time.Second, GoroutineCountCheck(0))
	app := newApp(h)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = h.Run(ctx, time.Millisecond)
	}()

	require.Eventually(t, func() bool {
		code, _ := get(t, app, "/livez")
		return code == http.StatusServiceUnavailable
	}, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	_, body := get(t, app, "/livez")
	assert.Contains(t, body.Checks["goroutines"], "exceeds threshold")
}
