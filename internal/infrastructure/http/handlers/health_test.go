package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func readiness(t *testing.T, h *HealthDependenciesHandler) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	rec := httptest.NewRecorder()
	if err := h.Readiness(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var body readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	return rec.Code, body
}

func TestLiveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_AllUp(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rdb.Close()

	code, body := readiness(t, NewHealthDependenciesHandler(pingerFunc(func(context.Context) error { return nil }), rdb))
	if code != http.StatusOK || body.Status != "ok" {
		t.Fatalf("expected ok, got %d %+v", code, body)
	}
	if body.Dependencies["redis"].Status != "ok" || body.Dependencies["store"].Status != "ok" {
		t.Fatalf("unexpected dependencies %+v", body.Dependencies)
	}
}

func TestReadiness_CacheDisabled(t *testing.T) {
	code, body := readiness(t, NewHealthDependenciesHandler(pingerFunc(func(context.Context) error { return nil }), nil))
	if code != http.StatusOK || body.Dependencies["redis"].Status != "disabled" {
		t.Fatalf("unexpected response %d %+v", code, body)
	}
}

func TestReadiness_StoreDown(t *testing.T) {
	down := pingerFunc(func(context.Context) error { return errors.New("connection refused") })

	code, body := readiness(t, NewHealthDependenciesHandler(down, nil))
	if code != http.StatusServiceUnavailable || body.Status != "degraded" {
		t.Fatalf("expected degraded, got %d %+v", code, body)
	}
	if body.Dependencies["store"].Error != "connection refused" {
		t.Fatalf("unexpected store status %+v", body.Dependencies["store"])
	}
}
