package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	apphttp "medportal_backend/internal/http"
	"medportal_backend/platform/config"
	"medportal_backend/platform/httpkit"
	"medportal_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type pingModule struct{}

func (pingModule) Name() string { return "ping" }

func (pingModule) RegisterRoutes(ctx *apphttp.RouterContext) {
	ctx.API.POST("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"pong": true})
	})
}

func newEngine(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.TestMode)
	return New(&apphttp.App{
		Config:  cfg,
		Logger:  logger.Discard(),
		Modules: []apphttp.Module{pingModule{}},
	})
}

func baseConfig() *config.Config {
	return &config.Config{
		CORSAllowAll:   true,
		CORSOrigins:    []string{"*"},
		MaxBodyBytes:   1 << 20,
		RateLimitBurst: 10,
	}
}

func TestHealthRoute(t *testing.T) {
	engine := newEngine(baseConfig())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if rec.Header().Get(httpkit.HeaderRequestID) == "" {
		t.Fatal("expected request id header on response")
	}
}

func TestModuleRoutesMountedUnderAPI(t *testing.T) {
	engine := newEngine(baseConfig())

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
}

func TestCORSPreflightAllowsAnyOrigin(t *testing.T) {
	engine := newEngine(baseConfig())

	req := httptest.NewRequest(http.MethodOptions, "/api/ping", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rec.Code)
	}
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "*" {
		t.Fatalf("expected wildcard origin, got %q", got)
	}
}

func TestCORSRestrictedOrigins(t *testing.T) {
	cfg := baseConfig()
	cfg.CORSAllowAll = false
	cfg.CORSOrigins = []string{"https://care.example"}
	engine := newEngine(cfg)

	req := httptest.NewRequest(http.MethodPost, "/api/ping", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected status 403 for unknown origin, got %d", rec.Code)
	}
}

func TestRateLimitAppliesToAPIGroupOnly(t *testing.T) {
	cfg := baseConfig()
	cfg.RateLimitRPS = 0.001
	cfg.RateLimitBurst = 1
	engine := newEngine(cfg)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		rec := httptest.NewRecorder()
		engine.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/ping", nil))
		if rec.Code != want {
			t.Fatalf("request %d: expected status %d, got %d", i, want, rec.Code)
		}
	}

	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected health to bypass the limiter, got %d", rec.Code)
	}
}
