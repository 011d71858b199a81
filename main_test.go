package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/s1natex/todo-api/internal/config"
	"github.com/s1natex/todo-api/internal/tasks"
)

func newTestRouter(t *testing.T, cfg config.Config) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewJSONHandler(io.Discard, &slog.HandlerOptions{}))
	return newRouter(tasks.NewInMemoryRepo(tasks.DemoTasks()...), logger, cfg)
}

func TestHealthEndpoint(t *testing.T) {
	r := newTestRouter(t, config.Config{})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", w.Code)
	}

	expected := `{"status":"ok"}` + "\n"
	if w.Body.String() != expected {
		t.Errorf("expected body %s, got %s", expected, w.Body.String())
	}
}

func TestRouter_CreateThenList(t *testing.T) {
	r := newTestRouter(t, config.Config{})

	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"Buy milk"}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	want := `{"task":{"id":3,"title":"Buy milk","description":"","completed":false}}` + "\n"
	if w.Code != http.StatusCreated || w.Body.String() != want {
		t.Fatalf("expected 201 %s, got %d %s", want, w.Code, w.Body.String())
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/tasks", nil))
	if !strings.Contains(w.Body.String(), `"title":"Buy milk"`) {
		t.Fatalf("created task missing from list: %s", w.Body.String())
	}
}

func TestRouter_MetricsExposed(t *testing.T) {
	r := newTestRouter(t, config.Config{})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/tasks/1", nil))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 from /metrics, got %d", w.Code)
	}
	want := `http_requests_total{method="GET",path="/tasks/{id:[0-9]+}",status="200"}`
	if !strings.Contains(w.Body.String(), want) {
		t.Fatalf("expected metrics to contain %q", want)
	}
}

func TestRouter_RateLimited(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))
	cfg := config.Config{RateLimitRPS: 0.001, RateLimitBurst: 1}
	r := newRouter(tasks.NewInMemoryRepo(tasks.DemoTasks()...), logger, cfg)

	codes := make([]int, 0, 2)
	for range 2 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}

	// throttled requests still reach the request log
	if !strings.Contains(buf.String(), `"status":429`) {
		t.Fatalf("expected the 429 to be logged, got %s", buf.String())
	}
}

func TestRouter_CORSPreflight(t *testing.T) {
	r := newTestRouter(t, config.Config{CORSOrigins: []string{"https://app.example"}})

	req := httptest.NewRequest(http.MethodOptions, "/tasks", nil)
	req.Header.Set("Origin", "https://app.example")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "https://app.example" {
		t.Fatalf("expected allowed origin header, got %q", got)
	}
}

func TestRun_MigrateOnly(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{}))
	path := filepath.Join(t.TempDir(), "tasks.db")

	cfg := config.Config{DatabaseURL: "sqlite:///" + path}
	if err := run(context.Background(), cfg, logger, true); err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(buf.String(), "migrations_applied") {
		t.Fatalf("expected migrations to be logged, got %s", buf.String())
	}

	ctx := context.Background()
	repo, err := tasks.Open(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer repo.Close()
	if _, err := repo.Create(ctx, "after migrate", ""); err != nil {
		t.Fatalf("table should exist after -migrate: %v", err)
	}
}

func TestRun_BadDatabaseURL(t *testing.T) {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	err := run(context.Background(), config.Config{DatabaseURL: "mysql://nope"}, logger, false)
	if err == nil {
		t.Fatalf("expected error for unsupported database url")
	}
}
