package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hirepulse/tadash/internal/cache"
	"github.com/hirepulse/tadash/internal/candidate"
	"github.com/hirepulse/tadash/internal/tracker"
)

func newCache() *cache.Cache {
	return cache.New(func(ctx context.Context) (*tracker.Dataset, error) {
		return &tracker.Dataset{
			Records:  []candidate.Record{{Name: "A"}, {Name: "B"}},
			LoadedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		}, nil
	}, time.Minute)
}

func TestHealthCheck(t *testing.T) {
	c := newCache()
	srv := New(Config{Port: 0}, c, nil)

	get := func() map[string]any {
		req := httptest.NewRequest("GET", "/healthz", nil)
		w := httptest.NewRecorder()
		srv.Router().ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
		var body map[string]any
		if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		return body
	}

	body := get()
	if body["status"] != "ok" || body["loaded"] != false {
		t.Errorf("before load: %v", body)
	}

	if _, err := c.Get(t.Context()); err != nil {
		t.Fatal(err)
	}
	body = get()
	if body["loaded"] != true || body["records"] != float64(2) {
		t.Errorf("after load: %v", body)
	}
}

func TestCORSHeaders(t *testing.T) {
	srv := New(Config{Port: 0, AllowAll: true}, newCache(), nil)

	req := httptest.NewRequest("OPTIONS", "/healthz", nil)
	req.Header.Set("Origin", "http://example.com")
	req.Header.Set("Access-Control-Request-Method", "GET")
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)

	if w.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Error("expected CORS Allow-Origin header")
	}
}

func TestShutdownBeforeStart(t *testing.T) {
	srv := New(Config{}, newCache(), nil)
	if err := srv.Shutdown(t.Context()); err != nil {
		t.Errorf("Shutdown = %v", err)
	}
	if srv.Cache() == nil || srv.Database() != nil {
		t.Error("unexpected accessors")
	}
}
