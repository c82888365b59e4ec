package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialpulse/internal/config"
	"socialpulse/internal/ingest"
	"socialpulse/internal/loader"
	"socialpulse/internal/testutil"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		SiteTitle:             "SocialPulse",
		BaseURL:               "http://localhost:8080",
		UploadDir:             t.TempDir(),
		UploadMaxBytes:        1 << 20,
		LargeAccountThreshold: 1_000_000,
		GrowthWindowDays:      30,
		GrowthThreshold:       10,
		PageLimitDefault:      10,
		PageLimitMax:          100,
	}
}

func newTestServer(t *testing.T, cfg *config.Config) *Server {
	t.Helper()

	srv, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	st := testutil.TestStore(t)
	srv.RegisterRoutes(st, ingest.NewEngine(st, loader.DefaultOptions(), slog.New(slog.DiscardHandler)))
	return srv
}

func TestRoutes(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	tests := []struct {
		method string
		path   string
		want   int
	}{
		{http.MethodGet, "/healthz", http.StatusOK},
		{http.MethodGet, "/readyz", http.StatusOK},
		{http.MethodGet, "/metrics", http.StatusOK},
		{http.MethodGet, "/stats", http.StatusOK},
		{http.MethodGet, "/accounts/million-plus", http.StatusOK},
		{http.MethodGet, "/accounts/growth", http.StatusOK},
		{http.MethodGet, "/accounts/category/music", http.StatusNotFound},
		{http.MethodPost, "/accounts/upload", http.StatusBadRequest},
		{http.MethodGet, "/nope", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			resp, err := srv.App.Test(httptest.NewRequest(tt.method, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}

func TestErrorHandlerRespondsWithJSON(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/does-not-exist", nil))
	if err != nil {
		t.Fatal(err)
	}

	var body struct {
		Status string `json:"status"`
		Error  string `json:"error"`
	}
	raw, _ := io.ReadAll(resp.Body)
	if err := json.Unmarshal(raw, &body); err != nil {
		t.Fatalf("error body %q is not JSON: %v", raw, err)
	}
	if body.Status != "error" || body.Error == "" {
		t.Errorf("body = %+v", body)
	}
}

func TestRateLimit(t *testing.T) {
	cfg := testConfig(t)
	cfg.RateLimitMax = 2
	srv := newTestServer(t, cfg)

	var codes []int
	for range 3 {
		resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if err != nil {
			t.Fatal(err)
		}
		codes = append(codes, resp.StatusCode)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusOK || codes[2] != http.StatusTooManyRequests {
		t.Errorf("status codes = %v, want [200 200 429]", codes)
	}
}

func TestCORS(t *testing.T) {
	cfg := testConfig(t)
	cfg.CORSOrigins = "https://dash.example.com"
	srv := newTestServer(t, cfg)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("Origin", "https://dash.example.com")
	resp, err := srv.App.Test(req)
	if err != nil {
		t.Fatal(err)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "https://dash.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestMetricsExposition(t *testing.T) {
	srv := newTestServer(t, testConfig(t))

	resp, err := srv.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if err != nil {
		t.Fatal(err)
	}
	raw, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(raw), "go_goroutines") {
		t.Errorf("metrics output missing runtime metrics")
	}
}

func TestLimiterStorage(t *testing.T) {
	storage, err := limiterStorage("")
	if err != nil || storage != nil {
		t.Errorf("limiterStorage(\"\") = %v, %v; want in-memory (nil, nil)", storage, err)
	}

	// Nothing listens on port 1, so the driver's startup ping fails.
	if _, err := limiterStorage("redis://127.0.0.1:1/0"); err == nil {
		t.Error("limiterStorage() with unreachable redis returned no error")
	}

	cfg := testConfig(t)
	cfg.RateLimitMax = 10
	cfg.RedisURL = "redis://127.0.0.1:1/0"
	if _, err := New(cfg); err == nil {
		t.Error("New() with unreachable redis returned no error")
	}
}
