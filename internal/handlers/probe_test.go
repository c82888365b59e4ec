package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v3"

	"socialpulse/internal/store"
	"socialpulse/internal/testutil"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(context.Context) error {
	return p.err
}

func TestProbes(t *testing.T) {
	tests := []struct {
		name   string
		pinger Pinger
		path   string
		want   int
	}{
		{"liveness", stubPinger{err: errors.New("down")}, "/healthz", http.StatusOK},
		{"ready", stubPinger{}, "/readyz", http.StatusOK},
		{"ready with sqlite", testutil.TestStore(t), "/readyz", http.StatusOK},
		{"not ready", stubPinger{err: &store.UnavailableError{Op: "ping", Err: errors.New("refused")}}, "/readyz", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewProbeHandler(tt.pinger)
			app := fiber.New()
			app.Get("/healthz", h.Liveness)
			app.Get("/readyz", h.Readiness)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
			if err != nil {
				t.Fatal(err)
			}
			if resp.StatusCode != tt.want {
				t.Errorf("GET %s = %d, want %d", tt.path, resp.StatusCode, tt.want)
			}
		})
	}
}
