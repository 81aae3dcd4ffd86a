package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"userhub/internal/http/handlers"
)

type fakePinger struct {
	pingFn func(ctx context.Context) error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	if f.pingFn != nil {
		return f.pingFn(ctx)
	}

	return nil
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		pingFn         func(ctx context.Context) error
		wantStatusCode int
		wantStatus     string
		wantDB         string
	}{
		{
			name:           "healthy",
			wantStatusCode: http.StatusOK,
			wantStatus:     "healthy",
			wantDB:         "connected",
		},
		{
			name: "database_down",
			pingFn: func(ctx context.Context) error {
				return errors.New("connection refused")
			},
			wantStatusCode: http.StatusServiceUnavailable,
			wantStatus:     "unhealthy",
			wantDB:         "disconnected",
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			h := handlers.NewHealthHandler(&fakePinger{pingFn: tt.pingFn})

			r := setupRouter(http.MethodGet, "/health", h.Health)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)

			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("got status %d, want %d, body=%s", w.Code, tt.wantStatusCode, w.Body.String())
			}

			var resp struct {
				Status string `json:"status"`
				DB     string `json:"db"`
			}
			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("failed to unmarshal response: %v", err)
			}

			if resp.Status != tt.wantStatus {
				t.Fatalf("got status field %q, want %q", resp.Status, tt.wantStatus)
			}
			if resp.DB != tt.wantDB {
				t.Fatalf("got db field %q, want %q", resp.DB, tt.wantDB)
			}
		})
	}
}

func TestHealthHandler_PingIsBounded(t *testing.T) {
	h := handlers.NewHealthHandler(&fakePinger{
		pingFn: func(ctx context.Context) error {
			if _, ok := ctx.Deadline(); !ok {
				return errors.New("expected a deadline on the ping context")
			}
			return nil
		},
	})

	r := setupRouter(http.MethodGet, "/health", h.Health)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("got status %d, want %d, body=%s", w.Code, http.StatusOK, w.Body.String())
	}
}
