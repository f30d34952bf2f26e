package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devconnect/devconnect/internal/metrics"
)

func TestMetricsHandler(t *testing.T) {
	recorder := metrics.NewInMemory()
	recorder.IncUserRegistered()
	recorder.IncLogin(false)
	recorder.IncAuthRejected(metrics.ReasonExpired)
	recorder.IncPostLiked()

	rec := httptest.NewRecorder()
	NewMetricsHandler(recorder).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.HasPrefix(rec.Header().Get("Content-Type"), "text/plain") {
		t.Errorf("unexpected content type %q", rec.Header().Get("Content-Type"))
	}

	body := rec.Body.String()
	for _, line := range []string{
		"devconnect_users_registered_total 1",
		`devconnect_logins_total{status="failed"} 1`,
		`devconnect_auth_rejected_total{reason="expired"} 1`,
		`devconnect_auth_rejected_total{reason="missing_token"} 0`,
		"devconnect_post_likes_total 1",
	} {
		if !strings.Contains(body, line+"\n") {
			t.Errorf("metrics output missing %q:\n%s", line, body)
		}
	}
}

func TestMetricsHandler_NoSnapshotter(t *testing.T) {
	rec := httptest.NewRecorder()
	NewMetricsHandler(nil).Metrics(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
