package handler

import (
	"fmt"
	"net/http"

	"github.com/devconnect/devconnect/internal/metrics"
)

// MetricsHandler exposes in-memory metrics.
type MetricsHandler struct {
	snapshotter metrics.Snapshotter
}

// NewMetricsHandler creates a new MetricsHandler.
func NewMetricsHandler(snapshotter metrics.Snapshotter) *MetricsHandler {
	return &MetricsHandler{snapshotter: snapshotter}
}

// Metrics returns metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(w http.ResponseWriter, r *http.Request) {
	if h.snapshotter == nil {
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}

	snap := h.snapshotter.Snapshot()

	w.Header().Set("Content-Type", "text/plain; version=0.0.4")

	writeMetric(w, "devconnect_users_registered_total %d\n", snap.UsersRegistered)
	writeMetric(w, "devconnect_logins_total{status=\"success\"} %d\n", snap.LoginsSucceeded)
	writeMetric(w, "devconnect_logins_total{status=\"failed\"} %d\n", snap.LoginsFailed)

	writeMetric(w, "devconnect_auth_rejected_total{reason=%q} %d\n", metrics.ReasonMissingToken, snap.AuthRejectedMissing)
	writeMetric(w, "devconnect_auth_rejected_total{reason=%q} %d\n", metrics.ReasonMalformed, snap.AuthRejectedMalformed)
	writeMetric(w, "devconnect_auth_rejected_total{reason=%q} %d\n", metrics.ReasonInvalidSignature, snap.AuthRejectedSignature)
	writeMetric(w, "devconnect_auth_rejected_total{reason=%q} %d\n", metrics.ReasonExpired, snap.AuthRejectedExpired)

	writeMetric(w, "devconnect_profiles_written_total %d\n", snap.ProfilesWritten)
	writeMetric(w, "devconnect_posts_created_total %d\n", snap.PostsCreated)
	writeMetric(w, "devconnect_posts_deleted_total %d\n", snap.PostsDeleted)
	writeMetric(w, "devconnect_post_likes_total %d\n", snap.PostsLiked)
	writeMetric(w, "devconnect_post_comments_total %d\n", snap.CommentsAdded)
	writeMetric(w, "devconnect_write_conflicts_total %d\n", snap.WriteConflicts)

	writeMetric(w, "devconnect_http_request_duration_seconds_count %d\n", snap.RequestDurationCount)
	writeMetric(w, "devconnect_http_request_duration_seconds_sum %.6f\n", float64(snap.RequestDurationTotalNs)/1e9)
}

func writeMetric(w http.ResponseWriter, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format, args...)
}
