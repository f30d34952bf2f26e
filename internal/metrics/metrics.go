// Package metrics provides lightweight hooks for instrumentation.
package metrics

import "time"

// Auth rejection reasons reported by the auth gate.
const (
	ReasonMissingToken     = "missing_token"
	ReasonMalformed        = "malformed"
	ReasonInvalidSignature = "invalid_signature"
	ReasonExpired          = "expired"
)

// Recorder captures metric events for the application.
// Implementations can expose these to Prometheus, StatsD, etc.
type Recorder interface {
	// Credential metrics
	IncUserRegistered()
	IncLogin(success bool)
	IncAuthRejected(reason string)

	// Document metrics
	IncProfileWritten()
	IncPostCreated()
	IncPostDeleted()
	IncPostLiked()
	IncCommentAdded()
	IncWriteConflict()

	ObserveRequestDuration(duration time.Duration)
}

// Snapshotter exposes a snapshot of current metrics.
type Snapshotter interface {
	Snapshot() Snapshot
}
