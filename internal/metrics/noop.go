package metrics

import "time"

// NoopRecorder implements Recorder with no-op methods.
type NoopRecorder struct{}

// NewNoop returns a Recorder that discards all metrics.
func NewNoop() Recorder {
	return &NoopRecorder{}
}

// IncUserRegistered is a no-op.
func (n *NoopRecorder) IncUserRegistered() {}

// IncLogin is a no-op.
func (n *NoopRecorder) IncLogin(success bool) {}

// IncAuthRejected is a no-op.
func (n *NoopRecorder) IncAuthRejected(reason string) {}

// IncProfileWritten is a no-op.
func (n *NoopRecorder) IncProfileWritten() {}

// IncPostCreated is a no-op.
func (n *NoopRecorder) IncPostCreated() {}

// IncPostDeleted is a no-op.
func (n *NoopRecorder) IncPostDeleted() {}

// IncPostLiked is a no-op.
func (n *NoopRecorder) IncPostLiked() {}

// IncCommentAdded is a no-op.
func (n *NoopRecorder) IncCommentAdded() {}

// IncWriteConflict is a no-op.
func (n *NoopRecorder) IncWriteConflict() {}

// ObserveRequestDuration is a no-op.
func (n *NoopRecorder) ObserveRequestDuration(duration time.Duration) {}
