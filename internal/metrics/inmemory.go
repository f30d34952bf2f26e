package metrics

import (
	"sync/atomic"
	"time"
)

// Snapshot captures current in-memory counters.
type Snapshot struct {
	UsersRegistered        uint64
	LoginsSucceeded        uint64
	LoginsFailed           uint64
	AuthRejectedMissing    uint64
	AuthRejectedMalformed  uint64
	AuthRejectedSignature  uint64
	AuthRejectedExpired    uint64
	ProfilesWritten        uint64
	PostsCreated           uint64
	PostsDeleted           uint64
	PostsLiked             uint64
	CommentsAdded          uint64
	WriteConflicts         uint64
	RequestDurationCount   uint64
	RequestDurationTotalNs int64
}

// InMemoryRecorder stores metrics in memory.
type InMemoryRecorder struct {
	usersRegistered        uint64
	loginsSucceeded        uint64
	loginsFailed           uint64
	authRejectedMissing    uint64
	authRejectedMalformed  uint64
	authRejectedSignature  uint64
	authRejectedExpired    uint64
	profilesWritten        uint64
	postsCreated           uint64
	postsDeleted           uint64
	postsLiked             uint64
	commentsAdded          uint64
	writeConflicts         uint64
	requestDurationCount   uint64
	requestDurationTotalNs int64
}

// NewInMemory returns a Recorder that stores counters in memory.
func NewInMemory() *InMemoryRecorder {
	return &InMemoryRecorder{}
}

// Snapshot returns a copy of the counters.
func (m *InMemoryRecorder) Snapshot() Snapshot {
	return Snapshot{
		UsersRegistered:        atomic.LoadUint64(&m.usersRegistered),
		LoginsSucceeded:        atomic.LoadUint64(&m.loginsSucceeded),
		LoginsFailed:           atomic.LoadUint64(&m.loginsFailed),
		AuthRejectedMissing:    atomic.LoadUint64(&m.authRejectedMissing),
		AuthRejectedMalformed:  atomic.LoadUint64(&m.authRejectedMalformed),
		AuthRejectedSignature:  atomic.LoadUint64(&m.authRejectedSignature),
		AuthRejectedExpired:    atomic.LoadUint64(&m.authRejectedExpired),
		ProfilesWritten:        atomic.LoadUint64(&m.profilesWritten),
		PostsCreated:           atomic.LoadUint64(&m.postsCreated),
		PostsDeleted:           atomic.LoadUint64(&m.postsDeleted),
		PostsLiked:             atomic.LoadUint64(&m.postsLiked),
		CommentsAdded:          atomic.LoadUint64(&m.commentsAdded),
		WriteConflicts:         atomic.LoadUint64(&m.writeConflicts),
		RequestDurationCount:   atomic.LoadUint64(&m.requestDurationCount),
		RequestDurationTotalNs: atomic.LoadInt64(&m.requestDurationTotalNs),
	}
}

// IncUserRegistered increments the registration counter.
func (m *InMemoryRecorder) IncUserRegistered() {
	atomic.AddUint64(&m.usersRegistered, 1)
}

// IncLogin increments the login counter for the given outcome.
func (m *InMemoryRecorder) IncLogin(success bool) {
	if success {
		atomic.AddUint64(&m.loginsSucceeded, 1)
		return
	}
	atomic.AddUint64(&m.loginsFailed, 1)
}

// IncAuthRejected increments the auth gate rejection counter for a reason.
// Unknown reasons are counted as malformed.
func (m *InMemoryRecorder) IncAuthRejected(reason string) {
	switch reason {
	case ReasonMissingToken:
		atomic.AddUint64(&m.authRejectedMissing, 1)
	case ReasonInvalidSignature:
		atomic.AddUint64(&m.authRejectedSignature, 1)
	case ReasonExpired:
		atomic.AddUint64(&m.authRejectedExpired, 1)
	default:
		atomic.AddUint64(&m.authRejectedMalformed, 1)
	}
}

// IncProfileWritten increments the profile write counter.
func (m *InMemoryRecorder) IncProfileWritten() {
	atomic.AddUint64(&m.profilesWritten, 1)
}

// IncPostCreated increments the post created counter.
func (m *InMemoryRecorder) IncPostCreated() {
	atomic.AddUint64(&m.postsCreated, 1)
}

// IncPostDeleted increments the post deleted counter.
func (m *InMemoryRecorder) IncPostDeleted() {
	atomic.AddUint64(&m.postsDeleted, 1)
}

// IncPostLiked increments the like counter.
func (m *InMemoryRecorder) IncPostLiked() {
	atomic.AddUint64(&m.postsLiked, 1)
}

// IncCommentAdded increments the comment counter.
func (m *InMemoryRecorder) IncCommentAdded() {
	atomic.AddUint64(&m.commentsAdded, 1)
}

// IncWriteConflict increments the optimistic concurrency conflict counter.
func (m *InMemoryRecorder) IncWriteConflict() {
	atomic.AddUint64(&m.writeConflicts, 1)
}

// ObserveRequestDuration records a request duration.
func (m *InMemoryRecorder) ObserveRequestDuration(duration time.Duration) {
	atomic.AddUint64(&m.requestDurationCount, 1)
	atomic.AddInt64(&m.requestDurationTotalNs, duration.Nanoseconds())
}
