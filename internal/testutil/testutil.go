package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/devconnect/devconnect/internal/migrations"
	"github.com/devconnect/devconnect/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 420420

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// ResetSchema rolls back every migration and applies them again.
func ResetSchema(ctx context.Context, databaseURL string) error {
	db, err := migrations.Open(databaseURL)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := migrations.Reset(ctx, db); err != nil {
		return err
	}
	return migrations.Up(ctx, db)
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, name string) *model.User {
	t.Helper()
	return &model.User{
		ID:           UniqueID("user"),
		Name:         name,
		Email:        UniqueEmail(name),
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$c2FsdA$aGFzaA",
		Avatar:       "https://www.gravatar.com/avatar/test?s=200&r=pg&d=mm",
		CreatedAt:    time.Now().UTC().Truncate(time.Microsecond),
	}
}

// NewTestProfile creates a test profile owned by userID.
func NewTestProfile(t testing.TB, userID string) *model.Profile {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Profile{
		ID:         UniqueID("profile"),
		UserID:     userID,
		Status:     "Developer",
		Skills:     []string{"go", "sql"},
		Experience: []model.Experience{},
		Education:  []model.Education{},
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

// NewTestPost creates a test post authored by user.
func NewTestPost(t testing.TB, user *model.User) *model.Post {
	t.Helper()
	return &model.Post{
		ID:        UniqueID("post"),
		UserID:    user.ID,
		Text:      "hello from " + user.Name,
		Name:      user.Name,
		Avatar:    user.Avatar,
		Likes:     []model.Like{},
		Comments:  []model.Comment{},
		CreatedAt: time.Now().UTC().Truncate(time.Microsecond),
	}
}

// UniqueEmail generates a unique email address for tests.
func UniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

// UniqueID generates a unique ID for tests.
func UniqueID(prefix string) string {
	return fmt.Sprintf("%s-%d", prefix, time.Now().UnixNano())
}
