// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/metrics"
	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/repository"
)

// Service errors.
var (
	ErrDuplicateEmail     = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAlreadyLiked       = errors.New("post already liked")
	ErrNotLiked           = errors.New("post has not yet been liked")
	ErrConflict           = errors.New("document is being modified concurrently, retry later")

	ErrUserNotFound       = fmt.Errorf("user %w", auth.ErrNotFound)
	ErrProfileNotFound    = fmt.Errorf("profile %w", auth.ErrNotFound)
	ErrPostNotFound       = fmt.Errorf("post %w", auth.ErrNotFound)
	ErrCommentNotFound    = fmt.Errorf("comment %w", auth.ErrNotFound)
	ErrExperienceNotFound = fmt.Errorf("experience %w", auth.ErrNotFound)
	ErrEducationNotFound  = fmt.Errorf("education %w", auth.ErrNotFound)
)

// maxWriteAttempts bounds the re-read and re-apply cycle of a document write.
const maxWriteAttempts = 3

// UserStore persists user credentials.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	DeleteUser(ctx context.Context, id string) error
}

// ProfileStore persists profile documents.
type ProfileStore interface {
	CreateProfile(ctx context.Context, profile *model.Profile) error
	GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error)
	ListProfiles(ctx context.Context) ([]*model.Profile, error)
	UpdateProfile(ctx context.Context, profile *model.Profile) error
}

// PostStore persists post documents.
type PostStore interface {
	CreatePost(ctx context.Context, post *model.Post) error
	GetPostByID(ctx context.Context, id string) (*model.Post, error)
	ListPosts(ctx context.Context) ([]*model.Post, error)
	UpdatePost(ctx context.Context, post *model.Post) error
	DeletePost(ctx context.Context, id string) error
}

// FieldError describes one invalid input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every violated field of a request.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return "validation failed: " + strings.Join(names, ", ")
}

// fieldErrors accumulates field violations.
type fieldErrors []FieldError

func (f *fieldErrors) add(field, message string) {
	*f = append(*f, FieldError{Field: field, Message: message})
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// generateID returns a new lexicographically sortable identity.
func generateID() string {
	return ulid.Make().String()
}

// checkOwner applies the ownership policy and names the missing resource.
func checkOwner[R any, P interface {
	*R
	auth.Owned
}](resource P, actingUserID string, notFound error) error {
	err := auth.AssertOwner(resource, actingUserID)
	if errors.Is(err, auth.ErrNotFound) {
		return notFound
	}
	return err
}

// retryOnConflict re-runs a read-modify-write cycle while the store reports
// a version conflict.
func retryOnConflict(ctx context.Context, recorder metrics.Recorder, fn func() error) error {
	for attempt := 0; attempt < maxWriteAttempts; attempt++ {
		err := fn()
		if !errors.Is(err, repository.ErrVersionConflict) {
			return err
		}
		recorder.IncWriteConflict()
		if err := ctx.Err(); err != nil {
			return err
		}
	}
	return ErrConflict
}
