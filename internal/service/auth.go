package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/metrics"
	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/repository"
)

// Email syntax check: one @, no whitespace, a dot in the domain.
var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const (
	minPasswordLength = 6
	maxPasswordLength = 18
)

// PasswordHasher hashes and verifies passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encodedHash string) (bool, error)
}

// TokenIssuer issues bearer tokens for an identity.
type TokenIssuer interface {
	Issue(userID string) (*auth.Token, error)
}

// AuthService handles registration, login and identity lookup.
type AuthService struct {
	users     UserStore
	hasher    PasswordHasher
	tokens    TokenIssuer
	metrics   metrics.Recorder
	dummyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, hasher PasswordHasher, tokens TokenIssuer, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	// Unknown emails are verified against this hash so both login failures
	// cost the same.
	dummyHash, _ := hasher.Hash("devconnect-unknown-user")
	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		metrics:   recorder,
		dummyHash: dummyHash,
	}
}

// RegisterInput defines input for registering a user.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates a credential and returns a token for the new identity.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*auth.Token, error) {
	var violations fieldErrors
	if strings.TrimSpace(input.Name) == "" {
		violations.add("name", "Name is required")
	}
	if !emailRegex.MatchString(input.Email) {
		violations.add("email", "Please include a valid email")
	}
	if n := utf8.RuneCountInString(input.Password); n < minPasswordLength || n > maxPasswordLength {
		violations.add("password", fmt.Sprintf("Please enter a password with %d to %d characters", minPasswordLength, maxPasswordLength))
	}
	if err := violations.err(); err != nil {
		return nil, err
	}

	// Uniqueness is checked up front and enforced again by the store.
	if _, err := s.users.GetUserByEmail(ctx, input.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repository.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           generateID(),
		Name:         strings.TrimSpace(input.Name),
		Email:        input.Email,
		PasswordHash: hash,
		Avatar:       AvatarURL(input.Email),
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return s.tokens.Issue(user.ID)
}

// LoginInput defines input for logging in.
type LoginInput struct {
	Email    string
	Password string
}

// Login checks a credential and returns a token. Unknown email and wrong
// password both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*auth.Token, error) {
	var violations fieldErrors
	if !emailRegex.MatchString(input.Email) {
		violations.add("email", "Please include a valid email")
	}
	if input.Password == "" {
		violations.add("password", "Password is required")
	}
	if err := violations.err(); err != nil {
		return nil, err
	}

	user, err := s.users.GetUserByEmail(ctx, input.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			return nil, fmt.Errorf("failed to look up user: %w", err)
		}
		_, _ = s.hasher.Verify(input.Password, s.dummyHash)
		s.metrics.IncLogin(false)
		return nil, ErrInvalidCredentials
	}

	match, err := s.hasher.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !match {
		s.metrics.IncLogin(false)
		return nil, ErrInvalidCredentials
	}

	s.metrics.IncLogin(true)

	return s.tokens.Issue(user.ID)
}

// Me returns the user behind an authenticated identity.
func (s *AuthService) Me(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}
