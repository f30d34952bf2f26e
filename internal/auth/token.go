package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// DefaultTokenTTL is how long an issued token stays valid.
const DefaultTokenTTL = 100 * time.Hour

// Token verification errors. Every rejection wraps ErrInvalidToken.
var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrMalformedToken   = fmt.Errorf("%w: malformed", ErrInvalidToken)
	ErrInvalidSignature = fmt.Errorf("%w: signature mismatch", ErrInvalidToken)
	ErrTokenExpired     = fmt.Errorf("%w: expired", ErrInvalidToken)
)

var signingMethod = jwt.SigningMethodHS256

// Claims is the signed payload. The identity sits under "user" so tokens
// keep the {"user":{"id":...}} shape clients already decode.
type Claims struct {
	User ClaimsUser `json:"user"`
	jwt.RegisteredClaims
}

// ClaimsUser identifies the token holder.
type ClaimsUser struct {
	ID string `json:"id"`
}

// Token is an issued bearer token.
type Token struct {
	Value     string
	UserID    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenService issues and verifies stateless HS256 tokens.
// It holds no mutable state after construction and is safe for concurrent use.
type TokenService struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

// NewTokenService creates a TokenService. The secret is copied.
func NewTokenService(secret []byte, ttl time.Duration) *TokenService {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return newTokenService(append([]byte(nil), secret...), ttl, time.Now)
}

func newTokenService(secret []byte, ttl time.Duration, now func() time.Time) *TokenService {
	return &TokenService{
		secret: secret,
		ttl:    ttl,
		now:    now,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{signingMethod.Alg()}),
			jwt.WithExpirationRequired(),
			jwt.WithTimeFunc(now),
		),
	}
}

// WithClock returns a copy of the service that reads time from now.
func (s *TokenService) WithClock(now func() time.Time) *TokenService {
	return newTokenService(s.secret, s.ttl, now)
}

// TTL returns the validity period of issued tokens.
func (s *TokenService) TTL() time.Duration {
	return s.ttl
}

// Issue signs a token for userID that expires after the configured TTL.
func (s *TokenService) Issue(userID string) (*Token, error) {
	if userID == "" {
		return nil, errors.New("issue token: empty user id")
	}

	issuedAt := s.now().Truncate(time.Second)
	expiresAt := issuedAt.Add(s.ttl)

	claims := Claims{
		User: ClaimsUser{ID: userID},
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(signingMethod, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	return &Token{
		Value:     signed,
		UserID:    userID,
		IssuedAt:  issuedAt,
		ExpiresAt: expiresAt,
	}, nil
}

// Verify checks the signature and expiry of tokenString and returns the
// embedded user ID. It never consults storage.
//
// The signature is checked over the raw header and payload before anything
// is decoded, so any change to the signed bytes yields ErrInvalidSignature.
func (s *TokenService) Verify(tokenString string) (string, error) {
	parts := strings.Split(tokenString, ".")
	if len(parts) != 3 {
		return "", ErrMalformedToken
	}

	sig, err := s.parser.DecodeSegment(parts[2])
	if err != nil {
		return "", ErrInvalidSignature
	}
	if err := signingMethod.Verify(parts[0]+"."+parts[1], sig, s.secret); err != nil {
		return "", ErrInvalidSignature
	}

	claims := &Claims{}
	if _, err := s.parser.ParseWithClaims(tokenString, claims, s.keyFunc); err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return "", ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid):
			return "", ErrInvalidSignature
		default:
			return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
		}
	}

	if claims.User.ID == "" {
		return "", ErrMalformedToken
	}

	return claims.User.ID, nil
}

func (s *TokenService) keyFunc(*jwt.Token) (any, error) {
	return s.secret, nil
}
