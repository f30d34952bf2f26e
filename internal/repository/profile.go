package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/devconnect/devconnect/internal/model"
)

// Common errors for profile repository operations.
var (
	ErrProfileNotFound = errors.New("profile not found")
	ErrProfileExists   = errors.New("profile already exists for user")
)

// profileColumns joins the owning user so name and avatar come back populated.
const profileColumns = `
	p.id, p.user_id, u.name, u.avatar,
	p.company, p.website, p.location, p.status, p.skills, p.bio, p.github_username,
	p.experience, p.education, p.social,
	p.version, p.created_at, p.updated_at
`

// CreateProfile inserts a new profile document.
func (r *Repository) CreateProfile(ctx context.Context, profile *model.Profile) error {
	query := `
		INSERT INTO profiles (
			id, user_id, company, website, location, status, skills, bio, github_username,
			experience, education, social, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.UserID,
		profile.Company,
		profile.Website,
		profile.Location,
		profile.Status,
		pq.Array(nonNil(profile.Skills)),
		profile.Bio,
		profile.GitHubUsername,
		nonNil(profile.Experience),
		nonNil(profile.Education),
		profile.Social,
		profile.CreatedAt,
		profile.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "profiles_user_id_key") {
			return ErrProfileExists
		}
		return fmt.Errorf("failed to create profile: %w", err)
	}

	profile.Version = 1
	return nil
}

// GetProfileByUserID retrieves the profile owned by a user.
func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*model.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		WHERE p.user_id = $1
	`

	profile, err := scanProfile(r.pool.QueryRow(ctx, query, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return profile, nil
}

// ListProfiles returns every profile, newest first.
func (r *Repository) ListProfiles(ctx context.Context) ([]*model.Profile, error) {
	query := `SELECT ` + profileColumns + `
		FROM profiles p
		JOIN users u ON u.id = p.user_id
		ORDER BY p.created_at DESC, p.id DESC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	defer rows.Close()

	profiles := []*model.Profile{}
	for rows.Next() {
		profile, err := scanProfile(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan profile: %w", err)
		}
		profiles = append(profiles, profile)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating profiles: %w", err)
	}

	return profiles, nil
}

// UpdateProfile rewrites the profile document if its version is unchanged
// since it was read. On success profile.Version is advanced.
func (r *Repository) UpdateProfile(ctx context.Context, profile *model.Profile) error {
	query := `
		UPDATE profiles SET
			company = $3,
			website = $4,
			location = $5,
			status = $6,
			skills = $7,
			bio = $8,
			github_username = $9,
			experience = $10,
			education = $11,
			social = $12,
			updated_at = $13,
			version = version + 1
		WHERE id = $1 AND version = $2
	`

	updatedAt := time.Now().UTC()
	result, err := r.pool.Exec(ctx, query,
		profile.ID,
		profile.Version,
		profile.Company,
		profile.Website,
		profile.Location,
		profile.Status,
		pq.Array(nonNil(profile.Skills)),
		profile.Bio,
		profile.GitHubUsername,
		nonNil(profile.Experience),
		nonNil(profile.Education),
		profile.Social,
		updatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update profile: %w", err)
	}

	if result.RowsAffected() == 0 {
		return r.missingOrConflict(ctx, `SELECT EXISTS (SELECT 1 FROM profiles WHERE id = $1)`, profile.ID, ErrProfileNotFound)
	}

	profile.Version++
	profile.UpdatedAt = updatedAt
	return nil
}

// missingOrConflict decides why a versioned update touched no rows.
func (r *Repository) missingOrConflict(ctx context.Context, existsQuery, id string, notFound error) error {
	var exists bool
	if err := r.pool.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		return fmt.Errorf("failed to check document: %w", err)
	}
	if !exists {
		return notFound
	}
	return ErrVersionConflict
}

func scanProfile(row pgx.Row) (*model.Profile, error) {
	var p model.Profile
	err := row.Scan(
		&p.ID,
		&p.UserID,
		&p.User.Name,
		&p.User.Avatar,
		&p.Company,
		&p.Website,
		&p.Location,
		&p.Status,
		&p.Skills,
		&p.Bio,
		&p.GitHubUsername,
		&p.Experience,
		&p.Education,
		&p.Social,
		&p.Version,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	p.User.ID = p.UserID
	p.Skills = nonNil(p.Skills)
	p.Experience = nonNil(p.Experience)
	p.Education = nonNil(p.Education)
	return &p, nil
}
