package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/devconnect/devconnect/internal/metrics"
	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/repository"
)

// Accepted layouts for experience and education dates.
var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ProfileService handles profile documents and their embedded entries.
type ProfileService struct {
	profiles ProfileStore
	users    UserStore
	metrics  metrics.Recorder
}

// NewProfileService creates a new ProfileService.
func NewProfileService(profiles ProfileStore, users UserStore, recorder metrics.Recorder) *ProfileService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &ProfileService{
		profiles: profiles,
		users:    users,
		metrics:  recorder,
	}
}

// ProfileInput defines the editable fields of a profile.
// Skills is a comma-separated list.
type ProfileInput struct {
	Company        string
	Website        string
	Location       string
	Status         string
	Skills         string
	Bio            string
	GitHubUsername string
	Social         model.Social
}

// ExperienceInput defines a new experience entry.
type ExperienceInput struct {
	Title       string
	Company     string
	Location    string
	From        string
	To          string
	Current     bool
	Description string
}

// EducationInput defines a new education entry.
type EducationInput struct {
	School       string
	Degree       string
	FieldOfStudy string
	From         string
	To           string
	Current      bool
	Description  string
}

// Me returns the profile of the acting user.
func (s *ProfileService) Me(ctx context.Context, userID string) (*model.Profile, error) {
	return s.GetByUser(ctx, userID)
}

// GetByUser returns the profile owned by userID.
func (s *ProfileService) GetByUser(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.find(ctx, userID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// List returns all profiles.
func (s *ProfileService) List(ctx context.Context) ([]*model.Profile, error) {
	profiles, err := s.profiles.ListProfiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list profiles: %w", err)
	}
	return profiles, nil
}

// Upsert creates the acting user's profile or updates the fields that were
// provided. Social links are replaced as a whole.
func (s *ProfileService) Upsert(ctx context.Context, userID string, input ProfileInput) (*model.Profile, error) {
	var violations fieldErrors
	if strings.TrimSpace(input.Status) == "" {
		violations.add("status", "Status is required")
	}
	skills := splitSkills(input.Skills)
	if len(skills) == 0 {
		violations.add("skills", "Skills is required")
	}
	if err := violations.err(); err != nil {
		return nil, err
	}

	var result *model.Profile
	err := retryOnConflict(ctx, s.metrics, func() error {
		profile, err := s.find(ctx, userID)
		if err != nil {
			return err
		}

		if profile == nil {
			now := time.Now().UTC()
			profile = &model.Profile{
				ID:         generateID(),
				UserID:     userID,
				Experience: []model.Experience{},
				Education:  []model.Education{},
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			applyProfileInput(profile, input, skills)
			if err := s.profiles.CreateProfile(ctx, profile); err != nil {
				if errors.Is(err, repository.ErrProfileExists) {
					// Lost a create race; retry as an update.
					return repository.ErrVersionConflict
				}
				return fmt.Errorf("failed to create profile: %w", err)
			}
		} else {
			if err := checkOwner(profile, userID, ErrProfileNotFound); err != nil {
				return err
			}
			applyProfileInput(profile, input, skills)
			if err := s.update(ctx, profile); err != nil {
				return err
			}
		}

		result = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncProfileWritten()

	// Re-read to populate the owner summary.
	return s.GetByUser(ctx, result.UserID)
}

// DeleteAccount removes the acting user's posts, profile and credential.
func (s *ProfileService) DeleteAccount(ctx context.Context, userID string) error {
	if err := s.users.DeleteUser(ctx, userID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// AddExperience prepends an experience entry to the acting user's profile.
func (s *ProfileService) AddExperience(ctx context.Context, userID string, input ExperienceInput) (*model.Profile, error) {
	var violations fieldErrors
	if strings.TrimSpace(input.Title) == "" {
		violations.add("title", "Title is required")
	}
	if strings.TrimSpace(input.Company) == "" {
		violations.add("company", "Company is required")
	}
	from, to := parseRange(&violations, input.From, input.To)
	if err := violations.err(); err != nil {
		return nil, err
	}

	entry := model.Experience{
		ID:          generateID(),
		Title:       input.Title,
		Company:     input.Company,
		Location:    input.Location,
		From:        from,
		To:          to,
		Current:     input.Current,
		Description: input.Description,
	}

	return s.mutate(ctx, userID, func(p *model.Profile) error {
		p.Experience = append([]model.Experience{entry}, p.Experience...)
		return nil
	})
}

// DeleteExperience removes the experience entry with the given ID.
func (s *ProfileService) DeleteExperience(ctx context.Context, userID, experienceID string) (*model.Profile, error) {
	return s.mutate(ctx, userID, func(p *model.Profile) error {
		idx := p.ExperienceIndex(experienceID)
		if idx < 0 {
			return ErrExperienceNotFound
		}
		p.Experience = append(p.Experience[:idx:idx], p.Experience[idx+1:]...)
		return nil
	})
}

// AddEducation prepends an education entry to the acting user's profile.
func (s *ProfileService) AddEducation(ctx context.Context, userID string, input EducationInput) (*model.Profile, error) {
	var violations fieldErrors
	if strings.TrimSpace(input.School) == "" {
		violations.add("school", "School is required")
	}
	if strings.TrimSpace(input.Degree) == "" {
		violations.add("degree", "Degree is required")
	}
	if strings.TrimSpace(input.FieldOfStudy) == "" {
		violations.add("fieldofstudy", "Field of study is required")
	}
	from, to := parseRange(&violations, input.From, input.To)
	if err := violations.err(); err != nil {
		return nil, err
	}

	entry := model.Education{
		ID:           generateID(),
		School:       input.School,
		Degree:       input.Degree,
		FieldOfStudy: input.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      input.Current,
		Description:  input.Description,
	}

	return s.mutate(ctx, userID, func(p *model.Profile) error {
		p.Education = append([]model.Education{entry}, p.Education...)
		return nil
	})
}

// DeleteEducation removes the education entry with the given ID.
func (s *ProfileService) DeleteEducation(ctx context.Context, userID, educationID string) (*model.Profile, error) {
	return s.mutate(ctx, userID, func(p *model.Profile) error {
		idx := p.EducationIndex(educationID)
		if idx < 0 {
			return ErrEducationNotFound
		}
		p.Education = append(p.Education[:idx:idx], p.Education[idx+1:]...)
		return nil
	})
}

// mutate runs a guarded read-modify-write of the acting user's profile.
func (s *ProfileService) mutate(ctx context.Context, userID string, apply func(p *model.Profile) error) (*model.Profile, error) {
	var result *model.Profile
	err := retryOnConflict(ctx, s.metrics, func() error {
		profile, err := s.find(ctx, userID)
		if err != nil {
			return err
		}
		if err := checkOwner(profile, userID, ErrProfileNotFound); err != nil {
			return err
		}
		if err := apply(profile); err != nil {
			return err
		}
		if err := s.update(ctx, profile); err != nil {
			return err
		}
		result = profile
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.IncProfileWritten()
	return result, nil
}

// find returns the profile of userID, or nil when there is none.
func (s *ProfileService) find(ctx context.Context, userID string) (*model.Profile, error) {
	profile, err := s.profiles.GetProfileByUserID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrProfileNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return profile, nil
}

func (s *ProfileService) update(ctx context.Context, profile *model.Profile) error {
	err := s.profiles.UpdateProfile(ctx, profile)
	switch {
	case err == nil, errors.Is(err, repository.ErrVersionConflict):
		return err
	case errors.Is(err, repository.ErrProfileNotFound):
		return ErrProfileNotFound
	default:
		return fmt.Errorf("failed to update profile: %w", err)
	}
}

func applyProfileInput(p *model.Profile, input ProfileInput, skills []string) {
	setIfPresent(&p.Company, input.Company)
	setIfPresent(&p.Website, input.Website)
	setIfPresent(&p.Location, input.Location)
	setIfPresent(&p.Bio, input.Bio)
	setIfPresent(&p.GitHubUsername, input.GitHubUsername)
	p.Status = strings.TrimSpace(input.Status)
	p.Skills = skills
	p.Social = input.Social
}

func setIfPresent(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}

// splitSkills turns "go, sql ,,docker" into [go sql docker].
func splitSkills(raw string) []string {
	skills := []string{}
	for _, s := range strings.Split(raw, ",") {
		if s = strings.TrimSpace(s); s != "" {
			skills = append(skills, s)
		}
	}
	return skills
}

// parseRange parses a required from date and an optional to date.
func parseRange(violations *fieldErrors, fromRaw, toRaw string) (time.Time, *time.Time) {
	var from time.Time
	if strings.TrimSpace(fromRaw) == "" {
		violations.add("from", "From date is required")
	} else if t, ok := parseDate(fromRaw); ok {
		from = t
	} else {
		violations.add("from", "From date must be a date")
	}

	if strings.TrimSpace(toRaw) == "" {
		return from, nil
	}
	to, ok := parseDate(toRaw)
	if !ok {
		violations.add("to", "To date must be a date")
		return from, nil
	}
	return from, &to
}

func parseDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}
