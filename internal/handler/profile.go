package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/handler/dto"
	"github.com/devconnect/devconnect/internal/service"
)

// ProfileHandler handles HTTP requests for profile operations.
type ProfileHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:    svc,
		logger: logger,
	}
}

// Me handles GET /api/profile/me.
func (h *ProfileHandler) Me(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.Me(r.Context(), auth.MustUserIDFromContext(r.Context()))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// List handles GET /api/profile.
func (h *ProfileHandler) List(w http.ResponseWriter, r *http.Request) {
	profiles, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profiles)
}

// GetByUser handles GET /api/profile/user/{user_id}.
func (h *ProfileHandler) GetByUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.GetByUser(r.Context(), chi.URLParam(r, "user_id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// Upsert handles POST /api/profile.
func (h *ProfileHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	var req dto.ProfileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	userID := auth.MustUserIDFromContext(r.Context())
	profile, err := h.svc.Upsert(r.Context(), userID, service.ProfileInput{
		Company:        req.Company,
		Website:        req.Website,
		Location:       req.Location,
		Status:         req.Status,
		Skills:         req.Skills,
		Bio:            req.Bio,
		GitHubUsername: req.GitHubUsername,
		Social:         req.Social(),
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("profile_saved", "user_id", userID, "profile_id", profile.ID)

	writeJSON(w, http.StatusOK, profile)
}

// Delete handles DELETE /api/profile. The user, profile and posts are removed.
func (h *ProfileHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())
	if err := h.svc.DeleteAccount(r.Context(), userID); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("user_deleted", "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "User deleted"})
}

// AddExperience handles PUT /api/profile/experience.
func (h *ProfileHandler) AddExperience(w http.ResponseWriter, r *http.Request) {
	var req dto.ExperienceRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.svc.AddExperience(r.Context(), auth.MustUserIDFromContext(r.Context()), service.ExperienceInput{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        req.From,
		To:          req.To,
		Current:     req.Current,
		Description: req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteExperience handles DELETE /api/profile/experience/{exp_id}.
func (h *ProfileHandler) DeleteExperience(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.DeleteExperience(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "exp_id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// AddEducation handles PUT /api/profile/education.
func (h *ProfileHandler) AddEducation(w http.ResponseWriter, r *http.Request) {
	var req dto.EducationRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	profile, err := h.svc.AddEducation(r.Context(), auth.MustUserIDFromContext(r.Context()), service.EducationInput{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         req.From,
		To:           req.To,
		Current:      req.Current,
		Description:  req.Description,
	})
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// DeleteEducation handles DELETE /api/profile/education/{edu_id}.
func (h *ProfileHandler) DeleteEducation(w http.ResponseWriter, r *http.Request) {
	profile, err := h.svc.DeleteEducation(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "edu_id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
