package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/handler/dto"
	"github.com/devconnect/devconnect/internal/service"
)

// PostHandler handles HTTP requests for posts, likes and comments.
type PostHandler struct {
	svc    *service.PostService
	logger *slog.Logger
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(svc *service.PostService, logger *slog.Logger) *PostHandler {
	return &PostHandler{
		svc:    svc,
		logger: logger,
	}
}

// Create handles POST /api/post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.svc.Create(r.Context(), auth.MustUserIDFromContext(r.Context()), req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("post_created", "post_id", post.ID, "user_id", post.UserID)

	writeJSON(w, http.StatusCreated, post)
}

// List handles GET /api/post.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.svc.List(r.Context())
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get handles GET /api/post/{id}.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Update handles PATCH /api/post/{id}.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req dto.TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	post, err := h.svc.Update(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("post_updated", "post_id", post.ID)

	writeJSON(w, http.StatusOK, post)
}

// Delete handles DELETE /api/post/{id}.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	userID := auth.MustUserIDFromContext(r.Context())

	if err := h.svc.Delete(r.Context(), userID, id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	h.logger.Info("post_deleted", "post_id", id, "user_id", userID)

	writeJSON(w, http.StatusOK, dto.MessageResponse{Message: "Post removed"})
}

// Like handles PUT /api/post/like/{id}.
func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	likes, err := h.svc.Like(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// Unlike handles PUT /api/post/unlike/{id}.
func (h *PostHandler) Unlike(w http.ResponseWriter, r *http.Request) {
	likes, err := h.svc.Unlike(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, likes)
}

// Comment handles POST /api/post/comment/{id}.
func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req dto.TextRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	comments, err := h.svc.Comment(r.Context(), auth.MustUserIDFromContext(r.Context()), chi.URLParam(r, "id"), req.Text)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// DeleteComment handles DELETE /api/post/comment/{id}/{comment_id}.
func (h *PostHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	comments, err := h.svc.DeleteComment(r.Context(), auth.MustUserIDFromContext(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "comment_id"))
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}
