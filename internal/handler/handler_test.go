package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/handler/dto"
	"github.com/devconnect/devconnect/internal/service"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) dto.ErrorBody {
	t.Helper()
	var response dto.ErrorResponse
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return response.Error
}

func TestHandler_Hello(t *testing.T) {
	h := New("1.2.3")

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Hello(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if response["message"] != "Hello from DevConnect!" {
		t.Errorf("unexpected message: %s", response["message"])
	}

	if response["version"] != "1.2.3" {
		t.Errorf("unexpected version: %s", response["version"])
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New("test")

	req := httptest.NewRequest(http.MethodGet, "/nonexistent", nil)
	rec := httptest.NewRecorder()

	h.NotFound(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "NOT_FOUND" {
		t.Errorf("unexpected error code: %s", body.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New("test")

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	rec := httptest.NewRecorder()

	h.MethodNotAllowed(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "METHOD_NOT_ALLOWED" {
		t.Errorf("unexpected error code: %s", body.Code)
	}
}

func TestWriteServiceError(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{"validation", &service.ValidationError{Fields: []service.FieldError{{Field: "email", Message: "bad"}}}, http.StatusBadRequest, "VALIDATION_ERROR", "Request validation failed"},
		{"duplicate email", service.ErrDuplicateEmail, http.StatusBadRequest, "DUPLICATE_EMAIL", "User already exists"},
		{"invalid credentials", service.ErrInvalidCredentials, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid credentials"},
		{"already liked", service.ErrAlreadyLiked, http.StatusBadRequest, "ALREADY_LIKED", "Post already liked"},
		{"not liked", service.ErrNotLiked, http.StatusBadRequest, "NOT_LIKED", "Post has not yet been liked"},
		{"forbidden", auth.ErrForbidden, http.StatusForbidden, "FORBIDDEN", "User not authorized"},
		{"post not found", service.ErrPostNotFound, http.StatusNotFound, "NOT_FOUND", "Post not found"},
		{"comment not found", service.ErrCommentNotFound, http.StatusNotFound, "NOT_FOUND", "Comment not found"},
		{"conflict", service.ErrConflict, http.StatusConflict, "CONFLICT", "Resource was modified concurrently, retry the request"},
		{"internal", errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeServiceError(rec, discardLogger(), tt.err)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			body := decodeError(t, rec)
			if body.Code != tt.wantCode {
				t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
			}
			if body.Message != tt.wantMessage {
				t.Errorf("message = %q, want %q", body.Message, tt.wantMessage)
			}
		})
	}
}

func TestWriteServiceError_ValidationDetails(t *testing.T) {
	rec := httptest.NewRecorder()
	writeServiceError(rec, discardLogger(), &service.ValidationError{Fields: []service.FieldError{
		{Field: "name", Message: "Name is required"},
		{Field: "password", Message: "too short"},
	}})

	body := decodeError(t, rec)
	if len(body.Details) != 2 || body.Details[0].Field != "name" || body.Details[1].Field != "password" {
		t.Fatalf("unexpected details: %+v", body.Details)
	}
}
