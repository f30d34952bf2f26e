package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/devconnect/devconnect/internal/auth"
	"github.com/devconnect/devconnect/internal/handler/dto"
	"github.com/devconnect/devconnect/internal/model"
	"github.com/devconnect/devconnect/internal/service"
	"github.com/devconnect/devconnect/internal/service/servicetest"
)

// testUserHeader carries the acting identity in these tests in place of
// the token gate.
const testUserHeader = "X-Test-User"

type testAPI struct {
	router http.Handler
	tokens *auth.TokenService
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := servicetest.NewMemStore()
	tokens := auth.NewTokenService([]byte("handler-test-secret-handler-test"), time.Hour)
	logger := discardLogger()

	authH := NewAuthHandler(service.NewAuthService(store, auth.NewBcryptHasher(bcrypt.MinCost), tokens, nil), logger)
	profileH := NewProfileHandler(service.NewProfileService(store, store, nil), logger)
	postH := NewPostHandler(service.NewPostService(store, store, nil), logger)

	r := chi.NewRouter()
	r.Post("/api/user/register", authH.Register)
	r.Post("/api/auth", authH.Login)
	r.Get("/api/profile", profileH.List)
	r.Get("/api/profile/user/{user_id}", profileH.GetByUser)
	r.Get("/api/post", postH.List)
	r.Get("/api/post/{id}", postH.Get)

	r.Group(func(r chi.Router) {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := auth.ContextWithUserID(req.Context(), req.Header.Get(testUserHeader))
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
		r.Get("/api/auth", authH.Me)
		r.Get("/api/profile/me", profileH.Me)
		r.Post("/api/profile", profileH.Upsert)
		r.Delete("/api/profile", profileH.Delete)
		r.Put("/api/profile/experience", profileH.AddExperience)
		r.Delete("/api/profile/experience/{exp_id}", profileH.DeleteExperience)
		r.Put("/api/profile/education", profileH.AddEducation)
		r.Delete("/api/profile/education/{edu_id}", profileH.DeleteEducation)
		r.Post("/api/post", postH.Create)
		r.Patch("/api/post/{id}", postH.Update)
		r.Delete("/api/post/{id}", postH.Delete)
		r.Put("/api/post/like/{id}", postH.Like)
		r.Put("/api/post/unlike/{id}", postH.Unlike)
		r.Post("/api/post/comment/{id}", postH.Comment)
		r.Delete("/api/post/comment/{id}/{comment_id}", postH.DeleteComment)
	})

	return &testAPI{router: r, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, userID string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set(testUserHeader, userID)
	}

	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(t *testing.T, name string) string {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/user/register", "", dto.RegisterRequest{
		Name:     name,
		Email:    name + "@x.com",
		Password: "secret1",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("register %s: status %d body %s", name, rec.Code, rec.Body.String())
	}

	var resp dto.TokenResponse
	decodeBody(t, rec, &resp)
	userID, err := a.tokens.Verify(resp.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	return userID
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.NewDecoder(rec.Body).Decode(dst); err != nil {
		t.Fatalf("decode body: %v (status %d)", err, rec.Code)
	}
}

func TestAPI_RegisterLoginMe(t *testing.T) {
	api := newTestAPI(t)
	userID := api.register(t, "alice")

	rec := api.do(t, http.MethodPost, "/api/auth", "", dto.LoginRequest{Email: "alice@x.com", Password: "secret1"})
	if rec.Code != http.StatusOK {
		t.Fatalf("login: expected 200, got %d", rec.Code)
	}
	var tok dto.TokenResponse
	decodeBody(t, rec, &tok)
	if tok.Token == "" {
		t.Fatal("login should return a token")
	}

	rec = api.do(t, http.MethodGet, "/api/auth", userID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("me: expected 200, got %d", rec.Code)
	}
	var me map[string]any
	decodeBody(t, rec, &me)
	if me["email"] != "alice@x.com" {
		t.Errorf("unexpected email: %v", me["email"])
	}
	if _, ok := me["password_hash"]; ok {
		t.Error("password hash must never be serialized")
	}
	if _, ok := me["PasswordHash"]; ok {
		t.Error("password hash must never be serialized")
	}
}

func TestAPI_LoginFailuresLookIdentical(t *testing.T) {
	api := newTestAPI(t)
	api.register(t, "alice")

	wrong := api.do(t, http.MethodPost, "/api/auth", "", dto.LoginRequest{Email: "alice@x.com", Password: "nope123"})
	unknown := api.do(t, http.MethodPost, "/api/auth", "", dto.LoginRequest{Email: "bob@x.com", Password: "nope123"})

	if wrong.Code != http.StatusBadRequest || unknown.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for both, got %d and %d", wrong.Code, unknown.Code)
	}
	if wrong.Body.String() != unknown.Body.String() {
		t.Errorf("responses differ:\n%s\n%s", wrong.Body.String(), unknown.Body.String())
	}
}

func TestAPI_RegisterRejectsBadInput(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodPost, "/api/user/register", bytes.NewBufferString("{not json"))
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid JSON, got %d", rec.Code)
	}
	if body := decodeError(t, rec); body.Code != "INVALID_JSON" {
		t.Errorf("unexpected code %s", body.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/user/register", "", dto.RegisterRequest{Email: "x"})
	body := decodeError(t, rec)
	if body.Code != "VALIDATION_ERROR" || len(body.Details) != 3 {
		t.Errorf("expected three field errors, got %+v", body)
	}

	api.register(t, "alice")
	rec = api.do(t, http.MethodPost, "/api/user/register", "", dto.RegisterRequest{Name: "a", Email: "alice@x.com", Password: "secret1"})
	if body := decodeError(t, rec); body.Code != "DUPLICATE_EMAIL" {
		t.Errorf("expected DUPLICATE_EMAIL, got %s", body.Code)
	}
}

func TestAPI_PostOwnershipScenario(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	rec := api.do(t, http.MethodPost, "/api/post", alice, dto.TextRequest{Text: "hello"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create post: expected 201, got %d", rec.Code)
	}
	var post model.Post
	decodeBody(t, rec, &post)

	rec = api.do(t, http.MethodDelete, "/api/post/"+post.ID, bob, nil)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("delete by other user: expected 403, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodDelete, "/api/post/"+post.ID, alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete by owner: expected 200, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/post/"+post.ID, "", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("read after delete: expected 404, got %d", rec.Code)
	}
}

func TestAPI_LikesAndComments(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")
	bob := api.register(t, "bob")

	rec := api.do(t, http.MethodPost, "/api/post", alice, dto.TextRequest{Text: "hello"})
	var post model.Post
	decodeBody(t, rec, &post)

	rec = api.do(t, http.MethodPut, "/api/post/like/"+post.ID, bob, nil)
	var likes []model.Like
	decodeBody(t, rec, &likes)
	if len(likes) != 1 || likes[0].UserID != bob {
		t.Fatalf("unexpected likes: %+v", likes)
	}

	rec = api.do(t, http.MethodPut, "/api/post/like/"+post.ID, bob, nil)
	if body := decodeError(t, rec); body.Code != "ALREADY_LIKED" {
		t.Errorf("expected ALREADY_LIKED, got %s", body.Code)
	}

	rec = api.do(t, http.MethodPut, "/api/post/unlike/"+post.ID, alice, nil)
	if body := decodeError(t, rec); body.Code != "NOT_LIKED" {
		t.Errorf("expected NOT_LIKED, got %s", body.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/post/comment/"+post.ID, bob, dto.TextRequest{Text: "nice"})
	var comments []model.Comment
	decodeBody(t, rec, &comments)
	if len(comments) != 1 {
		t.Fatalf("expected one comment, got %d", len(comments))
	}

	rec = api.do(t, http.MethodDelete, "/api/post/comment/"+post.ID+"/"+comments[0].ID, alice, nil)
	if rec.Code != http.StatusForbidden {
		t.Errorf("post owner deleting another user's comment: expected 403, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodDelete, "/api/post/comment/"+post.ID+"/missing", bob, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing comment: expected 404, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodDelete, "/api/post/comment/"+post.ID+"/"+comments[0].ID, bob, nil)
	decodeBody(t, rec, &comments)
	if len(comments) != 0 {
		t.Errorf("expected comment removed, got %+v", comments)
	}
}

func TestAPI_ProfileLifecycle(t *testing.T) {
	api := newTestAPI(t)
	alice := api.register(t, "alice")

	rec := api.do(t, http.MethodGet, "/api/profile/me", alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 before profile exists, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodPost, "/api/profile", alice, dto.ProfileRequest{Status: "Developer", Skills: "go, sql", Twitter: "https://twitter.com/alice"})
	if rec.Code != http.StatusOK {
		t.Fatalf("upsert: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var profile model.Profile
	decodeBody(t, rec, &profile)
	if len(profile.Skills) != 2 || profile.Social.Twitter == "" || profile.User.Name != "alice" {
		t.Errorf("unexpected profile: %+v", profile)
	}

	rec = api.do(t, http.MethodPut, "/api/profile/experience", alice, dto.ExperienceRequest{Title: "Dev", Company: "Acme", From: "2020-01-01"})
	decodeBody(t, rec, &profile)
	if len(profile.Experience) != 1 {
		t.Fatalf("expected one experience entry, got %d", len(profile.Experience))
	}

	rec = api.do(t, http.MethodDelete, "/api/profile/experience/"+profile.Experience[0].ID, alice, nil)
	decodeBody(t, rec, &profile)
	if len(profile.Experience) != 0 {
		t.Errorf("expected first experience entry removed, got %d", len(profile.Experience))
	}

	rec = api.do(t, http.MethodPut, "/api/profile/education", alice, dto.EducationRequest{School: "MIT", Degree: "BSc", FieldOfStudy: "CS", From: "2010-09-01"})
	decodeBody(t, rec, &profile)
	if len(profile.Education) != 1 {
		t.Fatalf("expected one education entry, got %d", len(profile.Education))
	}

	rec = api.do(t, http.MethodDelete, "/api/profile/education/missing", alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("missing education: expected 404, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/profile/user/"+alice, "", nil)
	if rec.Code != http.StatusOK {
		t.Errorf("public profile read: expected 200, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/profile", "", nil)
	var all []model.Profile
	decodeBody(t, rec, &all)
	if len(all) != 1 {
		t.Errorf("expected one profile listed, got %d", len(all))
	}

	rec = api.do(t, http.MethodDelete, "/api/profile", alice, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("delete account: expected 200, got %d", rec.Code)
	}

	rec = api.do(t, http.MethodGet, "/api/auth", alice, nil)
	if rec.Code != http.StatusNotFound {
		t.Errorf("me after delete: expected 404, got %d", rec.Code)
	}
}
