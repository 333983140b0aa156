package auth

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jharris/campwise/config"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/models"
	"github.com/jharris/campwise/internal/render"
)

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	args := m.Called(ctx, username, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) Register(ctx context.Context, input RegisterInput, image io.Reader, filename string) (*models.User, error) {
	args := m.Called(ctx, input, image, filename)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) RequestPasswordReset(ctx context.Context, email, host string) (*models.User, error) {
	args := m.Called(ctx, email, host)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) ValidateResetToken(ctx context.Context, token string) (*models.User, error) {
	args := m.Called(ctx, token)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *MockAuthService) ResetPassword(ctx context.Context, token, password, confirm string) (*models.User, error) {
	args := m.Called(ctx, token, password, confirm)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type stubLoader struct{}

func (s *stubLoader) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, fmt.Errorf("user: %w", api.ErrNotFound)
}

func newTestHandler(t *testing.T, svc Service) (*HandlerImpl, *session.Manager) {
	t.Helper()
	cfg := &config.Config{}
	cfg.Session.Name = "test_session"
	cfg.Session.Secret = "test-secret"
	cfg.Session.MaxAge = 3600
	sessions := session.NewManager(cfg, &stubLoader{}, slog.Default())

	renderer, err := render.New(slog.Default())
	require.NoError(t, err)
	renderer.BaseData = sessions.BaseData

	return NewHandler(svc, sessions, renderer, slog.Default()), sessions
}

func postForm(target string, form url.Values) *http.Request {
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func TestLoginFailureRedirectsToLogin(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "bert", "wrong").Return(nil, api.ErrUnauthenticated)
	h, _ := newTestHandler(t, svc)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"username": {"bert"}, "password": {"wrong"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}

func TestLoginSuccessSignsInAndRedirects(t *testing.T) {
	user := models.NewUser("bert", "bert@example.com", "hash")
	svc := new(MockAuthService)
	svc.On("Authenticate", mock.Anything, "bert", "hunter2").Return(user, nil)
	h, _ := newTestHandler(t, svc)

	rec := httptest.NewRecorder()
	h.Login(rec, postForm("/login", url.Values{"username": {"bert"}, "password": {"hunter2"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))
	assert.NotEmpty(t, rec.Result().Cookies())
}

func TestForgotUnknownEmailRendersInlineError(t *testing.T) {
	svc := new(MockAuthService)
	svc.On("RequestPasswordReset", mock.Anything, "ghost@example.com", mock.AnythingOfType("string")).
		Return(nil, fmt.Errorf("user: %w", api.ErrNotFound))
	h, _ := newTestHandler(t, svc)

	rec := httptest.NewRecorder()
	h.Forgot(rec, postForm("/forgot", url.Values{"email": {"ghost@example.com"}}))

	// The page re-renders and reveals that the address is unknown.
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "No account with that email exists.")
}

func TestForgotKnownEmailRedirects(t *testing.T) {
	user := models.NewUser("bert", "bert@example.com", "hash")
	svc := new(MockAuthService)
	svc.On("RequestPasswordReset", mock.Anything, "bert@example.com", mock.AnythingOfType("string")).
		Return(user, nil)
	h, sessions := newTestHandler(t, svc)

	rec := httptest.NewRecorder()
	h.Forgot(rec, postForm("/forgot", url.Values{"email": {"bert@example.com"}}))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/forgot", rec.Header().Get("Location"))

	flashReq := httptest.NewRequest(http.MethodGet, "/forgot", nil)
	for _, c := range rec.Result().Cookies() {
		flashReq.AddCookie(c)
	}
	_, successes := sessions.PopFlashes(httptest.NewRecorder(), flashReq)
	assert.Contains(t, successes, "An email has been sent to bert@example.com with further instructions.")
}

func TestLogoutClearsSessionAndFlashes(t *testing.T) {
	h, sessions := newTestHandler(t, new(MockAuthService))

	rec := httptest.NewRecorder()
	h.Logout(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))

	flashReq := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
	// Logout saves the session twice (sign-out, then flash), emitting two
	// Set-Cookie headers for the same name; browsers apply last-wins.
	last := map[string]*http.Cookie{}
	for _, c := range rec.Result().Cookies() {
		last[c.Name] = c
	}
	for _, c := range last {
		flashReq.AddCookie(c)
	}
	_, successes := sessions.PopFlashes(httptest.NewRecorder(), flashReq)
	assert.Contains(t, successes, "Successfully logged out.")
}

func TestRequireLogin(t *testing.T) {
	svc := new(MockAuthService)
	_, sessions := newTestHandler(t, svc)

	var reached bool
	guard := RequireLogin(sessions)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
	}))

	rec := httptest.NewRecorder()
	guard.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/campgrounds/new", nil))

	assert.False(t, reached)
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))
}
