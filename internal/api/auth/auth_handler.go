package auth

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/render"
)

// ConflictError marks a duplicate username or email on registration.
type ConflictError struct {
	Field string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("A user with the given %s is already registered.", e.Field)
}

func (e *ConflictError) Is(target error) bool { return target == api.ErrConflict }

const maxUploadBytes = 10 << 20

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Landing(w http.ResponseWriter, r *http.Request)
	RegisterForm(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	LoginForm(w http.ResponseWriter, r *http.Request)
	Login(w http.ResponseWriter, r *http.Request)
	Logout(w http.ResponseWriter, r *http.Request)
	ForgotForm(w http.ResponseWriter, r *http.Request)
	Forgot(w http.ResponseWriter, r *http.Request)
	ResetForm(w http.ResponseWriter, r *http.Request)
	Reset(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger   *slog.Logger
	service  Service
	sessions *session.Manager
	renderer *render.Renderer
}

func NewHandler(service Service, sessions *session.Manager, renderer *render.Renderer, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:   logger,
		service:  service,
		sessions: sessions,
		renderer: renderer,
	}
}

func (h *HandlerImpl) Landing(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "landing", nil)
}

func (h *HandlerImpl) RegisterForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "register", nil)
}

func (h *HandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Register"))

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		h.renderer.HTML(w, r, "register", map[string]any{"Error": []string{"Invalid form submission."}})
		return
	}
	file, header, err := r.FormFile("image")
	if err != nil {
		h.renderer.HTML(w, r, "register", map[string]any{"Error": []string{"An image is required."}})
		return
	}
	defer file.Close()

	input := RegisterInput{
		Username:  r.FormValue("username"),
		Password:  r.FormValue("password"),
		Email:     r.FormValue("email"),
		FirstName: r.FormValue("firstName"),
		LastName:  r.FormValue("lastName"),
		Bio:       r.FormValue("bio"),
		AdminCode: r.FormValue("adminCode"),
	}

	user, err := h.service.Register(r.Context(), input, file, header.Filename)
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) || errors.Is(err, api.ErrConflict) {
			h.renderer.HTML(w, r, "register", map[string]any{"Error": []string{err.Error()}})
			return
		}
		l.ErrorContext(r.Context(), "Registration failed", slog.Any("error", err))
		h.renderer.HTML(w, r, "register", map[string]any{"Error": []string{"Something went wrong. Please try again."}})
		return
	}

	if err := h.sessions.SignIn(w, r, user); err != nil {
		l.ErrorContext(r.Context(), "Failed to establish session", slog.Any("error", err))
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Welcome to CampWise, "+user.Username+"!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *HandlerImpl) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "login", nil)
}

func (h *HandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Login"))

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	user, err := h.service.Authenticate(r.Context(), r.FormValue("username"), r.FormValue("password"))
	if err != nil {
		if !errors.Is(err, api.ErrUnauthenticated) {
			l.ErrorContext(r.Context(), "Login failed", slog.Any("error", err))
		}
		h.sessions.Flash(w, r, session.FlashError, "Invalid username or password.")
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return
	}

	if err := h.sessions.SignIn(w, r, user); err != nil {
		l.ErrorContext(r.Context(), "Failed to establish session", slog.Any("error", err))
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Welcome back, "+user.Username+"!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *HandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.SignOut(w, r); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to clear session", slog.Any("error", err))
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Successfully logged out.")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

func (h *HandlerImpl) ForgotForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "forgot", nil)
}

func (h *HandlerImpl) Forgot(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Forgot"))

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}
	email := r.FormValue("email")

	_, err := h.service.RequestPasswordReset(r.Context(), email, r.Host)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			h.renderer.HTML(w, r, "forgot", map[string]any{"Error": []string{"No account with that email exists."}})
			return
		}
		l.ErrorContext(r.Context(), "Password reset request failed", slog.Any("error", err))
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, fmt.Sprintf("An email has been sent to %s with further instructions.", email))
	http.Redirect(w, r, "/forgot", http.StatusSeeOther)
}

func (h *HandlerImpl) ResetForm(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if _, err := h.service.ValidateResetToken(r.Context(), token); err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Password reset token is invalid or has expired.")
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}
	h.renderer.HTML(w, r, "reset", map[string]any{"Token": token})
}

func (h *HandlerImpl) Reset(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Reset"))
	token := chi.URLParam(r, "token")

	if err := r.ParseForm(); err != nil {
		http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		return
	}

	user, err := h.service.ResetPassword(r.Context(), token, r.FormValue("password"), r.FormValue("confirm"))
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			h.sessions.Flash(w, r, session.FlashError, "Password reset token is invalid or has expired.")
			http.Redirect(w, r, "/forgot", http.StatusSeeOther)
		case errors.Is(err, ErrPasswordMismatch):
			h.sessions.Flash(w, r, session.FlashError, "Passwords do not match.")
			api.RedirectBack(w, r)
		default:
			l.ErrorContext(r.Context(), "Password reset failed", slog.Any("error", err))
			h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
			api.RedirectBack(w, r)
		}
		return
	}

	h.sessions.Invalidate(user.ID)
	if err := h.sessions.SignIn(w, r, user); err != nil {
		l.ErrorContext(r.Context(), "Failed to establish session", slog.Any("error", err))
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Success! Your password has been changed.")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}
