// Package session wraps the cookie session store. It resolves the current
// user once per request and carries the one-shot flash messages that
// survive redirects.
package session

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	gocache "github.com/patrickmn/go-cache"

	"github.com/jharris/campwise/config"
	"github.com/jharris/campwise/internal/models"
)

type contextKey string

const currentUserKey contextKey = "currentUser"

const (
	userIDValue  = "userID"
	FlashError   = "error"
	FlashSuccess = "success"
)

// UserLoader resolves a session's stored user id to a full user record.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// Manager owns the cookie store plus a short-lived cache so the per-request
// user lookup does not hit the database every time.
type Manager struct {
	logger *slog.Logger
	store  *sessions.CookieStore
	name   string
	users  UserLoader
	cache  *gocache.Cache
}

func NewManager(cfg *config.Config, users UserLoader, logger *slog.Logger) *Manager {
	store := sessions.NewCookieStore([]byte(cfg.Session.Secret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   cfg.Session.MaxAge,
		HttpOnly: true,
	}
	return &Manager{
		logger: logger,
		store:  store,
		name:   cfg.Session.Name,
		users:  users,
		cache:  gocache.New(5*time.Minute, 10*time.Minute),
	}
}

func (m *Manager) session(r *http.Request) *sessions.Session {
	// Get never returns a nil session; a decode error just means a fresh one.
	sess, err := m.store.Get(r, m.name)
	if err != nil {
		m.logger.DebugContext(r.Context(), "Session decode failed, starting fresh", slog.Any("error", err))
	}
	return sess
}

// LoadUser is middleware that attaches the authenticated user (if any) to
// the request context before any handler runs.
func (m *Manager) LoadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess := m.session(r)
		raw, ok := sess.Values[userIDValue].(string)
		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			next.ServeHTTP(w, r)
			return
		}

		var user *models.User
		if cached, found := m.cache.Get(raw); found {
			user = cached.(*models.User)
		} else {
			user, err = m.users.GetUserByID(r.Context(), id)
			if err != nil {
				m.logger.WarnContext(r.Context(), "Session user lookup failed", slog.String("user_id", raw), slog.Any("error", err))
				next.ServeHTTP(w, r)
				return
			}
			m.cache.Set(raw, user, gocache.DefaultExpiration)
		}

		ctx := context.WithValue(r.Context(), currentUserKey, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// UserFromContext returns the authenticated user attached by LoadUser, or
// nil for anonymous requests.
func UserFromContext(ctx context.Context) *models.User {
	user, _ := ctx.Value(currentUserKey).(*models.User)
	return user
}

// SignIn establishes a session for user.
func (m *Manager) SignIn(w http.ResponseWriter, r *http.Request, user *models.User) error {
	sess := m.session(r)
	sess.Values[userIDValue] = user.ID.String()
	m.cache.Set(user.ID.String(), user, gocache.DefaultExpiration)
	return sess.Save(r, w)
}

// SignOut clears the identity but keeps the session alive so a farewell
// flash still works.
func (m *Manager) SignOut(w http.ResponseWriter, r *http.Request) error {
	sess := m.session(r)
	if raw, ok := sess.Values[userIDValue].(string); ok {
		m.cache.Delete(raw)
	}
	delete(sess.Values, userIDValue)
	return sess.Save(r, w)
}

// Invalidate drops a user's cache entry so the next request re-reads the
// record, e.g. after a password reset.
func (m *Manager) Invalidate(id uuid.UUID) {
	m.cache.Delete(id.String())
}

// Flash queues a one-shot message of the given kind for the next render.
func (m *Manager) Flash(w http.ResponseWriter, r *http.Request, kind, message string) {
	sess := m.session(r)
	sess.AddFlash(message, kind)
	if err := sess.Save(r, w); err != nil {
		m.logger.WarnContext(r.Context(), "Failed to save flash", slog.Any("error", err))
	}
}

// PopFlashes consumes and returns the queued error and success messages.
func (m *Manager) PopFlashes(w http.ResponseWriter, r *http.Request) (errs, successes []string) {
	sess := m.session(r)
	for _, f := range sess.Flashes(FlashError) {
		if s, ok := f.(string); ok {
			errs = append(errs, s)
		}
	}
	for _, f := range sess.Flashes(FlashSuccess) {
		if s, ok := f.(string); ok {
			successes = append(successes, s)
		}
	}
	if err := sess.Save(r, w); err != nil {
		m.logger.WarnContext(r.Context(), "Failed to save session after flash pop", slog.Any("error", err))
	}
	return errs, successes
}

// BaseData is the renderer hook: every page gets the current user and any
// pending flashes, the same locals every view expects.
func (m *Manager) BaseData(w http.ResponseWriter, r *http.Request) map[string]any {
	errs, successes := m.PopFlashes(w, r)
	return map[string]any{
		"CurrentUser": UserFromContext(r.Context()),
		"Error":       errs,
		"Success":     successes,
	}
}
