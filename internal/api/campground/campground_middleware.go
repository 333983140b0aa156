package campground

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/models"
)

type contextKey string

const campgroundCtxKey contextKey = "campground"

// FromContext returns the campground attached by the ownership guard.
func FromContext(ctx context.Context) *models.Campground {
	cg, _ := ctx.Value(campgroundCtxKey).(*models.Campground)
	return cg
}

// RequireOwnership loads the campground from the URL and lets the request
// through only when the current user owns it or is an admin. The loaded
// record is attached to the context for the handler.
func RequireOwnership(repo Repository, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := session.UserFromContext(r.Context())
			if user == nil {
				sessions.Flash(w, r, session.FlashError, "You need to be logged in to do that.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, "campgroundID"))
			if err != nil {
				sessions.Flash(w, r, session.FlashError, "Campground not found.")
				api.RedirectBack(w, r)
				return
			}
			cg, err := repo.GetByID(r.Context(), id)
			if err != nil {
				sessions.Flash(w, r, session.FlashError, "Campground not found.")
				api.RedirectBack(w, r)
				return
			}
			if !cg.EditableBy(user) {
				sessions.Flash(w, r, session.FlashError, "You don't have permission to do that.")
				api.RedirectBack(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), campgroundCtxKey, cg)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
