package comment

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

const commentCtxKey contextKey = "comment"

// FromContext returns the comment attached by the ownership guard.
func FromContext(ctx context.Context) *models.Comment {
	cm, _ := ctx.Value(commentCtxKey).(*models.Comment)
	return cm
}

// RequireOwnership loads the comment from the URL and lets the request
// through only when the current user wrote it or is an admin.
func RequireOwnership(repo Repository, sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := session.UserFromContext(r.Context())
			if user == nil {
				sessions.Flash(w, r, session.FlashError, "You need to be logged in to do that.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}

			id, err := uuid.Parse(chi.URLParam(r, "commentID"))
			if err != nil {
				sessions.Flash(w, r, session.FlashError, "Comment not found.")
				api.RedirectBack(w, r)
				return
			}
			cm, err := repo.GetByID(r.Context(), id)
			if err != nil {
				sessions.Flash(w, r, session.FlashError, "Comment not found.")
				api.RedirectBack(w, r)
				return
			}
			if !cm.EditableBy(user) {
				sessions.Flash(w, r, session.FlashError, "You need to be logged in to do that.")
				api.RedirectBack(w, r)
				return
			}

			ctx := context.WithValue(r.Context(), commentCtxKey, cm)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
