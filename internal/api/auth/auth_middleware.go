package auth

import (
	"net/http"

	"github.com/jharris/campwise/internal/api/session"
)

// RequireLogin gates a route behind an authenticated session. Anonymous
// visitors get flashed and sent to the login page.
func RequireLogin(sessions *session.Manager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if session.UserFromContext(r.Context()) == nil {
				sessions.Flash(w, r, session.FlashError, "You need to be logged in to do that.")
				http.Redirect(w, r, "/login", http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
