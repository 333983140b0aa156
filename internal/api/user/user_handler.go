package user

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/models"
	"github.com/jharris/campwise/internal/render"
)

// UserStore resolves profile owners.
type UserStore interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// CampgroundLister supplies the campgrounds shown on a profile.
type CampgroundLister interface {
	ListByAuthor(ctx context.Context, authorID uuid.UUID) ([]*models.Campground, error)
}

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Show(w http.ResponseWriter, r *http.Request)
}

type HandlerImpl struct {
	logger      *slog.Logger
	users       UserStore
	campgrounds CampgroundLister
	sessions    *session.Manager
	renderer    *render.Renderer
}

func NewHandler(users UserStore, campgrounds CampgroundLister, sessions *session.Manager, renderer *render.Renderer, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		logger:      logger,
		users:       users,
		campgrounds: campgrounds,
		sessions:    sessions,
		renderer:    renderer,
	}
}

// Show renders a public profile: the account plus every campground it has
// posted.
func (h *HandlerImpl) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "userID"))
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong...")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	profile, err := h.users.GetUserByID(r.Context(), id)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong...")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	campgrounds, err := h.campgrounds.ListByAuthor(r.Context(), profile.ID)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to list profile campgrounds", slog.Any("error", err))
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong...")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	h.renderer.HTML(w, r, "users/show", map[string]any{
		"User":        profile,
		"Campgrounds": campgrounds,
	})
}
