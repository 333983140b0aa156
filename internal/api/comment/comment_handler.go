package comment

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/render"
)

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	NewForm(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	EditForm(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
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

func (h *HandlerImpl) campgroundID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(chi.URLParam(r, "campgroundID"))
}

func (h *HandlerImpl) NewForm(w http.ResponseWriter, r *http.Request) {
	id, err := h.campgroundID(r)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	cg, err := h.service.Campground(r.Context(), id)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	h.renderer.HTML(w, r, "comments/new", map[string]any{"Campground": cg})
}

func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Create"))

	id, err := h.campgroundID(r)
	if err != nil {
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}
	if err := r.ParseForm(); err != nil {
		api.RedirectBack(w, r)
		return
	}

	user := session.UserFromContext(r.Context())
	_, err = h.service.Create(r.Context(), id, r.FormValue("body"), user.Snapshot())
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
			return
		}
		l.ErrorContext(r.Context(), "Failed to create comment", slog.Any("error", err))
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, "Successfully added comment")
	http.Redirect(w, r, "/campgrounds/"+id.String(), http.StatusSeeOther)
}

func (h *HandlerImpl) EditForm(w http.ResponseWriter, r *http.Request) {
	id, err := h.campgroundID(r)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
		api.RedirectBack(w, r)
		return
	}
	if _, err := h.service.Campground(r.Context(), id); err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
		api.RedirectBack(w, r)
		return
	}
	h.renderer.HTML(w, r, "comments/edit", map[string]any{
		"CampgroundID": id,
		"Comment":      FromContext(r.Context()),
	})
}

func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	cm := FromContext(r.Context())
	if err := r.ParseForm(); err != nil {
		api.RedirectBack(w, r)
		return
	}
	if err := h.service.Update(r.Context(), cm, r.FormValue("body")); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to update comment", slog.Any("error", err))
		api.RedirectBack(w, r)
		return
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Post successfully updated.")
	http.Redirect(w, r, "/campgrounds/"+cm.CampgroundID.String(), http.StatusSeeOther)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	cm := FromContext(r.Context())
	if err := h.service.Delete(r.Context(), cm.ID); err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to delete comment", slog.Any("error", err))
		api.RedirectBack(w, r)
		return
	}
	h.sessions.Flash(w, r, session.FlashSuccess, "Comment deleted.")
	http.Redirect(w, r, "/campgrounds/"+cm.CampgroundID.String(), http.StatusSeeOther)
}
