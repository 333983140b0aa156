package campground

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/jharris/campwise/app/media"
	"github.com/jharris/campwise/internal/api"
	"github.com/jharris/campwise/internal/api/session"
	"github.com/jharris/campwise/internal/models"
	"github.com/jharris/campwise/internal/render"
)

const maxUploadBytes = 10 << 20

var _ Handler = (*HandlerImpl)(nil)

type Handler interface {
	Index(w http.ResponseWriter, r *http.Request)
	NewForm(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Show(w http.ResponseWriter, r *http.Request)
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

// Index lists campgrounds. Only XHR callers get the ?search= filter; a
// plain browser request always sees the full collection. XHR callers get
// JSON, everyone else the rendered page.
func (h *HandlerImpl) Index(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Index"))

	var (
		campgrounds []*models.Campground
		err         error
	)
	if term := r.URL.Query().Get("search"); term != "" && api.IsXHR(r) {
		campgrounds, err = h.service.Search(r.Context(), term)
	} else {
		campgrounds, err = h.service.List(r.Context())
	}
	if err != nil {
		l.ErrorContext(r.Context(), "Failed to list campgrounds", slog.Any("error", err))
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if api.IsXHR(r) {
		api.WriteJSONResponse(w, r, http.StatusOK, campgrounds)
		return
	}

	h.renderer.HTML(w, r, "campgrounds/index", map[string]any{"Campgrounds": campgrounds})
}

func (h *HandlerImpl) NewForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "campgrounds/new", nil)
}

func (h *HandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Create"))

	input, file, filename, err := parseForm(r, true)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, err.Error())
		api.RedirectBack(w, r)
		return
	}
	if file != nil {
		defer file.Close()
	}

	user := session.UserFromContext(r.Context())
	cg, err := h.service.Create(r.Context(), input, file, filename, user.Snapshot())
	if err != nil {
		if errors.Is(err, media.ErrInvalidImage) {
			h.sessions.Flash(w, r, session.FlashError, err.Error())
		} else {
			l.ErrorContext(r.Context(), "Failed to create campground", slog.Any("error", err))
			h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
		}
		api.RedirectBack(w, r)
		return
	}

	http.Redirect(w, r, "/campgrounds/"+cg.ID.String(), http.StatusSeeOther)
}

func (h *HandlerImpl) Show(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "campgroundID"))
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "That campground does not exist.")
		api.RedirectBack(w, r)
		return
	}

	cg, err := h.service.Get(r.Context(), id)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			h.logger.ErrorContext(r.Context(), "Failed to load campground", slog.Any("error", err))
		}
		h.sessions.Flash(w, r, session.FlashError, "That campground does not exist.")
		api.RedirectBack(w, r)
		return
	}

	h.renderer.HTML(w, r, "campgrounds/show", map[string]any{"Campground": cg})
}

func (h *HandlerImpl) EditForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.HTML(w, r, "campgrounds/edit", map[string]any{"Campground": FromContext(r.Context())})
}

func (h *HandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Update"))

	id, err := uuid.Parse(chi.URLParam(r, "campgroundID"))
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
		http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		return
	}

	input, file, filename, err := parseForm(r, false)
	if err != nil {
		h.sessions.Flash(w, r, session.FlashError, err.Error())
		api.RedirectBack(w, r)
		return
	}
	if file != nil {
		defer file.Close()
	}

	// The multipart reader yields a nil-interface only when no file field
	// was submitted at all.
	var image io.Reader
	if file != nil {
		image = file
	}

	cg, err := h.service.Update(r.Context(), id, input, image, filename)
	if err != nil {
		switch {
		case errors.Is(err, api.ErrNotFound):
			h.sessions.Flash(w, r, session.FlashError, "Campground not found.")
			http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
		case errors.Is(err, media.ErrInvalidImage):
			h.sessions.Flash(w, r, session.FlashError, err.Error())
			api.RedirectBack(w, r)
		default:
			l.ErrorContext(r.Context(), "Failed to update campground", slog.Any("error", err))
			h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
			api.RedirectBack(w, r)
		}
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, "Successfully Updated!")
	http.Redirect(w, r, "/campgrounds/"+cg.ID.String(), http.StatusSeeOther)
}

func (h *HandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "Delete"))

	cg := FromContext(r.Context())
	if err := h.service.Delete(r.Context(), cg); err != nil {
		l.ErrorContext(r.Context(), "Failed to delete campground", slog.Any("error", err))
		h.sessions.Flash(w, r, session.FlashError, "Something went wrong. Please try again.")
		api.RedirectBack(w, r)
		return
	}

	h.sessions.Flash(w, r, session.FlashSuccess, "Campground deleted successfully!")
	http.Redirect(w, r, "/campgrounds", http.StatusSeeOther)
}

// parseForm reads the shared campground form fields. When requireImage is
// set a missing file field is an error; otherwise it yields a nil file.
func parseForm(r *http.Request, requireImage bool) (Input, multipart.File, string, error) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return Input{}, nil, "", errors.New("Invalid form submission.")
	}

	price, err := strconv.ParseFloat(r.FormValue("price"), 64)
	if err != nil {
		return Input{}, nil, "", errors.New("Price must be a number.")
	}
	input := Input{
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Location:    r.FormValue("location"),
		Price:       price,
	}

	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !requireImage {
			return input, nil, "", nil
		}
		return Input{}, nil, "", errors.New("An image is required.")
	}
	return input, file, header.Filename, nil
}
