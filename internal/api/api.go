package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the repositories use. pgxmock
// satisfies it too, which keeps the repositories testable without a
// live database.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrForbidden = errors.New("action forbidden")

// WriteJSONResponse encodes the data to JSON and writes the response
// header and body. Used by the XHR listing/search path; everything else
// renders HTML or redirects.
func WriteJSONResponse(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	js, err := json.Marshal(data)
	if err != nil {
		reqID := middleware.GetReqID(r.Context())
		slog.ErrorContext(r.Context(), "Failed to marshal JSON response",
			slog.Any("error", err),
			slog.String("request_id", reqID),
		)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err = w.Write(js); err != nil {
		slog.ErrorContext(r.Context(), "Failed to write response body", slog.Any("error", err))
	}
}

// IsXHR reports whether the request came from a programmatic client.
// jQuery (and the search-as-you-type script) set this header.
func IsXHR(r *http.Request) bool {
	return r.Header.Get("X-Requested-With") == "XMLHttpRequest"
}

// RedirectBack sends the browser to the referring page, falling back to
// the campground listing when there is no Referer.
func RedirectBack(w http.ResponseWriter, r *http.Request) {
	target := r.Referer()
	if target == "" {
		target = "/campgrounds"
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}
