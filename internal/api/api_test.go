package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMethodOverride(t *testing.T) {
	tests := []struct {
		name   string
		method string
		target string
		want   string
	}{
		{"post with _method=PUT", http.MethodPost, "/campgrounds/1?_method=PUT", http.MethodPut},
		{"post with _method=DELETE", http.MethodPost, "/campgrounds/1?_method=DELETE", http.MethodDelete},
		{"post without _method", http.MethodPost, "/campgrounds/1", http.MethodPost},
		{"unknown override ignored", http.MethodPost, "/campgrounds/1?_method=PATCH", http.MethodPost},
		{"get is never overridden", http.MethodGet, "/campgrounds/1?_method=DELETE", http.MethodGet},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got string
			h := MethodOverride(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = r.Method
			}))
			h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(tt.method, tt.target, nil))
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsXHR(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/campgrounds", nil)
	assert.False(t, IsXHR(req))

	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	assert.True(t, IsXHR(req))
}

func TestRedirectBack(t *testing.T) {
	t.Run("follows the referer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/somewhere", nil)
		req.Header.Set("Referer", "/campgrounds/abc")
		rec := httptest.NewRecorder()
		RedirectBack(rec, req)
		assert.Equal(t, http.StatusSeeOther, rec.Code)
		assert.Equal(t, "/campgrounds/abc", rec.Header().Get("Location"))
	})

	t.Run("falls back to the listing", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RedirectBack(rec, httptest.NewRequest(http.MethodGet, "/somewhere", nil))
		assert.Equal(t, "/campgrounds", rec.Header().Get("Location"))
	})
}
