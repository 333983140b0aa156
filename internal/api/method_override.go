package api

import "net/http"

// MethodOverride lets HTML forms issue PUT and DELETE by posting a
// _method field, the usual workaround for browsers only speaking GET and
// POST. Runs before routing.
func MethodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch r.URL.Query().Get("_method") {
			case http.MethodPut:
				r.Method = http.MethodPut
			case http.MethodDelete:
				r.Method = http.MethodDelete
			}
		}
		next.ServeHTTP(w, r)
	})
}
