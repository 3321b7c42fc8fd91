package middleware

import (
	"mime"
	"net/http"

	"github.com/utafrali/giftcard-catalog/pkg/httputil"
)

// RequireJSON rejects POST, PUT and PATCH requests whose Content-Type is not
// application/json with 415 Unsupported Media Type.
func RequireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				httputil.WriteJSON(w, http.StatusUnsupportedMediaType,
					httputil.ErrorResponse{Error: "Content-Type must be application/json"})
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}
