package middleware

import (
	"net/http"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
)

// MaxRequestSize rejects bodies declared larger than limit and caps the
// rest, so a decoder reading past it fails instead of exhausting memory.
func MaxRequestSize(limit int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > limit {
				_ = httputil.WriteError(w, apperrors.New(apperrors.CodeInvalidInput, "Request body too large", http.StatusRequestEntityTooLarge))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, limit)
			}
			next.ServeHTTP(w, r)
		})
	}
}
