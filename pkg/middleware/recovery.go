package middleware

import (
	"net/http"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
	"runtime/debug"
)

func Recovery(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					log.Error("Panic recovered",
						"request_id", requestIDFrom(r),
						"error", rec,
						"method", r.Method,
						"path", r.URL.Path,
						"stack", string(debug.Stack()),
					)

					if err := httputil.WriteError(w, apperrors.Internal("Internal server error", nil)); err != nil {
						log.Error("failed to write error response", "middleware", "Recovery", "error", err)
					}
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
