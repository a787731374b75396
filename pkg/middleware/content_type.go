package middleware

import (
	"mime"
	"net/http"
	apperrors "padelhub/pkg/errors"
	httputil "padelhub/pkg/http"
	"padelhub/pkg/logger"
)

// ContentTypeValidation requires a JSON body on writes. Bodyless writes,
// such as a cancellation without a reason, pass through.
func ContentTypeValidation(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if requiresContentType(r) {
				contentType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
				if contentType != "application/json" {
					log.Warn("Invalid Content-Type header",
						"request_id", requestIDFrom(r),
						"content_type", contentType,
						"path", r.URL.Path,
						"method", r.Method,
					)
					appErr := apperrors.New(apperrors.CodeInvalidInput, "Content-Type must be application/json", http.StatusUnsupportedMediaType)
					if err := httputil.WriteError(w, appErr); err != nil {
						log.Error("failed to write error response", "middleware", "ContentTypeValidation", "error", err)
					}
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func requiresContentType(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}
