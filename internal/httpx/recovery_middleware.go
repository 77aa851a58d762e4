package httpx

import (
	"net/http"

	"go.uber.org/zap"
)

func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				LoggerFrom(r).Error("panic recovered",
					zap.Any("panic", err),
					zap.Stack("stack"),
				)

				var wroteHeader bool
				if rw, ok := w.(*responseWriter); ok {
					wroteHeader = rw.wroteHeader()
				}

				if !wroteHeader {
					JSONError(w, http.StatusInternalServerError, "An internal error occurred", nil)
				}
			}
		}()
		next.ServeHTTP(w, r)
	})
}
