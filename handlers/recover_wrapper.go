package handlers

import (
	"log/slog"
	"net/http"
	"runtime"
)

// RecoverWrapper wraps a handler with panic recovery
func RecoverWrapper(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				stack := make([]byte, 8*1024)
				stack = stack[:runtime.Stack(stack, false)]
				slog.ErrorContext(r.Context(), "Panic recovered",
					slog.Any("error", rec),
					slog.String("path", r.URL.Path),
					slog.String("stacktrace", string(stack)),
				)
				writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
			}
		}()

		next.ServeHTTP(w, r)
	})
}
