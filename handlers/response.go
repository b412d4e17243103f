package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"todoapi/apperrors"
)

const maxBodyBytes = 1 << 20

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("Unable to json encode response", slog.Any("error", err))
	}
}

// writeError is the single exit for failed requests. Classified errors keep
// their message; anything else is logged and answered with a bare 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := apperrors.As(err)
	if e.Code == apperrors.CodeInternal {
		slog.ErrorContext(r.Context(), "Error processing the request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Any("error", err),
		)
		writeJSON(w, http.StatusInternalServerError, messageResponse{Message: "internal server error"})
		return
	}
	writeJSON(w, e.Code.Status, messageResponse{Message: e.Message})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.Validation("request body is required")
		}
		return apperrors.Wrap(apperrors.CodeValidation, "invalid request body", err)
	}
	return nil
}

// storeContext carries the request's values but not its cancellation, so a
// client that disconnects does not abort hashing or store work in flight.
func storeContext(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}

func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, apperrors.Validation("invalid id")
	}
	return id, nil
}
