package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	apperrors "github.com/dvergaray/quizarena/internal/errors"
	"github.com/dvergaray/quizarena/internal/logger"
)

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

func respondError(w http.ResponseWriter, log *logger.Logger, err error) {
	status := apperrors.ToHTTPStatus(err)

	body := errorResponse{Code: apperrors.CodeInternalServer, Message: "internal server error"}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		body = errorResponse{Code: appErr.Code, Message: appErr.Message}
	}

	if status >= http.StatusInternalServerError {
		log.Error("Request failed", "error", err)
	}

	respondJSON(w, status, body)
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return apperrors.New(apperrors.CodeInvalidInput, "invalid request body")
	}
	return nil
}

// callerID reads the authenticated user from the gateway-set header. Auth
// itself happens upstream.
func callerID(r *http.Request) (string, error) {
	userId := r.Header.Get("X-User-ID")
	if userId == "" {
		return "", apperrors.New(apperrors.CodeUnauthorized, "missing X-User-ID header")
	}
	return userId, nil
}
