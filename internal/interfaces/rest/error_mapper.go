package rest

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/racing-academy-payments/internal/application"
)

type ErrorResponse struct {
	Success bool              `json:"success"`
	Error   string            `json:"error"`
	Code    string            `json:"code"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteError maps application errors to HTTP responses. Server-side
// failures are logged with the full cause; the client only sees the
// user-facing message.
func WriteError(w http.ResponseWriter, err error, logger *slog.Logger) {
	statusCode := application.ToHTTPStatus(err)
	errorCode := application.ToErrorCode(err)

	response := ErrorResponse{
		Success: false,
		Error:   application.UserMessage(err),
		Code:    errorCode,
	}
	if svcErr, ok := application.IsServiceError(err); ok && len(svcErr.Details) > 0 {
		response.Details = svcErr.Details
	}

	if statusCode >= http.StatusInternalServerError && logger != nil {
		logger.Error("request failed",
			"code", errorCode,
			"status", statusCode,
			"error", err,
		)
	}

	WriteJSON(w, statusCode, response)
}

func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
