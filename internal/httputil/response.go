package httputil

import (
	"encoding/json"
	"net/http"

	"videotube/internal/logger"
	"videotube/internal/model"
)

// ErrorResponse represents the standard error response format
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains the error code and message
type ErrorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// WriteJSON writes a JSON response with the given status code
func WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data != nil {
		// Headers are already sent, nothing useful to do on failure.
		_ = json.NewEncoder(w).Encode(data)
	}
}

// WriteError writes an error response in the envelope format:
// {"error": {"code": "ERROR_CODE", "message": "Human readable message"}}
func WriteError(w http.ResponseWriter, status int, code string, message string) {
	WriteJSON(w, status, ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
		},
	})
}

// WriteAppError renders err using the status, code and message of the
// AppError in its chain. Anything else is logged and reported as a generic
// internal error so causes never leak to clients.
func WriteAppError(w http.ResponseWriter, r *http.Request, err error) {
	log := logger.FromRequest(r)

	appErr, ok := model.AsAppError(err)
	if !ok {
		log.Error().Err(err).Msg("unhandled error")
		WriteInternalError(w, "Internal server error")
		return
	}

	if appErr.Status() >= http.StatusInternalServerError {
		log.Error().Err(err).Str("code", appErr.Code).Msg("request failed")
	}
	WriteError(w, appErr.Status(), appErr.Code, appErr.Message)
}

// WriteBadRequest writes a 400 Bad Request error
func WriteBadRequest(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusBadRequest, model.CodeBadRequest, message)
}

// WriteUnauthorizedWithCode writes a 401 Unauthorized error with a custom code
func WriteUnauthorizedWithCode(w http.ResponseWriter, code string, message string) {
	WriteError(w, http.StatusUnauthorized, code, message)
}

// WriteInternalError writes a 500 Internal Server Error
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, model.CodeInternal, message)
}
