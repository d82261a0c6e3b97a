// Package respond — общие помощники HTTP-обработчиков: JSON-ответы и разбор тел запросов.
package respond

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"propintel/internal/httpapi/schema"
	"propintel/internal/lib/logger/sl"
)

// ErrorBody — формат ответа с ошибкой.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// Коды ошибок API.
const (
	CodeBadRequest   = "bad_request"
	CodeValidation   = "validation_failed"
	CodeTooLarge     = "payload_too_large"
	CodeUnauthorized = "unauthorized"
	CodeRateLimited  = "rate_limited"
	CodeNotFound     = "not_found"
	CodeUnavailable  = "unavailable"
	CodeInternal     = "internal_error"
)

// JSON пишет ответ со статусом status.
func JSON(w http.ResponseWriter, log *slog.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil && log != nil {
		log.Warn("failed to encode response", sl.Err(err))
	}
}

// Error пишет ответ с ошибкой.
func Error(w http.ResponseWriter, log *slog.Logger, status int, code, message string) {
	JSON(w, log, status, ErrorBody{Error: code, Message: message})
}

// Decode читает тело, проверяет его по схеме и разбирает в dst.
// При ошибке сам пишет ответ и возвращает false.
func Decode(w http.ResponseWriter, r *http.Request, log *slog.Logger, v *schema.Validator, schemaName string, dst any) bool {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			Error(w, log, http.StatusRequestEntityTooLarge, CodeTooLarge,
				fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit))
			return false
		}
		Error(w, log, http.StatusBadRequest, CodeBadRequest, "failed to read request body")
		return false
	}

	if err := v.Validate(schemaName, body); err != nil {
		code := CodeValidation
		if errors.Is(err, schema.ErrInvalidJSON) {
			code = CodeBadRequest
		}
		Error(w, log, http.StatusBadRequest, code, err.Error())
		return false
	}

	if err := json.Unmarshal(body, dst); err != nil {
		Error(w, log, http.StatusBadRequest, CodeBadRequest, err.Error())
		return false
	}
	return true
}
