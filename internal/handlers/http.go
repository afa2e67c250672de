package handlers

import (
	"encoding/json"
	stderrors "errors"
	"io"
	"log"
	"net/http"

	"github.com/abrezinsky/dinnerroulette/internal/errors"
	"github.com/abrezinsky/dinnerroulette/internal/services"
)

// Error codes for standardized API error responses
const (
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeTooManyRequests    = "TOO_MANY_REQUESTS"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
	ErrCodeInternalServer     = "INTERNAL_SERVER_ERROR"
)

// APIError represents an error with an HTTP status code and error code.
// It serializes as the {"success": false, ...} envelope.
type APIError struct {
	Status           int    `json:"-"`
	Success          bool   `json:"success"`
	Code             string `json:"code"`
	Message          string `json:"error"`
	SecondsRemaining int    `json:"seconds_remaining,omitempty"`
}

func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new API error with custom message and code
func NewAPIError(status int, code, message string) *APIError {
	return &APIError{Status: status, Code: code, Message: message}
}

// BadRequest creates a 400 error with custom message
func BadRequest(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeBadRequest, Message: message}
}

// ValidationError creates a 400 error for rejected input
func ValidationError(message string) *APIError {
	return &APIError{Status: http.StatusBadRequest, Code: ErrCodeValidation, Message: message}
}

// Unauthorized creates a 401 error with custom message
func Unauthorized(message string) *APIError {
	return &APIError{Status: http.StatusUnauthorized, Code: ErrCodeUnauthorized, Message: message}
}

// NotFound creates a 404 error with custom message
func NotFound(message string) *APIError {
	return &APIError{Status: http.StatusNotFound, Code: ErrCodeNotFound, Message: message}
}

// TooManyRequests creates a 429 error carrying the wait time
func TooManyRequests(message string, secondsRemaining int) *APIError {
	return &APIError{
		Status:           http.StatusTooManyRequests,
		Code:             ErrCodeTooManyRequests,
		Message:          message,
		SecondsRemaining: secondsRemaining,
	}
}

// ServiceUnavailable creates a 503 error, logs the original error
func ServiceUnavailable(message string, err error) *APIError {
	if err != nil {
		log.Printf("Service unavailable: %v", err)
	}
	return &APIError{Status: http.StatusServiceUnavailable, Code: ErrCodeServiceUnavailable, Message: message}
}

// InternalError creates a 500 error, logs the original error
func InternalError(err error) *APIError {
	log.Printf("Internal error: %v", err)
	return &APIError{Status: http.StatusInternalServerError, Code: ErrCodeInternalServer, Message: "Internal server error"}
}

// respondJSON writes a JSON response with the given status code
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondOK writes a 200 OK success envelope. Typed responses embed
// Success themselves; maps get it added.
func respondOK(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusOK, envelope(data))
}

// respondCreated writes a 201 Created success envelope
func respondCreated(w http.ResponseWriter, data interface{}) {
	respondJSON(w, http.StatusCreated, envelope(data))
}

// respondSuccess writes a 200 OK with a message
func respondSuccess(w http.ResponseWriter, message string) {
	respondOK(w, map[string]interface{}{"message": message})
}

func envelope(data interface{}) interface{} {
	if m, ok := data.(map[string]interface{}); ok {
		m["success"] = true
		return m
	}
	return data
}

// respondError writes an error response
func respondError(w http.ResponseWriter, err error) {
	apiErr := ToAPIError(err)
	respondJSON(w, apiErr.Status, apiErr)
}

// decodeJSON decodes JSON from request body into the target
func decodeJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil {
		if err == io.EOF {
			return BadRequest("Request body is required")
		}
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// decodeOptionalJSON is decodeJSON that accepts an empty body
func decodeOptionalJSON(r *http.Request, target interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(target); err != nil && err != io.EOF {
		return BadRequest("Invalid JSON: " + err.Error())
	}
	return nil
}

// ToAPIError converts service errors to appropriate API errors
func ToAPIError(err error) *APIError {
	var apiErr *APIError
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var tooSoon *services.SpinTooSoonError
	if stderrors.As(err, &tooSoon) {
		return TooManyRequests(tooSoon.Error(), tooSoon.SecondsRemaining)
	}

	var appErr *errors.Error
	if stderrors.As(err, &appErr) {
		switch appErr.Kind {
		case errors.ErrNotFound:
			return NotFound(appErr.Message)
		case errors.ErrValidation:
			return ValidationError(appErr.Message)
		case errors.ErrUnavailable:
			return ServiceUnavailable(appErr.Message, appErr.Err)
		default:
			return InternalError(err)
		}
	}

	return InternalError(err)
}
