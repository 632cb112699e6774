package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"socialhub/internal/models"
)

type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

func WriteError(w http.ResponseWriter, message string, statusCode int) {
	writeJSON(w, ErrorResponse{Error: message}, statusCode)
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(data)
}

// handleError maps service errors to responses. Unknown errors are logged
// and reported without details.
func (h *Handlers) handleError(w http.ResponseWriter, r *http.Request, err error) {
	var validationErr *models.ValidationError

	switch {
	case errors.As(err, &validationErr):
		writeJSON(w, ErrorResponse{Error: "Please correct the errors below.", Fields: validationErr.Fields}, http.StatusBadRequest)
	case errors.Is(err, models.ErrNotFound):
		WriteError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrAuthentication):
		WriteError(w, "Invalid credentials.", http.StatusUnauthorized)
	case errors.Is(err, models.ErrPermission):
		WriteError(w, "You do not have permission to do that.", http.StatusForbidden)
	case errors.Is(err, models.ErrSelfReference):
		WriteError(w, "You cannot follow yourself.", http.StatusBadRequest)
	default:
		h.Logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err))
		WriteError(w, "Internal server error", http.StatusInternalServerError)
	}
}

// validationError converts validator output into a models.ValidationError
// keyed by form field name.
func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	result := &models.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		result.Fields[fe.Field()] = fieldMessage(fe)
	}
	return result
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "email":
		return "Enter a valid email address."
	case "eqfield":
		return "The two password fields didn't match."
	case "min":
		return "Ensure this value has at least " + fe.Param() + " characters."
	case "max":
		return "Ensure this value has at most " + fe.Param() + " characters."
	case "username":
		return "Enter a valid username. This value may contain only letters, numbers, and @/./+/-/_ characters."
	default:
		return "Invalid value."
	}
}
