package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/linesmerrill/casetrack-api/config"
	"github.com/linesmerrill/casetrack-api/models"
)

const maxBodyBytes = 1 << 20

// statusFor maps service errors onto HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrValidationFailed):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, models.ErrDuplicate):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func errorResponse(message string, w http.ResponseWriter, err error) {
	config.ErrorStatus(message, statusFor(err), w, err)
}

// decodeBody reads a JSON body into v and validates it
func decodeBody(r *http.Request, v any, validate *Validator) error {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%w: failed to read body: %v", models.ErrValidationFailed, err)
	}
	if err := json.Unmarshal(body, v); err != nil {
		var ve *models.ValidationError
		if errors.As(err, &ve) {
			return ve
		}
		return fmt.Errorf("%w: failed to unmarshal body: %v", models.ErrValidationFailed, err)
	}
	return validate.Validate(v)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		config.ErrorStatus("failed to marshal response", http.StatusInternalServerError, w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(b)
}
