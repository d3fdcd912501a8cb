package auth

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/user/movielab-go/apperror"
	"github.com/user/movielab-go/logging"
	"github.com/user/movielab-go/validation"
)

// WriteJSON serializes data with the given status. A nil data writes headers only.
func WriteJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logging.Error().Err(err).Msg("Failed to encode response")
	}
}

// WriteError converts any error into the standard error payload. Errors that
// are not *apperror.AppError become a 500 whose message hides the cause.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperror.FromError(err)
	if !ok {
		appErr = apperror.NewInternalError("an unexpected error occurred", err)
	}

	if appErr.StatusCode() >= http.StatusInternalServerError {
		logging.Ctx(r.Context()).Error().Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
	}

	WriteJSON(w, appErr.StatusCode(), appErr.ToResponse())
}

// DecodeAndValidate reads a JSON body into dst and runs the struct validator on it.
// Malformed JSON is a BadRequest; failed rules are a ValidationError. Both map to 400.
func DecodeAndValidate(r *http.Request, dst any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperror.NewBadRequestError("invalid request body: "+err.Error(), err)
	}
	return validation.ValidateStruct(dst)
}
