package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/go-playground/validator/v10/non-standard/validators"
	"github.com/ledgerly/server/internal/account"
	"github.com/ledgerly/server/internal/auth"
	"github.com/ledgerly/server/internal/budget"
)

// maxBodyBytes caps every JSON request body.
const maxBodyBytes = 1 << 20

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// names are trimmed before storage, so whitespace alone must not satisfy required
	if err := v.RegisterValidation("notblank", validators.NotBlank); err != nil {
		panic(err)
	}
	return v
}

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

func respondWithError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Error: message, Code: code})
}

// decodeJSON reads the body into dst and runs struct validation.
// It answers 400 itself and returns false on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondWithError(w, http.StatusRequestEntityTooLarge, "VALIDATION_ERROR", "request body too large")
			return false
		}
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return false
	}
	if err := validate.Struct(dst); err != nil {
		respondWithError(w, http.StatusBadRequest, "VALIDATION_ERROR", validationMessage(err))
		return false
	}
	return true
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return "invalid request"
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "notblank":
			msgs = append(msgs, fmt.Sprintf("%s must not be blank", fe.Field()))
		case "email":
			msgs = append(msgs, fmt.Sprintf("%s must be a valid email", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s validation", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(msgs, "; ")
}

// respondWithServiceError maps a service error onto its status and stable code.
// Unexpected errors are logged and answered with a generic 500.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondWithError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid credentials")
	case errors.Is(err, auth.ErrDuplicateEmail):
		respondWithError(w, http.StatusBadRequest, "DUPLICATE_EMAIL", "email already registered")
	case errors.Is(err, auth.ErrInvalidRefreshToken):
		respondWithError(w, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN", "invalid refresh token")
	case errors.Is(err, auth.ErrInvalidOrExpiredOTP):
		respondWithError(w, http.StatusBadRequest, "INVALID_OR_EXPIRED_OTP", "invalid or expired OTP")
	case errors.Is(err, auth.ErrUnauthenticated):
		respondWithError(w, http.StatusUnauthorized, "UNAUTHENTICATED", "unauthenticated")
	case errors.Is(err, auth.ErrForbidden):
		respondWithError(w, http.StatusForbidden, "FORBIDDEN", "forbidden")
	case errors.Is(err, auth.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "NOT_FOUND", "user not found")
	case errors.Is(err, account.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "NOT_FOUND", "account not found")
	case errors.Is(err, budget.ErrNotFound):
		respondWithError(w, http.StatusNotFound, "NOT_FOUND", "budget not found")
	case errors.Is(err, account.ErrDuplicateName), errors.Is(err, budget.ErrDuplicateName):
		respondWithError(w, http.StatusConflict, "CONFLICT", err.Error())
	default:
		slog.ErrorContext(r.Context(), "request failed",
			slog.String("method", r.Method), slog.String("path", r.URL.Path), slog.Any("error", err))
		respondWithError(w, http.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}
