package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	CodeValidation          = "VALIDATION_ERROR"
	CodeEmailInUse          = "EMAIL_IN_USE"
	CodeWeakPassword        = "WEAK_PASSWORD"
	CodeInvalidCredentials  = "INVALID_CREDENTIALS"
	CodeWrongPassword       = "WRONG_PASSWORD"
	CodeRequiresRecentLogin = "REQUIRES_RECENT_LOGIN"
	CodeRegistrationFailed  = "REGISTRATION_FAILED"
	CodeRemoteUnavailable   = "REMOTE_UNAVAILABLE"
	CodeUnknown             = "UNKNOWN"
	CodeNotFound            = "NOT_FOUND"
	CodeUnauthorized        = "UNAUTHORIZED"
	CodeConflict            = "CONFLICT"
	CodeTooManyRequests     = "TOO_MANY_REQUESTS"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(code string, message string, status int, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

func Validation(message string, err error) *AppError {
	return New(CodeValidation, message, http.StatusBadRequest, err)
}

func EmailInUse(err error) *AppError {
	return New(CodeEmailInUse, "Email is already registered", http.StatusConflict, err)
}

func WeakPassword(err error) *AppError {
	return New(CodeWeakPassword, "Password should be at least 6 characters", http.StatusBadRequest, err)
}

// InvalidCredentials deliberately covers both unknown email and wrong password.
func InvalidCredentials(err error) *AppError {
	return New(CodeInvalidCredentials, "Invalid email or password", http.StatusUnauthorized, err)
}

func WrongPassword(err error) *AppError {
	return New(CodeWrongPassword, "Wrong password, please try again", http.StatusUnauthorized, err)
}

func RequiresRecentLogin(err error) *AppError {
	return New(CodeRequiresRecentLogin, "Please confirm your password to continue", http.StatusForbidden, err)
}

func RegistrationFailed(err error) *AppError {
	return New(CodeRegistrationFailed, "Registration failed. Please try again.", http.StatusInternalServerError, err)
}

func RemoteUnavailable(message string, err error) *AppError {
	return New(CodeRemoteUnavailable, message, http.StatusServiceUnavailable, err)
}

func Unknown(err error) *AppError {
	return New(CodeUnknown, "Something went wrong. Please try again.", http.StatusInternalServerError, err)
}

func NotFound(resource string, err error) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound, err)
}

func Unauthorized(message string, err error) *AppError {
	return New(CodeUnauthorized, message, http.StatusUnauthorized, err)
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message, http.StatusConflict, nil)
}

func TooManyRequests(message string) *AppError {
	return New(CodeTooManyRequests, message, http.StatusTooManyRequests, nil)
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsAuthError reports whether err belongs to the credential family.
func IsAuthError(err error) bool {
	var appErr *AppError
	if !errors.As(err, &appErr) {
		return false
	}
	switch appErr.Code {
	case CodeEmailInUse, CodeWeakPassword, CodeInvalidCredentials, CodeWrongPassword:
		return true
	}
	return false
}

// ValidationFailed wraps a validator error with a message for its first
// failing field.
func ValidationFailed(err error) *AppError {
	var ve validator.ValidationErrors
	if errors.As(err, &ve) {
		return Validation(ValidationMessage(ve), err)
	}
	return Validation("Invalid input data", err)
}

func ValidationMessage(validationErr validator.ValidationErrors) string {
	for _, err := range validationErr {
		field := strings.ToLower(err.Field())
		param := err.Param()

		switch err.Tag() {
		case "required":
			return field + " is required"
		case "min":
			return field + " must be at least " + param + " characters"
		case "max":
			return field + " must be at most " + param + " characters"
		case "eqfield":
			return "passwords do not match"
		case "email":
			return field + " must be a valid email address"
		case "url":
			return field + " must be a valid URL"
		case "oneof":
			return field + " must be one of: " + param
		default:
			return field + " is invalid"
		}
	}
	return "Invalid input data"
}
