package usecase

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"giveget/internal/domain/repository"
	"giveget/internal/domain/service"
	apperrors "giveget/pkg/errors"
	"giveget/pkg/metrics"
)

var validate = validator.New()

func validateInput(input interface{}) error {
	if err := validate.Struct(input); err != nil {
		return apperrors.ValidationFailed(err)
	}
	return nil
}

// remoteError classifies a failed backend call that has no more specific
// mapping at its call site.
func remoteError(message string, err error) *apperrors.AppError {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NotFound("Document", err)
	}
	if errors.Is(err, repository.ErrUnavailable) || errors.Is(err, service.ErrIdentityUnavailable) {
		return apperrors.RemoteUnavailable(message, err)
	}
	return apperrors.Unknown(err)
}

func observe(operation string, err error) {
	result := "ok"
	if err != nil {
		result = apperrors.CodeUnknown
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			result = appErr.Code
		}
	}
	metrics.ObserveAccount(operation, result)
}
