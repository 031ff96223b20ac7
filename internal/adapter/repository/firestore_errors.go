package repository

import (
	"fmt"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"giveget/internal/domain/repository"
)

// mapError folds gRPC status codes from Firestore into the repository
// sentinels while keeping the original error in the chain.
func mapError(err error) error {
	if err == nil {
		return nil
	}

	switch status.Code(err) {
	case codes.NotFound:
		return fmt.Errorf("%w: %v", repository.ErrNotFound, err)
	case codes.Unavailable,
		codes.DeadlineExceeded,
		codes.PermissionDenied,
		codes.Unauthenticated,
		codes.ResourceExhausted,
		codes.Aborted:
		return fmt.Errorf("%w: %v", repository.ErrUnavailable, err)
	}
	return err
}
