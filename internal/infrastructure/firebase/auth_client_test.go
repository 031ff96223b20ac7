package firebase

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"

	"giveget/internal/domain/service"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		message string
		status  int
		want    error
	}{
		{"EMAIL_EXISTS", 400, service.ErrEmailExists},
		{"WEAK_PASSWORD : Password should be at least 6 characters", 400, service.ErrWeakPassword},
		{"EMAIL_NOT_FOUND", 400, service.ErrInvalidCredentials},
		{"INVALID_PASSWORD", 400, service.ErrInvalidCredentials},
		{"INVALID_LOGIN_CREDENTIALS", 400, service.ErrInvalidCredentials},
		{"CREDENTIAL_TOO_OLD_LOGIN_AGAIN", 400, service.ErrRequiresRecentLogin},
		{"TOKEN_EXPIRED", 400, service.ErrRequiresRecentLogin},
		{"backend error", 503, service.ErrIdentityUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.message, func(t *testing.T) {
			err := translate(&googleapi.Error{Code: tc.status, Message: tc.message})
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestTranslateTransportError(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(errors.New("dial tcp: timeout")), service.ErrIdentityUnavailable)
}
