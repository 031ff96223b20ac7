package firebase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"firebase.google.com/go/v4/auth"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/identitytoolkit/v3"
	"google.golang.org/api/option"

	"giveget/internal/domain/service"
)

// AuthClient combines the end-user Identity Toolkit endpoints (password
// sign-up, sign-in, self-delete) with the Admin SDK for token revocation.
type AuthClient struct {
	admin   *auth.Client
	toolkit *identitytoolkit.RelyingpartyService
}

func NewAuthClient(ctx context.Context, admin *auth.Client, apiKey string, opts ...option.ClientOption) (*AuthClient, error) {
	opts = append([]option.ClientOption{option.WithAPIKey(apiKey)}, opts...)
	svc, err := identitytoolkit.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity toolkit client: %w", err)
	}

	return &AuthClient{
		admin:   admin,
		toolkit: svc.Relyingparty,
	}, nil
}

var _ service.IdentityService = (*AuthClient)(nil)

func (f *AuthClient) SignUp(ctx context.Context, email, password, displayName string) (*service.Credential, error) {
	resp, err := f.toolkit.SignupNewUser(&identitytoolkit.IdentitytoolkitRelyingpartySignupNewUserRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}

	return &service.Credential{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		IssuedAt:     time.Now(),
	}, nil
}

func (f *AuthClient) SignIn(ctx context.Context, email, password string) (*service.Credential, error) {
	resp, err := f.toolkit.VerifyPassword(&identitytoolkit.IdentitytoolkitRelyingpartyVerifyPasswordRequest{
		Email:             email,
		Password:          password,
		ReturnSecureToken: true,
	}).Context(ctx).Do()
	if err != nil {
		return nil, translate(err)
	}

	return &service.Credential{
		UID:          resp.LocalId,
		Email:        resp.Email,
		IDToken:      resp.IdToken,
		RefreshToken: resp.RefreshToken,
		IssuedAt:     time.Now(),
	}, nil
}

func (f *AuthClient) Reauthenticate(ctx context.Context, uid, email, password string) (*service.Credential, error) {
	cred, err := f.SignIn(ctx, email, password)
	if err != nil {
		return nil, err
	}
	if cred.UID != uid {
		return nil, service.ErrIdentityMismatch
	}
	return cred, nil
}

func (f *AuthClient) Delete(ctx context.Context, idToken string) error {
	_, err := f.toolkit.DeleteAccount(&identitytoolkit.IdentitytoolkitRelyingpartyDeleteAccountRequest{
		IdToken: idToken,
	}).Context(ctx).Do()
	return translate(err)
}

func (f *AuthClient) SignOut(ctx context.Context, uid string) error {
	return f.admin.RevokeRefreshTokens(ctx, uid)
}

// VerifyToken checks an ID token and returns its uid and email claim. Tokens
// issued before a sign-out, and tokens of deleted or disabled users, fail.
func (f *AuthClient) VerifyToken(ctx context.Context, idToken string) (string, string, error) {
	token, err := f.admin.VerifyIDTokenAndCheckRevoked(ctx, idToken)
	if err != nil {
		return "", "", err
	}
	email, _ := token.Claims["email"].(string)
	return token.UID, email, nil
}

// translate maps Identity Toolkit error messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func translate(err error) error {
	if err == nil {
		return nil
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("%w: %v", service.ErrIdentityUnavailable, err)
	}

	code := apiErr.Message
	if i := strings.Index(code, " "); i > 0 {
		code = code[:i]
	}

	switch code {
	case "EMAIL_EXISTS":
		return fmt.Errorf("%w: %v", service.ErrEmailExists, err)
	case "WEAK_PASSWORD":
		return fmt.Errorf("%w: %v", service.ErrWeakPassword, err)
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED", "INVALID_EMAIL":
		return fmt.Errorf("%w: %v", service.ErrInvalidCredentials, err)
	case "CREDENTIAL_TOO_OLD_LOGIN_AGAIN", "TOKEN_EXPIRED", "INVALID_ID_TOKEN":
		return fmt.Errorf("%w: %v", service.ErrRequiresRecentLogin, err)
	}

	if apiErr.Code >= 500 || apiErr.Code == 429 {
		return fmt.Errorf("%w: %v", service.ErrIdentityUnavailable, err)
	}
	return err
}
