package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"giveget/internal/domain/entity"
	"giveget/internal/domain/repository"
	"giveget/internal/domain/service"
	apperrors "giveget/pkg/errors"
	"giveget/pkg/logger"
)

// AccountUseCase drives registration, login, profile edits, logout and the
// cascading account deletion with its reauthentication detour.
type AccountUseCase struct {
	profiles repository.ProfileRepository
	posts    repository.PostRepository
	identity service.IdentityService
	sessions *SessionStore
	now      func() time.Time
}

func NewAccountUseCase(
	profiles repository.ProfileRepository,
	posts repository.PostRepository,
	identity service.IdentityService,
	sessions *SessionStore,
) *AccountUseCase {
	return &AccountUseCase{
		profiles: profiles,
		posts:    posts,
		identity: identity,
		sessions: sessions,
		now:      time.Now,
	}
}

type RegisterInput struct {
	Name            string `validate:"required,max=100"`
	Email           string `validate:"required,email"`
	Password        string `validate:"required,min=6"`
	ConfirmPassword string `validate:"eqfield=Password"`
}

type LoginInput struct {
	Email    string `validate:"required,email"`
	Password string `validate:"required"`
}

type UpdateProfileInput struct {
	Name     string `validate:"required,max=100"`
	City     string `validate:"max=50"`
	Phone    string `validate:"max=20"`
	Bio      string `validate:"max=200"`
	PhotoURL string `validate:"omitempty,url"`
}

type AuthResult struct {
	UID          string
	Email        string
	Token        string
	RefreshToken string
	State        AccountState
	Profile      *entity.Profile
}

func (uc *AccountUseCase) Register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.Email = strings.TrimSpace(input.Email)

	result, err := uc.register(ctx, input)
	observe("register", err)
	return result, err
}

func (uc *AccountUseCase) register(ctx context.Context, input RegisterInput) (*AuthResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s := newSession()
	s.transition(StateRegistering)

	cred, err := uc.identity.SignUp(ctx, input.Email, input.Password, input.Name)
	if err != nil {
		s.transition(StateIdle)
		switch {
		case errors.Is(err, service.ErrEmailExists):
			return nil, apperrors.EmailInUse(err)
		case errors.Is(err, service.ErrWeakPassword):
			return nil, apperrors.WeakPassword(err)
		}
		logger.Error("Sign-up for %s failed: %v", input.Email, err)
		return nil, apperrors.RegistrationFailed(err)
	}

	email := cred.Email
	if email == "" {
		email = input.Email
	}

	profile := &entity.Profile{
		UID:       cred.UID,
		Name:      input.Name,
		Email:     email,
		CreatedAt: uc.now(),
	}
	if err := uc.profiles.Create(ctx, profile); err != nil {
		s.transition(StateIdle)
		logger.Error("Identity %s created but profile write failed: %v", cred.UID, err)
		return nil, apperrors.RegistrationFailed(err)
	}

	s.UID = cred.UID
	s.Email = email
	s.IDToken = cred.IDToken
	s.Profile = profile
	s.transition(StateAuthenticated)
	uc.sessions.Put(s)

	logger.Info("Registered identity %s", cred.UID)
	return &AuthResult{
		UID:          cred.UID,
		Email:        email,
		Token:        cred.IDToken,
		RefreshToken: cred.RefreshToken,
		State:        StateAuthenticated,
		Profile:      copyProfile(profile),
	}, nil
}

func (uc *AccountUseCase) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	input.Email = strings.TrimSpace(input.Email)

	result, err := uc.login(ctx, input)
	observe("login", err)
	return result, err
}

func (uc *AccountUseCase) login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s := newSession()
	s.transition(StateLoginInProgress)

	cred, err := uc.identity.SignIn(ctx, input.Email, input.Password)
	if err != nil {
		s.transition(StateIdle)
		logger.Warn("Login failed for %s: %v", input.Email, err)
		return nil, apperrors.InvalidCredentials(err)
	}

	profile, err := uc.profiles.GetByID(ctx, cred.UID)
	if err != nil {
		logger.Warn("Profile for %s unavailable after login: %v", cred.UID, err)
		profile = nil
	}

	s.UID = cred.UID
	s.Email = cred.Email
	s.IDToken = cred.IDToken
	s.Profile = profile
	s.transition(StateAuthenticated)
	uc.sessions.Put(s)

	return &AuthResult{
		UID:          cred.UID,
		Email:        cred.Email,
		Token:        cred.IDToken,
		RefreshToken: cred.RefreshToken,
		State:        StateAuthenticated,
		Profile:      copyProfile(profile),
	}, nil
}

func (uc *AccountUseCase) GetProfile(ctx context.Context, id Identity) (*entity.Profile, error) {
	s, err := uc.resume(id)
	if err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.adopt(id)

	profile, err := uc.profiles.GetByID(ctx, s.UID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Profile", err)
		}
		return nil, remoteError("Unable to load profile", err)
	}

	s.Profile = profile
	return copyProfile(profile), nil
}

// UpdateProfile rewrites the editable profile fields. The cached profile
// changes only after the write succeeded.
func (uc *AccountUseCase) UpdateProfile(ctx context.Context, id Identity, input UpdateProfileInput) (*entity.Profile, error) {
	input.Name = strings.TrimSpace(input.Name)
	input.City = strings.TrimSpace(input.City)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Bio = strings.TrimSpace(input.Bio)
	input.PhotoURL = strings.TrimSpace(input.PhotoURL)

	profile, err := uc.updateProfile(ctx, id, input)
	observe("update_profile", err)
	return profile, err
}

func (uc *AccountUseCase) updateProfile(ctx context.Context, id Identity, input UpdateProfileInput) (*entity.Profile, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	s, err := uc.resume(id)
	if err != nil {
		return nil, err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.adopt(id)

	if s.state != StateAuthenticated {
		return nil, apperrors.Conflict(fmt.Sprintf("profile cannot be edited while %s", s.state))
	}

	update := entity.ProfileUpdate{
		Name:     input.Name,
		City:     input.City,
		Phone:    input.Phone,
		Bio:      input.Bio,
		PhotoURL: input.PhotoURL,
	}
	if err := uc.profiles.Update(ctx, s.UID, update); err != nil {
		logger.Error("Profile update for %s failed: %v", s.UID, err)
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("Profile", err)
		}
		return nil, remoteError("Unable to update profile", err)
	}

	if s.Profile == nil {
		profile, err := uc.profiles.GetByID(ctx, s.UID)
		if err != nil {
			logger.Warn("Reloading profile %s failed: %v", s.UID, err)
			profile = &entity.Profile{UID: s.UID, Email: s.Email}
			profile.Apply(update)
		}
		s.Profile = profile
	} else {
		s.Profile.Apply(update)
	}

	return copyProfile(s.Profile), nil
}

// DeleteAccount removes every post and request owned by the caller, then the
// profile, then the identity, one awaited step at a time. Nothing is rolled
// back: when the identity step demands a recent login the content is already
// gone and the session waits in ReauthRequired.
func (uc *AccountUseCase) DeleteAccount(ctx context.Context, id Identity) error {
	s, err := uc.resume(id)
	if err != nil {
		observe("delete_account", err)
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.adopt(id)

	// A caller already in ReauthRequired may retry with a bearer it renewed
	// on its own.
	next := StatePendingDeletion
	if s.state == StateReauthRequired {
		next = StateDeleting
	}
	if err := s.transition(next); err != nil {
		conflict := apperrors.Conflict(fmt.Sprintf("account cannot be deleted while %s", s.state))
		observe("delete_account", conflict)
		return conflict
	}

	err = uc.runDeletion(ctx, s, id)
	observe("delete_account", err)
	return err
}

// Reauthenticate proves the password again and immediately retries the
// deletion. A wrong password leaves the session in ReauthRequired.
func (uc *AccountUseCase) Reauthenticate(ctx context.Context, id Identity, password string) error {
	err := uc.reauthenticate(ctx, id, password)
	observe("reauthenticate", err)
	return err
}

func (uc *AccountUseCase) reauthenticate(ctx context.Context, id Identity, password string) error {
	if password == "" {
		return apperrors.Validation("password is required", nil)
	}

	s, err := uc.resume(id)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.adopt(id)

	if s.state != StateReauthRequired {
		return apperrors.Conflict(fmt.Sprintf("no reauthentication pending (state %s)", s.state))
	}

	cred, err := uc.identity.Reauthenticate(ctx, s.UID, s.Email, password)
	if err != nil {
		logger.Warn("Reauthentication for %s failed: %v", s.UID, err)
		return apperrors.WrongPassword(err)
	}

	s.IDToken = cred.IDToken
	s.transition(StateDeleting)
	return uc.runDeletion(ctx, s, id)
}

// CancelReauth abandons a pending deletion and returns to Authenticated.
func (uc *AccountUseCase) CancelReauth(ctx context.Context, id Identity) error {
	s, err := uc.resume(id)
	if err != nil {
		return err
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.state != StateReauthRequired {
		return apperrors.Conflict(fmt.Sprintf("no reauthentication pending (state %s)", s.state))
	}
	return s.transition(StateAuthenticated)
}

// Logout always clears the local session and retires the caller's bearer.
// Backend failures are only logged.
func (uc *AccountUseCase) Logout(ctx context.Context, id Identity) {
	retired := []string{id.IDToken}
	if s, ok := uc.sessions.Get(id.UID); ok {
		s.mutex.Lock()
		retired = append(retired, s.IDToken)
		s.state = StateLoggedOut
		s.Profile = nil
		s.IDToken = ""
		s.mutex.Unlock()
		uc.sessions.Remove(s)
	}
	uc.sessions.Retire(retired...)

	if err := uc.identity.SignOut(ctx, id.UID); err != nil {
		logger.Warn("Sign-out for %s failed: %v", id.UID, err)
		observe("logout", remoteError("Sign-out failed", err))
		return
	}
	observe("logout", nil)
}

// SessionState reports where the caller is in the account lifecycle.
func (uc *AccountUseCase) SessionState(id Identity) AccountState {
	s, err := uc.sessions.Resume(id)
	if err != nil {
		return StateLoggedOut
	}
	s.mutex.Lock()
	defer s.mutex.Unlock()
	return s.state
}

// resume maps a retired bearer to Unauthorized.
func (uc *AccountUseCase) resume(id Identity) (*Session, error) {
	s, err := uc.sessions.Resume(id)
	if err != nil {
		return nil, apperrors.Unauthorized("Session has ended, please log in again", err)
	}
	return s, nil
}

// runDeletion retires both the session's token and the caller's bearer once
// the identity is gone; after a reauthentication they differ.
func (uc *AccountUseCase) runDeletion(ctx context.Context, s *Session, caller Identity) error {
	log := logger.With("uid", s.UID)

	err := uc.cascade(ctx, s)
	switch {
	case err == nil:
		s.transition(StateLoggedOut)
		uc.sessions.Retire(s.IDToken, caller.IDToken)
		s.Profile = nil
		s.IDToken = ""
		uc.sessions.Remove(s)
		log.Info("Deleted account")
		return nil

	case errors.Is(err, service.ErrRequiresRecentLogin):
		s.transition(StateReauthRequired)
		log.Info("Account deletion needs a recent login")
		return apperrors.RequiresRecentLogin(err)

	default:
		s.transition(StateAuthenticated)
		log.Errorw("Account deletion aborted", "error", err)
		return remoteError("Unable to delete account", err)
	}
}

func (uc *AccountUseCase) cascade(ctx context.Context, s *Session) error {
	for _, postType := range entity.PostTypes {
		owned, err := uc.posts.ListByOwner(ctx, postType, s.UID)
		if err != nil {
			return fmt.Errorf("list %s: %w", postType.Collection(), err)
		}
		for _, post := range owned {
			if err := uc.posts.Delete(ctx, postType, post.ID); err != nil && !errors.Is(err, repository.ErrNotFound) {
				return fmt.Errorf("delete %s/%s: %w", postType.Collection(), post.ID, err)
			}
		}
	}

	if err := uc.profiles.Delete(ctx, s.UID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("delete profile: %w", err)
	}

	if err := uc.identity.Delete(ctx, s.IDToken); err != nil {
		return fmt.Errorf("delete identity: %w", err)
	}
	return nil
}

func copyProfile(p *entity.Profile) *entity.Profile {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
