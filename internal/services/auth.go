package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/taskhive/apiserver/internal/store"
	"github.com/taskhive/apiserver/types"
	"golang.org/x/crypto/bcrypt"
)

// ErrEmailTaken is returned when a registration or profile update collides
// with another user's email address.
var ErrEmailTaken = errors.New("email already registered")

// ErrInvalidCredentials is returned for every failed login, whether the email
// is unknown or the password is wrong. A single error kind keeps the API from
// leaking which email addresses are registered.
var ErrInvalidCredentials = errors.New("invalid credentials")

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, user types.User) (types.User, error)
}

// AuthService encapsulates account use-cases: registration, credential
// verification, current-user resolution, and profile updates.
type AuthService struct {
	repo UserRepository
}

func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// ProfilePatch is a partial profile update; nil fields are left unchanged.
type ProfilePatch struct {
	Name  *string
	Email *string
}

// Register creates a new account. The plaintext password is hashed with
// bcrypt and never stored.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (types.User, error) {
	email = NormalizeEmail(email)

	if _, err := s.repo.GetByEmail(ctx, email); err == nil {
		return types.User{}, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("checking email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return types.User{}, fmt.Errorf("hashing password: %w", err)
	}

	user, err := s.repo.Create(ctx, types.User{
		ID:           uuid.New(),
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hashed),
	})
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, fmt.Errorf("creating user: %w", err)
	}
	return user, nil
}

// Login verifies credentials and returns the matching user.
func (s *AuthService) Login(ctx context.Context, email, password string) (types.User, error) {
	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID resolves a user id, typically one carried by a session token.
func (s *AuthService) GetByID(ctx context.Context, id uuid.UUID) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

// UpdateProfile applies a partial update to name and/or email. Changing the
// email to one held by a different user fails with ErrEmailTaken.
func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, patch ProfilePatch) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, err
	}

	if patch.Name != nil {
		user.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Email != nil {
		email := NormalizeEmail(*patch.Email)
		if email != user.Email {
			existing, err := s.repo.GetByEmail(ctx, email)
			if err == nil && existing.ID != id {
				return types.User{}, ErrEmailTaken
			}
			if err != nil && !errors.Is(err, store.ErrNotFound) {
				return types.User{}, fmt.Errorf("checking email: %w", err)
			}
		}
		user.Email = email
	}

	updated, err := s.repo.Update(ctx, user)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			return types.User{}, ErrEmailTaken
		}
		return types.User{}, err
	}
	return updated, nil
}

// NormalizeEmail trims and lowercases an address so that uniqueness and
// lookups are case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
