package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/yukikurage/membership-api/internal/models"
	"github.com/yukikurage/membership-api/internal/notify"
	"github.com/yukikurage/membership-api/internal/repository"
	"github.com/yukikurage/membership-api/internal/security"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrDuplicateEmail       = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("incorrect email or password")
	ErrInvalidEmail         = errors.New("email is required")
	ErrPasswordRequired     = errors.New("password is required")
	ErrUserNotFound         = errors.New("user not found")
	ErrFailedToHashPassword = errors.New("failed to hash password")
)

// AuthService owns user identities and credentials.
type AuthService struct {
	store    *repository.Store
	hasher   security.PasswordHasher
	notifier notify.Enqueuer
	log      *zap.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(store *repository.Store, hasher security.PasswordHasher, notifier notify.Enqueuer, log *zap.Logger) *AuthService {
	return &AuthService{
		store:    store,
		hasher:   hasher,
		notifier: notifier,
		log:      log.Named("auth"),
	}
}

// SignupInput represents the required information to create a new account.
type SignupInput struct {
	Email            string
	Password         string
	OrganizationName string
	Personal         bool
}

// SignupResult is everything signup creates.
type SignupResult struct {
	User         *models.User
	Organization *models.Organization
	Member       *models.Member
}

// Signup creates a user, an organization with its bootstrap roles, and the
// owner membership in one transaction.
func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*SignupResult, error) {
	orgName := strings.TrimSpace(input.OrganizationName)
	if orgName == "" {
		if !input.Personal {
			return nil, ErrInvalidOrganizationName
		}
		orgName = fmt.Sprintf("%s's organization", models.NormalizeEmail(input.Email))
	}

	var result SignupResult
	err := s.store.Transaction(ctx, func(tx *repository.Store) error {
		user, err := s.createUser(ctx, tx, input.Email, input.Password, models.UserStatusActive, false)
		if err != nil {
			return err
		}

		org, member, err := createOrganizationWithOwner(ctx, tx, orgName, input.Personal, user.ID)
		if err != nil {
			return err
		}

		result = SignupResult{User: user, Organization: org, Member: member}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("user signed up",
		zap.Uint64("user_id", result.User.ID),
		zap.Uint64("org_id", result.Organization.ID),
	)
	s.notifier.Enqueue(welcomeMessage(result.User.Email))
	return &result, nil
}

// CreateUser registers an active user without an organization.
func (s *AuthService) CreateUser(ctx context.Context, email, password string) (*models.User, error) {
	return s.createUser(ctx, s.store, email, password, models.UserStatusActive, false)
}

func (s *AuthService) createUser(ctx context.Context, repo *repository.Store, email, password string, status models.UserStatus, mustRotate bool) (*models.User, error) {
	email = models.NormalizeEmail(email)
	if email == "" {
		return nil, ErrInvalidEmail
	}
	if password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := repo.Users.FindByEmail(ctx, email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, ErrFailedToHashPassword
	}

	user := &models.User{
		Email:              email,
		PasswordHash:       hash,
		Status:             status,
		MustRotatePassword: mustRotate,
	}
	if err := repo.Users.Create(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

// FindByEmail looks a user up by normalized email.
func (s *AuthService) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.store.Users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}

// Authenticate verifies credentials. An unknown email and a wrong password
// both yield ErrInvalidCredentials.
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// ResetPassword replaces the user's password, clearing any pending rotation.
func (s *AuthService) ResetPassword(ctx context.Context, email, newPassword string) error {
	if newPassword == "" {
		return ErrPasswordRequired
	}

	user, err := s.FindByEmail(ctx, email)
	if err != nil {
		return err
	}

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return ErrFailedToHashPassword
	}

	if err := s.store.Users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.log.Info("password reset", zap.Uint64("user_id", user.ID))
	s.notifier.Enqueue(passwordResetMessage(user.Email))
	return nil
}

// GetUser retrieves a user by ID.
func (s *AuthService) GetUser(ctx context.Context, id uint64) (*models.User, error) {
	user, err := s.store.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	return user, nil
}
