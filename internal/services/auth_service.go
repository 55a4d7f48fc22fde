package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"toko/internal/models"
	"toko/internal/repositories"
	"toko/internal/security"
)

// bcrypt ignores input past this length.
const maxPasswordBytes = 72

// AuthConfig configures an AuthService.
type AuthConfig struct {
	JWTSecret    string
	TokenTTL     time.Duration
	StoreTimeout time.Duration
}

// AuthService handles registration, login and session resolution.
type AuthService struct {
	userRepo     repositories.UserRepository
	hasher       *security.PasswordHasher
	tokens       *security.TokenCodec
	tokenTTL     time.Duration
	storeTimeout time.Duration

	decoyOnce sync.Once
	decoyHash string
}

// NewAuthService creates a new AuthService.
func NewAuthService(userRepo repositories.UserRepository, cfg AuthConfig) *AuthService {
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = security.DefaultSessionTTL
	}
	if cfg.StoreTimeout <= 0 {
		cfg.StoreTimeout = defaultStoreTimeout
	}
	return &AuthService{
		userRepo:     userRepo,
		hasher:       security.NewPasswordHasher(),
		tokens:       security.NewTokenCodec(cfg.JWTSecret),
		tokenTTL:     cfg.TokenTTL,
		storeTimeout: cfg.StoreTimeout,
	}
}

// TokenTTL is the lifetime of the session tokens this service issues.
func (s *AuthService) TokenTTL() time.Duration {
	return s.tokenTTL
}

// Register creates an account and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	if len(password) > maxPasswordBytes {
		return nil, "", ErrPasswordTooLong
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	existing, err := s.userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil && existing != nil:
		return nil, "", ErrEmailTaken
	case err != nil && !errors.Is(err, repositories.ErrUserNotFound):
		return nil, "", fmt.Errorf("failed to check email: %w", err)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	user := &models.User{
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, "", ErrEmailTaken
		}
		return nil, "", fmt.Errorf("failed to register user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	return user, token, nil
}

// Login checks credentials and returns the user with a fresh session token.
// Unknown emails and wrong passwords both yield ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			// Burn the same bcrypt time as a real comparison.
			s.hasher.Verify(password, s.decoy())
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("failed to issue session: %w", err)
	}
	return user, token, nil
}

// ResolveSession maps a session token to its user. A missing, invalid or
// expired token, or one naming a user that no longer exists, yields a nil
// user and a nil error. An error is returned only when the store fails.
func (s *AuthService) ResolveSession(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	userID, err := s.tokens.Verify(token)
	if err != nil {
		slog.Debug("session token rejected", slog.Any("err", err))
		return nil, nil
	}

	ctx, cancel := context.WithTimeout(ctx, s.storeTimeout)
	defer cancel()

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load session user: %w", err)
	}
	return user, nil
}

func (s *AuthService) decoy() string {
	s.decoyOnce.Do(func() {
		s.decoyHash, _ = s.hasher.Hash("decoy-password-for-unknown-accounts")
	})
	return s.decoyHash
}
