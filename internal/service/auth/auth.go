package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/models"
	"github.com/nkiryanov/tripplanner/internal/repository"
	"github.com/nkiryanov/tripplanner/internal/service/auth/tokenmanager"
)

// Interface to create or compare user password hashes
type PasswordHasher interface {
	// Generate Hash from password
	Hash(password string) (string, error)

	// Compare known hashedPassword and user provided password
	// Must be protected against timing attacks
	Compare(hashedPassword string, password string) error
}

type Config struct {
	// Hasher to use during user signup or login process
	// DefaultHasher if not set
	Hasher PasswordHasher

	Logger logger.Logger
}

type SignupParams struct {
	Email    string
	Password string
	Name     string
}

// Auth service
// Coordinates users storage, token manager and revocation ledger
type AuthService struct {
	// Manager to issue and parse tokens
	tokens *tokenmanager.TokenManager

	// hasher to hash or compare user passwords
	hasher PasswordHasher

	// Long term users data
	storage repository.Storage

	// Refresh tokens and blacklisted access tokens
	ledger repository.RevocationLedger

	logger logger.Logger
}

func NewService(cfg Config, tokens *tokenmanager.TokenManager, storage repository.Storage, ledger repository.RevocationLedger) (*AuthService, error) {
	if tokens == nil || storage == nil || ledger == nil {
		return nil, errors.New("token manager, storage and ledger must not be nil")
	}

	hasher := cfg.Hasher
	if hasher == nil {
		hasher = DefaultHasher
	}

	l := cfg.Logger
	if l == nil {
		l = logger.NewNoOpLogger()
	}

	return &AuthService{
		tokens:  tokens,
		hasher:  hasher,
		storage: storage,
		ledger:  ledger,
		logger:  l,
	}, nil
}

// Signup creates new user with default role
// Returns apperrors.ErrUserAlreadyExists if email is taken
func (s *AuthService) Signup(ctx context.Context, params SignupParams) (models.User, error) {
	hash, err := s.hasher.Hash(params.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("can't use this as password. Err: %w", err)
	}

	var user models.User
	err = s.storage.InTx(ctx, func(storage repository.Storage) error {
		exists, err := storage.User().ExistsByEmail(ctx, params.Email)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.ErrUserAlreadyExists
		}

		user, err = storage.User().CreateUser(ctx, repository.CreateUserParams{
			Email:          params.Email,
			HashedPassword: hash,
			Name:           params.Name,
			Role:           models.RoleUser,
		})
		return err
	})
	if err != nil {
		return models.User{}, fmt.Errorf("can't create user. Err: %w", err)
	}

	return user, nil
}

// Login checks user credentials and issues new token pair
// Unknown email and wrong password are reported the same way: apperrors.ErrInvalidCredentials
func (s *AuthService) Login(ctx context.Context, email string, password string) (models.TokenPair, error) {
	user, err := s.storage.User().GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	if err := s.hasher.Compare(user.HashedPassword, password); err != nil {
		return models.TokenPair{}, apperrors.ErrInvalidCredentials
	}

	return s.issuePair(ctx, user.Email)
}

// Refresh exchanges valid refresh token for new token pair
// The presented token is superseded and can't be used again
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error) {
	claims, err := s.tokens.Parse(refreshToken)
	switch {
	case errors.Is(err, tokenmanager.ErrTokenExpired):
		return models.TokenPair{}, err
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	}

	if claims.Kind != models.TokenKindRefresh {
		return models.TokenPair{}, fmt.Errorf("%w: token kind is %q", apperrors.ErrInvalidRefreshToken, claims.Kind)
	}

	stored, err := s.ledger.GetRefresh(ctx, claims.Subject)
	switch {
	case errors.Is(err, apperrors.ErrRefreshTokenNotFound):
		return models.TokenPair{}, fmt.Errorf("%w: %w", apperrors.ErrInvalidRefreshToken, err)
	case err != nil:
		return models.TokenPair{}, fmt.Errorf("can't get refresh token. Err: %w", err)
	}

	if stored != refreshToken {
		s.logger.Debug("refresh token superseded", "subject", claims.Subject)
		return models.TokenPair{}, apperrors.ErrInvalidRefreshToken
	}

	return s.issuePair(ctx, claims.Subject)
}

// Logout blacklists access token till its expiry and forgets user refresh token
func (s *AuthService) Logout(ctx context.Context, accessToken string, email string) error {
	left, err := s.tokens.RemainingLifetime(accessToken)
	if err != nil {
		return fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	if left > 0 {
		if err := s.ledger.Blacklist(ctx, accessToken, left); err != nil {
			return fmt.Errorf("can't blacklist access token. Err: %w", err)
		}
	}

	if err := s.ledger.DeleteRefresh(ctx, email); err != nil {
		return fmt.Errorf("can't delete refresh token. Err: %w", err)
	}

	return nil
}

// Authenticate returns user the access token was issued for
// Rejected tokens are reported with apperrors.ErrUnauthorized or apperrors.ErrTokenBlacklisted
// Any other error is a storage failure
func (s *AuthService) Authenticate(ctx context.Context, accessToken string) (models.User, error) {
	// Rejection reason is logged by token manager
	if !s.tokens.Validate(accessToken) {
		_, err := s.tokens.Parse(accessToken)
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	claims, err := s.tokens.Parse(accessToken)
	if err != nil {
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	}

	if claims.Kind != models.TokenKindAccess {
		return models.User{}, fmt.Errorf("%w: token kind is %q", apperrors.ErrUnauthorized, claims.Kind)
	}

	blacklisted, err := s.ledger.IsBlacklisted(ctx, accessToken)
	if err != nil {
		return models.User{}, fmt.Errorf("can't check blacklist. Err: %w", err)
	}
	if blacklisted {
		return models.User{}, apperrors.ErrTokenBlacklisted
	}

	user, err := s.storage.User().GetUserByEmail(ctx, claims.Subject)
	switch {
	case errors.Is(err, apperrors.ErrUserNotFound):
		return models.User{}, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, err)
	case err != nil:
		return models.User{}, fmt.Errorf("can't get user. Err: %w", err)
	}

	return user, nil
}

// Issue token pair and store refresh one, so previous refresh token is superseded
func (s *AuthService) issuePair(ctx context.Context, subject string) (models.TokenPair, error) {
	pair, err := s.tokens.IssuePair(subject)
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("token could not generated, sorry. Err: %w", err)
	}

	err = s.ledger.PutRefresh(ctx, subject, pair.Refresh.Value, s.tokens.RefreshTTL())
	if err != nil {
		return models.TokenPair{}, fmt.Errorf("can't store refresh token. Err: %w", err)
	}

	return pair, nil
}
