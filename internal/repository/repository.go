package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/tripplanner/internal/models"
)

type CreateUserParams struct {
	Email          string
	HashedPassword string
	Name           string
	Role           string
}

// User repository interface
type UserRepo interface {
	// Create user
	// If user with email exists already has to return error apperrors.ErrUserAlreadyExists
	CreateUser(ctx context.Context, params CreateUserParams) (models.User, error)

	// Get user by it's id or email
	// If user not found must return apperrors.ErrUserNotFound
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)

	// Report whether user with exactly this email exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// Storage groups repositories sharing one connection or transaction
type Storage interface {
	User() UserRepo

	// Run fn in transaction: commit if fn returns nil, rollback otherwise
	InTx(ctx context.Context, fn func(Storage) error) error
}

// Revocation ledger: refresh records per subject and blacklisted access tokens
// Every method touches a single key, entries disappear by ttl
type RevocationLedger interface {
	// Store refresh token for subject, overwriting previous one
	PutRefresh(ctx context.Context, subject string, token string, ttl time.Duration) error

	// Return stored refresh token
	// If nothing stored must return apperrors.ErrRefreshTokenNotFound
	GetRefresh(ctx context.Context, subject string) (string, error)

	// Delete refresh token. Deleting absent record is not an error
	DeleteRefresh(ctx context.Context, subject string) error

	// Blacklist access token for ttl. Must do nothing if ttl <= 0
	Blacklist(ctx context.Context, accessToken string, ttl time.Duration) error

	IsBlacklisted(ctx context.Context, accessToken string) (bool, error)
}
