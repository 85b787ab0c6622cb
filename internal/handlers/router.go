package handlers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/nkiryanov/tripplanner/internal/handlers/middleware"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/models"
	"github.com/nkiryanov/tripplanner/internal/service/auth"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	authService authService,
	userService userService,
	logger logger.Logger,
) http.Handler {
	// Public routes never look at Authorization header
	protected := func(h http.Handler) http.Handler {
		return chain(h,
			middleware.Authenticate(authService, logger),
			middleware.RequireUser,
		)
	}

	api := http.NewServeMux()

	api.Handle("POST /auth/signup", handleSignup(authService, logger))
	api.Handle("POST /auth/login", handleLogin(authService, logger))
	api.Handle("POST /auth/refresh", handleTokenRefresh(authService, logger))
	api.Handle("POST /auth/logout", protected(handleLogout(authService, logger)))

	api.Handle("GET /users/me", protected(handleUserMe(userService, logger)))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", api))

	return middleware.LoggerMiddleware(logger)(root)
}

type authService interface {
	// Create user with default role
	// Has to return apperrors.ErrUserAlreadyExists if email is taken
	Signup(ctx context.Context, params auth.SignupParams) (models.User, error)

	// Login user with email and password
	// Has to return apperrors.ErrInvalidCredentials if user not found or password is wrong
	Login(ctx context.Context, email string, password string) (models.TokenPair, error)

	// Refresh tokens using refresh token
	// If token expired: has to return apperrors.ErrTokenExpired
	// If token is not the latest issued one: has to return apperrors.ErrInvalidRefreshToken
	Refresh(ctx context.Context, refreshToken string) (models.TokenPair, error)

	// Revoke access token and forget refresh token of the user
	Logout(ctx context.Context, accessToken string, email string) error

	// Return user the access token was issued for
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

type userService interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (models.User, error)
}
