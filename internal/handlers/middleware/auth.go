package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/handlers/render"
	"github.com/nkiryanov/tripplanner/internal/handlers/userctx"
	"github.com/nkiryanov/tripplanner/internal/models"
)

const bearerPrefix = "Bearer "

type authService interface {
	// Return user the access token was issued for
	// Has to return apperrors.ErrTokenBlacklisted for logged out token
	// and apperrors.ErrUnauthorized for any other rejected token
	Authenticate(ctx context.Context, accessToken string) (models.User, error)
}

type authLogger interface {
	Debug(msg string, args ...any)
	Error(msg string, args ...any)
}

// BearerToken extracts token from 'Authorization: Bearer <token>' header
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if !strings.HasPrefix(header, bearerPrefix) {
		return "", false
	}

	token := header[len(bearerPrefix):]
	return token, token != ""
}

// Authenticate puts user to request context if request has valid access token
// Requests without token or with invalid one continue anonymously,
// logged out tokens are rejected right away
func Authenticate(as authService, l authLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := BearerToken(r)
			if !ok {
				next.ServeHTTP(w, r)
				return
			}

			user, err := as.Authenticate(r.Context(), token)
			switch {
			case err == nil:
				next.ServeHTTP(w, r.WithContext(userctx.New(r.Context(), user)))
			case errors.Is(err, apperrors.ErrTokenBlacklisted):
				render.ServiceError(w, render.ErrBlacklistedToken)
			case errors.Is(err, apperrors.ErrUnauthorized):
				l.Debug("access token rejected", "error", err)
				next.ServeHTTP(w, r)
			default:
				l.Error("failed to authenticate request", "error", err)
				render.ServiceError(w, render.ErrInternal)
			}
		})
	}
}

// RequireUser rejects requests without authenticated user
func RequireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := userctx.FromContext(r.Context()); !ok {
			render.ServiceError(w, render.ErrUnauthorized)
			return
		}

		next.ServeHTTP(w, r)
	})
}
