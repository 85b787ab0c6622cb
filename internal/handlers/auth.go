package handlers

import (
	"errors"
	"net/http"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/handlers/middleware"
	"github.com/nkiryanov/tripplanner/internal/handlers/render"
	"github.com/nkiryanov/tripplanner/internal/handlers/userctx"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/models"
	"github.com/nkiryanov/tripplanner/internal/service/auth"
)

type tokenResponse struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func newTokenResponse(pair models.TokenPair) tokenResponse {
	return tokenResponse{AccessToken: pair.Access.Value, RefreshToken: pair.Refresh.Value}
}

func handleSignup(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required,email,max=255"`
		Password string `json:"password" validate:"required,password"`
		Name     string `json:"name" validate:"required,max=50"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		user, err := authService.Signup(r.Context(), auth.SignupParams{
			Email:    data.Email,
			Password: data.Password,
			Name:     data.Name,
		})

		switch {
		case err == nil:
			render.JSONWithStatus(w, newUserResponse(user), http.StatusCreated)
		case errors.Is(err, apperrors.ErrUserAlreadyExists):
			render.ServiceError(w, render.ErrDuplicateEmail)
		default:
			l.Error("Failed to signup user", "error", err)
			render.ServiceError(w, render.ErrInternal)
		}
	})
}

func handleLogin(authService authService, l logger.Logger) http.Handler {
	type request struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Login(r.Context(), data.Email, data.Password)

		switch {
		case err == nil:
			render.JSON(w, newTokenResponse(pair))
		case errors.Is(err, apperrors.ErrInvalidCredentials):
			render.ServiceError(w, render.ErrInvalidCredentials)
		default:
			l.Error("Failed to login user", "error", err)
			render.ServiceError(w, render.ErrInternal)
		}
	})
}

func handleTokenRefresh(authService authService, l logger.Logger) http.Handler {
	type request struct {
		RefreshToken string `json:"refreshToken" validate:"required"`
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, err := render.BindAndValidate[request](w, r)
		if err != nil {
			return
		}

		pair, err := authService.Refresh(r.Context(), data.RefreshToken)

		switch {
		case err == nil:
			render.JSON(w, newTokenResponse(pair))
		case errors.Is(err, apperrors.ErrTokenExpired):
			render.ServiceError(w, render.ErrExpiredToken)
		case errors.Is(err, apperrors.ErrInvalidRefreshToken):
			l.Debug("Refresh token rejected", "error", err)
			render.ServiceError(w, render.ErrInvalidRefreshToken)
		default:
			l.Error("Failed to refresh tokens", "error", err)
			render.ServiceError(w, render.ErrInternal)
		}
	})
}

func handleLogout(authService authService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, render.ErrUnauthorized)
			return
		}

		// Could not be missed if user is in context
		token, _ := middleware.BearerToken(r)

		err := authService.Logout(r.Context(), token, user.Email)

		switch {
		case err == nil:
			render.JSON(w, nil)
		case errors.Is(err, apperrors.ErrUnauthorized):
			render.ServiceError(w, render.ErrUnauthorized)
		default:
			l.Error("Failed to logout user", "error", err)
			render.ServiceError(w, render.ErrInternal)
		}
	})
}
