package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nkiryanov/tripplanner/internal/apperrors"
	"github.com/nkiryanov/tripplanner/internal/handlers/render"
	"github.com/nkiryanov/tripplanner/internal/handlers/userctx"
	"github.com/nkiryanov/tripplanner/internal/logger"
	"github.com/nkiryanov/tripplanner/internal/models"
)

type userResponse struct {
	ID         uuid.UUID `json:"id"`
	Email      string    `json:"email"`
	Name       string    `json:"name"`
	Role       string    `json:"role"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

func newUserResponse(u models.User) userResponse {
	return userResponse{
		ID:         u.ID,
		Email:      u.Email,
		Name:       u.Name,
		Role:       u.Role,
		CreatedAt:  u.CreatedAt,
		ModifiedAt: u.ModifiedAt,
	}
}

func handleUserMe(userService userService, l logger.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := userctx.FromContext(r.Context())
		if !ok {
			render.ServiceError(w, render.ErrUnauthorized)
			return
		}

		// Read fresh profile, the one in context may be outdated
		user, err := userService.GetUserByID(r.Context(), user.ID)

		switch {
		case err == nil:
			render.JSON(w, newUserResponse(user))
		case errors.Is(err, apperrors.ErrUserNotFound):
			render.ServiceError(w, render.ErrUserNotFound)
		default:
			l.Error("Failed to get user", "error", err)
			render.ServiceError(w, render.ErrInternal)
		}
	})
}
