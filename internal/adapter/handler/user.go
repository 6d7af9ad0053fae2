package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	apperrors "github.com/taskquest-dev/taskquest/errors"
	userdto "github.com/taskquest-dev/taskquest/internal/adapter/dto/user"
	"github.com/taskquest-dev/taskquest/internal/domain/entities"
	"github.com/taskquest-dev/taskquest/internal/domain/repositories"
	"github.com/taskquest-dev/taskquest/internal/infrastructure/http/middleware"
)

// User handles profile requests for the authenticated user
type User struct {
	userRepo repositories.UserRepository
	logger   *zap.Logger
}

// NewUserHandler creates a new user handler
func NewUserHandler(userRepo repositories.UserRepository, logger *zap.Logger) *User {
	return &User{
		userRepo: userRepo,
		logger:   logger,
	}
}

// Me returns the authenticated user's profile. Identity lives in the
// token, so the row is provisioned on first sight.
func (h *User) Me(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	user, err := h.userRepo.FindByID(c.Request().Context(), userID)
	if err != nil {
		return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
	}

	if user == nil {
		email, _ := middleware.UserEmailFromContext(c)
		user = &entities.User{
			ID:       userID,
			Email:    email,
			TimeZone: "UTC",
		}
		if err := h.userRepo.Create(c.Request().Context(), user); err != nil {
			return HandleError(h.logger, c, apperrors.ErrDBQueryFailed(err))
		}
		if h.logger != nil {
			h.logger.Info("user provisioned",
				zap.String("user_id", userID.String()),
			)
		}
	}

	return HandleSuccess(h.logger, c, userdto.ToProfileResponse(user))
}
