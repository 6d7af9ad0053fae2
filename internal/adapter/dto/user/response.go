package user

import (
	"time"

	"github.com/google/uuid"

	"github.com/taskquest-dev/taskquest/internal/domain/entities"
)

// ProfileResponse is the authenticated user's profile
type ProfileResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name,omitempty"`
	TimeZone  string    `json:"time_zone"`
	CreatedAt time.Time `json:"created_at"`
}

// ToProfileResponse converts a user entity to a profile response
func ToProfileResponse(u *entities.User) ProfileResponse {
	return ProfileResponse{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		TimeZone:  u.TimeZone,
		CreatedAt: u.CreatedAt,
	}
}
