package entities

import (
	"time"

	"github.com/google/uuid"
)

// User is the owner of tasks, meetings and a reward account.
// Authentication and profile management happen upstream; the engine only
// needs the id and the configured time zone for streak day boundaries.
type User struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email     string    `json:"email" gorm:"type:varchar(255);not null;unique"`
	Name      string    `json:"name" gorm:"type:varchar(255)"`
	TimeZone  string    `json:"time_zone" gorm:"type:varchar(64);not null;default:'UTC'"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}
