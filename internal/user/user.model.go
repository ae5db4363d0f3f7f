package user

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID               uuid.UUID  `json:"id"`
	Name             string     `json:"name"`
	Email            string     `json:"email"`
	PasswordHash     string     `json:"-"`
	CurrentStreak    int        `json:"currentStreak"`
	LastActivityDate *time.Time `json:"lastActivityDate,omitempty"`
	CreatedAt        time.Time  `json:"createdAt"`
}

// PublicUser is the shape returned by the /user/bulk listing.
type PublicUser struct {
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}
