package streak

import (
	"time"

	"github.com/google/uuid"
)

// State is the per-user streak row. LastActivityDate is nil until the
// user records their first completion ever.
type State struct {
	UserID           uuid.UUID  `json:"user_id" db:"user_id"`
	CurrentStreak    int        `json:"current_streak" db:"current_streak"`
	LastActivityDate *time.Time `json:"last_activity_date" db:"last_activity_date"`
}

// CompletionEvent is an append-only record of one task completed on one
// calendar day. At most one row exists per (user, task, day).
type CompletionEvent struct {
	ID            uuid.UUID `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	TaskID        uuid.UUID `json:"task_id" db:"task_id"`
	CompletedDate time.Time `json:"completed_date" db:"completed_date"`
	TaskTitle     string    `json:"task_title" db:"task_title"`
	CompletedAt   time.Time `json:"completed_at" db:"completed_at"`
}
