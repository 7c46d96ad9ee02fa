package domain

import (
	"time"

	"github.com/google/uuid"
)

// Todo is a task item owned by exactly one user.
type Todo struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"user_id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	IsCompleted bool      `json:"iscompleted"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TodoPatch carries a partial todo update. Nil fields are left untouched.
type TodoPatch struct {
	Title       *string
	Description *string
	IsCompleted *bool
}
