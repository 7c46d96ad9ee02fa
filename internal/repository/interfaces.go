package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
)

// UserRepository exposes persistence for user records. Absent rows surface
// domain.ErrNotFound; uniqueness violations surface domain.ErrConflict.
type UserRepository interface {
	GetByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)
	Create(ctx context.Context, user domain.User) (domain.User, error)
	Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error)
	Delete(ctx context.Context, id uuid.UUID) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// TodoRepository persists todo items. Every operation is scoped to the owning
// user, so a caller can never observe another user's rows.
type TodoRepository interface {
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Todo, error)
	GetByID(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error)
	Create(ctx context.Context, todo domain.Todo) (domain.Todo, error)
	Update(ctx context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (domain.Todo, error)
	Delete(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error)
}
