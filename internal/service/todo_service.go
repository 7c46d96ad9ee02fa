package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/repository"
)

// TodoService implements ownership-scoped todo CRUD. Every operation takes
// the current user's id from the identity resolver, never from the payload.
type TodoService struct {
	todos  repository.TodoRepository
	logger *zap.Logger
	tracer trace.Tracer
}

func NewTodoService(todos repository.TodoRepository, logger *zap.Logger) *TodoService {
	return &TodoService{
		todos:  todos,
		logger: logger,
		tracer: otel.Tracer("github.com/MoosaAfzal2/poetry-todo-api/internal/service"),
	}
}

func (s *TodoService) List(ctx context.Context, userID uuid.UUID) ([]domain.Todo, error) {
	ctx, span := s.span(ctx, "TodoService.List")
	defer span.End()

	todos, err := s.todos.ListByUser(ctx, userID)
	if err != nil {
		span.RecordError(err)
		return nil, s.internal("list todos", err)
	}
	if todos == nil {
		todos = []domain.Todo{}
	}
	return todos, nil
}

func (s *TodoService) Get(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error) {
	ctx, span := s.span(ctx, "TodoService.Get")
	defer span.End()

	todo, err := s.todos.GetByID(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Todo{}, errNotFound("todo not found")
		}
		span.RecordError(err)
		return domain.Todo{}, s.internal("get todo", err)
	}
	return todo, nil
}

func (s *TodoService) Create(ctx context.Context, userID uuid.UUID, title, description string, completed bool) (domain.Todo, error) {
	ctx, span := s.span(ctx, "TodoService.Create")
	defer span.End()

	if strings.TrimSpace(title) == "" {
		return domain.Todo{}, errInvalidInput("title is required")
	}

	id, err := uuid.NewV7()
	if err != nil {
		span.RecordError(err)
		return domain.Todo{}, s.internal("generate todo id", err)
	}

	created, err := s.todos.Create(ctx, domain.Todo{
		ID:          id,
		UserID:      userID,
		Title:       title,
		Description: description,
		IsCompleted: completed,
	})
	if err != nil {
		span.RecordError(err)
		return domain.Todo{}, s.internal("create todo", err)
	}
	return created, nil
}

func (s *TodoService) Update(ctx context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (domain.Todo, error) {
	ctx, span := s.span(ctx, "TodoService.Update")
	defer span.End()

	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return domain.Todo{}, errInvalidInput("title must not be empty")
	}

	updated, err := s.todos.Update(ctx, id, userID, patch)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Todo{}, errNotFound("todo not found")
		}
		span.RecordError(err)
		return domain.Todo{}, s.internal("update todo", err)
	}
	return updated, nil
}

func (s *TodoService) Delete(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error) {
	ctx, span := s.span(ctx, "TodoService.Delete")
	defer span.End()

	deleted, err := s.todos.Delete(ctx, id, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.Todo{}, errNotFound("todo not found")
		}
		span.RecordError(err)
		return domain.Todo{}, s.internal("delete todo", err)
	}
	return deleted, nil
}

func (s *TodoService) internal(op string, err error) *Error {
	if s.logger != nil {
		s.logger.Error(op, zap.Error(err))
	}
	return errInternal("an unexpected error occurred")
}

func (s *TodoService) span(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}
