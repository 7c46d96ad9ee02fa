package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
)

// Compile-time interface assertions.
var (
	_ UserRepository = (*PostgresUserRepo)(nil)
	_ TodoRepository = (*PostgresTodoRepo)(nil)
)

const uniqueViolationCode = "23505"

func translateErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ErrNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return domain.ErrConflict
	}
	return fmt.Errorf("%s: %w", op, err)
}

// PostgresUserRepo implements UserRepository on a pgx pool.
type PostgresUserRepo struct {
	db *pgxpool.Pool
}

func NewPostgresUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{db: pool}
}

const userColumns = `id, email, username, full_name, password_hash, role, is_active, email_verified, created_at, updated_at`

func scanUser(row pgx.Row) (domain.User, error) {
	var u domain.User
	err := row.Scan(
		&u.ID,
		&u.Email,
		&u.Username,
		&u.FullName,
		&u.PasswordHash,
		&u.Role,
		&u.IsActive,
		&u.EmailVerified,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	return u, err
}

func (r *PostgresUserRepo) GetByEmailOrUsername(ctx context.Context, email, username string) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR username = $2 LIMIT 1`
	user, err := scanUser(r.db.QueryRow(ctx, query, email, username))
	if err != nil {
		return domain.User{}, translateErr("get user by email or username", err)
	}
	return user, nil
}

func (r *PostgresUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, translateErr("get user by id", err)
	}
	return user, nil
}

const insertUserSQL = `INSERT INTO users (id, email, username, full_name, password_hash, role, is_active, email_verified)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
RETURNING ` + userColumns

func (r *PostgresUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	inserted, err := scanUser(r.db.QueryRow(ctx, insertUserSQL,
		user.ID,
		user.Email,
		user.Username,
		user.FullName,
		user.PasswordHash,
		user.Role,
		user.IsActive,
		user.EmailVerified,
	))
	if err != nil {
		return domain.User{}, translateErr("create user", err)
	}
	return inserted, nil
}

// Update applies only the fields set on the patch and always refreshes
// updated_at, in a single statement so the mutation stays atomic.
const updateUserSQL = `UPDATE users SET
	email = COALESCE($2, email),
	username = COALESCE($3, username),
	full_name = COALESCE($4, full_name),
	password_hash = COALESCE($5, password_hash),
	is_active = COALESCE($6, is_active),
	email_verified = COALESCE($7, email_verified),
	updated_at = NOW()
WHERE id = $1
RETURNING ` + userColumns

func (r *PostgresUserRepo) Update(ctx context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error) {
	updated, err := scanUser(r.db.QueryRow(ctx, updateUserSQL,
		id,
		patch.Email,
		patch.Username,
		patch.FullName,
		patch.PasswordHash,
		patch.IsActive,
		patch.EmailVerified,
	))
	if err != nil {
		return domain.User{}, translateErr("update user", err)
	}
	return updated, nil
}

func (r *PostgresUserRepo) Delete(ctx context.Context, id uuid.UUID) (domain.User, error) {
	query := `DELETE FROM users WHERE id = $1 RETURNING ` + userColumns
	deleted, err := scanUser(r.db.QueryRow(ctx, query, id))
	if err != nil {
		return domain.User{}, translateErr("delete user", err)
	}
	return deleted, nil
}

func (r *PostgresUserRepo) List(ctx context.Context) ([]domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users ORDER BY created_at`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []domain.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

// PostgresTodoRepo implements TodoRepository on a pgx pool.
type PostgresTodoRepo struct {
	db *pgxpool.Pool
}

func NewPostgresTodoRepo(pool *pgxpool.Pool) *PostgresTodoRepo {
	return &PostgresTodoRepo{db: pool}
}

const todoColumns = `id, user_id, title, description, iscompleted, created_at, updated_at`

func scanTodo(row pgx.Row) (domain.Todo, error) {
	var t domain.Todo
	err := row.Scan(
		&t.ID,
		&t.UserID,
		&t.Title,
		&t.Description,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
	)
	return t, err
}

func (r *PostgresTodoRepo) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE user_id = $1 ORDER BY created_at`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	defer rows.Close()

	var todos []domain.Todo
	for rows.Next() {
		todo, err := scanTodo(rows)
		if err != nil {
			return nil, fmt.Errorf("scan todo: %w", err)
		}
		todos = append(todos, todo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return todos, nil
}

func (r *PostgresTodoRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error) {
	query := `SELECT ` + todoColumns + ` FROM todos WHERE id = $1 AND user_id = $2`
	todo, err := scanTodo(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return domain.Todo{}, translateErr("get todo", err)
	}
	return todo, nil
}

const insertTodoSQL = `INSERT INTO todos (id, user_id, title, description, iscompleted)
VALUES ($1, $2, $3, $4, $5)
RETURNING ` + todoColumns

func (r *PostgresTodoRepo) Create(ctx context.Context, todo domain.Todo) (domain.Todo, error) {
	inserted, err := scanTodo(r.db.QueryRow(ctx, insertTodoSQL,
		todo.ID,
		todo.UserID,
		todo.Title,
		todo.Description,
		todo.IsCompleted,
	))
	if err != nil {
		return domain.Todo{}, translateErr("create todo", err)
	}
	return inserted, nil
}

const updateTodoSQL = `UPDATE todos SET
	title = COALESCE($3, title),
	description = COALESCE($4, description),
	iscompleted = COALESCE($5, iscompleted),
	updated_at = NOW()
WHERE id = $1 AND user_id = $2
RETURNING ` + todoColumns

func (r *PostgresTodoRepo) Update(ctx context.Context, id, userID uuid.UUID, patch domain.TodoPatch) (domain.Todo, error) {
	updated, err := scanTodo(r.db.QueryRow(ctx, updateTodoSQL,
		id,
		userID,
		patch.Title,
		patch.Description,
		patch.IsCompleted,
	))
	if err != nil {
		return domain.Todo{}, translateErr("update todo", err)
	}
	return updated, nil
}

func (r *PostgresTodoRepo) Delete(ctx context.Context, id, userID uuid.UUID) (domain.Todo, error) {
	query := `DELETE FROM todos WHERE id = $1 AND user_id = $2 RETURNING ` + todoColumns
	deleted, err := scanTodo(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		return domain.Todo{}, translateErr("delete todo", err)
	}
	return deleted, nil
}
