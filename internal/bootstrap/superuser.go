package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/password"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/repository"
)

// EnsureSuperuser creates the first admin account on startup if missing.
func EnsureSuperuser(lc fx.Lifecycle, cfg config.Config, users repository.UserRepository, hasher *password.Hasher, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return ensureSuperuser(ctx, cfg, users, hasher, logger)
		},
	})
}

func ensureSuperuser(ctx context.Context, cfg config.Config, users repository.UserRepository, hasher *password.Hasher, logger *zap.Logger) error {
	email := strings.ToLower(strings.TrimSpace(cfg.SuperuserEmail))
	username := strings.TrimSpace(cfg.SuperuserUsername)
	if email == "" || username == "" || strings.TrimSpace(cfg.SuperuserPassword) == "" {
		return fmt.Errorf("superuser bootstrap missing required config")
	}

	if _, err := users.GetByEmailOrUsername(ctx, email, username); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("bootstrap lookup user: %w", err)
	}

	hashed, err := hasher.Hash(cfg.SuperuserPassword)
	if err != nil {
		return fmt.Errorf("bootstrap hash password: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("bootstrap generate id: %w", err)
	}

	created, err := users.Create(ctx, domain.User{
		ID:           id,
		Email:        email,
		Username:     username,
		PasswordHash: hashed,
		Role:         domain.RoleAdmin,
		IsActive:     true,
	})
	if err != nil {
		// A concurrent replica may have won the insert.
		if errors.Is(err, domain.ErrConflict) {
			return nil
		}
		return fmt.Errorf("bootstrap create user: %w", err)
	}

	if logger != nil {
		logger.Info("bootstrap superuser created",
			zap.String("email", created.Email),
			zap.String("user_id", created.ID.String()),
		)
	}
	return nil
}
