package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/adapter/cache"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/jwt"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/password"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/repository"
)

// AuthService orchestrates credential issuance and account lifecycle on top
// of the user store, the password hasher, and the token codec.
type AuthService struct {
	users      repository.UserRepository
	hasher     *password.Hasher
	codec      *jwt.Codec
	identities *cache.IdentityCache
	cfg        config.Config
	logger     *zap.Logger
	tracer     trace.Tracer
}

// NewAuthService wires dependencies. identities may be nil when no Redis is
// configured; resolution then always goes to the store.
func NewAuthService(users repository.UserRepository, hasher *password.Hasher, codec *jwt.Codec, identities *cache.IdentityCache, cfg config.Config, logger *zap.Logger) *AuthService {
	return &AuthService{
		users:      users,
		hasher:     hasher,
		codec:      codec,
		identities: identities,
		cfg:        cfg,
		logger:     logger,
		tracer:     otel.Tracer("github.com/MoosaAfzal2/poetry-todo-api/internal/service"),
	}
}

// ProfileUpdate carries the optional fields of a profile patch. A non-nil
// Password is hashed before it ever reaches the store.
type ProfileUpdate struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
}

// SignUp registers a new user and returns a freshly issued access token.
// The pre-insert lookup gives a friendly conflict error; the storage unique
// constraint remains the authoritative duplicate check under concurrency.
func (s *AuthService) SignUp(ctx context.Context, email, username, plaintext string) (TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.SignUp")
	defer span.End()

	normalized, err := normalizeEmail(email)
	if err != nil {
		return TokenResponse{}, errInvalidInput("invalid email")
	}
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(plaintext) == "" {
		return TokenResponse{}, errInvalidInput("username and password are required")
	}

	if _, err := s.users.GetByEmailOrUsername(ctx, normalized, username); err == nil {
		return TokenResponse{}, errConflict("a user with this email or username already exists")
	} else if !errors.Is(err, domain.ErrNotFound) {
		span.RecordError(err)
		return TokenResponse{}, s.internal("check existing user", err)
	}

	hashed, err := s.hasher.Hash(plaintext)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, s.internal("hash password", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, s.internal("generate user id", err)
	}

	user := domain.User{
		ID:           id,
		Email:        normalized,
		Username:     username,
		PasswordHash: hashed,
		Role:         domain.RoleUser,
		IsActive:     true,
	}

	created, err := s.users.Create(ctx, user)
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return TokenResponse{}, errConflict("a user with this email or username already exists")
		}
		span.RecordError(err)
		return TokenResponse{}, s.internal("create user", err)
	}

	resp, err := s.issueToken(created)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, s.internal("issue token", err)
	}

	s.audit("auth.sign_up.success", "user_id", created.ID.String(), "username", created.Username)
	return resp, nil
}

// Login authenticates by email and password and issues an access token.
// An unknown email stays a distinct not-found; a wrong password and an
// inactive account both collapse into a generic unauthorized.
func (s *AuthService) Login(ctx context.Context, email, plaintext string) (TokenResponse, error) {
	ctx, span := s.startSpan(ctx, "AuthService.Login")
	defer span.End()

	normalized, err := normalizeEmail(email)
	if err != nil {
		return TokenResponse{}, errInvalidInput("invalid email")
	}

	user, err := s.users.GetByEmailOrUsername(ctx, normalized, "")
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return TokenResponse{}, errNotFound("user does not exist")
		}
		span.RecordError(err)
		return TokenResponse{}, s.internal("load user", err)
	}

	if !s.hasher.Verify(plaintext, user.PasswordHash) {
		return TokenResponse{}, errUnauthorized("incorrect email or password")
	}
	if !user.IsActive {
		return TokenResponse{}, errUnauthorized("inactive user")
	}

	resp, err := s.issueToken(user)
	if err != nil {
		span.RecordError(err)
		return TokenResponse{}, s.internal("issue token", err)
	}

	s.audit("auth.login.success", "user_id", user.ID.String())
	return resp, nil
}

// ResolveIdentity turns a bearer token into the request's current user. It
// fails unauthenticated for any token problem, not-found when the account no
// longer exists, and unauthorized when the account is inactive.
func (s *AuthService) ResolveIdentity(ctx context.Context, token string) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ResolveIdentity")
	defer span.End()

	claims, err := s.codec.Verify(token)
	if err != nil {
		return domain.User{}, errUnauthenticated("could not validate credentials")
	}
	subject, err := uuid.Parse(claims.Subject)
	if err != nil {
		return domain.User{}, errUnauthenticated("could not validate credentials")
	}

	user, cached, err := s.loadIdentity(ctx, subject)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, errNotFound("user not found")
		}
		span.RecordError(err)
		return domain.User{}, s.internal("load user", err)
	}

	if !user.IsActive {
		return domain.User{}, errUnauthorized("inactive user")
	}

	if !cached {
		if err := s.identities.Set(ctx, user); err != nil {
			s.log().Warn("cache identity", zap.Error(err))
		}
	}
	return user, nil
}

// GetProfile returns the user record for an authenticated id.
func (s *AuthService) GetProfile(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.GetProfile")
	defer span.End()

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, errNotFound("user not found")
		}
		span.RecordError(err)
		return domain.User{}, s.internal("load user", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. A new password is hashed here and
// replaces the stored hash wholesale; unset fields are left untouched.
func (s *AuthService) UpdateProfile(ctx context.Context, userID uuid.UUID, update ProfileUpdate) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.UpdateProfile")
	defer span.End()

	patch := domain.UserPatch{
		Username: trimmedOrNil(update.Username),
		FullName: update.FullName,
	}

	if update.Email != nil {
		normalized, err := normalizeEmail(*update.Email)
		if err != nil {
			return domain.User{}, errInvalidInput("invalid email")
		}
		patch.Email = &normalized
	}

	if update.Password != nil {
		if strings.TrimSpace(*update.Password) == "" {
			return domain.User{}, errInvalidInput("password must not be empty")
		}
		hashed, err := s.hasher.Hash(*update.Password)
		if err != nil {
			span.RecordError(err)
			return domain.User{}, s.internal("hash password", err)
		}
		patch.PasswordHash = &hashed
	}

	updated, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			return domain.User{}, errNotFound("user not found")
		case errors.Is(err, domain.ErrConflict):
			return domain.User{}, errConflict("a user with this email or username already exists")
		}
		span.RecordError(err)
		return domain.User{}, s.internal("update user", err)
	}

	if err := s.identities.Invalidate(ctx, userID); err != nil {
		s.log().Warn("invalidate identity", zap.Error(err))
	}

	s.audit("auth.profile.updated", "user_id", userID.String())
	return updated, nil
}

// DeleteAccount removes the user permanently.
func (s *AuthService) DeleteAccount(ctx context.Context, userID uuid.UUID) (domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.DeleteAccount")
	defer span.End()

	deleted, err := s.users.Delete(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, errNotFound("user not found")
		}
		span.RecordError(err)
		return domain.User{}, s.internal("delete user", err)
	}

	if err := s.identities.Invalidate(ctx, userID); err != nil {
		s.log().Warn("invalidate identity", zap.Error(err))
	}

	s.audit("auth.account.deleted", "user_id", userID.String())
	return deleted, nil
}

// ListUsers returns all user records. Exposed only behind the admin gate.
func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	ctx, span := s.startSpan(ctx, "AuthService.ListUsers")
	defer span.End()

	users, err := s.users.List(ctx)
	if err != nil {
		span.RecordError(err)
		return nil, s.internal("list users", err)
	}
	return users, nil
}

func (s *AuthService) loadIdentity(ctx context.Context, id uuid.UUID) (domain.User, bool, error) {
	if hit, err := s.identities.Get(ctx, id); err != nil {
		s.log().Warn("identity cache lookup", zap.Error(err))
	} else if hit != nil {
		return *hit, true, nil
	}
	user, err := s.users.GetByID(ctx, id)
	return user, false, err
}

func (s *AuthService) issueToken(user domain.User) (TokenResponse, error) {
	token, _, err := s.codec.Issue(user, s.cfg.AccessTokenTTL)
	if err != nil {
		return TokenResponse{}, err
	}
	return TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(s.cfg.AccessTokenTTL / time.Second),
	}, nil
}

func (s *AuthService) internal(op string, err error) *Error {
	s.log().Error(op, zap.Error(err))
	return errInternal("an unexpected error occurred")
}

func (s *AuthService) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if s == nil || s.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return s.tracer.Start(ctx, name)
}

func (s *AuthService) audit(event string, attrs ...any) {
	logger := s.log()
	if logger == nil {
		return
	}
	fields := make([]zap.Field, 0, len(attrs)/2+2)
	fields = append(fields, zap.String("event", event), zap.Time("timestamp", time.Now().UTC()))
	for i := 0; i+1 < len(attrs); i += 2 {
		key, ok := attrs[i].(string)
		if !ok {
			continue
		}
		fields = append(fields, zap.Any(key, attrs[i+1]))
	}
	logger.Info("audit", fields...)
}

func (s *AuthService) log() *zap.Logger {
	if s != nil && s.logger != nil {
		return s.logger
	}
	return zap.L()
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.ToLower(strings.TrimSpace(email))
	if trimmed == "" {
		return "", errors.New("empty email")
	}
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", errors.New("malformed email")
	}
	return trimmed, nil
}

func trimmedOrNil(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
