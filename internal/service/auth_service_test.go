package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/config"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/jwt"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/password"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/service"
)

// memoryUserRepo is an in-memory UserRepository with the same uniqueness and
// not-found semantics as the Postgres implementation.
type memoryUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]domain.User
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: map[uuid.UUID]domain.User{}}
}

func (r *memoryUserRepo) GetByEmailOrUsername(_ context.Context, email, username string) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if (email != "" && u.Email == email) || (username != "" && u.Username == username) {
			return u, nil
		}
	}
	return domain.User{}, domain.ErrNotFound
}

func (r *memoryUserRepo) GetByID(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	return u, nil
}

func (r *memoryUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email || u.Username == user.Username {
			return domain.User{}, domain.ErrConflict
		}
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	r.users[user.ID] = user
	return user, nil
}

func (r *memoryUserRepo) Update(_ context.Context, id uuid.UUID, patch domain.UserPatch) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	for otherID, other := range r.users {
		if otherID == id {
			continue
		}
		if (patch.Email != nil && other.Email == *patch.Email) ||
			(patch.Username != nil && other.Username == *patch.Username) {
			return domain.User{}, domain.ErrConflict
		}
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Username != nil {
		u.Username = *patch.Username
	}
	if patch.FullName != nil {
		u.FullName = *patch.FullName
	}
	if patch.PasswordHash != nil {
		u.PasswordHash = *patch.PasswordHash
	}
	u.UpdatedAt = time.Now().UTC()
	r.users[id] = u
	return u, nil
}

func (r *memoryUserRepo) Delete(_ context.Context, id uuid.UUID) (domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}
	delete(r.users, id)
	return u, nil
}

func (r *memoryUserRepo) List(_ context.Context) ([]domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

func (r *memoryUserRepo) deactivate(t *testing.T, email string) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.Email == email {
			u.IsActive = false
			r.users[id] = u
			return
		}
	}
	t.Fatalf("no user with email %s", email)
}

func newTestAuthService(t *testing.T) (*service.AuthService, *memoryUserRepo) {
	t.Helper()
	codec, err := jwt.NewCodec("test-secret-test-secret-test-secret", "HS256", time.Minute)
	require.NoError(t, err)
	repo := newMemoryUserRepo()
	cfg := config.Config{AccessTokenTTL: 2 * time.Hour}
	svc := service.NewAuthService(repo, password.NewHasher(), codec, nil, cfg, zap.NewNop())
	return svc, repo
}

func requireKind(t *testing.T, err error, kind service.Kind) {
	t.Helper()
	var svcErr *service.Error
	require.ErrorAs(t, err, &svcErr)
	require.Equal(t, kind, svcErr.Kind)
}

func TestSignUpIssuesToken(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, "Jane@Example.com ", "jane", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "bearer", resp.TokenType)
	require.Equal(t, int64(7200), resp.ExpiresIn)

	user, err := svc.ResolveIdentity(ctx, resp.AccessToken)
	require.NoError(t, err)
	require.Equal(t, "jane@example.com", user.Email)
	require.Equal(t, "jane", user.Username)
	require.Equal(t, domain.RoleUser, user.Role)
	require.True(t, user.IsActive)

	stored, err := repo.GetByID(ctx, user.ID)
	require.NoError(t, err)
	require.NotEqual(t, "secret1", stored.PasswordHash)
	require.True(t, password.NewHasher().Verify("secret1", stored.PasswordHash))
}

func TestSignUpValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "not-an-email", "jane", "secret1")
	requireKind(t, err, service.KindInvalidInput)

	_, err = svc.SignUp(ctx, "jane@example.com", "", "secret1")
	requireKind(t, err, service.KindInvalidInput)

	_, err = svc.SignUp(ctx, "jane@example.com", "jane", "  ")
	requireKind(t, err, service.KindInvalidInput)
}

func TestSignUpDuplicate(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)

	_, err = svc.SignUp(ctx, "jane@example.com", "jane2", "secret2")
	requireKind(t, err, service.KindConflict)

	_, err = svc.SignUp(ctx, "other@example.com", "jane", "secret2")
	requireKind(t, err, service.KindConflict)
}

func TestSignUpConcurrentDuplicates(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	const attempts = 8
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	var ok, conflicts int
	for err := range results {
		if err == nil {
			ok++
			continue
		}
		requireKind(t, err, service.KindConflict)
		conflicts++
	}
	require.Equal(t, 1, ok)
	require.Equal(t, attempts-1, conflicts)

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)
}

func TestLogin(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)

	resp, err := svc.Login(ctx, "JANE@example.com", "secret1")
	require.NoError(t, err)
	require.NotEmpty(t, resp.AccessToken)
	require.Equal(t, "bearer", resp.TokenType)

	_, err = svc.Login(ctx, "not-an-email", "secret1")
	requireKind(t, err, service.KindInvalidInput)

	_, err = svc.Login(ctx, "nobody@example.com", "secret1")
	requireKind(t, err, service.KindNotFound)

	_, err = svc.Login(ctx, "jane@example.com", "wrong")
	requireKind(t, err, service.KindUnauthorized)

	repo.deactivate(t, "jane@example.com")
	_, err = svc.Login(ctx, "jane@example.com", "secret1")
	requireKind(t, err, service.KindUnauthorized)
}

func TestResolveIdentityRejectsBadTokens(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.ResolveIdentity(ctx, "garbage")
	requireKind(t, err, service.KindUnauthenticated)

	other, err := jwt.NewCodec("other-secret-other-secret-other-secret", "HS256", time.Minute)
	require.NoError(t, err)
	id, err := uuid.NewV7()
	require.NoError(t, err)
	forged, _, err := other.Issue(domain.User{ID: id, Username: "jane"}, 0)
	require.NoError(t, err)

	_, err = svc.ResolveIdentity(ctx, forged)
	requireKind(t, err, service.KindUnauthenticated)
}

func TestResolveIdentityAfterDelete(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)
	user, err := svc.ResolveIdentity(ctx, resp.AccessToken)
	require.NoError(t, err)

	deleted, err := svc.DeleteAccount(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, "jane", deleted.Username)

	_, err = svc.ResolveIdentity(ctx, resp.AccessToken)
	requireKind(t, err, service.KindNotFound)
}

func TestResolveIdentityInactiveUser(t *testing.T) {
	svc, repo := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)

	repo.deactivate(t, "jane@example.com")
	_, err = svc.ResolveIdentity(ctx, resp.AccessToken)
	requireKind(t, err, service.KindUnauthorized)
}

func TestUpdateProfilePassword(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, "jane@example.com", "jane", "old-secret")
	require.NoError(t, err)
	user, err := svc.ResolveIdentity(ctx, resp.AccessToken)
	require.NoError(t, err)

	newPassword := "new-secret"
	updated, err := svc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{Password: &newPassword})
	require.NoError(t, err)
	require.Equal(t, user.ID, updated.ID)

	_, err = svc.Login(ctx, "jane@example.com", "old-secret")
	requireKind(t, err, service.KindUnauthorized)

	_, err = svc.Login(ctx, "jane@example.com", "new-secret")
	require.NoError(t, err)
}

func TestUpdateProfileValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	resp, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)
	user, err := svc.ResolveIdentity(ctx, resp.AccessToken)
	require.NoError(t, err)

	bad := "not-an-email"
	_, err = svc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{Email: &bad})
	requireKind(t, err, service.KindInvalidInput)

	empty := "   "
	_, err = svc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{Password: &empty})
	requireKind(t, err, service.KindInvalidInput)

	full := "Jane Doe"
	updated, err := svc.UpdateProfile(ctx, user.ID, service.ProfileUpdate{FullName: &full})
	require.NoError(t, err)
	require.Equal(t, "Jane Doe", updated.FullName)
	require.Equal(t, "jane@example.com", updated.Email)
}

func TestUpdateProfileConflict(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)
	resp, err := svc.SignUp(ctx, "john@example.com", "john", "secret2")
	require.NoError(t, err)
	john, err := svc.ResolveIdentity(ctx, resp.AccessToken)
	require.NoError(t, err)

	taken := "jane"
	_, err = svc.UpdateProfile(ctx, john.ID, service.ProfileUpdate{Username: &taken})
	requireKind(t, err, service.KindConflict)
}

func TestListUsers(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "jane@example.com", "jane", "secret1")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "john@example.com", "john", "secret2")
	require.NoError(t, err)

	users, err := svc.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)
}
