package jwt_test

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/jwt"
)

func testUser(t *testing.T) domain.User {
	t.Helper()
	id, err := uuid.NewV7()
	require.NoError(t, err)
	return domain.User{ID: id, Username: "jdoe"}
}

func TestNewCodecRejectsBadInput(t *testing.T) {
	_, err := jwt.NewCodec("", "HS256", time.Minute)
	require.Error(t, err)

	_, err = jwt.NewCodec("secret", "RS256", time.Minute)
	require.Error(t, err)

	_, err = jwt.NewCodec("secret", "HS256", 0)
	require.Error(t, err)
}

func TestIssueAndVerify(t *testing.T) {
	codec, err := jwt.NewCodec("test-secret-test-secret-test-secret", "HS256", time.Minute)
	require.NoError(t, err)

	user := testUser(t)
	token, expiry, err := codec.Issue(user, 0)
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.WithinDuration(t, time.Now().Add(time.Minute), expiry, 5*time.Second)

	claims, err := codec.Verify(token)
	require.NoError(t, err)
	require.Equal(t, user.ID.String(), claims.Subject)
	require.Equal(t, "jdoe", claims.Username)
	require.WithinDuration(t, expiry, claims.Expiry, time.Second)
}

func TestVerifyExpiredToken(t *testing.T) {
	codec, err := jwt.NewCodec("test-secret-test-secret-test-secret", "HS256", time.Nanosecond)
	require.NoError(t, err)

	token, _, err := codec.Issue(testUser(t), 0)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)

	_, err = codec.Verify(token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestVerifyWrongSecret(t *testing.T) {
	signing, err := jwt.NewCodec("secret-a-secret-a-secret-a-secret-a", "HS256", time.Minute)
	require.NoError(t, err)
	verifying, err := jwt.NewCodec("secret-b-secret-b-secret-b-secret-b", "HS256", time.Minute)
	require.NoError(t, err)

	token, _, err := signing.Issue(testUser(t), 0)
	require.NoError(t, err)

	_, err = verifying.Verify(token)
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}

func TestVerifyTamperedToken(t *testing.T) {
	codec, err := jwt.NewCodec("test-secret-test-secret-test-secret", "HS256", time.Minute)
	require.NoError(t, err)

	token, _, err := codec.Issue(testUser(t), 0)
	require.NoError(t, err)

	parts := strings.Split(token, ".")
	require.Len(t, parts, 3)
	parts[1] = parts[1][:len(parts[1])-2] + "xx"

	_, err = codec.Verify(strings.Join(parts, "."))
	require.ErrorIs(t, err, jwt.ErrInvalidToken)

	_, err = codec.Verify("not-a-token")
	require.ErrorIs(t, err, jwt.ErrInvalidToken)
}
