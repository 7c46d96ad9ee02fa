package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/MoosaAfzal2/poetry-todo-api/internal/domain"
	"github.com/MoosaAfzal2/poetry-todo-api/internal/service"
)

const currentUserKey = "currentUser"

// Auth is the per-request identity resolver. It extracts the bearer token,
// verifies it, loads the account, and attaches the current user to the
// request context for downstream handlers.
type Auth struct {
	AuthService *service.AuthService
}

// Authenticate ensures the request carries a valid bearer token for an
// existing, active account.
func (m *Auth) Authenticate(c *gin.Context) {
	header := c.GetHeader("Authorization")
	if header == "" {
		abortWithServiceError(c, service.Error{
			Kind:    service.KindUnauthenticated,
			Message: "authorization header required",
			Status:  http.StatusUnauthorized,
		})
		return
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		abortWithServiceError(c, service.Error{
			Kind:    service.KindUnauthenticated,
			Message: "bearer token required",
			Status:  http.StatusUnauthorized,
		})
		return
	}

	user, err := m.AuthService.ResolveIdentity(c.Request.Context(), parts[1])
	if err != nil {
		var svcErr *service.Error
		if e, ok := err.(*service.Error); ok {
			svcErr = e
		} else {
			svcErr = &service.Error{Kind: service.KindInternal, Message: "an unexpected error occurred", Status: http.StatusInternalServerError}
		}
		abortWithServiceError(c, *svcErr)
		return
	}

	c.Set(currentUserKey, user)
	c.Next()
}

// RequireAdmin composes on Authenticate and rejects non-admin identities.
func (m *Auth) RequireAdmin(c *gin.Context) {
	user, ok := GetCurrentUser(c)
	if !ok {
		abortWithServiceError(c, service.Error{
			Kind:    service.KindUnauthenticated,
			Message: "could not validate credentials",
			Status:  http.StatusUnauthorized,
		})
		return
	}
	if user.Role != domain.RoleAdmin {
		forbidden := service.ErrForbidden("the user doesn't have enough privileges")
		abortWithServiceError(c, *forbidden)
		return
	}
	c.Next()
}

// GetCurrentUser exposes the resolved identity to handlers.
func GetCurrentUser(c *gin.Context) (domain.User, bool) {
	value, ok := c.Get(currentUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := value.(domain.User)
	return user, ok
}

func abortWithServiceError(c *gin.Context, err service.Error) {
	c.AbortWithStatusJSON(err.Status, gin.H{"error": string(err.Kind), "error_description": err.Message})
}
