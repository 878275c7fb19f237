package identity

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"teka/internal/domain"
)

const contextKey = "teka.identity"

// Identity is the authenticated caller, resolved from the trusted
// X-User-ID / X-User-Role headers set by the gateway in front of this
// service. Authentication itself happens upstream.
type Identity struct {
	UserID uuid.UUID
	Role   domain.Role
}

// Middleware rejects requests without a well-formed identity.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := uuid.Parse(c.GetHeader("X-User-ID"))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing_identity"})
			return
		}
		role := domain.Role(c.GetHeader("X-User-Role"))
		switch role {
		case domain.RoleClient, domain.RoleChef, domain.RoleAdmin:
		default:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown_role"})
			return
		}
		c.Set(contextKey, Identity{UserID: id, Role: role})
		c.Next()
	}
}

// FromContext returns the identity stored by Middleware.
func FromContext(c *gin.Context) Identity {
	v, _ := c.Get(contextKey)
	id, _ := v.(Identity)
	return id
}
