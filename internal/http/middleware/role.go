package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
)

// RequireRoles allows only callers whose role is listed. It must run after
// Authenticate.
//
//	r.POST("/routes", RequireRoles(domain.RoleOwner, domain.RoleAdmin), handler)
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[domain.Role]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "unauthorized: missing bearer token",
				"request_id": GetRequestID(c),
			})
			return
		}
		if _, ok := allowed[actor.Role]; !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"error":      "forbidden: role not allowed",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}
