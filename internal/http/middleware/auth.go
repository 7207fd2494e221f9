package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"carpool/internal/domain"
)

const actorKey = "actor"

// TokenParser turns an Authorization header value into the calling actor.
type TokenParser interface {
	ParseBearer(header string) (domain.Actor, error)
}

// Authenticate resolves the caller from the bearer token when one is sent.
// Browsers cannot set headers on websocket upgrades, so a ?token= query
// parameter is accepted as well. Requests without a token pass through
// anonymously; an invalid token is rejected.
func Authenticate(tokens TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" {
			if q := strings.TrimSpace(c.Query("token")); q != "" && c.Request.Method == http.MethodGet {
				header = "Bearer " + q
			}
		}
		if header == "" {
			c.Next()
			return
		}
		actor, err := tokens.ParseBearer(header)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "unauthorized: invalid token",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

// RequireAuth rejects anonymous requests.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := ActorFrom(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":      "unauthorized: missing bearer token",
				"request_id": GetRequestID(c),
			})
			return
		}
		c.Next()
	}
}

// ActorFrom returns the authenticated caller set by Authenticate.
func ActorFrom(c *gin.Context) (domain.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return domain.Actor{}, false
	}
	a, ok := v.(domain.Actor)
	return a, ok
}
