package middleware

import (
	"net/http"
	"slices"

	"github.com/gin-gonic/gin"

	"securevet.io/securevet/internal/domain"
)

// RequireRoles returns middleware that rejects requests from actors
// outside the allowed roles. Authentication must run first.
func RequireRoles(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c.Request.Context())
		if actor.ID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "not authenticated",
			})
			return
		}
		if !slices.Contains(roles, actor.Role) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}

// RequireCapability returns middleware that checks one capability of
// the single role policy. Handlers behind it can still pass the actor
// down for finer checks.
func RequireCapability(cap domain.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := GetActor(c.Request.Context())
		if actor.ID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "not authenticated",
			})
			return
		}
		if !actor.Role.Can(cap) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code": "FORBIDDEN", "message": "insufficient role",
			})
			return
		}
		c.Next()
	}
}
