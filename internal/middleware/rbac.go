package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/stage-docs-api/internal/models"
	appErrors "github.com/noah-isme/stage-docs-api/pkg/errors"
	"github.com/noah-isme/stage-docs-api/pkg/response"
)

// RequireRoles lets the request through only when the token role is listed.
func RequireRoles(roles ...models.UserRole) gin.HandlerFunc {
	allowed := make(map[models.UserRole]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}
	return func(c *gin.Context) {
		claims := CurrentClaims(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if _, ok := allowed[claims.Role]; !ok {
			response.Error(c, appErrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}
