package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	iauth "github.com/bannerworks/alertbanner/internal/auth"
	"github.com/bannerworks/alertbanner/pkg/errors"
	"github.com/bannerworks/alertbanner/pkg/response"
)

const (
	CtxClaimsKey = "authClaims"
	CtxUserIDKey = "userID"
)

// Auth enforces JWT authentication using the supplied JWT service.
func Auth(jwt *iauth.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if len(authz) < 8 || !strings.EqualFold(authz[:7], "Bearer ") {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		token := strings.TrimSpace(authz[7:])
		claims, err := jwt.ValidateToken(token)
		if err != nil {
			// Normalise all validation failures to 401
			c.Header("WWW-Authenticate", "Bearer")
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		c.Set(CtxClaimsKey, claims)
		c.Set(CtxUserIDKey, claims.UserID)

		c.Next()
	}
}

// RequireEditor rejects authenticated callers whose token lacks the editor flag.
// Read endpoints stay open to any valid token; writes go through this gate.
func RequireEditor() gin.HandlerFunc {
	return func(c *gin.Context) {
		value, ok := c.Get(CtxClaimsKey)
		if !ok {
			response.Error(c, errors.ErrUnauthorized)
			c.Abort()
			return
		}

		claims, ok := value.(*iauth.Claims)
		if !ok || !claims.Editor {
			response.Error(c, errors.ErrForbidden)
			c.Abort()
			return
		}

		c.Next()
	}
}
