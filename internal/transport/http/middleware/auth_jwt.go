package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"fountain-monitor/internal/core/auth"
	"fountain-monitor/internal/domain"
	resp "fountain-monitor/internal/transport/http/response"
)

// Context keys set once a bearer token is verified.
const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT rejects requests without a valid bearer token. A non-empty
// requireRole also rejects tokens of any other role.
func AuthJWT(j *auth.JWTer, requireRole domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireRole != "" && claims.Role != requireRole {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalJWT sets the caller identity when a bearer token is present and
// leaves anonymous requests alone. Each action decides whether it needs one.
func OptionalJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tok, ok := bearer(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := j.Parse(tok)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		setIdentity(c, claims)
		c.Next()
	}
}

// CurrentRole returns the caller's role, or "" for anonymous requests.
func CurrentRole(c *gin.Context) domain.Role {
	if v, ok := c.Get(KeyRole); ok {
		if r, ok := v.(domain.Role); ok {
			return r
		}
	}
	return ""
}

func bearer(c *gin.Context) (string, bool) {
	ah := c.GetHeader("Authorization")
	if !strings.HasPrefix(ah, "Bearer ") {
		return "", false
	}
	return strings.TrimPrefix(ah, "Bearer "), true
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(KeyUserID, claims.UID)
	c.Set(KeyRole, claims.Role)
}
