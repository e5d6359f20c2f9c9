package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sweetshop-api/internal/core/auth"
	resp "sweetshop-api/internal/transport/http/response"
)

const (
	KeyUserID = "userId"
	KeyRole   = "role"
)

// AuthJWT 解析 Bearer 令牌并把身份挂到上下文
func AuthJWT(j *auth.JWTer) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			resp.AbortErr(c, http.StatusUnauthorized, "missing token")
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			resp.AbortErr(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set("claims", claims)
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyRole, claims.Role)
		c.Next()
	}
}

// RequireRole 第二道闸：角色不符直接 403
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetString(KeyRole) != role {
			resp.AbortErr(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Next()
	}
}
