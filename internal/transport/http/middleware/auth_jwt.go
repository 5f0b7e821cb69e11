package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"scentify/internal/core/auth"
	"scentify/internal/core/errs"
	"scentify/internal/domain"
	resp "scentify/internal/transport/http/response"
)

// TokenVerifier 由 AuthService 实现，失败时返回 *errs.Error
type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// abortErr *errs.Error 按其 Code/Msg 返回，其余记录后 500
func abortErr(c *gin.Context, err error) {
	var ae *errs.Error
	if errors.As(err, &ae) {
		resp.Abort(c, ae.Code, ae.Msg)
		return
	}
	_ = c.Error(err)
	resp.Abort(c, http.StatusInternalServerError, "")
}

// AuthJWT 校验 Bearer token，写入 userId/email
func AuthJWT(v TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			abortErr(c, errs.Unauthorized("Missing or invalid Authorization header"))
			return
		}
		claims, err := v.Verify(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			abortErr(c, err)
			return
		}
		c.Set("userId", claims.UserID)
		c.Set("email", claims.Email)
		c.Next()
	}
}

// RequireAdmin 需在 AuthJWT 之后；角色以库中为准
func RequireAdmin(users domain.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := users.FindByID(c.Request.Context(), c.GetString("userId"))
		if err != nil {
			abortErr(c, err)
			return
		}
		if u == nil || !u.IsActive {
			abortErr(c, errs.Unauthorized("Invalid or expired token"))
			return
		}
		if u.Role != domain.RoleAdmin {
			abortErr(c, errs.Forbidden("Admin access required"))
			return
		}
		c.Set("role", string(u.Role))
		c.Next()
	}
}
