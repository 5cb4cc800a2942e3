package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	"pigeon/internal/server/auth"
	authsvc "pigeon/internal/service/auth"
)

const keyPrincipal = "principal"

type Authenticator interface {
	Authenticate(ctx context.Context, bearer string) (*authsvc.Principal, error)
}

// Auth 校验 Bearer 令牌，将主体注入到 Context
func Auth(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Fail(c, apperr.Unauthorized("missing or malformed Authorization header"))
			return
		}
		p, err := a.Authenticate(c.Request.Context(), token)
		if err != nil {
			response.Fail(c, err)
			return
		}
		c.Set(keyPrincipal, p)
		c.Set("user_id", p.ID)
		c.Next()
	}
}

// RequireUser 仅允许普通用户令牌
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).IsUser() {
			response.Fail(c, apperr.Forbidden("user token required"))
			return
		}
		c.Next()
	}
}

func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Principal(c).IsAdmin() {
			response.Fail(c, apperr.Forbidden("admin access required"))
			return
		}
		c.Next()
	}
}

// Principal 未经过 Auth 时返回 nil
func Principal(c *gin.Context) *authsvc.Principal {
	if v, ok := c.Get(keyPrincipal); ok {
		if p, ok := v.(*authsvc.Principal); ok {
			return p
		}
	}
	return nil
}
