package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"pigeon/internal/api/response"
	"pigeon/internal/apperr"
	"pigeon/internal/models"
)

type SettingsReader interface {
	Get(ctx context.Context) (*models.AppSettings, error)
}

// Maintenance 维护模式下拒绝面向用户的接口；开关每次请求从库中读取，管理员不受影响
func Maintenance(settings SettingsReader, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if Principal(c).IsAdmin() {
			c.Next()
			return
		}
		st, err := settings.Get(c.Request.Context())
		if err != nil {
			response.Fail(c, err)
			return
		}
		if st.MaintenanceMode {
			response.Fail(c, apperr.Unavailable(message))
			return
		}
		c.Next()
	}
}
