// Package response 统一的响应信封 {error, message, data}
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pigeon/internal/apperr"
)

const (
	KeyRequestID = "request_id"
	KeyLogger    = "logger"
)

type Envelope struct {
	Error   bool        `json:"error"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Logger 取请求级 logger，未注入时返回 Nop
func Logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(KeyLogger); ok {
		if l, ok := v.(*zap.Logger); ok {
			return l
		}
	}
	return zap.NewNop()
}

// OK 所有成功响应统一返回 200
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Envelope{Message: message, Data: data})
}

// Fail 将错误翻译为状态码与信封；存储故障与超时只在服务端记录原因
func Fail(c *gin.Context, err error) {
	code := apperr.CodeOf(err)
	if code.Internal() {
		Logger(c).Error("request failed",
			zap.String("code", string(code)),
			zap.String("request_id", c.GetString(KeyRequestID)),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(apperr.HTTPStatus(code), Envelope{Error: true, Message: apperr.MessageOf(err)})
}
