package handler

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"pigeon/internal/apperr"
	"pigeon/internal/middleware"
	groupsvc "pigeon/internal/service/group"
)

// bindJSON 解析请求体；未知字段与类型错误一律视为参数错误
func bindJSON(c *gin.Context, dst interface{}) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.InvalidArg("request body is required")
		}
		msg := err.Error()
		if strings.HasPrefix(msg, "json: unknown field ") {
			return apperr.InvalidArg("unknown field " + strings.TrimPrefix(msg, "json: unknown field "))
		}
		return apperr.InvalidArg("invalid request body")
	}
	return nil
}

// pageQuery 读取 page/limit，缺省为 0 交给服务层取默认值
func pageQuery(c *gin.Context) (int, int, error) {
	page, err := intQuery(c, "page")
	if err != nil {
		return 0, 0, err
	}
	limit, err := intQuery(c, "limit")
	if err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}

func intQuery(c *gin.Context, key string) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.InvalidArg(key + " must be a non-negative integer")
	}
	return n, nil
}

func callerID(c *gin.Context) string {
	if p := middleware.Principal(c); p != nil {
		return p.ID
	}
	return ""
}

func actor(c *gin.Context) groupsvc.Actor {
	p := middleware.Principal(c)
	if p == nil {
		return groupsvc.Actor{}
	}
	if p.IsAdmin() {
		return groupsvc.Actor{Admin: true}
	}
	return groupsvc.Actor{UserID: p.ID}
}
