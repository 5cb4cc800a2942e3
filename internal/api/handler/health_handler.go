package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// Health 存活探针，不访问数据库
func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timestamp": time.Now().UTC().Format(time.RFC3339)})
}
