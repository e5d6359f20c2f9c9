package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// 错误统一为 {"error": msg}，成功直接回裸载荷

func Err(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.JSON(status, gin.H{"error": msg})
}

func AbortErr(c *gin.Context, status int, msg string) {
	if msg == "" {
		msg = http.StatusText(status)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}

func OK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, data)
}

func Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, data)
}
