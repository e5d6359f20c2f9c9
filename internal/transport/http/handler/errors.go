package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop-api/internal/domain"
	resp "sweetshop-api/internal/transport/http/response"
)

// writeErr 领域错误到 HTTP 状态码的唯一映射点
func writeErr(c *gin.Context, l *zap.Logger, err error) {
	switch {
	case domain.IsValidation(err),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrEmailTaken):
		resp.Err(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrOutOfStock):
		resp.Err(c, http.StatusBadRequest, "Out of stock")
	case errors.Is(err, domain.ErrInvalidCredentials):
		resp.Err(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		resp.Err(c, http.StatusNotFound, "not found")
	default:
		l.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		resp.Err(c, http.StatusInternalServerError, "internal error")
	}
}
