package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"sweetshop-api/internal/core/auth"
	"sweetshop-api/internal/domain"
	"sweetshop-api/internal/transport/http/handler"
	mdw "sweetshop-api/internal/transport/http/middleware"
)

func NewAPIEngine(l *zap.Logger, jwter *auth.JWTer, authH *handler.AuthHandler, sweetH *handler.SweetHandler) *gin.Engine {
	r := gin.New()

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(200, 400),
		mdw.ConcurrencyLimit(300),
		mdw.MaxBodyBytes(1<<20),
		mdw.Timeout(10*time.Second),
		ginzap.RecoveryWithZap(l, true),
		mdw.Metrics(),
		mdw.AccessLog(l),
		cors.Default(),
	)

	// 健康检查 / 指标
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// 公共：注册/登录
	authH.Mount(&r.RouterGroup)

	// 登录用户
	authed := r.Group("")
	authed.Use(mdw.AuthJWT(jwter))
	authH.MountAuthed(authed)

	items := authed.Group("/items")
	adminItems := items.Group("")
	adminItems.Use(mdw.RequireRole(domain.RoleAdmin))
	sweetH.Mount(items, adminItems)

	return r
}
