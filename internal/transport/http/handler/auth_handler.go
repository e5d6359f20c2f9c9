package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop-api/internal/service"
	mdw "sweetshop-api/internal/transport/http/middleware"
	resp "sweetshop-api/internal/transport/http/response"
)

type AuthHandler struct {
	svc *service.AuthService
	log *zap.Logger
}

func NewAuthHandler(svc *service.AuthService, log *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, log: log}
}

// Mount 公共路由：注册/登录
func (h *AuthHandler) Mount(g *gin.RouterGroup) {
	g.POST("/auth/register", h.register)
	g.POST("/auth/login", h.login)
}

// MountAuthed 需要登录的路由
func (h *AuthHandler) MountAuthed(g *gin.RouterGroup) {
	g.GET("/me", h.me)
}

func (h *AuthHandler) register(c *gin.Context) {
	var in struct {
		Username string `json:"username"`
		Email    string `json:"email" binding:"omitempty,email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.svc.Register(c.Request.Context(), in.Username, in.Email, in.Password, in.Role); err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.Created(c, gin.H{"message": "user registered"})
}

func (h *AuthHandler) login(c *gin.Context) {
	var in struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	tok, err := h.svc.Login(c.Request.Context(), in.Email, in.Password)
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, gin.H{"token": tok})
}

func (h *AuthHandler) me(c *gin.Context) {
	u, err := h.svc.Me(c.Request.Context(), c.GetString(mdw.KeyUserID))
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, u)
}
