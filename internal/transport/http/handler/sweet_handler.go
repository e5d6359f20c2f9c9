package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sweetshop-api/internal/domain"
	"sweetshop-api/internal/service"
	resp "sweetshop-api/internal/transport/http/response"
)

type SweetHandler struct {
	svc *service.InventoryService
	log *zap.Logger
}

func NewSweetHandler(svc *service.InventoryService, log *zap.Logger) *SweetHandler {
	return &SweetHandler{svc: svc, log: log}
}

// Mount user 需要登录，admin 额外要求 admin 角色
func (h *SweetHandler) Mount(user, admin *gin.RouterGroup) {
	user.GET("", h.list)
	user.GET("/search", h.search)
	user.POST("/:id/purchase", h.purchase)

	admin.POST("", h.add)
	admin.PUT("/:id", h.update)
	admin.DELETE("/:id", h.remove)
	admin.POST("/:id/restock", h.restock)
}

func (h *SweetHandler) list(c *gin.Context) {
	items, err := h.svc.List(c.Request.Context())
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, items)
}

func (h *SweetHandler) search(c *gin.Context) {
	var q struct {
		Name     string   `form:"name"`
		Category string   `form:"category"`
		MinPrice *float64 `form:"minPrice"`
		MaxPrice *float64 `form:"maxPrice"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.svc.Search(c.Request.Context(), domain.SweetFilter{
		Name:     q.Name,
		Category: q.Category,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
	})
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, items)
}

func (h *SweetHandler) add(c *gin.Context) {
	var in domain.SweetInput
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	created, err := h.svc.Add(c.Request.Context(), &in)
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.Created(c, created)
}

func (h *SweetHandler) update(c *gin.Context) {
	var patch domain.SweetPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	updated, err := h.svc.Update(c.Request.Context(), c.Param("id"), &patch)
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, updated)
}

func (h *SweetHandler) remove(c *gin.Context) {
	if err := h.svc.Remove(c.Request.Context(), c.Param("id")); err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, gin.H{"message": "sweet deleted"})
}

func (h *SweetHandler) purchase(c *gin.Context) {
	stock, err := h.svc.Purchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, gin.H{"message": "purchase successful", "currentStock": stock})
}

func (h *SweetHandler) restock(c *gin.Context) {
	var in struct {
		Amount *int `json:"amount"`
	}
	if err := c.ShouldBindJSON(&in); err != nil {
		resp.Err(c, http.StatusBadRequest, err.Error())
		return
	}
	amount := 0
	if in.Amount != nil {
		amount = *in.Amount
	}
	stock, err := h.svc.Restock(c.Request.Context(), c.Param("id"), amount)
	if err != nil {
		writeErr(c, h.log, err)
		return
	}
	resp.OK(c, gin.H{"message": "restock successful", "currentStock": stock})
}
