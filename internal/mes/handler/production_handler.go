package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type ProductionHandler struct {
	svc *service.ProductionService
}

func NewProductionHandler(svc *service.ProductionService) *ProductionHandler {
	return &ProductionHandler{svc: svc}
}

func (h *ProductionHandler) ListOrders(c *gin.Context) {
	orders, err := h.svc.ListOrders(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": orders})
}

func (h *ProductionHandler) GetOrder(c *gin.Context) {
	detail, err := h.svc.GetOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": detail})
}

func (h *ProductionHandler) StartProcess(c *gin.Context) {
	var req service.StartProcessRequest
	c.ShouldBindJSON(&req)
	process, err := h.svc.StartProcess(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": process})
}

func (h *ProductionHandler) CompleteProcess(c *gin.Context) {
	var req service.CompleteProcessRequest
	c.ShouldBindJSON(&req)
	process, err := h.svc.CompleteProcess(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": process})
}

func (h *ProductionHandler) PauseProcess(c *gin.Context) {
	process, err := h.svc.PauseProcess(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": process})
}

func (h *ProductionHandler) ResumeOrder(c *gin.Context) {
	order, err := h.svc.ResumeOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": order})
}

func (h *ProductionHandler) UpdatePriority(c *gin.Context) {
	var req struct {
		Priority string `json:"priority" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	if err := h.svc.UpdatePriority(c.Request.Context(), c.Param("id"), req.Priority); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
