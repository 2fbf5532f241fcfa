package handler

import (
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/gin-gonic/gin"
)

type PurchaseHandler struct {
	svc *service.PurchaseService
}

func NewPurchaseHandler(svc *service.PurchaseService) *PurchaseHandler {
	return &PurchaseHandler{svc: svc}
}

func (h *PurchaseHandler) RequestMaterial(c *gin.Context) {
	var req service.RequestMaterialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	purchase, err := h.svc.RequestMaterial(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": purchase})
}

func (h *PurchaseHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.svc.ListPurchases(c.Request.Context())
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": purchases})
}

func (h *PurchaseHandler) PlaceOrder(c *gin.Context) {
	var req struct {
		Supplier string `json:"supplier"`
	}
	c.ShouldBindJSON(&req)
	purchase, err := h.svc.PlaceOrder(c.Request.Context(), c.Param("id"), req.Supplier)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": purchase})
}

func (h *PurchaseHandler) Receive(c *gin.Context) {
	purchase, err := h.svc.Receive(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": purchase})
}

// --- Supplier ---

func (h *PurchaseHandler) CreateSupplier(c *gin.Context) {
	var req service.SupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"code": 10001, "message": err.Error()})
		return
	}
	supplier, err := h.svc.CreateSupplier(c.Request.Context(), req)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": supplier})
}

func (h *PurchaseHandler) ListSuppliers(c *gin.Context) {
	activeOnly := c.Query("active") == "true"
	suppliers, err := h.svc.ListSuppliers(c.Request.Context(), activeOnly)
	if err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success", "data": suppliers})
}

func (h *PurchaseHandler) DeactivateSupplier(c *gin.Context) {
	if err := h.svc.DeactivateSupplier(c.Request.Context(), c.Param("id")); err != nil {
		respondErr(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"code": 0, "message": "success"})
}
