package handler

import (
	"errors"
	"net/http"

	"github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
	"github.com/gin-gonic/gin"
)

// Handlers MES HTTP处理器集合
type Handlers struct {
	Sales        *SalesHandler
	Proposal     *ProposalHandler
	Production   *ProductionHandler
	Quality      *QualityHandler
	Purchase     *PurchaseHandler
	Inventory    *InventoryHandler
	Notification *NotificationHandler
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{
		Sales:        NewSalesHandler(services.Sales),
		Proposal:     NewProposalHandler(services.Proposal),
		Production:   NewProductionHandler(services.Production),
		Quality:      NewQualityHandler(services.Quality),
		Purchase:     NewPurchaseHandler(services.Purchase),
		Inventory:    NewInventoryHandler(services.Inventory),
		Notification: NewNotificationHandler(services.Notification),
	}
}

// respondErr 统一的错误到状态码映射：
// 记录不存在 404/10002，校验失败 400/10004，其余 500/50001
func respondErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sheet.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"code": 10002, "message": err.Error()})
	case errors.Is(err, service.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"code": 10004, "message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"code": 50001, "message": err.Error()})
	}
}
