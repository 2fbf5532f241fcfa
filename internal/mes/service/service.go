package service

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/bitfantasy/nimo-mes/internal/mes/repository"
	"go.uber.org/zap"
)

// ErrValidation 请求数据不合法或当前状态不允许该操作
var ErrValidation = errors.New("validation failed")

// Services MES 服务集合
type Services struct {
	Sales        *SalesService
	Proposal     *ProposalService
	Production   *ProductionService
	Quality      *QualityService
	Purchase     *PurchaseService
	Inventory    *InventoryService
	Notification *NotificationService
}

func NewServices(repos *repository.Repositories, logger *zap.Logger) *Services {
	notification := NewNotificationService(repos.Notification)
	quality := NewQualityService(repos.Quality, repos.Production, repos.Notification)
	return &Services{
		Sales:        NewSalesService(repos.Sales),
		Proposal:     NewProposalService(repos.Sales, repos.Production, repos.Quality, repos.Notification, logger),
		Production:   NewProductionService(repos.Production, repos.Purchase, repos.Sales, repos.Notification),
		Quality:      quality,
		Purchase:     NewPurchaseService(repos.Purchase, repos.Inventory, repos.Notification),
		Inventory:    NewInventoryService(repos.Inventory, repos.Notification),
		Notification: notification,
	}
}

// 单号格式沿用表格里的既有数据：前缀 + 毫秒时间戳末8位（+ 随机后缀）。
// 理论上可能碰撞，与原有数据保持一致不做查重

func last8(ms int64) string {
	s := strconv.FormatInt(ms, 10)
	if len(s) > 8 {
		return s[len(s)-8:]
	}
	return s
}

func newSalesOrderNumber() string {
	return "PV-" + last8(time.Now().UnixMilli())
}

func newProposalNumber() string {
	return "PROP-" + last8(time.Now().UnixMilli())
}

func newProductionOrderNumber() string {
	return fmt.Sprintf("OP-%s-%s", last8(time.Now().UnixMilli()), strings.ToUpper(randSuffix(4)))
}

func newInspectionNumber() string {
	return "INSP-" + last8(time.Now().UnixMilli())
}

const suffixAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

func randSuffix(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = suffixAlphabet[rand.Intn(len(suffixAlphabet))]
	}
	return string(b)
}
