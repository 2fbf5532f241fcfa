package repository

import "github.com/bitfantasy/nimo-mes/internal/sheet"

// Repositories MES 仓库集合
type Repositories struct {
	Sales        *SalesRepository
	Production   *ProductionRepository
	Quality      *QualityRepository
	Purchase     *PurchaseRepository
	Inventory    *InventoryRepository
	Notification *NotificationRepository
}

func NewRepositories(store sheet.Store) *Repositories {
	return &Repositories{
		Sales:        NewSalesRepository(store),
		Production:   NewProductionRepository(store),
		Quality:      NewQualityRepository(store),
		Purchase:     NewPurchaseRepository(store),
		Inventory:    NewInventoryRepository(store),
		Notification: NewNotificationRepository(store),
	}
}
