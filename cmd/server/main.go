package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/bitfantasy/nimo-mes/internal/config"
	mesHandler "github.com/bitfantasy/nimo-mes/internal/mes/handler"
	mesRepo "github.com/bitfantasy/nimo-mes/internal/mes/repository"
	mesService "github.com/bitfantasy/nimo-mes/internal/mes/service"
	"github.com/bitfantasy/nimo-mes/internal/middleware"
	"github.com/bitfantasy/nimo-mes/internal/sheet"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	// 加载 .env 文件
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using environment variables")
	}

	// 加载配置
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// 初始化日志
	zapLogger, err := initLogger(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to init logger: %v", err)
	}
	defer zapLogger.Sync()

	zapLogger.Info("Starting nimo-mes service",
		zap.String("version", Version),
		zap.String("build_time", BuildTime),
	)

	// 初始化表格存储
	store := sheet.NewSheetStore(cfg.Sheets.SpreadsheetID, cfg.Sheets.APIKey, cfg.Sheets.CacheTTL)

	// 初始化 MES 依赖
	repos := mesRepo.NewRepositories(store)
	services := mesService.NewServices(repos, zapLogger)
	handlers := mesHandler.NewHandlers(services)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建路由
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.Logger(zapLogger))
	router.Use(middleware.CORS())
	router.Use(middleware.RequestID())

	// 健康检查
	router.GET("/health/live", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})
	router.GET("/health/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "service": "nimo-mes"})
	})

	// 版本信息
	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service":    "nimo-mes",
			"version":    Version,
			"build_time": BuildTime,
		})
	})

	// MES API v1
	v1 := router.Group("/api/v1/mes")
	if cfg.JWT.Secret != "" {
		v1.Use(middleware.JWTAuth(cfg.JWT.Secret))
	}
	{
		// 客户管理
		customers := v1.Group("/customers")
		{
			customers.GET("", handlers.Sales.ListCustomers)
			customers.POST("", handlers.Sales.CreateCustomer)
		}

		// 产品管理
		products := v1.Group("/products")
		{
			products.GET("", handlers.Sales.ListProducts)
			products.POST("", handlers.Sales.CreateProduct)
		}

		// 销售订单
		salesOrders := v1.Group("/sales-orders")
		{
			salesOrders.GET("", handlers.Sales.ListOrders)
			salesOrders.POST("", handlers.Sales.CreateOrder)
			salesOrders.GET("/:id", handlers.Sales.GetOrder)
			salesOrders.DELETE("/:id", handlers.Sales.DeleteOrder)
		}

		// 报价单
		proposals := v1.Group("/proposals")
		{
			proposals.GET("", handlers.Sales.ListProposals)
			proposals.POST("", handlers.Sales.CreateProposal)
			proposals.POST("/:id/approve", handlers.Proposal.Approve)
			proposals.POST("/:id/reject", handlers.Proposal.Reject)
		}

		// 生产订单与工序
		production := v1.Group("/production-orders")
		{
			production.GET("", handlers.Production.ListOrders)
			production.GET("/:id", handlers.Production.GetOrder)
			production.POST("/:id/resume", handlers.Production.ResumeOrder)
			production.PUT("/:id/priority", handlers.Production.UpdatePriority)
		}
		processes := v1.Group("/processes")
		{
			processes.POST("/:id/start", handlers.Production.StartProcess)
			processes.POST("/:id/complete", handlers.Production.CompleteProcess)
			processes.POST("/:id/pause", handlers.Production.PauseProcess)
		}

		// 质检
		inspections := v1.Group("/inspections")
		{
			inspections.GET("", handlers.Quality.ListInspections)
			inspections.GET("/metrics", handlers.Quality.Metrics)
			inspections.GET("/:id", handlers.Quality.GetInspection)
			inspections.POST("/:id/start", handlers.Quality.StartInspection)
			inspections.POST("/:id/complete", handlers.Quality.CompleteInspection)
		}
		criteria := v1.Group("/inspection-criteria")
		{
			criteria.GET("", handlers.Quality.ListCriteria)
			criteria.POST("", handlers.Quality.CreateCriteria)
			criteria.PUT("/:id/toggle", handlers.Quality.ToggleCriteria)
			criteria.DELETE("/:id", handlers.Quality.DeleteCriteria)
		}

		// 采购
		purchases := v1.Group("/purchases")
		{
			purchases.GET("", handlers.Purchase.ListPurchases)
			purchases.POST("", handlers.Purchase.RequestMaterial)
			purchases.POST("/:id/order", handlers.Purchase.PlaceOrder)
			purchases.POST("/:id/receive", handlers.Purchase.Receive)
		}
		suppliers := v1.Group("/suppliers")
		{
			suppliers.GET("", handlers.Purchase.ListSuppliers)
			suppliers.POST("", handlers.Purchase.CreateSupplier)
			suppliers.POST("/:id/deactivate", handlers.Purchase.DeactivateSupplier)
		}

		// 库存
		inventory := v1.Group("/inventory")
		{
			inventory.GET("", handlers.Inventory.ListItems)
			inventory.POST("", handlers.Inventory.CreateItem)
			inventory.GET("/low-stock", handlers.Inventory.LowStock)
			inventory.POST("/:id/adjust", handlers.Inventory.AdjustStock)
			inventory.GET("/:id/movements", handlers.Inventory.ListMovements)
		}

		// 通知
		notifications := v1.Group("/notifications")
		{
			notifications.GET("", handlers.Notification.List)
			notifications.PUT("/read-all", handlers.Notification.MarkAllRead)
			notifications.PUT("/:id/read", handlers.Notification.MarkRead)
		}
	}

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// 启动服务器
	go func() {
		zapLogger.Info("MES Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zapLogger.Info("Shutting down MES server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("MES Server exited")
}

func initLogger(cfg config.LogConfig) (*zap.Logger, error) {
	var zapCfg zap.Config
	if cfg.Format == "json" {
		zapCfg = zap.NewProductionConfig()
	} else {
		zapCfg = zap.NewDevelopmentConfig()
	}
	switch cfg.Level {
	case "debug":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "info":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapCfg.Level = zap.NewAtomicLevelAt(zap.ErrorLevel)
	}
	return zapCfg.Build()
}
