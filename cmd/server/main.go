package main

import (
	"context"
	"log"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/database"
	"github.com/bakoushin/celo-box/internal/logger"
	"github.com/bakoushin/celo-box/internal/router"
	"github.com/bakoushin/celo-box/internal/scheduler"
	"github.com/bakoushin/celo-box/internal/storage"
	"github.com/bakoushin/celo-box/internal/wallet"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to setup logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	// 初始化链客户端
	chainClient, err := chain.NewClient(cfg.Chain)
	if err != nil {
		log.Fatalf("Failed to initialize chain client: %v", err)
	}

	// 初始化图片存储
	images, err := storage.NewImageStore(context.Background(), cfg.Storage)
	if err != nil {
		log.Fatalf("Failed to initialize image store: %v", err)
	}

	// 初始化钱包签名桥
	bridge := wallet.NewBridge(cfg.Wallet, nil)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, chainClient, bridge, images, cfg)

	// 启动定时任务
	scheduler.Start(bridge, cfg)

	// 启动服务器
	log.Printf("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
