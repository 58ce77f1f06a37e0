package router

import (
	"time"

	"github.com/bakoushin/celo-box/internal/chain"
	"github.com/bakoushin/celo-box/internal/config"
	"github.com/bakoushin/celo-box/internal/contract"
	"github.com/bakoushin/celo-box/internal/handler"
	"github.com/bakoushin/celo-box/internal/logic"
	"github.com/bakoushin/celo-box/internal/storage"
	"github.com/bakoushin/celo-box/internal/view"
	"github.com/bakoushin/celo-box/internal/wallet"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, chainClient *chain.Client, bridge *wallet.Bridge, images *storage.ImageStore, cfg *config.Config) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 组装业务逻辑
	gateway := contract.NewGateway(chainClient, time.Duration(cfg.Chain.CreationTimeout)*time.Second)
	boxLogic := logic.NewBoxLogic(chainClient, gateway, bridge)
	metadataLogic := logic.NewMetadataLogic(db)
	merger := view.NewMerger(boxLogic, metadataLogic, images)

	boxHandler := handler.NewBoxHandler(boxLogic, metadataLogic, merger, images, cfg)
	walletHandler := handler.NewWalletHandler(bridge, boxLogic)

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "celo-box",
		})
	})

	// 钱包回调（进程级入口，启动时注册一次）
	r.GET("/wallet/callback", walletHandler.Callback)

	// 分享链接入口
	r.GET("/open", boxHandler.OpenShareLink)

	// API版本组
	v1 := r.Group("/api/v1")
	{
		boxes := v1.Group("/boxes")
		{
			boxes.POST("", boxHandler.CreateBox)
			boxes.GET("", boxHandler.ListBoxes)
			boxes.GET("/:address", boxHandler.GetBox)
			boxes.GET("/:address/contributors", boxHandler.GetContributors)
			boxes.GET("/:address/share", boxHandler.Share)
			boxes.POST("/:address/contribute", boxHandler.Contribute)
			boxes.POST("/:address/revoke", boxHandler.Revoke)
			boxes.POST("/:address/redeem", boxHandler.Redeem)
			boxes.POST("/:address/finalize", boxHandler.Finalize)
			boxes.POST("/:address/image", boxHandler.UploadImage)
		}

		account := v1.Group("/account")
		{
			account.POST("/connect", walletHandler.Connect)
		}
	}

	return r
}

// CORS中间件
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
