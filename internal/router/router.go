package router

import (
	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/handler"
	"github.com/blues/lps/internal/logic"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func Setup(db *gorm.DB, cfg *config.Config, fundingLogic *logic.FundingLogic, vestingLogic *logic.VestingLogic) *gin.Engine {
	r := gin.Default()

	// 中间件
	r.Use(gin.Logger())
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	// 健康检查
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"service": "launchpad-service",
		})
	})

	// API版本组
	v1 := r.Group("/api/v1")
	{
		// 活动相关路由
		campaignHandler := handler.NewCampaignHandler(db, cfg)
		fundingHandler := handler.NewFundingHandler(fundingLogic)
		campaigns := v1.Group("/campaigns")
		{
			campaigns.POST("", campaignHandler.CreateCampaign)
			campaigns.GET("", campaignHandler.GetCampaigns)
			campaigns.GET("/:id", campaignHandler.GetCampaign)
			campaigns.GET("/:id/quote", campaignHandler.GetQuote)
			campaigns.GET("/:id/stats", campaignHandler.GetCampaignStats)
			campaigns.GET("/:id/investments", campaignHandler.GetCampaignInvestments)
			campaigns.GET("/:id/balance/:address", campaignHandler.GetTokenBalance)
			campaigns.POST("/:id/sponsor", fundingHandler.Sponsor)
			campaigns.POST("/:id/buy", fundingHandler.Buy)
			campaigns.POST("/:id/liquidity/retry", fundingHandler.RetryLiquidity)
		}

		// 投资人相关路由
		investors := v1.Group("/investors")
		{
			investors.GET("/:address/investments", campaignHandler.GetInvestorInvestments)
		}

		// 释放相关路由
		vestingHandler := handler.NewVestingHandler(vestingLogic)
		vesting := v1.Group("/vesting")
		{
			vesting.GET("", vestingHandler.GetEntries)
			vesting.GET("/:id", vestingHandler.GetEntry)
			vesting.POST("/:id/release", vestingHandler.Release)
			vesting.POST("/:id/revoke", vestingHandler.Revoke)
		}

		// 奖励相关路由
		rewardHandler := handler.NewRewardHandler(fundingLogic)
		rewards := v1.Group("/rewards")
		{
			rewards.GET("/:pool/pending", rewardHandler.GetPending)
			rewards.POST("/:pool/claim", rewardHandler.Claim)
			rewards.POST("/:pool/flush", rewardHandler.Flush)
		}

		// 平台统计
		v1.GET("/stats", campaignHandler.GetPlatformStats)
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
