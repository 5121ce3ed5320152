package main

import (
	"log"
	"time"

	"github.com/blues/lps/internal/chain"
	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/database"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/monitor"
	"github.com/blues/lps/internal/router"
	"github.com/blues/lps/internal/task"
	"github.com/gin-gonic/gin"
)

func main() {
	// 加载配置
	cfg := config.Load()

	// 初始化日志
	if err := logger.Setup(cfg.Log); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	// 初始化数据库
	db, err := database.Init(cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database: %v", err)
	}

	// 初始化链管理器与协作方合约
	chainManager, err := chain.NewManager(cfg.Chain)
	if err != nil {
		logger.Fatal("Failed to initialize chain manager: %v", err)
	}
	defer chainManager.Close()

	vault, err := chain.NewVault(chainManager)
	if err != nil {
		logger.Fatal("Failed to initialize vault adapter: %v", err)
	}
	amm, err := chain.NewAMM(chainManager)
	if err != nil {
		logger.Fatal("Failed to initialize amm adapter: %v", err)
	}
	points, err := chain.NewPoints(chainManager)
	if err != nil {
		logger.Fatal("Failed to initialize points adapter: %v", err)
	}
	stable, err := chain.NewStable(chainManager)
	if err != nil {
		logger.Fatal("Failed to initialize stable adapter: %v", err)
	}

	// 初始化业务逻辑
	fundingLogic, err := logic.NewFundingLogic(db, cfg, vault, amm, points, stable)
	if err != nil {
		logger.Fatal("Failed to initialize funding logic: %v", err)
	}
	vestingLogic := logic.NewVestingLogic(db, cfg, vault)

	// 设置Gin模式
	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 初始化路由
	r := router.Setup(db, cfg, fundingLogic, vestingLogic)

	// 启动定时任务
	taskManager := task.Start(db, cfg, fundingLogic, vestingLogic)
	defer taskManager.Stop()

	// 启动事件监控
	processor := monitor.NewEventProcessor(db, fundingLogic.Rewards())
	eventMonitor := monitor.NewEventMonitor(chainManager, db, processor,
		time.Duration(cfg.Task.Interval)*time.Second)
	if err := eventMonitor.Start(); err != nil {
		logger.Fatal("Failed to start event monitor: %v", err)
	}
	defer eventMonitor.Stop()

	// 启动服务器
	logger.Info("Server starting on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		logger.Fatal("Failed to start server: %v", err)
	}
}
