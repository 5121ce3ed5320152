package task

import (
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// LiquidityRetryJob 流动性重试任务
// 补齐完成分账时注入失败的流动性
type LiquidityRetryJob struct {
	db      *gorm.DB
	config  *config.Config
	funding *logic.FundingLogic
}

// NewLiquidityRetryJob 创建流动性重试任务
func NewLiquidityRetryJob(db *gorm.DB, cfg *config.Config, funding *logic.FundingLogic) *LiquidityRetryJob {
	return &LiquidityRetryJob{db: db, config: cfg, funding: funding}
}

// GetName 获取任务名称
func (j *LiquidityRetryJob) GetName() string {
	return "liquidity_retrier"
}

// GetSchedule 获取调度配置
func (j *LiquidityRetryJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(10 * time.Minute)
}

// Execute 执行任务
func (j *LiquidityRetryJob) Execute() {
	logger.Info("Starting liquidity retry task")

	var campaigns []model.CampaignModel
	err := j.db.Where("liquidity_pending = ?", true).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch campaigns with pending liquidity: %v", err)
		return
	}

	retriedCount := 0
	for _, campaign := range campaigns {
		if err := j.funding.RetryLiquidity(campaign.Id); err != nil {
			logger.Error("Failed to retry liquidity for campaign %d: %v", campaign.Id, err)
			continue
		}
		logger.Info("Successfully provided liquidity for campaign %d", campaign.Id)
		retriedCount++
	}

	logger.Info("Liquidity retry task completed. Retried %d campaigns", retriedCount)
}
