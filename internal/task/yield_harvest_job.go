package task

import (
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/logic"
	"github.com/go-co-op/gocron/v2"
)

// YieldHarvestJob 收益归集任务
// 定期把金库增值部分提出并存入积分收益池
type YieldHarvestJob struct {
	config  *config.Config
	funding *logic.FundingLogic
}

// NewYieldHarvestJob 创建收益归集任务
func NewYieldHarvestJob(cfg *config.Config, funding *logic.FundingLogic) *YieldHarvestJob {
	return &YieldHarvestJob{config: cfg, funding: funding}
}

// GetName 获取任务名称
func (j *YieldHarvestJob) GetName() string {
	return "yield_harvester"
}

// GetSchedule 获取调度配置
func (j *YieldHarvestJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(6 * time.Hour)
}

// Execute 执行任务
func (j *YieldHarvestJob) Execute() {
	logger.Info("Starting yield harvest task")

	profit, err := j.funding.HarvestYield()
	if err != nil {
		logger.Error("Failed to harvest yield: %v", err)
		return
	}
	if profit == 0 {
		logger.Info("Yield harvest task completed. No profit above threshold")
		return
	}

	logger.Info("Yield harvest task completed. Harvested %d", profit)
}
