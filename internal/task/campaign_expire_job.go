package task

import (
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/model"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// CampaignExpireJob 活动过期任务
// 扫描超过截止时间仍未达标的活动并置为取消
type CampaignExpireJob struct {
	db     *gorm.DB
	config *config.Config
}

// NewCampaignExpireJob 创建活动过期任务
func NewCampaignExpireJob(db *gorm.DB, cfg *config.Config) *CampaignExpireJob {
	return &CampaignExpireJob{db: db, config: cfg}
}

// GetName 获取任务名称
func (j *CampaignExpireJob) GetName() string {
	return "campaign_expire_sweeper"
}

// GetSchedule 获取调度配置
func (j *CampaignExpireJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Duration(j.config.Task.Interval) * time.Second)
}

// Execute 执行任务
func (j *CampaignExpireJob) Execute() {
	logger.Info("Starting campaign expire task")

	now := time.Now()

	var campaigns []model.CampaignModel
	err := j.db.Where("active = ? AND funding_complete = ? AND cancelled = ? AND deadline <= ?",
		true, false, false, now).Find(&campaigns).Error
	if err != nil {
		logger.Error("Failed to fetch expired campaigns: %v", err)
		return
	}

	expiredCount := 0
	for _, campaign := range campaigns {
		// 条件更新防止与同时完成的买入交叉
		result := j.db.Model(&model.CampaignModel{}).
			Where("id = ? AND funding_complete = ? AND cancelled = ?", campaign.Id, false, false).
			Update("cancelled", true)
		if result.Error != nil {
			logger.Error("Failed to cancel campaign %d: %v", campaign.Id, result.Error)
			continue
		}
		if result.RowsAffected == 0 {
			continue
		}

		logger.Info("Cancelled expired campaign %d (raised %d/%d)",
			campaign.Id, campaign.AmountRaised, campaign.TargetFunding)
		expiredCount++
	}

	logger.Info("Campaign expire task completed. Cancelled %d campaigns", expiredCount)
}
