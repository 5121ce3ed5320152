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

// VestingReleaseJob 线性释放任务
// 周期性释放所有未撤销条目的到期金额，受益人无需手动领取
type VestingReleaseJob struct {
	db      *gorm.DB
	config  *config.Config
	vesting *logic.VestingLogic
}

// NewVestingReleaseJob 创建线性释放任务
func NewVestingReleaseJob(db *gorm.DB, cfg *config.Config, vesting *logic.VestingLogic) *VestingReleaseJob {
	return &VestingReleaseJob{db: db, config: cfg, vesting: vesting}
}

// GetName 获取任务名称
func (j *VestingReleaseJob) GetName() string {
	return "vesting_release_runner"
}

// GetSchedule 获取调度配置
func (j *VestingReleaseJob) GetSchedule() gocron.JobDefinition {
	return gocron.DurationJob(time.Hour)
}

// Execute 执行任务
func (j *VestingReleaseJob) Execute() {
	logger.Info("Starting vesting release task")

	var entries []model.VestingEntryModel
	err := j.db.Where("revoked = ? AND released < total_amount", false).Find(&entries).Error
	if err != nil {
		logger.Error("Failed to fetch vesting entries: %v", err)
		return
	}

	releasedCount := 0
	for _, entry := range entries {
		released, err := j.vesting.Release(entry.Id)
		if err != nil {
			// 暂无可释放金额不算失败
			if logic.KindOf(err) == logic.KindState {
				continue
			}
			logger.Error("Failed to release vesting entry %d: %v", entry.Id, err)
			continue
		}

		logger.Info("Released %d for vesting entry %d (beneficiary %s)",
			released, entry.Id, entry.Beneficiary)
		releasedCount++
	}

	logger.Info("Vesting release task completed. Released %d entries", releasedCount)
}
