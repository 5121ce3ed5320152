package task

import (
	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/logic"
	"github.com/go-co-op/gocron/v2"
	"gorm.io/gorm"
)

// Job 定时任务接口
type Job interface {
	GetName() string
	GetSchedule() gocron.JobDefinition
	Execute()
}

// Manager 任务管理器
type Manager struct {
	scheduler gocron.Scheduler
	db        *gorm.DB
	config    *config.Config
	funding   *logic.FundingLogic
	vesting   *logic.VestingLogic
}

// NewManager 创建新的任务管理器
func NewManager(db *gorm.DB, cfg *config.Config, funding *logic.FundingLogic, vesting *logic.VestingLogic) *Manager {
	s, err := gocron.NewScheduler()
	if err != nil {
		logger.Fatal("Failed to create scheduler: %v", err)
	}

	return &Manager{
		scheduler: s,
		db:        db,
		config:    cfg,
		funding:   funding,
		vesting:   vesting,
	}
}

// Start 启动任务管理器
func Start(db *gorm.DB, cfg *config.Config, funding *logic.FundingLogic, vesting *logic.VestingLogic) *Manager {
	manager := NewManager(db, cfg, funding, vesting)
	manager.RegisterJobs()
	manager.scheduler.Start()
	logger.Info("Task manager started successfully")
	return manager
}

// RegisterJobs 注册所有任务
func (m *Manager) RegisterJobs() {
	m.register(NewCampaignExpireJob(m.db, m.config))
	m.register(NewVestingReleaseJob(m.db, m.config, m.vesting))
	m.register(NewYieldHarvestJob(m.config, m.funding))
	m.register(NewLiquidityRetryJob(m.db, m.config, m.funding))
}

// register 注册单个任务，任务自身不可重入
func (m *Manager) register(job Job) {
	_, err := m.scheduler.NewJob(
		job.GetSchedule(),
		gocron.NewTask(job.Execute),
		gocron.WithName(job.GetName()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		logger.Error("Failed to register job %s: %v", job.GetName(), err)
	}
}

// Stop 停止任务管理器
func (m *Manager) Stop() {
	if err := m.scheduler.Shutdown(); err != nil {
		logger.Error("Failed to shutdown scheduler: %v", err)
	}
	logger.Info("Task manager stopped")
}
