package model

import (
	"time"
)

// CampaignModel 融资活动模型
type CampaignModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// 基本信息
	Name        string `json:"name" gorm:"not null" binding:"required"`
	Symbol      string `json:"symbol" gorm:"not null;index"`
	Description string `json:"description" gorm:"type:text"`

	// 创建者信息
	Creator string `json:"creator" gorm:"not null;index"`

	// 融资信息
	TargetFunding int64 `json:"target_funding" gorm:"not null"`
	AmountRaised  int64 `json:"amount_raised" gorm:"default:0"`

	// 代币信息
	TotalSupply   int64 `json:"total_supply" gorm:"not null"`
	TokensForSale int64 `json:"tokens_for_sale" gorm:"not null"`
	TokensSold    int64 `json:"tokens_sold" gorm:"default:0"`

	// 固定代币分配
	CreatorAllocation   int64 `json:"creator_allocation" gorm:"not null"`
	LiquidityAllocation int64 `json:"liquidity_allocation" gorm:"not null"`
	PlatformAllocation  int64 `json:"platform_allocation" gorm:"not null"`

	// 兼容字段，当前未使用
	ReserveRatio int64 `json:"reserve_ratio" gorm:"default:0"`

	// 时间信息
	Deadline time.Time `json:"deadline" gorm:"not null"`

	// 状态标志
	Active          bool `json:"active" gorm:"default:true"`
	FundingComplete bool `json:"funding_complete" gorm:"default:false"`
	Cancelled       bool `json:"cancelled" gorm:"default:false"`
	Sponsored       bool `json:"sponsored" gorm:"default:false"`

	// 积分池（赞助后生效，只减不增）
	PointsBankInitial int64 `json:"points_bank_initial" gorm:"default:0"`
	PointsBank        int64 `json:"points_bank" gorm:"default:0"`

	// 流动性信息
	PoolRef          string `json:"pool_ref"`
	LiquidityPending bool   `json:"liquidity_pending" gorm:"default:false"`
}

// Status 根据状态标志计算活动状态
func (c *CampaignModel) Status() CampaignStatus {
	switch {
	case c.Cancelled:
		return CampaignStatusCancelled
	case c.FundingComplete:
		return CampaignStatusComplete
	case c.Active:
		return CampaignStatusActive
	default:
		return CampaignStatusInactive
	}
}

// CampaignStatus 活动状态
type CampaignStatus string

const (
	CampaignStatusActive    CampaignStatus = "active"    // 进行中
	CampaignStatusComplete  CampaignStatus = "complete"  // 融资完成
	CampaignStatusCancelled CampaignStatus = "cancelled" // 已取消
	CampaignStatusInactive  CampaignStatus = "inactive"  // 未激活
)

// TableName 自定义表名
func (CampaignModel) TableName() string {
	return "campaign"
}
