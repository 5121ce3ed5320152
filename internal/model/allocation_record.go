package model

import (
	"time"
)

// AllocationRecordModel 融资完成时的资金分配记录
type AllocationRecordModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64 `json:"campaign_id" gorm:"not null;uniqueIndex"`

	RaisedTotal     int64 `json:"raised_total" gorm:"not null"`     // 融资总额
	InstantAmount   int64 `json:"instant_amount" gorm:"not null"`   // 即时支付给创建者
	VestedAmount    int64 `json:"vested_amount" gorm:"not null"`    // 线性释放部分
	FeeAmount       int64 `json:"fee_amount" gorm:"not null"`       // 平台费
	LiquidityAmount int64 `json:"liquidity_amount" gorm:"not null"` // 流动性部分

	LiquidityStatus string `json:"liquidity_status" gorm:"default:'pending'"` // pending, success, failed
	PoolRef         string `json:"pool_ref"`
}

// LiquidityStatus 流动性注入状态
const (
	LiquidityStatusPending = "pending" // 待注入
	LiquidityStatusSuccess = "success" // 成功
	LiquidityStatusFailed  = "failed"  // 失败，等待重试
)

// TableName 自定义表名
func (AllocationRecordModel) TableName() string {
	return "allocation_record"
}
