package model

import (
	"time"
)

// VestingEntryModel 线性释放条目
type VestingEntryModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId  int64  `json:"campaign_id" gorm:"not null;index"`
	Beneficiary string `json:"beneficiary" gorm:"not null;index"`

	TotalAmount int64     `json:"total_amount" gorm:"not null"` // 总释放金额
	Released    int64     `json:"released" gorm:"default:0"`    // 已释放金额
	StartTime   time.Time `json:"start_time" gorm:"not null"`
	Duration    int64     `json:"duration" gorm:"not null"` // 释放周期（秒）
	Revoked     bool      `json:"revoked" gorm:"default:false"`
}

// TableName 自定义表名
func (VestingEntryModel) TableName() string {
	return "vesting_entry"
}
