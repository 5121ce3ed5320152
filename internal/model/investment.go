package model

import (
	"time"
)

// InvestmentModel 投资记录，按 (活动, 投资人) 累计
type InvestmentModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_investor;index"`
	Investor   string `json:"investor" gorm:"not null;uniqueIndex:idx_campaign_investor;index"`

	Amount int64 `json:"amount" gorm:"not null"` // 累计投入金额
	Tokens int64 `json:"tokens" gorm:"not null"` // 累计获得代币
}

// TableName 自定义表名
func (InvestmentModel) TableName() string {
	return "investment"
}
