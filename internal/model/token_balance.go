package model

import (
	"time"
)

// TokenBalanceModel 活动代币余额，每个活动一套独立账本
// 只有本服务可以增发（铸币），外部只读
type TokenBalanceModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	CampaignId int64  `json:"campaign_id" gorm:"not null;uniqueIndex:idx_campaign_holder;index"`
	Address    string `json:"address" gorm:"not null;uniqueIndex:idx_campaign_holder;index"`
	Balance    int64  `json:"balance" gorm:"not null;default:0"`
}

// TableName 自定义表名
func (TokenBalanceModel) TableName() string {
	return "token_balance"
}
