package model

import (
	"time"
)

// RewardPoolModel 奖励池，按单位权重累计奖励
// accPerWeight 使用 1e12 定点缩放，存为十进制字符串避免溢出
type RewardPoolModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Name           string `json:"name" gorm:"not null;uniqueIndex"`
	TotalWeight    int64  `json:"total_weight" gorm:"default:0"`
	AccPerWeight   string `json:"acc_per_weight" gorm:"type:decimal(65,0);default:'0'"`
	Undistributed  int64  `json:"undistributed" gorm:"default:0"` // 无权重持有人期间收到的奖励
	TotalDeposited int64  `json:"total_deposited" gorm:"default:0"`
	TotalClaimed   int64  `json:"total_claimed" gorm:"default:0"`
}

// TableName 自定义表名
func (RewardPoolModel) TableName() string {
	return "reward_pool"
}

// RewardAccountModel 奖励池账户，记录权重与奖励债务
type RewardAccountModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PoolId  int64  `json:"pool_id" gorm:"not null;uniqueIndex:idx_pool_account;index"`
	Address string `json:"address" gorm:"not null;uniqueIndex:idx_pool_account;index"`

	Weight     int64 `json:"weight" gorm:"default:0"`
	RewardDebt int64 `json:"reward_debt" gorm:"default:0"`
	Carried    int64 `json:"carried" gorm:"default:0"` // 权重变更时结转的待领取奖励
}

// TableName 自定义表名
func (RewardAccountModel) TableName() string {
	return "reward_account"
}
