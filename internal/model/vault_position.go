package model

import (
	"time"
)

// VaultPositionModel 收益金库持仓本金，按持有人一行
// 收益 = 金库资产估值 - 本金，由收益归集任务计算
type VaultPositionModel struct {
	Id        int64     `json:"id" gorm:"primaryKey"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Owner     string `json:"owner" gorm:"not null;uniqueIndex"`
	Principal int64  `json:"principal" gorm:"default:0"`
}

// TableName 自定义表名
func (VaultPositionModel) TableName() string {
	return "vault_position"
}
