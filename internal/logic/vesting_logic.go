package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/model"
	"gorm.io/gorm"
)

// VestingLogic 线性释放业务逻辑
type VestingLogic struct {
	db     *gorm.DB
	config *config.Config
	vault  YieldVault
	nowFn  func() time.Time
}

// NewVestingLogic 创建线性释放业务逻辑
func NewVestingLogic(db *gorm.DB, cfg *config.Config, vault YieldVault) *VestingLogic {
	return &VestingLogic{db: db, config: cfg, vault: vault, nowFn: time.Now}
}

// Releasable 计算截至指定时刻的可释放金额
// 线性释放：released_total(t) = total * min(elapsed, duration) / duration
func Releasable(entry *model.VestingEntryModel, at time.Time) int64 {
	if entry.Revoked {
		return 0
	}
	elapsed := int64(at.Sub(entry.StartTime).Seconds())
	if elapsed <= 0 {
		return 0
	}
	if elapsed > entry.Duration {
		elapsed = entry.Duration
	}
	vested := mulDiv(entry.TotalAmount, elapsed, entry.Duration)
	return vested - entry.Released
}

// Release 释放到期金额
// 释放金额从金库转记到受益人名下继续生息；条件更新防止并发重复释放
func (l *VestingLogic) Release(entryId int64) (int64, error) {
	var released int64
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var entry model.VestingEntryModel
		if err := tx.First(&entry, entryId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewStateError("释放条目不存在")
			}
			return err
		}
		if entry.Revoked {
			return NewStateError("释放条目已被撤销")
		}

		releasable := Releasable(&entry, l.nowFn())
		if releasable <= 0 {
			return NewStateError("暂无可释放金额")
		}

		updated := tx.Model(&model.VestingEntryModel{}).
			Where("id = ? AND released = ? AND revoked = ?", entryId, entry.Released, false).
			Update("released", entry.Released+releasable)
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected == 0 {
			return NewStateError("释放条目状态已变化，请重试")
		}

		if _, err := l.vault.Deposit(releasable, entry.Beneficiary); err != nil {
			return NewExternalError("释放资金存入金库失败", err)
		}
		if err := addVaultPrincipal(tx, entry.Beneficiary, releasable); err != nil {
			return err
		}

		released = releasable
		return nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

// Revoke 撤销释放条目
// 仅管理员可操作；已释放部分不受影响，未释放部分停止释放
func (l *VestingLogic) Revoke(entryId int64, caller string) error {
	if caller != l.config.Funding.AdminAddress {
		return NewAuthorizationError("只有管理员可以撤销释放条目")
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		var entry model.VestingEntryModel
		if err := tx.First(&entry, entryId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewStateError("释放条目不存在")
			}
			return err
		}
		if entry.Revoked {
			return NewStateError("释放条目已被撤销")
		}

		updated := tx.Model(&model.VestingEntryModel{}).
			Where("id = ? AND revoked = ?", entryId, false).
			Update("revoked", true)
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected == 0 {
			return NewStateError("释放条目已被撤销")
		}
		return nil
	})
}

// GetEntry 获取释放条目
func (l *VestingLogic) GetEntry(entryId int64) (*model.VestingEntryModel, error) {
	var entry model.VestingEntryModel
	if err := l.db.First(&entry, entryId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewStateError("释放条目不存在")
		}
		return nil, fmt.Errorf("获取释放条目失败: %w", err)
	}
	return &entry, nil
}

// GetEntries 获取受益人的所有释放条目
func (l *VestingLogic) GetEntries(beneficiary string) ([]model.VestingEntryModel, error) {
	var entries []model.VestingEntryModel
	if err := l.db.Where("beneficiary = ?", beneficiary).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("获取释放条目失败: %w", err)
	}
	return entries, nil
}
