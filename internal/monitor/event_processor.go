package monitor

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/lps/internal/chain"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/model"
	"github.com/blues/lps/internal/reward"
	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"
)

var zeroAddress = common.Address{}

// EventProcessor 链上事件处理器
// 把积分代币与 LP 份额的链上变动折算成奖励账本的权重变更，
// 事件按 (tx_hash, log_index) 去重，重复投递不会二次记账
type EventProcessor struct {
	db      *gorm.DB
	rewards *reward.Ledger
}

// NewEventProcessor 创建事件处理器
func NewEventProcessor(db *gorm.DB, rewards *reward.Ledger) *EventProcessor {
	return &EventProcessor{db: db, rewards: rewards}
}

// ProcessEvent 处理单个事件
func (p *EventProcessor) ProcessEvent(event *model.EventModel, data map[string]interface{}) error {
	return p.db.Transaction(func(tx *gorm.DB) error {
		// 幂等检查
		var count int64
		if err := tx.Model(&model.EventModel{}).
			Where("tx_hash = ? AND log_index = ?", event.TxHash, event.LogIndex).
			Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			logger.Debug("Skipping duplicate event %s:%d", event.TxHash, event.LogIndex)
			return nil
		}

		if err := tx.Create(event).Error; err != nil {
			return err
		}

		if err := p.dispatch(tx, event, data); err != nil {
			return err
		}

		return tx.Model(event).Update("processed", true).Error
	})
}

// dispatch 按合约与事件类型分发
func (p *EventProcessor) dispatch(tx *gorm.DB, event *model.EventModel, data map[string]interface{}) error {
	switch event.ContractName {
	case chain.ContractPoints:
		if event.EventName == "Transfer" {
			return p.handlePointsTransfer(tx, data)
		}
	case chain.ContractAMM:
		switch event.EventName {
		case "Mint":
			return p.handleLPChange(tx, data, 1)
		case "Burn":
			return p.handleLPChange(tx, data, -1)
		case "FeesCollected":
			return p.handleFeesCollected(tx, data)
		}
	}

	logger.Debug("No handler for event %s.%s", event.ContractName, event.EventName)
	return nil
}

// handlePointsTransfer 积分转账事件
// 积分余额即积分收益池的权重，转账双方的权重同步调整
func (p *EventProcessor) handlePointsTransfer(tx *gorm.DB, data map[string]interface{}) error {
	from, err := addressValue(data, "from")
	if err != nil {
		return err
	}
	to, err := addressValue(data, "to")
	if err != nil {
		return err
	}
	value, err := bigIntValue(data, "value")
	if err != nil {
		return err
	}

	rewards := p.rewards.WithTx(tx)
	if from != zeroAddress {
		if err := p.adjustWeight(rewards, logic.PoolPointsYield, from.Hex(), -value); err != nil {
			return err
		}
	}
	if to != zeroAddress {
		if err := p.adjustWeight(rewards, logic.PoolPointsYield, to.Hex(), value); err != nil {
			return err
		}
	}
	return nil
}

// handleLPChange LP 份额铸造与销毁事件
func (p *EventProcessor) handleLPChange(tx *gorm.DB, data map[string]interface{}, sign int64) error {
	provider, err := addressValue(data, "provider")
	if err != nil {
		return err
	}
	liquidity, err := bigIntValue(data, "liquidity")
	if err != nil {
		return err
	}

	return p.adjustWeight(p.rewards.WithTx(tx), logic.PoolLPFee, provider.Hex(), sign*liquidity)
}

// handleFeesCollected 手续费归集事件，存入 LP 手续费池
func (p *EventProcessor) handleFeesCollected(tx *gorm.DB, data map[string]interface{}) error {
	amount, err := bigIntValue(data, "amount")
	if err != nil {
		return err
	}
	if amount <= 0 {
		return nil
	}
	return p.rewards.WithTx(tx).Deposit(logic.PoolLPFee, amount)
}

// adjustWeight 按增量调整账户权重
func (p *EventProcessor) adjustWeight(rewards *reward.Ledger, pool, account string, delta int64) error {
	current, err := rewards.AccountWeight(pool, account)
	if err != nil {
		return err
	}
	newWeight := current + delta
	if newWeight < 0 {
		// 事件乱序或漏块会出现负权重，钳到零并告警
		logger.Warn("Negative weight for %s in pool %s (current %d, delta %d), clamping to zero",
			account, pool, current, delta)
		newWeight = 0
	}
	return rewards.OnWeightChange(pool, account, newWeight)
}

// addressValue 从事件数据中取地址字段
func addressValue(data map[string]interface{}, key string) (common.Address, error) {
	value, ok := data[key]
	if !ok {
		return common.Address{}, fmt.Errorf("missing event field: %s", key)
	}
	address, ok := value.(common.Address)
	if !ok {
		return common.Address{}, fmt.Errorf("event field %s has unexpected type %T", key, value)
	}
	return address, nil
}

// bigIntValue 从事件数据中取整数字段
func bigIntValue(data map[string]interface{}, key string) (int64, error) {
	value, ok := data[key]
	if !ok {
		return 0, fmt.Errorf("missing event field: %s", key)
	}
	n, ok := value.(*big.Int)
	if !ok {
		return 0, fmt.Errorf("event field %s has unexpected type %T", key, value)
	}
	if !n.IsInt64() {
		return 0, errors.New("event value exceeds int64 range")
	}
	return n.Int64(), nil
}
