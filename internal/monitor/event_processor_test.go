package monitor

import (
	"math/big"
	"testing"

	"github.com/blues/lps/internal/chain"
	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/model"
	"github.com/blues/lps/internal/reward"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupProcessor(t *testing.T) (*EventProcessor, *reward.Ledger) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.EventModel{},
		&model.RewardPoolModel{},
		&model.RewardAccountModel{},
	))

	rewards := reward.NewLedger(db)
	require.NoError(t, rewards.EnsurePool(logic.PoolPointsYield))
	require.NoError(t, rewards.EnsurePool(logic.PoolLPFee))

	return NewEventProcessor(db, rewards), rewards
}

func pointsTransferEvent(txHash string, logIndex int64) (*model.EventModel, map[string]interface{}) {
	event := &model.EventModel{
		ContractAddress: "0xPOINTS",
		ContractName:    chain.ContractPoints,
		BlockNum:        100,
		TxHash:          txHash,
		LogIndex:        logIndex,
		EventName:       "Transfer",
	}
	data := map[string]interface{}{
		"eventName": "Transfer",
		"from":      common.Address{},
		"to":        common.HexToAddress("0x01"),
		"value":     big.NewInt(500),
	}
	return event, data
}

// 积分铸造事件把接收方在积分收益池的权重抬到余额
func TestPointsTransferUpdatesWeight(t *testing.T) {
	p, rewards := setupProcessor(t)

	event, data := pointsTransferEvent("0xaa", 0)
	require.NoError(t, p.ProcessEvent(event, data))

	weight, err := rewards.AccountWeight(logic.PoolPointsYield, common.HexToAddress("0x01").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(500), weight)

	// 持有人之间转账，双方权重同步变化
	transfer := &model.EventModel{
		ContractName: chain.ContractPoints,
		TxHash:       "0xab",
		LogIndex:     0,
		EventName:    "Transfer",
	}
	transferData := map[string]interface{}{
		"eventName": "Transfer",
		"from":      common.HexToAddress("0x01"),
		"to":        common.HexToAddress("0x02"),
		"value":     big.NewInt(200),
	}
	require.NoError(t, p.ProcessEvent(transfer, transferData))

	weight, err = rewards.AccountWeight(logic.PoolPointsYield, common.HexToAddress("0x01").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(300), weight)

	weight, err = rewards.AccountWeight(logic.PoolPointsYield, common.HexToAddress("0x02").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(200), weight)
}

// 重复投递同一事件不会二次记账
func TestProcessEventIsIdempotent(t *testing.T) {
	p, rewards := setupProcessor(t)

	event, data := pointsTransferEvent("0xaa", 0)
	require.NoError(t, p.ProcessEvent(event, data))

	duplicate, data2 := pointsTransferEvent("0xaa", 0)
	require.NoError(t, p.ProcessEvent(duplicate, data2))

	weight, err := rewards.AccountWeight(logic.PoolPointsYield, common.HexToAddress("0x01").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(500), weight)

	var count int64
	p.db.Model(&model.EventModel{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

// LP 份额事件驱动手续费池权重，手续费归集按权重分配
func TestLPFlowFeedsFeePool(t *testing.T) {
	p, rewards := setupProcessor(t)

	mint := &model.EventModel{
		ContractName: chain.ContractAMM,
		TxHash:       "0xb0",
		LogIndex:     0,
		EventName:    "Mint",
	}
	require.NoError(t, p.ProcessEvent(mint, map[string]interface{}{
		"eventName": "Mint",
		"provider":  common.HexToAddress("0x03"),
		"liquidity": big.NewInt(1_000),
	}))

	fees := &model.EventModel{
		ContractName: chain.ContractAMM,
		TxHash:       "0xb1",
		LogIndex:     0,
		EventName:    "FeesCollected",
	}
	require.NoError(t, p.ProcessEvent(fees, map[string]interface{}{
		"eventName": "FeesCollected",
		"amount":    big.NewInt(77),
	}))

	pending, err := rewards.Pending(logic.PoolLPFee, common.HexToAddress("0x03").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(77), pending)

	burn := &model.EventModel{
		ContractName: chain.ContractAMM,
		TxHash:       "0xb2",
		LogIndex:     0,
		EventName:    "Burn",
	}
	require.NoError(t, p.ProcessEvent(burn, map[string]interface{}{
		"eventName": "Burn",
		"provider":  common.HexToAddress("0x03"),
		"liquidity": big.NewInt(1_000),
	}))

	// 份额清零后已累计的手续费仍可领取
	weight, err := rewards.AccountWeight(logic.PoolLPFee, common.HexToAddress("0x03").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(0), weight)

	pending, err = rewards.Pending(logic.PoolLPFee, common.HexToAddress("0x03").Hex())
	require.NoError(t, err)
	assert.Equal(t, int64(77), pending)
}
