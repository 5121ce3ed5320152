package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// AMM 流动性路由适配器，实现 logic.LiquidityProvider 接口
// 路由合约按代币符号注册资产，注入成功后发出 LiquidityAdded 事件
type AMM struct {
	manager  *Manager
	contract *Contract
}

// NewAMM 创建 AMM 适配器
func NewAMM(manager *Manager) (*AMM, error) {
	contract, err := manager.GetContract(ContractAMM)
	if err != nil {
		return nil, err
	}
	return &AMM{manager: manager, contract: contract}, nil
}

// ProvideLiquidity 注入流动性并返回池标识
func (a *AMM) ProvideLiquidity(tokenA, tokenB string, amountA, amountB int64) (string, error) {
	auth, err := a.manager.Auth()
	if err != nil {
		return "", fmt.Errorf("failed to build auth: %w", err)
	}

	tx, err := a.contract.Transact(auth, "addLiquidity",
		tokenA, tokenB, big.NewInt(amountA), big.NewInt(amountB))
	if err != nil {
		return "", err
	}
	receipt, err := a.manager.WaitMined(tx)
	if err != nil {
		return "", err
	}

	// 从回执日志中取池地址
	for _, log := range receipt.Logs {
		if log.Address != a.contract.GetAddress() || len(log.Topics) == 0 {
			continue
		}
		parsed, err := a.contract.ParseEvent(*log)
		if err != nil {
			continue
		}
		if parsed["eventName"] != "LiquidityAdded" {
			continue
		}
		if pool, ok := parsed["pool"].(common.Address); ok {
			return pool.Hex(), nil
		}
	}

	return "", fmt.Errorf("no LiquidityAdded event in transaction %s", tx.Hash().Hex())
}
