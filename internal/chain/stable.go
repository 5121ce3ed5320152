package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Stable 稳定币适配器，实现 logic.StableToken 接口
// 从本服务的资金账户向外转账，用于即时支付与奖励发放
type Stable struct {
	manager  *Manager
	contract *Contract
}

// NewStable 创建稳定币适配器
func NewStable(manager *Manager) (*Stable, error) {
	contract, err := manager.GetContract(ContractStable)
	if err != nil {
		return nil, err
	}
	return &Stable{manager: manager, contract: contract}, nil
}

// Transfer 转账
func (s *Stable) Transfer(to string, amount int64) error {
	auth, err := s.manager.Auth()
	if err != nil {
		return fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := s.contract.Transact(auth, "transfer", common.HexToAddress(to), big.NewInt(amount))
	if err != nil {
		return err
	}
	_, err = s.manager.WaitMined(tx)
	return err
}
