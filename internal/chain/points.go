package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Points 积分代币适配器，实现 logic.PointsLedger 接口
// 积分是本服务独占铸造权的代币，发放即铸造，扣减即销毁
type Points struct {
	manager  *Manager
	contract *Contract
}

// NewPoints 创建积分适配器
func NewPoints(manager *Manager) (*Points, error) {
	contract, err := manager.GetContract(ContractPoints)
	if err != nil {
		return nil, err
	}
	return &Points{manager: manager, contract: contract}, nil
}

// Credit 给账户发放积分
func (p *Points) Credit(account string, amount int64) error {
	auth, err := p.manager.Auth()
	if err != nil {
		return fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := p.contract.Transact(auth, "mint", common.HexToAddress(account), big.NewInt(amount))
	if err != nil {
		return err
	}
	_, err = p.manager.WaitMined(tx)
	return err
}

// Debit 扣减账户积分
func (p *Points) Debit(account string, amount int64) error {
	auth, err := p.manager.Auth()
	if err != nil {
		return fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := p.contract.Transact(auth, "burn", common.HexToAddress(account), big.NewInt(amount))
	if err != nil {
		return err
	}
	_, err = p.manager.WaitMined(tx)
	return err
}

// TotalWeight 查询积分总量
func (p *Points) TotalWeight() (int64, error) {
	total, err := p.contract.CallBigInt("totalSupply")
	if err != nil {
		return 0, err
	}
	return total.Int64(), nil
}
