package chain

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// Vault ERC-4626 收益金库适配器
// 实现 logic.YieldVault 接口，owner 参数固定为本服务的签名账户
type Vault struct {
	manager  *Manager
	contract *Contract
}

// NewVault 创建金库适配器
func NewVault(manager *Manager) (*Vault, error) {
	contract, err := manager.GetContract(ContractVault)
	if err != nil {
		return nil, err
	}
	return &Vault{manager: manager, contract: contract}, nil
}

// Deposit 存入资产，返回铸造的份额
func (v *Vault) Deposit(assets int64, receiver string) (int64, error) {
	shares, err := v.contract.CallBigInt("previewDeposit", big.NewInt(assets))
	if err != nil {
		return 0, err
	}

	auth, err := v.manager.Auth()
	if err != nil {
		return 0, fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := v.contract.Transact(auth, "deposit", big.NewInt(assets), common.HexToAddress(receiver))
	if err != nil {
		return 0, err
	}
	if _, err := v.manager.WaitMined(tx); err != nil {
		return 0, err
	}
	return shares.Int64(), nil
}

// Withdraw 按资产数量提取，返回销毁的份额
func (v *Vault) Withdraw(assets int64, receiver string) (int64, error) {
	shares, err := v.contract.CallBigInt("previewWithdraw", big.NewInt(assets))
	if err != nil {
		return 0, err
	}

	auth, err := v.manager.Auth()
	if err != nil {
		return 0, fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := v.contract.Transact(auth, "withdraw",
		big.NewInt(assets), common.HexToAddress(receiver), v.manager.AccountAddress())
	if err != nil {
		return 0, err
	}
	if _, err := v.manager.WaitMined(tx); err != nil {
		return 0, err
	}
	return shares.Int64(), nil
}

// Redeem 按份额赎回，返回取出的资产数量
func (v *Vault) Redeem(shares int64, receiver string) (int64, error) {
	assets, err := v.contract.CallBigInt("previewRedeem", big.NewInt(shares))
	if err != nil {
		return 0, err
	}

	auth, err := v.manager.Auth()
	if err != nil {
		return 0, fmt.Errorf("failed to build auth: %w", err)
	}
	tx, err := v.contract.Transact(auth, "redeem",
		big.NewInt(shares), common.HexToAddress(receiver), v.manager.AccountAddress())
	if err != nil {
		return 0, err
	}
	if _, err := v.manager.WaitMined(tx); err != nil {
		return 0, err
	}
	return assets.Int64(), nil
}

// BalanceOf 查询份额余额
func (v *Vault) BalanceOf(owner string) (int64, error) {
	balance, err := v.contract.CallBigInt("balanceOf", common.HexToAddress(owner))
	if err != nil {
		return 0, err
	}
	return balance.Int64(), nil
}

// ConvertToAssets 按当前兑换率把份额折算成资产
func (v *Vault) ConvertToAssets(shares int64) (int64, error) {
	assets, err := v.contract.CallBigInt("convertToAssets", big.NewInt(shares))
	if err != nil {
		return 0, err
	}
	return assets.Int64(), nil
}
