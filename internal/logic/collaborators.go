package logic

// 外部协作方接口
// 核心逻辑只通过这些窄接口访问外部系统，链上实现见 internal/chain

// YieldVault 收益金库协作方（ERC-4626 类金库）
// 对核心来说是一个只进不出的价值槽，不关心其内部记账
type YieldVault interface {
	Deposit(assets int64, receiver string) (shares int64, err error)
	Withdraw(assets int64, receiver string) (shares int64, err error)
	Redeem(shares int64, receiver string) (assets int64, err error)
	BalanceOf(owner string) (shares int64, err error)
	ConvertToAssets(shares int64) (assets int64, err error)
}

// LiquidityProvider AMM 流动性协作方，每个活动完成时调用一次
type LiquidityProvider interface {
	ProvideLiquidity(tokenA, tokenB string, amountA, amountB int64) (poolRef string, err error)
}

// PointsLedger 积分协作方
type PointsLedger interface {
	Credit(account string, amount int64) error
	Debit(account string, amount int64) error
	TotalWeight() (int64, error)
}

// StableToken 稳定币转账协作方，用于即时支付与奖励发放
type StableToken interface {
	Transfer(to string, amount int64) error
}

// StablePayer 以稳定币支付奖励
type StablePayer struct {
	Stable StableToken
}

func (p StablePayer) Pay(account string, amount int64) error {
	return p.Stable.Transfer(account, amount)
}

// PointsPayer 以积分支付奖励
type PointsPayer struct {
	Points PointsLedger
}

func (p PointsPayer) Pay(account string, amount int64) error {
	return p.Points.Credit(account, amount)
}
