package curve

import (
	"errors"
	"math/big"
)

// PriceScale 定点价格缩放因子
// 所有价格均为 1e12 定点数，中间计算使用 big.Int 防止溢出
const PriceScale = int64(1_000_000_000_000)

var (
	ErrZeroCapacity        = errors.New("发售容量必须大于0")
	ErrSoldExceedsCapacity = errors.New("已售数量超过发售容量")
	ErrInvalidAmount       = errors.New("金额必须大于0")
	ErrExceedsRemaining    = errors.New("请求数量超过剩余容量")
)

var scaleBig = big.NewInt(PriceScale)

// CurrentPrice 计算当前定点价格
// 平均价 = target/capacity，价格随已售数量线性上升：
// price = avgPrice * (1 + sold/capacity)，区间 [avgPrice, 2*avgPrice]
func CurrentPrice(capacity, sold, target int64) (int64, error) {
	if capacity <= 0 {
		return 0, ErrZeroCapacity
	}
	if sold < 0 || sold > capacity {
		return 0, ErrSoldExceedsCapacity
	}
	if target <= 0 {
		return 0, ErrInvalidAmount
	}
	return priceAt(capacity, sold, target).Int64(), nil
}

// priceAt 价格计算：target * Scale * (capacity + sold) / capacity^2
func priceAt(capacity, sold, target int64) *big.Int {
	num := new(big.Int).Mul(big.NewInt(target), scaleBig)
	num.Mul(num, big.NewInt(capacity+sold))
	den := new(big.Int).Mul(big.NewInt(capacity), big.NewInt(capacity))
	return num.Quo(num, den)
}

// PurchaseReturn 按买入金额计算获得的代币数量
// 使用买入前的单点价格近似（非区间积分）；当计算结果超过剩余容量时，
// 钳制到剩余容量并用 ExactCostForTokens 反算实际消耗金额，保证不超收
// 返回 (代币数量, 实际消耗金额)
func PurchaseReturn(capacity, sold, target, amountIn int64) (int64, int64, error) {
	if amountIn <= 0 {
		return 0, 0, ErrInvalidAmount
	}
	price, err := CurrentPrice(capacity, sold, target)
	if err != nil {
		return 0, 0, err
	}

	// tokensOut = amountIn * Scale / price
	out := new(big.Int).Mul(big.NewInt(amountIn), scaleBig)
	out.Quo(out, big.NewInt(price))
	tokensOut := out.Int64()

	remaining := capacity - sold
	if tokensOut <= remaining {
		return tokensOut, amountIn, nil
	}

	// 超出剩余容量：钳制并反算实际成本
	cost, err := ExactCostForTokens(capacity, sold, target, remaining)
	if err != nil {
		return 0, 0, err
	}
	return remaining, cost, nil
}

// ExactCostForTokens 按目标代币数量计算精确成本
// 使用区间起止价格的平均值（梯形近似），与 PurchaseReturn 的单点近似
// 是两种不同的近似方式，二者在大额买入时会产生可见偏差，刻意不统一
func ExactCostForTokens(capacity, sold, target, tokensWanted int64) (int64, error) {
	if tokensWanted <= 0 {
		return 0, ErrInvalidAmount
	}
	if capacity <= 0 {
		return 0, ErrZeroCapacity
	}
	if sold < 0 || sold > capacity {
		return 0, ErrSoldExceedsCapacity
	}
	if sold+tokensWanted > capacity {
		return 0, ErrExceedsRemaining
	}

	pStart := priceAt(capacity, sold, target)
	pEnd := priceAt(capacity, sold+tokensWanted, target)

	// cost = tokensWanted * (pStart + pEnd) / 2 / Scale
	sum := new(big.Int).Add(pStart, pEnd)
	cost := new(big.Int).Mul(big.NewInt(tokensWanted), sum)
	cost.Quo(cost, big.NewInt(2))
	cost.Quo(cost, scaleBig)
	return cost.Int64(), nil
}
