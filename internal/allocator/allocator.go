package allocator

// 资金分配基点常量，总和恒等于 10000
const (
	InstantBps   = 3000 // 即时支付给创建者
	VestedBps    = 2000 // 线性释放
	FeeBps       = 500  // 平台费
	LiquidityBps = 4500 // 流动性注入
	BpsDenom     = 10000
)

// 代币分配基点常量（占 totalSupply 的比例）
const (
	SaleSupplyBps      = 5000 // 公开发售
	CreatorSupplyBps   = 2000 // 创建者
	LiquiditySupplyBps = 2500 // 流动性储备
	PlatformSupplyBps  = 500  // 平台
)

// Split 融资金额四路拆分结果
type Split struct {
	Instant   int64 `json:"instant"`
	Vested    int64 `json:"vested"`
	Fee       int64 `json:"fee"`
	Liquidity int64 `json:"liquidity"`
}

// SplitRaised 按基点拆分融资总额
// 流动性部分取余数，保证四路之和精确等于 raised
func SplitRaised(raised int64) Split {
	instant := raised * InstantBps / BpsDenom
	vested := raised * VestedBps / BpsDenom
	fee := raised * FeeBps / BpsDenom
	return Split{
		Instant:   instant,
		Vested:    vested,
		Fee:       fee,
		Liquidity: raised - instant - vested - fee,
	}
}

// TokenAllocation 代币分配结果
type TokenAllocation struct {
	Sale      int64 `json:"sale"`
	Creator   int64 `json:"creator"`
	Liquidity int64 `json:"liquidity"`
	Platform  int64 `json:"platform"`
}

// AllocateSupply 按固定比例拆分代币总量
func AllocateSupply(totalSupply int64) TokenAllocation {
	return TokenAllocation{
		Sale:      totalSupply * SaleSupplyBps / BpsDenom,
		Creator:   totalSupply * CreatorSupplyBps / BpsDenom,
		Liquidity: totalSupply * LiquiditySupplyBps / BpsDenom,
		Platform:  totalSupply * PlatformSupplyBps / BpsDenom,
	}
}

// Total 分配总量
func (a TokenAllocation) Total() int64 {
	return a.Sale + a.Creator + a.Liquidity + a.Platform
}
