package reward

import (
	"errors"
	"fmt"
	"math/big"

	"github.com/blues/lps/internal/model"
	"gorm.io/gorm"
)

// Scale 累计值定点缩放因子
const Scale = int64(1_000_000_000_000)

var (
	ErrNothingToClaim  = errors.New("暂无可领取奖励")
	ErrNoWeightHolders = errors.New("当前没有权重持有人")
	ErrInvalidAmount   = errors.New("金额必须大于0")
	ErrInvalidWeight   = errors.New("权重不能为负数")
)

// Payer 奖励支付协作方
type Payer interface {
	Pay(account string, amount int64) error
}

// Ledger 按单位权重累计的通用奖励账本
// 同一套记账逻辑按池名实例化：积分收益、LP手续费、交易量积分
type Ledger struct {
	db *gorm.DB
}

// NewLedger 创建奖励账本
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx 返回绑定到外部事务的账本
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	return &Ledger{db: tx}
}

// EnsurePool 确保奖励池存在
func (l *Ledger) EnsurePool(name string) error {
	var pool model.RewardPoolModel
	err := l.db.Where("name = ?", name).First(&pool).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	pool = model.RewardPoolModel{Name: name, AccPerWeight: "0"}
	return l.db.Create(&pool).Error
}

// Deposit 存入奖励
// 有权重持有人时折算进累计值；否则记入 undistributed 待后续归集，
// 既避免除零，也避免无人持有权重期间的奖励被滞留
func (l *Ledger) Deposit(name string, amount int64) error {
	if amount <= 0 {
		return ErrInvalidAmount
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		pool, err := loadPool(tx, name)
		if err != nil {
			return err
		}

		if pool.TotalWeight > 0 {
			acc, err := parseAcc(pool.AccPerWeight)
			if err != nil {
				return err
			}
			delta := new(big.Int).Mul(big.NewInt(amount), big.NewInt(Scale))
			delta.Quo(delta, big.NewInt(pool.TotalWeight))
			acc.Add(acc, delta)
			pool.AccPerWeight = acc.String()
		} else {
			pool.Undistributed += amount
		}
		pool.TotalDeposited += amount

		return tx.Save(pool).Error
	})
}

// OnWeightChange 变更账户权重
// 变更前先结算旧权重下的待领取奖励并结转，保证不丢失；
// 新权重的债务基线取变更时刻的累计值，权重不产生追溯收益
func (l *Ledger) OnWeightChange(name, account string, newWeight int64) error {
	if newWeight < 0 {
		return ErrInvalidWeight
	}
	return l.db.Transaction(func(tx *gorm.DB) error {
		pool, err := loadPool(tx, name)
		if err != nil {
			return err
		}
		acct, err := loadOrCreateAccount(tx, pool.Id, account)
		if err != nil {
			return err
		}
		acc, err := parseAcc(pool.AccPerWeight)
		if err != nil {
			return err
		}

		pending := accrued(acct.Weight, acc) - acct.RewardDebt
		if pending > 0 {
			acct.Carried += pending
		}

		pool.TotalWeight += newWeight - acct.Weight
		acct.Weight = newWeight
		acct.RewardDebt = accrued(newWeight, acc)

		if err := tx.Save(pool).Error; err != nil {
			return err
		}
		return tx.Save(acct).Error
	})
}

// Pending 查询账户当前可领取奖励
func (l *Ledger) Pending(name, account string) (int64, error) {
	pool, err := loadPool(l.db, name)
	if err != nil {
		return 0, err
	}
	var acct model.RewardAccountModel
	if err := l.db.Where("pool_id = ? AND address = ?", pool.Id, account).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	acc, err := parseAcc(pool.AccPerWeight)
	if err != nil {
		return 0, err
	}
	return accrued(acct.Weight, acc) - acct.RewardDebt + acct.Carried, nil
}

// AccountWeight 查询账户当前权重
func (l *Ledger) AccountWeight(name, account string) (int64, error) {
	pool, err := loadPool(l.db, name)
	if err != nil {
		return 0, err
	}
	var acct model.RewardAccountModel
	if err := l.db.Where("pool_id = ? AND address = ?", pool.Id, account).First(&acct).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return acct.Weight, nil
}

// Claim 领取奖励
// 无可领取奖励时返回 ErrNothingToClaim；支付失败整体回滚
func (l *Ledger) Claim(name, account string, payer Payer) (int64, error) {
	var paid int64
	err := l.db.Transaction(func(tx *gorm.DB) error {
		pool, err := loadPool(tx, name)
		if err != nil {
			return err
		}
		acct, err := loadOrCreateAccount(tx, pool.Id, account)
		if err != nil {
			return err
		}
		acc, err := parseAcc(pool.AccPerWeight)
		if err != nil {
			return err
		}

		pending := accrued(acct.Weight, acc) - acct.RewardDebt + acct.Carried
		if pending <= 0 {
			return ErrNothingToClaim
		}

		// 先更新债务基线，再调用外部支付（检查-生效-交互）
		acct.RewardDebt = accrued(acct.Weight, acc)
		acct.Carried = 0
		pool.TotalClaimed += pending

		if err := tx.Save(pool).Error; err != nil {
			return err
		}
		if err := tx.Save(acct).Error; err != nil {
			return err
		}
		if err := payer.Pay(account, pending); err != nil {
			return fmt.Errorf("奖励支付失败: %w", err)
		}
		paid = pending
		return nil
	})
	return paid, err
}

// FlushUndistributed 将无人持有权重期间积累的奖励折算进累计值
// totalWeight 为零时拒绝执行；没有待归集奖励时安静返回
func (l *Ledger) FlushUndistributed(name string) error {
	return l.db.Transaction(func(tx *gorm.DB) error {
		pool, err := loadPool(tx, name)
		if err != nil {
			return err
		}
		if pool.TotalWeight == 0 {
			return ErrNoWeightHolders
		}
		if pool.Undistributed == 0 {
			return nil
		}

		acc, err := parseAcc(pool.AccPerWeight)
		if err != nil {
			return err
		}
		delta := new(big.Int).Mul(big.NewInt(pool.Undistributed), big.NewInt(Scale))
		delta.Quo(delta, big.NewInt(pool.TotalWeight))
		acc.Add(acc, delta)

		pool.AccPerWeight = acc.String()
		pool.Undistributed = 0
		return tx.Save(pool).Error
	})
}

// loadPool 加载奖励池
func loadPool(db *gorm.DB, name string) (*model.RewardPoolModel, error) {
	var pool model.RewardPoolModel
	if err := db.Where("name = ?", name).First(&pool).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("奖励池不存在: %s", name)
		}
		return nil, err
	}
	return &pool, nil
}

// loadOrCreateAccount 加载或创建奖励账户
func loadOrCreateAccount(db *gorm.DB, poolId int64, address string) (*model.RewardAccountModel, error) {
	var acct model.RewardAccountModel
	err := db.Where("pool_id = ? AND address = ?", poolId, address).First(&acct).Error
	if err == nil {
		return &acct, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	acct = model.RewardAccountModel{PoolId: poolId, Address: address}
	if err := db.Create(&acct).Error; err != nil {
		return nil, err
	}
	return &acct, nil
}

// parseAcc 解析累计值字符串
func parseAcc(s string) (*big.Int, error) {
	if s == "" {
		return big.NewInt(0), nil
	}
	acc, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("累计值格式错误: %s", s)
	}
	return acc, nil
}

// accrued 计算累计应得奖励：weight * accPerWeight / Scale，向零取整
// 取整的尘埃只会留在池内，不会多付给领取人
func accrued(weight int64, acc *big.Int) int64 {
	if weight == 0 {
		return 0
	}
	v := new(big.Int).Mul(big.NewInt(weight), acc)
	v.Quo(v, big.NewInt(Scale))
	return v.Int64()
}
