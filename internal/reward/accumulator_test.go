package reward

import (
	"errors"
	"testing"

	"github.com/blues/lps/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupLedger(t *testing.T) *Ledger {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.RewardPoolModel{}, &model.RewardAccountModel{}))

	l := NewLedger(db)
	require.NoError(t, l.EnsurePool("test_pool"))
	return l
}

type fakePayer struct {
	payments map[string]int64
	fail     bool
}

func newFakePayer() *fakePayer {
	return &fakePayer{payments: make(map[string]int64)}
}

func (p *fakePayer) Pay(account string, amount int64) error {
	if p.fail {
		return errors.New("支付通道不可用")
	}
	p.payments[account] += amount
	return nil
}

// 场景：三个账户权重 1000/500/250，存入 1750 奖励且期间无权重变更，
// 每个账户可领取的数量正好等于自身权重
func TestProportionalDistribution(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.OnWeightChange("test_pool", "alice", 1_000))
	require.NoError(t, l.OnWeightChange("test_pool", "bob", 500))
	require.NoError(t, l.OnWeightChange("test_pool", "carol", 250))
	require.NoError(t, l.Deposit("test_pool", 1_750))

	for account, weight := range map[string]int64{"alice": 1_000, "bob": 500, "carol": 250} {
		pending, err := l.Pending("test_pool", account)
		require.NoError(t, err)
		assert.Equal(t, weight, pending, "账户 %s 可领取数量应等于自身权重", account)
	}
}

// 任意 deposit/onWeightChange/claim 交错下的守恒：
// Σ pending + Σ claimed + undistributed == Σ deposited（± 取整尘埃）
func TestConservationAcrossInterleavings(t *testing.T) {
	l := setupLedger(t)
	payer := newFakePayer()
	accounts := []string{"a", "b", "c"}

	deposited := int64(0)
	steps := []func(){
		func() { require.NoError(t, l.Deposit("test_pool", 333)); deposited += 333 },
		func() { require.NoError(t, l.OnWeightChange("test_pool", "a", 700)) },
		func() { require.NoError(t, l.Deposit("test_pool", 1_000)); deposited += 1_000 },
		func() { require.NoError(t, l.OnWeightChange("test_pool", "b", 300)) },
		func() { require.NoError(t, l.Deposit("test_pool", 777)); deposited += 777 },
		func() {
			if _, err := l.Claim("test_pool", "a", payer); err != nil {
				require.ErrorIs(t, err, ErrNothingToClaim)
			}
		},
		func() { require.NoError(t, l.OnWeightChange("test_pool", "a", 100)) },
		func() { require.NoError(t, l.OnWeightChange("test_pool", "c", 450)) },
		func() { require.NoError(t, l.Deposit("test_pool", 2_019)); deposited += 2_019 },
		func() {
			if _, err := l.Claim("test_pool", "b", payer); err != nil {
				require.ErrorIs(t, err, ErrNothingToClaim)
			}
		},
		func() { require.NoError(t, l.OnWeightChange("test_pool", "b", 0)) },
		func() { require.NoError(t, l.Deposit("test_pool", 555)); deposited += 555 },
	}

	check := func() {
		var pool model.RewardPoolModel
		require.NoError(t, l.db.Where("name = ?", "test_pool").First(&pool).Error)

		total := pool.Undistributed
		for _, account := range accounts {
			pending, err := l.Pending("test_pool", account)
			require.NoError(t, err)
			total += pending
		}
		for _, paid := range payer.payments {
			total += paid
		}

		assert.LessOrEqual(t, total, deposited)
		assert.GreaterOrEqual(t, total, deposited-int64(len(steps)), "尘埃损耗必须有界")
	}

	for _, step := range steps {
		step()
		check()
	}
}

func TestDepositWithoutHoldersGoesUndistributed(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.Deposit("test_pool", 500))

	var pool model.RewardPoolModel
	require.NoError(t, l.db.Where("name = ?", "test_pool").First(&pool).Error)
	assert.Equal(t, int64(500), pool.Undistributed)

	// 没有权重持有人时不允许归集
	assert.ErrorIs(t, l.FlushUndistributed("test_pool"), ErrNoWeightHolders)

	// 出现权重后归集，奖励全部归属当前持有人
	require.NoError(t, l.OnWeightChange("test_pool", "alice", 100))
	require.NoError(t, l.FlushUndistributed("test_pool"))

	pending, err := l.Pending("test_pool", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(500), pending)

	require.NoError(t, l.db.Where("name = ?", "test_pool").First(&pool).Error)
	assert.Equal(t, int64(0), pool.Undistributed)
}

func TestNoRetroactiveAccrual(t *testing.T) {
	l := setupLedger(t)

	require.NoError(t, l.OnWeightChange("test_pool", "alice", 100))
	require.NoError(t, l.Deposit("test_pool", 1_000))

	// bob 在存入之后才获得权重，不应分到之前的奖励
	require.NoError(t, l.OnWeightChange("test_pool", "bob", 100))

	pending, err := l.Pending("test_pool", "bob")
	require.NoError(t, err)
	assert.Equal(t, int64(0), pending)

	pending, err = l.Pending("test_pool", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), pending)
}

func TestWeightChangeFlushesPending(t *testing.T) {
	l := setupLedger(t)
	payer := newFakePayer()

	require.NoError(t, l.OnWeightChange("test_pool", "alice", 100))
	require.NoError(t, l.Deposit("test_pool", 900))

	// 权重清零也不能丢失已累计的奖励
	require.NoError(t, l.OnWeightChange("test_pool", "alice", 0))

	pending, err := l.Pending("test_pool", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(900), pending)

	paid, err := l.Claim("test_pool", "alice", payer)
	require.NoError(t, err)
	assert.Equal(t, int64(900), paid)
	assert.Equal(t, int64(900), payer.payments["alice"])
}

func TestClaim(t *testing.T) {
	l := setupLedger(t)
	payer := newFakePayer()

	require.NoError(t, l.OnWeightChange("test_pool", "alice", 100))
	require.NoError(t, l.Deposit("test_pool", 1_000))

	paid, err := l.Claim("test_pool", "alice", payer)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), paid)

	// 连续领取应失败
	_, err = l.Claim("test_pool", "alice", payer)
	assert.ErrorIs(t, err, ErrNothingToClaim)

	// 新一轮存入后可再次领取
	require.NoError(t, l.Deposit("test_pool", 300))
	paid, err = l.Claim("test_pool", "alice", payer)
	require.NoError(t, err)
	assert.Equal(t, int64(300), paid)
	assert.Equal(t, int64(1_300), payer.payments["alice"])
}

func TestClaimRollsBackOnPayFailure(t *testing.T) {
	l := setupLedger(t)
	payer := newFakePayer()
	payer.fail = true

	require.NoError(t, l.OnWeightChange("test_pool", "alice", 100))
	require.NoError(t, l.Deposit("test_pool", 1_000))

	_, err := l.Claim("test_pool", "alice", payer)
	require.Error(t, err)

	// 支付失败后待领取数量必须原样保留
	pending, err := l.Pending("test_pool", "alice")
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), pending)
}
