package logic

import (
	"errors"
	"testing"
	"time"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/model"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// fakeVault 收益金库替身
// ConvertToAssets 把 yield 计入估值，模拟金库增值
type fakeVault struct {
	assets       map[string]int64
	yield        int64
	failDeposit  bool
	failWithdraw bool
}

func newFakeVault() *fakeVault {
	return &fakeVault{assets: make(map[string]int64)}
}

func (v *fakeVault) Deposit(assets int64, receiver string) (int64, error) {
	if v.failDeposit {
		return 0, errors.New("金库不可用")
	}
	v.assets[receiver] += assets
	return assets, nil
}

func (v *fakeVault) Withdraw(assets int64, receiver string) (int64, error) {
	if v.failWithdraw {
		return 0, errors.New("金库不可用")
	}
	v.yield -= assets
	return assets, nil
}

func (v *fakeVault) Redeem(shares int64, receiver string) (int64, error) {
	v.assets[receiver] -= shares
	return shares, nil
}

func (v *fakeVault) BalanceOf(owner string) (int64, error) {
	return v.assets[owner], nil
}

func (v *fakeVault) ConvertToAssets(shares int64) (int64, error) {
	return shares + v.yield, nil
}

// fakeAMM 流动性协作方替身
type fakeAMM struct {
	poolRef      string
	fail         bool
	calls        int
	tokenAmount  int64
	stableAmount int64
}

func (a *fakeAMM) ProvideLiquidity(tokenA, tokenB string, amountA, amountB int64) (string, error) {
	a.calls++
	if a.fail {
		return "", errors.New("AMM 不可用")
	}
	a.tokenAmount = amountA
	a.stableAmount = amountB
	return a.poolRef, nil
}

// fakePoints 积分协作方替身
type fakePoints struct {
	credits map[string]int64
	fail    bool
}

func newFakePoints() *fakePoints {
	return &fakePoints{credits: make(map[string]int64)}
}

func (p *fakePoints) Credit(account string, amount int64) error {
	if p.fail {
		return errors.New("积分服务不可用")
	}
	p.credits[account] += amount
	return nil
}

func (p *fakePoints) Debit(account string, amount int64) error {
	p.credits[account] -= amount
	return nil
}

func (p *fakePoints) TotalWeight() (int64, error) {
	var total int64
	for _, v := range p.credits {
		total += v
	}
	return total, nil
}

// fakeStable 稳定币协作方替身
type fakeStable struct {
	transfers map[string]int64
	fail      bool
}

func newFakeStable() *fakeStable {
	return &fakeStable{transfers: make(map[string]int64)}
}

func (s *fakeStable) Transfer(to string, amount int64) error {
	if s.fail {
		return errors.New("稳定币转账失败")
	}
	s.transfers[to] += amount
	return nil
}

type testDeps struct {
	db     *gorm.DB
	cfg    *config.Config
	vault  *fakeVault
	amm    *fakeAMM
	points *fakePoints
	stable *fakeStable
}

func setupDeps(t *testing.T) *testDeps {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.CampaignModel{},
		&model.InvestmentModel{},
		&model.TokenBalanceModel{},
		&model.VestingEntryModel{},
		&model.RewardPoolModel{},
		&model.RewardAccountModel{},
		&model.AllocationRecordModel{},
		&model.VaultPositionModel{},
		&model.EventModel{},
	))

	cfg := &config.Config{
		Funding: config.FundingConfig{
			MinTarget:        1_000,
			MaxTarget:        100_000_000,
			MinSupply:        100_000,
			MaxSupply:        10_000_000_000,
			MinDurationHours: 24,
			MaxDurationHours: 2_160,
			SponsorFee:       500,
			PointsBank:       10_000,
			VestingDays:      90,
			MinHarvest:       10,
			StableSymbol:     "USDC",
			PlatformAddress:  "0xPLATFORM",
			AdminAddress:     "0xADMIN",
		},
	}

	return &testDeps{
		db:     db,
		cfg:    cfg,
		vault:  newFakeVault(),
		amm:    &fakeAMM{poolRef: "0xPOOL"},
		points: newFakePoints(),
		stable: newFakeStable(),
	}
}

func (d *testDeps) newFundingLogic(t *testing.T) *FundingLogic {
	t.Helper()
	fl, err := NewFundingLogic(d.db, d.cfg, d.vault, d.amm, d.points, d.stable)
	require.NoError(t, err)
	return fl
}

// newCampaign 创建一个标准测试活动：目标 10000，总量 200 万
func (d *testDeps) newCampaign(t *testing.T) *model.CampaignModel {
	t.Helper()
	cl := NewCampaignLogic(d.db, d.cfg)
	campaign, err := cl.CreateCampaign(&CreateCampaignRequest{
		Name:          "Test Launch",
		Symbol:        "TST",
		Creator:       "0xCREATOR",
		TargetFunding: 10_000,
		TotalSupply:   2_000_000,
		Deadline:      time.Now().Add(48 * time.Hour),
	})
	require.NoError(t, err)
	return campaign
}
