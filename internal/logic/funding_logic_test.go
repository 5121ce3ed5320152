package logic

import (
	"testing"
	"time"

	"github.com/blues/lps/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSponsor(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	// 非创建者不能赞助
	err := fl.Sponsor(campaign.Id, "0xSOMEONE")
	require.Error(t, err)
	assert.Equal(t, KindAuthorization, KindOf(err))

	require.NoError(t, fl.Sponsor(campaign.Id, "0xCREATOR"))

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.True(t, got.Sponsored)
	assert.Equal(t, int64(10_000), got.PointsBankInitial)
	assert.Equal(t, int64(10_000), got.PointsBank)

	// 赞助费进入金库并记账本金
	assert.Equal(t, int64(500), d.vault.assets["0xPLATFORM"])
	principal, err := loadPrincipal(d.db, "0xPLATFORM")
	require.NoError(t, err)
	assert.Equal(t, int64(500), principal)

	// 重复赞助被拒绝
	err = fl.Sponsor(campaign.Id, "0xCREATOR")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

// 过期活动不能赞助，否则赞助费会沉淀在无法买入的活动里
func TestSponsorAfterDeadline(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", campaign.Id).
		Update("deadline", time.Now().Add(-time.Hour)).Error)

	err := fl.Sponsor(campaign.Id, "0xCREATOR")
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.False(t, got.Sponsored)
	assert.Equal(t, int64(0), got.PointsBank)
	assert.Equal(t, int64(0), d.vault.assets["0xPLATFORM"])
}

func TestSponsorRollsBackOnVaultFailure(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	d.vault.failDeposit = true
	err := fl.Sponsor(campaign.Id, "0xCREATOR")
	require.Error(t, err)
	assert.Equal(t, KindExternal, KindOf(err))

	// 金库失败后赞助状态必须回滚
	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.False(t, got.Sponsored)
	assert.Equal(t, int64(0), got.PointsBank)
}

// 完整生命周期：三笔买入沿曲线定价、积分池精确发完、
// 达到目标后一次性完成四路分账
func TestBuyLifecycle(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)
	require.NoError(t, fl.Sponsor(campaign.Id, "0xCREATOR"))

	first, err := fl.Buy(campaign.Id, "0xALICE", 4_000)
	require.NoError(t, err)
	assert.Equal(t, int64(400_000), first.TokensOut)
	assert.Equal(t, int64(4_000), first.Cost)
	assert.Equal(t, int64(4_000), first.PointsAwarded)
	assert.False(t, first.Completed)

	second, err := fl.Buy(campaign.Id, "0xBOB", 3_500)
	require.NoError(t, err)
	assert.Equal(t, int64(250_000), second.TokensOut)
	assert.Equal(t, int64(3_500), second.PointsAwarded)
	assert.False(t, second.Completed)

	third, err := fl.Buy(campaign.Id, "0xCAROL", 2_500)
	require.NoError(t, err)
	assert.Equal(t, int64(151_515), third.TokensOut)
	assert.Equal(t, int64(2_500), third.PointsAwarded)
	assert.True(t, third.Completed)

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.True(t, got.FundingComplete)
	assert.False(t, got.Active, "完成时 active 与 funding_complete 同步翻转")
	assert.Equal(t, model.CampaignStatusComplete, got.Status())
	assert.Equal(t, int64(10_000), got.AmountRaised)
	assert.Equal(t, int64(0), got.PointsBank, "积分池应精确发完")
	assert.Equal(t, "0xPOOL", got.PoolRef)
	assert.False(t, got.LiquidityPending)

	// 四路分账记录
	var record model.AllocationRecordModel
	require.NoError(t, d.db.Where("campaign_id = ?", campaign.Id).First(&record).Error)
	assert.Equal(t, int64(3_000), record.InstantAmount)
	assert.Equal(t, int64(2_000), record.VestedAmount)
	assert.Equal(t, int64(500), record.FeeAmount)
	assert.Equal(t, int64(4_500), record.LiquidityAmount)
	assert.Equal(t, model.LiquidityStatusSuccess, record.LiquidityStatus)

	// 即时支付给创建者
	assert.Equal(t, int64(3_000), d.stable.transfers["0xCREATOR"])

	// 线性释放条目托管
	var entry model.VestingEntryModel
	require.NoError(t, d.db.Where("campaign_id = ?", campaign.Id).First(&entry).Error)
	assert.Equal(t, int64(2_000), entry.TotalAmount)
	assert.Equal(t, "0xCREATOR", entry.Beneficiary)
	assert.Equal(t, int64(90*86400), entry.Duration)

	// 金库：赞助费 500 + 托管 2000 + 平台费 500
	assert.Equal(t, int64(3_000), d.vault.assets["0xPLATFORM"])

	// 流动性注入
	assert.Equal(t, int64(500_000), d.amm.tokenAmount)
	assert.Equal(t, int64(4_500), d.amm.stableAmount)

	// 代币账本
	cl := NewCampaignLogic(d.db, d.cfg)
	for address, expected := range map[string]int64{
		"0xALICE":    400_000,
		"0xBOB":      250_000,
		"0xCAROL":    151_515,
		"0xCREATOR":  400_000,
		"0xPLATFORM": 100_000,
		"0xPOOL":     500_000,
	} {
		balance, err := cl.GetTokenBalance(campaign.Id, address)
		require.NoError(t, err)
		assert.Equal(t, expected, balance, "地址 %s 余额不符", address)
	}

	// 积分发放与交易量权重
	assert.Equal(t, int64(4_000), d.points.credits["0xALICE"])
	weight, err := fl.Rewards().AccountWeight(PoolVolumePoints, "0xALICE")
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), weight)
}

func TestBuyRejections(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	_, err := fl.Buy(campaign.Id, "0xALICE", 0)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = fl.Buy(campaign.Id, "", 100)
	assert.Equal(t, KindValidation, KindOf(err))

	_, err = fl.Buy(42, "0xALICE", 100)
	assert.Equal(t, KindState, KindOf(err))

	// 过期活动
	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", campaign.Id).
		Update("deadline", time.Now().Add(-time.Hour)).Error)
	_, err = fl.Buy(campaign.Id, "0xALICE", 100)
	assert.Equal(t, KindState, KindOf(err))

	// 已取消活动
	cancelled := d.newCampaign(t)
	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", cancelled.Id).
		Update("cancelled", true).Error)
	_, err = fl.Buy(cancelled.Id, "0xALICE", 100)
	assert.Equal(t, KindState, KindOf(err))

	// 已完成活动
	done := d.newCampaign(t)
	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", done.Id).
		Update("funding_complete", true).Error)
	_, err = fl.Buy(done.Id, "0xALICE", 100)
	assert.Equal(t, KindState, KindOf(err))
}

func TestBuyRollsBackOnPointsFailure(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)
	require.NoError(t, fl.Sponsor(campaign.Id, "0xCREATOR"))

	d.points.fail = true
	_, err := fl.Buy(campaign.Id, "0xALICE", 4_000)
	require.Error(t, err)
	assert.Equal(t, KindExternal, KindOf(err))

	// 积分发放失败后整笔买入回滚
	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.Equal(t, int64(0), got.TokensSold)
	assert.Equal(t, int64(0), got.AmountRaised)
	assert.Equal(t, int64(10_000), got.PointsBank)

	var count int64
	d.db.Model(&model.InvestmentModel{}).Where("campaign_id = ?", campaign.Id).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCompletionRollsBackOnVaultFailure(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	_, err := fl.Buy(campaign.Id, "0xALICE", 4_000)
	require.NoError(t, err)
	_, err = fl.Buy(campaign.Id, "0xBOB", 3_500)
	require.NoError(t, err)

	// 触发完成的买入中金库不可用，整笔回滚
	d.vault.failDeposit = true
	_, err = fl.Buy(campaign.Id, "0xCAROL", 2_500)
	require.Error(t, err)
	assert.Equal(t, KindExternal, KindOf(err))

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.False(t, got.FundingComplete)
	assert.Equal(t, int64(7_500), got.AmountRaised)
	assert.Equal(t, int64(650_000), got.TokensSold)

	var entries int64
	d.db.Model(&model.VestingEntryModel{}).Count(&entries)
	assert.Equal(t, int64(0), entries)
}

func TestCompletionRollsBackOnInstantPayFailure(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	d.stable.fail = true
	_, err := fl.Buy(campaign.Id, "0xWHALE", 10_000)
	require.Error(t, err)
	assert.Equal(t, KindExternal, KindOf(err))

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.False(t, got.FundingComplete)
	assert.Equal(t, int64(0), got.AmountRaised)
}

// 流动性注入失败不阻塞完成，记录后由重试补齐
func TestLiquidityFailureRecordsAndRetries(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	d.amm.fail = true
	result, err := fl.Buy(campaign.Id, "0xWHALE", 10_000)
	require.NoError(t, err)
	assert.True(t, result.Completed)

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.True(t, got.FundingComplete)
	assert.True(t, got.LiquidityPending)
	assert.Empty(t, got.PoolRef)

	var record model.AllocationRecordModel
	require.NoError(t, d.db.Where("campaign_id = ?", campaign.Id).First(&record).Error)
	assert.Equal(t, model.LiquidityStatusFailed, record.LiquidityStatus)

	// AMM 恢复后重试成功
	d.amm.fail = false
	require.NoError(t, fl.RetryLiquidity(campaign.Id))

	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.False(t, got.LiquidityPending)
	assert.Equal(t, "0xPOOL", got.PoolRef)

	require.NoError(t, d.db.Where("campaign_id = ?", campaign.Id).First(&record).Error)
	assert.Equal(t, model.LiquidityStatusSuccess, record.LiquidityStatus)

	cl := NewCampaignLogic(d.db, d.cfg)
	balance, err := cl.GetTokenBalance(campaign.Id, "0xPOOL")
	require.NoError(t, err)
	assert.Equal(t, int64(500_000), balance)

	// 没有待注入流动性时重试被拒绝
	err = fl.RetryLiquidity(campaign.Id)
	assert.Equal(t, KindState, KindOf(err))
}

// 超额买入钳制到剩余容量，只按精确成本收费
func TestClampedBuyDoesNotOvercharge(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	result, err := fl.Buy(campaign.Id, "0xWHALE", 25_000)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000_000), result.TokensOut)
	assert.Equal(t, int64(15_000), result.Cost)
	assert.True(t, result.Completed)

	var inv model.InvestmentModel
	require.NoError(t, d.db.Where("campaign_id = ? AND investor = ?", campaign.Id, "0xWHALE").First(&inv).Error)
	assert.Equal(t, int64(15_000), inv.Amount, "只记实际消耗金额")

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.Equal(t, int64(1_000_000), got.TokensSold)
	assert.Equal(t, int64(15_000), got.AmountRaised)
}

// 售罄先于达标时也必须完成：取整让每个代币略低于真实均价，
// 最后一笔买入卖光容量但融资额不足目标
func TestSelloutTriggersCompletion(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	// 已售 999000、融资 5000：剩余 1000 个代币的精确成本只有 19
	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", campaign.Id).
		Updates(map[string]interface{}{
			"tokens_sold":   999_000,
			"amount_raised": 5_000,
		}).Error)

	result, err := fl.Buy(campaign.Id, "0xALICE", 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1_000), result.TokensOut)
	assert.Equal(t, int64(19), result.Cost)
	assert.True(t, result.Completed, "售罄必须触发完成，即使融资额不足目标")

	var got model.CampaignModel
	require.NoError(t, d.db.First(&got, campaign.Id).Error)
	assert.True(t, got.FundingComplete)
	assert.False(t, got.Active)
	assert.Equal(t, int64(1_000_000), got.TokensSold)
	assert.Equal(t, int64(5_019), got.AmountRaised)

	// 分账基于实际融资额而非目标
	var record model.AllocationRecordModel
	require.NoError(t, d.db.Where("campaign_id = ?", campaign.Id).First(&record).Error)
	assert.Equal(t, int64(5_019), record.RaisedTotal)
}

func TestHarvestYield(t *testing.T) {
	d := setupDeps(t)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)
	require.NoError(t, fl.Sponsor(campaign.Id, "0xCREATOR"))

	// 金库增值 100，超过归集阈值
	d.vault.yield = 100
	profit, err := fl.HarvestYield()
	require.NoError(t, err)
	assert.Equal(t, int64(100), profit)

	// 归集到积分收益池，暂无权重持有人时进入待归集
	var pool model.RewardPoolModel
	require.NoError(t, d.db.Where("name = ?", PoolPointsYield).First(&pool).Error)
	assert.Equal(t, int64(100), pool.TotalDeposited)
	assert.Equal(t, int64(100), pool.Undistributed)

	// 低于阈值时不动作
	d.vault.yield = 5
	profit, err = fl.HarvestYield()
	require.NoError(t, err)
	assert.Equal(t, int64(0), profit)
}
