package logic

import (
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/blues/lps/internal/allocator"
	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/curve"
	"github.com/blues/lps/internal/logger"
	"github.com/blues/lps/internal/model"
	"github.com/blues/lps/internal/reward"
	"gorm.io/gorm"
)

// 奖励池名称
const (
	PoolPointsYield  = "points_yield"  // 金库收益按积分权重分配
	PoolLPFee        = "lp_fee"        // 交易手续费按 LP 权重分配
	PoolVolumePoints = "volume_points" // 积分奖励按累计投资额权重分配
)

// FundingLogic 融资业务逻辑
// 负责赞助、买入、完成分账与收益归集，所有写路径都在事务内，
// 外部协作方调用失败时整体回滚（流动性注入除外，记录后重试）
type FundingLogic struct {
	db      *gorm.DB
	config  *config.Config
	vault   YieldVault
	amm     LiquidityProvider
	points  PointsLedger
	stable  StableToken
	rewards *reward.Ledger
}

// BuyResult 买入结果
type BuyResult struct {
	TokensOut     int64 `json:"tokens_out"`
	Cost          int64 `json:"cost"`
	PointsAwarded int64 `json:"points_awarded"`
	Completed     bool  `json:"completed"`
}

// NewFundingLogic 创建融资业务逻辑并确保奖励池存在
func NewFundingLogic(db *gorm.DB, cfg *config.Config, vault YieldVault, amm LiquidityProvider,
	points PointsLedger, stable StableToken) (*FundingLogic, error) {
	rewards := reward.NewLedger(db)
	for _, name := range []string{PoolPointsYield, PoolLPFee, PoolVolumePoints} {
		if err := rewards.EnsurePool(name); err != nil {
			return nil, fmt.Errorf("初始化奖励池失败: %w", err)
		}
	}
	return &FundingLogic{
		db:      db,
		config:  cfg,
		vault:   vault,
		amm:     amm,
		points:  points,
		stable:  stable,
		rewards: rewards,
	}, nil
}

// Rewards 返回奖励账本
func (l *FundingLogic) Rewards() *reward.Ledger {
	return l.rewards
}

// PayerFor 返回指定奖励池的支付协作方
// 交易量积分池以积分支付，其余池以稳定币支付
func (l *FundingLogic) PayerFor(pool string) reward.Payer {
	if pool == PoolVolumePoints {
		return PointsPayer{Points: l.points}
	}
	return StablePayer{Stable: l.stable}
}

// Sponsor 赞助活动
// 仅创建者可操作，且每个活动只能赞助一次；赞助费存入收益金库，
// 同时给活动充入积分池，此后买入开始发放积分
func (l *FundingLogic) Sponsor(campaignId int64, caller string) error {
	f := l.config.Funding
	return l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewStateError("活动不存在")
			}
			return err
		}

		if caller != campaign.Creator {
			return NewAuthorizationError("只有创建者可以赞助活动")
		}
		if campaign.Status() != model.CampaignStatusActive {
			return NewStateError("活动不在进行中")
		}
		if time.Now().After(campaign.Deadline) {
			return NewStateError("活动已过截止时间")
		}
		if campaign.Sponsored {
			return NewStateError("活动已赞助")
		}

		// 条件更新防止并发重复赞助
		result := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND sponsored = ?", campaignId, false).
			Updates(map[string]interface{}{
				"sponsored":           true,
				"points_bank_initial": f.PointsBank,
				"points_bank":         f.PointsBank,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return NewStateError("活动已赞助")
		}

		if _, err := l.vault.Deposit(f.SponsorFee, f.PlatformAddress); err != nil {
			return NewExternalError("赞助费存入金库失败", err)
		}
		return addVaultPrincipal(tx, f.PlatformAddress, f.SponsorFee)
	})
}

// Buy 买入活动代币
// 按联合曲线定价；买入可能触发融资完成，完成分账在同一事务内执行
func (l *FundingLogic) Buy(campaignId int64, investor string, amountIn int64) (*BuyResult, error) {
	if amountIn <= 0 {
		return nil, NewValidationError("买入金额必须大于0")
	}
	if investor == "" {
		return nil, NewValidationError("投资人地址不能为空")
	}

	result := &BuyResult{}
	err := l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewStateError("活动不存在")
			}
			return err
		}

		if campaign.Status() != model.CampaignStatusActive {
			return NewStateError("活动不在进行中")
		}
		if time.Now().After(campaign.Deadline) {
			return NewStateError("活动已过截止时间")
		}

		tokensOut, cost, err := curve.PurchaseReturn(
			campaign.TokensForSale, campaign.TokensSold, campaign.TargetFunding, amountIn)
		if err != nil {
			return NewValidationError(err.Error())
		}
		if tokensOut <= 0 {
			return NewValidationError("买入金额过小，无法获得代币")
		}

		// 条件更新计数器，tokens_sold 不匹配说明有并发买入，直接拒绝重试
		updated := tx.Model(&model.CampaignModel{}).
			Where("id = ? AND tokens_sold = ? AND funding_complete = ? AND cancelled = ?",
				campaignId, campaign.TokensSold, false, false).
			Updates(map[string]interface{}{
				"tokens_sold":   campaign.TokensSold + tokensOut,
				"amount_raised": campaign.AmountRaised + cost,
			})
		if updated.Error != nil {
			return updated.Error
		}
		if updated.RowsAffected == 0 {
			return NewStateError("活动状态已变化，请重试")
		}

		inv, err := l.upsertInvestment(tx, campaignId, investor, cost, tokensOut)
		if err != nil {
			return err
		}

		// 赞助活动按出资比例发放积分，发完即止
		if campaign.Sponsored && campaign.PointsBank > 0 {
			award := mulDiv(campaign.PointsBankInitial, cost, campaign.TargetFunding)
			if award > campaign.PointsBank {
				award = campaign.PointsBank
			}
			if award > 0 {
				decremented := tx.Model(&model.CampaignModel{}).
					Where("id = ? AND points_bank = ?", campaignId, campaign.PointsBank).
					Update("points_bank", campaign.PointsBank-award)
				if decremented.Error != nil {
					return decremented.Error
				}
				if decremented.RowsAffected == 0 {
					return NewStateError("活动状态已变化，请重试")
				}
				if err := l.points.Credit(investor, award); err != nil {
					return NewExternalError("积分发放失败", err)
				}
				result.PointsAwarded = award
			}
		}

		if err := mintTokens(tx, campaignId, investor, tokensOut); err != nil {
			return err
		}

		// 交易量积分池权重取累计投资额
		if err := l.rewards.WithTx(tx).OnWeightChange(PoolVolumePoints, investor, inv.Amount); err != nil {
			return err
		}

		result.TokensOut = tokensOut
		result.Cost = cost

		// 达到融资目标或售罄都触发完成，取整可能让售罄先于达标发生
		if campaign.AmountRaised+cost >= campaign.TargetFunding ||
			campaign.TokensSold+tokensOut >= campaign.TokensForSale {
			campaign.AmountRaised += cost
			campaign.TokensSold += tokensOut
			if err := l.complete(tx, &campaign); err != nil {
				return err
			}
			result.Completed = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// upsertInvestment 累计投资记录
func (l *FundingLogic) upsertInvestment(tx *gorm.DB, campaignId int64, investor string, cost, tokens int64) (*model.InvestmentModel, error) {
	var inv model.InvestmentModel
	err := tx.Where("campaign_id = ? AND investor = ?", campaignId, investor).First(&inv).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		inv = model.InvestmentModel{
			CampaignId: campaignId,
			Investor:   investor,
			Amount:     cost,
			Tokens:     tokens,
		}
		if err := tx.Create(&inv).Error; err != nil {
			return nil, err
		}
		return &inv, nil
	}
	if err != nil {
		return nil, err
	}
	inv.Amount += cost
	inv.Tokens += tokens
	if err := tx.Save(&inv).Error; err != nil {
		return nil, err
	}
	return &inv, nil
}

// complete 融资完成分账
// 条件更新保证分账只执行一次；即时支付、线性释放和平台费失败时整体回滚，
// 流动性注入失败只做记录，由定时任务重试
func (l *FundingLogic) complete(tx *gorm.DB, campaign *model.CampaignModel) error {
	f := l.config.Funding

	flipped := tx.Model(&model.CampaignModel{}).
		Where("id = ? AND funding_complete = ?", campaign.Id, false).
		Updates(map[string]interface{}{
			"funding_complete": true,
			"active":           false,
		})
	if flipped.Error != nil {
		return flipped.Error
	}
	if flipped.RowsAffected == 0 {
		return nil
	}

	split := allocator.SplitRaised(campaign.AmountRaised)
	record := &model.AllocationRecordModel{
		CampaignId:      campaign.Id,
		RaisedTotal:     campaign.AmountRaised,
		InstantAmount:   split.Instant,
		VestedAmount:    split.Vested,
		FeeAmount:       split.Fee,
		LiquidityAmount: split.Liquidity,
		LiquidityStatus: model.LiquidityStatusPending,
	}
	if err := tx.Create(record).Error; err != nil {
		return err
	}

	// 即时支付给创建者
	if err := l.stable.Transfer(campaign.Creator, split.Instant); err != nil {
		return NewExternalError("即时支付失败", err)
	}

	// 线性释放部分托管在金库生息，按天线性释放给创建者
	if err := l.createVesting(tx, campaign, split.Vested); err != nil {
		return err
	}

	// 平台费存入金库
	if _, err := l.vault.Deposit(split.Fee, f.PlatformAddress); err != nil {
		return NewExternalError("平台费存入金库失败", err)
	}
	if err := addVaultPrincipal(tx, f.PlatformAddress, split.Fee); err != nil {
		return err
	}

	// 铸造创建者与平台的代币份额
	if err := mintTokens(tx, campaign.Id, campaign.Creator, campaign.CreatorAllocation); err != nil {
		return err
	}
	if err := mintTokens(tx, campaign.Id, f.PlatformAddress, campaign.PlatformAllocation); err != nil {
		return err
	}

	// 流动性注入尽力而为，失败不阻塞完成
	poolRef, err := l.amm.ProvideLiquidity(campaign.Symbol, f.StableSymbol,
		campaign.LiquidityAllocation, split.Liquidity)
	if err != nil {
		logger.Error("failed to provide liquidity for campaign %d: %v", campaign.Id, err)
		if err := tx.Model(record).Update("liquidity_status", model.LiquidityStatusFailed).Error; err != nil {
			return err
		}
		return tx.Model(&model.CampaignModel{}).
			Where("id = ?", campaign.Id).
			Update("liquidity_pending", true).Error
	}

	if err := tx.Model(record).Updates(map[string]interface{}{
		"liquidity_status": model.LiquidityStatusSuccess,
		"pool_ref":         poolRef,
	}).Error; err != nil {
		return err
	}
	if err := tx.Model(&model.CampaignModel{}).
		Where("id = ?", campaign.Id).
		Update("pool_ref", poolRef).Error; err != nil {
		return err
	}
	return mintTokens(tx, campaign.Id, poolRef, campaign.LiquidityAllocation)
}

// createVesting 创建线性释放条目并把资金存入金库
func (l *FundingLogic) createVesting(tx *gorm.DB, campaign *model.CampaignModel, amount int64) error {
	f := l.config.Funding
	entry := &model.VestingEntryModel{
		CampaignId:  campaign.Id,
		Beneficiary: campaign.Creator,
		TotalAmount: amount,
		StartTime:   time.Now(),
		Duration:    int64(f.VestingDays) * 86400,
	}
	if err := tx.Create(entry).Error; err != nil {
		return err
	}
	if _, err := l.vault.Deposit(amount, f.PlatformAddress); err != nil {
		return NewExternalError("释放托管资金存入金库失败", err)
	}
	return addVaultPrincipal(tx, f.PlatformAddress, amount)
}

// RetryLiquidity 重试失败的流动性注入
func (l *FundingLogic) RetryLiquidity(campaignId int64) error {
	f := l.config.Funding
	return l.db.Transaction(func(tx *gorm.DB) error {
		var campaign model.CampaignModel
		if err := tx.First(&campaign, campaignId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return NewStateError("活动不存在")
			}
			return err
		}
		if !campaign.LiquidityPending {
			return NewStateError("活动没有待注入的流动性")
		}

		var record model.AllocationRecordModel
		if err := tx.Where("campaign_id = ?", campaignId).First(&record).Error; err != nil {
			return err
		}

		poolRef, err := l.amm.ProvideLiquidity(campaign.Symbol, f.StableSymbol,
			campaign.LiquidityAllocation, record.LiquidityAmount)
		if err != nil {
			return NewExternalError("流动性注入失败", err)
		}

		if err := tx.Model(&record).Updates(map[string]interface{}{
			"liquidity_status": model.LiquidityStatusSuccess,
			"pool_ref":         poolRef,
		}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.CampaignModel{}).
			Where("id = ?", campaignId).
			Updates(map[string]interface{}{
				"liquidity_pending": false,
				"pool_ref":          poolRef,
			}).Error; err != nil {
			return err
		}
		return mintTokens(tx, campaignId, poolRef, campaign.LiquidityAllocation)
	})
}

// HarvestYield 归集金库收益
// 收益 = 金库资产估值 - 记账本金，低于阈值时不动作；
// 归集到的收益存入积分收益池，按积分权重分配
func (l *FundingLogic) HarvestYield() (int64, error) {
	f := l.config.Funding

	shares, err := l.vault.BalanceOf(f.PlatformAddress)
	if err != nil {
		return 0, NewExternalError("查询金库持仓失败", err)
	}
	assets, err := l.vault.ConvertToAssets(shares)
	if err != nil {
		return 0, NewExternalError("查询金库资产估值失败", err)
	}

	principal, err := loadPrincipal(l.db, f.PlatformAddress)
	if err != nil {
		return 0, err
	}

	profit := assets - principal
	if profit < f.MinHarvest {
		return 0, nil
	}

	if _, err := l.vault.Withdraw(profit, f.PlatformAddress); err != nil {
		return 0, NewExternalError("提取金库收益失败", err)
	}
	if err := l.rewards.Deposit(PoolPointsYield, profit); err != nil {
		return 0, err
	}

	logger.Info("harvested vault yield: %d", profit)
	return profit, nil
}

// mintTokens 给地址增发活动代币
func mintTokens(tx *gorm.DB, campaignId int64, address string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	var balance model.TokenBalanceModel
	err := tx.Where("campaign_id = ? AND address = ?", campaignId, address).First(&balance).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		balance = model.TokenBalanceModel{CampaignId: campaignId, Address: address, Balance: amount}
		return tx.Create(&balance).Error
	}
	if err != nil {
		return err
	}
	balance.Balance += amount
	return tx.Save(&balance).Error
}

// addVaultPrincipal 累加金库持仓本金
func addVaultPrincipal(tx *gorm.DB, owner string, amount int64) error {
	if amount <= 0 {
		return nil
	}
	var position model.VaultPositionModel
	err := tx.Where("owner = ?", owner).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		position = model.VaultPositionModel{Owner: owner, Principal: amount}
		return tx.Create(&position).Error
	}
	if err != nil {
		return err
	}
	position.Principal += amount
	return tx.Save(&position).Error
}

// loadPrincipal 查询金库持仓本金
func loadPrincipal(db *gorm.DB, owner string) (int64, error) {
	var position model.VaultPositionModel
	err := db.Where("owner = ?", owner).First(&position).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return position.Principal, nil
}

// mulDiv 计算 a*b/den，中间值用 big.Int 防止溢出，向零取整
func mulDiv(a, b, den int64) int64 {
	if den == 0 {
		return 0
	}
	v := new(big.Int).Mul(big.NewInt(a), big.NewInt(b))
	v.Quo(v, big.NewInt(den))
	return v.Int64()
}
