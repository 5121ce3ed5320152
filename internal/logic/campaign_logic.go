package logic

import (
	"errors"
	"fmt"
	"time"

	"github.com/blues/lps/internal/allocator"
	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/model"
	"gorm.io/gorm"
)

// CampaignLogic 融资活动业务逻辑
type CampaignLogic struct {
	db     *gorm.DB
	config *config.Config
}

// NewCampaignLogic 创建融资活动业务逻辑
func NewCampaignLogic(db *gorm.DB, cfg *config.Config) *CampaignLogic {
	return &CampaignLogic{db: db, config: cfg}
}

// CreateCampaignRequest 创建活动请求
type CreateCampaignRequest struct {
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	Description   string    `json:"description"`
	Creator       string    `json:"creator"`
	TargetFunding int64     `json:"target_funding"`
	TotalSupply   int64     `json:"total_supply"`
	ReserveRatio  int64     `json:"reserve_ratio"` // 兼容字段，当前未使用
	Deadline      time.Time `json:"deadline"`
}

// CreateCampaign 创建融资活动
// 校验融资目标、代币总量与截止时间后派生固定代币分配，
// 活动代币是隔离的独立账本，只有本服务可以铸币
func (l *CampaignLogic) CreateCampaign(req *CreateCampaignRequest) (*model.CampaignModel, error) {
	if err := l.validateCampaign(req); err != nil {
		return nil, err
	}

	alloc := allocator.AllocateSupply(req.TotalSupply)
	if alloc.Total() > req.TotalSupply {
		return nil, NewValidationError("代币分配超过总量")
	}

	campaign := &model.CampaignModel{
		Name:                req.Name,
		Symbol:              req.Symbol,
		Description:         req.Description,
		Creator:             req.Creator,
		TargetFunding:       req.TargetFunding,
		TotalSupply:         req.TotalSupply,
		TokensForSale:       alloc.Sale,
		CreatorAllocation:   alloc.Creator,
		LiquidityAllocation: alloc.Liquidity,
		PlatformAllocation:  alloc.Platform,
		ReserveRatio:        req.ReserveRatio,
		Deadline:            req.Deadline,
		Active:              true,
	}

	if err := l.db.Create(campaign).Error; err != nil {
		return nil, fmt.Errorf("创建活动失败: %w", err)
	}

	return campaign, nil
}

// validateCampaign 校验活动参数
func (l *CampaignLogic) validateCampaign(req *CreateCampaignRequest) error {
	f := l.config.Funding

	if req.Name == "" {
		return NewValidationError("活动名称不能为空")
	}
	if req.Symbol == "" {
		return NewValidationError("代币符号不能为空")
	}
	if req.Creator == "" {
		return NewValidationError("创建者地址不能为空")
	}
	if req.TargetFunding < f.MinTarget || req.TargetFunding > f.MaxTarget {
		return NewValidationError("融资目标超出允许范围")
	}
	if req.TotalSupply < f.MinSupply || req.TotalSupply > f.MaxSupply {
		return NewValidationError("代币总量超出允许范围")
	}

	now := time.Now()
	minDeadline := now.Add(time.Duration(f.MinDurationHours) * time.Hour)
	maxDeadline := now.Add(time.Duration(f.MaxDurationHours) * time.Hour)
	if req.Deadline.Before(minDeadline) {
		return NewValidationError("截止时间早于最短融资时长")
	}
	if req.Deadline.After(maxDeadline) {
		return NewValidationError("截止时间晚于最长融资时长")
	}

	return nil
}

// GetCampaign 获取活动详情
func (l *CampaignLogic) GetCampaign(id int64) (*model.CampaignModel, error) {
	var campaign model.CampaignModel
	if err := l.db.First(&campaign, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, NewStateError("活动不存在")
		}
		return nil, fmt.Errorf("获取活动详情失败: %w", err)
	}
	return &campaign, nil
}

// GetCampaigns 获取活动列表
func (l *CampaignLogic) GetCampaigns(status model.CampaignStatus, creator string, page, pageSize int) ([]model.CampaignModel, int64, error) {
	query := l.db.Model(&model.CampaignModel{})

	switch status {
	case model.CampaignStatusActive:
		query = query.Where("active = ? AND funding_complete = ? AND cancelled = ?", true, false, false)
	case model.CampaignStatusComplete:
		query = query.Where("funding_complete = ?", true)
	case model.CampaignStatusCancelled:
		query = query.Where("cancelled = ?", true)
	}
	if creator != "" {
		query = query.Where("creator = ?", creator)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var campaigns []model.CampaignModel
	offset := (page - 1) * pageSize
	if err := query.Offset(offset).
		Limit(pageSize).
		Order("created_at DESC").
		Find(&campaigns).Error; err != nil {
		return nil, 0, err
	}

	return campaigns, total, nil
}

// GetCampaignInvestments 获取活动投资记录
func (l *CampaignLogic) GetCampaignInvestments(campaignId int64, page, pageSize int) ([]model.InvestmentModel, int64, error) {
	var total int64
	if err := l.db.Model(&model.InvestmentModel{}).Where("campaign_id = ?", campaignId).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var investments []model.InvestmentModel
	offset := (page - 1) * pageSize
	if err := l.db.Where("campaign_id = ?", campaignId).
		Offset(offset).
		Limit(pageSize).
		Order("amount DESC").
		Find(&investments).Error; err != nil {
		return nil, 0, err
	}

	return investments, total, nil
}

// GetInvestorInvestments 获取投资人参与的所有活动
func (l *CampaignLogic) GetInvestorInvestments(investor string) ([]model.InvestmentModel, error) {
	var investments []model.InvestmentModel
	if err := l.db.Where("investor = ?", investor).
		Order("updated_at DESC").
		Find(&investments).Error; err != nil {
		return nil, fmt.Errorf("获取投资记录失败: %w", err)
	}
	return investments, nil
}

// GetTokenBalance 查询活动代币余额
func (l *CampaignLogic) GetTokenBalance(campaignId int64, address string) (int64, error) {
	var balance model.TokenBalanceModel
	err := l.db.Where("campaign_id = ? AND address = ?", campaignId, address).First(&balance).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, err
	}
	return balance.Balance, nil
}

// GetCampaignStats 获取活动统计信息
func (l *CampaignLogic) GetCampaignStats(id int64) (map[string]interface{}, error) {
	campaign, err := l.GetCampaign(id)
	if err != nil {
		return nil, err
	}

	var investorCount int64
	if err := l.db.Model(&model.InvestmentModel{}).
		Where("campaign_id = ?", id).
		Count(&investorCount).Error; err != nil {
		return nil, fmt.Errorf("获取投资人数失败: %w", err)
	}

	// 计算完成百分比
	completionPercentage := float64(0)
	if campaign.TargetFunding > 0 {
		completionPercentage = float64(campaign.AmountRaised) / float64(campaign.TargetFunding) * 100
	}

	// 计算剩余时间
	remainingTime := time.Duration(0)
	if campaign.Status() == model.CampaignStatusActive && time.Now().Before(campaign.Deadline) {
		remainingTime = time.Until(campaign.Deadline)
	}

	return map[string]interface{}{
		"campaign_id":           campaign.Id,
		"amount_raised":         campaign.AmountRaised,
		"target_funding":        campaign.TargetFunding,
		"tokens_sold":           campaign.TokensSold,
		"tokens_for_sale":       campaign.TokensForSale,
		"completion_percentage": completionPercentage,
		"investor_count":        investorCount,
		"points_bank":           campaign.PointsBank,
		"remaining_time":        remainingTime.String(),
		"status":                campaign.Status(),
	}, nil
}

// GetPlatformStats 获取平台汇总统计信息
func (l *CampaignLogic) GetPlatformStats() (map[string]interface{}, error) {
	var totalCampaigns int64
	l.db.Model(&model.CampaignModel{}).Count(&totalCampaigns)

	var activeCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("active = ? AND funding_complete = ? AND cancelled = ?", true, false, false).
		Count(&activeCampaigns)

	var completedCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("funding_complete = ?", true).
		Count(&completedCampaigns)

	var cancelledCampaigns int64
	l.db.Model(&model.CampaignModel{}).
		Where("cancelled = ?", true).
		Count(&cancelledCampaigns)

	// 统计融资总额
	var totalRaised int64
	l.db.Model(&model.CampaignModel{}).
		Select("COALESCE(SUM(amount_raised), 0)").
		Scan(&totalRaised)

	// 统计投资人数量（去重）
	var totalInvestors int64
	l.db.Model(&model.InvestmentModel{}).
		Distinct("investor").
		Count(&totalInvestors)

	return map[string]interface{}{
		"totalCampaigns":     totalCampaigns,
		"activeCampaigns":    activeCampaigns,
		"completedCampaigns": completedCampaigns,
		"cancelledCampaigns": cancelledCampaigns,
		"totalRaised":        fmt.Sprintf("%d", totalRaised),
		"totalInvestors":     totalInvestors,
	}, nil
}
