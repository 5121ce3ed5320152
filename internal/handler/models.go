package handler

import (
	"time"

	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/model"
)

// 通用响应结构
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data"`
}

// 分页信息结构
type Pagination struct {
	Page      int   `json:"page"`
	PageSize  int   `json:"pageSize"`
	Total     int64 `json:"total"`
	TotalPage int64 `json:"totalPage"`
}

// 活动相关响应模型

// CampaignResponse 活动响应模型
type CampaignResponse struct {
	ID                  int64     `json:"id"`
	Name                string    `json:"name"`
	Symbol              string    `json:"symbol"`
	Description         string    `json:"description"`
	Creator             string    `json:"creator"`
	TargetFunding       int64     `json:"targetFunding"`
	AmountRaised        int64     `json:"amountRaised"`
	TotalSupply         int64     `json:"totalSupply"`
	TokensForSale       int64     `json:"tokensForSale"`
	TokensSold          int64     `json:"tokensSold"`
	CreatorAllocation   int64     `json:"creatorAllocation"`
	LiquidityAllocation int64     `json:"liquidityAllocation"`
	PlatformAllocation  int64     `json:"platformAllocation"`
	Deadline            time.Time `json:"deadline"`
	Status              string    `json:"status"`
	Sponsored           bool      `json:"sponsored"`
	PointsBank          int64     `json:"pointsBank"`
	PoolRef             string    `json:"poolRef"`
	CreatedAt           time.Time `json:"createdAt"`
	UpdatedAt           time.Time `json:"updatedAt"`
}

// InvestmentResponse 投资记录响应模型
type InvestmentResponse struct {
	ID         int64     `json:"id"`
	CampaignID int64     `json:"campaignId"`
	Investor   string    `json:"investor"`
	Amount     int64     `json:"amount"`
	Tokens     int64     `json:"tokens"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// VestingEntryResponse 释放条目响应模型
type VestingEntryResponse struct {
	ID          int64     `json:"id"`
	CampaignID  int64     `json:"campaignId"`
	Beneficiary string    `json:"beneficiary"`
	TotalAmount int64     `json:"totalAmount"`
	Released    int64     `json:"released"`
	Releasable  int64     `json:"releasable"`
	StartTime   time.Time `json:"startTime"`
	Duration    int64     `json:"duration"`
	Revoked     bool      `json:"revoked"`
}

// QuoteResponse 买入报价响应
type QuoteResponse struct {
	CurrentPrice int64 `json:"currentPrice"`
	TokensOut    int64 `json:"tokensOut"`
	Cost         int64 `json:"cost"`
}

// 请求模型

// SponsorRequest 赞助请求
type SponsorRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// BuyRequest 买入请求
type BuyRequest struct {
	Investor string `json:"investor" binding:"required"`
	Amount   int64  `json:"amount" binding:"required"`
}

// RevokeRequest 撤销请求
type RevokeRequest struct {
	Caller string `json:"caller" binding:"required"`
}

// ClaimRequest 领取奖励请求
type ClaimRequest struct {
	Account string `json:"account" binding:"required"`
}

// 转换函数

// ToCampaignResponse 将数据库模型转换为响应模型
func ToCampaignResponse(campaign *model.CampaignModel) CampaignResponse {
	return CampaignResponse{
		ID:                  campaign.Id,
		Name:                campaign.Name,
		Symbol:              campaign.Symbol,
		Description:         campaign.Description,
		Creator:             campaign.Creator,
		TargetFunding:       campaign.TargetFunding,
		AmountRaised:        campaign.AmountRaised,
		TotalSupply:         campaign.TotalSupply,
		TokensForSale:       campaign.TokensForSale,
		TokensSold:          campaign.TokensSold,
		CreatorAllocation:   campaign.CreatorAllocation,
		LiquidityAllocation: campaign.LiquidityAllocation,
		PlatformAllocation:  campaign.PlatformAllocation,
		Deadline:            campaign.Deadline,
		Status:              string(campaign.Status()),
		Sponsored:           campaign.Sponsored,
		PointsBank:          campaign.PointsBank,
		PoolRef:             campaign.PoolRef,
		CreatedAt:           campaign.CreatedAt,
		UpdatedAt:           campaign.UpdatedAt,
	}
}

// ToCampaignResponseList 将数据库模型列表转换为响应模型列表
func ToCampaignResponseList(campaigns []model.CampaignModel) []CampaignResponse {
	result := make([]CampaignResponse, len(campaigns))
	for i, campaign := range campaigns {
		result[i] = ToCampaignResponse(&campaign)
	}
	return result
}

// ToInvestmentResponse 将投资记录数据库模型转换为响应模型
func ToInvestmentResponse(inv *model.InvestmentModel) InvestmentResponse {
	return InvestmentResponse{
		ID:         inv.Id,
		CampaignID: inv.CampaignId,
		Investor:   inv.Investor,
		Amount:     inv.Amount,
		Tokens:     inv.Tokens,
		UpdatedAt:  inv.UpdatedAt,
	}
}

// ToInvestmentResponseList 将投资记录数据库模型列表转换为响应模型列表
func ToInvestmentResponseList(investments []model.InvestmentModel) []InvestmentResponse {
	result := make([]InvestmentResponse, len(investments))
	for i, inv := range investments {
		result[i] = ToInvestmentResponse(&inv)
	}
	return result
}

// ToVestingEntryResponse 将释放条目数据库模型转换为响应模型
func ToVestingEntryResponse(entry *model.VestingEntryModel, at time.Time) VestingEntryResponse {
	return VestingEntryResponse{
		ID:          entry.Id,
		CampaignID:  entry.CampaignId,
		Beneficiary: entry.Beneficiary,
		TotalAmount: entry.TotalAmount,
		Released:    entry.Released,
		Releasable:  logic.Releasable(entry, at),
		StartTime:   entry.StartTime,
		Duration:    entry.Duration,
		Revoked:     entry.Revoked,
	}
}

// ToVestingEntryResponseList 将释放条目数据库模型列表转换为响应模型列表
func ToVestingEntryResponseList(entries []model.VestingEntryModel, at time.Time) []VestingEntryResponse {
	result := make([]VestingEntryResponse, len(entries))
	for i, entry := range entries {
		result[i] = ToVestingEntryResponse(&entry, at)
	}
	return result
}
