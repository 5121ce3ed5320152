package handler

import (
	"net/http"

	"github.com/blues/lps/internal/logic"
	"github.com/gin-gonic/gin"
)

// 可经由 API 访问的奖励池
var knownPools = map[string]bool{
	logic.PoolPointsYield:  true,
	logic.PoolLPFee:        true,
	logic.PoolVolumePoints: true,
}

type RewardHandler struct {
	fundingLogic *logic.FundingLogic
}

func NewRewardHandler(fundingLogic *logic.FundingLogic) *RewardHandler {
	return &RewardHandler{fundingLogic: fundingLogic}
}

// GetPending 查询待领取奖励
func (h *RewardHandler) GetPending(c *gin.Context) {
	pool := c.Param("pool")
	if !knownPools[pool] {
		ErrorResponse(c, http.StatusBadRequest, "未知的奖励池")
		return
	}
	account := c.Query("account")
	if account == "" {
		ErrorResponse(c, http.StatusBadRequest, "缺少账户地址")
		return
	}

	pending, err := h.fundingLogic.Rewards().Pending(pool, account)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"pool":    pool,
		"account": account,
		"pending": pending,
	})
}

// Claim 领取奖励
func (h *RewardHandler) Claim(c *gin.Context) {
	pool := c.Param("pool")
	if !knownPools[pool] {
		ErrorResponse(c, http.StatusBadRequest, "未知的奖励池")
		return
	}

	var req ClaimRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	paid, err := h.fundingLogic.Rewards().Claim(pool, req.Account, h.fundingLogic.PayerFor(pool))
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "领取成功", gin.H{"paid": paid})
}

// Flush 归集待分配奖励
func (h *RewardHandler) Flush(c *gin.Context) {
	pool := c.Param("pool")
	if !knownPools[pool] {
		ErrorResponse(c, http.StatusBadRequest, "未知的奖励池")
		return
	}

	if err := h.fundingLogic.Rewards().FlushUndistributed(pool); err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "归集成功", nil)
}
