package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/lps/internal/logic"
	"github.com/gin-gonic/gin"
)

type FundingHandler struct {
	fundingLogic *logic.FundingLogic
}

func NewFundingHandler(fundingLogic *logic.FundingLogic) *FundingHandler {
	return &FundingHandler{fundingLogic: fundingLogic}
}

// Sponsor 赞助活动
func (h *FundingHandler) Sponsor(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req SponsorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.fundingLogic.Sponsor(id, req.Caller); err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "赞助成功", nil)
}

// Buy 买入活动代币
func (h *FundingHandler) Buy(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	var req BuyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.fundingLogic.Buy(id, req.Investor, req.Amount)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "买入成功", result)
}

// RetryLiquidity 重试流动性注入
func (h *FundingHandler) RetryLiquidity(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	if err := h.fundingLogic.RetryLiquidity(id); err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "流动性注入成功", nil)
}
