package handler

import (
	"net/http"
	"strconv"

	"github.com/blues/lps/internal/config"
	"github.com/blues/lps/internal/curve"
	"github.com/blues/lps/internal/logic"
	"github.com/blues/lps/internal/model"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type CampaignHandler struct {
	campaignLogic *logic.CampaignLogic
}

func NewCampaignHandler(db *gorm.DB, cfg *config.Config) *CampaignHandler {
	return &CampaignHandler{
		campaignLogic: logic.NewCampaignLogic(db, cfg),
	}
}

// CreateCampaign 创建活动
func (h *CampaignHandler) CreateCampaign(c *gin.Context) {
	var req logic.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	campaign, err := h.campaignLogic.CreateCampaign(&req)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusCreated, "活动创建成功", ToCampaignResponse(campaign))
}

// GetCampaigns 获取活动列表
func (h *CampaignHandler) GetCampaigns(c *gin.Context) {
	status := model.CampaignStatus(c.Query("status"))
	creator := c.Query("creator")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "10"))

	campaigns, total, err := h.campaignLogic.GetCampaigns(status, creator, page, pageSize)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaigns": ToCampaignResponseList(campaigns),
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetCampaign 获取活动详情
func (h *CampaignHandler) GetCampaign(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", ToCampaignResponse(campaign))
}

// GetQuote 买入报价
// amount 参数给出买入金额时返回预估代币数量与实际成本
func (h *CampaignHandler) GetQuote(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	campaign, err := h.campaignLogic.GetCampaign(id)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	price, err := curve.CurrentPrice(campaign.TokensForSale, campaign.TokensSold, campaign.TargetFunding)
	if err != nil {
		ErrorResponse(c, http.StatusConflict, err.Error())
		return
	}

	quote := QuoteResponse{CurrentPrice: price}
	if amountStr := c.Query("amount"); amountStr != "" {
		amount, err := strconv.ParseInt(amountStr, 10, 64)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, "无效的买入金额")
			return
		}
		tokensOut, cost, err := curve.PurchaseReturn(
			campaign.TokensForSale, campaign.TokensSold, campaign.TargetFunding, amount)
		if err != nil {
			ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		quote.TokensOut = tokensOut
		quote.Cost = cost
	}

	SuccessResponse(c, http.StatusOK, "", quote)
}

// GetCampaignStats 获取活动统计信息
func (h *CampaignHandler) GetCampaignStats(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	stats, err := h.campaignLogic.GetCampaignStats(id)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetPlatformStats 获取平台统计信息
func (h *CampaignHandler) GetPlatformStats(c *gin.Context) {
	stats, err := h.campaignLogic.GetPlatformStats()
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": stats})
}

// GetCampaignInvestments 获取活动投资记录
func (h *CampaignHandler) GetCampaignInvestments(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))

	investments, total, err := h.campaignLogic.GetCampaignInvestments(id, page, pageSize)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"investments": ToInvestmentResponseList(investments),
		"pagination": Pagination{
			Page:      page,
			PageSize:  pageSize,
			Total:     total,
			TotalPage: (total + int64(pageSize) - 1) / int64(pageSize),
		},
	})
}

// GetInvestorInvestments 获取投资人参与的所有活动
func (h *CampaignHandler) GetInvestorInvestments(c *gin.Context) {
	investor := c.Param("address")
	if investor == "" {
		ErrorResponse(c, http.StatusBadRequest, "无效的投资人地址")
		return
	}

	investments, err := h.campaignLogic.GetInvestorInvestments(investor)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"investments": ToInvestmentResponseList(investments)})
}

// GetTokenBalance 查询活动代币余额
func (h *CampaignHandler) GetTokenBalance(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的活动ID")
		return
	}

	address := c.Param("address")
	balance, err := h.campaignLogic.GetTokenBalance(id, address)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"campaign_id": id,
		"address":     address,
		"balance":     balance,
	})
}
