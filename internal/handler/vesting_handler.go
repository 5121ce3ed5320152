package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/blues/lps/internal/logic"
	"github.com/gin-gonic/gin"
)

type VestingHandler struct {
	vestingLogic *logic.VestingLogic
}

func NewVestingHandler(vestingLogic *logic.VestingLogic) *VestingHandler {
	return &VestingHandler{vestingLogic: vestingLogic}
}

// GetEntries 获取受益人的释放条目
func (h *VestingHandler) GetEntries(c *gin.Context) {
	beneficiary := c.Query("beneficiary")
	if beneficiary == "" {
		ErrorResponse(c, http.StatusBadRequest, "缺少受益人地址")
		return
	}

	entries, err := h.vestingLogic.GetEntries(beneficiary)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": ToVestingEntryResponseList(entries, time.Now())})
}

// GetEntry 获取释放条目详情
func (h *VestingHandler) GetEntry(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的条目ID")
		return
	}

	entry, err := h.vestingLogic.GetEntry(id)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "", ToVestingEntryResponse(entry, time.Now()))
}

// Release 释放到期金额
func (h *VestingHandler) Release(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的条目ID")
		return
	}

	released, err := h.vestingLogic.Release(id)
	if err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "释放成功", gin.H{"released": released})
}

// Revoke 撤销释放条目
func (h *VestingHandler) Revoke(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		ErrorResponse(c, http.StatusBadRequest, "无效的条目ID")
		return
	}

	var req RevokeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.vestingLogic.Revoke(id, req.Caller); err != nil {
		LogicErrorResponse(c, err)
		return
	}

	SuccessResponse(c, http.StatusOK, "撤销成功", nil)
}
