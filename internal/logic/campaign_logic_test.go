package logic

import (
	"testing"
	"time"

	"github.com/blues/lps/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCampaignDerivesAllocations(t *testing.T) {
	d := setupDeps(t)
	campaign := d.newCampaign(t)

	assert.Equal(t, int64(1_000_000), campaign.TokensForSale)
	assert.Equal(t, int64(400_000), campaign.CreatorAllocation)
	assert.Equal(t, int64(500_000), campaign.LiquidityAllocation)
	assert.Equal(t, int64(100_000), campaign.PlatformAllocation)
	assert.True(t, campaign.Active)
	assert.Equal(t, model.CampaignStatusActive, campaign.Status())
}

func TestCreateCampaignValidation(t *testing.T) {
	d := setupDeps(t)
	cl := NewCampaignLogic(d.db, d.cfg)

	base := func() *CreateCampaignRequest {
		return &CreateCampaignRequest{
			Name:          "Test Launch",
			Symbol:        "TST",
			Creator:       "0xCREATOR",
			TargetFunding: 10_000,
			TotalSupply:   2_000_000,
			Deadline:      time.Now().Add(48 * time.Hour),
		}
	}

	cases := []struct {
		name   string
		mutate func(*CreateCampaignRequest)
	}{
		{"空名称", func(r *CreateCampaignRequest) { r.Name = "" }},
		{"空符号", func(r *CreateCampaignRequest) { r.Symbol = "" }},
		{"空创建者", func(r *CreateCampaignRequest) { r.Creator = "" }},
		{"目标过小", func(r *CreateCampaignRequest) { r.TargetFunding = 999 }},
		{"目标过大", func(r *CreateCampaignRequest) { r.TargetFunding = 100_000_001 }},
		{"总量过小", func(r *CreateCampaignRequest) { r.TotalSupply = 99_999 }},
		{"总量过大", func(r *CreateCampaignRequest) { r.TotalSupply = 10_000_000_001 }},
		{"截止过早", func(r *CreateCampaignRequest) { r.Deadline = time.Now().Add(1 * time.Hour) }},
		{"截止过晚", func(r *CreateCampaignRequest) { r.Deadline = time.Now().Add(2_200 * time.Hour) }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := base()
			tc.mutate(req)
			_, err := cl.CreateCampaign(req)
			require.Error(t, err)
			assert.Equal(t, KindValidation, KindOf(err))
		})
	}
}

func TestGetCampaignsFilter(t *testing.T) {
	d := setupDeps(t)
	cl := NewCampaignLogic(d.db, d.cfg)

	first := d.newCampaign(t)
	second := d.newCampaign(t)

	// 手动把第二个活动置为完成态
	require.NoError(t, d.db.Model(&model.CampaignModel{}).
		Where("id = ?", second.Id).
		Update("funding_complete", true).Error)

	active, total, err := cl.GetCampaigns(model.CampaignStatusActive, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, active, 1)
	assert.Equal(t, first.Id, active[0].Id)

	complete, total, err := cl.GetCampaigns(model.CampaignStatusComplete, "", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, complete, 1)
	assert.Equal(t, second.Id, complete[0].Id)

	byCreator, total, err := cl.GetCampaigns("", "0xCREATOR", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, byCreator, 2)
}

func TestGetCampaignNotFound(t *testing.T) {
	d := setupDeps(t)
	cl := NewCampaignLogic(d.db, d.cfg)

	_, err := cl.GetCampaign(42)
	require.Error(t, err)
	assert.Equal(t, KindState, KindOf(err))
}

func TestGetTokenBalanceDefaultsToZero(t *testing.T) {
	d := setupDeps(t)
	cl := NewCampaignLogic(d.db, d.cfg)
	campaign := d.newCampaign(t)

	balance, err := cl.GetTokenBalance(campaign.Id, "0xNOBODY")
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestGetCampaignStats(t *testing.T) {
	d := setupDeps(t)
	cl := NewCampaignLogic(d.db, d.cfg)
	fl := d.newFundingLogic(t)
	campaign := d.newCampaign(t)

	_, err := fl.Buy(campaign.Id, "0xALICE", 4_000)
	require.NoError(t, err)

	stats, err := cl.GetCampaignStats(campaign.Id)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), stats["amount_raised"])
	assert.Equal(t, int64(400_000), stats["tokens_sold"])
	assert.Equal(t, int64(1), stats["investor_count"])
	assert.InDelta(t, 40.0, stats["completion_percentage"], 0.001)
}
