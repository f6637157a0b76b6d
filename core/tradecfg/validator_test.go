package tradecfg

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(filepath.Join(os.TempDir(), "tradecfg_test.log"))
	os.Exit(m.Run())
}

func validConfig() *model.CopyTradeConfig {
	return &model.CopyTradeConfig{
		WalletAddress:      "trader1",
		BuyStrategy:        model.BuyStrategyExact,
		MinOrderSize:       0.1,
		TotalAllocation:    1.0,
		StopLossPercentage: 10,
		ExitStrategies: []model.ExitStrategy{
			{ProfitPercentage: 20, SellPercentage: 50},
		},
		MinBuyThreshold: 0.1,
		MaxTokenAmount:  10,
		PriorityFeeMode: model.FeeModeAuto,
		IsActive:        true,
	}
}

func newTestValidator() *Validator {
	return NewValidator(0.001, 100)
}

func TestValidateConfigAccepts(t *testing.T) {
	v := newTestValidator()
	require.NoError(t, v.ValidateConfig(validConfig()))
}

func TestValidateConfigRejectsSellPercentageAboveHundred(t *testing.T) {
	v := newTestValidator()
	cfg := validConfig()
	cfg.ExitStrategies[0].SellPercentage = 150

	err := v.ValidateConfig(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sell percentage")
}

func TestValidateConfigRejects(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(cfg *model.CopyTradeConfig)
	}{
		{"empty wallet", func(cfg *model.CopyTradeConfig) { cfg.WalletAddress = "" }},
		{"min order below trade unit", func(cfg *model.CopyTradeConfig) { cfg.MinOrderSize = 0.0001 }},
		{"zero allocation", func(cfg *model.CopyTradeConfig) { cfg.TotalAllocation = 0 }},
		{"negative allocation", func(cfg *model.CopyTradeConfig) { cfg.TotalAllocation = -1 }},
		{"allocation above global max", func(cfg *model.CopyTradeConfig) { cfg.TotalAllocation = 500 }},
		{"min order above allocation", func(cfg *model.CopyTradeConfig) { cfg.MinOrderSize = 2 }},
		{"stop loss negative", func(cfg *model.CopyTradeConfig) { cfg.StopLossPercentage = -5 }},
		{"stop loss above hundred", func(cfg *model.CopyTradeConfig) { cfg.StopLossPercentage = 120 }},
		{"nil exit strategies", func(cfg *model.CopyTradeConfig) { cfg.ExitStrategies = nil }},
		{"empty exit strategies", func(cfg *model.CopyTradeConfig) { cfg.ExitStrategies = []model.ExitStrategy{} }},
		{"zero sell percentage", func(cfg *model.CopyTradeConfig) { cfg.ExitStrategies[0].SellPercentage = 0 }},
		{"profit percentage above bound", func(cfg *model.CopyTradeConfig) { cfg.ExitStrategies[0].ProfitPercentage = 1500 }},
		{"zero profit percentage", func(cfg *model.CopyTradeConfig) { cfg.ExitStrategies[0].ProfitPercentage = 0 }},
		{"buy threshold below trade unit", func(cfg *model.CopyTradeConfig) { cfg.MinBuyThreshold = 0.0001 }},
	}

	v := newTestValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(cfg)
			assert.Error(t, v.ValidateConfig(cfg))
		})
	}
}

func TestValidateTradeAccepts(t *testing.T) {
	v := newTestValidator()
	signal := &model.TradeSignal{
		SourceWallet: "trader1",
		TokenAddress: "token1",
		Side:         model.SideBuy,
		Amount:       0.5,
	}

	require.NoError(t, v.ValidateTrade(signal, validConfig()))
}

func TestValidateTradeRejects(t *testing.T) {
	cases := []struct {
		name   string
		signal model.TradeSignal
	}{
		{"below min order size", model.TradeSignal{Side: model.SideBuy, Amount: 0.05}},
		{"above max token amount", model.TradeSignal{Side: model.SideSell, Amount: 50}},
		{"below global minimum", model.TradeSignal{Side: model.SideSell, Amount: 0.0001}},
		{"above global maximum", model.TradeSignal{Side: model.SideSell, Amount: 1000}},
	}

	v := newTestValidator()
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			signal := tc.signal
			assert.Error(t, v.ValidateTrade(&signal, validConfig()))
		})
	}
}

func TestValidateTradeBuyThresholdOnlyGatesBuys(t *testing.T) {
	v := newTestValidator()
	cfg := validConfig()
	cfg.MinOrderSize = 0.001
	cfg.MinBuyThreshold = 0.5

	buy := &model.TradeSignal{Side: model.SideBuy, Amount: 0.2}
	assert.Error(t, v.ValidateTrade(buy, cfg))

	sell := &model.TradeSignal{Side: model.SideSell, Amount: 0.2}
	assert.NoError(t, v.ValidateTrade(sell, cfg))
}
