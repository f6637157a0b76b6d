package tradecfg

import (
	"fmt"

	"github.com/whalesx/solana_copy_engine/core/model"
)

// Validator enforces the copy-trade configuration contract. The global trade
// bounds come from the trade config section and apply to every wallet.
type Validator struct {
	minTradeAmount float64
	maxTradeAmount float64
}

func NewValidator(minTradeAmount, maxTradeAmount float64) *Validator {
	return &Validator{
		minTradeAmount: minTradeAmount,
		maxTradeAmount: maxTradeAmount,
	}
}

// ValidateConfig returns nil when cfg is safe to persist and trade on.
func (v *Validator) ValidateConfig(cfg *model.CopyTradeConfig) error {
	if cfg.WalletAddress == "" {
		return fmt.Errorf("wallet address is empty")
	}

	if cfg.MinOrderSize < v.minTradeAmount {
		return fmt.Errorf("min order size %v below minimum trade unit %v", cfg.MinOrderSize, v.minTradeAmount)
	}

	if cfg.TotalAllocation <= 0 || cfg.TotalAllocation > v.maxTradeAmount {
		return fmt.Errorf("total allocation %v out of range (0, %v]", cfg.TotalAllocation, v.maxTradeAmount)
	}

	if cfg.MinOrderSize > cfg.TotalAllocation {
		return fmt.Errorf("min order size %v exceeds total allocation %v", cfg.MinOrderSize, cfg.TotalAllocation)
	}

	if cfg.StopLossPercentage < 0 || cfg.StopLossPercentage > 100 {
		return fmt.Errorf("stop loss percentage %v out of range [0, 100]", cfg.StopLossPercentage)
	}

	if len(cfg.ExitStrategies) == 0 {
		return fmt.Errorf("at least one exit strategy is required")
	}

	for i, strategy := range cfg.ExitStrategies {
		if strategy.SellPercentage <= 0 || strategy.SellPercentage > 100 {
			return fmt.Errorf("exit strategy %d sell percentage %v out of range (0, 100]", i, strategy.SellPercentage)
		}
		if strategy.ProfitPercentage <= 0 || strategy.ProfitPercentage > 1000 {
			return fmt.Errorf("exit strategy %d profit percentage %v out of range (0, 1000]", i, strategy.ProfitPercentage)
		}
	}

	if cfg.MinBuyThreshold < v.minTradeAmount {
		return fmt.Errorf("min buy threshold %v below minimum trade unit %v", cfg.MinBuyThreshold, v.minTradeAmount)
	}

	return nil
}

// ValidateTrade checks one inbound signal against the wallet configuration.
// A rejection is a business-rule mismatch and must not be retried.
func (v *Validator) ValidateTrade(signal *model.TradeSignal, cfg *model.CopyTradeConfig) error {
	if signal.Amount < v.minTradeAmount || signal.Amount > v.maxTradeAmount {
		return fmt.Errorf("signal amount %v out of global bounds [%v, %v]", signal.Amount, v.minTradeAmount, v.maxTradeAmount)
	}

	if signal.Amount < cfg.MinOrderSize {
		return fmt.Errorf("signal amount %v below min order size %v", signal.Amount, cfg.MinOrderSize)
	}

	if signal.Amount > cfg.MaxTokenAmount {
		return fmt.Errorf("signal amount %v exceeds max token amount %v", signal.Amount, cfg.MaxTokenAmount)
	}

	if signal.Side == model.SideBuy && signal.Amount < cfg.MinBuyThreshold {
		return fmt.Errorf("buy amount %v below min buy threshold %v", signal.Amount, cfg.MinBuyThreshold)
	}

	return nil
}
