package reputation

import (
	"fmt"

	"github.com/whalesx/solana_copy_engine/core/model"
)

const (
	maxPortfolioVolatility = 0.5
	maxSingleAllocation    = 0.2
	maxPortfolioDrawdown   = 0.15
	maxPositionShare       = 0.2
)

// RiskGate blocks trades that would breach portfolio limits. The four checks
// are independent; any one failure blocks execution.
type RiskGate struct{}

func NewRiskGate() *RiskGate {
	return &RiskGate{}
}

func (g *RiskGate) ValidateTrade(signal *model.TradeSignal, portfolio *model.PortfolioStats) error {
	if portfolio.Volatility > maxPortfolioVolatility {
		return fmt.Errorf("portfolio volatility %v exceeds limit %v", portfolio.Volatility, maxPortfolioVolatility)
	}

	if portfolio.Drawdown > maxPortfolioDrawdown {
		return fmt.Errorf("portfolio drawdown %v exceeds limit %v", portfolio.Drawdown, maxPortfolioDrawdown)
	}

	if portfolio.TotalValue > 0 {
		for token, value := range portfolio.Allocations {
			if value/portfolio.TotalValue > maxSingleAllocation {
				return fmt.Errorf("allocation for %s is %v of portfolio, exceeds limit %v", token, value/portfolio.TotalValue, maxSingleAllocation)
			}
		}

		position := signal.Amount * signal.Price
		if position/portfolio.TotalValue > maxPositionShare {
			return fmt.Errorf("position size %v exceeds %v of portfolio value %v", position, maxPositionShare, portfolio.TotalValue)
		}
	}

	return nil
}
