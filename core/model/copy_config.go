package model

import (
	"time"

	"github.com/uptrace/bun"
)

const (
	BuyStrategyExact      string = "exact"
	BuyStrategyPercentage string = "percentage"
)

const (
	FeeModeAuto    string = "auto"
	FeeModeManual  string = "manual"
	FeeModeBribery string = "bribery"
)

type ExitStrategy struct {
	ProfitPercentage float64 `json:"profit_percentage"`
	SellPercentage   float64 `json:"sell_percentage"`
}

type CopyTradeConfig struct {
	bun.BaseModel `bun:"table:ct_copy_trade_config,alias:cfg"`

	ID            int64  `bun:"id,pk,autoincrement" json:"id"`
	WalletAddress string `bun:"wallet_address,notnull,unique" json:"wallet_address"`
	TradeName     string `bun:"trade_name" json:"trade_name"`

	BuyStrategy     string  `bun:"buy_strategy" json:"buy_strategy"`
	CopyPercentage  float64 `bun:"copy_percentage" json:"copy_percentage"`
	MinOrderSize    float64 `bun:"min_order_size" json:"min_order_size"`
	TotalAllocation float64 `bun:"total_allocation" json:"total_allocation"`

	StopLossPercentage float64        `bun:"stop_loss_percentage" json:"stop_loss_percentage"`
	ExitStrategies     []ExitStrategy `bun:"exit_strategies,type:jsonb" json:"exit_strategies"`

	MinBuyThreshold float64 `bun:"min_buy_threshold" json:"min_buy_threshold"`
	MaxTokenAmount  float64 `bun:"max_token_amount" json:"max_token_amount"`

	PriorityFeeMode   string `bun:"priority_fee_mode" json:"priority_fee_mode"`
	CustomPriorityFee uint64 `bun:"custom_priority_fee" json:"custom_priority_fee"`
	BriberyAmount     uint64 `bun:"bribery_amount" json:"bribery_amount"`

	IsActive bool `bun:"is_active" json:"is_active"`

	CreateAt time.Time `bun:"create_at,nullzero" json:"create_at"`
	UpdateAt time.Time `bun:"update_at,nullzero" json:"update_at"`
}
