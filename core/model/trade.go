package model

import (
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/uptrace/bun"
)

const (
	SideBuy  string = "buy"
	SideSell string = "sell"
)

type TradeSignal struct {
	SourceWallet string  `json:"source_wallet"`
	TokenAddress string  `json:"token_address"`
	Side         string  `json:"side"`
	Amount       float64 `json:"amount"`
	Price        float64 `json:"price"`
	Confidence   float64 `json:"confidence"`
	Timestamp    int64   `json:"timestamp"`
}

const (
	JobStatusPending   string = "pending"
	JobStatusSubmitted string = "submitted"
	JobStatusConfirmed string = "confirmed"
	JobStatusFailed    string = "failed"
)

// TransactionJob is one execution attempt sequence. Payload instructions
// exclude the compute-budget pair; the pipeline prepends those per attempt.
type TransactionJob struct {
	Instructions  []solana.Instruction
	WalletAddress string

	RetryCount               int
	PriorityFeeMicroLamports uint64
	ComputeUnitLimit         uint32
	Status                   string
}

const (
	HistoryStatusSuccess string = "success"
	HistoryStatusFailed  string = "failed"
)

type TradeHistoryRecord struct {
	bun.BaseModel `bun:"table:ct_trade_history,alias:his"`

	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	WalletAddress string    `bun:"wallet_address,notnull" json:"wallet_address"`
	Signature     string    `bun:"signature" json:"signature"`
	ErrMsg        string    `bun:"err_msg" json:"err_msg"`
	Status        string    `bun:"status,notnull" json:"status"`
	Timestamp     time.Time `bun:"timestamp,nullzero" json:"timestamp"`
}

type TraderMetrics struct {
	SuccessfulTrades int64   `json:"successful_trades"`
	TotalTrades      int64   `json:"total_trades"`
	AverageROI       float64 `json:"average_roi"`
	RiskScore        float64 `json:"risk_score"`
	ConsistencyScore float64 `json:"consistency_score"`
	Followers        int64   `json:"followers"`
}

type PortfolioStats struct {
	TotalValue  float64            `json:"total_value"`
	Allocations map[string]float64 `json:"allocations"`
	Drawdown    float64            `json:"drawdown"`
	Volatility  float64            `json:"volatility"`
}
