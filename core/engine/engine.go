package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/reputation"
	"github.com/whalesx/solana_copy_engine/core/tradecfg"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// ConfigResolver yields the active copy-trade config for a source wallet.
type ConfigResolver interface {
	Resolve(ctx context.Context, wallet string) (*model.CopyTradeConfig, error)
}

// InstructionBuilder turns a sized signal into the swap payload. The engine
// never inspects the instructions, it only hands them to the pipeline.
type InstructionBuilder interface {
	Build(ctx context.Context, signal *model.TradeSignal, cfg *model.CopyTradeConfig, amount float64) ([]solana.Instruction, error)
}

// PortfolioProvider exposes the follower portfolio the risk gate judges
// against.
type PortfolioProvider interface {
	Portfolio(ctx context.Context, wallet string) (*model.PortfolioStats, error)
}

// Executor runs one job to a terminal state.
type Executor interface {
	Execute(ctx context.Context, job *model.TransactionJob, cfg *model.CopyTradeConfig) (solana.Signature, error)
}

// Engine is the signal-to-submission flow: resolve config, validate the
// trade, gate on risk, size the order, build instructions and execute.
type Engine struct {
	resolver   ConfigResolver
	validator  *tradecfg.Validator
	riskGate   *reputation.RiskGate
	scorer     *reputation.Scorer
	portfolios PortfolioProvider
	builder    InstructionBuilder
	executor   Executor
}

func NewEngine(resolver ConfigResolver, validator *tradecfg.Validator, riskGate *reputation.RiskGate, scorer *reputation.Scorer, portfolios PortfolioProvider, builder InstructionBuilder, exec Executor) *Engine {
	return &Engine{
		resolver:   resolver,
		validator:  validator,
		riskGate:   riskGate,
		scorer:     scorer,
		portfolios: portfolios,
		builder:    builder,
		executor:   exec,
	}
}

// HandleSignal executes one inbound copy-trade signal. Validation and
// risk-gate rejections return an error without touching the pipeline; they
// are business rejections, not faults, and are never retried.
func (e *Engine) HandleSignal(ctx context.Context, signal *model.TradeSignal) error {
	cfg, err := e.resolver.Resolve(ctx, signal.SourceWallet)
	if err != nil {
		return fmt.Errorf("resolve config for %s failed, %v", signal.SourceWallet, err)
	}

	err = e.validator.ValidateTrade(signal, cfg)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": signal.SourceWallet, "Token": signal.TokenAddress, "ErrMsg": err}).Info("Engine trade validation rejected signal")

		return fmt.Errorf("trade rejected, %v", err)
	}

	portfolio, err := e.portfolios.Portfolio(ctx, cfg.WalletAddress)
	if err != nil {
		return fmt.Errorf("fetch portfolio for %s failed, %v", cfg.WalletAddress, err)
	}

	err = e.riskGate.ValidateTrade(signal, portfolio)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": signal.SourceWallet, "Token": signal.TokenAddress, "ErrMsg": err}).Info("Engine risk gate rejected signal")

		return fmt.Errorf("trade rejected, %v", err)
	}

	amount := orderSize(signal, cfg)

	instrs, err := e.builder.Build(ctx, signal, cfg, amount)
	if err != nil {
		return fmt.Errorf("build instructions failed, %v", err)
	}

	job := &model.TransactionJob{
		Instructions:  instrs,
		WalletAddress: cfg.WalletAddress,
	}

	sig, err := e.executor.Execute(ctx, job, cfg)
	e.scorer.RecordTrade(signal.SourceWallet, err == nil)
	if err != nil {
		return err
	}

	logger.Logrus.WithFields(logrus.Fields{"Wallet": signal.SourceWallet, "Token": signal.TokenAddress, "Amount": amount, "Signature": sig.String()}).Info("Engine handle signal success")

	return nil
}

// orderSize applies the buy strategy. Exact mirrors the signal amount;
// percentage scales it by the configured share. Both are capped by the
// wallet's total allocation.
func orderSize(signal *model.TradeSignal, cfg *model.CopyTradeConfig) float64 {
	amount := signal.Amount

	if cfg.BuyStrategy == model.BuyStrategyPercentage {
		share := cfg.CopyPercentage
		if share <= 0 {
			share = 100
		}
		amount = signal.Amount * share / 100
	}

	if cfg.TotalAllocation > 0 && amount > cfg.TotalAllocation {
		amount = cfg.TotalAllocation
	}

	return amount
}
