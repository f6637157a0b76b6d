package engine

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/reputation"
	"github.com/whalesx/solana_copy_engine/core/tradecfg"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(filepath.Join(os.TempDir(), "engine_test.log"))
	os.Exit(m.Run())
}

// ---------------------------------------------------------------------------
// Mock collaborators
// ---------------------------------------------------------------------------

type mockResolver struct {
	cfg *model.CopyTradeConfig
	err error
}

func (m *mockResolver) Resolve(ctx context.Context, wallet string) (*model.CopyTradeConfig, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.cfg, nil
}

type mockBuilder struct {
	mu      sync.Mutex
	amounts []float64
	err     error
}

func (m *mockBuilder) Build(ctx context.Context, signal *model.TradeSignal, cfg *model.CopyTradeConfig, amount float64) ([]solana.Instruction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.amounts = append(m.amounts, amount)
	return nil, nil
}

type mockPortfolios struct {
	stats *model.PortfolioStats
	err   error
}

func (m *mockPortfolios) Portfolio(ctx context.Context, wallet string) (*model.PortfolioStats, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.stats, nil
}

type mockExecutor struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *mockExecutor) Execute(ctx context.Context, job *model.TransactionJob, cfg *model.CopyTradeConfig) (solana.Signature, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return solana.Signature{}, m.err
	}
	return solana.Signature{1}, nil
}

type engineFixture struct {
	engine   *Engine
	resolver *mockResolver
	builder  *mockBuilder
	executor *mockExecutor
	scorer   *reputation.Scorer
}

func newFixture(cfg *model.CopyTradeConfig) *engineFixture {
	f := &engineFixture{
		resolver: &mockResolver{cfg: cfg},
		builder:  &mockBuilder{},
		executor: &mockExecutor{},
		scorer:   reputation.NewScorer(),
	}
	f.engine = NewEngine(
		f.resolver,
		tradecfg.NewValidator(0.001, 100),
		reputation.NewRiskGate(),
		f.scorer,
		&mockPortfolios{stats: &model.PortfolioStats{}},
		f.builder,
		f.executor,
	)
	return f
}

func activeConfig() *model.CopyTradeConfig {
	return &model.CopyTradeConfig{
		WalletAddress:   "trader1",
		BuyStrategy:     model.BuyStrategyExact,
		MinOrderSize:    0.1,
		TotalAllocation: 10,
		MinBuyThreshold: 0.1,
		MaxTokenAmount:  10,
		PriorityFeeMode: model.FeeModeAuto,
		IsActive:        true,
	}
}

func buySignal(amount float64) *model.TradeSignal {
	return &model.TradeSignal{
		SourceWallet: "trader1",
		TokenAddress: "token1",
		Side:         model.SideBuy,
		Amount:       amount,
		Price:        1,
	}
}

// ---------------------------------------------------------------------------
// Engine tests
// ---------------------------------------------------------------------------

func TestHandleSignalExecutes(t *testing.T) {
	f := newFixture(activeConfig())

	err := f.engine.HandleSignal(context.Background(), buySignal(2))
	require.NoError(t, err)
	assert.Equal(t, 1, f.executor.calls)
	require.Len(t, f.builder.amounts, 1)
	assert.Equal(t, 2.0, f.builder.amounts[0])
}

func TestHandleSignalValidationRejectionSkipsExecution(t *testing.T) {
	f := newFixture(activeConfig())

	err := f.engine.HandleSignal(context.Background(), buySignal(0.05))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade rejected")
	assert.Equal(t, 0, f.executor.calls)
}

func TestHandleSignalRiskRejectionSkipsExecution(t *testing.T) {
	f := newFixture(activeConfig())
	f.engine.portfolios = &mockPortfolios{stats: &model.PortfolioStats{Volatility: 0.9}}

	err := f.engine.HandleSignal(context.Background(), buySignal(2))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "trade rejected")
	assert.Equal(t, 0, f.executor.calls)
}

func TestHandleSignalResolverErrorPropagates(t *testing.T) {
	f := newFixture(nil)
	f.resolver.err = tradecfg.ErrConfigNotFound

	err := f.engine.HandleSignal(context.Background(), buySignal(2))
	require.Error(t, err)
	assert.Equal(t, 0, f.executor.calls)
}

func TestHandleSignalPercentageSizing(t *testing.T) {
	cfg := activeConfig()
	cfg.BuyStrategy = model.BuyStrategyPercentage
	cfg.CopyPercentage = 50
	f := newFixture(cfg)

	err := f.engine.HandleSignal(context.Background(), buySignal(4))
	require.NoError(t, err)
	require.Len(t, f.builder.amounts, 1)
	assert.Equal(t, 2.0, f.builder.amounts[0])
}

func TestHandleSignalSizingCappedByAllocation(t *testing.T) {
	cfg := activeConfig()
	cfg.TotalAllocation = 1.5
	f := newFixture(cfg)

	err := f.engine.HandleSignal(context.Background(), buySignal(2))
	require.NoError(t, err)
	require.Len(t, f.builder.amounts, 1)
	assert.Equal(t, 1.5, f.builder.amounts[0])
}

func TestHandleSignalPercentageDefaultsToFullCopy(t *testing.T) {
	cfg := activeConfig()
	cfg.BuyStrategy = model.BuyStrategyPercentage
	cfg.CopyPercentage = 0
	f := newFixture(cfg)

	err := f.engine.HandleSignal(context.Background(), buySignal(3))
	require.NoError(t, err)
	require.Len(t, f.builder.amounts, 1)
	assert.Equal(t, 3.0, f.builder.amounts[0])
}

func TestHandleSignalRecordsOutcomeInScorer(t *testing.T) {
	f := newFixture(activeConfig())

	require.NoError(t, f.engine.HandleSignal(context.Background(), buySignal(2)))

	f.executor.err = fmt.Errorf("retries exhausted")
	require.Error(t, f.engine.HandleSignal(context.Background(), buySignal(2)))

	// one success of two trades: half the 30% win-rate weight
	assert.Equal(t, int64(35), f.scorer.Reputation("trader1"))
}

func TestHandleSignalBuilderErrorSkipsExecution(t *testing.T) {
	f := newFixture(activeConfig())
	f.builder.err = fmt.Errorf("route unavailable")

	err := f.engine.HandleSignal(context.Background(), buySignal(2))
	require.Error(t, err)
	assert.Equal(t, 0, f.executor.calls)
}
