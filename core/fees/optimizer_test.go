package fees

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/rpcpool"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

func TestMain(m *testing.M) {
	logger.Init(filepath.Join(os.TempDir(), "fees_test.log"))
	os.Exit(m.Run())
}

type mockFeeNode struct {
	fees []uint64
	err  error
}

func (m *mockFeeNode) Health(ctx context.Context) error { return nil }
func (m *mockFeeNode) Slot(ctx context.Context) (uint64, error) {
	return 0, nil
}
func (m *mockFeeNode) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	return solana.Hash{}, 0, nil
}
func (m *mockFeeNode) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return solana.Signature{}, nil
}
func (m *mockFeeNode) SignatureStatus(ctx context.Context, sig solana.Signature) (*rpcpool.ConfirmStatus, error) {
	return &rpcpool.ConfirmStatus{}, nil
}
func (m *mockFeeNode) RecentPriorityFees(ctx context.Context) ([]uint64, error) {
	return m.fees, m.err
}

const (
	testFeeCap = uint64(1_000_000)
	testCUCap  = uint32(1_400_000)
)

func TestComputeManualMode(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{
		PriorityFeeMode:   model.FeeModeManual,
		CustomPriorityFee: 50_000,
	}

	profile := opt.Compute(context.Background(), &mockFeeNode{}, cfg)
	assert.Equal(t, uint64(50_000), profile.MicroLamports)
	assert.Equal(t, testCUCap, profile.ComputeUnitLimit)
}

func TestComputeManualModeClampedToCap(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{
		PriorityFeeMode:   model.FeeModeManual,
		CustomPriorityFee: 5_000_000,
	}

	profile := opt.Compute(context.Background(), &mockFeeNode{}, cfg)
	assert.Equal(t, testFeeCap, profile.MicroLamports)
}

func TestComputeBriberyMode(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{
		PriorityFeeMode: model.FeeModeBribery,
		BriberyAmount:   200_000,
	}

	profile := opt.Compute(context.Background(), &mockFeeNode{}, cfg)
	assert.Equal(t, uint64(200_000), profile.MicroLamports)
}

func TestComputeAutoModeEmptySamples(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}

	profile := opt.Compute(context.Background(), &mockFeeNode{fees: nil}, cfg)
	assert.Equal(t, testFeeCap/2, profile.MicroLamports)
}

func TestComputeAutoModeFetchError(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}
	node := &mockFeeNode{err: fmt.Errorf("rpc unavailable")}

	profile := opt.Compute(context.Background(), node, cfg)
	assert.Equal(t, testFeeCap/2, profile.MicroLamports)
}

func TestComputeAutoModePercentileWithMargin(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}

	// samples 1..100 descending-sorted: index 10 is 90, plus 20% margin
	samples := make([]uint64, 0, 100)
	for i := uint64(1); i <= 100; i++ {
		samples = append(samples, i)
	}
	node := &mockFeeNode{fees: samples}

	profile := opt.Compute(context.Background(), node, cfg)
	assert.Equal(t, uint64(108), profile.MicroLamports)
}

func TestComputeAutoModeNeverExceedsCap(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}

	node := &mockFeeNode{fees: []uint64{10_000_000, 9_000_000, 8_000_000}}

	profile := opt.Compute(context.Background(), node, cfg)
	assert.Equal(t, testFeeCap, profile.MicroLamports)
}

func TestComputeAutoModeFewSamplesUsesHighest(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}

	node := &mockFeeNode{fees: []uint64{100, 500, 300}}

	// fewer than ten samples resolve to the highest one plus margin
	profile := opt.Compute(context.Background(), node, cfg)
	assert.Equal(t, uint64(600), profile.MicroLamports)
}

func TestComputeAutoModeMarginRoundsUp(t *testing.T) {
	opt := NewOptimizer(testFeeCap, testCUCap)
	cfg := &model.CopyTradeConfig{PriorityFeeMode: model.FeeModeAuto}

	// base 91: 20% of it is 18.2, rounded up to 19
	node := &mockFeeNode{fees: []uint64{91, 40, 10}}

	profile := opt.Compute(context.Background(), node, cfg)
	assert.Equal(t, uint64(110), profile.MicroLamports)
}

func TestBudgetInstructionsPairsPriceThenLimit(t *testing.T) {
	profile := Profile{MicroLamports: 1_000, ComputeUnitLimit: 200_000}

	instrs := BudgetInstructions(profile)
	require.Len(t, instrs, 2)
	assert.Equal(t, computebudget.ProgramID, instrs[0].ProgramID())
	assert.Equal(t, computebudget.ProgramID, instrs[1].ProgramID())
}
