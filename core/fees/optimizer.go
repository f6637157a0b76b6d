package fees

import (
	"context"
	"sort"

	"github.com/gagliardetto/solana-go"
	computebudget "github.com/gagliardetto/solana-go/programs/compute-budget"
	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/rpcpool"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// Profile is the fee decision for one submission attempt.
type Profile struct {
	MicroLamports    uint64
	ComputeUnitLimit uint32
}

// Optimizer turns a configured fee mode into a priority fee and a compute
// unit ceiling, both bounded by hard caps.
type Optimizer struct {
	maxPriorityFeeMicro uint64
	maxComputeUnits     uint32
}

func NewOptimizer(maxPriorityFeeMicro uint64, maxComputeUnits uint32) *Optimizer {
	return &Optimizer{
		maxPriorityFeeMicro: maxPriorityFeeMicro,
		maxComputeUnits:     maxComputeUnits,
	}
}

// Compute resolves the fee profile for cfg. Auto mode samples recent network
// prioritization fees through client; manual and bribery modes take the
// configured value. Every mode is clamped to the hard cap.
func (o *Optimizer) Compute(ctx context.Context, client rpcpool.NodeClient, cfg *model.CopyTradeConfig) Profile {
	profile := Profile{ComputeUnitLimit: o.maxComputeUnits}

	switch cfg.PriorityFeeMode {
	case model.FeeModeManual:
		profile.MicroLamports = o.clamp(cfg.CustomPriorityFee)
	case model.FeeModeBribery:
		profile.MicroLamports = o.clamp(cfg.BriberyAmount)
	default:
		profile.MicroLamports = o.autoFee(ctx, client)
	}

	return profile
}

// autoFee takes the 90th percentile of recent samples plus a 20% margin.
// The percentile and margin are policy constants, not correctness
// properties; see the trade config for the hard cap.
func (o *Optimizer) autoFee(ctx context.Context, client rpcpool.NodeClient) uint64 {
	samples, err := client.RecentPriorityFees(ctx)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"ErrMsg": err}).Warn("Optimizer fetch recent prioritization fees failed")

		return o.maxPriorityFeeMicro / 2
	}

	if len(samples) == 0 {
		return o.maxPriorityFeeMicro / 2
	}

	sorted := make([]uint64, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] > sorted[j] })

	idx := len(sorted) / 10
	base := sorted[idx]

	// 20% safety margin, rounded up
	withMargin := base + (base+4)/5
	return o.clamp(withMargin)
}

func (o *Optimizer) clamp(fee uint64) uint64 {
	if fee > o.maxPriorityFeeMicro {
		return o.maxPriorityFeeMicro
	}
	return fee
}

// BudgetInstructions builds the compute budget pair for profile. The caller
// must place them ahead of the payload instructions; the runtime applies a
// budget only to instructions that follow it.
func BudgetInstructions(profile Profile) []solana.Instruction {
	return []solana.Instruction{
		computebudget.NewSetComputeUnitPriceInstruction(profile.MicroLamports).Build(),
		computebudget.NewSetComputeUnitLimitInstruction(profile.ComputeUnitLimit).Build(),
	}
}
