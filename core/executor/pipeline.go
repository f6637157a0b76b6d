package executor

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/fees"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/rpcpool"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// ErrRetriesExhausted wraps the last attempt error once every retry has been
// spent.
var ErrRetriesExhausted = errors.New("transaction retries exhausted")

// EndpointSelector picks the node a submission attempt should go through.
type EndpointSelector interface {
	SelectOptimal(ctx context.Context) (rpcpool.Endpoint, rpcpool.NodeClient)
}

// HistorySink receives exactly one terminal record per executed job.
type HistorySink interface {
	Record(ctx context.Context, rec *model.TradeHistoryRecord) error
}

type PipelineConfig struct {
	MaxRetries     int
	ConfirmTimeout time.Duration
	ConfirmPoll    time.Duration

	// RPCTimeout bounds every single node call; a stalled node fails the
	// attempt instead of hanging the job.
	RPCTimeout time.Duration

	// Backoff returns the wait before the given retry attempt. Left nil it
	// falls back to exponential seconds.
	Backoff func(attempt int) time.Duration
}

// Pipeline drives a transaction job from pending to confirmed or failed.
// Each attempt re-selects the endpoint, recomputes the fee profile and
// fetches a fresh blockhash, so a stalled node never poisons the retry.
type Pipeline struct {
	selector EndpointSelector
	fees     *fees.Optimizer
	signer   Signer
	history  HistorySink

	maxRetries     int
	confirmTimeout time.Duration
	confirmPoll    time.Duration
	rpcTimeout     time.Duration
	backoff        func(attempt int) time.Duration
}

func NewPipeline(selector EndpointSelector, optimizer *fees.Optimizer, signer Signer, history HistorySink, cfg PipelineConfig) *Pipeline {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 20 * time.Second
	}
	if cfg.ConfirmPoll <= 0 {
		cfg.ConfirmPoll = 400 * time.Millisecond
	}
	if cfg.RPCTimeout <= 0 {
		cfg.RPCTimeout = 2 * time.Second
	}
	if cfg.Backoff == nil {
		cfg.Backoff = func(attempt int) time.Duration {
			return time.Duration(1<<uint(attempt)) * time.Second
		}
	}

	return &Pipeline{
		selector:       selector,
		fees:           optimizer,
		signer:         signer,
		history:        history,
		maxRetries:     cfg.MaxRetries,
		confirmTimeout: cfg.ConfirmTimeout,
		confirmPoll:    cfg.ConfirmPoll,
		rpcTimeout:     cfg.RPCTimeout,
		backoff:        cfg.Backoff,
	}
}

// Execute runs job to a terminal state and records it once. The returned
// signature is the confirmed one; on failure it is zero and the error wraps
// ErrRetriesExhausted.
func (p *Pipeline) Execute(ctx context.Context, job *model.TransactionJob, cfg *model.CopyTradeConfig) (solana.Signature, error) {
	var lastErr error
	for attempt := 0; attempt < p.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				job.Status = model.JobStatusFailed
				p.record(ctx, job, solana.Signature{}, lastErr)
				return solana.Signature{}, fmt.Errorf("%w, %v", ErrRetriesExhausted, lastErr)
			case <-time.After(p.backoff(attempt)):
			}
		}

		job.Status = model.JobStatusPending
		job.RetryCount = attempt

		sig, err := p.attempt(ctx, job, cfg)
		if err != nil {
			lastErr = err
			logger.Logrus.WithFields(logrus.Fields{"Wallet": job.WalletAddress, "Attempt": attempt, "ErrMsg": err}).Warn("Pipeline execute attempt failed")

			continue
		}

		job.Status = model.JobStatusConfirmed
		p.record(ctx, job, sig, nil)

		logger.Logrus.WithFields(logrus.Fields{"Wallet": job.WalletAddress, "Signature": sig.String(), "Attempt": attempt}).Info("Pipeline execute transaction success")

		return sig, nil
	}

	job.Status = model.JobStatusFailed
	p.record(ctx, job, solana.Signature{}, lastErr)

	return solana.Signature{}, fmt.Errorf("%w, %v", ErrRetriesExhausted, lastErr)
}

func (p *Pipeline) attempt(ctx context.Context, job *model.TransactionJob, cfg *model.CopyTradeConfig) (solana.Signature, error) {
	endpoint, client := p.selector.SelectOptimal(ctx)

	feeCtx, cancelFee := context.WithTimeout(ctx, p.rpcTimeout)
	profile := p.fees.Compute(feeCtx, client, cfg)
	cancelFee()
	job.PriorityFeeMicroLamports = profile.MicroLamports
	job.ComputeUnitLimit = profile.ComputeUnitLimit

	hashCtx, cancelHash := context.WithTimeout(ctx, p.rpcTimeout)
	blockhash, _, err := client.LatestBlockhash(hashCtx)
	cancelHash()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("fetch latest blockhash failed, %v", err)
	}

	instrs := make([]solana.Instruction, 0, len(job.Instructions)+2)
	instrs = append(instrs, fees.BudgetInstructions(profile)...)
	instrs = append(instrs, job.Instructions...)

	tx, err := solana.NewTransaction(instrs, blockhash, solana.TransactionPayer(p.signer.PublicKey()))
	if err != nil {
		return solana.Signature{}, fmt.Errorf("build transaction failed, %v", err)
	}

	err = p.signer.Sign(tx)
	if err != nil {
		return solana.Signature{}, err
	}

	sendCtx, cancelSend := context.WithTimeout(ctx, p.rpcTimeout)
	sig, err := client.SendTransaction(sendCtx, tx)
	cancelSend()
	if err != nil {
		return solana.Signature{}, fmt.Errorf("send transaction failed, %v", err)
	}

	job.Status = model.JobStatusSubmitted

	logger.Logrus.WithFields(logrus.Fields{"Endpoint": endpoint.URL, "Signature": sig.String(), "Fee": profile.MicroLamports}).Info("Pipeline submit transaction success")

	err = p.awaitConfirm(ctx, client, sig)
	if err != nil {
		return solana.Signature{}, err
	}

	return sig, nil
}

func (p *Pipeline) awaitConfirm(ctx context.Context, client rpcpool.NodeClient, sig solana.Signature) error {
	deadline := time.NewTimer(p.confirmTimeout)
	defer deadline.Stop()

	ticker := time.NewTicker(p.confirmPoll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("confirm %s timeout", sig)
		case <-ticker.C:
			pollCtx, cancelPoll := context.WithTimeout(ctx, p.rpcTimeout)
			status, err := client.SignatureStatus(pollCtx, sig)
			cancelPoll()
			if err != nil {
				logger.Logrus.WithFields(logrus.Fields{"Signature": sig.String(), "ErrMsg": err}).Warn("Pipeline poll signature status failed")

				continue
			}

			if status.ExecErr != nil {
				return fmt.Errorf("transaction %s failed on chain, %v", sig, status.ExecErr)
			}

			if status.Confirmed {
				return nil
			}
		}
	}
}

// record writes the terminal history row on a detached context so a cancelled
// caller cannot lose it.
func (p *Pipeline) record(_ context.Context, job *model.TransactionJob, sig solana.Signature, execErr error) {
	if p.history == nil {
		return
	}

	rec := &model.TradeHistoryRecord{
		WalletAddress: job.WalletAddress,
		Status:        model.HistoryStatusSuccess,
		Timestamp:     time.Now(),
	}
	if sig != (solana.Signature{}) {
		rec.Signature = sig.String()
	}
	if execErr != nil {
		rec.Status = model.HistoryStatusFailed
		rec.ErrMsg = execErr.Error()
	}

	recCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := p.history.Record(recCtx, rec)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Data": rec, "ErrMsg": err}).Error("Pipeline record trade history failed")
	}
}
