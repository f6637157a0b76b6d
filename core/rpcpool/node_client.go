package rpcpool

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/rpc"
)

// Endpoint is the health snapshot of one backend node. Endpoints are only
// ever marked unhealthy, never removed from the pool.
type Endpoint struct {
	URL          string  `json:"url"`
	WebsocketURL string  `json:"websocket_url"`
	Healthy      bool    `json:"healthy"`
	LatencyMs    float64 `json:"latency_ms"`
}

type ConfirmStatus struct {
	Confirmed bool
	ExecErr   interface{}
}

// NodeClient is the narrow RPC surface the engine needs from one endpoint.
// Every call carries a context and is independently timeoutable.
type NodeClient interface {
	Health(ctx context.Context) error
	Slot(ctx context.Context) (uint64, error)
	LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error)
	SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error)
	SignatureStatus(ctx context.Context, sig solana.Signature) (*ConfirmStatus, error)
	RecentPriorityFees(ctx context.Context) ([]uint64, error)
}

type ClientFactory func(url string) NodeClient

type solanaClient struct {
	cli *rpc.Client
}

func NewSolanaClientFactory() ClientFactory {
	return func(url string) NodeClient {
		return &solanaClient{cli: rpc.New(url)}
	}
}

func (c *solanaClient) Health(ctx context.Context) error {
	out, err := c.cli.GetHealth(ctx)
	if err != nil {
		return err
	}

	if out != rpc.HealthOk {
		return fmt.Errorf("node health %s", out)
	}
	return nil
}

func (c *solanaClient) Slot(ctx context.Context) (uint64, error) {
	return c.cli.GetSlot(ctx, rpc.CommitmentProcessed)
}

func (c *solanaClient) LatestBlockhash(ctx context.Context) (solana.Hash, uint64, error) {
	res, err := c.cli.GetLatestBlockhash(ctx, rpc.CommitmentProcessed)
	if err != nil {
		return solana.Hash{}, 0, err
	}

	return res.Value.Blockhash, res.Value.LastValidBlockHeight, nil
}

func (c *solanaClient) SendTransaction(ctx context.Context, tx *solana.Transaction) (solana.Signature, error) {
	return c.cli.SendTransactionWithOpts(ctx, tx, rpc.TransactionOpts{
		SkipPreflight:       true,
		PreflightCommitment: rpc.CommitmentProcessed,
	})
}

func (c *solanaClient) SignatureStatus(ctx context.Context, sig solana.Signature) (*ConfirmStatus, error) {
	statuses, err := c.cli.GetSignatureStatuses(ctx, true, sig)
	if err != nil {
		return nil, err
	}

	if statuses == nil || len(statuses.Value) == 0 || statuses.Value[0] == nil {
		return &ConfirmStatus{}, nil
	}

	status := statuses.Value[0]
	if status.Err != nil {
		return &ConfirmStatus{ExecErr: status.Err}, nil
	}

	confirmed := status.ConfirmationStatus == rpc.ConfirmationStatusConfirmed ||
		status.ConfirmationStatus == rpc.ConfirmationStatusFinalized
	return &ConfirmStatus{Confirmed: confirmed}, nil
}

func (c *solanaClient) RecentPriorityFees(ctx context.Context) ([]uint64, error) {
	fees, err := c.cli.GetRecentPrioritizationFees(ctx, nil)
	if err != nil {
		return nil, err
	}

	samples := make([]uint64, 0, len(fees))
	for _, fee := range fees {
		samples = append(samples, fee.PrioritizationFee)
	}
	return samples, nil
}
