package swap

import (
	"context"
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"github.com/whalesx/solana_copy_engine/core/model"
)

// system program transfer instruction index
const transferInstructionIndex = 2

// TransferBuilder encodes the sized order as a native transfer to the
// execution venue's route account. DEX routing plugs in behind the same
// builder interface without touching the engine.
type TransferBuilder struct {
	payer solana.PublicKey
	route solana.PublicKey
}

func NewTransferBuilder(payer solana.PublicKey, routeAccount string) (*TransferBuilder, error) {
	route, err := solana.PublicKeyFromBase58(routeAccount)
	if err != nil {
		return nil, fmt.Errorf("parse route account failed, %v", err)
	}

	return &TransferBuilder{
		payer: payer,
		route: route,
	}, nil
}

func (b *TransferBuilder) Build(ctx context.Context, signal *model.TradeSignal, cfg *model.CopyTradeConfig, amount float64) ([]solana.Instruction, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("order amount %v must be positive", amount)
	}

	lamports := uint64(amount * float64(solana.LAMPORTS_PER_SOL))
	if lamports == 0 {
		return nil, fmt.Errorf("order amount %v below one lamport", amount)
	}

	data := make([]byte, 12)
	binary.LittleEndian.PutUint32(data[0:4], transferInstructionIndex)
	binary.LittleEndian.PutUint64(data[4:12], lamports)

	instr := solana.NewInstruction(
		solana.SystemProgramID,
		solana.AccountMetaSlice{
			solana.NewAccountMeta(b.payer, true, true),
			solana.NewAccountMeta(b.route, true, false),
		},
		data,
	)

	return []solana.Instruction{instr}, nil
}
