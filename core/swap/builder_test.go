package swap

import (
	"context"
	"encoding/binary"
	"testing"

	"github.com/gagliardetto/solana-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/whalesx/solana_copy_engine/core/model"
)

func TestNewTransferBuilderRejectsBadRouteAccount(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	_, err := NewTransferBuilder(payer, "not-a-pubkey")
	assert.Error(t, err)
}

func TestBuildEncodesTransfer(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	route := solana.NewWallet().PublicKey()

	builder, err := NewTransferBuilder(payer, route.String())
	require.NoError(t, err)

	signal := &model.TradeSignal{Side: model.SideBuy}
	cfg := &model.CopyTradeConfig{}

	instrs, err := builder.Build(context.Background(), signal, cfg, 1.5)
	require.NoError(t, err)
	require.Len(t, instrs, 1)

	instr := instrs[0]
	assert.Equal(t, solana.SystemProgramID, instr.ProgramID())

	data, err := instr.Data()
	require.NoError(t, err)
	require.Len(t, data, 12)
	assert.Equal(t, uint32(2), binary.LittleEndian.Uint32(data[0:4]))
	assert.Equal(t, uint64(1.5*float64(solana.LAMPORTS_PER_SOL)), binary.LittleEndian.Uint64(data[4:12]))

	accounts := instr.Accounts()
	require.Len(t, accounts, 2)
	assert.Equal(t, payer, accounts[0].PublicKey)
	assert.True(t, accounts[0].IsSigner)
	assert.Equal(t, route, accounts[1].PublicKey)
}

func TestBuildRejectsNonPositiveAmount(t *testing.T) {
	payer := solana.NewWallet().PublicKey()
	route := solana.NewWallet().PublicKey()
	builder, err := NewTransferBuilder(payer, route.String())
	require.NoError(t, err)

	_, err = builder.Build(context.Background(), &model.TradeSignal{}, &model.CopyTradeConfig{}, 0)
	assert.Error(t, err)
}
