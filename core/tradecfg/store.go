package tradecfg

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/whalesx/solana_copy_engine/core/db"
	"github.com/whalesx/solana_copy_engine/core/model"
)

// ErrConfigNotFound reports a wallet with no stored configuration.
var ErrConfigNotFound = errors.New("copy trade config not found")

// Store is the durable side of the config cache. One row per wallet.
type Store struct{}

func NewStore() *Store {
	return &Store{}
}

func (s *Store) Save(ctx context.Context, cfg *model.CopyTradeConfig) error {
	now := time.Now()
	cfg.CreateAt = now
	cfg.UpdateAt = now

	_, err := db.GetDB().NewInsert().
		Model(cfg).
		On("CONFLICT (wallet_address) DO UPDATE").
		Set("trade_name = EXCLUDED.trade_name").
		Set("buy_strategy = EXCLUDED.buy_strategy").
		Set("copy_percentage = EXCLUDED.copy_percentage").
		Set("min_order_size = EXCLUDED.min_order_size").
		Set("total_allocation = EXCLUDED.total_allocation").
		Set("stop_loss_percentage = EXCLUDED.stop_loss_percentage").
		Set("exit_strategies = EXCLUDED.exit_strategies").
		Set("min_buy_threshold = EXCLUDED.min_buy_threshold").
		Set("max_token_amount = EXCLUDED.max_token_amount").
		Set("priority_fee_mode = EXCLUDED.priority_fee_mode").
		Set("custom_priority_fee = EXCLUDED.custom_priority_fee").
		Set("bribery_amount = EXCLUDED.bribery_amount").
		Set("is_active = EXCLUDED.is_active").
		Set("update_at = EXCLUDED.update_at").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("save copy trade config failed, %v", err)
	}

	return nil
}

func (s *Store) GetByWallet(ctx context.Context, wallet string) (*model.CopyTradeConfig, error) {
	var cfg model.CopyTradeConfig
	err := db.GetDB().NewSelect().
		Model(&cfg).
		Where("wallet_address = ?", wallet).
		Scan(ctx)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrConfigNotFound
	} else if err != nil {
		return nil, fmt.Errorf("query copy trade config failed, %v", err)
	}

	return &cfg, nil
}

func (s *Store) ListAll(ctx context.Context) ([]model.CopyTradeConfig, error) {
	var configs []model.CopyTradeConfig
	err := db.GetDB().NewSelect().
		Model(&configs).
		Order("wallet_address ASC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("list copy trade configs failed, %v", err)
	}

	return configs, nil
}

func (s *Store) HistoryByWallet(ctx context.Context, wallet string, limit int) ([]model.TradeHistoryRecord, error) {
	if limit <= 0 {
		limit = 100
	}

	var records []model.TradeHistoryRecord
	err := db.GetDB().NewSelect().
		Model(&records).
		Where("wallet_address = ?", wallet).
		Order("timestamp DESC").
		Limit(limit).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("query trade history failed, %v", err)
	}

	return records, nil
}
