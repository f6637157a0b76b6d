package tradecfg

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/redis"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

// ErrConfigInactive reports a stored configuration the owner has switched off.
var ErrConfigInactive = errors.New("copy trade config is inactive")

type Cache interface {
	Get(ctx context.Context, wallet string) (*model.CopyTradeConfig, error)
	Set(ctx context.Context, cfg *model.CopyTradeConfig) error
	Delete(ctx context.Context, wallet string) error
}

type ConfigStore interface {
	Save(ctx context.Context, cfg *model.CopyTradeConfig) error
	GetByWallet(ctx context.Context, wallet string) (*model.CopyTradeConfig, error)
}

// Resolver fronts the durable store with the redis mirror. Cache failures
// degrade to the store, they never block a trade on their own.
type Resolver struct {
	cache     Cache
	store     ConfigStore
	validator *Validator
}

func NewResolver(cache Cache, store ConfigStore, validator *Validator) *Resolver {
	return &Resolver{
		cache:     cache,
		store:     store,
		validator: validator,
	}
}

// Resolve returns the active configuration for wallet, populating the cache
// on a store hit. Inactive configs resolve to ErrConfigInactive.
func (r *Resolver) Resolve(ctx context.Context, wallet string) (*model.CopyTradeConfig, error) {
	cfg, err := r.cache.Get(ctx, wallet)
	if err == nil {
		return cfg, nil
	}
	if err != redis.Nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "ErrMsg": err}).Warn("Resolver read config cache failed")
	}

	cfg, err = r.store.GetByWallet(ctx, wallet)
	if err != nil {
		return nil, err
	}

	if !cfg.IsActive {
		return nil, ErrConfigInactive
	}

	err = r.cache.Set(ctx, cfg)
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet, "ErrMsg": err}).Warn("Resolver populate config cache failed")
	}

	return cfg, nil
}

// SaveConfig validates and persists cfg, then keeps the cache coherent:
// active configs are mirrored, inactive ones evicted.
func (r *Resolver) SaveConfig(ctx context.Context, cfg *model.CopyTradeConfig) error {
	err := r.validator.ValidateConfig(cfg)
	if err != nil {
		return err
	}

	err = r.store.Save(ctx, cfg)
	if err != nil {
		return err
	}

	if cfg.IsActive {
		err = r.cache.Set(ctx, cfg)
	} else {
		err = r.cache.Delete(ctx, cfg.WalletAddress)
	}
	if err != nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": cfg.WalletAddress, "ErrMsg": err}).Warn("Resolver sync config cache failed")
	}

	return nil
}
