package tradecfg

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/redis"
)

const configCacheKeyPrefix = "copytrade:config:"

// ConfigCache mirrors active configs in redis with a sliding time-to-live.
type ConfigCache struct {
	ttl time.Duration
}

func NewConfigCache(ttl time.Duration) *ConfigCache {
	return &ConfigCache{ttl: ttl}
}

func cacheKey(wallet string) string {
	return configCacheKeyPrefix + wallet
}

// Get returns redis.Nil when the wallet has no cached config. A hit refreshes
// the key's time-to-live.
func (c *ConfigCache) Get(ctx context.Context, wallet string) (*model.CopyTradeConfig, error) {
	key := cacheKey(wallet)

	raw, err := redis.Get(ctx, key)
	if err == redis.Nil {
		return nil, redis.Nil
	} else if err != nil {
		return nil, err
	}

	var cfg model.CopyTradeConfig
	err = json.Unmarshal([]byte(raw), &cfg)
	if err != nil {
		return nil, fmt.Errorf("unmarshal cached config failed, %v", err)
	}

	err = redis.Expire(ctx, key, c.ttl)
	if err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *ConfigCache) Set(ctx context.Context, cfg *model.CopyTradeConfig) error {
	bytes, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config failed, %v", err)
	}

	return redis.Set(ctx, cacheKey(cfg.WalletAddress), string(bytes), c.ttl)
}

func (c *ConfigCache) Delete(ctx context.Context, wallet string) error {
	return redis.Del(ctx, cacheKey(wallet))
}
