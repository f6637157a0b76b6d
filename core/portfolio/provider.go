package portfolio

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/whalesx/solana_copy_engine/core/model"
	"github.com/whalesx/solana_copy_engine/core/redis"
	"github.com/whalesx/solana_copy_engine/utils/logger"
)

const portfolioKeyPrefix = "copytrade:portfolio:"

// RedisProvider reads the portfolio snapshot the dashboard layer publishes
// per wallet. A missing snapshot resolves to empty stats, which the risk
// gate treats as an unconstrained portfolio.
type RedisProvider struct{}

func NewRedisProvider() *RedisProvider {
	return &RedisProvider{}
}

func (p *RedisProvider) Portfolio(ctx context.Context, wallet string) (*model.PortfolioStats, error) {
	raw, err := redis.Get(ctx, portfolioKeyPrefix+wallet)
	if err == redis.Nil {
		logger.Logrus.WithFields(logrus.Fields{"Wallet": wallet}).Debug("RedisProvider portfolio snapshot missing")

		return &model.PortfolioStats{}, nil
	} else if err != nil {
		return nil, err
	}

	var stats model.PortfolioStats
	err = json.Unmarshal([]byte(raw), &stats)
	if err != nil {
		return nil, fmt.Errorf("unmarshal portfolio snapshot failed, %v", err)
	}

	return &stats, nil
}
