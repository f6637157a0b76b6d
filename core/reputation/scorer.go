package reputation

import (
	"math"
	"sort"
	"sync"

	"github.com/whalesx/solana_copy_engine/core/model"
)

// RankedTrader is one row of the leaderboard.
type RankedTrader struct {
	WalletAddress string `json:"wallet_address"`
	Score         int64  `json:"score"`
	Followers     int64  `json:"followers"`
}

// Scorer keeps per-trader performance metrics and derives a bounded
// reputation score from them. Metrics are mutated incrementally and never
// deleted.
type Scorer struct {
	mu      sync.RWMutex
	metrics map[string]*model.TraderMetrics
}

func NewScorer() *Scorer {
	return &Scorer{metrics: make(map[string]*model.TraderMetrics)}
}

// MetricsPatch carries the metric fields an update wants to change. A nil
// field keeps the stored value.
type MetricsPatch struct {
	SuccessfulTrades *int64
	TotalTrades      *int64
	AverageROI       *float64
	RiskScore        *float64
	ConsistencyScore *float64
	Followers        *int64
}

// UpdateMetrics merges patch into the stored metrics for wallet, creating
// them first when the wallet is unknown.
func (s *Scorer) UpdateMetrics(wallet string, patch MetricsPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[wallet]
	if !ok {
		m = &model.TraderMetrics{}
		s.metrics[wallet] = m
	}

	if patch.SuccessfulTrades != nil {
		m.SuccessfulTrades = *patch.SuccessfulTrades
	}
	if patch.TotalTrades != nil {
		m.TotalTrades = *patch.TotalTrades
	}
	if patch.AverageROI != nil {
		m.AverageROI = *patch.AverageROI
	}
	if patch.RiskScore != nil {
		m.RiskScore = *patch.RiskScore
	}
	if patch.ConsistencyScore != nil {
		m.ConsistencyScore = *patch.ConsistencyScore
	}
	if patch.Followers != nil {
		m.Followers = *patch.Followers
	}
}

// RecordTrade folds one observed trade outcome into the wallet's counters.
func (s *Scorer) RecordTrade(wallet string, success bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[wallet]
	if !ok {
		m = &model.TraderMetrics{}
		s.metrics[wallet] = m
	}

	m.TotalTrades++
	if success {
		m.SuccessfulTrades++
	}
}

func (s *Scorer) Follow(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[wallet]
	if !ok {
		m = &model.TraderMetrics{}
		s.metrics[wallet] = m
	}

	m.Followers++
}

func (s *Scorer) Unfollow(wallet string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.metrics[wallet]
	if ok && m.Followers > 0 {
		m.Followers--
	}
}

// Reputation scores wallet in [0, 100]. A wallet with no recorded metrics
// scores 0.
func (s *Scorer) Reputation(wallet string) int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.metrics[wallet]
	if !ok {
		return 0
	}

	return score(m)
}

// Rank returns the top traders by score, ties broken by wallet address.
func (s *Scorer) Rank(limit int) []RankedTrader {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ranked := make([]RankedTrader, 0, len(s.metrics))
	for wallet, m := range s.metrics {
		ranked = append(ranked, RankedTrader{
			WalletAddress: wallet,
			Score:         score(m),
			Followers:     m.Followers,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].WalletAddress < ranked[j].WalletAddress
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}

	return ranked
}

// score is the weighted reputation formula: win rate 30%, ROI ratio 30%,
// inverse risk 20%, consistency 10%, follower ratio 10%.
func score(m *model.TraderMetrics) int64 {
	var winRate float64
	if m.TotalTrades > 0 {
		winRate = float64(m.SuccessfulTrades) / float64(m.TotalTrades)
	}

	roiRatio := clamp01(m.AverageROI / 100)
	inverseRisk := clamp01(1 - m.RiskScore/100)
	consistency := clamp01(m.ConsistencyScore)
	followerRatio := clamp01(float64(m.Followers) / 1000)

	total := 0.3*winRate + 0.3*roiRatio + 0.2*inverseRisk + 0.1*consistency + 0.1*followerRatio

	scored := int64(math.Round(total * 100))
	if scored < 0 {
		return 0
	}
	if scored > 100 {
		return 100
	}
	return scored
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
