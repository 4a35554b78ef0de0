package dataset

import (
	"time"

	"token-strategy-lab/internal/domain"
)

// July2025AsOf is the exit date used when backtesting the July 2025 sample.
var July2025AsOf = time.Date(2025, 7, 31, 0, 0, 0, 0, time.UTC)

// July2025 returns the July 2025 sample of five scored assets.
//
// With 10,000 initial capital and the default policies this sample produces
// four winning trades and a final capital of about 39,714.63.
func July2025() []domain.AssetSnapshot {
	return []domain.AssetSnapshot{
		{Symbol: "REQ", Grade: 88.21, HoldingReturn: 3.7339, SignalsReturn: -0.8131, Trend: domain.TrendPositive},
		{Symbol: "CRV", Grade: 85, HoldingReturn: -0.9423, SignalsReturn: 6.8534, Trend: domain.TrendPositive},
		{Symbol: "GURU", Grade: 81.27, HoldingReturn: 1.4655, SignalsReturn: 2.8072, Trend: domain.TrendPositive},
		{Symbol: "ISLAND", Grade: 73.72, HoldingReturn: -0.8191, SignalsReturn: -0.0489, Trend: domain.TrendPositive},
		{Symbol: "SUAI", Grade: 72.41, HoldingReturn: 1.9017, SignalsReturn: 0.1487, Trend: domain.TrendPositive},
	}
}
