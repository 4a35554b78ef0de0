package domain

// TrendPositive is the Trend value marking a confirmed uptrend.
// Any other value (including the zero default) is read as not positive.
const TrendPositive = 1

// UnknownSymbol is used when a snapshot arrives without a symbol.
const UnknownSymbol = "UNKNOWN"

// AssetSnapshot is one scoring record for an asset over the evaluation window.
// Immutable input: strategies and the simulator never modify it.
type AssetSnapshot struct {
	Symbol        string  // asset identifier
	Grade         float64 // 0-100 quality score
	HoldingReturn float64 // fractional passive return (1.0 = +100%)
	SignalsReturn float64 // fractional return following trading signals
	Trend         int     // TrendPositive or other
}

// IsTrendPositive reports whether the snapshot is in a confirmed uptrend.
func (s AssetSnapshot) IsTrendPositive() bool {
	return s.Trend == TrendPositive
}
