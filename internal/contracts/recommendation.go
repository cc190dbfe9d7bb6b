package contracts

// Recommendation is one of five discrete labels derived from composite
// percentile via the policy's ordered threshold bands.
type Recommendation string

const (
	StrongBuy  Recommendation = "STRONG_BUY"
	Buy        Recommendation = "BUY"
	Hold       Recommendation = "HOLD"
	Sell       Recommendation = "SELL"
	StrongSell Recommendation = "STRONG_SELL"
)

// Valid reports whether r is one of the five known labels.
func (r Recommendation) Valid() bool {
	switch r {
	case StrongBuy, Buy, Hold, Sell, StrongSell:
		return true
	}
	return false
}

// String returns the wire representation.
func (r Recommendation) String() string { return string(r) }
