package quality

import "math"

// Tier is the coarse health of a score used for badge icons and progress bars.
type Tier string

const (
	TierHealthy      Tier = "healthy"
	TierWarning      Tier = "warning"
	TierFailing      Tier = "failing"
	TierNotProcessed Tier = "not_processed"
)

// Indicator is the two-tier mapping (80/60). It is deliberately separate from
// the five-band labels.
type Indicator struct {
	Tier   Tier
	Symbol string
	// Percent is the clamped score, zero when not processed.
	Percent float64
}

// IndicatorOf returns the badge indicator for score.
func IndicatorOf(score *float64) Indicator {
	if score == nil || math.IsNaN(*score) {
		return Indicator{Tier: TierNotProcessed, Symbol: "?"}
	}
	s := clamp(*score)
	switch {
	case s >= 80:
		return Indicator{Tier: TierHealthy, Symbol: "✔", Percent: s}
	case s >= 60:
		return Indicator{Tier: TierWarning, Symbol: "⚠", Percent: s}
	default:
		return Indicator{Tier: TierFailing, Symbol: "✖", Percent: s}
	}
}

// Label is the text shown next to the indicator.
func (i Indicator) Label() string {
	if i.Tier == TierNotProcessed {
		return "Not Processed"
	}
	return string(i.Tier)
}
