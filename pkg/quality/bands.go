// Package quality maps 0-100 quality scores to display bands.
package quality

import (
	"math"
	"strings"
)

// Band is a labelled range of quality scores. Min is the inclusive lower bound.
type Band struct {
	Label string
	Class string
	Min   float64
}

var (
	Critical  = Band{Label: "Critical", Class: "critical", Min: 0}
	Poor      = Band{Label: "Poor", Class: "poor", Min: 60}
	Fair      = Band{Label: "Fair", Class: "fair", Min: 70}
	Good      = Band{Label: "Good", Class: "good", Min: 80}
	Excellent = Band{Label: "Excellent", Class: "excellent", Min: 90}

	// Unknown is returned for sources the pipeline has not scored. It is not
	// one of Bands and its Min is meaningless.
	Unknown = Band{Label: "Unknown", Class: "unknown"}
)

// ordered lowest threshold first
var bands = []Band{Critical, Poor, Fair, Good, Excellent}

// Bands returns the numeric bands ordered by threshold.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// BandOf returns the band containing score. A score equal to a boundary
// belongs to the higher band. Scores outside [0,100] are clamped.
func BandOf(score *float64) Band {
	if score == nil || math.IsNaN(*score) {
		return Unknown
	}
	s := clamp(*score)
	for i := len(bands) - 1; i > 0; i-- {
		if s >= bands[i].Min {
			return bands[i]
		}
	}
	return bands[0]
}

// BandForLevel maps a server quality_level label to its band.
func BandForLevel(level *string) Band {
	if level == nil {
		return Unknown
	}
	want := strings.ToLower(strings.TrimSpace(*level))
	for _, b := range bands {
		if b.Class == want {
			return b
		}
	}
	return Unknown
}

// IsUnknown reports whether b is the not-scored band.
func (b Band) IsUnknown() bool {
	return b.Class == Unknown.Class
}

func clamp(s float64) float64 {
	return math.Max(0, math.Min(100, s))
}
