package sentiment

// Alert is the aggregated sentiment classification delivered to the partner
// of the speaker.
type Alert struct {
	AverageScore        float64 `json:"average_score"`
	MaxMagnitude        float64 `json:"max_magnitude"`
	Label               string  `json:"label"`
	Glyph               string  `json:"glyph"`
	Message             string  `json:"message"`
	MostNegativeMention string  `json:"most_negative_mention,omitempty"`
}

// MentionScore is one scored partner mention.
type MentionScore struct {
	Text      string
	Score     float64
	Magnitude float64
}

type tier struct {
	label   string
	glyph   string
	message string
}

var (
	tierSevere       = tier{"Severe", "😡", "Your partner is close to boiling over. Approach with real care."}
	tierDistressed   = tier{"Distressed", "😠", "Strong frustration, irritation or sadness may be present. Communicate gently."}
	tierLowMood      = tier{"Low mood", "😟", "Less anger than low spirits. Stay close and listen quietly."}
	tierMildFriction = tier{"Mild friction", "😐", "Something small may be bothering them. A little attention goes a long way."}
	tierStable       = tier{"Stable/positive", "😊", "Your partner seems in good spirits. A great time to connect."}
)

// Aggregate computes the magnitude-weighted average score and the maximum
// magnitude over the scored mentions, then classifies them into one of the
// five tiers. An empty input classifies as stable with zero scores.
func Aggregate(mentions []MentionScore) Alert {
	var totalWeight, weightedSum, maxMagnitude float64
	for _, m := range mentions {
		weightedSum += m.Score * m.Magnitude
		totalWeight += m.Magnitude
		if m.Magnitude > maxMagnitude {
			maxMagnitude = m.Magnitude
		}
	}

	avgScore := 0.0
	if totalWeight > 0 {
		avgScore = weightedSum / totalWeight
	}

	t := classify(avgScore, maxMagnitude)
	return Alert{
		AverageScore:        avgScore,
		MaxMagnitude:        maxMagnitude,
		Label:               t.label,
		Glyph:               t.glyph,
		Message:             t.message,
		MostNegativeMention: mostNegative(mentions),
	}
}

// classify applies the five-tier thresholds in precedence order.
func classify(avgScore, maxMagnitude float64) tier {
	switch {
	case avgScore < -0.6 && maxMagnitude > 2.0:
		return tierSevere
	case avgScore < -0.5:
		return tierDistressed
	case avgScore < -0.4:
		return tierLowMood
	case avgScore < -0.2:
		return tierMildFriction
	default:
		return tierStable
	}
}

// mostNegative returns the highest-magnitude mention with a negative score,
// or "" when no mention is negative.
func mostNegative(mentions []MentionScore) string {
	best := ""
	bestMagnitude := 0.0
	for _, m := range mentions {
		if m.Score < 0 && m.Magnitude > bestMagnitude {
			best = m.Text
			bestMagnitude = m.Magnitude
		}
	}
	return best
}
