package wellbeing

// Baseline is the score a couple starts from before any session has been
// analyzed.
const Baseline = 0.7

// LabelWeight returns the score adjustment for an emotion-alert label.
// Negative tiers pull the score down, a stable session nudges it up.
func LabelWeight(label string) float64 {
	switch label {
	case "Severe":
		return -0.10
	case "Distressed":
		return -0.06
	case "Low mood":
		return -0.04
	case "Mild friction":
		return -0.02
	case "Stable/positive":
		return 0.03
	default:
		return 0.0
	}
}

// ApplyAlert calculates the new couple score after one analyzed session.
//
// Degradation is asymmetric: consecutive bad sessions compound, so a second
// negative adjustment while already below baseline counts 1.5x.
func ApplyAlert(currentScore float64, label string) float64 {
	weight := LabelWeight(label)
	if weight < 0 && currentScore < Baseline {
		weight *= 1.5
	}
	return clamp(currentScore + weight)
}

// DecayScore drifts a stale score back toward the baseline. decayRate is the
// per-day fraction of the distance recovered, days the number of days since
// the last analyzed session.
func DecayScore(currentScore float64, decayRate float64, days int) float64 {
	score := currentScore
	for i := 0; i < days; i++ {
		score += (Baseline - score) * decayRate
	}
	return clamp(score)
}

func clamp(score float64) float64 {
	if score < 0.0 {
		return 0.0
	}
	if score > 1.0 {
		return 1.0
	}
	return score
}
