package sentiment

import "math"

// dominanceRatio is how much one side must outweigh the other to be treated as dominant.
const dominanceRatio = 1.5

// NormalizeTriple maps a positive/negative probability pair onto [0,1].
// A dominant side pushes the score from 0.5 by half its probability; otherwise
// the score is the balanced midpoint of (positive - negative).
func NormalizeTriple(positive, negative float64) float64 {
	var s float64
	switch {
	case positive > negative*dominanceRatio:
		s = 0.5 + positive*0.5
	case negative > positive*dominanceRatio:
		s = 0.5 - negative*0.5
	default:
		s = (positive - negative + 1) / 2
	}
	return clamp01(s)
}

// biasCorrect adds min(0.08, (positive-negative)*0.12) to scores in [low, high).
func biasCorrect(score, positive, negative, low, high float64) float64 {
	if score >= low && score < high {
		score += math.Min(0.08, (positive-negative)*0.12)
	}
	return clamp01(score)
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round(v float64, dp int) float64 {
	pow := math.Pow(10, float64(dp))
	return math.Round(v*pow) / pow
}
