package sentiment

import (
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

const unscoredProbability = 0.33

// NewsPolicy weights every article equally and corrects the slight negative bias of
// the upstream scorer in the 0.5 to 0.6 band, once per item and once on the mean.
type NewsPolicy struct {
	Thresholds      Thresholds
	FullConfidence  int     // item count at which confidence reaches 1
	ConfidenceFloor float64 // minimum confidence applied to the score
	BiasLow         float64
	BiasHigh        float64
	SecondPassLow   float64
}

func NewNewsPolicy() *NewsPolicy {
	return &NewsPolicy{
		Thresholds:      Thresholds{Positive: 0.6, Neutral: 0.4},
		FullConfidence:  3,
		ConfidenceFloor: 0.6,
		BiasLow:         0.5,
		BiasHigh:        0.6,
		SecondPassLow:   0.54,
	}
}

func (p *NewsPolicy) Kind() models.SentimentKind { return models.SentimentNews }

func (p *NewsPolicy) Categorize(score float64) models.SentimentCategory {
	return p.Thresholds.Categorize(score)
}

func (p *NewsPolicy) Aggregate(asset string, items []models.SentimentItem, _ time.Time) models.AssetSentimentSummary {
	if len(items) == 0 {
		return emptySummary(asset, p.Kind())
	}

	var sum, pos, neg, neu float64
	for _, it := range items {
		if !it.Scored {
			sum += 0.5
			pos += unscoredProbability
			neg += unscoredProbability
			neu += unscoredProbability
			continue
		}
		s := NormalizeTriple(it.Positive, it.Negative)
		sum += biasCorrect(s, it.Positive, it.Negative, p.BiasLow, p.BiasHigh)
		pos += it.Positive
		neg += it.Negative
		neu += it.Neutral
	}

	n := float64(len(items))
	mean := sum / n
	avgPos, avgNeg, avgNeu := pos/n, neg/n, neu/n
	if avgPos > avgNeg {
		mean = biasCorrect(mean, avgPos, avgNeg, p.SecondPassLow, p.BiasHigh)
	}

	confidence := clamp(n/float64(p.FullConfidence), p.ConfidenceFloor, 1)
	score := round(clamp01(mean*confidence), 4)

	return models.AssetSentimentSummary{
		Asset:           asset,
		Kind:            p.Kind(),
		Score:           score,
		Category:        p.Categorize(score),
		Confidence:      round(confidence, 2),
		TotalItems:      len(items),
		AveragePositive: round(avgPos, 4),
		AverageNegative: round(avgNeg, 4),
		AverageNeutral:  round(avgNeu, 4),
		MostRecent:      mostRecent(items),
	}
}
