package sentiment

import (
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// WeightingPolicy turns one asset's items into a summary. News and social
// differ in per-item weighting, confidence floors and category thresholds.
type WeightingPolicy interface {
	Kind() models.SentimentKind
	Aggregate(asset string, items []models.SentimentItem, now time.Time) models.AssetSentimentSummary
	Categorize(score float64) models.SentimentCategory
}

// Thresholds are the lower bounds of the Positive and Neutral categories.
type Thresholds struct {
	Positive float64
	Neutral  float64
}

func (t Thresholds) Categorize(score float64) models.SentimentCategory {
	switch {
	case score >= t.Positive:
		return models.SentimentPositive
	case score >= t.Neutral:
		return models.SentimentNeutral
	default:
		return models.SentimentNegative
	}
}

// emptySummary is returned for an asset without items.
func emptySummary(asset string, kind models.SentimentKind) models.AssetSentimentSummary {
	return models.AssetSentimentSummary{
		Asset:      asset,
		Kind:       kind,
		Score:      0.5,
		Category:   models.SentimentNeutral,
		Confidence: 0.5,
	}
}

// mostRecent returns a copy of the item with the latest CreatedAt.
func mostRecent(items []models.SentimentItem) *models.SentimentItem {
	if len(items) == 0 {
		return nil
	}
	best := items[0]
	for _, it := range items[1:] {
		if it.CreatedAt.After(best.CreatedAt) {
			best = it
		}
	}
	return &best
}
