package sentiment

import (
	"fmt"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// Overview counts categories across summaries and writes a portfolio level diagnosis.
// crypto selects the digital asset wording of the news diagnosis.
func Overview(kind models.SentimentKind, summaries []models.AssetSentimentSummary, crypto bool) models.SentimentOverview {
	ov := models.SentimentOverview{Kind: kind, Total: len(summaries)}
	for _, s := range summaries {
		switch s.Category {
		case models.SentimentPositive:
			ov.Positive++
		case models.SentimentNegative:
			ov.Negative++
		default:
			ov.Neutral++
		}
	}
	ov.Diagnosis = diagnose(kind, ov, crypto)
	return ov
}

func diagnose(kind models.SentimentKind, ov models.SentimentOverview, crypto bool) string {
	if ov.Total == 0 {
		return fmt.Sprintf("No %s sentiment available for this portfolio.", kind)
	}
	positive := ov.Positive > ov.Negative && ov.Positive > ov.Neutral
	negative := ov.Negative > ov.Positive && ov.Negative > ov.Neutral

	if kind == models.SentimentSocial {
		switch {
		case positive:
			return fmt.Sprintf("Overall POSITIVE sentiment across %d/%d assets. Market appears optimistic.", ov.Positive, ov.Total)
		case negative:
			return fmt.Sprintf("Overall NEGATIVE sentiment across %d/%d assets. Market shows concern.", ov.Negative, ov.Total)
		default:
			return fmt.Sprintf("MIXED sentiment with %d positive, %d negative, %d neutral assets. Market is uncertain.", ov.Positive, ov.Negative, ov.Neutral)
		}
	}

	market, bull, bear := "Market", "optimistic outlook", "concerning outlook"
	if crypto {
		market, bull, bear = "Crypto market", "bullish sentiment", "bearish sentiment"
	}
	switch {
	case positive:
		return fmt.Sprintf("Overall POSITIVE news sentiment across %d/%d assets. %s shows %s.", ov.Positive, ov.Total, market, bull)
	case negative:
		return fmt.Sprintf("Overall NEGATIVE news sentiment across %d/%d assets. %s shows %s.", ov.Negative, ov.Total, market, bear)
	default:
		return fmt.Sprintf("MIXED news sentiment with %d positive, %d negative, %d neutral assets. %s sentiment is uncertain.", ov.Positive, ov.Negative, ov.Neutral, market)
	}
}
