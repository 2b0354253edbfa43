package service

import (
	"context"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// TechnicalAnalyzer computes indicators and a trend label for one allocation.
type TechnicalAnalyzer interface {
	Analyze(ctx context.Context, alloc models.Allocation) (models.TechnicalAnalysis, error)
}

// SentimentSummarizer aggregates the items of one asset under a single weighting policy.
type SentimentSummarizer interface {
	Kind() models.SentimentKind
	Summarize(ctx context.Context, asset string) (models.AssetSentimentSummary, error)
}
