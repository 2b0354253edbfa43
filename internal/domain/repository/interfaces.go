package repository

import (
	"context"
	"errors"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// ErrReportNotFound is returned by ReportStore when no report was saved for a portfolio.
var ErrReportNotFound = errors.New("report not found")

// SentimentSource returns the pre-scored items for one asset.
type SentimentSource interface {
	FetchSentimentItems(ctx context.Context, asset string) ([]models.SentimentItem, error)
}

// ReportPublisher ships finished reports to downstream consumers.
type ReportPublisher interface {
	Publish(ctx context.Context, report *models.PortfolioReport) error
	Close() error
}

// ReportStore keeps the latest report per portfolio and guards concurrent runs.
type ReportStore interface {
	SaveLatest(ctx context.Context, report *models.PortfolioReport) error
	Latest(ctx context.Context, portfolioID string) (*models.PortfolioReport, error)
	AcquireRun(ctx context.Context, portfolioID string, ttl time.Duration) (bool, error)
	ReleaseRun(ctx context.Context, portfolioID string) error
}

// ReportBroadcaster fans reports out to live subscribers.
type ReportBroadcaster interface {
	Broadcast(report *models.PortfolioReport)
}

// Metrics defines metrics recording operations.
type Metrics interface {
	RecordAnalysis(component, outcome string)
	RecordIndicatorSkip(indicator, reason string)
	RecordError(errorType string)
	RecordSentimentScore(asset string, kind string, score float64)
	RecordLatency(operation string, duration time.Duration)
}
