package sentiment

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// Aggregator reads items from a source and summarizes them under one policy.
type Aggregator struct {
	source  domrepo.SentimentSource
	policy  WeightingPolicy
	now     func() time.Time
	l       *applogger.Logger
	metrics domrepo.Metrics
}

type Option func(*Aggregator)

func WithLogger(l *applogger.Logger) Option {
	return func(a *Aggregator) { a.l = l }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(a *Aggregator) { a.metrics = m }
}

// WithClock overrides the reference time used for recency counts.
func WithClock(now func() time.Time) Option {
	return func(a *Aggregator) { a.now = now }
}

func NewAggregator(source domrepo.SentimentSource, policy WeightingPolicy, opts ...Option) *Aggregator {
	a := &Aggregator{source: source, policy: policy, now: time.Now, l: applogger.Nop()}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *Aggregator) Kind() models.SentimentKind { return a.policy.Kind() }

// Summarize fetches the items of one asset and aggregates them.
// An asset with no items yields the neutral default summary.
func (a *Aggregator) Summarize(ctx context.Context, asset string) (models.AssetSentimentSummary, error) {
	kind := a.policy.Kind()
	ctx, span := tracing.StartSpan(ctx, "sentiment.Summarize", attribute.String("asset", asset), attribute.String("kind", string(kind)))
	defer span.End()
	start := time.Now()

	items, err := a.source.FetchSentimentItems(ctx, asset)
	if err != nil {
		err = models.AdapterError("fetch "+string(kind)+" items "+asset, err)
		tracing.Fail(span, err)
		a.l.Error("sentiment fetch failed", applogger.String("asset", asset), applogger.String("kind", string(kind)), applogger.Error(err))
		if a.metrics != nil {
			a.metrics.RecordError("sentiment_fetch")
		}
		return models.AssetSentimentSummary{}, err
	}

	sum := a.policy.Aggregate(asset, ForAsset(items, asset), a.now())
	a.l.Debug("sentiment summarized",
		applogger.String("asset", asset),
		applogger.String("kind", string(kind)),
		applogger.Int("items", sum.TotalItems),
		applogger.Float("score", sum.Score),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	if a.metrics != nil {
		a.metrics.RecordSentimentScore(asset, string(kind), sum.Score)
		a.metrics.RecordLatency("sentiment_"+string(kind), time.Since(start))
	}
	return sum, nil
}

// assetKey is the grouping key of an asset symbol: trimmed and upper-cased.
func assetKey(asset string) string {
	return strings.ToUpper(strings.TrimSpace(asset))
}

// GroupByAsset buckets items by asset key. Symbols match case-insensitively.
// Untagged items go to fallback; with an empty fallback they are dropped.
func GroupByAsset(items []models.SentimentItem, fallback string) map[string][]models.SentimentItem {
	out := make(map[string][]models.SentimentItem)
	fallback = assetKey(fallback)
	for _, it := range items {
		key := assetKey(it.Asset)
		if key == "" {
			key = fallback
		}
		if key == "" {
			continue
		}
		out[key] = append(out[key], it)
	}
	return out
}

// ForAsset keeps the items of one asset under the GroupByAsset rule, with the
// fetched asset as fallback for untagged items.
func ForAsset(items []models.SentimentItem, asset string) []models.SentimentItem {
	return GroupByAsset(items, asset)[assetKey(asset)]
}
