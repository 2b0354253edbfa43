package usecase

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	domsvc "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/service"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

const (
	ComponentTechnical = "technical"
	ComponentNews      = "news"
	ComponentSocial    = "social"
)

// AssetAnalyzer runs the technical and sentiment components of one allocation concurrently.
// A failing component is recorded in AssetAnalysis.Errors and never cancels its siblings.
type AssetAnalyzer struct {
	technical domsvc.TechnicalAnalyzer
	news      domsvc.SentimentSummarizer
	social    domsvc.SentimentSummarizer
	timeout   time.Duration
	l         *applogger.Logger
	metrics   domrepo.Metrics
}

type AssetOption func(*AssetAnalyzer)

func WithAssetTimeout(d time.Duration) AssetOption {
	return func(a *AssetAnalyzer) {
		if d > 0 {
			a.timeout = d
		}
	}
}

func WithAssetLogger(l *applogger.Logger) AssetOption {
	return func(a *AssetAnalyzer) { a.l = l }
}

func WithAssetMetrics(m domrepo.Metrics) AssetOption {
	return func(a *AssetAnalyzer) { a.metrics = m }
}

// NewAssetAnalyzer wires the components. news and social may be nil to disable them.
func NewAssetAnalyzer(technical domsvc.TechnicalAnalyzer, news, social domsvc.SentimentSummarizer, opts ...AssetOption) *AssetAnalyzer {
	a := &AssetAnalyzer{
		technical: technical,
		news:      news,
		social:    social,
		timeout:   30 * time.Second,
		l:         applogger.Nop(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

func (a *AssetAnalyzer) Analyze(ctx context.Context, alloc models.Allocation) models.AssetAnalysis {
	ctx, span := tracing.StartSpan(ctx, "usecase.AnalyzeAsset", attribute.String("asset", alloc.Asset))
	defer span.End()

	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	res := models.AssetAnalysis{Allocation: alloc, Errors: map[string]string{}}

	type item struct {
		name string
		val  interface{}
		err  error
	}
	ch := make(chan item, 3)
	var wg sync.WaitGroup

	if a.technical != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := a.technical.Analyze(ctx, alloc)
			ch <- item{ComponentTechnical, v, err}
		}()
	}
	for name, s := range map[string]domsvc.SentimentSummarizer{ComponentNews: a.news, ComponentSocial: a.social} {
		if s == nil {
			continue
		}
		wg.Add(1)
		go func(name string, s domsvc.SentimentSummarizer) {
			defer wg.Done()
			v, err := s.Summarize(ctx, alloc.Asset)
			ch <- item{name, v, err}
		}(name, s)
	}

	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.name] = it.err.Error()
			a.record(it.name, "error")
			a.l.Warn("asset component failed",
				applogger.String("asset", alloc.Asset),
				applogger.String("component", it.name),
				applogger.Error(it.err),
			)
			continue
		}
		a.record(it.name, "ok")
		switch it.name {
		case ComponentTechnical:
			v := it.val.(models.TechnicalAnalysis)
			res.Technical = &v
		case ComponentNews:
			v := it.val.(models.AssetSentimentSummary)
			res.News = &v
		case ComponentSocial:
			v := it.val.(models.AssetSentimentSummary)
			res.Social = &v
		}
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	} else {
		span.SetAttributes(attribute.Int("failed_components", len(res.Errors)))
	}
	return res
}

func (a *AssetAnalyzer) record(component, outcome string) {
	if a.metrics != nil {
		a.metrics.RecordAnalysis(component, outcome)
	}
}
