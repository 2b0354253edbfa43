package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/services/sentiment"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

var (
	ErrRunInProgress  = errors.New("portfolio run already in progress")
	ErrEmptyPortfolio = errors.New("portfolio has no allocations")
)

const defaultPortfolioID = "default"

// PortfolioAnalyzer runs AssetAnalyzer over every allocation of a portfolio and
// assembles the report. Store, publisher and broadcaster are optional.
type PortfolioAnalyzer struct {
	assets      *AssetAnalyzer
	store       domrepo.ReportStore
	publisher   domrepo.ReportPublisher
	broadcaster domrepo.ReportBroadcaster
	defaults    models.Portfolio
	concurrency int
	lockTTL     time.Duration
	now         func() time.Time
	l           *applogger.Logger
	metrics     domrepo.Metrics
}

type PortfolioOption func(*PortfolioAnalyzer)

func WithReportStore(s domrepo.ReportStore) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.store = s }
}

func WithReportPublisher(pub domrepo.ReportPublisher) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.publisher = pub }
}

func WithReportBroadcaster(b domrepo.ReportBroadcaster) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.broadcaster = b }
}

// WithDefaultPortfolio sets the portfolio used when a request carries no allocations.
func WithDefaultPortfolio(pf models.Portfolio) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.defaults = pf }
}

// WithConcurrency bounds how many assets are analyzed at once.
func WithConcurrency(n int) PortfolioOption {
	return func(p *PortfolioAnalyzer) {
		if n > 0 {
			p.concurrency = n
		}
	}
}

func WithLockTTL(d time.Duration) PortfolioOption {
	return func(p *PortfolioAnalyzer) {
		if d > 0 {
			p.lockTTL = d
		}
	}
}

func WithPortfolioLogger(l *applogger.Logger) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.l = l }
}

func WithPortfolioMetrics(m domrepo.Metrics) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.metrics = m }
}

func WithPortfolioClock(now func() time.Time) PortfolioOption {
	return func(p *PortfolioAnalyzer) { p.now = now }
}

func NewPortfolioAnalyzer(assets *AssetAnalyzer, opts ...PortfolioOption) *PortfolioAnalyzer {
	p := &PortfolioAnalyzer{
		assets:      assets,
		concurrency: 4,
		lockTTL:     5 * time.Minute,
		now:         time.Now,
		l:           applogger.Nop(),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

type RunParams struct {
	PortfolioID string
	Allocations []models.Allocation
}

// Run analyzes the portfolio and delivers the report. Only a held run lock or an
// empty portfolio fail the call; asset and delivery failures land in the report.
func (p *PortfolioAnalyzer) Run(ctx context.Context, rp RunParams) (*models.PortfolioReport, error) {
	pf, err := p.resolve(rp)
	if err != nil {
		return nil, err
	}

	ctx, span := tracing.StartSpan(ctx, "usecase.RunPortfolio",
		attribute.String("portfolio_id", pf.ID),
		attribute.Int("assets", len(pf.Allocations)),
	)
	defer span.End()
	start := time.Now()

	locked := false
	if p.store != nil {
		ok, err := p.store.AcquireRun(ctx, pf.ID, p.lockTTL)
		switch {
		case err != nil:
			p.l.Warn("run lock unavailable, continuing unlocked", applogger.String("portfolio_id", pf.ID), applogger.Error(err))
		case !ok:
			return nil, fmt.Errorf("%s: %w", pf.ID, ErrRunInProgress)
		default:
			locked = true
			defer func() {
				if err := p.store.ReleaseRun(context.WithoutCancel(ctx), pf.ID); err != nil {
					p.l.Warn("release run lock failed", applogger.String("portfolio_id", pf.ID), applogger.Error(err))
				}
			}()
		}
	}

	report := &models.PortfolioReport{
		RunID:       uuid.NewString(),
		PortfolioID: pf.ID,
		GeneratedAt: p.now().UTC(),
		Assets:      p.analyzeAll(ctx, pf.Allocations),
		Errors:      map[string]string{},
	}
	report.AllocationByClass = AllocationByClass(pf.Allocations)
	report.NewsOverview, report.SocialOverview = overviews(report.Assets)

	for _, a := range report.Assets {
		for component, msg := range a.Errors {
			report.Errors[a.Allocation.Asset+"."+component] = msg
		}
	}
	p.deliver(ctx, report)
	if len(report.Errors) == 0 {
		report.Errors = nil
	}

	outcome := "ok"
	switch {
	case report.Failed():
		outcome = "failed"
	case report.Errors != nil:
		outcome = "partial"
	}
	if p.metrics != nil {
		p.metrics.RecordAnalysis("portfolio", outcome)
		p.metrics.RecordLatency("portfolio_run", time.Since(start))
	}
	span.SetAttributes(attribute.String("run_id", report.RunID), attribute.String("outcome", outcome))
	p.l.Info("portfolio analyzed",
		applogger.String("portfolio_id", pf.ID),
		applogger.String("run_id", report.RunID),
		applogger.String("outcome", outcome),
		applogger.Int("assets", len(report.Assets)),
		applogger.Int("errors", len(report.Errors)),
		applogger.Bool("locked", locked),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return report, nil
}

func (p *PortfolioAnalyzer) resolve(rp RunParams) (models.Portfolio, error) {
	pf := models.Portfolio{ID: strings.TrimSpace(rp.PortfolioID), Allocations: rp.Allocations}
	if len(pf.Allocations) == 0 {
		pf.Allocations = p.defaults.Allocations
		if pf.ID == "" {
			pf.ID = p.defaults.ID
		}
	}
	if pf.ID == "" {
		pf.ID = defaultPortfolioID
	}
	out := make([]models.Allocation, 0, len(pf.Allocations))
	for _, a := range pf.Allocations {
		a.Asset = strings.TrimSpace(a.Asset)
		if a.Asset == "" {
			continue
		}
		out = append(out, a)
	}
	if len(out) == 0 {
		return models.Portfolio{}, ErrEmptyPortfolio
	}
	pf.Allocations = out
	return pf, nil
}

// analyzeAll fans allocations out over a bounded worker set. Results keep allocation order.
func (p *PortfolioAnalyzer) analyzeAll(ctx context.Context, allocs []models.Allocation) []models.AssetAnalysis {
	out := make([]models.AssetAnalysis, len(allocs))
	sem := make(chan struct{}, p.concurrency)
	var wg sync.WaitGroup
	for i, alloc := range allocs {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, alloc models.Allocation) {
			defer wg.Done()
			defer func() { <-sem }()
			out[i] = p.assets.Analyze(ctx, alloc)
		}(i, alloc)
	}
	wg.Wait()
	return out
}

// deliver publishes, stores and broadcasts the report. Failures are recorded, not returned.
func (p *PortfolioAnalyzer) deliver(ctx context.Context, report *models.PortfolioReport) {
	if p.publisher != nil {
		if err := p.publisher.Publish(ctx, report); err != nil {
			report.Errors["publish"] = err.Error()
			p.recordError("report_publish")
		}
	}
	if p.store != nil {
		if err := p.store.SaveLatest(ctx, report); err != nil {
			report.Errors["store"] = err.Error()
			p.recordError("report_store")
		}
	}
	if p.broadcaster != nil {
		p.broadcaster.Broadcast(report)
	}
}

func (p *PortfolioAnalyzer) recordError(kind string) {
	if p.metrics != nil {
		p.metrics.RecordError(kind)
	}
}

// Latest returns the last stored report of a portfolio.
func (p *PortfolioAnalyzer) Latest(ctx context.Context, portfolioID string) (*models.PortfolioReport, error) {
	if p.store == nil {
		return nil, domrepo.ErrReportNotFound
	}
	if portfolioID == "" {
		portfolioID = p.defaults.ID
	}
	if portfolioID == "" {
		portfolioID = defaultPortfolioID
	}
	return p.store.Latest(ctx, portfolioID)
}

// AllocationByClass totals allocation percentage per asset class.
func AllocationByClass(allocs []models.Allocation) map[models.AssetClass]float64 {
	out := make(map[models.AssetClass]float64)
	for _, a := range allocs {
		out[a.EffectiveClass()] += a.Percentage
	}
	return out
}

func overviews(assets []models.AssetAnalysis) (news, social *models.SentimentOverview) {
	var newsSums, socialSums []models.AssetSentimentSummary
	crypto := 0
	for _, a := range assets {
		if a.Allocation.EffectiveClass().IsCrypto() {
			crypto++
		}
		if a.News != nil {
			newsSums = append(newsSums, *a.News)
		}
		if a.Social != nil {
			socialSums = append(socialSums, *a.Social)
		}
	}
	cryptoMarket := crypto*2 > len(assets)
	if len(newsSums) > 0 {
		ov := sentiment.Overview(models.SentimentNews, newsSums, cryptoMarket)
		news = &ov
	}
	if len(socialSums) > 0 {
		ov := sentiment.Overview(models.SentimentSocial, socialSums, cryptoMarket)
		social = &ov
	}
	return news, social
}
