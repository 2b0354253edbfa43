package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

type fakeTechnical struct {
	fail map[string]error
}

func (f *fakeTechnical) Analyze(_ context.Context, alloc models.Allocation) (models.TechnicalAnalysis, error) {
	if err := f.fail[alloc.Asset]; err != nil {
		return models.TechnicalAnalysis{}, err
	}
	return models.TechnicalAnalysis{
		Set:   models.IndicatorSet{Symbol: alloc.Asset, Class: alloc.EffectiveClass()},
		Trend: &models.TrendAssessment{Label: models.TrendUptrend},
	}, nil
}

type fakeSummarizer struct {
	kind     models.SentimentKind
	category map[string]models.SentimentCategory
	fail     map[string]error
}

func (f *fakeSummarizer) Kind() models.SentimentKind { return f.kind }

func (f *fakeSummarizer) Summarize(_ context.Context, asset string) (models.AssetSentimentSummary, error) {
	if err := f.fail[asset]; err != nil {
		return models.AssetSentimentSummary{}, err
	}
	cat, ok := f.category[asset]
	if !ok {
		cat = models.SentimentNeutral
	}
	return models.AssetSentimentSummary{Asset: asset, Kind: f.kind, Score: 0.5, Category: cat}, nil
}

type fakeStore struct {
	mu      sync.Mutex
	reports map[string]*models.PortfolioReport
	locks   map[string]bool
	saveErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{reports: map[string]*models.PortfolioReport{}, locks: map[string]bool{}}
}

func (s *fakeStore) SaveLatest(_ context.Context, r *models.PortfolioReport) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports[r.PortfolioID] = r
	return nil
}

func (s *fakeStore) Latest(_ context.Context, id string) (*models.PortfolioReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.reports[id]
	if !ok {
		return nil, domrepo.ErrReportNotFound
	}
	return r, nil
}

func (s *fakeStore) AcquireRun(_ context.Context, id string, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.locks[id] {
		return false, nil
	}
	s.locks[id] = true
	return true, nil
}

func (s *fakeStore) ReleaseRun(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.locks, id)
	return nil
}

type fakePublisher struct {
	published []*models.PortfolioReport
	err       error
}

func (p *fakePublisher) Publish(_ context.Context, r *models.PortfolioReport) error {
	if p.err != nil {
		return p.err
	}
	p.published = append(p.published, r)
	return nil
}

func (p *fakePublisher) Close() error { return nil }

type fakeBroadcaster struct {
	got []*models.PortfolioReport
}

func (b *fakeBroadcaster) Broadcast(r *models.PortfolioReport) { b.got = append(b.got, r) }

type fakeMetrics struct {
	mu       sync.Mutex
	analyses map[string]int
	errors   map[string]int
}

func newFakeMetrics() *fakeMetrics {
	return &fakeMetrics{analyses: map[string]int{}, errors: map[string]int{}}
}

func (m *fakeMetrics) RecordAnalysis(component, outcome string) {
	m.mu.Lock()
	m.analyses[component+"/"+outcome]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordIndicatorSkip(string, string) {}
func (m *fakeMetrics) RecordError(kind string) {
	m.mu.Lock()
	m.errors[kind]++
	m.mu.Unlock()
}
func (m *fakeMetrics) RecordSentimentScore(string, string, float64) {}
func (m *fakeMetrics) RecordLatency(string, time.Duration)          {}

var errUpstream = models.AdapterError("fetch", errors.New("connection refused"))
