package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/cache"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"

	"github.com/google/uuid"
)

const (
	latestReportPrefix = "report:latest"
	runLockPrefix      = "report:lock"
)

// RedisReportStore keeps the latest report per portfolio and the per-portfolio
// run lock in a cache.Service, usually Redis.
type RedisReportStore struct {
	cache cache.Service
	ttl   time.Duration
	l     *applogger.Logger

	mu     sync.Mutex
	tokens map[string]string
}

var _ domrepo.ReportStore = (*RedisReportStore)(nil)

// NewRedisReportStore builds the store. A zero ttl keeps reports until overwritten.
func NewRedisReportStore(c cache.Service, ttl time.Duration) *RedisReportStore {
	return &RedisReportStore{cache: c, ttl: ttl, l: applogger.Nop(), tokens: make(map[string]string)}
}

// SetLogger injects a structured logger.
func (s *RedisReportStore) SetLogger(l *applogger.Logger) { s.l = l }

func (s *RedisReportStore) SaveLatest(ctx context.Context, report *models.PortfolioReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	key := cache.GenerateKey(latestReportPrefix, report.PortfolioID)
	if err := s.cache.Set(ctx, key, report, s.ttl); err != nil {
		s.l.Error("save latest report failed", applogger.String("key", key), applogger.Error(err))
		return models.AdapterError("save report", err)
	}
	return nil
}

func (s *RedisReportStore) Latest(ctx context.Context, portfolioID string) (*models.PortfolioReport, error) {
	var report models.PortfolioReport
	err := s.cache.Get(ctx, cache.GenerateKey(latestReportPrefix, portfolioID), &report)
	if errors.Is(err, cache.ErrCacheMiss) {
		return nil, domrepo.ErrReportNotFound
	}
	if err != nil {
		return nil, models.AdapterError("load report", err)
	}
	return &report, nil
}

// AcquireRun takes the run lock for a portfolio. The lock expires after ttl so
// a crashed run cannot block the portfolio forever.
func (s *RedisReportStore) AcquireRun(ctx context.Context, portfolioID string, ttl time.Duration) (bool, error) {
	token := uuid.NewString()
	ok, err := s.cache.TryLock(ctx, cache.GenerateKey(runLockPrefix, portfolioID), token, ttl)
	if err != nil {
		return false, models.AdapterError("acquire run lock", err)
	}
	if ok {
		s.mu.Lock()
		s.tokens[portfolioID] = token
		s.mu.Unlock()
	}
	return ok, nil
}

func (s *RedisReportStore) ReleaseRun(ctx context.Context, portfolioID string) error {
	s.mu.Lock()
	token, ok := s.tokens[portfolioID]
	delete(s.tokens, portfolioID)
	s.mu.Unlock()
	if !ok {
		return cache.ErrLockNotHeld
	}
	err := s.cache.Unlock(ctx, cache.GenerateKey(runLockPrefix, portfolioID), token)
	if err != nil && !errors.Is(err, cache.ErrLockNotHeld) {
		return models.AdapterError("release run lock", err)
	}
	if errors.Is(err, cache.ErrLockNotHeld) {
		s.l.Warn("run lock expired before release", applogger.String("portfolio_id", portfolioID))
	}
	return nil
}
