package middleware

import (
	"context"
	"fmt"
	"math"
	"sort"

	"golang.org/x/time/rate"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
)

// BarGuard sits between the analyzers and a BarRepository. It paces reads,
// drops malformed bars and guarantees the ordering and uniqueness contract of FetchBars.
type BarGuard struct {
	next     domrepo.BarRepository
	limiter  *rate.Limiter
	maxCount int
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

var _ domrepo.BarRepository = (*BarGuard)(nil)

type GuardOption func(*BarGuard)

// WithRate limits reads to rps with the given burst. Zero rps disables pacing.
func WithRate(rps float64, burst int) GuardOption {
	return func(g *BarGuard) {
		if rps > 0 {
			g.limiter = rate.NewLimiter(rate.Limit(rps), max(1, burst))
		}
	}
}

// WithMaxCount caps the number of bars a single read may request.
func WithMaxCount(n int) GuardOption {
	return func(g *BarGuard) {
		if n > 0 {
			g.maxCount = n
		}
	}
}

func WithGuardMetrics(m domrepo.Metrics) GuardOption {
	return func(g *BarGuard) { g.metrics = m }
}

func WithGuardLogger(l *applogger.Logger) GuardOption {
	return func(g *BarGuard) { g.l = l }
}

func NewBarGuard(next domrepo.BarRepository, opts ...GuardOption) *BarGuard {
	g := &BarGuard{next: next, maxCount: 5000, l: applogger.Nop()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func (g *BarGuard) FetchBars(ctx context.Context, symbol string, count int, order domrepo.BarOrder) ([]models.Bar, error) {
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if count <= 0 {
		return nil, nil
	}
	if count > g.maxCount {
		count = g.maxCount
	}
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("bar read throttled: %w", err)
		}
	}

	bars, err := g.next.FetchBars(ctx, symbol, count, order)
	if err != nil {
		return nil, err
	}

	clean, dropped := Sanitize(bars, order)
	if dropped > 0 {
		g.l.Warn("dropped malformed bars", applogger.String("symbol", symbol), applogger.Int("dropped", dropped), applogger.Int("kept", len(clean)))
		if g.metrics != nil {
			g.metrics.RecordError("malformed_bar")
		}
	}
	if len(clean) > count {
		clean = clean[:count]
	}
	return clean, nil
}

// Sanitize removes invalid bars and duplicate timestamps, then sorts by order.
// When timestamps collide the first occurrence wins.
func Sanitize(bars []models.Bar, order domrepo.BarOrder) ([]models.Bar, int) {
	out := make([]models.Bar, 0, len(bars))
	seen := make(map[int64]struct{}, len(bars))
	dropped := 0
	for _, b := range bars {
		if !validBar(b) {
			dropped++
			continue
		}
		ts := b.Timestamp.UnixNano()
		if _, dup := seen[ts]; dup {
			dropped++
			continue
		}
		seen[ts] = struct{}{}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if order == domrepo.OldestFirst {
			return out[i].Timestamp.Before(out[j].Timestamp)
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, dropped
}

func validBar(b models.Bar) bool {
	if b.Timestamp.IsZero() {
		return false
	}
	for _, v := range []float64{b.Open, b.High, b.Low, b.Close, b.Volume} {
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return false
		}
	}
	return b.High >= b.Low
}
