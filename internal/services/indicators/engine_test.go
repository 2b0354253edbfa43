package indicators

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

type fakeBars struct {
	bars  []models.Bar // oldest first
	err   error
	calls []domrepo.BarOrder
}

func (f *fakeBars) FetchBars(_ context.Context, _ string, count int, order domrepo.BarOrder) ([]models.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	start := max(0, len(f.bars)-count)
	out := append([]models.Bar(nil), f.bars[start:]...)
	if order == domrepo.NewestFirst {
		out = reversed(out)
	}
	return out, nil
}

func risingBars(n int) []models.Bar {
	closes := make([]float64, n)
	for i := range closes {
		closes[i] = 100 * math.Pow(1.01, float64(i))
	}
	return oldestFirst(closes...)
}

func TestEngineFullHistory(t *testing.T) {
	e := NewEngine(&fakeBars{bars: risingBars(60)}, DefaultConfig())
	res, err := e.Analyze(context.Background(), models.Allocation{Asset: "BTC", Class: models.AssetClassCryptocurrency})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Set.Skipped) != 0 {
		t.Fatalf("unexpected skips: %+v", res.Set.Skipped)
	}
	if len(res.Set.Indicators) != 6 {
		t.Fatalf("expected 6 indicators, got %d", len(res.Set.Indicators))
	}
	rsi, ok := res.Set.Get(models.IndicatorRSI)
	if !ok || rsi.Value != 100 {
		t.Fatalf("expected rsi 100, got %+v", rsi)
	}
	vol, _ := res.Set.Get(models.IndicatorVolumeRatio)
	if vol.Value != 1 {
		t.Fatalf("expected volume ratio 1, got %v", vol.Value)
	}
	if res.Trend == nil || res.Trend.Label != models.TrendStrongUptrend {
		t.Fatalf("expected strong uptrend, got %+v", res.Trend)
	}
	if !res.Trend.AsOf.Equal(day0.AddDate(0, 0, 59)) {
		t.Fatalf("trend should be as of the newest bar, got %v", res.Trend.AsOf)
	}
}

func TestEngineSkipsShortHistory(t *testing.T) {
	e := NewEngine(&fakeBars{bars: risingBars(10)}, DefaultConfig())
	res, err := e.Analyze(context.Background(), models.Allocation{Asset: "NEW", Class: models.AssetClassCryptocurrency})
	if err != nil {
		t.Fatalf("short history must not fail the asset: %v", err)
	}
	if _, ok := res.Set.Get(models.MovingAverageName(9)); !ok {
		t.Fatalf("expected MA9 to be computed")
	}
	if _, ok := res.Set.Get(models.MovingAverageName(21)); ok {
		t.Fatalf("MA21 must be skipped with 10 bars")
	}
	if res.Trend != nil {
		t.Fatalf("trend must be unavailable without MA21")
	}
	// MA21, MA50, RSI, VolumeRatio, VWAP, Trend
	if len(res.Set.Skipped) != 6 {
		t.Fatalf("expected 6 skips, got %+v", res.Set.Skipped)
	}
	for _, s := range res.Set.Skipped {
		if s.Reason != models.ErrInsufficientData.Error() {
			t.Fatalf("unexpected skip reason: %+v", s)
		}
	}
}

func TestEngineStablecoinTrendNeedsOnlyPrice(t *testing.T) {
	bars := oldestFirst(1.0, 0.9999, 1.0001)
	e := NewEngine(&fakeBars{bars: bars}, DefaultConfig())
	res, err := e.Analyze(context.Background(), models.Allocation{Asset: "USDC", Class: models.AssetClassStablecoin})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Trend == nil || res.Trend.Label != models.TrendStable {
		t.Fatalf("expected stable, got %+v", res.Trend)
	}
}

func TestEngineAdapterFailure(t *testing.T) {
	e := NewEngine(&fakeBars{err: errors.New("connection refused")}, DefaultConfig())
	_, err := e.Analyze(context.Background(), models.Allocation{Asset: "BTC"})
	if !errors.Is(err, models.ErrAdapterFailure) {
		t.Fatalf("expected adapter failure, got %v", err)
	}
}

func TestEngineConfigDefaults(t *testing.T) {
	e := NewEngine(&fakeBars{}, Config{ShortMA: 5})
	cfg := e.Config()
	if cfg.ShortMA != 5 || cfg.MidMA != 21 || cfg.RSIPeriod != 14 {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}
