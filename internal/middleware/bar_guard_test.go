package middleware

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

type staticBars struct {
	bars      []models.Bar
	lastCount int
}

func (s *staticBars) FetchBars(_ context.Context, _ string, count int, _ domrepo.BarOrder) ([]models.Bar, error) {
	s.lastCount = count
	return s.bars, nil
}

var t0 = time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC)

func bar(day int, close float64) models.Bar {
	return models.Bar{Symbol: "BTC", Timestamp: t0.AddDate(0, 0, day), Open: close, High: close, Low: close, Close: close, Volume: 10}
}

func TestSanitizeOrdersAndDeduplicates(t *testing.T) {
	bars := []models.Bar{bar(1, 10), bar(3, 30), bar(2, 20), bar(3, 31)}
	got, dropped := Sanitize(bars, domrepo.NewestFirst)
	if dropped != 1 || len(got) != 3 {
		t.Fatalf("expected 3 kept 1 dropped, got %d kept %d dropped", len(got), dropped)
	}
	if got[0].Close != 30 || got[2].Close != 10 {
		t.Fatalf("expected newest first with first duplicate kept, got %+v", got)
	}

	got, _ = Sanitize(bars, domrepo.OldestFirst)
	if got[0].Close != 10 || got[2].Close != 30 {
		t.Fatalf("expected oldest first, got %+v", got)
	}
}

func TestSanitizeDropsMalformed(t *testing.T) {
	bad := bar(4, 40)
	bad.High, bad.Low = 39, 41
	nan := bar(5, 50)
	nan.Volume = math.NaN()
	neg := bar(6, 60)
	neg.Low = -1
	bars := []models.Bar{bar(1, 10), {Close: 5}, bad, nan, neg}

	got, dropped := Sanitize(bars, domrepo.NewestFirst)
	if len(got) != 1 || dropped != 4 {
		t.Fatalf("expected only the valid bar, got %d kept %d dropped", len(got), dropped)
	}
}

func TestSanitizeKeepsZeroClose(t *testing.T) {
	got, dropped := Sanitize([]models.Bar{bar(1, 10), bar(2, 0)}, domrepo.OldestFirst)
	if dropped != 0 || len(got) != 2 || got[1].Close != 0 {
		t.Fatalf("expected zero close kept, got %+v dropped %d", got, dropped)
	}
}

func TestBarGuardCapsCount(t *testing.T) {
	next := &staticBars{bars: []models.Bar{bar(1, 10), bar(2, 20), bar(3, 30)}}
	g := NewBarGuard(next, WithMaxCount(2))

	got, err := g.FetchBars(context.Background(), "BTC", 10, domrepo.NewestFirst)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if next.lastCount != 2 {
		t.Fatalf("expected request capped to 2, got %d", next.lastCount)
	}
	if len(got) != 2 || got[0].Close != 30 {
		t.Fatalf("expected 2 newest bars, got %+v", got)
	}
}

func TestBarGuardRequiresSymbol(t *testing.T) {
	g := NewBarGuard(&staticBars{})
	if _, err := g.FetchBars(context.Background(), "", 5, domrepo.NewestFirst); err == nil {
		t.Fatalf("expected error for empty symbol")
	}
}
