package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

type recordingBars struct {
	count int
	order domrepo.BarOrder
	err   error
}

func (r *recordingBars) FetchBars(_ context.Context, symbol string, count int, order domrepo.BarOrder) ([]models.Bar, error) {
	r.count, r.order = count, order
	if r.err != nil {
		return nil, r.err
	}
	return []models.Bar{{Symbol: symbol, Close: 1}}, nil
}

func TestGetBarsDefaultsAndClamp(t *testing.T) {
	rb := &recordingBars{}
	uc := NewBarsUseCase(rb)

	res, err := uc.GetBars(context.Background(), GetBarsParams{Symbol: " BTC "})
	if err != nil {
		t.Fatalf("get bars: %v", err)
	}
	if rb.count != 50 || rb.order != domrepo.NewestFirst || res.Symbol != "BTC" || res.Count != 1 {
		t.Fatalf("unexpected defaults: count=%d order=%s res=%+v", rb.count, rb.order, res)
	}

	if _, err := uc.GetBars(context.Background(), GetBarsParams{Symbol: "BTC", Count: 5000, Order: domrepo.OldestFirst}); err != nil {
		t.Fatalf("get bars: %v", err)
	}
	if rb.count != 1000 || rb.order != domrepo.OldestFirst {
		t.Fatalf("expected clamp to 1000 oldest, got %d %s", rb.count, rb.order)
	}
}

func TestGetBarsErrors(t *testing.T) {
	uc := NewBarsUseCase(&recordingBars{err: errUpstream})
	if _, err := uc.GetBars(context.Background(), GetBarsParams{}); err == nil {
		t.Fatalf("expected symbol required")
	}
	if _, err := uc.GetBars(context.Background(), GetBarsParams{Symbol: "BTC"}); !errors.Is(err, models.ErrAdapterFailure) {
		t.Fatalf("expected adapter failure, got %v", err)
	}
}
