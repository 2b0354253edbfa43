package usecase

import (
	"context"
	"testing"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

func TestAnalysisRequestHandler(t *testing.T) {
	store := newFakeStore()
	pub := &fakePublisher{}
	m := newFakeMetrics()
	pa := NewPortfolioAnalyzer(newAnalyzer(&fakeTechnical{}, nil, nil), WithReportStore(store), WithReportPublisher(pub))
	h := NewAnalysisRequestHandler("analysis.requests", pa, m, nil)

	if h.Topic() != "analysis.requests" {
		t.Fatalf("unexpected topic %s", h.Topic())
	}
	msg := []byte(`{"portfolio_id":"p9","allocations":[{"asset":"BTC","asset_class":"crypto","allocation_percentage":50}]}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(pub.published) != 1 || pub.published[0].PortfolioID != "p9" {
		t.Fatalf("expected one published report for p9")
	}
	if got := pub.published[0].Assets[0].Allocation.Class; got != models.AssetClassCryptocurrency {
		t.Fatalf("alias should decode to Cryptocurrency, got %s", got)
	}

	store.locks["p9"] = true
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("in-progress run should be dropped, got %v", err)
	}
	if len(pub.published) != 1 {
		t.Fatalf("in-progress run must not publish")
	}

	if err := h.Handle(context.Background(), []byte("{")); err == nil {
		t.Fatalf("expected decode error")
	}
	if m.errors["consumer_unmarshal"] != 1 {
		t.Fatalf("unexpected metrics: %v", m.errors)
	}
}
