package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/usecase"
)

type stubTechnical struct{}

func (stubTechnical) Analyze(context.Context, models.Allocation) (models.TechnicalAnalysis, error) {
	return models.TechnicalAnalysis{}, nil
}

type stubSummarizer struct{ kind models.SentimentKind }

func (s stubSummarizer) Kind() models.SentimentKind { return s.kind }

func (s stubSummarizer) Summarize(_ context.Context, asset string) (models.AssetSentimentSummary, error) {
	return models.AssetSentimentSummary{Asset: asset}, nil
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
}

func TestLoadPortfolios(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "b", "growth.yaml"), `
portfolio_id: growth
allocations:
  - asset: BTC
    asset_class: crypto
    allocation_percentage: 60
  - asset: SPY
    allocation_percentage: 40
`)
	writeFile(t, filepath.Join(dir, "a.yaml"), `
portfolio_id: income
allocations:
  - asset: USDC
    asset_class: Stablecoin
    allocation_percentage: 100
`)

	got, err := loadPortfolios(filepath.Join(dir, "**", "*.yaml"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 portfolios, got %d", len(got))
	}
	if got[0].ID != "income" || got[1].ID != "growth" {
		t.Fatalf("unexpected order: %s, %s", got[0].ID, got[1].ID)
	}
	if got[1].Allocations[0].Class != models.AssetClassCryptocurrency {
		t.Fatalf("expected crypto alias to resolve, got %q", got[1].Allocations[0].Class)
	}
}

func TestLoadPortfoliosRejectsBadInput(t *testing.T) {
	dir := t.TempDir()
	if _, err := loadPortfolios(filepath.Join(dir, "*.yaml")); err == nil {
		t.Fatalf("expected error when nothing matches")
	}

	writeFile(t, filepath.Join(dir, "over.yaml"), `
portfolio_id: over
allocations:
  - asset: BTC
    allocation_percentage: 150
`)
	if _, err := loadPortfolios(filepath.Join(dir, "*.yaml")); err == nil {
		t.Fatalf("expected validation error for percentage above 100")
	}

	writeFile(t, filepath.Join(dir, "over.yaml"), "portfolio_id: empty\n")
	if _, err := loadPortfolios(filepath.Join(dir, "*.yaml")); err == nil {
		t.Fatalf("expected error for a portfolio without allocations")
	}
}

func TestRunAnalysesWritesOneLinePerPortfolio(t *testing.T) {
	assets := usecase.NewAssetAnalyzer(stubTechnical{},
		stubSummarizer{kind: models.SentimentNews},
		stubSummarizer{kind: models.SentimentSocial},
	)
	analyzer := usecase.NewPortfolioAnalyzer(assets)

	portfolios := []models.Portfolio{
		{ID: "one", Allocations: []models.Allocation{{Asset: "BTC", Class: models.AssetClassCryptocurrency, Percentage: 100}}},
		{ID: "two", Allocations: []models.Allocation{{Asset: "SPY", Percentage: 100}}},
	}
	var buf bytes.Buffer
	if err := runAnalyses(context.Background(), analyzer, portfolios, &buf); err != nil {
		t.Fatalf("run: %v", err)
	}

	var ids []string
	sc := bufio.NewScanner(&buf)
	for sc.Scan() {
		var r models.PortfolioReport
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		ids = append(ids, r.PortfolioID)
	}
	if len(ids) != 2 || ids[0] != "one" || ids[1] != "two" {
		t.Fatalf("unexpected report ids: %v", ids)
	}
}

func TestRunAnalysesWithoutDefaultPortfolioFails(t *testing.T) {
	assets := usecase.NewAssetAnalyzer(stubTechnical{},
		stubSummarizer{kind: models.SentimentNews},
		stubSummarizer{kind: models.SentimentSocial},
	)
	var buf bytes.Buffer
	if err := runAnalyses(context.Background(), usecase.NewPortfolioAnalyzer(assets), nil, &buf); err == nil {
		t.Fatalf("expected empty default portfolio to fail")
	}
}
