package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
)

// BarsUseCase exposes raw bar retrieval for diagnostics.
type BarsUseCase struct {
	bars domrepo.BarRepository
}

func NewBarsUseCase(bars domrepo.BarRepository) *BarsUseCase {
	return &BarsUseCase{bars: bars}
}

type GetBarsParams struct {
	Symbol string
	Count  int
	Order  domrepo.BarOrder
}

type GetBarsResult struct {
	Symbol string       `json:"symbol"`
	Order  string       `json:"order"`
	Count  int          `json:"count"`
	Bars   []models.Bar `json:"bars"`
}

func (uc *BarsUseCase) GetBars(ctx context.Context, p GetBarsParams) (*GetBarsResult, error) {
	p.Symbol = strings.TrimSpace(p.Symbol)
	if p.Symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	if p.Count <= 0 {
		p.Count = 50
	}
	if p.Count > 1000 {
		p.Count = 1000
	}
	if p.Order == "" {
		p.Order = domrepo.NewestFirst
	}

	bars, err := uc.bars.FetchBars(ctx, p.Symbol, p.Count, p.Order)
	if err != nil {
		return nil, fmt.Errorf("get bars: %w", err)
	}
	return &GetBarsResult{
		Symbol: p.Symbol,
		Order:  string(p.Order),
		Count:  len(bars),
		Bars:   bars,
	}, nil
}
