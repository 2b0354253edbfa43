package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domsvc "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/service"
)

// InsightsUseCase answers single-asset indicator and sentiment queries.
type InsightsUseCase struct {
	technical domsvc.TechnicalAnalyzer
	news      domsvc.SentimentSummarizer
	social    domsvc.SentimentSummarizer
}

func NewInsightsUseCase(technical domsvc.TechnicalAnalyzer, news, social domsvc.SentimentSummarizer) *InsightsUseCase {
	return &InsightsUseCase{technical: technical, news: news, social: social}
}

func (uc *InsightsUseCase) Indicators(ctx context.Context, symbol string, class models.AssetClass) (*models.TechnicalAnalysis, error) {
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol required")
	}
	res, err := uc.technical.Analyze(ctx, models.Allocation{Asset: symbol, Class: class})
	if err != nil {
		return nil, err
	}
	return &res, nil
}

func (uc *InsightsUseCase) Sentiment(ctx context.Context, kind models.SentimentKind, asset string) (*models.AssetSentimentSummary, error) {
	asset = strings.TrimSpace(asset)
	if asset == "" {
		return nil, fmt.Errorf("asset required")
	}
	s := uc.news
	if kind == models.SentimentSocial {
		s = uc.social
	}
	if s == nil {
		return nil, fmt.Errorf("%s sentiment source not configured", kind)
	}
	res, err := s.Summarize(ctx, asset)
	if err != nil {
		return nil, err
	}
	return &res, nil
}
