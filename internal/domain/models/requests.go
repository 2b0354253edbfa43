package models

// Requests for the HTTP API and the Kafka request topic.

type IndicatorsRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required"`
	AssetClass string `query:"asset_class" json:"asset_class" default:"Cryptocurrency"`
}

type SentimentRequest struct {
	Asset string `query:"asset" json:"asset" validate:"required"`
}

type BarsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Count  int    `query:"count" json:"count" default:"50" validate:"gte=1,lte=1000"`
	Order  string `query:"order" json:"order" default:"newest" validate:"oneof=newest oldest"`
}

// LatestReportRequest falls back to the configured portfolio when PortfolioID is empty.
type LatestReportRequest struct {
	PortfolioID string `query:"portfolio_id" json:"portfolio_id"`
}

// AnalyzePortfolioRequest starts a run. Empty Allocations use the configured portfolio.
type AnalyzePortfolioRequest struct {
	PortfolioID string       `json:"portfolio_id" validate:"max=128"`
	Allocations []Allocation `json:"allocations" validate:"dive"`
}
