package models

import "time"

// AssetAnalysis collects every component result for one allocation.
// Errors is keyed by component name and is nil when every component succeeded.
type AssetAnalysis struct {
	Allocation Allocation             `json:"allocation"`
	Technical  *TechnicalAnalysis     `json:"technical,omitempty"`
	News       *AssetSentimentSummary `json:"news,omitempty"`
	Social     *AssetSentimentSummary `json:"social,omitempty"`
	Errors     map[string]string      `json:"errors,omitempty"`
}

// PortfolioReport is the result of one portfolio run.
type PortfolioReport struct {
	RunID             string                 `json:"run_id"`
	PortfolioID       string                 `json:"portfolio_id"`
	GeneratedAt       time.Time              `json:"generated_at"`
	Assets            []AssetAnalysis        `json:"assets"`
	AllocationByClass map[AssetClass]float64 `json:"allocation_by_class"`
	NewsOverview      *SentimentOverview     `json:"news_overview,omitempty"`
	SocialOverview    *SentimentOverview     `json:"social_overview,omitempty"`
	Errors            map[string]string      `json:"errors,omitempty"`
}

// Failed reports whether no asset produced any component result.
func (r *PortfolioReport) Failed() bool {
	for _, a := range r.Assets {
		if a.Technical != nil || a.News != nil || a.Social != nil {
			return false
		}
	}
	return true
}
