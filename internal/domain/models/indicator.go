package models

import (
	"fmt"
	"time"
)

type IndicatorName string

const (
	IndicatorRSI         IndicatorName = "RSI"
	IndicatorVolumeRatio IndicatorName = "VolumeRatio"
	IndicatorVWAP        IndicatorName = "VWAP"
	IndicatorTrend       IndicatorName = "Trend"
)

// MovingAverageName returns the indicator name for a moving average window, e.g. MA21.
func MovingAverageName(window int) IndicatorName {
	return IndicatorName(fmt.Sprintf("MA%d", window))
}

// Indicator is a computed value plus the human-readable text attached to it.
type Indicator struct {
	Name      IndicatorName `json:"name"`
	Value     float64       `json:"value"`
	AsOf      time.Time     `json:"as_of"`
	Summary   string        `json:"fluctuation_answer"`
	Diagnosis string        `json:"diagnosis"`
	Warning   string        `json:"warning,omitempty"`
}

// SkippedIndicator records an indicator that could not be computed for this run.
type SkippedIndicator struct {
	Name      IndicatorName `json:"name"`
	Reason    string        `json:"reason"`
	Required  int           `json:"required,omitempty"`
	Available int           `json:"available,omitempty"`
}

// IndicatorSet groups the indicators computed for one asset in one run.
type IndicatorSet struct {
	Symbol     string             `json:"symbol"`
	Class      AssetClass         `json:"asset_class"`
	Indicators []Indicator        `json:"indicators"`
	Skipped    []SkippedIndicator `json:"skipped,omitempty"`
}

// Get returns the named indicator if it was computed.
func (s IndicatorSet) Get(name IndicatorName) (Indicator, bool) {
	for _, ind := range s.Indicators {
		if ind.Name == name {
			return ind, true
		}
	}
	return Indicator{}, false
}

type TrendLabel string

const (
	TrendStrongUptrend   TrendLabel = "strong_uptrend"
	TrendUptrend         TrendLabel = "uptrend"
	TrendSideways        TrendLabel = "sideways"
	TrendDowntrend       TrendLabel = "downtrend"
	TrendStrongDowntrend TrendLabel = "strong_downtrend"
	TrendStable          TrendLabel = "stable"
	TrendDepegRisk       TrendLabel = "depeg_risk"
)

// StablecoinOnly reports whether the label is reserved for pegged assets.
func (l TrendLabel) StablecoinOnly() bool {
	return l == TrendStable || l == TrendDepegRisk
}

// TrendAssessment is the single trend label produced per asset per run.
type TrendAssessment struct {
	Label          TrendLabel `json:"label"`
	LastPrice      float64    `json:"last_price"`
	AsOf           time.Time  `json:"as_of"`
	ShortDeviation float64    `json:"short_deviation_pct"`
	MidDeviation   float64    `json:"mid_deviation_pct"`
	Summary        string     `json:"fluctuation_answer"`
	Diagnosis      string     `json:"diagnosis"`
}

// TechnicalAnalysis is the indicator engine output for one asset.
type TechnicalAnalysis struct {
	Set   IndicatorSet     `json:"indicators"`
	Trend *TrendAssessment `json:"trend,omitempty"`
}
