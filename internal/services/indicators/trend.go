package indicators

import (
	"fmt"
	"math"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

const (
	stablecoinPeg           = 1.0
	depegThresholdPct       = 0.5
	strongShortThresholdPct = 3.0
	strongMidThresholdPct   = 5.0
)

// TrendInput holds everything trend classification looks at.
// LongMA is optional and only used to annotate alignment.
type TrendInput struct {
	Symbol      string
	Class       models.AssetClass
	LastPrice   float64
	AsOf        time.Time
	ShortMA     float64
	MidMA       float64
	LongMA      float64
	HasLongMA   bool
	ShortWindow int
	MidWindow   int
	LongWindow  int
}

// ClassifyTrend assigns exactly one trend label. Stablecoins are judged by distance
// from the peg; every other class by its distance from the short and mid moving averages.
func ClassifyTrend(in TrendInput) (models.TrendAssessment, error) {
	out := models.TrendAssessment{LastPrice: in.LastPrice, AsOf: in.AsOf}
	out.Summary = fmt.Sprintf("%s close price is %s, MA%d is %s, and MA%d is %s.",
		in.Symbol, FormatPrice(in.LastPrice), in.ShortWindow, FormatPrice(in.ShortMA), in.MidWindow, FormatPrice(in.MidMA))

	if in.Class == models.AssetClassStablecoin {
		dev := math.Abs(in.LastPrice-stablecoinPeg) / stablecoinPeg * 100
		out.ShortDeviation = Round(dev, 4)
		if dev > depegThresholdPct {
			out.Label = models.TrendDepegRisk
			out.Diagnosis = fmt.Sprintf("Stablecoin showing %.2f%% deviation from peg. Monitor for stability.", dev)
		} else {
			out.Label = models.TrendStable
			out.Diagnosis = "Stablecoin maintaining peg stability. Safe for portfolio stability."
		}
		return out, nil
	}

	if in.ShortMA <= 0 || in.MidMA <= 0 {
		return out, &models.IndicatorError{Indicator: models.IndicatorTrend, Symbol: in.Symbol, Err: models.ErrDegenerateInput}
	}

	short := PercentDiff(in.LastPrice, in.ShortMA)
	mid := PercentDiff(in.LastPrice, in.MidMA)
	out.ShortDeviation = Round(short, 4)
	out.MidDeviation = Round(mid, 4)
	date := formatDate(in.AsOf)

	switch {
	case short > strongShortThresholdPct && mid > strongMidThresholdPct:
		out.Label = models.TrendStrongUptrend
		out.Diagnosis = fmt.Sprintf("Strong bullish momentum. %s close price %.1f%% above MA%d. Consider profit-taking.", date, short, in.ShortWindow)
	case short < -strongShortThresholdPct && mid < -strongMidThresholdPct:
		out.Label = models.TrendStrongDowntrend
		out.Diagnosis = fmt.Sprintf("Strong bearish momentum. %s close price %.1f%% below MA%d. Potential buying opportunity.", date, math.Abs(short), in.ShortWindow)
	case in.ShortMA > in.MidMA && short > 0:
		out.Label = models.TrendUptrend
		out.Diagnosis = fmt.Sprintf("Bullish trend confirmed. %s close price above both Moving Averages (MA%d and MA%d).", date, in.ShortWindow, in.MidWindow)
	case in.ShortMA < in.MidMA && short < 0:
		out.Label = models.TrendDowntrend
		out.Diagnosis = fmt.Sprintf("Bearish trend confirmed. %s close price below both Moving Averages (MA%d and MA%d).", date, in.ShortWindow, in.MidWindow)
	default:
		out.Label = models.TrendSideways
		out.Diagnosis = fmt.Sprintf("Mixed signals. %s close price consolidating between MA%d and MA%d.", date, in.ShortWindow, in.MidWindow)
	}

	if in.HasLongMA {
		switch {
		case in.ShortMA > in.MidMA && in.MidMA > in.LongMA:
			out.Diagnosis += fmt.Sprintf(" Moving averages aligned bullish (MA%d > MA%d > MA%d).", in.ShortWindow, in.MidWindow, in.LongWindow)
		case in.ShortMA < in.MidMA && in.MidMA < in.LongMA:
			out.Diagnosis += fmt.Sprintf(" Moving averages aligned bearish (MA%d < MA%d < MA%d).", in.ShortWindow, in.MidWindow, in.LongWindow)
		}
	}
	return out, nil
}
