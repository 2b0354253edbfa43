package indicators

import (
	"fmt"
	"math"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// DiagnoseRSI interprets an RSI value. Stablecoins use a band around 50 instead of
// overbought and oversold levels.
func DiagnoseRSI(value float64, class models.AssetClass, symbol string) string {
	v := formatValue(value)
	if class == models.AssetClassStablecoin {
		switch {
		case value >= 45 && value <= 55:
			return fmt.Sprintf("RSI at %s normal for stablecoin. Price stability maintained around peg.", v)
		case value > 55:
			return fmt.Sprintf("RSI at %s elevated for stablecoin. Slight upward pressure from peg.", v)
		default:
			return fmt.Sprintf("RSI at %s low for stablecoin. Slight downward pressure from peg.", v)
		}
	}
	switch {
	case value >= 70:
		return fmt.Sprintf("RSI at %s indicates overbought conditions. Consider taking profits or reducing position size.", v)
	case value <= 30:
		return fmt.Sprintf("RSI at %s indicates oversold conditions. Strong buying opportunity for %s.", v, symbol)
	case value >= 50:
		return fmt.Sprintf("RSI at %s shows bullish momentum. Upward price pressure likely to continue.", v)
	default:
		return fmt.Sprintf("RSI at %s shows bearish momentum. Downward pressure may persist.", v)
	}
}

// UnusualStablecoinRSI reports RSI readings that are out of character for a pegged asset.
func UnusualStablecoinRSI(value float64) bool {
	return value < 40 || value > 60
}

// DiagnoseVolume interprets a volume ratio.
func DiagnoseVolume(ratio float64) string {
	switch {
	case ratio > 2.0:
		return fmt.Sprintf("Exceptionally high volume (%.1fx average). Strong conviction in price movement.", ratio)
	case ratio > 1.5:
		return fmt.Sprintf("Above average volume (%.1fx average). Increased market interest.", ratio)
	case ratio < 0.7:
		return fmt.Sprintf("Below average volume (%.1fx average). Low market activity.", math.Max(0.1, ratio))
	default:
		return fmt.Sprintf("Normal volume levels (%.1fx average). Standard trading activity.", ratio)
	}
}

// DiagnoseVWAP interprets the distance between price and VWAP.
func DiagnoseVWAP(price, vwap float64, class models.AssetClass) string {
	dev := PercentDiff(price, vwap)
	if class == models.AssetClassStablecoin {
		if math.Abs(dev) > 0.5 {
			return fmt.Sprintf("Price %.4f vs VWAP %.4f. Stablecoin showing %.2f%% deviation from volume-weighted average.", price, vwap, dev)
		}
		return fmt.Sprintf("Price %.4f vs VWAP %.4f. Stablecoin trading close to volume-weighted average, maintaining stability.", price, vwap)
	}
	switch {
	case dev > 5:
		return fmt.Sprintf("Price %.2f is %.1f%% above VWAP %.2f. Strong bullish sentiment with institutional buying pressure.", price, dev, vwap)
	case dev > 2:
		return fmt.Sprintf("Price %.2f is %.1f%% above VWAP %.2f. Moderate bullish momentum with volume support.", price, dev, vwap)
	case dev < -5:
		return fmt.Sprintf("Price %.2f is %.1f%% below VWAP %.2f. Strong bearish pressure, potential value opportunity.", price, math.Abs(dev), vwap)
	case dev < -2:
		return fmt.Sprintf("Price %.2f is %.1f%% below VWAP %.2f. Moderate bearish sentiment, watch for reversal.", price, math.Abs(dev), vwap)
	default:
		return fmt.Sprintf("Price %.2f trading near VWAP %.2f (%+.1f%%). Balanced market with neutral sentiment.", price, vwap, dev)
	}
}

// DiagnoseMovingAverage describes where the last close sits relative to one average.
func DiagnoseMovingAverage(price, ma float64, window int) string {
	if ma <= 0 {
		return fmt.Sprintf("MA%d unavailable for comparison.", window)
	}
	dev := PercentDiff(price, ma)
	switch {
	case dev > 0:
		return fmt.Sprintf("Close price %.2f%% above MA%d.", dev, window)
	case dev < 0:
		return fmt.Sprintf("Close price %.2f%% below MA%d.", math.Abs(dev), window)
	default:
		return fmt.Sprintf("Close price at MA%d.", window)
	}
}
