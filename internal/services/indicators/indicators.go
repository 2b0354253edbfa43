package indicators

import (
	"math"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// Bars passed to MovingAverage, VolumeRatio and VWAP are newest-first.
// RSI expects oldest-first input.

func insufficient(name models.IndicatorName, need, have int) error {
	return &models.IndicatorError{Indicator: name, Required: need, Available: have, Err: models.ErrInsufficientData}
}

// MovingAverage returns the mean close of the newest window bars.
func MovingAverage(bars []models.Bar, window int) (float64, error) {
	name := models.MovingAverageName(window)
	if window <= 0 || len(bars) < window {
		return 0, insufficient(name, window, len(bars))
	}
	sum := 0.0
	for _, b := range bars[:window] {
		sum += b.Close
	}
	return sum / float64(window), nil
}

// RSI computes Wilder's relative strength index over oldest-first bars.
// The first period deltas seed the averages with a simple mean; later deltas
// are smoothed as avg = (avg*(period-1) + x) / period. The result is rounded to 2 dp.
func RSI(bars []models.Bar, period int) (float64, error) {
	if period <= 0 || len(bars) < period+1 {
		return 0, insufficient(models.IndicatorRSI, period+1, len(bars))
	}

	gains := make([]float64, 0, len(bars)-1)
	losses := make([]float64, 0, len(bars)-1)
	for i := 1; i < len(bars); i++ {
		d := bars[i].Close - bars[i-1].Close
		gains = append(gains, math.Max(d, 0))
		losses = append(losses, math.Max(-d, 0))
	}

	p := float64(period)
	avgGain, avgLoss := 0.0, 0.0
	for i := 0; i < period; i++ {
		avgGain += gains[i]
		avgLoss += losses[i]
	}
	avgGain /= p
	avgLoss /= p

	for i := period; i < len(gains); i++ {
		avgGain = (avgGain*(p-1) + gains[i]) / p
		avgLoss = (avgLoss*(p-1) + losses[i]) / p
	}

	if avgLoss == 0 {
		return 100, nil
	}
	rs := avgGain / avgLoss
	return Round(100-100/(1+rs), 2), nil
}

// VolumeStats is the raw material for the volume ratio indicator.
type VolumeStats struct {
	Current float64
	Average float64
	Ratio   float64
}

// VolumeRatio compares the newest bar's volume with the mean volume of the newest period bars.
// A zero average yields a zero ratio rather than an error.
func VolumeRatio(bars []models.Bar, period int) (VolumeStats, error) {
	if period <= 0 || len(bars) < period {
		return VolumeStats{}, insufficient(models.IndicatorVolumeRatio, period, len(bars))
	}
	sum := 0.0
	for _, b := range bars[:period] {
		sum += b.Volume
	}
	st := VolumeStats{Current: bars[0].Volume, Average: sum / float64(period)}
	if st.Average > 0 {
		st.Ratio = Round(st.Current/st.Average, 2)
	}
	return st, nil
}

// VWAP returns the volume weighted typical price over the newest period bars, rounded to 6 dp.
func VWAP(bars []models.Bar, period int) (float64, error) {
	if period <= 0 || len(bars) < period {
		return 0, insufficient(models.IndicatorVWAP, period, len(bars))
	}
	pv, vol := 0.0, 0.0
	for _, b := range bars[:period] {
		pv += b.TypicalPrice() * b.Volume
		vol += b.Volume
	}
	if vol == 0 {
		return 0, &models.IndicatorError{Indicator: models.IndicatorVWAP, Required: period, Available: len(bars), Err: models.ErrDegenerateInput}
	}
	return Round(pv/vol, 6), nil
}

// Round rounds v half away from zero to dp decimal places.
func Round(v float64, dp int) float64 {
	pow := math.Pow(10, float64(dp))
	return math.Round(v*pow) / pow
}

// PercentDiff returns (a-b)/b*100.
func PercentDiff(a, b float64) float64 {
	return (a - b) / b * 100
}
