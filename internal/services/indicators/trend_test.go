package indicators

import (
	"strings"
	"testing"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

func TestClassifyTrendUptrend(t *testing.T) {
	got, err := ClassifyTrend(TrendInput{
		Symbol: "BTC", Class: models.AssetClassCryptocurrency,
		LastPrice: 108849.60, AsOf: time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		ShortMA: 108810.78, MidMA: 108797.01, ShortWindow: 9, MidWindow: 21, LongWindow: 50,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != models.TrendUptrend {
		t.Fatalf("expected uptrend, got %s", got.Label)
	}
	want := "Bullish trend confirmed. 2025-07-08 close price above both Moving Averages (MA9 and MA21)."
	if got.Diagnosis != want {
		t.Fatalf("unexpected diagnosis: %q", got.Diagnosis)
	}
	if !strings.HasPrefix(got.Summary, "BTC close price is $108,849.60, MA9 is $108,810.78") {
		t.Fatalf("unexpected summary: %q", got.Summary)
	}
}

func TestClassifyTrendLabels(t *testing.T) {
	cases := []struct {
		name       string
		last, s, m float64
		want       models.TrendLabel
	}{
		{"strong up", 110, 100, 100, models.TrendStrongUptrend},
		{"strong down", 90, 100, 100, models.TrendStrongDowntrend},
		{"down", 99, 100, 101, models.TrendDowntrend},
		{"sideways above short", 101, 100, 102, models.TrendSideways},
		{"sideways below short", 99, 100, 98, models.TrendSideways},
	}
	for _, tc := range cases {
		got, err := ClassifyTrend(TrendInput{Symbol: "X", Class: models.AssetClassTraditional, LastPrice: tc.last, ShortMA: tc.s, MidMA: tc.m, ShortWindow: 9, MidWindow: 21})
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.name, err)
		}
		if got.Label != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got.Label)
		}
		if got.Label.StablecoinOnly() {
			t.Fatalf("%s: stablecoin label on non-stablecoin", tc.name)
		}
	}
}

func TestClassifyTrendStablecoin(t *testing.T) {
	got, err := ClassifyTrend(TrendInput{Symbol: "USDC", Class: models.AssetClassStablecoin, LastPrice: 1.007, ShortWindow: 9, MidWindow: 21})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Label != models.TrendDepegRisk {
		t.Fatalf("expected depeg_risk, got %s", got.Label)
	}
	if got.Diagnosis != "Stablecoin showing 0.70% deviation from peg. Monitor for stability." {
		t.Fatalf("unexpected diagnosis: %q", got.Diagnosis)
	}

	got, _ = ClassifyTrend(TrendInput{Symbol: "USDT", Class: models.AssetClassStablecoin, LastPrice: 0.998, ShortWindow: 9, MidWindow: 21})
	if got.Label != models.TrendStable {
		t.Fatalf("expected stable, got %s", got.Label)
	}
}

func TestClassifyTrendLongAlignment(t *testing.T) {
	got, _ := ClassifyTrend(TrendInput{Symbol: "X", LastPrice: 105, ShortMA: 104, MidMA: 103, LongMA: 100, HasLongMA: true, ShortWindow: 9, MidWindow: 21, LongWindow: 50})
	if !strings.Contains(got.Diagnosis, "aligned bullish (MA9 > MA21 > MA50)") {
		t.Fatalf("expected alignment note, got %q", got.Diagnosis)
	}
}

func TestClassifyTrendZeroAverage(t *testing.T) {
	if _, err := ClassifyTrend(TrendInput{Symbol: "X", LastPrice: 1, ShortWindow: 9, MidWindow: 21}); err == nil {
		t.Fatalf("expected degenerate input error")
	}
}
