package indicators

import (
	"strings"
	"testing"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

func TestDiagnoseRSIBands(t *testing.T) {
	cases := []struct {
		v     float64
		class models.AssetClass
		want  string
	}{
		{75, models.AssetClassCryptocurrency, "overbought"},
		{70, models.AssetClassTraditional, "overbought"},
		{25.5, models.AssetClassCryptocurrency, "Strong buying opportunity for BTC."},
		{55, models.AssetClassCryptocurrency, "bullish momentum"},
		{45, models.AssetClassCryptocurrency, "bearish momentum"},
		{50, models.AssetClassStablecoin, "normal for stablecoin"},
		{58, models.AssetClassStablecoin, "elevated for stablecoin"},
		{42, models.AssetClassStablecoin, "low for stablecoin"},
	}
	for _, tc := range cases {
		got := DiagnoseRSI(tc.v, tc.class, "BTC")
		if !strings.Contains(got, tc.want) {
			t.Fatalf("rsi %v (%s): expected %q in %q", tc.v, tc.class, tc.want, got)
		}
	}
	if got := DiagnoseRSI(65.43, models.AssetClassCryptocurrency, "BTC"); !strings.HasPrefix(got, "RSI at 65.43 ") {
		t.Fatalf("unexpected value rendering: %q", got)
	}
}

func TestDiagnoseVolume(t *testing.T) {
	if got := DiagnoseVolume(2.5); got != "Exceptionally high volume (2.5x average). Strong conviction in price movement." {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVolume(1.6); !strings.HasPrefix(got, "Above average volume (1.6x") {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVolume(0.02); !strings.HasPrefix(got, "Below average volume (0.1x") {
		t.Fatalf("expected display floor, got %q", got)
	}
	if got := DiagnoseVolume(1); !strings.HasPrefix(got, "Normal volume levels (1.0x") {
		t.Fatalf("unexpected: %q", got)
	}
}

func TestDiagnoseVWAP(t *testing.T) {
	if got := DiagnoseVWAP(110, 100, models.AssetClassCryptocurrency); !strings.Contains(got, "10.0% above VWAP 100.00. Strong bullish") {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVWAP(97, 100, models.AssetClassCryptocurrency); !strings.Contains(got, "3.0% below VWAP") || !strings.Contains(got, "watch for reversal") {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVWAP(101, 100, models.AssetClassCryptocurrency); !strings.Contains(got, "(+1.0%). Balanced market") {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVWAP(1.0001, 1, models.AssetClassStablecoin); !strings.Contains(got, "trading close to volume-weighted average") {
		t.Fatalf("unexpected: %q", got)
	}
	if got := DiagnoseVWAP(1.01, 1, models.AssetClassStablecoin); !strings.Contains(got, "1.00% deviation") {
		t.Fatalf("unexpected: %q", got)
	}
}
