package sentiment

import (
	"math"
	"testing"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

var now = time.Date(2025, 7, 10, 12, 0, 0, 0, time.UTC)

func scored(asset string, pos, neg float64, age time.Duration) models.SentimentItem {
	return models.SentimentItem{Asset: asset, Positive: pos, Negative: neg, Neutral: math.Max(0, 1-pos-neg), Scored: true, CreatedAt: now.Add(-age)}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestNewsSingleStrongItemIsDampedByConfidence(t *testing.T) {
	got := NewNewsPolicy().Aggregate("BTC", []models.SentimentItem{scored("BTC", 0.8, 0.1, time.Hour)}, now)
	if !near(got.Score, 0.54) {
		t.Fatalf("expected 0.54, got %v", got.Score)
	}
	if got.Confidence != 0.6 {
		t.Fatalf("expected confidence 0.6, got %v", got.Confidence)
	}
	if got.Category != models.SentimentNeutral {
		t.Fatalf("expected Neutral, got %s", got.Category)
	}
}

func TestNewsFullConfidence(t *testing.T) {
	items := []models.SentimentItem{
		scored("BTC", 0.8, 0.1, time.Hour),
		scored("BTC", 0.8, 0.1, 2*time.Hour),
		scored("BTC", 0.8, 0.1, 3*time.Hour),
	}
	got := NewNewsPolicy().Aggregate("BTC", items, now)
	if !near(got.Score, 0.9) || got.Category != models.SentimentPositive || got.Confidence != 1 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if got.MostRecent == nil || !got.MostRecent.CreatedAt.Equal(now.Add(-time.Hour)) {
		t.Fatalf("unexpected most recent: %+v", got.MostRecent)
	}
}

func TestNewsBiasCorrection(t *testing.T) {
	items := []models.SentimentItem{
		scored("ETH", 0.3, 0.2, time.Hour),
		scored("ETH", 0.3, 0.2, time.Hour),
		scored("ETH", 0.3, 0.2, time.Hour),
	}
	// 0.55 per item, +0.012 per item, +0.012 on the mean
	got := NewNewsPolicy().Aggregate("ETH", items, now)
	if !near(got.Score, 0.574) {
		t.Fatalf("expected 0.574, got %v", got.Score)
	}
}

func TestNewsUnscoredItems(t *testing.T) {
	got := NewNewsPolicy().Aggregate("SPY", []models.SentimentItem{{Asset: "SPY"}}, now)
	if got.TotalItems != 1 || got.AveragePositive != 0.33 || got.AverageNegative != 0.33 {
		t.Fatalf("unexpected summary: %+v", got)
	}
	if !near(got.Score, 0.3) {
		t.Fatalf("expected neutral item damped to 0.3, got %v", got.Score)
	}
}

func TestEmptyInputDefaults(t *testing.T) {
	for _, p := range []WeightingPolicy{NewNewsPolicy(), NewSocialPolicy()} {
		got := p.Aggregate("XYZ", nil, now)
		if got.Score != 0.5 || got.Confidence != 0.5 || got.Category != models.SentimentNeutral || got.TotalItems != 0 {
			t.Fatalf("%s: unexpected default: %+v", p.Kind(), got)
		}
	}
}

func TestScoresStayBounded(t *testing.T) {
	var items []models.SentimentItem
	for p := 0; p <= 10; p++ {
		for n := 0; n <= 10-p; n++ {
			it := scored("A", float64(p)/10, float64(n)/10, time.Duration(p+n)*time.Hour)
			it.Score, it.NumComments, it.Ups = 50000, 9000, 100000
			items = append(items, it)
		}
	}
	for _, pol := range []WeightingPolicy{NewNewsPolicy(), NewSocialPolicy()} {
		for i := range items {
			got := pol.Aggregate("A", items[i:i+1], now)
			if got.Score < 0 || got.Score > 1 {
				t.Fatalf("%s: score out of range for %+v: %v", pol.Kind(), items[i], got.Score)
			}
		}
		got := pol.Aggregate("A", items, now)
		if got.Score < 0 || got.Score > 1 || got.Confidence < 0 || got.Confidence > 1 {
			t.Fatalf("%s: aggregate out of range: %+v", pol.Kind(), got)
		}
	}
}

func TestNewsBiasCorrectionIsAdditive(t *testing.T) {
	items := []models.SentimentItem{
		scored("BTC", 0.19, 0.01, time.Hour),
		scored("BTC", 0.19, 0.01, 2*time.Hour),
		scored("BTC", 0.19, 0.01, 3*time.Hour),
	}
	got := NewNewsPolicy().Aggregate("BTC", items, now)
	// 0.595 + 0.18*0.12 at full confidence.
	if !near(got.Score, 0.6166) {
		t.Fatalf("expected 0.6166, got %v", got.Score)
	}
	if got.Confidence != 1 || got.Category != models.SentimentPositive {
		t.Fatalf("expected confidence 1 and Positive, got %v %s", got.Confidence, got.Category)
	}
}

func TestCategoryMonotoneInScore(t *testing.T) {
	rank := map[models.SentimentCategory]int{models.SentimentNegative: 0, models.SentimentNeutral: 1, models.SentimentPositive: 2}
	for _, pol := range []WeightingPolicy{NewNewsPolicy(), NewSocialPolicy()} {
		prev := -1
		for i := 0; i <= 1000; i++ {
			r := rank[pol.Categorize(float64(i)/1000)]
			if r < prev {
				t.Fatalf("%s: category dropped at score %v", pol.Kind(), float64(i)/1000)
			}
			prev = r
		}
	}
}

func TestEngagementWeight(t *testing.T) {
	if w := EngagementWeight(100, 50, 90, 0.1); !near(w, 1.049) {
		t.Fatalf("expected 1.049, got %v", w)
	}
	if w := EngagementWeight(1_000_000, 0, 0, 0.1); !near(w, 1.1) {
		t.Fatalf("expected cap 1.1, got %v", w)
	}
	if w := EngagementWeight(-500, 0, 0, 0.1); !near(w, 0.85) {
		t.Fatalf("expected downvoted weight 0.85, got %v", w)
	}
}

func TestSocialRecencyAndTotals(t *testing.T) {
	items := []models.SentimentItem{
		scored("BTC", 0.5, 0.2, 20*24*time.Hour),
		scored("BTC", 0.8, 0.1, 24*time.Hour),
		scored("BTC", 0.6, 0.2, 5*24*time.Hour),
	}
	items[0].Score, items[1].NumComments, items[2].Ups = 10, 20, 30

	got := NewSocialPolicy().Aggregate("BTC", items, now)
	if got.RecentItems != 2 {
		t.Fatalf("expected 2 recent items, got %d", got.RecentItems)
	}
	if got.TotalEngagement != 10 || got.TotalComments != 20 || got.TotalUps != 30 {
		t.Fatalf("unexpected totals: %+v", got)
	}
	if got.MostRecent == nil || got.MostRecent.Positive != 0.8 {
		t.Fatalf("expected newest post as most recent, got %+v", got.MostRecent)
	}
	if got.Confidence != 0.7 {
		t.Fatalf("expected confidence floor 0.7, got %v", got.Confidence)
	}
}

func TestSocialSingleItem(t *testing.T) {
	got := NewSocialPolicy().Aggregate("BTC", []models.SentimentItem{scored("BTC", 0.8, 0.1, time.Hour)}, now)
	// 0.9 raw, 1.1 recency weight, 0.7 confidence
	if !near(got.Score, 0.693) || got.Category != models.SentimentPositive {
		t.Fatalf("unexpected summary: %+v", got)
	}
}

func TestThresholdsArePolicySpecific(t *testing.T) {
	if c := NewNewsPolicy().Categorize(0.58); c != models.SentimentNeutral {
		t.Fatalf("news 0.58: expected Neutral, got %s", c)
	}
	if c := NewSocialPolicy().Categorize(0.58); c != models.SentimentPositive {
		t.Fatalf("social 0.58: expected Positive, got %s", c)
	}
	if c := NewSocialPolicy().Categorize(0.44); c != models.SentimentNegative {
		t.Fatalf("social 0.44: expected Negative, got %s", c)
	}
	if c := NewNewsPolicy().Categorize(0.44); c != models.SentimentNeutral {
		t.Fatalf("news 0.44: expected Neutral, got %s", c)
	}
}

func TestSocialDownvotedPostWeighsLess(t *testing.T) {
	neutral := scored("BTC", 0.8, 0.1, time.Hour)
	downvoted := neutral
	downvoted.Score = -500

	pol := NewSocialPolicy()
	base := pol.Aggregate("BTC", []models.SentimentItem{neutral}, now).Score
	got := pol.Aggregate("BTC", []models.SentimentItem{downvoted}, now).Score
	if got >= base {
		t.Fatalf("expected downvoted score below %v, got %v", base, got)
	}
}
