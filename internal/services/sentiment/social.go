package sentiment

import (
	"math"
	"sort"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
)

// SocialPolicy favors the newest posts and lightly boosts posts with engagement.
type SocialPolicy struct {
	Thresholds      Thresholds
	FullConfidence  int
	ConfidenceFloor float64
	RecentTop       int     // newest posts that receive RecentWeight
	RecentWeight    float64
	EngagementCap   float64 // maximum extra weight from engagement
	RecentWindow    time.Duration
}

func NewSocialPolicy() *SocialPolicy {
	return &SocialPolicy{
		Thresholds:      Thresholds{Positive: 0.55, Neutral: 0.45},
		FullConfidence:  5,
		ConfidenceFloor: 0.7,
		RecentTop:       3,
		RecentWeight:    1.1,
		EngagementCap:   0.1,
		RecentWindow:    10 * 24 * time.Hour,
	}
}

func (p *SocialPolicy) Kind() models.SentimentKind { return models.SentimentSocial }

func (p *SocialPolicy) Categorize(score float64) models.SentimentCategory {
	return p.Thresholds.Categorize(score)
}

// EngagementWeight is 1 + min((0.3*score + 0.2*comments + 0.1*ups) / 1000, limit).
// A downvoted post weighs less than 1.
func EngagementWeight(score, comments, ups int, limit float64) float64 {
	e := 0.3*float64(score) + 0.2*float64(comments) + 0.1*float64(ups)
	return 1 + math.Min(e/1000, limit)
}

func (p *SocialPolicy) Aggregate(asset string, items []models.SentimentItem, now time.Time) models.AssetSentimentSummary {
	if len(items) == 0 {
		return emptySummary(asset, p.Kind())
	}

	sorted := append([]models.SentimentItem(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAt.After(sorted[j].CreatedAt)
	})

	out := models.AssetSentimentSummary{Asset: asset, Kind: p.Kind(), TotalItems: len(sorted)}
	cutoff := now.Add(-p.RecentWindow)

	var sum, pos, neg, neu float64
	for i, it := range sorted {
		raw := NormalizeTriple(it.Positive, it.Negative)
		weight := 1.0
		if i < p.RecentTop {
			weight = p.RecentWeight
		}
		weight *= EngagementWeight(it.Score, it.NumComments, it.Ups, p.EngagementCap)
		sum += raw * weight

		pos += it.Positive
		neg += it.Negative
		neu += it.Neutral
		if !it.CreatedAt.IsZero() && it.CreatedAt.After(cutoff) {
			out.RecentItems++
		}
		out.TotalEngagement += it.Score
		out.TotalComments += it.NumComments
		out.TotalUps += it.Ups
	}

	n := float64(len(sorted))
	confidence := clamp(n/float64(p.FullConfidence), p.ConfidenceFloor, 1)
	out.Score = round(clamp01(sum/n*confidence), 4)
	out.Category = p.Categorize(out.Score)
	out.Confidence = round(confidence, 2)
	out.AveragePositive = round(pos/n, 4)
	out.AverageNegative = round(neg/n, 4)
	out.AverageNeutral = round(neu/n, 4)
	mr := sorted[0]
	out.MostRecent = &mr
	return out
}
