package models

import "time"

// SentimentKind names the weighting policy a summary was produced with.
type SentimentKind string

const (
	SentimentNews   SentimentKind = "news"
	SentimentSocial SentimentKind = "social"
)

// SentimentItem is one pre-scored news article or social post.
// Scored is false when the upstream scorer produced no probability triple.
type SentimentItem struct {
	Asset       string    `json:"asset"`
	Title       string    `json:"title,omitempty"`
	Source      string    `json:"source,omitempty"`
	URL         string    `json:"url,omitempty"`
	Positive    float64   `json:"positive"`
	Negative    float64   `json:"negative"`
	Neutral     float64   `json:"neutral"`
	Scored      bool      `json:"scored"`
	Score       int       `json:"score,omitempty"`
	NumComments int       `json:"num_comments,omitempty"`
	Ups         int       `json:"ups,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type SentimentCategory string

const (
	SentimentPositive SentimentCategory = "Positive"
	SentimentNeutral  SentimentCategory = "Neutral"
	SentimentNegative SentimentCategory = "Negative"
)

// AssetSentimentSummary is the aggregate of all items for one asset under one policy.
type AssetSentimentSummary struct {
	Asset           string            `json:"asset"`
	Kind            SentimentKind     `json:"kind"`
	Score           float64           `json:"final_sentiment_score"`
	Category        SentimentCategory `json:"sentiment_category"`
	Confidence      float64           `json:"confidence"`
	TotalItems      int               `json:"total_items"`
	AveragePositive float64           `json:"average_positive"`
	AverageNegative float64           `json:"average_negative"`
	AverageNeutral  float64           `json:"average_neutral"`

	RecentItems     int `json:"recent_items,omitempty"`
	TotalEngagement int `json:"total_engagement_score,omitempty"`
	TotalComments   int `json:"total_comments,omitempty"`
	TotalUps        int `json:"total_ups,omitempty"`

	MostRecent *SentimentItem `json:"most_recent,omitempty"`
}

// SentimentOverview counts categories across a portfolio's summaries.
type SentimentOverview struct {
	Kind      SentimentKind `json:"kind"`
	Positive  int           `json:"positive"`
	Neutral   int           `json:"neutral"`
	Negative  int           `json:"negative"`
	Total     int           `json:"total"`
	Diagnosis string        `json:"diagnosis"`
}
