package repository

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	xhttp "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/http"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/util"
)

// HTTPSentimentSource fetches scored items from a remote sentiment service.
// GET {baseURL}{path}?asset=X&limit=N answers {"items": [...]}.
type HTTPSentimentSource struct {
	baseURL string
	path    string
	limit   int
	client  *xhttp.Client
	l       *applogger.Logger
}

var _ domrepo.SentimentSource = (*HTTPSentimentSource)(nil)

type remoteItem struct {
	Asset       string   `json:"asset"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	URL         string   `json:"url"`
	Positive    *float64 `json:"positive"`
	Negative    *float64 `json:"negative"`
	Neutral     *float64 `json:"neutral"`
	Score       int      `json:"score"`
	NumComments int      `json:"num_comments"`
	Ups         int      `json:"ups"`
	CreatedAt   string   `json:"created_at"`
}

type remoteResponse struct {
	Items []remoteItem `json:"items"`
}

func NewHTTPSentimentSource(baseURL, path string, limit int, timeout time.Duration, attempts int) *HTTPSentimentSource {
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	if limit <= 0 {
		limit = 100
	}
	return &HTTPSentimentSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		path:    path,
		limit:   limit,
		client: xhttp.NewClient(
			xhttp.WithTimeout(timeout),
			xhttp.WithRetry(attempts, 50*time.Millisecond),
			xhttp.WithUserAgent("capitalmarkets-agents"),
		),
		l: applogger.Nop(),
	}
}

// SetLogger injects a structured logger.
func (s *HTTPSentimentSource) SetLogger(l *applogger.Logger) { s.l = l }

func (s *HTTPSentimentSource) FetchSentimentItems(ctx context.Context, asset string) ([]models.SentimentItem, error) {
	if s.baseURL == "" {
		return nil, models.AdapterError("fetch sentiment items", fmt.Errorf("sentiment service url not configured"))
	}
	start := time.Now()
	var resp remoteResponse
	err := s.client.SendAndParseWithRetry(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    s.baseURL + s.path,
		Headers: map[string]string{
			"Accept": "application/json",
		},
		QueryParams: map[string][]string{
			"asset": {asset},
			"limit": {strconv.Itoa(s.limit)},
		},
	}, &resp)
	if err != nil {
		s.l.Error("sentiment service request failed", applogger.String("path", s.path), applogger.String("asset", asset), applogger.Error(err))
		return nil, models.AdapterError("get "+s.path, err)
	}

	out := make([]models.SentimentItem, 0, len(resp.Items))
	for _, ri := range resp.Items {
		out = append(out, ri.toItem())
	}
	s.l.Debug("sentiment service ok",
		applogger.String("path", s.path),
		applogger.String("asset", asset),
		applogger.Int("items", len(out)),
		applogger.Duration("duration_ms", time.Since(start)),
	)
	return out, nil
}

func (ri remoteItem) toItem() models.SentimentItem {
	it := models.SentimentItem{
		Asset:       strings.ToUpper(strings.TrimSpace(ri.Asset)),
		Title:       ri.Title,
		Source:      ri.Source,
		URL:         ri.URL,
		Scored:      ri.Positive != nil || ri.Negative != nil || ri.Neutral != nil,
		Score:       ri.Score,
		NumComments: ri.NumComments,
		Ups:         ri.Ups,
	}
	if ri.Positive != nil {
		it.Positive = *ri.Positive
	}
	if ri.Negative != nil {
		it.Negative = *ri.Negative
	}
	if ri.Neutral != nil {
		it.Neutral = *ri.Neutral
	}
	it.CreatedAt = util.ParseTimeDefault(ri.CreatedAt, time.Time{})
	return it
}
