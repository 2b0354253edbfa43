package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	pkgkafka "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/kafka"
)

// AnalysisRequest is the message consumed from the request topic.
type AnalysisRequest struct {
	PortfolioID string              `json:"portfolio_id"`
	Allocations []models.Allocation `json:"allocations"`
}

// AnalysisRequestHandler consumes analysis requests and runs the portfolio analyzer.
type AnalysisRequestHandler struct {
	topic    string
	analyzer *PortfolioAnalyzer
	metrics  domrepo.Metrics
	l        *applogger.Logger
}

func NewAnalysisRequestHandler(topic string, analyzer *PortfolioAnalyzer, metrics domrepo.Metrics, l *applogger.Logger) *AnalysisRequestHandler {
	if l == nil {
		l = applogger.Nop()
	}
	return &AnalysisRequestHandler{topic: topic, analyzer: analyzer, metrics: metrics, l: l}
}

func (h *AnalysisRequestHandler) Topic() string { return h.topic }

// Handle decodes one request and runs it. A run already in progress for the
// same portfolio is dropped rather than retried, since that run will publish.
func (h *AnalysisRequestHandler) Handle(ctx context.Context, b []byte) error {
	var req AnalysisRequest
	if err := json.Unmarshal(b, &req); err != nil {
		h.recordError("consumer_unmarshal")
		return fmt.Errorf("decode analysis request: %w", err)
	}

	report, err := h.analyzer.Run(ctx, RunParams{PortfolioID: req.PortfolioID, Allocations: req.Allocations})
	if errors.Is(err, ErrRunInProgress) {
		h.l.Info("analysis request skipped, run in progress", applogger.String("portfolio_id", req.PortfolioID))
		return nil
	}
	if err != nil {
		h.recordError("consumer_run")
		return err
	}
	h.l.Debug("analysis request handled", applogger.String("portfolio_id", report.PortfolioID), applogger.String("run_id", report.RunID))
	return nil
}

func (h *AnalysisRequestHandler) recordError(kind string) {
	if h.metrics != nil {
		h.metrics.RecordError(kind)
	}
}

var _ pkgkafka.MessageHandler = (*AnalysisRequestHandler)(nil)
