package api

import (
	"context"
	"errors"
	"time"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	apimetrics "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/service/metrics"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/service/ratelimit"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/service/reportfeed"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/usecase"
	xhttp "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/http"
	xlogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"

	"github.com/labstack/echo/v4"
)

// Probe checks one backing dependency for readiness.
type Probe func(ctx context.Context) error

// Probes maps a dependency name to its readiness check.
type Probes map[string]Probe

// AnalysisHandler serves the indicator, sentiment and portfolio endpoints.
type AnalysisHandler struct {
	logger    *xlogger.Logger
	insights  *usecase.InsightsUseCase
	portfolio *usecase.PortfolioAnalyzer
	bars      *usecase.BarsUseCase
	limiter   *ratelimit.Limiter
	feed      *reportfeed.Hub
	probes    Probes
}

func NewAnalysisHandler(
	logger *xlogger.Logger,
	insights *usecase.InsightsUseCase,
	portfolio *usecase.PortfolioAnalyzer,
	bars *usecase.BarsUseCase,
	limiter *ratelimit.Limiter,
	feed *reportfeed.Hub,
	probes Probes,
) *AnalysisHandler {
	apimetrics.Register()
	return &AnalysisHandler{
		logger:    logger,
		insights:  insights,
		portfolio: portfolio,
		bars:      bars,
		limiter:   limiter,
		feed:      feed,
		probes:    probes,
	}
}

func (h *AnalysisHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Healthz)
	e.GET("/readyz", h.Readyz)
	if h.feed != nil {
		e.GET("/ws/reports", h.feed.ServeWS)
	}

	g := e.Group("/api")
	g.GET("/indicators", h.Indicators)
	g.GET("/sentiment/news", h.NewsSentiment)
	g.GET("/sentiment/social", h.SocialSentiment)
	g.GET("/bars", h.Bars)
	g.GET("/portfolio/report", h.LatestReport)
	g.POST("/portfolio/analyze", h.AnalyzePortfolio)
}

func (h *AnalysisHandler) Indicators(c echo.Context) error {
	defer observe("indicators", time.Now())
	req := &models.IndicatorsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}
	class, err := models.ParseAssetClass(req.AssetClass)
	if err != nil {
		return h.fail(c, "indicators", xhttp.BadRequestError(err.Error()))
	}

	res, err := h.insights.Indicators(c.Request().Context(), req.Symbol, class)
	if err != nil {
		h.logger.Error("indicators usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.fail(c, "indicators", err)
	}
	c.Response().Header().Set(echo.HeaderCacheControl, "private, max-age=15")
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) NewsSentiment(c echo.Context) error {
	return h.sentiment(c, models.SentimentNews)
}

func (h *AnalysisHandler) SocialSentiment(c echo.Context) error {
	return h.sentiment(c, models.SentimentSocial)
}

func (h *AnalysisHandler) sentiment(c echo.Context, kind models.SentimentKind) error {
	endpoint := "sentiment_" + string(kind)
	defer observe(endpoint, time.Now())
	req := &models.SentimentRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.insights.Sentiment(c.Request().Context(), kind, req.Asset)
	if err != nil {
		h.logger.Error("sentiment usecase error", xlogger.String("asset", req.Asset), xlogger.String("kind", string(kind)), xlogger.Error(err))
		return h.fail(c, endpoint, err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Bars(c echo.Context) error {
	defer observe("bars", time.Now())
	req := &models.BarsRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.bars.GetBars(c.Request().Context(), usecase.GetBarsParams{
		Symbol: req.Symbol,
		Count:  req.Count,
		Order:  domrepo.ParseBarOrder(req.Order),
	})
	if err != nil {
		h.logger.Error("bars usecase error", xlogger.String("symbol", req.Symbol), xlogger.Error(err))
		return h.fail(c, "bars", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) LatestReport(c echo.Context) error {
	defer observe("portfolio_report", time.Now())
	req := &models.LatestReportRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.portfolio.Latest(c.Request().Context(), req.PortfolioID)
	if err != nil {
		return h.fail(c, "portfolio_report", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) AnalyzePortfolio(c echo.Context) error {
	defer observe("portfolio_analyze", time.Now())
	if h.limiter != nil && !h.limiter.Allow(c.RealIP()) {
		apimetrics.Throttled.WithLabelValues("portfolio_analyze").Inc()
		return h.fail(c, "portfolio_analyze", xhttp.TooManyRequestsError("too many analysis requests, retry later", h.limiter.RetryAfter()))
	}
	req := &models.AnalyzePortfolioRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	res, err := h.portfolio.Run(c.Request().Context(), usecase.RunParams{
		PortfolioID: req.PortfolioID,
		Allocations: req.Allocations,
	})
	if err != nil {
		h.logger.Error("portfolio usecase error", xlogger.String("portfolio_id", req.PortfolioID), xlogger.Error(err))
		return h.fail(c, "portfolio_analyze", err)
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisHandler) Healthz(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

// Readyz pings every configured dependency and answers 503 when any fails.
func (h *AnalysisHandler) Readyz(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	checks := make(map[string]string, len(h.probes))
	ready := true
	for name, probe := range h.probes {
		if err := probe(ctx); err != nil {
			checks[name] = err.Error()
			ready = false
			continue
		}
		checks[name] = "ok"
	}
	if !ready {
		h.logger.Warn("readiness check failed", xlogger.Any("checks", checks))
		return xhttp.ServiceUnavailableResponse(c, checks)
	}
	return xhttp.SuccessResponse(c, checks)
}

func (h *AnalysisHandler) fail(c echo.Context, endpoint string, err error) error {
	appErr := toAppError(err)
	apimetrics.APIErrors.WithLabelValues(endpoint, appErr.Code).Inc()
	return xhttp.AppErrorResponse(c, appErr)
}

// toAppError maps domain errors onto HTTP statuses.
func toAppError(err error) *xhttp.AppError {
	var appErr *xhttp.AppError
	switch {
	case errors.As(err, &appErr):
		return appErr
	case errors.Is(err, models.ErrInsufficientData):
		return xhttp.UnprocessableError("ERR_INSUFFICIENT_DATA", "insufficient data").WithError(err)
	case errors.Is(err, models.ErrDegenerateInput):
		return xhttp.UnprocessableError("ERR_DEGENERATE_INPUT", "degenerate input").WithError(err)
	case errors.Is(err, models.ErrAdapterFailure):
		return xhttp.BadGatewayError("upstream data source failed").WithError(err)
	case errors.Is(err, usecase.ErrRunInProgress):
		return xhttp.ConflictError("an analysis of this portfolio is already running").WithError(err)
	case errors.Is(err, usecase.ErrEmptyPortfolio):
		return xhttp.BadRequestError("portfolio has no allocations").WithError(err)
	case errors.Is(err, domrepo.ErrReportNotFound):
		return xhttp.NotFoundError("no report stored for this portfolio").WithError(err)
	default:
		return xhttp.InternalError("internal error").WithError(err)
	}
}

func observe(endpoint string, start time.Time) {
	apimetrics.APILatency.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
}

var _ xhttp.Handler = (*AnalysisHandler)(nil)
