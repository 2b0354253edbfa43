package di

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	domsvc "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/service"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/handler/api"
	mid "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/middleware"
	internalrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/repository"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/service/ratelimit"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/service/reportfeed"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/services/indicators"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/services/sentiment"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/usecase"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/cache"
	pkgch "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/clickhouse"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/config"
	xhttp "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/http"
	pkgkafka "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/kafka"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/metrics"
	pkgpg "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/postgres"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/server"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// Version is stamped at build time with -ldflags "-X .../internal/di.Version=...".
var Version = "dev"

const schemaTimeout = 10 * time.Second

// Summarizers holds the two sentiment kinds so wire can tell them apart.
type Summarizers struct {
	News   domsvc.SentimentSummarizer
	Social domsvc.SentimentSummarizer
}

// ProvideLogger creates the application logger from the log section.
func ProvideLogger(cfg *config.Config) (*applogger.Logger, error) {
	l, err := applogger.New(&applogger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}
	return l.With(applogger.String("env", cfg.Environment)), nil
}

// ProvideTracer installs the global tracer provider. Disabled tracing keeps no-op spans.
// The App shuts the provider down after the servers stop.
func ProvideTracer(cfg *config.Config) (*tracing.Provider, error) {
	p, err := tracing.Init(tracing.Config{
		Enabled:        cfg.Tracing.Enabled,
		ServiceName:    cfg.Tracing.ServiceName,
		ServiceVersion: Version,
		Output:         cfg.Tracing.Output,
		PrettyPrint:    cfg.Tracing.PrettyPrint,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing: %w", err)
	}
	return p, nil
}

// ProvideMetrics creates a Prometheus metrics recorder. With metrics disabled the
// recorder writes to a private registry that /metrics never exposes.
func ProvideMetrics(cfg *config.Config) domrepo.Metrics {
	if !cfg.Metrics.Enabled {
		return metrics.NewWithRegisterer(prometheus.NewRegistry())
	}
	return metrics.New()
}

// ProvideClickHouseClient creates a ClickHouse client and optionally creates the bar tables.
func ProvideClickHouseClient(cfg *config.Config, l *applogger.Logger) (*pkgch.Client, func(), error) {
	client, err := pkgch.NewClient(
		pkgch.WithHost(cfg.ClickHouse.Host),
		pkgch.WithPort(cfg.ClickHouse.Port),
		pkgch.WithDatabase(cfg.ClickHouse.Database),
		pkgch.WithCredentials(cfg.ClickHouse.User, cfg.ClickHouse.Password),
		pkgch.WithMaxConnections(cfg.ClickHouse.MaxOpenConns, cfg.ClickHouse.MaxIdleConns),
		pkgch.WithHTTP(cfg.ClickHouse.UseHTTP),
		pkgch.WithCompression(cfg.ClickHouse.Compression),
		pkgch.WithTimeouts(cfg.ClickHouse.DialTimeout, cfg.ClickHouse.ReadTimeout),
		pkgch.WithMaxExecutionTime(cfg.ClickHouse.MaxExecutionTime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("clickhouse client: %w", err)
	}

	if cfg.ClickHouse.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		if err := client.InitSchema(ctx, internalrepo.BarSchema(cfg.ClickHouse.Database)); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("clickhouse schema: %w", err)
		}
		l.Info("clickhouse schema ready", applogger.String("database", cfg.ClickHouse.Database))
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("clickhouse close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideBarRepository reads bars from ClickHouse behind the validating, throttling guard.
func ProvideBarRepository(ch *pkgch.Client, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) domrepo.BarRepository {
	store := internalrepo.NewCHBarStore(ch, cfg.ClickHouse.Database, domrepo.NormalizeInterval(cfg.Analysis.Interval))
	store.SetLogger(l)
	return mid.NewBarGuard(store,
		mid.WithRate(cfg.Analysis.BarRate, cfg.Analysis.BarBurst),
		mid.WithMaxCount(cfg.Analysis.MaxBars),
		mid.WithGuardMetrics(m),
		mid.WithGuardLogger(l),
	)
}

// ProvidePostgresClient opens the sentiment item database. It returns nil when no DSN is configured.
func ProvidePostgresClient(cfg *config.Config, l *applogger.Logger) (*pkgpg.Client, func(), error) {
	if cfg.Postgres.DSN == "" {
		return nil, func() {}, nil
	}
	client, err := pkgpg.NewClient(
		pkgpg.WithDSN(cfg.Postgres.DSN),
		pkgpg.WithMaxConnections(cfg.Postgres.MaxOpenConns, cfg.Postgres.MaxIdleConns),
		pkgpg.WithConnMaxLifetime(cfg.Postgres.ConnMaxLifetime),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("postgres client: %w", err)
	}

	if cfg.Postgres.InitSchema {
		ctx, cancel := context.WithTimeout(context.Background(), schemaTimeout)
		defer cancel()
		var stmts []string
		for _, src := range []config.SentimentSource{cfg.Sentiment.News, cfg.Sentiment.Social} {
			if src.Backend == "postgres" {
				stmts = append(stmts, internalrepo.SentimentSchema(src.Table)...)
			}
		}
		if err := client.InitSchema(ctx, stmts); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("postgres schema: %w", err)
		}
	}

	cleanup := func() {
		if err := client.Close(); err != nil {
			l.Warn("postgres close error", applogger.Error(err))
		}
	}
	return client, cleanup, nil
}

// ProvideSummarizers builds the news and social aggregators over their configured sources.
func ProvideSummarizers(cfg *config.Config, pg *pkgpg.Client, l *applogger.Logger, m domrepo.Metrics) (Summarizers, error) {
	news, err := sentimentSource(cfg.Sentiment.News, cfg.Sentiment.MaxItems, pg, l)
	if err != nil {
		return Summarizers{}, fmt.Errorf("news source: %w", err)
	}
	social, err := sentimentSource(cfg.Sentiment.Social, cfg.Sentiment.MaxItems, pg, l)
	if err != nil {
		return Summarizers{}, fmt.Errorf("social source: %w", err)
	}
	return Summarizers{
		News:   sentiment.NewAggregator(news, sentiment.NewNewsPolicy(), sentiment.WithLogger(l), sentiment.WithMetrics(m)),
		Social: sentiment.NewAggregator(social, sentiment.NewSocialPolicy(), sentiment.WithLogger(l), sentiment.WithMetrics(m)),
	}, nil
}

func sentimentSource(src config.SentimentSource, limit int, pg *pkgpg.Client, l *applogger.Logger) (domrepo.SentimentSource, error) {
	switch src.Backend {
	case "postgres":
		if pg == nil {
			return nil, fmt.Errorf("postgres backend without a postgres client")
		}
		s, err := internalrepo.NewPGSentimentSource(pg, src.Table, limit)
		if err != nil {
			return nil, err
		}
		s.SetLogger(l)
		return s, nil
	case "http":
		s := internalrepo.NewHTTPSentimentSource(src.URL, src.Path, limit, src.Timeout, src.Attempts)
		s.SetLogger(l)
		return s, nil
	default:
		return internalrepo.EmptySentimentSource{}, nil
	}
}

// ProvideTechnicalAnalyzer creates the indicator engine.
func ProvideTechnicalAnalyzer(bars domrepo.BarRepository, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) domsvc.TechnicalAnalyzer {
	a := cfg.Analysis
	return indicators.NewEngine(bars, indicators.Config{
		ShortMA:      a.ShortMA,
		MidMA:        a.MidMA,
		LongMA:       a.LongMA,
		RSIPeriod:    a.RSIPeriod,
		VolumePeriod: a.VolumePeriod,
		VWAPPeriod:   a.VWAPPeriod,
	}, indicators.WithLogger(l), indicators.WithMetrics(m))
}

// ProvideCache returns Redis when enabled, otherwise an in-process cache.
func ProvideCache(cfg *config.Config, l *applogger.Logger) (cache.Service, func(), error) {
	if !cfg.Redis.Enabled {
		l.Warn("redis disabled, reports and run locks are process-local")
		return cache.NewMemoryCache(), func() {}, nil
	}
	c, err := cache.NewRedisCache(
		cache.WithRedisAddr(cfg.Redis.Addr),
		cache.WithRedisPassword(cfg.Redis.Password),
		cache.WithRedisDB(cfg.Redis.DB),
		cache.WithRedisPool(cfg.Redis.PoolSize, cfg.Redis.MinIdleConns, cfg.Redis.PoolTimeout),
		cache.WithRedisPrefix(cfg.Redis.Prefix),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("redis cache: %w", err)
	}
	cleanup := func() {
		if err := c.Close(); err != nil {
			l.Warn("redis close error", applogger.Error(err))
		}
	}
	return c, cleanup, nil
}

// ProvideReportStore keeps the latest report per portfolio.
func ProvideReportStore(c cache.Service, cfg *config.Config, l *applogger.Logger) domrepo.ReportStore {
	s := internalrepo.NewRedisReportStore(c, cfg.Redis.ReportTTL)
	s.SetLogger(l)
	return s
}

// ProvideKafkaProducer creates the report producer. It returns nil when publishing is disabled.
func ProvideKafkaProducer(cfg *config.Config) (*pkgkafka.Producer, error) {
	if !cfg.Kafka.Producer.Enabled {
		return nil, nil
	}
	p := cfg.Kafka.Producer
	producer, err := pkgkafka.NewProducer(
		pkgkafka.WithBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithCompression(p.Compression),
		pkgkafka.WithRequiredAcks(p.RequiredAcks),
		pkgkafka.WithMaxAttempts(p.MaxAttempts),
		pkgkafka.WithWriteTimeout(p.WriteTimeout),
		pkgkafka.WithBatchTimeout(p.BatchTimeout),
		pkgkafka.WithHashByKey(true),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka producer: %w", err)
	}
	return producer, nil
}

// ProvideReportPublisher wraps the producer. The publisher owns the producer and closes it.
func ProvideReportPublisher(producer *pkgkafka.Producer, cfg *config.Config, l *applogger.Logger) (domrepo.ReportPublisher, func()) {
	if producer == nil {
		return nil, func() {}
	}
	pub := internalrepo.NewKafkaReportPublisher(producer, cfg.Kafka.Producer.ReportTopic)
	pub.SetLogger(l)
	cleanup := func() {
		if err := pub.Close(); err != nil {
			l.Warn("kafka producer close error", applogger.Error(err))
		}
	}
	return pub, cleanup
}

// ProvideReportFeed creates the websocket hub that streams finished reports.
func ProvideReportFeed(l *applogger.Logger) (*reportfeed.Hub, func()) {
	hub := reportfeed.NewHub(reportfeed.WithLogger(l))
	return hub, func() { _ = hub.Close() }
}

// ProvideAssetAnalyzer combines the technical engine with both sentiment kinds.
func ProvideAssetAnalyzer(tech domsvc.TechnicalAnalyzer, sums Summarizers, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) *usecase.AssetAnalyzer {
	return usecase.NewAssetAnalyzer(tech, sums.News, sums.Social,
		usecase.WithAssetTimeout(cfg.Analysis.AssetTimeout),
		usecase.WithAssetLogger(l),
		usecase.WithAssetMetrics(m),
	)
}

// ProvideDefaultPortfolio converts the configured allocations into the domain model.
func ProvideDefaultPortfolio(cfg *config.Config) (models.Portfolio, error) {
	pf := models.Portfolio{ID: cfg.Portfolio.ID}
	for _, a := range cfg.Portfolio.Allocations {
		class, err := models.ParseAssetClass(a.AssetClass)
		if err != nil {
			return models.Portfolio{}, fmt.Errorf("portfolio allocation %s: %w", a.Asset, err)
		}
		pf.Allocations = append(pf.Allocations, models.Allocation{
			Asset:       a.Asset,
			Class:       class,
			Description: a.Description,
			Percentage:  a.Percentage,
		})
	}
	return pf, nil
}

// ProvidePortfolioAnalyzer wires the service analyzer with storage, publication and the live feed.
func ProvidePortfolioAnalyzer(
	assets *usecase.AssetAnalyzer,
	pf models.Portfolio,
	store domrepo.ReportStore,
	pub domrepo.ReportPublisher,
	feed *reportfeed.Hub,
	cfg *config.Config,
	l *applogger.Logger,
	m domrepo.Metrics,
) *usecase.PortfolioAnalyzer {
	opts := append(analyzerOptions(pf, cfg, l, m),
		usecase.WithReportStore(store),
		usecase.WithReportBroadcaster(feed),
	)
	if pub != nil {
		opts = append(opts, usecase.WithReportPublisher(pub))
	}
	return usecase.NewPortfolioAnalyzer(assets, opts...)
}

// ProvideStandaloneAnalyzer is the one-shot analyzer used by the CLI. Reports go to stdout only.
func ProvideStandaloneAnalyzer(assets *usecase.AssetAnalyzer, pf models.Portfolio, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) *usecase.PortfolioAnalyzer {
	return usecase.NewPortfolioAnalyzer(assets, analyzerOptions(pf, cfg, l, m)...)
}

func analyzerOptions(pf models.Portfolio, cfg *config.Config, l *applogger.Logger, m domrepo.Metrics) []usecase.PortfolioOption {
	return []usecase.PortfolioOption{
		usecase.WithDefaultPortfolio(pf),
		usecase.WithConcurrency(cfg.Analysis.Concurrency),
		usecase.WithLockTTL(cfg.Analysis.LockTTL),
		usecase.WithPortfolioLogger(l),
		usecase.WithPortfolioMetrics(m),
	}
}

// ProvideInsightsUseCase serves the per-asset indicator and sentiment endpoints.
func ProvideInsightsUseCase(tech domsvc.TechnicalAnalyzer, sums Summarizers) *usecase.InsightsUseCase {
	return usecase.NewInsightsUseCase(tech, sums.News, sums.Social)
}

// ProvideBarsUseCase serves raw bars.
func ProvideBarsUseCase(bars domrepo.BarRepository) *usecase.BarsUseCase {
	return usecase.NewBarsUseCase(bars)
}

// ProvideLimiter throttles portfolio analysis requests per client.
func ProvideLimiter(cfg *config.Config) *ratelimit.Limiter {
	return ratelimit.New(cfg.RateLimit.AnalyzePerSecond, cfg.RateLimit.AnalyzeBurst, cfg.RateLimit.IdleTTL)
}

// ProvideProbes lists the readiness checks of the configured backends.
func ProvideProbes(ch *pkgch.Client, pg *pkgpg.Client, c cache.Service) api.Probes {
	probes := api.Probes{
		"clickhouse": ch.Health,
		"cache":      c.Ping,
	}
	if pg != nil {
		probes["postgres"] = pg.Health
	}
	return probes
}

// ProvideAnalysisHandler creates the echo handler.
func ProvideAnalysisHandler(
	l *applogger.Logger,
	insights *usecase.InsightsUseCase,
	portfolio *usecase.PortfolioAnalyzer,
	bars *usecase.BarsUseCase,
	limiter *ratelimit.Limiter,
	feed *reportfeed.Hub,
	probes api.Probes,
) *api.AnalysisHandler {
	return api.NewAnalysisHandler(l, insights, portfolio, bars, limiter, feed, probes)
}

// ProvideHTTPServer creates the echo server from the server section.
func ProvideHTTPServer(h *api.AnalysisHandler, cfg *config.Config, l *applogger.Logger) *xhttp.Server {
	s := cfg.Server
	return xhttp.NewServer(h,
		xhttp.WithHost(s.Host),
		xhttp.WithPort(s.Port),
		xhttp.WithTimeouts(s.ReadTimeout, s.WriteTimeout, s.ShutdownTimeout),
		xhttp.WithCORS(s.CORS),
		xhttp.WithSlowThreshold(s.SlowThreshold),
		xhttp.WithLogger(l),
	)
}

// ProvideKafkaConsumer creates the analysis request consumer. It returns nil when consumption is disabled.
func ProvideKafkaConsumer(cfg *config.Config, l *applogger.Logger) (*pkgkafka.Consumer, error) {
	c := cfg.Kafka.Consumer
	if !c.Enabled {
		return nil, nil
	}
	consumer, err := pkgkafka.NewConsumer(l,
		pkgkafka.WithConsumerBrokers(cfg.Kafka.Brokers),
		pkgkafka.WithConsumerGroupID(c.GroupID),
		pkgkafka.WithConsumerWorkers(c.Workers),
		pkgkafka.WithConsumerBufferSize(c.BufferSize),
		pkgkafka.WithConsumerRetry(c.RetryMax, c.BackoffMin, c.BackoffMax),
		pkgkafka.WithConsumerDLQ(c.DLQTopic),
	)
	if err != nil {
		return nil, fmt.Errorf("kafka consumer: %w", err)
	}
	consumer.WithHook(pkgkafka.TracingHook{L: l})
	return consumer, nil
}

// ProvideAnalysisRequestHandler handles portfolio analysis requests from Kafka.
func ProvideAnalysisRequestHandler(cfg *config.Config, pa *usecase.PortfolioAnalyzer, m domrepo.Metrics, l *applogger.Logger) *usecase.AnalysisRequestHandler {
	return usecase.NewAnalysisRequestHandler(cfg.Kafka.Consumer.RequestTopic, pa, m, l)
}

// ProvideApp creates the application server.
func ProvideApp(
	cfg *config.Config,
	l *applogger.Logger,
	srv *xhttp.Server,
	consumer *pkgkafka.Consumer,
	rh *usecase.AnalysisRequestHandler,
	tracer *tracing.Provider,
) *server.App {
	return server.New(l, srv, consumer, tracer, cfg.Server.ShutdownTimeout, rh)
}
