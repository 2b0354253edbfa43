//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/usecase"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/config"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/server"
)

// analysisSet builds the analyzers shared by the service and the CLI.
var analysisSet = wire.NewSet(
	// Ambient
	ProvideLogger,
	ProvideMetrics,

	// Infrastructure clients
	ProvideClickHouseClient,
	ProvidePostgresClient,

	// Repositories and engines
	ProvideBarRepository,
	ProvideSummarizers,
	ProvideTechnicalAnalyzer,
	ProvideAssetAnalyzer,
	ProvideDefaultPortfolio,
)

// InitializeApp wires up all dependencies and returns the application.
// Wire will generate the implementation of this function.
func InitializeApp(cfg *config.Config) (*server.App, func(), error) {
	wire.Build(
		analysisSet,
		ProvideTracer,

		// Report sinks
		ProvideCache,
		ProvideReportStore,
		ProvideKafkaProducer,
		ProvideReportPublisher,
		ProvideReportFeed,

		// Use cases
		ProvidePortfolioAnalyzer,
		ProvideInsightsUseCase,
		ProvideBarsUseCase,
		ProvideAnalysisRequestHandler,

		// Transport
		ProvideLimiter,
		ProvideProbes,
		ProvideAnalysisHandler,
		ProvideHTTPServer,
		ProvideKafkaConsumer,

		// Application server
		ProvideApp,
	)
	return nil, nil, nil
}

// InitializeAnalyzer wires a standalone portfolio analyzer for one-shot runs.
func InitializeAnalyzer(cfg *config.Config) (*usecase.PortfolioAnalyzer, func(), error) {
	wire.Build(
		analysisSet,
		ProvideStandaloneAnalyzer,
	)
	return nil, nil, nil
}
