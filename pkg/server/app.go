package server

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	xhttp "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/http"
	pkgkafka "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/kafka"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/tracing"
)

// App encapsulates the service lifecycle: HTTP API, optional Kafka request
// consumer and the tracing provider.
type App struct {
	l          *applogger.Logger
	httpServer *xhttp.Server
	consumer   *pkgkafka.Consumer
	handlers   []pkgkafka.MessageHandler
	tracer     *tracing.Provider
	shutdown   time.Duration
}

// New creates a new App. consumer may be nil when request consumption is disabled.
func New(
	l *applogger.Logger,
	httpServer *xhttp.Server,
	consumer *pkgkafka.Consumer,
	tracer *tracing.Provider,
	shutdownTimeout time.Duration,
	handlers ...pkgkafka.MessageHandler,
) *App {
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}
	return &App{
		l:          l,
		httpServer: httpServer,
		consumer:   consumer,
		handlers:   handlers,
		tracer:     tracer,
		shutdown:   shutdownTimeout,
	}
}

// Run starts every component and blocks until ctx is cancelled or a signal arrives.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if a.consumer != nil && len(a.handlers) > 0 {
		for _, h := range a.handlers {
			a.consumer.RegisterHandler(h)
			a.l.Info("kafka handler registered", applogger.String("topic", h.Topic()))
		}
		if err := a.consumer.Start(ctx); err != nil {
			return err
		}
	}

	if err := a.httpServer.Start(); err != nil {
		a.l.Error("http server start error", applogger.Error(err))
		return err
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	select {
	case sig := <-sigCh:
		a.l.Info("shutdown signal received", applogger.String("signal", sig.String()))
	case <-ctx.Done():
		a.l.Info("context cancelled, shutting down")
	}
	return a.Shutdown()
}

// Shutdown stops the HTTP server first so no new runs start, then drains the consumer.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), a.shutdown)
	defer cancel()

	var errs []error
	if err := a.httpServer.Stop(ctx); err != nil {
		a.l.Error("http shutdown error", applogger.Error(err))
		errs = append(errs, err)
	}
	if a.consumer != nil {
		if err := a.consumer.Stop(ctx); err != nil {
			a.l.Warn("kafka consumer stop error", applogger.Error(err))
			errs = append(errs, err)
		}
	}
	if err := a.tracer.Shutdown(ctx); err != nil {
		a.l.Warn("tracer shutdown error", applogger.Error(err))
	}
	a.l.Info("shutdown complete")
	return errors.Join(errs...)
}
