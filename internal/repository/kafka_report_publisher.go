package repository

import (
	"context"
	"fmt"

	"github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/models"
	domrepo "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/internal/domain/repository"
	applogger "github.com/mongodb-industry-solutions/leafy-bank-backend-capitalmarkets-agents/pkg/logger"
)

// MessageProducer is the subset of the Kafka producer the publisher needs.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher emits finished portfolio reports, keyed by portfolio id
// so every report of one portfolio lands on the same partition.
type KafkaReportPublisher struct {
	producer MessageProducer
	topic    string
	l        *applogger.Logger
}

var _ domrepo.ReportPublisher = (*KafkaReportPublisher)(nil)

func NewKafkaReportPublisher(producer MessageProducer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic, l: applogger.Nop()}
}

// SetLogger injects a structured logger.
func (p *KafkaReportPublisher) SetLogger(l *applogger.Logger) { p.l = l }

func (p *KafkaReportPublisher) Publish(ctx context.Context, report *models.PortfolioReport) error {
	if report == nil {
		return fmt.Errorf("nil report")
	}
	if err := p.producer.Publish(ctx, p.topic, []byte(report.PortfolioID), report); err != nil {
		p.l.Error("publish report failed",
			applogger.String("topic", p.topic),
			applogger.String("portfolio_id", report.PortfolioID),
			applogger.String("run_id", report.RunID),
			applogger.Error(err),
		)
		return models.AdapterError("publish report", err)
	}
	p.l.Debug("report published", applogger.String("topic", p.topic), applogger.String("run_id", report.RunID))
	return nil
}

func (p *KafkaReportPublisher) Close() error { return p.producer.Close() }
