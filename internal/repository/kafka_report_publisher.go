package repository

import (
	"context"
	"time"

	"MacroCast/internal/domain/models"
	drepo "MacroCast/internal/domain/repository"
)

// MessageProducer is the subset of pkg/kafka.Producer used here.
type MessageProducer interface {
	Publish(ctx context.Context, topic string, key []byte, value interface{}) error
	Close() error
}

// KafkaReportPublisher publishes pre-warm reports as JSON.
type KafkaReportPublisher struct {
	producer MessageProducer
	topic    string
}

func NewKafkaReportPublisher(producer MessageProducer, topic string) *KafkaReportPublisher {
	return &KafkaReportPublisher{producer: producer, topic: topic}
}

// PublishReport keys the message by run start so reruns stay ordered.
func (p *KafkaReportPublisher) PublishReport(ctx context.Context, report models.PrewarmReport) error {
	key := []byte(report.StartedAt.UTC().Format(time.RFC3339))
	return p.producer.Publish(ctx, p.topic, key, report)
}

func (p *KafkaReportPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.ReportPublisher = (*KafkaReportPublisher)(nil)
