package repository

import (
	"context"
	"fmt"

	"SwingRadar/internal/domain/models"
	drepo "SwingRadar/internal/domain/repository"
	"SwingRadar/pkg/kafka"
)

// KafkaPublisher streams emitted signals to a Kafka topic, keyed by
// pair so per-pair ordering survives partitioning.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
}

func NewKafkaPublisher(producer *kafka.Producer, topic string) *KafkaPublisher {
	return &KafkaPublisher{producer: producer, topic: topic}
}

func (p *KafkaPublisher) PublishSignals(ctx context.Context, signals []models.TradingSignal) error {
	if len(signals) == 0 {
		return nil
	}
	msgs := make([]kafka.Message, 0, len(signals))
	for _, s := range signals {
		msgs = append(msgs, kafka.Message{Key: []byte(s.Pair), Value: s})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish signals: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.producer.Close()
}

var _ drepo.EventPublisher = (*KafkaPublisher)(nil)
