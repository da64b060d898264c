package repository

import (
	"context"
	"fmt"

	"SignalPull/internal/domain/models"
	domrepo "SignalPull/internal/domain/repository"
	pkgkafka "SignalPull/pkg/kafka"
	applogger "SignalPull/pkg/logger"
)

// KafkaActionPublisher pushes the ranked action list to a topic, one message
// per action keyed by symbol so per-instrument ordering is preserved.
type KafkaActionPublisher struct {
	producer *pkgkafka.Producer
	topic    string
	l        *applogger.Logger
}

func NewKafkaActionPublisher(producer *pkgkafka.Producer, topic string, l *applogger.Logger) domrepo.ActionPublisher {
	return &KafkaActionPublisher{producer: producer, topic: topic, l: l}
}

func (p *KafkaActionPublisher) PublishActions(ctx context.Context, actions []models.RankedAction) error {
	if len(actions) == 0 {
		return nil
	}
	msgs := make([]pkgkafka.Message, 0, len(actions))
	for _, a := range actions {
		msgs = append(msgs, pkgkafka.Message{Key: []byte(a.Symbol), Value: a})
	}
	if err := p.producer.PublishBatch(ctx, p.topic, msgs); err != nil {
		return fmt.Errorf("publish actions: %w", err)
	}
	if p.l != nil {
		p.l.Info("actions published",
			applogger.String("topic", p.topic),
			applogger.Int("count", len(actions)))
	}
	return nil
}

func (p *KafkaActionPublisher) Close() error {
	return p.producer.Close()
}
