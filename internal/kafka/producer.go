package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/order_service/config"
	"github.com/Gunvolt24/order_service/internal/domain"
	"github.com/Gunvolt24/order_service/internal/ports"
	"github.com/Gunvolt24/order_service/pkg/metrics"
)

var _ ports.EventPublisher = (*Producer)(nil)

// writer - минимальный контракт над kafka.Writer (подменяется моками в тестах).
type writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Producer - публикация new_order. Ключ сообщения - id заказа, поэтому события
// одного заказа попадают в одну партицию.
type Producer struct {
	writer         writer
	topic          string
	publishTimeout time.Duration
	log            ports.Logger
	closeOnce      sync.Once
}

func NewProducer(cfg config.Kafka, log ports.Logger) *Producer {
	w := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.Topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		WriteTimeout:           cfg.WriteTimeout,
		AllowAutoTopicCreation: true,
	}
	return newProducer(w, cfg.Topic, cfg.PublishTimeout, log)
}

func newProducer(w writer, topic string, publishTimeout time.Duration, log ports.Logger) *Producer {
	if publishTimeout <= 0 {
		publishTimeout = 3 * time.Second
	}
	return &Producer{writer: w, topic: topic, publishTimeout: publishTimeout, log: log}
}

// PublishNewOrder - одна попытка записи с таймаутом publishTimeout.
func (p *Producer) PublishNewOrder(ctx context.Context, orderID uuid.UUID) error {
	value, err := json.Marshal(domain.NewOrderEvent{OrderID: orderID})
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, p.publishTimeout)
	defer cancel()

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(orderID.String()),
		Value: value,
	})
	if err != nil {
		metrics.EventsPublished.WithLabelValues("error").Inc()
		return fmt.Errorf("publish to %s: %w", p.topic, err)
	}

	metrics.EventsPublished.WithLabelValues("ok").Inc()
	p.log.Debugf(ctx, "event new_order published order=%s", orderID)
	return nil
}

// Close - дожидается отправки буфера и закрывает writer.
func (p *Producer) Close() (retErr error) {
	p.closeOnce.Do(func() {
		retErr = p.writer.Close()
	})
	return retErr
}
