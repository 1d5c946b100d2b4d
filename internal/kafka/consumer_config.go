package kafka

import (
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/Gunvolt24/order_service/config"
)

// ConsumerConfig - параметры Consumer (из config.Kafka).
type ConsumerConfig struct {
	Brokers     []string
	Topic       string
	GroupID     string
	StartOffset string // first|last, регистр и пробелы не важны

	ProcessTimeout time.Duration
	RetryInitial   time.Duration
	RetryMax       time.Duration
}

func NewConsumerConfig(cfg config.Kafka) *ConsumerConfig {
	return &ConsumerConfig{
		Brokers:        cfg.Brokers,
		Topic:          cfg.Topic,
		GroupID:        cfg.GroupID,
		StartOffset:    cfg.StartOffset,
		ProcessTimeout: cfg.ProcessTimeout,
		RetryInitial:   cfg.RetryInitial,
		RetryMax:       cfg.RetryMax,
	}
}

// ReaderConfig - kafka.ReaderConfig с ручным коммитом (CommitInterval = 0).
func (c *ConsumerConfig) ReaderConfig() kafka.ReaderConfig {
	rc := kafka.ReaderConfig{
		Brokers:        c.Brokers,
		GroupID:        c.GroupID,
		Topic:          c.Topic,
		CommitInterval: 0,
	}

	switch strings.ToLower(strings.TrimSpace(c.StartOffset)) {
	case "first":
		rc.StartOffset = kafka.FirstOffset
	default:
		rc.StartOffset = kafka.LastOffset
	}

	return rc
}
