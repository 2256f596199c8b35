package kafka

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

type messageReader interface {
	ReadMessage(ctx context.Context) (kafka.Message, error)
	Close() error
}

// DatasetHandler is called once per decoded dataset event.
type DatasetHandler func(ctx context.Context, event DatasetEvent) error

type Consumer struct {
	reader messageReader
}

// NewConsumer joins a consumer group of its own so that every replica sees
// every dataset event. Only events published after start are read; the
// initial state comes from the regular startup reload.
func NewConsumer(brokers []string, groupBase, topic string) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:           brokers,
			GroupID:           InstanceGroupID(groupBase),
			Topic:             topic,
			StartOffset:       kafka.LastOffset,
			HeartbeatInterval: 3 * time.Second,
			SessionTimeout:    30 * time.Second,
		}),
	}
}

// InstanceGroupID derives a group id unique to this process from base.
func InstanceGroupID(base string) string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "unknown"
	}
	return fmt.Sprintf("%s-%s-%s", base, host, uuid.NewString()[:8])
}

func (c *Consumer) Close() error {
	if c == nil || c.reader == nil {
		return nil
	}
	return c.reader.Close()
}

// Consume reads until ctx is done or the reader fails. Messages that are not
// dataset events are logged and skipped; a handler error stops consumption.
func (c *Consumer) Consume(ctx context.Context, handler DatasetHandler) error {
	for {
		msg, err := c.reader.ReadMessage(ctx)
		if err != nil {
			return err
		}

		event, err := DecodeDatasetEvent(msg.Value)
		if err != nil {
			log.Printf("skip dataset event at offset %d: %v", msg.Offset, err)
			continue
		}

		if err := handler(ctx, event); err != nil {
			return fmt.Errorf("handle dataset event %s: %w", event.ID, err)
		}
	}
}
