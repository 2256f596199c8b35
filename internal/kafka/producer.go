package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"
)

const EventDatasetReplaced = "dataset_replaced"

// DatasetEvent announces that the stored airport and flight set changed.
type DatasetEvent struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Airports   int       `json:"airports"`
	Flights    int       `json:"flights"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewDatasetEvent(airports, flights int) DatasetEvent {
	return DatasetEvent{
		ID:         uuid.NewString(),
		Type:       EventDatasetReplaced,
		Airports:   airports,
		Flights:    flights,
		OccurredAt: time.Now().UTC(),
	}
}

// DecodeDatasetEvent parses a message value produced by Producer.Publish.
func DecodeDatasetEvent(value []byte) (DatasetEvent, error) {
	var event DatasetEvent
	if err := json.Unmarshal(value, &event); err != nil {
		return DatasetEvent{}, fmt.Errorf("decode dataset event: %w", err)
	}
	if event.Type != EventDatasetReplaced {
		return DatasetEvent{}, fmt.Errorf("unexpected event type %q", event.Type)
	}
	return event, nil
}

type Producer struct {
	writer *kafka.Writer
}

func NewProducer(brokers []string) *Producer {
	return &Producer{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Balancer:     &kafka.LeastBytes{},
			BatchTimeout: 50 * time.Millisecond,
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (p *Producer) Publish(ctx context.Context, topic, key string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	err = p.writer.WriteMessages(ctx, kafka.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Time:  time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to write message to Kafka: %w", err)
	}

	log.Printf("published to kafka topic=%s key=%s", topic, key)
	return nil
}

func (p *Producer) PublishWithRetry(ctx context.Context, topic, key string, payload interface{}, maxRetries int) error {
	var lastErr error
	for i := 0; i < maxRetries; i++ {
		err := p.Publish(ctx, topic, key, payload)
		if err == nil {
			return nil
		}
		lastErr = err
		log.Printf("publish attempt %d failed: %v", i+1, err)

		if i < maxRetries-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
		}
	}
	return fmt.Errorf("failed after %d retries: %w", maxRetries, lastErr)
}

func (p *Producer) Close() error {
	if p.writer != nil {
		return p.writer.Close()
	}
	return nil
}
