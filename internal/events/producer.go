// Package events publishes CRM audit activities to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/segmentio/kafka-go"

	"realtorcrm/internal/domain/activity"
)

// MessageWriter is the subset of *kafka.Writer the publisher needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaProducer lazily manages writers per topic.
type KafkaProducer struct {
	brokers []string
	mu      sync.Mutex
	writers map[string]MessageWriter
	newW    func(brokers []string, topic string) MessageWriter
}

func NewKafkaProducer(brokers []string) *KafkaProducer {
	return &KafkaProducer{
		brokers: brokers,
		writers: make(map[string]MessageWriter),
		newW:    newKafkaWriter,
	}
}

func newKafkaWriter(brokers []string, topic string) MessageWriter {
	return &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		Compression:  kafka.Snappy,
		WriteTimeout: 5 * time.Second,
	}
}

// WriteMessages writes messages to topic, creating a writer if necessary.
func (p *KafkaProducer) WriteMessages(ctx context.Context, topic string, msgs ...kafka.Message) error {
	return p.writerForTopic(topic).WriteMessages(ctx, msgs...)
}

func (p *KafkaProducer) writerForTopic(topic string) MessageWriter {
	p.mu.Lock()
	defer p.mu.Unlock()

	if w, ok := p.writers[topic]; ok {
		return w
	}
	w := p.newW(p.brokers, topic)
	p.writers[topic] = w
	return w
}

// Close releases all writers.
func (p *KafkaProducer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var firstErr error
	for topic, w := range p.writers {
		if err := w.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(p.writers, topic)
	}
	return firstErr
}

// ActivityEvent is the message body published for every stored activity.
type ActivityEvent struct {
	ID           string        `json:"id"`
	RealtorID    string        `json:"realtor_id"`
	UserID       string        `json:"user_id"`
	ActivityType activity.Type `json:"activity_type"`
	Details      string        `json:"details"`
	OccurredAt   time.Time     `json:"occurred_at"`
}

// ActivityPublisher sends activities to one topic keyed by lead id, so all
// events of a lead land on the same partition.
type ActivityPublisher struct {
	producer *KafkaProducer
	topic    string
}

func NewActivityPublisher(producer *KafkaProducer, topic string) *ActivityPublisher {
	return &ActivityPublisher{producer: producer, topic: topic}
}

func (p *ActivityPublisher) PublishActivity(ctx context.Context, a activity.Activity) error {
	body, err := json.Marshal(ActivityEvent{
		ID:           a.ID,
		RealtorID:    a.RealtorID,
		UserID:       a.UserID,
		ActivityType: a.ActivityType,
		Details:      a.Details,
		OccurredAt:   a.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("marshal activity: %w", err)
	}

	return p.producer.WriteMessages(ctx, p.topic, kafka.Message{
		Key:   []byte(a.RealtorID),
		Value: body,
		Headers: []kafka.Header{
			{Key: "activity_type", Value: []byte(a.ActivityType)},
		},
	})
}
