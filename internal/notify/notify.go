// Package notify announces newly discovered jobs to downstream consumers.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/spigell/job-scout/internal/jobs"
)

// Notifier publishes records inserted by an ingestion run.
type Notifier interface {
	Publish(ctx context.Context, records []*jobs.JobRecord) error
	Close() error
}

// Nop is used when notifications are disabled.
type Nop struct{}

func (Nop) Publish(context.Context, []*jobs.JobRecord) error { return nil }
func (Nop) Close() error                                     { return nil }

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// KafkaNotifier writes one message per record keyed by the job id.
type KafkaNotifier struct {
	writer messageWriter
	now    func() time.Time
}

// NewKafkaNotifier creates a notifier for the given broker and topic.
func NewKafkaNotifier(broker, topic string) *KafkaNotifier {
	return NewKafkaNotifierWithWriter(&kafka.Writer{
		Addr:                   kafka.TCP(broker),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		AllowAutoTopicCreation: false,
	})
}

// NewKafkaNotifierWithWriter builds a notifier around a custom writer (tests).
func NewKafkaNotifierWithWriter(writer messageWriter) *KafkaNotifier {
	return &KafkaNotifier{writer: writer, now: time.Now}
}

func (n *KafkaNotifier) Publish(ctx context.Context, records []*jobs.JobRecord) error {
	msgs := make([]kafka.Message, 0, len(records))
	for _, r := range records {
		if r == nil {
			continue
		}
		payload, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("encoding job %s: %w", r.ID, err)
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(r.ID),
			Value: payload,
			Time:  n.now().UTC(),
		})
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := n.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("publishing %d jobs: %w", len(msgs), err)
	}
	return nil
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
