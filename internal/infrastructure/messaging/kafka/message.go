// Package kafka carries scan events out of, and OCR results into, the
// LabelScan services over Apache Kafka.
package kafka

import (
	"context"
	"time"
)

// Message is one consumed record.
type Message struct {
	Topic     string
	Partition int
	Offset    int64
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// ProducerMessage is one record to publish.
type ProducerMessage struct {
	Topic     string
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Timestamp time.Time
}

// MessageHandler processes one consumed message.  A non-nil error triggers
// the consumer's retry policy.
type MessageHandler func(ctx context.Context, msg *Message) error

// MessagePublisher is the subset of Producer the consumer needs for dead
// lettering.
type MessagePublisher interface {
	Publish(ctx context.Context, msg *ProducerMessage) error
}

//Personal.AI order the ending
