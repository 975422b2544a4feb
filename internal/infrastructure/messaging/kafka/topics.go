package kafka

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// Topics.
const (
	TopicScanScored     = "labelscan.scan.scored"
	TopicScanRecomputed = "labelscan.scan.recomputed"
	TopicScanDeleted    = "labelscan.scan.deleted"
	TopicOCRCompleted   = "labelscan.ocr.completed"
	TopicDeadLetter     = "labelscan.dead_letter"
)

// Envelope headers.
const (
	HeaderEventID   = "event_id"
	HeaderEventType = "event_type"
	HeaderSource    = "source"
)

// EventEnvelope wraps every payload published by LabelScan.
type EventEnvelope struct {
	EventID   string          `json:"event_id"`
	EventType string          `json:"event_type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// NewEventEnvelope marshals payload into a fresh envelope.
func NewEventEnvelope(eventType, source string, payload interface{}) (*EventEnvelope, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event payload")
	}
	return &EventEnvelope{
		EventID:   uuid.New().String(),
		EventType: eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

// DecodePayload unmarshals the payload into target.
func (e *EventEnvelope) DecodePayload(target interface{}) error {
	if err := json.Unmarshal(e.Payload, target); err != nil {
		return errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event payload").WithDetail(e.EventType)
	}
	return nil
}

// ToMessage serialises the envelope for topic, keyed by key.
func (e *EventEnvelope) ToMessage(topic, key string) (*ProducerMessage, error) {
	data, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to marshal event envelope")
	}
	return &ProducerMessage{
		Topic: topic,
		Key:   []byte(key),
		Value: data,
		Headers: map[string]string{
			HeaderEventID:   e.EventID,
			HeaderEventType: e.EventType,
			HeaderSource:    e.Source,
		},
		Timestamp: e.Timestamp,
	}, nil
}

// MessageToEventEnvelope decodes a consumed message.
func MessageToEventEnvelope(msg *Message) (*EventEnvelope, error) {
	var env EventEnvelope
	if err := json.Unmarshal(msg.Value, &env); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to decode event envelope").WithDetail(msg.Topic)
	}
	return &env, nil
}

// OCRCompletedPayload is produced by the OCR pipeline once a label image has
// been read.  The worker turns it into a saved scan.
type OCRCompletedPayload struct {
	OwnerID        string            `json:"owner_id"`
	Name           string            `json:"name,omitempty"`
	Text           string            `json:"text"`
	Frequency      scoring.Frequency `json:"frequency"`
	ImageKey       string            `json:"image_key,omitempty"`
	ExtractFromOCR bool              `json:"extract_from_ocr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Topic management
// ─────────────────────────────────────────────────────────────────────────────

// TopicConfig describes a topic to provision.
type TopicConfig struct {
	Name              string
	NumPartitions     int
	ReplicationFactor int
	RetentionMs       int64
}

// DefaultTopics lists the topics LabelScan reads and writes.
func DefaultTopics() []TopicConfig {
	week := int64(7 * 24 * time.Hour / time.Millisecond)
	month := int64(30 * 24 * time.Hour / time.Millisecond)
	return []TopicConfig{
		{Name: TopicScanScored, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicScanRecomputed, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicScanDeleted, NumPartitions: 3, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicOCRCompleted, NumPartitions: 6, ReplicationFactor: 1, RetentionMs: week},
		{Name: TopicDeadLetter, NumPartitions: 1, ReplicationFactor: 1, RetentionMs: month},
	}
}

// ConnInterface abstracts the kafka.Conn calls TopicManager needs.
type ConnInterface interface {
	CreateTopics(topics ...kafka.TopicConfig) error
	DeleteTopics(topics ...string) error
	ReadPartitions(topics ...string) ([]kafka.Partition, error)
	Close() error
}

// Dialer opens a connection to the cluster controller.
type Dialer func(ctx context.Context) (ConnInterface, error)

// TopicManager provisions topics.
type TopicManager struct {
	dial   Dialer
	logger logging.Logger
}

// NewTopicManager returns a manager that dials the controller of brokers.
func NewTopicManager(brokers []string, logger logging.Logger) (*TopicManager, error) {
	if len(brokers) == 0 {
		return nil, errors.New(errors.ErrCodeValidation, "brokers required")
	}
	dial := func(ctx context.Context) (ConnInterface, error) {
		conn, err := kafka.DialContext(ctx, "tcp", brokers[0])
		if err != nil {
			return nil, err
		}
		defer conn.Close()
		controller, err := conn.Controller()
		if err != nil {
			return nil, err
		}
		addr := net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port))
		return kafka.DialContext(ctx, "tcp", addr)
	}
	return NewTopicManagerWithDialer(dial, logger), nil
}

// NewTopicManagerWithDialer is used in tests.
func NewTopicManagerWithDialer(dial Dialer, logger logging.Logger) *TopicManager {
	return &TopicManager{dial: dial, logger: logger}
}

// EnsureTopics creates the topics that do not exist yet.
func (m *TopicManager) EnsureTopics(ctx context.Context, topics []TopicConfig) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to connect to kafka controller")
	}
	defer conn.Close()

	var missing []kafka.TopicConfig
	for _, t := range topics {
		parts, err := conn.ReadPartitions(t.Name)
		if err == nil && len(parts) > 0 {
			continue
		}
		tc := kafka.TopicConfig{
			Topic:             t.Name,
			NumPartitions:     t.NumPartitions,
			ReplicationFactor: t.ReplicationFactor,
		}
		if t.RetentionMs > 0 {
			tc.ConfigEntries = []kafka.ConfigEntry{{ConfigName: "retention.ms", ConfigValue: strconv.FormatInt(t.RetentionMs, 10)}}
		}
		missing = append(missing, tc)
	}
	if len(missing) == 0 {
		return nil
	}
	if err := conn.CreateTopics(missing...); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to create topics")
	}
	for _, t := range missing {
		m.logger.Info("topic created", logging.String("topic", t.Topic), logging.Int("partitions", t.NumPartitions))
	}
	return nil
}

// DeleteTopics removes topics.
func (m *TopicManager) DeleteTopics(ctx context.Context, names ...string) error {
	conn, err := m.dial(ctx)
	if err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to connect to kafka controller")
	}
	defer conn.Close()
	if err := conn.DeleteTopics(names...); err != nil {
		return errors.Wrap(err, errors.ErrCodeMessagingError, "failed to delete topics")
	}
	return nil
}

//Personal.AI order the ending
