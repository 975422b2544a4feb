package kafka

import (
	"context"

	domainscan "github.com/turtacn/LabelScan-Intelligence/internal/domain/scan"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
)

// EventSource is the envelope source of scan events.
const EventSource = "labelscan-apiserver"

var eventTopics = map[domainscan.EventType]string{
	domainscan.EventScored:     TopicScanScored,
	domainscan.EventRecomputed: TopicScanRecomputed,
	domainscan.EventDeleted:    TopicScanDeleted,
}

// ScanEventPublisher publishes scan lifecycle events, keyed by scan id so
// that all events of one scan land on the same partition in order.
type ScanEventPublisher struct {
	producer MessagePublisher
	source   string
}

// NewScanEventPublisher wraps producer.
func NewScanEventPublisher(producer MessagePublisher) *ScanEventPublisher {
	return &ScanEventPublisher{producer: producer, source: EventSource}
}

// TopicFor returns the topic of an event type.
func TopicFor(t domainscan.EventType) (string, bool) {
	topic, ok := eventTopics[t]
	return topic, ok
}

// Publish implements domainscan.EventPublisher.
func (p *ScanEventPublisher) Publish(ctx context.Context, evt *domainscan.Event) error {
	topic, ok := TopicFor(evt.Type)
	if !ok {
		return errors.Newf(errors.ErrCodeValidation, "no topic for event type %q", evt.Type)
	}
	env, err := NewEventEnvelope(string(evt.Type), p.source, evt)
	if err != nil {
		return err
	}
	env.EventID = evt.ID
	msg, err := env.ToMessage(topic, evt.ScanID)
	if err != nil {
		return err
	}
	return p.producer.Publish(ctx, msg)
}

var _ domainscan.EventPublisher = (*ScanEventPublisher)(nil)

//Personal.AI order the ending
