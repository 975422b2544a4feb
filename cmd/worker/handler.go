package main

import (
	"context"
	"fmt"
	"time"

	appscan "github.com/turtacn/LabelScan-Intelligence/internal/application/scan"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/database/redis"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/messaging/kafka"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LabelScan-Intelligence/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/LabelScan-Intelligence/pkg/errors"
	"github.com/turtacn/LabelScan-Intelligence/pkg/types/scoring"
)

// defaultDedupeTTL is how long a handled OCR message stays marked as done.
const defaultDedupeTTL = 24 * time.Hour

// OCRHandler turns labelscan.ocr.completed messages into saved scans.
type OCRHandler struct {
	scans       appscan.Service
	locks       *redis.LockFactory
	dedupeTTL   time.Duration
	defaultFreq scoring.Frequency
	metrics     *prometheus.AppMetrics
	logger      logging.Logger
}

// OCRHandlerConfig holds the dependencies of an OCRHandler.  Locks and
// Metrics may be nil.
type OCRHandlerConfig struct {
	Scans            appscan.Service
	Locks            *redis.LockFactory
	DedupeTTL        time.Duration
	DefaultFrequency scoring.Frequency
	Metrics          *prometheus.AppMetrics
	Logger           logging.Logger
}

// NewOCRHandler creates an OCRHandler.
func NewOCRHandler(cfg OCRHandlerConfig) *OCRHandler {
	log := cfg.Logger
	if log == nil {
		log = logging.NewNopLogger()
	}
	ttl := cfg.DedupeTTL
	if ttl <= 0 {
		ttl = defaultDedupeTTL
	}
	freq := cfg.DefaultFrequency
	if !freq.Valid() {
		freq = scoring.FrequencyWeekly
	}
	return &OCRHandler{
		scans:       cfg.Scans,
		locks:       cfg.Locks,
		dedupeTTL:   ttl,
		defaultFreq: freq,
		metrics:     cfg.Metrics,
		logger:      log.Named("ocr"),
	}
}

// Handle implements kafka.MessageHandler.  A returned error makes the
// consumer retry and eventually dead-letter the message.
func (h *OCRHandler) Handle(ctx context.Context, msg *kafka.Message) (err error) {
	start := time.Now()
	defer func() {
		if h.metrics != nil {
			prometheus.RecordMessage(h.metrics, msg.Topic, err, time.Since(start))
		}
	}()

	req, err := h.decode(msg)
	if err != nil {
		return err
	}

	// A redelivered message that was already saved is skipped.  The marker
	// is released when the submit fails so the retry can claim it again.
	var marker redis.DistributedLock
	if h.locks != nil {
		marker = h.locks.NewMutex(dedupeKey(msg), redis.WithLockTTL(h.dedupeTTL))
		ok, lerr := marker.TryLock(ctx)
		switch {
		case lerr != nil:
			h.logger.Warn("dedupe marker unavailable, processing anyway", logging.Err(lerr))
			marker = nil
		case !ok:
			h.logger.Info("skipping already handled message",
				logging.Int("partition", msg.Partition),
				logging.Int64("offset", msg.Offset))
			return nil
		}
	}

	sc, err := h.scans.Submit(ctx, req)
	if err != nil {
		if marker != nil {
			if uerr := marker.Unlock(ctx); uerr != nil {
				h.logger.Warn("failed to release dedupe marker", logging.Err(uerr))
			}
		}
		return err
	}

	h.logger.Info("ocr scan saved",
		logging.String("scan_id", sc.ID),
		logging.String("owner_id", sc.OwnerID),
		logging.Int("score", sc.Score),
		logging.String("grade", string(sc.Grade)))
	return nil
}

func (h *OCRHandler) decode(msg *kafka.Message) (*appscan.SubmitRequest, error) {
	env, err := kafka.MessageToEventEnvelope(msg)
	if err != nil {
		return nil, err
	}
	var p kafka.OCRCompletedPayload
	if err := env.DecodePayload(&p); err != nil {
		return nil, err
	}
	if p.OwnerID == "" {
		return nil, errors.InvalidParam("ocr message has no owner_id").WithDetail(env.EventID)
	}

	freq := h.defaultFreq
	if p.Frequency != "" {
		if freq, err = scoring.ParseFrequency(string(p.Frequency)); err != nil {
			return nil, err
		}
	}
	return &appscan.SubmitRequest{
		OwnerID:        p.OwnerID,
		Name:           p.Name,
		Text:           p.Text,
		Frequency:      freq,
		ExtractFromOCR: p.ExtractFromOCR,
		ImageKey:       p.ImageKey,
	}, nil
}

func dedupeKey(msg *kafka.Message) string {
	return fmt.Sprintf("ocr:%s:%d:%d", msg.Topic, msg.Partition, msg.Offset)
}

//Personal.AI order the ending
