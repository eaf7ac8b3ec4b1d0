// Package audit publishes payment-ledger appends to the clinic's audit trail
// topic. Publishing is best effort: the ledger is the in-process record, the
// topic is the off-box copy for compliance review.
package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/twmb/franz-go/pkg/kadm"
	"github.com/twmb/franz-go/pkg/kerr"
	"github.com/twmb/franz-go/pkg/kgo"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/billing"
)

// TopicAuditTrail receives one record per payment append, keyed by patient id.
const TopicAuditTrail = "clinic.audit.trail"

// Publisher produces audit records to the trail topic.
type Publisher struct {
	client *kgo.Client
	logger *zap.Logger
}

// NewPublisher connects to the brokers and ensures the trail topic exists.
func NewPublisher(ctx context.Context, brokers []string, logger *zap.Logger) (*Publisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.ProducerLinger(50*time.Millisecond),
		kgo.RecordRetries(3),
	)
	if err != nil {
		return nil, fmt.Errorf("create audit client: %w", err)
	}

	if err := ensureTopic(ctx, client, logger); err != nil {
		client.Close()
		return nil, err
	}

	return &Publisher{client: client, logger: logger}, nil
}

// ensureTopic creates the trail topic when it does not exist yet.
func ensureTopic(ctx context.Context, client *kgo.Client, logger *zap.Logger) error {
	admin := kadm.NewClient(client)

	resp, err := admin.CreateTopics(ctx, 3, 1, nil, TopicAuditTrail)
	if err != nil {
		return fmt.Errorf("create audit topic: %w", err)
	}
	for _, r := range resp {
		if r.Err != nil && !errors.Is(r.Err, kerr.TopicAlreadyExists) {
			logger.Warn("audit topic creation reported error",
				zap.String("topic", r.Topic), zap.Error(r.Err))
		}
	}
	return nil
}

// PublishPayment produces a payment record asynchronously. Failures are
// logged and dropped; the payment path never blocks on the broker.
func (p *Publisher) PublishPayment(ctx context.Context, payment billing.Payment) {
	value, err := json.Marshal(payment)
	if err != nil {
		p.logger.Error("marshal audit record", zap.Error(err))
		return
	}

	record := &kgo.Record{
		Topic: TopicAuditTrail,
		Key:   []byte(payment.PatientID),
		Value: value,
	}
	p.client.Produce(ctx, record, func(r *kgo.Record, err error) {
		if err != nil {
			p.logger.Error("audit publish failed",
				zap.String("payment_id", payment.ID), zap.Error(err))
			return
		}
		p.logger.Debug("audit record published",
			zap.String("payment_id", payment.ID),
			zap.Int32("partition", r.Partition),
			zap.Int64("offset", r.Offset))
	})
}

// Close flushes buffered records and closes the client.
func (p *Publisher) Close(ctx context.Context) {
	if err := p.client.Flush(ctx); err != nil {
		p.logger.Warn("audit flush failed", zap.Error(err))
	}
	p.client.Close()
}
