package billing

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Payment is one recorded payment. Status is always "completed" in this demo
// clinic; there is no gateway integration.
type Payment struct {
	ID         string    `json:"payment_id"`
	PatientID  string    `json:"patient_id"`
	Amount     int       `json:"amount"`
	Method     string    `json:"method"`
	Status     string    `json:"status"`
	RecordedAt time.Time `json:"recorded_at"`
}

// AuditPublisher receives ledger appends for the audit trail. Publishing is
// best effort and must never fail the payment path.
type AuditPublisher interface {
	PublishPayment(ctx context.Context, p Payment)
}

// Ledger is the append-only in-memory payment record. Appends are serialized
// by a single mutex; entries are never mutated or merged.
type Ledger struct {
	mu       sync.RWMutex
	payments []Payment
	byID     map[string]int

	publisher AuditPublisher
	logger    *zap.Logger
}

// NewLedger creates an empty ledger. publisher may be nil.
func NewLedger(publisher AuditPublisher, logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Ledger{
		byID:      make(map[string]int),
		publisher: publisher,
		logger:    logger,
	}
}

// Append records a payment and returns it with its generated id.
func (l *Ledger) Append(ctx context.Context, patientID string, amount int, method string) Payment {
	p := Payment{
		ID:         uuid.New().String(),
		PatientID:  patientID,
		Amount:     amount,
		Method:     method,
		Status:     "completed",
		RecordedAt: time.Now().UTC(),
	}

	l.mu.Lock()
	l.byID[p.ID] = len(l.payments)
	l.payments = append(l.payments, p)
	l.mu.Unlock()

	l.logger.Info("payment recorded",
		zap.String("payment_id", p.ID),
		zap.Int("amount", p.Amount),
		zap.String("method", p.Method))

	if l.publisher != nil {
		l.publisher.PublishPayment(ctx, p)
	}
	return p
}

// Find returns a payment by id.
func (l *Ledger) Find(id string) (Payment, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	i, ok := l.byID[id]
	if !ok {
		return Payment{}, false
	}
	return l.payments[i], true
}

// Len returns the number of recorded payments.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.payments)
}
