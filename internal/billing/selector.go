// Package billing implements the payment stage: selecting the billable
// prescriptions for a department and keeping the in-memory payment ledger.
package billing

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
)

// FeeSource yields the fee rows for a department. Implementations report
// absent tables, unmatched departments, and malformed fees as typed faults.
type FeeSource interface {
	RowsForDepartment(ctx context.Context, department string) ([]records.FeeRow, error)
}

// Selection is the set of prescriptions billed for one payment-stage
// invocation. It is a display/session artifact: the certificate stage derives
// its own list from the reservation store.
type Selection struct {
	Items    []records.FeeRow `json:"items"`
	TotalFee int              `json:"total_fee"`
}

// Names returns the selected prescription names in order.
func (s Selection) Names() []string {
	names := make([]string, len(s.Items))
	for i, it := range s.Items {
		names[i] = it.Prescription
	}
	return names
}

// Selector draws the billed prescriptions for a department.
type Selector struct {
	source FeeSource
	rng    *rand.Rand
	logger *zap.Logger
}

// NewSelector creates a selector. rng is injectable so tests can pin draws.
func NewSelector(source FeeSource, rng *rand.Rand, logger *zap.Logger) *Selector {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{source: source, rng: rng, logger: logger}
}

// Select loads the department's fee rows and picks the billed set: the single
// row when only one matches, otherwise a random count between min(2, n) and
// min(3, n) without replacement. Faults from the source pass through
// untouched so the caller can distinguish "no match" from "zero by chance".
func (s *Selector) Select(ctx context.Context, department string) (Selection, error) {
	rows, err := s.source.RowsForDepartment(ctx, department)
	if err != nil {
		return Selection{}, err
	}

	picked := s.pick(rows)
	total := 0
	for _, row := range picked {
		total += row.Fee
	}

	s.logger.Info("prescriptions selected",
		zap.String("department", department),
		zap.Int("available", len(rows)),
		zap.Int("selected", len(picked)),
		zap.Int("total_fee", total))
	return Selection{Items: picked, TotalFee: total}, nil
}

func (s *Selector) pick(rows []records.FeeRow) []records.FeeRow {
	n := len(rows)
	if n == 1 {
		return []records.FeeRow{rows[0]}
	}

	lo := min(2, n)
	hi := min(3, n)
	count := lo + s.rng.Intn(hi-lo+1)

	picked := make([]records.FeeRow, 0, count)
	for _, i := range s.rng.Perm(n)[:count] {
		picked = append(picked, rows[i])
	}
	return picked
}
