package visit

import (
	"context"
	"math/rand"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/identity"
	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/internal/triage"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// ReservationLookup is the slice of the reservation store the workflow needs.
type ReservationLookup interface {
	FindByIdentity(ctx context.Context, name, residentID string) (*records.Reservation, error)
}

// Workflow drives session transitions. The random source and clock are
// injectable so tests can pin ticket ids.
type Workflow struct {
	reservations ReservationLookup
	capture      identity.Capture
	rng          *rand.Rand
	now          func() time.Time
	logger       *zap.Logger
}

// NewWorkflow creates the reception workflow.
func NewWorkflow(reservations ReservationLookup, capture identity.Capture, rng *rand.Rand, logger *zap.Logger) *Workflow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Workflow{
		reservations: reservations,
		capture:      capture,
		rng:          rng,
		now:          time.Now,
		logger:       logger,
	}
}

// WithClock overrides the workflow clock, for tests.
func (w *Workflow) WithClock(now func() time.Time) *Workflow {
	w.now = now
	return w
}

// IdentifyByScan captures an identity from the scan simulation and starts a
// fresh session: Reserved when a reservation matches, SymptomSelection with
// the identity retained when none does.
func (w *Workflow) IdentifyByScan(ctx context.Context) (Session, error) {
	id, err := w.capture.Scan(ctx)
	if err != nil {
		return Session{}, faults.Wrap(faults.CodeInternal, "identity capture failed", err)
	}
	return w.identify(ctx, id)
}

// IdentifyManually starts a fresh session from typed-in identity fields. Both
// fields must be non-empty; a blank field is a validation fault and the caller
// re-prompts with no state change.
func (w *Workflow) IdentifyManually(ctx context.Context, name, residentID string) (Session, error) {
	id := records.Identity{
		Name:       strings.TrimSpace(name),
		ResidentID: strings.TrimSpace(residentID),
	}
	if id.Blank() {
		return Session{}, faults.New(faults.CodeValidation,
			"both name and resident id are required")
	}
	return w.identify(ctx, id)
}

// identify runs the shared lookup/branch logic for both identification modes.
// The session is always created fresh: a new identification supersedes
// whatever came before.
func (w *Workflow) identify(ctx context.Context, id records.Identity) (Session, error) {
	sess := Session{
		State:     StateSymptomSelection,
		Identity:  id,
		StartedAt: w.now(),
	}

	rec, err := w.reservations.FindByIdentity(ctx, id.Name, id.ResidentID)
	if err != nil {
		// A broken store must not invent a reservation; fall through to
		// symptom selection so the visit can still proceed.
		w.logger.Warn("reservation lookup failed, continuing without reservation",
			zap.Error(err))
		return sess, nil
	}
	if rec != nil {
		sess.State = StateReserved
		sess.Department = rec.Department
		sess.Ticket = rec.Ticket
		w.logger.Info("patient already reserved",
			zap.String("department", rec.Department),
			zap.String("ticket", rec.Ticket))
	}
	return sess, nil
}

// ChooseSymptom resolves the department for a symptom key, issues a ticket,
// and transitions the session to Ticketed. It requires a retained identity;
// without one the caller must restart at identification.
func (w *Workflow) ChooseSymptom(_ context.Context, sess Session, symptomKey string) (Session, error) {
	if !sess.Identified() {
		return sess, faults.New(faults.CodeSequence,
			"no identity captured; restart at identification")
	}
	if sess.State == StateReserved || sess.State == StateTicketed {
		return sess, faults.New(faults.CodeSequence,
			"visit already has a department and ticket")
	}

	department := triage.Route(symptomKey)
	sess.Department = department
	sess.Ticket = triage.NewTicket(department, w.now(), w.rng)
	sess.State = StateTicketed

	w.logger.Info("ticket issued",
		zap.String("symptom", symptomKey),
		zap.String("department", department),
		zap.String("ticket", sess.Ticket))
	return sess, nil
}

// AttachSelection records the payment stage's fee selection on the session for
// later display. The visit must be ticketed (or reserved) first.
func (w *Workflow) AttachSelection(sess Session, sel Selection) (Session, error) {
	if !sess.Ticketed() {
		return sess, faults.New(faults.CodeSequence,
			"fee selection requires a ticketed visit")
	}
	sess.Selection = &sel
	return sess, nil
}
