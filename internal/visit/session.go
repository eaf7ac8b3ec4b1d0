// Package visit implements the reception workflow: the session-scoped state
// machine that carries a patient from identification through symptom triage to
// queue-ticket issuance.
package visit

import (
	"time"

	"github.com/nulbom/go-kiosk/internal/records"
)

// State tags where a session is in the intake flow.
type State string

const (
	// StateAwaitingIdentification is the initial state.
	StateAwaitingIdentification State = "awaiting_identification"
	// StateReserved is terminal for intake: the patient already has a
	// department and ticket on file.
	StateReserved State = "reserved"
	// StateSymptomSelection holds a captured identity with no reservation.
	StateSymptomSelection State = "symptom_selection"
	// StateTicketed is terminal and the precondition for the payment and
	// certificate stages.
	StateTicketed State = "ticketed"
)

// Selection is the payment stage's fee-selection result retained on the
// session for display. It is never the certificate stage's source of truth;
// certificates re-derive from the reservation store.
type Selection struct {
	Items    []SelectedItem `json:"items"`
	TotalFee int            `json:"total_fee"`
}

// SelectedItem is one billed prescription in a selection.
type SelectedItem struct {
	Name string `json:"name"`
	Fee  int    `json:"fee"`
}

// Session is the ephemeral per-visit state. It is a plain serializable value:
// transitions return updated copies, and a new identification always starts
// clean.
type Session struct {
	State      State            `json:"state"`
	Identity   records.Identity `json:"identity"`
	Department string           `json:"department,omitempty"`
	Ticket     string           `json:"ticket,omitempty"`
	Selection  *Selection       `json:"selection,omitempty"`
	StartedAt  time.Time        `json:"started_at"`
}

// Identified reports whether the session carries a captured identity.
func (s Session) Identified() bool {
	return !s.Identity.Blank()
}

// Ticketed reports whether the intake flow completed with a ticket.
func (s Session) Ticketed() bool {
	return s.State == StateTicketed || s.State == StateReserved
}
