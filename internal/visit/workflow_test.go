package visit

import (
	"context"
	"errors"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

type fakeLookup struct {
	byIdentity map[string]records.Reservation
	err        error
}

func lookupKey(name, residentID string) string { return name + "|" + residentID }

func (f *fakeLookup) FindByIdentity(_ context.Context, name, residentID string) (*records.Reservation, error) {
	if f.err != nil {
		return nil, f.err
	}
	if rec, ok := f.byIdentity[lookupKey(name, residentID)]; ok {
		return &rec, nil
	}
	return nil, nil
}

type fakeCapture struct {
	id  records.Identity
	err error
}

func (f *fakeCapture) Scan(context.Context) (records.Identity, error) {
	return f.id, f.err
}

func testWorkflow(lookup *fakeLookup, capture *fakeCapture) *Workflow {
	return NewWorkflow(lookup, capture, rand.New(rand.NewSource(1)), nil)
}

func reservedLookup() *fakeLookup {
	return &fakeLookup{byIdentity: map[string]records.Reservation{
		lookupKey("Kim Minjun", "900101-1234567"): {
			Name:       "Kim Minjun",
			ResidentID: "900101-1234567",
			Department: "Internal Medicine",
			Ticket:     "I09301512",
		},
	}}
}

func TestIdentifyManuallyReserved(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	sess, err := w.IdentifyManually(context.Background(), "Kim Minjun", "900101-1234567")
	require.NoError(t, err)

	assert.Equal(t, StateReserved, sess.State)
	assert.Equal(t, "Internal Medicine", sess.Department)
	assert.Equal(t, "I09301512", sess.Ticket)
}

func TestIdentifyManuallyNoReservation(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	sess, err := w.IdentifyManually(context.Background(), "Lee Seoyeon", "920202-2345678")
	require.NoError(t, err)

	assert.Equal(t, StateSymptomSelection, sess.State)
	assert.Equal(t, "Lee Seoyeon", sess.Identity.Name)
	assert.Empty(t, sess.Department, "must never invent department data")
	assert.Empty(t, sess.Ticket, "must never invent ticket data")
}

func TestIdentifyManuallyBlankFields(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	for _, tc := range [][2]string{{"", "900101-1234567"}, {"Kim Minjun", ""}, {"", ""}, {"  ", "  "}} {
		_, err := w.IdentifyManually(context.Background(), tc[0], tc[1])
		require.Error(t, err)
		assert.Equal(t, faults.CodeValidation, faults.CodeOf(err))
	}
}

func TestIdentifyManuallyTrimsInput(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	sess, err := w.IdentifyManually(context.Background(), "  Kim Minjun ", " 900101-1234567 ")
	require.NoError(t, err)
	assert.Equal(t, StateReserved, sess.State)
}

func TestIdentifyByScan(t *testing.T) {
	capture := &fakeCapture{id: records.Identity{Name: "Kim Minjun", ResidentID: "900101-1234567"}}
	w := testWorkflow(reservedLookup(), capture)

	sess, err := w.IdentifyByScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateReserved, sess.State)
}

func TestIdentifyByScanUnknownPatient(t *testing.T) {
	capture := &fakeCapture{id: records.Identity{Name: "Jung Haeun", ResidentID: "010730-4040404"}}
	w := testWorkflow(reservedLookup(), capture)

	sess, err := w.IdentifyByScan(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StateSymptomSelection, sess.State)
	assert.True(t, sess.Identified(), "identity is retained for symptom selection")
}

func TestIdentifyLookupFailureFallsThrough(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("disk gone")}
	w := testWorkflow(lookup, nil)

	sess, err := w.IdentifyManually(context.Background(), "Kim Minjun", "900101-1234567")
	require.NoError(t, err)
	assert.Equal(t, StateSymptomSelection, sess.State)
}

func TestChooseSymptomIssuesTicket(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil).WithClock(func() time.Time {
		return time.Date(2026, 8, 28, 9, 30, 15, 0, time.UTC)
	})

	sess, err := w.IdentifyManually(context.Background(), "Lee Seoyeon", "920202-2345678")
	require.NoError(t, err)

	sess, err = w.ChooseSymptom(context.Background(), sess, "fever")
	require.NoError(t, err)

	assert.Equal(t, StateTicketed, sess.State)
	assert.Equal(t, "Internal Medicine", sess.Department)
	assert.Equal(t, "I", sess.Ticket[:1])
	assert.NotEmpty(t, sess.Department, "ticketed session always has a department")
}

func TestChooseSymptomUnknownKeyUsesDefault(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	sess, err := w.IdentifyManually(context.Background(), "Lee Seoyeon", "920202-2345678")
	require.NoError(t, err)

	sess, err = w.ChooseSymptom(context.Background(), sess, "no-such-symptom")
	require.NoError(t, err)
	assert.Equal(t, "Family Medicine", sess.Department)
}

func TestChooseSymptomWithoutIdentity(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)

	_, err := w.ChooseSymptom(context.Background(), Session{State: StateSymptomSelection}, "fever")
	require.Error(t, err)
	assert.Equal(t, faults.CodeSequence, faults.CodeOf(err))
}

func TestChooseSymptomOnTerminalStates(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)
	id := records.Identity{Name: "Kim Minjun", ResidentID: "900101-1234567"}

	for _, state := range []State{StateReserved, StateTicketed} {
		_, err := w.ChooseSymptom(context.Background(), Session{State: state, Identity: id}, "fever")
		require.Error(t, err)
		assert.Equal(t, faults.CodeSequence, faults.CodeOf(err))
	}
}

func TestAttachSelection(t *testing.T) {
	w := testWorkflow(reservedLookup(), nil)
	id := records.Identity{Name: "Kim Minjun", ResidentID: "900101-1234567"}
	sel := Selection{Items: []SelectedItem{{Name: "Acetaminophen 500mg", Fee: 4500}}, TotalFee: 4500}

	sess, err := w.AttachSelection(Session{State: StateTicketed, Identity: id}, sel)
	require.NoError(t, err)
	require.NotNil(t, sess.Selection)
	assert.Equal(t, 4500, sess.Selection.TotalFee)

	_, err = w.AttachSelection(Session{State: StateSymptomSelection, Identity: id}, sel)
	require.Error(t, err)
	assert.Equal(t, faults.CodeSequence, faults.CodeOf(err))
}

func TestSessionStoreSupersedes(t *testing.T) {
	store := NewSessionStore()
	ctx := context.Background()

	_, ok := store.Get(ctx, "kiosk-1")
	assert.False(t, ok)

	store.Put(ctx, "kiosk-1", Session{State: StateTicketed})
	store.Put(ctx, "kiosk-1", Session{State: StateSymptomSelection})

	sess, ok := store.Get(ctx, "kiosk-1")
	require.True(t, ok)
	assert.Equal(t, StateSymptomSelection, sess.State)

	store.Clear(ctx, "kiosk-1")
	_, ok = store.Get(ctx, "kiosk-1")
	assert.False(t, ok)
}
