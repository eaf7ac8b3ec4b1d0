// Package certificate assembles renderer-ready document payloads. Billed
// prescriptions and the fee total are always re-derived from the reservation
// store at issuance time; session-cached payment results are deliberately not
// trusted here.
package certificate

import (
	"context"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/nulbom/go-kiosk/internal/records"
	"github.com/nulbom/go-kiosk/pkg/faults"
)

// ReservationSource is the reservation-store slice the assembler needs.
type ReservationSource interface {
	FindByResidentID(ctx context.Context, residentID string) (*records.Reservation, error)
}

// CatalogSource loads dosing metadata for a department, with the generic
// catalog as fallback.
type CatalogSource interface {
	Load(ctx context.Context, department string) ([]records.CatalogEntry, error)
}

// PrescriptionPayload is the structured data a prescription document renderer
// consumes.
type PrescriptionPayload struct {
	PatientName       string                 `json:"patient_name"`
	PatientResidentID string                 `json:"patient_resident_id"`
	DoctorName        string                 `json:"doctor_name"`
	DoctorLicense     string                 `json:"doctor_license"`
	Department        string                 `json:"department"`
	Prescriptions     []records.CatalogEntry `json:"prescriptions"`
	TotalFee          int                    `json:"total_fee"`
	IssueDate         string                 `json:"issue_date"`
}

// ConfirmationPayload is the structured data for a medical confirmation
// document. By this clinic's form convention the disease name is the
// department.
type ConfirmationPayload struct {
	PatientName     string `json:"patient_name"`
	ResidentID      string `json:"resident_id"`
	DiseaseName     string `json:"disease_name"`
	DateOfDiagnosis string `json:"date_of_diagnosis"`
	DateOfIssue     string `json:"date_of_issue"`
}

// doctorName is the fixed placeholder until staff accounts exist.
const doctorName = "Dr. Kim"

const dateLayout = "2006-01-02"

// Assembler joins reservation records against the prescription catalog.
type Assembler struct {
	reservations ReservationSource
	catalog      CatalogSource
	rng          *rand.Rand
	now          func() time.Time
	logger       *zap.Logger
	tracer       trace.Tracer
}

// NewAssembler creates an assembler. rng backs the display-only doctor
// license draw and the simulated diagnosis date.
func NewAssembler(reservations ReservationSource, catalog CatalogSource, rng *rand.Rand, logger *zap.Logger) *Assembler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Assembler{
		reservations: reservations,
		catalog:      catalog,
		rng:          rng,
		now:          time.Now,
		logger:       logger,
		tracer:       otel.Tracer("certificate-assembler"),
	}
}

// WithClock overrides the assembler clock, for tests.
func (a *Assembler) WithClock(now func() time.Time) *Assembler {
	a.now = now
	return a
}

// BuildPrescription assembles the prescription document payload for a
// resident id. Every prescription name on the reservation appears exactly
// once: with catalog metadata when a row matches, as an N/A placeholder when
// none does.
func (a *Assembler) BuildPrescription(ctx context.Context, residentID string) (PrescriptionPayload, error) {
	ctx, span := a.tracer.Start(ctx, "build_prescription",
		trace.WithAttributes(attribute.String("resident_id", residentID)))
	defer span.End()

	rec, err := a.reservations.FindByResidentID(ctx, residentID)
	if err != nil {
		span.RecordError(err)
		return PrescriptionPayload{}, faults.Wrap(faults.CodeInternal, "reservation lookup", err)
	}
	if rec == nil {
		return PrescriptionPayload{}, faults.Newf(faults.CodePatientNotFound,
			"no reservation for resident id %q", residentID)
	}

	entries, err := a.catalog.Load(ctx, rec.Department)
	if err != nil {
		span.RecordError(err)
		return PrescriptionPayload{}, err
	}

	byName := make(map[string]records.CatalogEntry, len(entries))
	for _, e := range entries {
		byName[e.Name] = e
	}

	prescriptions := make([]records.CatalogEntry, 0, len(rec.PrescriptionNames))
	for _, name := range rec.PrescriptionNames {
		if e, ok := byName[name]; ok {
			prescriptions = append(prescriptions, e)
			continue
		}
		a.logger.Warn("billed prescription missing from catalog",
			zap.String("name", name),
			zap.String("department", rec.Department))
		prescriptions = append(prescriptions, records.PlaceholderEntry(name))
	}
	span.SetAttributes(attribute.Int("prescription_count", len(prescriptions)))

	return PrescriptionPayload{
		PatientName:       rec.Name,
		PatientResidentID: rec.ResidentID,
		DoctorName:        doctorName,
		DoctorLicense:     strconv.Itoa(1000 + a.rng.Intn(9000)),
		Department:        rec.Department,
		Prescriptions:     prescriptions,
		TotalFee:          rec.TotalFee,
		IssueDate:         a.now().Format(dateLayout),
	}, nil
}

// BuildConfirmation assembles the medical confirmation payload from identity
// and department already held by the caller; no store lookup is needed. The
// diagnosis date is simulated as 1-30 days before issuance.
func (a *Assembler) BuildConfirmation(patientName, residentID, department string) ConfirmationPayload {
	now := a.now()
	diagnosed := now.AddDate(0, 0, -(1 + a.rng.Intn(30)))
	return ConfirmationPayload{
		PatientName:     patientName,
		ResidentID:      residentID,
		DiseaseName:     department,
		DateOfDiagnosis: diagnosed.Format(dateLayout),
		DateOfIssue:     now.Format(dateLayout),
	}
}

// Filename builds the download name for a generated document:
// {kind}_{patient}_{timestamp}.{ext}.
func (a *Assembler) Filename(kind, patientName, ext string) string {
	return fmt.Sprintf("%s_%s_%s.%s", kind, patientName, a.now().Format("20060102150405"), ext)
}
