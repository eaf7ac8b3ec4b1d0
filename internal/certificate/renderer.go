package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"text/tabwriter"
)

// ErrMissingFont is the renderer's font/asset fault. Handlers surface it as a
// terminal generation failure for the request; it is never retried.
var ErrMissingFont = errors.New("required document font is not installed")

// Renderer turns an assembled payload into document bytes. The production
// renderer (PDF) lives outside this module; implementations may fail with
// ErrMissingFont.
type Renderer interface {
	RenderPrescription(payload PrescriptionPayload) ([]byte, error)
	RenderConfirmation(payload ConfirmationPayload) ([]byte, error)
}

// TextRenderer renders plain-text documents for kiosk preview and tests.
type TextRenderer struct{}

// RenderPrescription renders a prescription payload as aligned plain text.
func (TextRenderer) RenderPrescription(p PrescriptionPayload) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "PRESCRIPTION\n\n")
	fmt.Fprintf(&buf, "Patient: %s (%s)\n", p.PatientName, p.PatientResidentID)
	fmt.Fprintf(&buf, "Doctor: %s (license %s)\n", p.DoctorName, p.DoctorLicense)
	fmt.Fprintf(&buf, "Department: %s\n", p.Department)
	fmt.Fprintf(&buf, "Issued: %s\n\n", p.IssueDate)

	w := tabwriter.NewWriter(&buf, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "Name\tCode\tUnit dose\tDaily\tDays")
	for _, rx := range p.Prescriptions {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			rx.Name, rx.Code, rx.UnitDose, rx.DailyFrequency, rx.TotalDays)
	}
	w.Flush()

	fmt.Fprintf(&buf, "\nTotal fee: %d\n", p.TotalFee)
	return buf.Bytes(), nil
}

// RenderConfirmation renders a medical confirmation payload as plain text.
func (TextRenderer) RenderConfirmation(p ConfirmationPayload) ([]byte, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "MEDICAL CONFIRMATION\n\n")
	fmt.Fprintf(&buf, "Patient: %s (%s)\n", p.PatientName, p.ResidentID)
	fmt.Fprintf(&buf, "Diagnosis: %s\n", p.DiseaseName)
	fmt.Fprintf(&buf, "Date of diagnosis: %s\n", p.DateOfDiagnosis)
	fmt.Fprintf(&buf, "Date of issue: %s\n", p.DateOfIssue)
	return buf.Bytes(), nil
}
