// Package faults defines the normalized error taxonomy shared by the kiosk
// workflow. Services return *Fault values so handlers can map them to HTTP
// statuses without string matching.
package faults

import (
	"errors"
	"fmt"
	"net/http"
)

// Code categorizes a workflow failure.
type Code string

const (
	// CodeValidation indicates bad user input; the caller should re-prompt.
	CodeValidation Code = "validation"

	// CodeSequence indicates the workflow was invoked out of order; the
	// caller should restart at identification.
	CodeSequence Code = "sequence"

	// CodeNoDataFile indicates a backing record table is absent.
	CodeNoDataFile Code = "no_data_file"

	// CodeNoMatchingDepartment indicates zero fee rows matched the department.
	CodeNoMatchingDepartment Code = "no_matching_department"

	// CodeMalformedFee indicates a fee value did not parse as an integer.
	CodeMalformedFee Code = "malformed_fee"

	// CodePatientNotFound indicates no reservation exists for the resident id.
	CodePatientNotFound Code = "patient_not_found"

	// CodeCatalogUnavailable indicates neither the department catalog nor the
	// generic fallback could be loaded.
	CodeCatalogUnavailable Code = "catalog_unavailable"

	// CodeRendering indicates a font/asset fault from the document renderer.
	CodeRendering Code = "rendering"

	// CodeAssistantUnavailable indicates the external chat assistant failed
	// or the circuit to it is open.
	CodeAssistantUnavailable Code = "assistant_unavailable"

	// CodeInternal indicates an unexpected internal error.
	CodeInternal Code = "internal"
)

// Fault wraps a failure with its taxonomy code.
type Fault struct {
	Code       Code
	Message    string
	Underlying error
}

func (f *Fault) Error() string {
	if f.Underlying != nil {
		return fmt.Sprintf("[%s] %s: %v", f.Code, f.Message, f.Underlying)
	}
	return fmt.Sprintf("[%s] %s", f.Code, f.Message)
}

// Unwrap supports errors.Is / errors.As chains.
func (f *Fault) Unwrap() error { return f.Underlying }

// New creates a fault with no underlying cause.
func New(code Code, message string) *Fault {
	return &Fault{Code: code, Message: message}
}

// Newf creates a fault with a formatted message.
func Newf(code Code, format string, args ...any) *Fault {
	return &Fault{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates a fault around an underlying error.
func Wrap(code Code, message string, underlying error) *Fault {
	return &Fault{Code: code, Message: message, Underlying: underlying}
}

// CodeOf extracts the taxonomy code from an error, CodeInternal if untyped.
func CodeOf(err error) Code {
	var f *Fault
	if errors.As(err, &f) {
		return f.Code
	}
	return CodeInternal
}

// Is reports whether err carries the given code.
func Is(err error, code Code) bool {
	return CodeOf(err) == code
}

// HTTPStatus maps a taxonomy code to an HTTP status for the presentation layer.
func HTTPStatus(err error) int {
	switch CodeOf(err) {
	case CodeValidation, CodeMalformedFee:
		return http.StatusBadRequest
	case CodeSequence:
		return http.StatusConflict
	case CodePatientNotFound, CodeNoMatchingDepartment:
		return http.StatusNotFound
	case CodeNoDataFile, CodeCatalogUnavailable:
		return http.StatusServiceUnavailable
	case CodeAssistantUnavailable:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
